package runtime

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"lox-lang/internal/lexer"
	"lox-lang/internal/parser"
	"lox-lang/internal/token"
)

// runSource parses and executes source code, returning captured stdout and any error.
func runSource(t *testing.T, source string, opts ...Option) (string, error) {
	t.Helper()
	tokens, diags := lexer.Scan(source)
	if len(diags) > 0 {
		t.Fatalf("scan errors: %v", diags)
	}
	stmts, diags := parser.New(tokens).Parse()
	if len(diags) > 0 {
		t.Fatalf("parse errors: %v", diags)
	}

	var buf bytes.Buffer
	interp := NewInterpreter(&buf, opts...)
	err := interp.Interpret(stmts)
	return buf.String(), err
}

func expectOutput(t *testing.T, source, expected string) {
	t.Helper()
	expectOutputWith(t, source, expected)
}

func expectOutputWith(t *testing.T, source, expected string, opts ...Option) {
	t.Helper()
	out, err := runSource(t, source, opts...)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if strings.TrimRight(out, "\n") != strings.TrimRight(expected, "\n") {
		t.Errorf("output mismatch:\nexpected: %q\ngot:      %q", expected, out)
	}
}

func expectError(t *testing.T, source, contains string) *RuntimeError {
	t.Helper()
	_, err := runSource(t, source)
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", contains)
	}
	if !strings.Contains(err.Error(), contains) {
		t.Errorf("expected error containing %q, got: %v", contains, err)
	}
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *RuntimeError, got %T", err)
	}
	return rerr
}

// ---- Tests ----

func TestPrintLiteral(t *testing.T) {
	expectOutput(t, `print 42;`, "42\n")
	expectOutput(t, `print "hello";`, "hello\n")
	expectOutput(t, `print nil;`, "nil\n")
	expectOutput(t, `print true;`, "true\n")
}

func TestArithmetic(t *testing.T) {
	expectOutput(t, `print 1 + 2 * 3;`, "7\n")
	expectOutput(t, `print (1 + 2) * 3;`, "9\n")
	expectOutput(t, `print 6 / 2;`, "3\n")
	expectOutput(t, `print 1 / 3;`, "0.3333333333333333\n")
	expectOutput(t, `print 10 - 4 - 3;`, "3\n")
	expectOutput(t, `print -(2.5);`, "-2.5\n")
	expectOutput(t, `print 1 / 0;`, "inf\n")
	expectOutput(t, `print -1 / 0;`, "-inf\n")
}

func TestStringConcat(t *testing.T) {
	expectOutput(t, `print "foo" + "bar";`, "foobar\n")
}

func TestAddMismatchedOperands(t *testing.T) {
	rerr := expectError(t, `print 1 + "bar";`, "Operands must be two numbers or two strings.")
	if rerr.Token.Kind != token.PLUS {
		t.Errorf("error token = %v, want PLUS", rerr.Token.Kind)
	}
}

func TestArithmeticNeedsNumbers(t *testing.T) {
	expectError(t, `print "a" - 1;`, "Operands must be numbers.")
	expectError(t, `print nil * 2;`, "Operands must be numbers.")
	expectError(t, `print "a" < "b";`, "Operands must be numbers.")
	expectError(t, `print -"a";`, "Operand must be a number.")
}

func TestComparison(t *testing.T) {
	expectOutput(t, `print 1 < 2;`, "true\n")
	expectOutput(t, `print 2 <= 2;`, "true\n")
	expectOutput(t, `print 1 > 2;`, "false\n")
	expectOutput(t, `print 3 >= 4;`, "false\n")
}

func TestEquality(t *testing.T) {
	expectOutput(t, `print 1 == 1;`, "true\n")
	expectOutput(t, `print "a" == "a";`, "true\n")
	expectOutput(t, `print nil == nil;`, "true\n")
	expectOutput(t, `print nil == false;`, "false\n")
	expectOutput(t, `print 1 == "1";`, "false\n")
	expectOutput(t, `print 1 != "1";`, "true\n")
	expectOutput(t, `fun f() {} print f == f;`, "true\n")
}

func TestTruthiness(t *testing.T) {
	expectOutput(t, `print !nil;`, "true\n")
	expectOutput(t, `print !false;`, "true\n")
	expectOutput(t, `print !0;`, "false\n")
	expectOutput(t, `print !"";`, "false\n")
	expectOutput(t, `if (0) print "yes"; else print "no";`, "yes\n")
}

func TestLogicalReturnsOperand(t *testing.T) {
	expectOutput(t, `print nil or "default";`, "default\n")
	expectOutput(t, `print "first" or "second";`, "first\n")
	expectOutput(t, `print nil and "never";`, "nil\n")
	expectOutput(t, `print 1 and 2;`, "2\n")
}

func TestLogicalShortCircuit(t *testing.T) {
	expectOutput(t, `
var called = false;
fun side() { called = true; return true; }
print false and side();
print called;
print true or side();
print called;
`, "false\nfalse\ntrue\nfalse\n")
}

func TestVarDecl(t *testing.T) {
	expectOutput(t, `
var x = 10;
var y;
print x;
print y;
`, "10\nnil\n")
}

func TestAssignmentIsExpression(t *testing.T) {
	expectOutput(t, `
var a;
var b;
a = b = 3;
print a;
print b;
`, "3\n3\n")
}

func TestShadowing(t *testing.T) {
	expectOutput(t, `
var a = 1;
{
  var a = 2;
  print a;
}
print a;
`, "2\n1\n")
}

func TestBlockAssignsOuter(t *testing.T) {
	expectOutput(t, `
var a = 1;
{ a = 2; }
print a;
`, "2\n")
}

func TestRedefineGlobal(t *testing.T) {
	expectOutput(t, `
var a = 1;
var a = "two";
print a;
`, "two\n")
}

func TestUndefinedVariable(t *testing.T) {
	rerr := expectError(t, "print 1;\nprint missing;", "Undefined variable 'missing'.")
	if rerr.Token.Line != 2 {
		t.Errorf("line = %d, want 2", rerr.Token.Line)
	}
	if got, want := rerr.Error(), "Undefined variable 'missing'.\n[line: 2]"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestAssignUndefined(t *testing.T) {
	expectError(t, `missing = 1;`, "Undefined variable 'missing'.")
}

func TestOutputBeforeRuntimeError(t *testing.T) {
	out, err := runSource(t, "print 1;\nprint -nil;\nprint 2;")
	if err == nil {
		t.Fatal("expected runtime error")
	}
	if out != "1\n" {
		t.Errorf("output = %q, want %q", out, "1\n")
	}
}

func TestIfElse(t *testing.T) {
	expectOutput(t, `
if (1 < 2) print "then"; else print "else";
if (1 > 2) print "then"; else print "else";
if (false) print "skipped";
`, "then\nelse\n")
}

func TestWhile(t *testing.T) {
	expectOutput(t, `
var i = 0;
while (i < 3) {
  print i;
  i = i + 1;
}
`, "0\n1\n2\n")
}

func TestFor(t *testing.T) {
	expectOutput(t, `
for (var i = 0; i < 3; i = i + 1) print i;
`, "0\n1\n2\n")
}

func TestForScopesInitializer(t *testing.T) {
	expectError(t, `
for (var i = 0; i < 1; i = i + 1) {}
print i;
`, "Undefined variable 'i'.")
}

func TestFunctionCall(t *testing.T) {
	expectOutput(t, `
fun add(a, b) { return a + b; }
print add(1, 2);
`, "3\n")
}

func TestFunctionImplicitNil(t *testing.T) {
	expectOutput(t, `
fun noop() {}
fun early() { return; }
print noop();
print early();
`, "nil\nnil\n")
}

func TestFunctionString(t *testing.T) {
	expectOutput(t, `
fun greet() {}
print greet;
print clock;
`, "<fn greet>\n<native fn>\n")
}

func TestReturnFromLoop(t *testing.T) {
	expectOutput(t, `
fun firstOver(limit) {
  for (var i = 0; ; i = i + 1) {
    if (i > limit) return i;
  }
}
print firstOver(4);
`, "5\n")
}

func TestRecursion(t *testing.T) {
	expectOutput(t, `
fun fib(n) {
  if (n < 2) return n;
  return fib(n - 1) + fib(n - 2);
}
print fib(10);
`, "55\n")
}

func TestClosureCounter(t *testing.T) {
	expectOutput(t, `
fun makeCounter() {
  var i = 0;
  fun count() {
    i = i + 1;
    print i;
  }
  return count;
}
var counter = makeCounter();
counter();
counter();
`, "1\n2\n")
}

func TestClosuresAreIndependent(t *testing.T) {
	expectOutput(t, `
fun makeCounter() {
  var i = 0;
  fun count() { i = i + 1; return i; }
  return count;
}
var a = makeCounter();
var b = makeCounter();
a();
a();
print a();
print b();
`, "3\n1\n")
}

func TestClosureSeesLaterAssignment(t *testing.T) {
	expectOutput(t, `
var x = "before";
fun show() { print x; }
x = "after";
show();
`, "after\n")
}

func TestArityMismatch(t *testing.T) {
	rerr := expectError(t, `
fun f(a, b) {}
f(1);
`, "Expected 2 arguments but got 1.")
	if rerr.Token.Kind != token.RPAREN {
		t.Errorf("error token = %v, want RPAREN", rerr.Token.Kind)
	}
	expectError(t, `clock(1);`, "Expected 0 arguments but got 1.")
}

func TestCallNonCallable(t *testing.T) {
	expectError(t, `"not a function"();`, "Can only call functions and classes.")
	expectError(t, `var x = 1; x();`, "Can only call functions and classes.")
}

func TestRuntimeErrorInsideFunctionRestoresScope(t *testing.T) {
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)

	tokens, _ := lexer.Scan(`
var a = "global";
fun boom() { var a = "local"; return -a; }
boom();
`)
	stmts, _ := parser.New(tokens).Parse()
	if err := interp.Interpret(stmts); err == nil {
		t.Fatal("expected runtime error")
	}

	tokens, _ = lexer.Scan(`print a;`)
	stmts, _ = parser.New(tokens).Parse()
	if err := interp.Interpret(stmts); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if got := buf.String(); got != "global\n" {
		t.Errorf("output = %q, want %q", got, "global\n")
	}
}

func TestUnboundedRecursionOverflows(t *testing.T) {
	rerr := expectError(t, `
fun f(n) { return f(n + 1); }
f(0);
`, "Stack overflow.")
	if rerr.Token.Line != 2 {
		t.Errorf("error line = %d, want 2", rerr.Token.Line)
	}
}

func TestMaxDepth(t *testing.T) {
	out, err := runSource(t, `fun f(n) { print n; return f(n + 1); }
f(0);`, WithMaxDepth(3))
	if out != "0\n1\n2\n" {
		t.Errorf("output = %q, want %q", out, "0\n1\n2\n")
	}
	var rerr *RuntimeError
	if !errors.As(err, &rerr) || rerr.Message != "Stack overflow." {
		t.Fatalf("expected stack overflow, got %v", err)
	}

	// a non-positive limit keeps the default
	expectOutputWith(t, `
fun down(n) { if (n > 0) return down(n - 1); return "done"; }
print down(50);
`, "done\n", WithMaxDepth(0))
}

func TestDepthRecoversAfterOverflow(t *testing.T) {
	var buf bytes.Buffer
	interp := NewInterpreter(&buf, WithMaxDepth(3))

	tokens, _ := lexer.Scan(`fun f() { return f(); } f();`)
	stmts, _ := parser.New(tokens).Parse()
	if err := interp.Interpret(stmts); err == nil {
		t.Fatal("expected runtime error")
	}

	tokens, _ = lexer.Scan(`
fun down(n) { if (n > 0) return down(n - 1); return "ok"; }
print down(2);
`)
	stmts, _ = parser.New(tokens).Parse()
	if err := interp.Interpret(stmts); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if got := buf.String(); got != "ok\n" {
		t.Errorf("output = %q, want %q", got, "ok\n")
	}
}

func TestClock(t *testing.T) {
	fixed := time.Unix(1700000000, 500000000)
	out, err := runSource(t, `print clock();`, WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if out != "1700000000.5\n" {
		t.Errorf("output = %q, want %q", out, "1700000000.5\n")
	}
}

func TestClockAdvances(t *testing.T) {
	expectOutput(t, `
var start = clock();
print clock() >= start;
print start > 0;
`, "true\ntrue\n")
}

func TestNativeHostError(t *testing.T) {
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)
	interp.Globals().Define("fail", &Native{
		Name: "fail",
		Fn: func(_ *Interpreter, _ []Value) (Value, error) {
			return nil, errors.New("host failure")
		},
	})

	tokens, _ := lexer.Scan("\n\nfail();")
	stmts, _ := parser.New(tokens).Parse()
	err := interp.Interpret(stmts)

	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *RuntimeError, got %v", err)
	}
	if rerr.Message != "host failure" || rerr.Token.Line != 3 {
		t.Errorf("got %q at line %d", rerr.Message, rerr.Token.Line)
	}
}

func TestEnvironment(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("a", NumberVal(1))
	inner := NewEnvironment(global)
	inner.Define("b", StringVal("x"))

	name := func(s string) token.Token {
		return token.Token{Kind: token.IDENT, Lexeme: s, Line: 1}
	}

	if v, err := inner.Get(name("a")); err != nil || v != NumberVal(1) {
		t.Errorf("Get(a) = %v, %v", v, err)
	}
	if _, err := global.Get(name("b")); err == nil {
		t.Error("outer scope should not see inner binding")
	}
	if err := inner.Assign(name("a"), NumberVal(2)); err != nil {
		t.Fatalf("Assign(a): %v", err)
	}
	if v, _ := global.Get(name("a")); v != NumberVal(2) {
		t.Errorf("assignment should update enclosing binding, got %v", v)
	}
	if err := inner.Assign(name("c"), NilVal{}); err == nil {
		t.Error("Assign to undefined name should fail")
	}
	if inner.Enclosing() != global {
		t.Error("Enclosing() should return the parent scope")
	}
}

func TestNumberString(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{3, "3"},
		{-0.5, "-0.5"},
		{1e21, "1000000000000000000000"},
		{0.1 + 0.2, "0.30000000000000004"},
	}
	for _, tt := range tests {
		if got := NumberVal(tt.in).String(); got != tt.want {
			t.Errorf("NumberVal(%v).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}
