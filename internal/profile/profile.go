// Package profile wraps github.com/pkg/profile for the --profile flag.
package profile

import (
	"maps"
	"slices"

	"github.com/pkg/profile"
)

var mode = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// Modes returns the supported profiling modes in sorted order.
func Modes() []string {
	return slices.Sorted(maps.Keys(mode))
}

// Stopper ends a profiling session.
type Stopper interface{ Stop() }

type ignore struct{}

func (ignore) Stop() {}

// Start begins profiling in the named mode, writing into path (the working
// directory when empty). An empty or unknown mode returns a no-op Stopper.
func Start(name, path string, quiet bool) Stopper {
	fn, ok := mode[name]
	if !ok {
		return ignore{}
	}

	opts := []func(*profile.Profile){fn, profile.NoShutdownHook}
	if path != "" {
		opts = append(opts, profile.ProfilePath(path))
	}
	if quiet {
		opts = append(opts, profile.Quiet)
	}
	return profile.Start(opts...)
}
