package fuzzloop

import (
	"fmt"
	"time"
)

// StopCondition decides whether the loop stops before starting the next
// iteration. done is the number of sessions already executed.
type StopCondition interface {
	Stop(done uint64, elapsed time.Duration) (bool, string)
}

// StopFunc adapts a function to StopCondition.
type StopFunc func(done uint64, elapsed time.Duration) (bool, string)

func (f StopFunc) Stop(done uint64, elapsed time.Duration) (bool, string) {
	return f(done, elapsed)
}

// Never is the default: the loop runs until a defect or cancellation.
var Never StopCondition = StopFunc(func(uint64, time.Duration) (bool, string) { return false, "" })

// MaxIterations stops after n sessions. Zero means unbounded.
func MaxIterations(n uint64) StopCondition {
	if n == 0 {
		return Never
	}
	return StopFunc(func(done uint64, _ time.Duration) (bool, string) {
		if done >= n {
			return true, fmt.Sprintf("reached %d iterations", n)
		}
		return false, ""
	})
}

// MaxDuration stops once d wall-clock time has elapsed. Zero means unbounded.
func MaxDuration(d time.Duration) StopCondition {
	if d <= 0 {
		return Never
	}
	return StopFunc(func(_ uint64, elapsed time.Duration) (bool, string) {
		if elapsed >= d {
			return true, fmt.Sprintf("reached time budget %s", d)
		}
		return false, ""
	})
}

// Any stops as soon as one of conds does.
func Any(conds ...StopCondition) StopCondition {
	return StopFunc(func(done uint64, elapsed time.Duration) (bool, string) {
		for _, c := range conds {
			if c == nil {
				continue
			}
			if stop, why := c.Stop(done, elapsed); stop {
				return true, why
			}
		}
		return false, ""
	})
}
