package timeutil

import (
	"math"
	"math/rand"
	"time"
)

// BackoffParam configures exponential backoff: delay doubles (times
// Multiplier) off InitialDuration each attempt, capped at MaxDuration.
type BackoffParam struct {
	initialDuration time.Duration
	multiplier      float64
	maxDuration     time.Duration
}

func NewBackoffParam(initialDuration time.Duration, multiplier float64, maxDuration time.Duration) BackoffParam {
	return BackoffParam{
		initialDuration: initialDuration,
		multiplier:      multiplier,
		maxDuration:     maxDuration,
	}
}

func (b BackoffParam) InitialDuration() time.Duration { return b.initialDuration }
func (b BackoffParam) Multiplier() float64             { return b.multiplier }
func (b BackoffParam) MaxDuration() time.Duration      { return b.maxDuration }

// ExponentialBackoffDelay computes the delay before the given attempt
// (1-indexed), with jitter drawn from rng added on top.
func ExponentialBackoffDelay(attempt int, jitter time.Duration, rng *rand.Rand, param BackoffParam) time.Duration {
	exponent := float64(attempt - 1)
	delay := float64(param.initialDuration) * math.Pow(param.multiplier, exponent)
	if max := float64(param.maxDuration); param.maxDuration > 0 && delay > max {
		delay = max
	}
	if jitter > 0 && rng != nil {
		delay += float64(rng.Int63n(int64(jitter)))
	}
	return time.Duration(delay)
}

// Sleeper abstracts time.Sleep so callers (pkg/retry's Retry) can be driven
// by a fake clock in tests.
type Sleeper interface {
	Sleep(d time.Duration)
}

type RealSleeper struct{}

func NewRealSleeper() RealSleeper { return RealSleeper{} }

func (RealSleeper) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
