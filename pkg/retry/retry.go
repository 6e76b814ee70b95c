package retry

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rohmanhakim/sitecrawler/pkg/failure"
	"github.com/rohmanhakim/sitecrawler/pkg/timeutil"
)

// RetryParam configures Retry. MaxAttempts is the total number of tries,
// including the first. The crawler's own URL-level retry path does not use
// this package; the Extractor wraps its binary-text extraction calls in
// Retry.
type RetryParam struct {
	Jitter       time.Duration
	RandomSeed   int64
	MaxAttempts  int
	BackoffParam timeutil.BackoffParam
	Sleeper      timeutil.Sleeper
}

func NewRetryParam(jitter time.Duration, randomSeed int64, maxAttempts int, backoff timeutil.BackoffParam) RetryParam {
	return RetryParam{
		Jitter:       jitter,
		RandomSeed:   randomSeed,
		MaxAttempts:  maxAttempts,
		BackoffParam: backoff,
		Sleeper:      timeutil.NewRealSleeper(),
	}
}

type RetryErrorCause string

const (
	ErrZeroAttempt       RetryErrorCause = "max attempt cannot be 0"
	ErrExhaustedAttempts RetryErrorCause = "exhausted all attempts"
)

type RetryError struct {
	Message string
	Cause   RetryErrorCause
}

func (e *RetryError) Error() string { return fmt.Sprintf("retry error: %s", e.Message) }

func (e *RetryError) Severity() failure.Severity { return failure.SeverityRecoverable }

type retryable interface {
	IsRetryable() bool
}

// Retry calls fn up to retryParam.MaxAttempts times, applying exponential
// backoff with jitter between attempts. It stops early on the first
// non-retryable error (one whose type implements IsRetryable() bool and
// returns false); errors that don't implement that interface are treated as
// retryable.
func Retry[T any](retryParam RetryParam, fn func() (T, failure.ClassifiedError)) (T, failure.ClassifiedError) {
	var zero T

	if retryParam.MaxAttempts < 1 {
		return zero, &RetryError{Message: string(ErrZeroAttempt), Cause: ErrZeroAttempt}
	}

	sleeper := retryParam.Sleeper
	if sleeper == nil {
		sleeper = timeutil.NewRealSleeper()
	}
	rng := rand.New(rand.NewSource(retryParam.RandomSeed))

	var lastErr failure.ClassifiedError
	for attempt := 1; attempt <= retryParam.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if r, ok := err.(retryable); ok && !r.IsRetryable() {
			return zero, err
		}

		if attempt == retryParam.MaxAttempts {
			break
		}

		sleeper.Sleep(timeutil.ExponentialBackoffDelay(attempt, retryParam.Jitter, rng, retryParam.BackoffParam))
	}

	return zero, &RetryError{
		Message: fmt.Sprintf("exhausted %d attempts, last error: %v", retryParam.MaxAttempts, lastErr),
		Cause:   ErrExhaustedAttempts,
	}
}
