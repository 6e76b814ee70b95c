package retry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/sitecrawler/pkg/failure"
	"github.com/rohmanhakim/sitecrawler/pkg/retry"
	"github.com/rohmanhakim/sitecrawler/pkg/timeutil"
)

type fakeRetryableError struct{ retryable bool }

func (e *fakeRetryableError) Error() string             { return "fake error" }
func (e *fakeRetryableError) Severity() failure.Severity { return failure.SeverityRecoverable }
func (e *fakeRetryableError) IsRetryable() bool          { return e.retryable }

func backoff() timeutil.BackoffParam {
	return timeutil.NewBackoffParam(time.Millisecond, 1.0, 10*time.Millisecond)
}

func TestRetry_SucceedsOnFirstTry(t *testing.T) {
	calls := 0
	param := retry.NewRetryParam(0, 1, 3, backoff())

	result, err := retry.Retry(param, func() (int, failure.ClassifiedError) {
		calls++
		return 42, nil
	})

	require.Nil(t, err)
	require.Equal(t, 42, result)
	require.Equal(t, 1, calls)
}

func TestRetry_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	param := retry.NewRetryParam(0, 1, 3, backoff())

	result, err := retry.Retry(param, func() (int, failure.ClassifiedError) {
		calls++
		if calls < 3 {
			return 0, &fakeRetryableError{retryable: true}
		}
		return 99, nil
	})

	require.Nil(t, err)
	require.Equal(t, 99, result)
	require.Equal(t, 3, calls)
}

func TestRetry_StopsEarlyOnNonRetryableError(t *testing.T) {
	calls := 0
	param := retry.NewRetryParam(0, 1, 5, backoff())

	_, err := retry.Retry(param, func() (int, failure.ClassifiedError) {
		calls++
		return 0, &fakeRetryableError{retryable: false}
	})

	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestRetry_ExhaustsAllAttempts(t *testing.T) {
	calls := 0
	param := retry.NewRetryParam(0, 1, 2, backoff())

	_, err := retry.Retry(param, func() (int, failure.ClassifiedError) {
		calls++
		return 0, &fakeRetryableError{retryable: true}
	})

	require.Error(t, err)
	require.Equal(t, 2, calls)
}

func TestRetry_ZeroMaxAttemptsIsAnError(t *testing.T) {
	param := retry.NewRetryParam(0, 1, 0, backoff())

	_, err := retry.Retry(param, func() (int, failure.ClassifiedError) {
		t.Fatal("fn must not be called")
		return 0, nil
	})

	require.Error(t, err)
}
