package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errRateLimited = errors.New("rate limited")
	errBadRequest  = errors.New("bad request")
)

func isRateLimited(err error) bool { return errors.Is(err, errRateLimited) }

func recordingSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	t.Parallel()

	var delays []time.Duration
	calls := 0
	policy := Policy{Attempts: 3, BaseDelay: 2 * time.Second, Sleep: recordingSleep(&delays)}

	got, err := Do(context.Background(), policy, isRateLimited, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errRateLimited
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, delays)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	var delays []time.Duration
	calls := 0
	policy := Policy{Attempts: 4, BaseDelay: time.Second, Sleep: recordingSleep(&delays)}

	_, err := Do(context.Background(), policy, isRateLimited, func(context.Context) (int, error) {
		calls++
		return 0, errBadRequest
	})

	assert.ErrorIs(t, err, errBadRequest)
	assert.Equal(t, 1, calls)
	assert.Empty(t, delays)
}

func TestDoExhausts(t *testing.T) {
	t.Parallel()

	var (
		delays  []time.Duration
		retries []int
	)
	policy := Policy{
		Attempts:  3,
		BaseDelay: 10 * time.Millisecond,
		Sleep:     recordingSleep(&delays),
		OnRetry:   func(attempt int, _ time.Duration, _ error) { retries = append(retries, attempt) },
	}

	_, err := Do(context.Background(), policy, isRateLimited, func(context.Context) (int, error) {
		return 0, errRateLimited
	})

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.ErrorIs(t, err, errRateLimited)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, delays)
	assert.Equal(t, []int{1, 2}, retries)
}

func TestDoHonoursContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Do(ctx, Policy{Attempts: 3, BaseDelay: time.Hour}, isRateLimited, func(context.Context) (int, error) {
		return 0, errRateLimited
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2*time.Second, Backoff(2*time.Second, 0))
	assert.Equal(t, 8*time.Second, Backoff(2*time.Second, 2))
	assert.Equal(t, 2*time.Second, Backoff(2*time.Second, -1))
}

func TestSleep(t *testing.T) {
	t.Parallel()

	t.Run("zero returns immediately", func(t *testing.T) {
		assert.NoError(t, Sleep(context.Background(), 0))
	})

	t.Run("waits out the delay", func(t *testing.T) {
		start := time.Now()
		require.NoError(t, Sleep(context.Background(), 5*time.Millisecond))
		assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
		assert.ErrorIs(t, Sleep(ctx, 0), context.Canceled)
	})
}
