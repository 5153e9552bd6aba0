package errhandler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/storefront-checkout/internal/apperror"
	"github.com/example/storefront-checkout/internal/notification"
	"github.com/example/storefront-checkout/internal/notification/mocks"
	"github.com/example/storefront-checkout/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() (*Handler, *mocks.MockSink) {
	policy := retry.NewPolicy()
	policy.BaseDelay = time.Millisecond
	sink := mocks.NewMockSink()
	return NewHandler(policy, sink, apperror.NewHistory(apperror.DefaultHistorySize)), sink
}

func TestHandler_Handle_NotifiesOnce(t *testing.T) {
	h, sink := newTestHandler()

	appErr := h.Handle(context.Background(), "sess-1", errors.New("network unreachable"))

	assert.True(t, appErr.Retryable)
	require.Equal(t, 1, sink.Count())
	n, _ := sink.Last()
	assert.Equal(t, notification.KindError, n.Kind)
	assert.Equal(t, notification.DefaultDuration, n.Duration)
	assert.Equal(t, []*apperror.AppError{appErr}, h.History("sess-1"))
}

func TestHandler_Handle_CriticalPersists(t *testing.T) {
	h, sink := newTestHandler()

	h.Handle(context.Background(), "sess-1", apperror.New("card data lost", "X", apperror.SeverityCritical))

	n, ok := sink.Last()
	require.True(t, ok)
	assert.Zero(t, n.Duration)
}

func TestHandler_Handle_SinkFailureIsTolerated(t *testing.T) {
	h, sink := newTestHandler()
	sink.NotifyErr = errors.New("kafka down")

	appErr := h.Handle(context.Background(), "sess-1", errors.New("oops"))

	assert.NotNil(t, appErr)
	assert.Len(t, h.History("sess-1"), 1)
}

func TestHandler_Retry_NotRetryable(t *testing.T) {
	h, _ := newTestHandler()
	appErr := h.Handle(context.Background(), "sess-1", errors.New("invalid quantity"))

	called := false
	_, err := h.Retry(context.Background(), "sess-1", appErr, func(context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrRetryExhausted)
	assert.False(t, called)
}

func TestHandler_Retry_Success(t *testing.T) {
	h, sink := newTestHandler()
	appErr := h.Handle(context.Background(), "sess-1", errors.New("timeout talking to provider"))

	next, err := h.Retry(context.Background(), "sess-1", appErr, func(context.Context) error { return nil })

	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Equal(t, 1, appErr.RetryCount)
	n, _ := sink.Last()
	assert.Equal(t, notification.KindSuccess, n.Kind)
}

func TestHandler_Retry_FailureProducesFreshError(t *testing.T) {
	h, sink := newTestHandler()
	appErr := h.Handle(context.Background(), "sess-1", errors.New("network blip"))

	next, err := h.Retry(context.Background(), "sess-1", appErr, func(context.Context) error {
		return errors.New("network blip again")
	})

	require.NoError(t, err)
	require.NotNil(t, next)
	assert.NotSame(t, appErr, next)
	assert.Equal(t, "network blip again", next.Message)
	assert.Equal(t, 1, next.RetryCount)
	assert.NotNil(t, next.LastRetryTime)
	assert.Equal(t, 2, sink.Count())
}

func TestHandler_Retry_BackingOff(t *testing.T) {
	h, _ := newTestHandler()
	h.policy.BaseDelay = time.Hour
	appErr := h.Handle(context.Background(), "sess-1", errors.New("network blip"))

	_, err := h.Retry(context.Background(), "sess-1", appErr, func(context.Context) error {
		return errors.New("network still down")
	})
	require.NoError(t, err)

	next := h.History("sess-1")[1]
	_, err = h.Retry(context.Background(), "sess-1", next, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrRetryNotReady)
}

func TestHandler_RunWithRetry_EventuallySucceeds(t *testing.T) {
	h, _ := newTestHandler()

	calls := 0
	appErr := h.RunWithRetry(context.Background(), "sess-1", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("network flaky")
		}
		return nil
	})

	assert.Nil(t, appErr)
	assert.Equal(t, 3, calls)
}

func TestHandler_RunWithRetry_StopsAtCap(t *testing.T) {
	h, sink := newTestHandler()

	calls := 0
	appErr := h.RunWithRetry(context.Background(), "sess-1", func(context.Context) error {
		calls++
		return errors.New("network down")
	})

	require.NotNil(t, appErr)
	assert.Equal(t, retry.DefaultMaxRetries+1, calls)
	assert.Equal(t, retry.DefaultMaxRetries, appErr.RetryCount)
	require.Equal(t, retry.DefaultMaxRetries+1, sink.Count())
	for i, n := range sink.Notifications[:retry.DefaultMaxRetries] {
		assert.Equal(t, notification.DefaultDuration, n.Duration, "attempt %d", i)
	}
	last, _ := sink.Last()
	assert.Equal(t, notification.KindError, last.Kind)
	assert.Zero(t, last.Duration)
	assert.Contains(t, last.Message, "retries exhausted")
}

func TestHandler_RunWithRetry_NonRetryableStopsImmediately(t *testing.T) {
	h, _ := newTestHandler()

	calls := 0
	appErr := h.RunWithRetry(context.Background(), "sess-1", func(context.Context) error {
		calls++
		return errors.New("mailbox unavailable")
	})

	require.NotNil(t, appErr)
	assert.Equal(t, 1, calls)
}

func TestHandler_RunWithRetry_ContextCancelled(t *testing.T) {
	h, _ := newTestHandler()
	h.policy.BaseDelay = time.Hour
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan *apperror.AppError)
	go func() {
		done <- h.RunWithRetry(ctx, "sess-1", func(context.Context) error {
			calls++
			return errors.New("network down")
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case appErr := <-done:
		require.NotNil(t, appErr)
	case <-time.After(time.Second):
		t.Fatal("RunWithRetry did not stop after cancellation")
	}
}
