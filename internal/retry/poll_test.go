package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoll_SucceedsOnLaterAttempt(t *testing.T) {
	calls := 0
	v, err := Poll(context.Background(), 5, time.Millisecond,
		func(ctx context.Context) (string, bool, error) {
			calls++
			if calls < 3 {
				return "", false, nil
			}
			return "ready", true, nil
		})

	require.NoError(t, err)
	assert.Equal(t, "ready", v)
	assert.Equal(t, 3, calls)
}

func TestPoll_Exhausted(t *testing.T) {
	v, err := Poll(context.Background(), 3, time.Millisecond,
		func(ctx context.Context) (int, bool, error) {
			return 0, false, nil
		})

	assert.ErrorIs(t, err, ErrExhausted)
	assert.Zero(t, v)
}

func TestPoll_ReturnsLastError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	_, err := Poll(context.Background(), 3, time.Millisecond,
		func(ctx context.Context) (int, bool, error) {
			calls++
			return 0, false, boom
		})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestPoll_ErrorThenSuccess(t *testing.T) {
	calls := 0
	v, err := Poll(context.Background(), 3, time.Millisecond,
		func(ctx context.Context) (int, bool, error) {
			calls++
			if calls == 1 {
				return 0, false, errors.New("transient")
			}
			return 42, true, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestPoll_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	_, err := Poll(ctx, 10, time.Hour,
		func(ctx context.Context) (int, bool, error) {
			cancel()
			return 0, false, nil
		})

	assert.ErrorIs(t, err, context.Canceled)
}
