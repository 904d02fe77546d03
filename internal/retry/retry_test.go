package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsAfterRetryableFailures(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Fixed(time.Millisecond), 3, nil, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsAtAttemptCap(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Fixed(time.Millisecond), 2, nil, func() error {
		attempts++
		return errors.New("still broken")
	})
	assert.ErrorContains(t, err, "still broken")
	// initial attempt plus two retries
	assert.Equal(t, 3, attempts)
}

func TestDoAbortsOnTerminalError(t *testing.T) {
	terminal := errors.New("bad request")
	attempts := 0
	err := Do(context.Background(), Fixed(time.Millisecond), 5, func(err error) bool {
		return err.Error() == "transient"
	}, func() error {
		attempts++
		return terminal
	})
	assert.ErrorIs(t, err, terminal)
	assert.Equal(t, 1, attempts)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	attempts := 0
	err := Do(ctx, Fixed(time.Minute), 5, nil, func() error {
		attempts++
		return errors.New("transient")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestIncrementalGrows(t *testing.T) {
	b := Incremental(10 * time.Millisecond)
	first := b.NextBackOff()
	second := b.NextBackOff()
	assert.Equal(t, 10*time.Millisecond, first)
	assert.Greater(t, second, first)
}
