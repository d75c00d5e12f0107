package weightclient

import (
	"context"
	"errors"
	"testing"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/require"
)

func TestDoWithRetryStopsAfterMaxAttempts(t *testing.T) {
	c := &Client{}
	attempts := 0
	err := c.doWithRetry(context.Background(), func(ctx context.Context) error {
		attempts++
		return retry.RetryableError(errors.New("boom"))
	})
	require.Error(t, err)
	require.Equal(t, maxAttempts, attempts)
}

func TestDoWithRetrySucceedsWithoutExhaustingAttempts(t *testing.T) {
	c := &Client{}
	attempts := 0
	err := c.doWithRetry(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 2 {
			return retry.RetryableError(errors.New("transient"))
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, attempts)
}

func TestDoWithRetryDoesNotRetryNonRetryableError(t *testing.T) {
	c := &Client{}
	attempts := 0
	err := c.doWithRetry(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("permanent")
	})
	require.Error(t, err)
	require.Equal(t, 1, attempts)
}
