package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectWithRetry(t *testing.T) {
	t.Run("succeeds after transient failures", func(t *testing.T) {
		attempts := 0
		err := connectWithRetry(context.Background(), BackendNeo4j, 3, time.Millisecond, func(context.Context) error {
			attempts++
			if attempts < 3 {
				return errors.New("connection refused")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("wraps the last failure as a connection error", func(t *testing.T) {
		attempts := 0
		err := connectWithRetry(context.Background(), BackendNebula, 2, time.Millisecond, func(context.Context) error {
			attempts++
			return errors.New("auth rejected")
		})
		require.Error(t, err)
		assert.Equal(t, 2, attempts)
		assert.True(t, IsConnectionError(err))
		assert.Contains(t, err.Error(), "auth rejected")
		assert.Contains(t, err.Error(), "after 2 attempts")
	})

	t.Run("stops when cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		attempts := 0
		err := connectWithRetry(ctx, BackendArangoDB, 5, time.Hour, func(context.Context) error {
			attempts++
			cancel()
			return errors.New("timeout")
		})
		require.Error(t, err)
		assert.Equal(t, 1, attempts)
		assert.True(t, IsConnectionError(err))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
