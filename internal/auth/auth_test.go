package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireUser(t *testing.T) {
	t.Run("no identity", func(t *testing.T) {
		_, err := RequireUser(context.Background())
		require.Error(t, err)
		assert.True(t, IsAuthError(err))
	})

	t.Run("blank identity", func(t *testing.T) {
		_, err := RequireUser(WithUser(context.Background(), "   "))
		assert.True(t, IsAuthError(err))
	})

	t.Run("identity present", func(t *testing.T) {
		userID, err := RequireUser(WithUser(context.Background(), "user-1"))
		require.NoError(t, err)
		assert.Equal(t, "user-1", userID)
	})
}

func TestIsAuthErrorWrapped(t *testing.T) {
	err := fmt.Errorf("insert lead: %w", ErrUnauthenticated)
	assert.True(t, IsAuthError(err))
	assert.False(t, IsAuthError(fmt.Errorf("boom")))
}

func TestAuthErrorMessage(t *testing.T) {
	assert.Equal(t, "user not authenticated", ErrUnauthenticated.Error())
	assert.Equal(t, "user not authenticated: token expired", (&AuthError{Reason: "token expired"}).Error())
}
