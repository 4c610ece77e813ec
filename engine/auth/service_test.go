package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/chemgate/chemgate/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewService(client, &config.AuthConfig{
		Enabled:  true,
		TokenTTL: time.Hour,
		Users:    map[string]string{"alice": string(hash), "root": string(hash)},
		Admins:   []string{"root"},
	}, "chemgate"), mr
}

func TestService_IssueToken(t *testing.T) {
	t.Run("Should issue a token for valid credentials", func(t *testing.T) {
		service, _ := newTestService(t)
		token, err := service.IssueToken(context.Background(), "alice", "secret")
		require.NoError(t, err)
		assert.Len(t, token, 64)
	})

	t.Run("Should reject a wrong password", func(t *testing.T) {
		service, _ := newTestService(t)
		_, err := service.IssueToken(context.Background(), "alice", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Should reject an unknown user", func(t *testing.T) {
		service, _ := newTestService(t)
		_, err := service.IssueToken(context.Background(), "mallory", "secret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_ValidateToken(t *testing.T) {
	t.Run("Should resolve a live token to its identity", func(t *testing.T) {
		service, _ := newTestService(t)
		token, err := service.IssueToken(context.Background(), "alice", "secret")
		require.NoError(t, err)

		identity, err := service.ValidateToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "alice", identity.Username)
		assert.False(t, identity.Admin)
	})

	t.Run("Should mark configured admins", func(t *testing.T) {
		service, _ := newTestService(t)
		token, err := service.IssueToken(context.Background(), "root", "secret")
		require.NoError(t, err)

		identity, err := service.ValidateToken(context.Background(), token)
		require.NoError(t, err)
		assert.True(t, identity.Admin)
	})

	t.Run("Should reject unknown and empty tokens", func(t *testing.T) {
		service, _ := newTestService(t)
		_, err := service.ValidateToken(context.Background(), "deadbeef")
		assert.ErrorIs(t, err, ErrInvalidToken)
		_, err = service.ValidateToken(context.Background(), "")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should reject an expired token", func(t *testing.T) {
		service, mr := newTestService(t)
		token, err := service.IssueToken(context.Background(), "alice", "secret")
		require.NoError(t, err)

		mr.FastForward(2 * time.Hour)
		_, err = service.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should reject a revoked token", func(t *testing.T) {
		service, _ := newTestService(t)
		token, err := service.IssueToken(context.Background(), "alice", "secret")
		require.NoError(t, err)
		require.NoError(t, service.RevokeToken(context.Background(), token))

		_, err = service.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestMiddleware(t *testing.T) {
	setupEcho := func(t *testing.T) (*gin.Engine, *Service) {
		t.Helper()
		gin.SetMode(gin.TestMode)
		service, _ := newTestService(t)
		r := gin.New()
		r.GET("/whoami", Middleware(service), func(c *gin.Context) {
			identity, _ := GetIdentity(c)
			c.JSON(http.StatusOK, gin.H{"username": identity.Username})
		})
		return r, service
	}

	t.Run("Should reject a request without credentials", func(t *testing.T) {
		r, _ := setupEcho(t)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Authentication credentials were not provided.")
	})

	t.Run("Should reject a malformed Authorization header", func(t *testing.T) {
		r, _ := setupEcho(t)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Token abc")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid Authorization header.")
	})

	t.Run("Should attach the identity for a valid token", func(t *testing.T) {
		r, service := setupEcho(t)
		token, err := service.IssueToken(context.Background(), "alice", "secret")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice")
	})
}
