package authrouter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/chemgate/chemgate/engine/auth"
	"github.com/chemgate/chemgate/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupTokenAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	service := auth.NewService(client, &config.AuthConfig{
		Enabled:  true,
		TokenTTL: time.Hour,
		Users:    map[string]string{"alice": string(hash)},
	}, "chemgate")
	r := gin.New()
	Register(r.Group("/api/v2"), service)
	return r
}

func postForm(t *testing.T, r *gin.Engine, form url.Values) (int, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v2/token-auth/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestObtainToken(t *testing.T) {
	t.Run("Should return a token for valid credentials", func(t *testing.T) {
		r := setupTokenAPI(t)
		code, body := postForm(t, r, url.Values{"username": {"alice"}, "password": {"secret"}})
		assert.Equal(t, http.StatusOK, code)
		assert.NotEmpty(t, body["token"])
	})

	t.Run("Should report missing fields per field", func(t *testing.T) {
		r := setupTokenAPI(t)
		code, body := postForm(t, r, url.Values{})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, []any{"This field is required."}, body["username"])
		assert.Equal(t, []any{"This field is required."}, body["password"])
	})

	t.Run("Should reject bad credentials with a non-field error", func(t *testing.T) {
		r := setupTokenAPI(t)
		code, body := postForm(t, r, url.Values{"username": {"alice"}, "password": {"wrong"}})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, []any{"Unable to log in with provided credentials."}, body["non_field_errors"])
	})
}
