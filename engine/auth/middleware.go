package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/chemgate/chemgate/pkg/logger"
	"github.com/gin-gonic/gin"
)

type contextKey string

const contextKeyIdentity contextKey = "auth_identity"

// WithIdentity attaches the authenticated identity to the context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity, id)
}

// IdentityFromContext returns the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextKeyIdentity).(*Identity)
	return id, ok
}

// GetIdentity retrieves the authenticated identity from a gin context.
func GetIdentity(c *gin.Context) (*Identity, bool) {
	return IdentityFromContext(c.Request.Context())
}

// Middleware authenticates requests with a bearer token. It rejects
// unauthenticated requests before any schema validation runs.
func Middleware(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromContext(c.Request.Context())
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Authentication credentials were not provided.",
			})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Invalid Authorization header. Expected: Bearer <token>",
			})
			return
		}
		identity, err := service.ValidateToken(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			log.Debug("token validation failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Invalid token.",
			})
			return
		}
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}
