package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/chemgate/chemgate/engine/infra/cache"
	"github.com/chemgate/chemgate/pkg/config"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates an unknown user or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates an unknown or expired bearer token.
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is the authenticated principal attached to a request.
type Identity struct {
	Username string
	Admin    bool
}

// Service issues and validates bearer tokens. Users and their bcrypt
// password hashes come from configuration; live tokens are kept in Redis
// with a TTL.
type Service struct {
	redis     cache.RedisInterface
	keyPrefix string
	tokenTTL  time.Duration
	users     map[string]string
	admins    []string
}

// NewService creates an auth service backed by the given Redis client.
func NewService(client cache.RedisInterface, cfg *config.AuthConfig, keyPrefix string) *Service {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		redis:     client,
		keyPrefix: keyPrefix,
		tokenTTL:  ttl,
		users:     cfg.Users,
		admins:    cfg.Admins,
	}
}

func (s *Service) tokenKey(token string) string {
	return fmt.Sprintf("%s:token:%s", s.keyPrefix, token)
}

// IssueToken verifies the credentials and returns a fresh bearer token.
func (s *Service) IssueToken(ctx context.Context, username, password string) (string, error) {
	hash, ok := s.users[username]
	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := hex.EncodeToString(buf)
	if err := s.redis.Set(ctx, s.tokenKey(token), username, s.tokenTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return token, nil
}

// ValidateToken resolves a bearer token to its identity.
func (s *Service) ValidateToken(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	username, err := s.redis.Get(ctx, s.tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	return &Identity{
		Username: username,
		Admin:    slices.Contains(s.admins, username),
	}, nil
}

// RevokeToken deletes a live token.
func (s *Service) RevokeToken(ctx context.Context, token string) error {
	return s.redis.Del(ctx, s.tokenKey(token)).Err()
}
