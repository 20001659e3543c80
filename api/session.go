package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"MediaVault/utils"

	"github.com/redis/go-redis/v9"
)

// SessionStore issues and checks opaque dashboard session tokens.
type SessionStore interface {
	Create(ctx context.Context) (string, error)
	Valid(ctx context.Context, token string) (bool, error)
	Destroy(ctx context.Context, token string) error
}

// CookieSessions seals the expiry time into the token. Destroyed tokens
// are remembered in memory until they would have expired; a restart
// forgets them, so REDIS_URL is needed for revocation that survives one.
type CookieSessions struct {
	sealer *utils.Sealer
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewCookieSessions(secret string) (*CookieSessions, error) {
	sealer, err := utils.NewSealer(secret)
	if err != nil {
		return nil, fmt.Errorf("NewCookieSessions: %w", err)
	}
	return &CookieSessions{
		sealer:  sealer,
		ttl:     sessionTTL,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}, nil
}

func (c *CookieSessions) Create(ctx context.Context) (string, error) {
	nonce, err := utils.RandomToken(8)
	if err != nil {
		return "", err
	}
	expires := c.now().Add(c.ttl).UTC().Format(time.RFC3339)
	return c.sealer.Encrypt(expires + "|" + nonce)
}

func (c *CookieSessions) Valid(ctx context.Context, token string) (bool, error) {
	expires, ok := c.expiry(token)
	if !ok || !c.now().Before(expires) {
		return false, nil
	}

	c.mu.Lock()
	_, revoked := c.revoked[token]
	c.mu.Unlock()
	return !revoked, nil
}

// Destroy revokes token until its sealed expiry.
func (c *CookieSessions) Destroy(ctx context.Context, token string) error {
	expires, ok := c.expiry(token)
	if !ok {
		return nil
	}

	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for t, exp := range c.revoked {
		if !now.Before(exp) {
			delete(c.revoked, t)
		}
	}
	if now.Before(expires) {
		c.revoked[token] = expires
	}
	return nil
}

func (c *CookieSessions) expiry(token string) (time.Time, bool) {
	plain, err := c.sealer.Decrypt(token)
	if err != nil {
		return time.Time{}, false
	}
	raw, _, ok := strings.Cut(plain, "|")
	if !ok {
		return time.Time{}, false
	}
	expires, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return expires, true
}

// RedisSessions stores each session under session:<token> with a TTL.
type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client, ttl: sessionTTL}
}

func (r *RedisSessions) Create(ctx context.Context) (string, error) {
	token, err := utils.RandomToken(32)
	if err != nil {
		return "", err
	}
	if err := r.client.Set(ctx, redisSessionKey+token, time.Now().UTC().Format(time.RFC3339), r.ttl).Err(); err != nil {
		return "", fmt.Errorf("RedisSessions.Create: %w", err)
	}
	return token, nil
}

func (r *RedisSessions) Valid(ctx context.Context, token string) (bool, error) {
	err := r.client.Get(ctx, redisSessionKey+token).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("RedisSessions.Valid: %w", err)
	}
	return true, nil
}

func (r *RedisSessions) Destroy(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, redisSessionKey+token).Err(); err != nil {
		return fmt.Errorf("RedisSessions.Destroy: %w", err)
	}
	return nil
}
