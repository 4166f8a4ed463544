package session

import (
	"context"
	"fmt"
	"strings"

	redisclient "github.com/angelmondragon/storefront-orders/pkg/redis"
)

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

type sessionStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	AccessSessionKey(accessID string) string
}

// Checker verifies that the session behind an access token has not been
// revoked. The identity service writes one key per live access id on login
// and deletes it on logout.
type Checker struct {
	store sessionStore
}

// NewChecker constructs a session checker backed by Redis.
func NewChecker(client *redisclient.Client) (*Checker, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Checker{store: client}, nil
}

// HasSession reports whether the access id is still live.
func (c *Checker) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, nil
	}
	ok, err := c.store.Exists(ctx, c.store.AccessSessionKey(accessID))
	if err != nil {
		return false, fmt.Errorf("check access session: %w", err)
	}
	return ok, nil
}
