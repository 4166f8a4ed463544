package redis

import "strings"

const (
	defaultKeyPrefix  = "sf"
	idempotencyPrefix = "idempotency"
	sessionPrefix     = "session"
	lockPrefix        = "lock"
)

// Keyspace builds colon separated keys under a shared prefix so several
// deployments can share one Redis database.
type Keyspace struct {
	prefix string
}

// NewKeyspace returns a keyspace rooted at prefix, or at "sf" when empty.
func NewKeyspace(prefix string) Keyspace {
	prefix = strings.Trim(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return Keyspace{prefix: prefix}
}

// Key joins parts under the prefix. Empty parts are skipped.
func (k Keyspace) Key(parts ...string) string {
	prefix := k.prefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	var b strings.Builder
	b.WriteString(prefix)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}

// IdempotencyKey returns the key for an idempotency record.
func (k Keyspace) IdempotencyKey(scope, id string) string {
	return k.Key(idempotencyPrefix, scope, id)
}

// AccessSessionKey returns the key marking a live access session.
func (k Keyspace) AccessSessionKey(accessID string) string {
	return k.Key(sessionPrefix, "access", accessID)
}

// LockKey returns the key of a named distributed lock.
func (k Keyspace) LockKey(name string) string {
	return k.Key(lockPrefix, name)
}
