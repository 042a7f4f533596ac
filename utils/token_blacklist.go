package utils

import (
	"sync"
	"time"
)

var (
	blacklist   = map[string]time.Time{}
	blacklistMu sync.Mutex
)

// BlacklistToken marks a token as revoked until its natural expiry.
// Expired entries are pruned on every write.
func BlacklistToken(token string, expiresAt time.Time) {
	blacklistMu.Lock()
	defer blacklistMu.Unlock()

	now := time.Now()
	for t, exp := range blacklist {
		if exp.Before(now) {
			delete(blacklist, t)
		}
	}
	blacklist[token] = expiresAt
}

// IsTokenBlacklisted reports whether the token has been revoked.
func IsTokenBlacklisted(token string) bool {
	blacklistMu.Lock()
	defer blacklistMu.Unlock()

	exp, ok := blacklist[token]
	if !ok {
		return false
	}
	if exp.Before(time.Now()) {
		delete(blacklist, token)
		return false
	}
	return true
}
