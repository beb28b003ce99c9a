package mem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// ResetTokenStore holds single-use password reset tokens. Tokens are keyed by
// their SHA-256 digest so the raw value never sits in the store.
type ResetTokenStore interface {
	Set(ctx context.Context, token string, accountEmail string, ttl time.Duration) error

	// Consume returns the email bound to token and removes it.
	// Returns "" if the token is missing or expired.
	Consume(ctx context.Context, token string) (string, error)
}

type entry struct {
	email     string
	expiresAt time.Time
}

type ResetTokens struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time
}

func NewResetTokens() *ResetTokens {
	return &ResetTokens{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (s *ResetTokens) Set(_ context.Context, token string, accountEmail string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	s.data[tokenKey(token)] = entry{
		email:     accountEmail,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *ResetTokens) Consume(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tokenKey(token)
	e, ok := s.data[key]
	if !ok {
		return "", nil
	}
	delete(s.data, key)
	if s.now().After(e.expiresAt) {
		return "", nil
	}
	return e.email, nil
}

// sweepLocked drops expired entries so abandoned tokens do not accumulate.
func (s *ResetTokens) sweepLocked() {
	now := s.now()
	for k, e := range s.data {
		if now.After(e.expiresAt) {
			delete(s.data, k)
		}
	}
}

func tokenKey(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}
