package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Webzensify/uber-web/internal/domain"
)

const keyPrefix = "session:"

// Store holds the authenticated principal, role and credential token for each
// browser session. The triple is serialized as a single record so a commit or
// clear can never leave a principal without a token behind, even if the
// process dies mid-operation.
type Store struct {
	kv  KV
	ttl time.Duration
}

func NewStore(kv KV, ttl time.Duration) *Store {
	return &Store{kv: kv, ttl: ttl}
}

// Commit overwrites any prior session for sid with the given credential set.
func (s *Store) Commit(ctx context.Context, sid string, principal *domain.Principal, role domain.Role, token string) error {
	if principal == nil || token == "" {
		return fmt.Errorf("session: refusing to commit incomplete credential set")
	}
	if !role.Valid() {
		return fmt.Errorf("session: unknown role %q", role)
	}
	raw, err := json.Marshal(domain.Session{
		Principal: principal,
		Role:      role,
		Token:     token,
	})
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	return s.kv.Set(ctx, keyPrefix+sid, string(raw), s.ttl)
}

// Restore reads the persisted session for sid. A missing record yields an
// empty session. A corrupt or partial record is erased and also yields an
// empty session; the user simply lands on the public entry view.
func (s *Store) Restore(ctx context.Context, sid string) (domain.Session, error) {
	raw, err := s.kv.Get(ctx, keyPrefix+sid)
	if errors.Is(err, ErrNoRecord) {
		return domain.Session{}, nil
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("session: restore: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil || !sess.Active() {
		_ = s.kv.Del(ctx, keyPrefix+sid)
		return domain.Session{}, nil
	}
	return sess, nil
}

// Current is the synchronous read used on every routing decision. Any storage
// failure degrades to "no session" rather than surfacing an error mid-render.
func (s *Store) Current(ctx context.Context, sid string) domain.Session {
	sess, err := s.Restore(ctx, sid)
	if err != nil {
		return domain.Session{}
	}
	return sess
}

// Clear erases the persisted session. Clearing an already-empty session is a
// no-op, so calling it twice is equivalent to calling it once.
func (s *Store) Clear(ctx context.Context, sid string) error {
	return s.kv.Del(ctx, keyPrefix+sid)
}
