package session

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/sipas-id/sipas-portal/internal/app/models"
	"github.com/sipas-id/sipas-portal/internal/app/observability/metrics"
)

// Snapshot is the durable mirror of a session, serialized under the
// store key. The shape matches what the browser client historically kept
// in local storage.
type Snapshot struct {
	User            *models.User `json:"user"`
	Token           string       `json:"token"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// UserPatch carries a partial profile update. Nil fields are left alone.
type UserPatch struct {
	Name   *string
	Email  *string
	Avatar *string
}

// Store is the single owner of one browser session's auth state. All
// transitions go through the typed mutators below; the durable mirror is
// written on every mutation and read exactly once at hydration.
//
// Invariant: authenticated implies a non-empty token. A nil user is a
// legal transient state even while authenticated (token recovered from
// the mirror before the profile fetch completes).
type Store struct {
	mu sync.RWMutex

	user          *models.User
	token         string
	authenticated bool
	hydrated      bool

	hydratedCh chan struct{}

	key       string
	persister Persister
	logger    *zap.Logger
}

func NewStore(key string, persister Persister, logger *zap.Logger) *Store {
	return &Store{
		key:        key,
		persister:  persister,
		logger:     logger.With(zap.String("session", key)),
		hydratedCh: make(chan struct{}),
	}
}

// Key returns the store's durable-mirror key.
func (s *Store) Key() string { return s.key }

// Login installs a new session, overwriting any prior one without
// confirmation. The hydration latch is untouched. An empty token would
// break the invariant and is refused.
func (s *Store) Login(user *models.User, token string) {
	if token == "" {
		s.logger.Warn("Login called with empty token, ignoring")
		return
	}

	s.mu.Lock()
	s.user = user
	s.token = token
	s.authenticated = true
	s.mu.Unlock()

	s.persist()
}

// Logout clears all session fields and the durable mirror. It always
// succeeds locally; server-side invalidation is a separate fire-and-forget
// call owned by the auth handlers.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.authenticated = false
	s.mu.Unlock()

	if err := s.persister.Delete(context.Background(), s.key); err != nil {
		s.logger.Warn("Failed to clear session mirror", zap.Error(err))
	}
}

// SetUser unconditionally overwrites the user record. Used by the
// bootstrap step once a profile fetch succeeds.
func (s *Store) SetUser(user *models.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	s.persist()
}

// UpdateUser merges a partial update into the current user. Updating a
// session with no user is a hard error: the old client silently promoted
// the partial to a full record, which hid real bugs.
func (s *Store) UpdateUser(patch UserPatch) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return models.ErrNoUser
	}
	if patch.Name != nil {
		s.user.Name = *patch.Name
	}
	if patch.Email != nil {
		s.user.Email = *patch.Email
	}
	if patch.Avatar != nil {
		s.user.Avatar = *patch.Avatar
	}
	s.mu.Unlock()

	s.persist()
	return nil
}

// SetHydrated flips the one-way hydration latch. Safe to call more than
// once; only the first call closes the channel.
func (s *Store) SetHydrated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hydrated {
		return
	}
	s.hydrated = true
	close(s.hydratedCh)
}

// Hydrated returns a channel that is closed once the durable mirror has
// been read. Dependent components subscribe rather than poll.
func (s *Store) Hydrated() <-chan struct{} {
	return s.hydratedCh
}

// Hydrate loads the persisted snapshot into memory and flips the latch.
// Idempotent: once hydrated it is a no-op. A read failure still flips the
// latch so dependents never block indefinitely; the session simply starts
// anonymous.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.RLock()
	done := s.hydrated
	s.mu.RUnlock()
	if done {
		return nil
	}

	if m := metrics.Get(); m != nil {
		m.SessionHydrationsTotal.Add(ctx, 1)
	}

	data, found, err := s.persister.Load(ctx, s.key)
	if err != nil {
		s.logger.Warn("Session mirror read failed, starting anonymous", zap.Error(err))
		s.SetHydrated()
		return err
	}

	if found {
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			s.logger.Warn("Session mirror corrupt, starting anonymous", zap.Error(err))
		} else if snap.Token != "" {
			s.mu.Lock()
			s.user = snap.User
			s.token = snap.Token
			s.authenticated = snap.IsAuthenticated
			s.mu.Unlock()
		}
	}

	s.SetHydrated()
	return nil
}

// Token returns the bearer token, or "" for an anonymous session. Safe
// on a nil receiver so a typed nil TokenSource reads as anonymous.
func (s *Store) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) User() *models.User {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *Store) IsHydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

// persist writes the current snapshot to the durable mirror. Write
// failures are swallowed: the in-memory session stays usable for the rest
// of the page life.
func (s *Store) persist() {
	s.mu.RLock()
	snap := Snapshot{User: s.user, Token: s.token, IsAuthenticated: s.authenticated}
	s.mu.RUnlock()

	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("Failed to encode session snapshot", zap.Error(err))
		return
	}
	if err := s.persister.Save(context.Background(), s.key, data); err != nil {
		s.logger.Warn("Session mirror write failed, keeping in-memory session", zap.Error(err))
	}
}
