// Package bootstrap reconciles a stored token with a possibly-missing
// user profile when a session first comes back to life.
package bootstrap

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sipas-id/sipas-portal/internal/app/observability/metrics"
	"github.com/sipas-id/sipas-portal/internal/app/session"
	"github.com/sipas-id/sipas-portal/internal/app/upstream"
)

// Outcome classifies how a bootstrap run left the session.
type Outcome int

const (
	// OutcomeAnonymous: hydrated with no token; nothing to do.
	OutcomeAnonymous Outcome = iota
	// OutcomeCompleted: the session already had a user, or the profile
	// fetch filled it in.
	OutcomeCompleted
	// OutcomeSessionInvalid: the backend rejected the token (401/403);
	// the session was logged out and the user must sign in again.
	OutcomeSessionInvalid
	// OutcomeTokenOnly: the profile fetch failed transiently; the token
	// was kept and the session stays usable without a user record.
	OutcomeTokenOnly
)

// Result is what a bootstrap run reports back to the route guard.
type Result struct {
	Outcome Outcome
	// Notice is a user-facing message; empty when nothing needs surfacing.
	Notice string
}

const (
	noticeSessionInvalid = "Sesi tidak valid. Silakan login kembali."
	noticeProfileFailed  = "Gagal mengambil profil. Silakan refresh halaman."
)

// Runner performs the one-shot session bootstrap. Each session runs at
// most once per live store; concurrent requests for the same session
// share a single in-flight profile fetch.
type Runner struct {
	client *upstream.Client
	logger *zap.Logger

	group singleflight.Group

	mu   sync.Mutex
	done map[string]Result
}

func NewRunner(client *upstream.Client, logger *zap.Logger) *Runner {
	return &Runner{
		client: client,
		logger: logger,
		done:   make(map[string]Result),
	}
}

// Run waits for the store to hydrate, then completes the session if a
// token exists without a user. Repeated calls return the memoized result;
// a second hydration event never issues a second fetch.
func (r *Runner) Run(ctx context.Context, store *session.Store) (Result, error) {
	select {
	case <-store.Hydrated():
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	r.mu.Lock()
	if res, ok := r.done[store.Key()]; ok {
		r.mu.Unlock()
		return res, nil
	}
	r.mu.Unlock()

	v, err, _ := r.group.Do(store.Key(), func() (any, error) {
		res := r.bootstrap(ctx, store)
		if res.Outcome != OutcomeTokenOnly {
			// Transient failures stay retryable on the next request;
			// every other outcome latches.
			r.mu.Lock()
			r.done[store.Key()] = res
			r.mu.Unlock()
		}
		return res, nil
	})
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

// Forget drops the latch for a session, letting the next request
// bootstrap from scratch. Called when a session logs out or in again.
func (r *Runner) Forget(key string) {
	r.mu.Lock()
	delete(r.done, key)
	r.mu.Unlock()
}

func (r *Runner) bootstrap(ctx context.Context, store *session.Store) Result {
	token := store.Token()
	l := r.logger.With(zap.String("session", store.Key()))

	if token == "" {
		l.Debug("Bootstrap: no token, staying anonymous")
		return Result{Outcome: OutcomeAnonymous}
	}
	if store.User() != nil {
		return Result{Outcome: OutcomeCompleted}
	}

	l.Debug("Bootstrap: token without user, fetching profile")
	if m := metrics.Get(); m != nil {
		m.BootstrapFetchesTotal.Add(ctx, 1)
	}
	profile, err := r.client.Profile(ctx, store)
	if err == nil && profile != nil {
		store.Login(profile, token)
		l.Info("Bootstrap: profile fetched, session completed")
		return Result{Outcome: OutcomeCompleted}
	}

	if err == nil {
		// Profile endpoint answered but carried no resolvable identity.
		l.Warn("Bootstrap: profile response had no identity, keeping token")
		return Result{Outcome: OutcomeTokenOnly, Notice: noticeProfileFailed}
	}

	switch {
	case upstream.IsAuthError(err):
		l.Warn("Bootstrap: token rejected, clearing session",
			zap.Int("status", upstream.StatusOf(err)))
		store.Logout()
		return Result{Outcome: OutcomeSessionInvalid, Notice: noticeSessionInvalid}
	case upstream.IsNotFound(err):
		// No profile endpoint on this deployment; not an auth problem.
		l.Debug("Bootstrap: profile endpoint missing, ignoring")
		return Result{Outcome: OutcomeTokenOnly}
	default:
		l.Warn("Bootstrap: profile fetch failed, token remains valid", zap.Error(err))
		return Result{Outcome: OutcomeTokenOnly, Notice: noticeProfileFailed}
	}
}
