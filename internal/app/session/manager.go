package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/sipas-id/sipas-portal/internal/pkg/config"
)

// Manager hands out the live Store for each browser session. Sessions are
// identified by an opaque sid cookie; live stores are cached in-process
// and fall back to the durable mirror after eviction, so a restart or
// cache miss just re-hydrates.
type Manager struct {
	persister Persister
	stores    *gocache.Cache
	cfg       config.SessionConfig
	logger    *zap.Logger
}

func NewManager(persister Persister, cfg config.SessionConfig, logger *zap.Logger) *Manager {
	ttl := cfg.CookieMaxAge
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		persister: persister,
		stores:    gocache.New(ttl, 10*time.Minute),
		cfg:       cfg,
		logger:    logger,
	}
}

// Get returns the Store for the request's session, minting a sid cookie
// for first-time visitors. The store is not hydrated here; the route
// guard owns hydration so that "not yet hydrated" stays an observable
// state.
func (m *Manager) Get(c *gin.Context) *Store {
	sid, err := c.Cookie(m.cfg.CookieName)
	if err != nil || sid == "" {
		sid = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(m.cfg.CookieName, sid, int(m.cfg.CookieMaxAge.Seconds()), "/", "", m.cfg.SecureCookies, true)
	}
	return m.bySID(sid)
}

func (m *Manager) bySID(sid string) *Store {
	if cached, ok := m.stores.Get(sid); ok {
		return cached.(*Store)
	}
	store := NewStore(sid, m.persister, m.logger)
	// Two racing first requests may both build a store; Add keeps the
	// winner and we return whatever ended up cached.
	if err := m.stores.Add(sid, store, gocache.DefaultExpiration); err != nil {
		if cached, ok := m.stores.Get(sid); ok {
			return cached.(*Store)
		}
	}
	return store
}

// WriteTokenCookie mirrors the bearer token into the cookie consumed by
// the edge routing filter, which cannot reach the durable mirror.
func (m *Manager) WriteTokenCookie(c *gin.Context, token string) {
	maxAge := int(m.cfg.CookieMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = 86400
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cfg.TokenCookieName, token, maxAge, "/", "", m.cfg.SecureCookies, true)
}

// ClearTokenCookie removes the mirrored token on logout.
func (m *Manager) ClearTokenCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cfg.TokenCookieName, "", -1, "/", "", m.cfg.SecureCookies, true)
}

// TokenCookieName exposes the cookie key for the edge filter.
func (m *Manager) TokenCookieName() string {
	return m.cfg.TokenCookieName
}
