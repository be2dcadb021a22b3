package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sipas-id/sipas-portal/internal/app/bootstrap"
	"github.com/sipas-id/sipas-portal/internal/app/models"
	"github.com/sipas-id/sipas-portal/internal/app/roles"
	"github.com/sipas-id/sipas-portal/internal/app/session"
	"github.com/sipas-id/sipas-portal/internal/app/upstream"
	"github.com/sipas-id/sipas-portal/internal/pkg/config"
)

type guardFixture struct {
	mr     *miniredis.Miniredis
	router *gin.Engine
}

func newGuardFixture(t *testing.T, upstreamURL string) *guardFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	upstream.ResetDiscovery()
	t.Cleanup(upstream.ResetDiscovery)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	persister := session.NewRedisPersister(rdb, time.Hour)
	manager := session.NewManager(persister, config.SessionConfig{
		CookieName:      "sipas_sid",
		TokenCookieName: "auth-token",
		CookieMaxAge:    time.Hour,
	}, zap.NewNop())

	client := upstream.New(upstreamURL, zap.NewNop())
	runner := bootstrap.NewRunner(client, zap.NewNop())
	guard := NewGuard(manager, runner, zap.NewNop())

	r := gin.New()
	r.Use(sessions.Sessions("flash", cookie.NewStore([]byte("test-secret"))))

	whoami := func(c *gin.Context) {
		user := GetUserFromContext(c)
		if user != nil {
			c.JSON(http.StatusOK, gin.H{"name": user.Name})
			return
		}
		c.JSON(http.StatusOK, gin.H{"name": nil})
	}
	r.GET("/dashboard/admin", guard.Require(roles.Admin), whoami)
	r.GET("/dashboard/petugas/approvals", guard.Require(roles.Petugas), whoami)
	r.GET("/dashboard/profile", guard.RequireAny(), whoami)

	return &guardFixture{mr: mr, router: r}
}

// seedSession plants a durable mirror so the guard's hydration finds it.
func (f *guardFixture) seedSession(t *testing.T, sid, token string, user *models.User) {
	t.Helper()
	snap, err := json.Marshal(session.Snapshot{User: user, Token: token, IsAuthenticated: token != ""})
	require.NoError(t, err)
	f.mr.Set("auth-storage:"+sid, string(snap))
}

func (f *guardFixture) get(path, sid string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sipas_sid", Value: sid})
	}
	f.router.ServeHTTP(w, req)
	return w
}

func TestGuardAnonymousRedirects(t *testing.T) {
	f := newGuardFixture(t, "http://backend.invalid")

	w := f.get("/dashboard/admin", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestGuardMatchingRolePasses(t *testing.T) {
	f := newGuardFixture(t, "http://backend.invalid")
	f.seedSession(t, "sid-admin", "tok", &models.User{ID: "1", Name: "Pak Agus", Role: "admin"})

	w := f.get("/dashboard/admin", "sid-admin")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Pak Agus")
}

func TestGuardRoleMismatchRedirectsToOwnLanding(t *testing.T) {
	f := newGuardFixture(t, "http://backend.invalid")
	f.seedSession(t, "sid-petugas", "tok", &models.User{ID: "2", Name: "Siti", Role: "petugas"})

	w := f.get("/dashboard/admin", "sid-petugas")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard/petugas/approvals", w.Header().Get("Location"))
}

func TestGuardRequireAnyAdmitsEveryRole(t *testing.T) {
	f := newGuardFixture(t, "http://backend.invalid")
	f.seedSession(t, "sid-any", "tok", &models.User{ID: "3", Name: "Dewi", Role: "peminjam"})

	w := f.get("/dashboard/profile", "sid-any")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGuardCompletesTokenOnlySession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 9, "nama_lengkap": "Bu Rina", "role": "petugas"}`))
	}))
	defer srv.Close()

	f := newGuardFixture(t, srv.URL)
	f.seedSession(t, "sid-tokenonly", "tok-recovered", nil)

	w := f.get("/dashboard/petugas/approvals", "sid-tokenonly")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Bu Rina")
}

func TestGuardInvalidTokenEvictsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	f := newGuardFixture(t, srv.URL)
	f.seedSession(t, "sid-stale", "tok-stale", nil)

	w := f.get("/dashboard/profile", "sid-stale")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	var cleared bool
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "auth-token" && ck.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "token cookie should be expired on eviction")

	// The mirror is gone too.
	assert.False(t, f.mr.Exists("auth-storage:sid-stale"))
}
