package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
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
	"github.com/sipas-id/sipas-portal/internal/app/session"
	"github.com/sipas-id/sipas-portal/internal/app/upstream"
	"github.com/sipas-id/sipas-portal/internal/pkg/config"
)

type authFixture struct {
	mr      *miniredis.Miniredis
	manager *session.Manager
	router  *gin.Engine
}

func newAuthFixture(t *testing.T, backend http.HandlerFunc) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	upstream.ResetDiscovery()
	t.Cleanup(upstream.ResetDiscovery)

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	manager := session.NewManager(session.NewRedisPersister(rdb, time.Hour), config.SessionConfig{
		CookieName:      "sipas_sid",
		TokenCookieName: "auth-token",
		CookieMaxAge:    time.Hour,
	}, zap.NewNop())

	client := upstream.New(srv.URL, zap.NewNop())
	runner := bootstrap.NewRunner(client, zap.NewNop())
	h := NewAuthHandlers(client, manager, runner, zap.NewNop())

	r := gin.New()
	r.Use(sessions.Sessions("flash", cookie.NewStore([]byte("test-secret"))))
	r.POST("/auth/login", h.LoginHandler)
	r.POST("/auth/register", h.RegisterHandler)
	r.POST("/auth/logout", h.LogoutHandler)
	r.GET("/login", h.LoginPageHandler)

	return &authFixture{mr: mr, manager: manager, router: r}
}

func (f *authFixture) post(path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	f.router.ServeHTTP(w, req)
	return w
}

func tokenCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "auth-token" {
			return ck
		}
	}
	return nil
}

func TestLoginHandler(t *testing.T) {
	t.Run("full response installs the session", func(t *testing.T) {
		f := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/login", r.URL.Path)
			w.Write([]byte(`{"token": "tok-1", "user": {"id": 1, "nama_lengkap": "Pak Agus", "email": "agus@sekolah.sch.id", "role": "admin"}}`))
		})

		w := f.post("/auth/login", `{"email": "agus@sekolah.sch.id", "password": "rahasia1"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			User     *models.User `json:"user"`
			Redirect string       `json:"redirect"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "/dashboard/admin", resp.Redirect)
		require.NotNil(t, resp.User)
		assert.Equal(t, "Pak Agus", resp.User.Name)

		ck := tokenCookie(w)
		require.NotNil(t, ck, "token cookie must be written")
		assert.Equal(t, "tok-1", ck.Value)
	})

	t.Run("token-only response gets a placeholder user", func(t *testing.T) {
		f := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"access_token": "tok-2"}`))
		})

		w := f.post("/auth/login", `{"email": "dewi@sekolah.sch.id", "password": "rahasia1"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			User     *models.User `json:"user"`
			Redirect string       `json:"redirect"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.User)
		assert.Equal(t, "User", resp.User.Name)
		assert.Equal(t, "dewi@sekolah.sch.id", resp.User.Email)
		assert.Equal(t, "/dashboard/peminjam/catalog", resp.Redirect)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		f := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		w := f.post("/auth/login", `{"email": "x@sekolah.sch.id", "password": "salah123"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Email atau password salah")
		assert.Nil(t, tokenCookie(w))
	})

	t.Run("response without token is a gateway error", func(t *testing.T) {
		f := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"user": {"id": 1, "name": "A"}}`))
		})

		w := f.post("/auth/login", `{"email": "x@sekolah.sch.id", "password": "rahasia1"}`)
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("malformed request body", func(t *testing.T) {
		f := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {})

		w := f.post("/auth/login", `{"email": "not-an-email"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRegisterHandler(t *testing.T) {
	t.Run("token in response signs the user straight in", func(t *testing.T) {
		f := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"token": "tok-new", "user": {"id": 4, "name": "Andi", "role": "peminjam"}}`))
		})

		w := f.post("/auth/register", `{"name": "Andi", "email": "andi@sekolah.sch.id", "password": "rahasia1", "confirmPassword": "rahasia1"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, tokenCookie(w))
		assert.Contains(t, w.Body.String(), "/dashboard/peminjam/catalog")
	})

	t.Run("no token means back to login", func(t *testing.T) {
		f := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"user": {"id": 4, "name": "Andi"}}`))
		})

		w := f.post("/auth/register", `{"name": "Andi", "email": "andi@sekolah.sch.id", "password": "rahasia1", "confirmPassword": "rahasia1"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Nil(t, tokenCookie(w))
		assert.Contains(t, w.Body.String(), "/login")
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
		})

		w := f.post("/auth/register", `{"name": "Andi", "email": "andi@sekolah.sch.id", "password": "rahasia1", "confirmPassword": "rahasia1"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "Email sudah terdaftar")
	})

	t.Run("mismatched password confirmation", func(t *testing.T) {
		f := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {})

		w := f.post("/auth/register", `{"name": "Andi", "email": "andi@sekolah.sch.id", "password": "rahasia1", "confirmPassword": "beda1234"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLogoutHandler(t *testing.T) {
	f := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	sid := "sid-logout"
	f.mr.Set("auth-storage:"+sid, `{"user": null, "token": "tok-live", "isAuthenticated": true}`)

	w := f.post("/auth/logout", ``, &http.Cookie{Name: "sipas_sid", Value: sid})
	require.Equal(t, http.StatusOK, w.Code)

	ck := tokenCookie(w)
	require.NotNil(t, ck)
	assert.True(t, ck.MaxAge < 0, "token cookie must be expired")
	assert.Contains(t, w.Body.String(), "/login")
	assert.False(t, f.mr.Exists("auth-storage:"+sid), "durable mirror must be cleared")
}

func TestLoginPageHandler(t *testing.T) {
	t.Run("anonymous visitor gets the login shell", func(t *testing.T) {
		f := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"page":"login"`)
	})

	t.Run("live session bounces to its landing page", func(t *testing.T) {
		f := newAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {})

		sid := "sid-live"
		snap, _ := json.Marshal(session.Snapshot{
			User:            &models.User{ID: "2", Name: "Siti", Role: "petugas"},
			Token:           "tok",
			IsAuthenticated: true,
		})
		f.mr.Set("auth-storage:"+sid, string(snap))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.AddCookie(&http.Cookie{Name: "sipas_sid", Value: sid})
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/dashboard/petugas/approvals", w.Header().Get("Location"))
	})
}
