package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sipas-id/sipas-portal/internal/pkg/config"
)

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		CookieName:      "sipas_sid",
		TokenCookieName: "auth-token",
		CookieMaxAge:    24 * time.Hour,
	}
}

func TestManagerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	persister, _ := newTestPersister(t)
	m := NewManager(persister, testSessionConfig(), zap.NewNop())

	t.Run("first visit mints a sid cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		store := m.Get(c)
		require.NotNil(t, store)

		var sidCookie *http.Cookie
		for _, ck := range w.Result().Cookies() {
			if ck.Name == "sipas_sid" {
				sidCookie = ck
			}
		}
		require.NotNil(t, sidCookie, "sid cookie should be set")
		assert.NotEmpty(t, sidCookie.Value)
		assert.True(t, sidCookie.HttpOnly)
	})

	t.Run("same sid yields the same live store", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "sipas_sid", Value: "fixed-sid"})

		c1, _ := gin.CreateTestContext(httptest.NewRecorder())
		c1.Request = req
		c2, _ := gin.CreateTestContext(httptest.NewRecorder())
		c2.Request = req

		assert.Same(t, m.Get(c1), m.Get(c2))
	})
}

func TestManagerTokenCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	persister, _ := newTestPersister(t)
	m := NewManager(persister, testSessionConfig(), zap.NewNop())

	t.Run("write mirrors the bearer token", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		m.WriteTokenCookie(c, "tok-xyz")

		header := w.Header().Get("Set-Cookie")
		assert.Contains(t, header, "auth-token=tok-xyz")
		assert.Contains(t, strings.ToLower(header), "httponly")
	})

	t.Run("clear expires the cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		m.ClearTokenCookie(c)

		header := w.Header().Get("Set-Cookie")
		assert.Contains(t, header, "auth-token=")
		assert.Contains(t, header, "Max-Age=0")
	})

	assert.Equal(t, "auth-token", m.TokenCookieName())
}
