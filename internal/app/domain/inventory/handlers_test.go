package inventory

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sipas-id/sipas-portal/internal/app/upstream"
)

func newInventoryRouter(t *testing.T, backend http.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	h := NewInventoryHandlers(upstream.New(srv.URL, zap.NewNop()), zap.NewNop())

	r := gin.New()
	r.Use(sessions.Sessions("flash", cookie.NewStore([]byte("test-secret"))))
	r.GET("/catalog", h.CatalogHandler)
	r.GET("/tools", h.ListToolsHandler)
	r.GET("/tools/:id", h.GetToolHandler)
	return r
}

func TestCatalogHandler(t *testing.T) {
	t.Run("serves tools with categories", func(t *testing.T) {
		r := newInventoryRouter(t, func(w http.ResponseWriter, req *http.Request) {
			switch req.URL.Path {
			case "/tools":
				w.Write([]byte(`{"data": [{"id": "t1", "name": "Bor listrik"}]}`))
			case "/categories":
				w.Write([]byte(`{"data": [{"id": "c1", "name": "Perkakas listrik"}]}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Bor listrik")
		assert.Contains(t, w.Body.String(), "Perkakas listrik")
	})

	t.Run("category failure does not break the catalog", func(t *testing.T) {
		r := newInventoryRouter(t, func(w http.ResponseWriter, req *http.Request) {
			switch req.URL.Path {
			case "/tools":
				w.Write([]byte(`[{"id": "t1", "name": "Obeng"}]`))
			default:
				w.WriteHeader(http.StatusInternalServerError)
			}
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Obeng")
		assert.Contains(t, w.Body.String(), `"categories":null`)
	})

	t.Run("tool failure surfaces", func(t *testing.T) {
		r := newInventoryRouter(t, func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestGetToolHandler(t *testing.T) {
	t.Run("unknown tool is a 404", func(t *testing.T) {
		r := newInventoryRouter(t, func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tools/missing", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("found tool passes through", func(t *testing.T) {
		r := newInventoryRouter(t, func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "/tools/t1", req.URL.Path)
			w.Write([]byte(`{"data": {"id": "t1", "name": "Gergaji", "condition": "baik"}}`))
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tools/t1", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Gergaji")
	})
}
