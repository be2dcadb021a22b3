package gateway

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sipas-id/sipas-portal/internal/app/middleware"
	"github.com/sipas-id/sipas-portal/internal/app/upstream"
)

// GatewayHandlers exposes the raw backend surface under /api for pages
// that need endpoints the typed client does not cover.
type GatewayHandlers struct {
	client *upstream.Client
	logger *zap.Logger
}

func NewGatewayHandlers(client *upstream.Client, logger *zap.Logger) *GatewayHandlers {
	return &GatewayHandlers{client: client, logger: logger}
}

// ForwardHandler relays /api/<path> to the backend with the session's
// bearer token swapped in.
func (h *GatewayHandlers) ForwardHandler(c *gin.Context) {
	store := middleware.StoreFromContext(c)

	path := c.Param("path")
	if c.Request.URL.RawQuery != "" {
		path += "?" + c.Request.URL.RawQuery
	}

	h.client.Forward(c.Writer, c.Request, path, store)
}
