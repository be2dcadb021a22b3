package activity

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sipas-id/sipas-portal/internal/app/common"
	"github.com/sipas-id/sipas-portal/internal/app/middleware"
	"github.com/sipas-id/sipas-portal/internal/app/upstream"
)

type ActivityHandlers struct {
	client *upstream.Client
	logger *zap.Logger
}

func NewActivityHandlers(client *upstream.Client, logger *zap.Logger) *ActivityHandlers {
	return &ActivityHandlers{client: client, logger: logger}
}

// LogsHandler serves the admin activity log page.
func (h *ActivityHandlers) LogsHandler(c *gin.Context) {
	store := middleware.StoreFromContext(c)
	logs, err := h.client.ActivityLogs(c.Request.Context(), store)
	if err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"logs":    logs,
		"notices": middleware.DrainFlashes(c),
	})
}
