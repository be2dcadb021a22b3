package reports

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sipas-id/sipas-portal/internal/app/common"
	"github.com/sipas-id/sipas-portal/internal/app/middleware"
	"github.com/sipas-id/sipas-portal/internal/app/upstream"
)

type ReportsHandlers struct {
	client *upstream.Client
	logger *zap.Logger
}

func NewReportsHandlers(client *upstream.Client, logger *zap.Logger) *ReportsHandlers {
	return &ReportsHandlers{client: client, logger: logger}
}

// GenerateHandler streams the backend's generated report straight to the
// browser. Report rendering itself lives upstream.
func (h *ReportsHandlers) GenerateHandler(c *gin.Context) {
	reportType := c.DefaultQuery("type", "borrowings")
	period := c.DefaultQuery("period", "monthly")

	store := middleware.StoreFromContext(c)

	c.Writer.Header().Set("Content-Disposition", `attachment; filename="laporan-`+reportType+`-`+period+`.pdf"`)
	if err := h.client.GenerateReport(c.Request.Context(), store, reportType, period, c.Writer); err != nil {
		c.Writer.Header().Del("Content-Disposition")
		common.RespondError(c, h.logger, err)
	}
}
