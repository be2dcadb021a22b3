package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sipas-id/sipas-portal/internal/app/common"
	"github.com/sipas-id/sipas-portal/internal/app/middleware"
	"github.com/sipas-id/sipas-portal/internal/app/roles"
	"github.com/sipas-id/sipas-portal/internal/app/upstream"
)

type DashboardHandlers struct {
	client *upstream.Client
	logger *zap.Logger
}

func NewDashboardHandlers(client *upstream.Client, logger *zap.Logger) *DashboardHandlers {
	return &DashboardHandlers{client: client, logger: logger}
}

// RootHandler sends an authenticated user visiting the bare dashboard
// root to their role's landing page.
func (h *DashboardHandlers) RootHandler(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		// Token-only session: no role to route on yet, fall back to the
		// least privileged home.
		c.Redirect(http.StatusFound, roles.LandingPath(roles.Peminjam))
		return
	}
	c.Redirect(http.StatusFound, roles.LandingPath(roles.Role(user.Role)))
}

// StatsHandler backs the admin and petugas dashboard home pages.
func (h *DashboardHandlers) StatsHandler(c *gin.Context) {
	store := middleware.StoreFromContext(c)
	stats, err := h.client.DashboardStats(c.Request.Context(), store)
	if err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stats":   stats,
		"notices": middleware.DrainFlashes(c),
	})
}
