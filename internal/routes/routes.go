package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sipas-id/sipas-portal/internal/app/bootstrap"
	"github.com/sipas-id/sipas-portal/internal/app/domain/activity"
	"github.com/sipas-id/sipas-portal/internal/app/domain/auth"
	"github.com/sipas-id/sipas-portal/internal/app/domain/borrowings"
	"github.com/sipas-id/sipas-portal/internal/app/domain/dashboard"
	"github.com/sipas-id/sipas-portal/internal/app/domain/gateway"
	"github.com/sipas-id/sipas-portal/internal/app/domain/inventory"
	"github.com/sipas-id/sipas-portal/internal/app/domain/reports"
	"github.com/sipas-id/sipas-portal/internal/app/domain/users"
	"github.com/sipas-id/sipas-portal/internal/app/middleware"
	"github.com/sipas-id/sipas-portal/internal/app/roles"
	"github.com/sipas-id/sipas-portal/internal/app/session"
	"github.com/sipas-id/sipas-portal/internal/app/upstream"
)

// AppHandlers aggregates all route handler groups
type AppHandlers struct {
	Auth       *auth.AuthHandlers
	Dashboard  *dashboard.DashboardHandlers
	Users      *users.UsersHandlers
	Inventory  *inventory.InventoryHandlers
	Borrowings *borrowings.BorrowingsHandlers
	Activity   *activity.ActivityHandlers
	Reports    *reports.ReportsHandlers
	Gateway    *gateway.GatewayHandlers
}

func setupDependencies(manager *session.Manager, client *upstream.Client, runner *bootstrap.Runner, logger *zap.Logger) *AppHandlers {
	return &AppHandlers{
		Auth:       auth.NewAuthHandlers(client, manager, runner, logger),
		Dashboard:  dashboard.NewDashboardHandlers(client, logger),
		Users:      users.NewUsersHandlers(client, logger),
		Inventory:  inventory.NewInventoryHandlers(client, logger),
		Borrowings: borrowings.NewBorrowingsHandlers(client, logger),
		Activity:   activity.NewActivityHandlers(client, logger),
		Reports:    reports.NewReportsHandlers(client, logger),
		Gateway:    gateway.NewGatewayHandlers(client, logger),
	}
}

// Setup registers every route on the router. Protected groups go through the
// session guard with the role each dashboard area demands.
func Setup(r *gin.Engine, manager *session.Manager, client *upstream.Client, runner *bootstrap.Runner, logger *zap.Logger) {
	h := setupDependencies(manager, client, runner, logger)
	guard := middleware.NewGuard(manager, runner, logger)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public pages. The login page hydrates the session so an already
	// authenticated visitor gets bounced to their landing page.
	r.GET("/", h.Dashboard.RootHandler)
	r.GET("/login", h.Auth.LoginPageHandler)
	r.GET("/register", h.Auth.LoginPageHandler)
	r.GET("/forgot-password", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Hubungi administrator untuk mereset password Anda."})
	})

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.LoginHandler)
		authGroup.POST("/register", h.Auth.RegisterHandler)
		authGroup.POST("/logout", h.Auth.LogoutHandler)
	}

	// Dashboard areas, one group per role.
	r.GET("/dashboard", guard.RequireAny(), h.Dashboard.RootHandler)

	admin := r.Group("/dashboard/admin", guard.Require(roles.Admin))
	{
		admin.GET("", h.Dashboard.StatsHandler)
		admin.GET("/users", h.Users.ListHandler)
		admin.POST("/users", h.Users.CreateHandler)
		admin.PUT("/users/:id", h.Users.UpdateHandler)
		admin.DELETE("/users/:id", h.Users.DeleteHandler)
		admin.GET("/tools", h.Inventory.ListToolsHandler)
		admin.POST("/tools", h.Inventory.CreateToolHandler)
		admin.GET("/tools/:id", h.Inventory.GetToolHandler)
		admin.PUT("/tools/:id", h.Inventory.UpdateToolHandler)
		admin.DELETE("/tools/:id", h.Inventory.DeleteToolHandler)
		admin.GET("/categories", h.Inventory.ListCategoriesHandler)
		admin.POST("/categories", h.Inventory.CreateCategoryHandler)
		admin.PUT("/categories/:id", h.Inventory.UpdateCategoryHandler)
		admin.DELETE("/categories/:id", h.Inventory.DeleteCategoryHandler)
		admin.GET("/borrowings", h.Borrowings.ListHandler)
		admin.GET("/logs", h.Activity.LogsHandler)
		admin.GET("/reports", h.Reports.GenerateHandler)
	}

	petugas := r.Group("/dashboard/petugas", guard.Require(roles.Petugas))
	{
		petugas.GET("", h.Dashboard.StatsHandler)
		petugas.GET("/approvals", h.Borrowings.ApprovalsHandler)
		petugas.POST("/approvals/:id/approve", h.Borrowings.ApproveHandler)
		petugas.POST("/approvals/:id/reject", h.Borrowings.RejectHandler)
		petugas.POST("/approvals/:id/return", h.Borrowings.ReturnHandler)
		petugas.GET("/tools", h.Inventory.ListToolsHandler)
		petugas.GET("/reports", h.Reports.GenerateHandler)
	}

	peminjam := r.Group("/dashboard/peminjam", guard.Require(roles.Peminjam))
	{
		peminjam.GET("", h.Borrowings.MyHandler)
		peminjam.GET("/catalog", h.Inventory.CatalogHandler)
		peminjam.GET("/catalog/:id", h.Inventory.GetToolHandler)
		peminjam.GET("/borrowings", h.Borrowings.MyHandler)
		peminjam.POST("/borrowings", h.Borrowings.CreateHandler)
		peminjam.POST("/borrowings/:id/return", h.Borrowings.ReturnHandler)
	}

	// Profile routes are open to every authenticated role.
	profile := r.Group("/dashboard/profile", guard.RequireAny())
	{
		profile.GET("", h.Auth.ProfileHandler)
		profile.PUT("", h.Auth.UpdateProfileHandler)
	}

	// Raw passthrough to the backend for anything the typed handlers do
	// not cover. Still guarded so only live sessions reach the backend.
	r.Any("/api/*path", guard.RequireAny(), h.Gateway.ForwardHandler)
}
