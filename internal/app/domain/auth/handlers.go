package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/sipas-id/sipas-portal/internal/app/bootstrap"
	"github.com/sipas-id/sipas-portal/internal/app/common"
	"github.com/sipas-id/sipas-portal/internal/app/middleware"
	"github.com/sipas-id/sipas-portal/internal/app/models"
	"github.com/sipas-id/sipas-portal/internal/app/observability/metrics"
	"github.com/sipas-id/sipas-portal/internal/app/roles"
	"github.com/sipas-id/sipas-portal/internal/app/session"
	"github.com/sipas-id/sipas-portal/internal/app/upstream"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type RegisterRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

type UpdateProfileRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email" binding:"omitempty,email"`
	Avatar string `json:"avatar"`
}

type AuthHandlers struct {
	client  *upstream.Client
	manager *session.Manager
	runner  *bootstrap.Runner
	logger  *zap.Logger
}

func NewAuthHandlers(client *upstream.Client, manager *session.Manager, runner *bootstrap.Runner, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{client: client, manager: manager, runner: runner, logger: logger}
}

func countAuthRequest(c *gin.Context, op, result string) {
	if m := metrics.Get(); m != nil {
		m.AuthRequestsTotal.Add(c.Request.Context(), 1, metric.WithAttributes(
			attribute.String("op", op),
			attribute.String("result", result),
		))
	}
}

// LoginHandler authenticates against the backend and installs the
// session. A token without a user is accepted: the session starts
// token-only and the bootstrap backfills the profile on the next
// dashboard load.
func (h *AuthHandlers) LoginHandler(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email dan password wajib diisi"})
		return
	}

	user, token, err := h.client.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if upstream.StatusOf(err) == http.StatusUnauthorized || upstream.StatusOf(err) == http.StatusBadRequest {
			h.logger.Warn("Invalid login credentials", zap.String("email", req.Email))
			countAuthRequest(c, "login", "invalid")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Email atau password salah"})
			return
		}
		common.RespondError(c, h.logger, err)
		return
	}
	if token == "" {
		h.logger.Error("Login response carried no token", zap.String("email", req.Email))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Login gagal: token tidak ditemukan"})
		return
	}

	if user == nil {
		// The dashboard guard will fetch the real profile; until then a
		// placeholder keeps the session shape intact.
		user = &models.User{
			Name:      "User",
			Email:     req.Email,
			Role:      string(roles.Peminjam),
			CreatedAt: time.Now(),
		}
	}

	store := h.manager.Get(c)
	h.runner.Forget(store.Key())
	store.SetHydrated()
	store.Login(user, token)
	h.manager.WriteTokenCookie(c, token)

	h.logger.Info("Login successful",
		zap.String("email", req.Email),
		zap.String("role", user.Role))
	countAuthRequest(c, "login", "success")

	c.JSON(http.StatusOK, gin.H{
		"user":     user,
		"redirect": roles.LandingPath(roles.Role(user.Role)),
	})
}

// RegisterHandler creates a borrower account upstream and, when the
// backend hands a token back, signs the new user straight in.
func (h *AuthHandlers) RegisterHandler(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data registrasi tidak valid"})
		return
	}

	user, token, err := h.client.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if upstream.StatusOf(err) == http.StatusConflict {
			c.JSON(http.StatusConflict, gin.H{"error": "Email sudah terdaftar"})
			return
		}
		common.RespondError(c, h.logger, err)
		return
	}

	if token == "" {
		c.JSON(http.StatusCreated, gin.H{"redirect": "/login"})
		return
	}
	if user == nil {
		user = &models.User{Name: req.Name, Email: req.Email, Role: string(roles.Peminjam), CreatedAt: time.Now()}
	}

	store := h.manager.Get(c)
	h.runner.Forget(store.Key())
	store.SetHydrated()
	store.Login(user, token)
	h.manager.WriteTokenCookie(c, token)

	c.JSON(http.StatusCreated, gin.H{
		"user":     user,
		"redirect": roles.LandingPath(roles.Role(user.Role)),
	})
}

// LogoutHandler clears the session locally and tells the backend on a
// best-effort basis. Local logout never fails.
func (h *AuthHandlers) LogoutHandler(c *gin.Context) {
	store := h.manager.Get(c)
	token := store.Token()

	store.Logout()
	h.manager.ClearTokenCookie(c)
	h.runner.Forget(store.Key())

	if token != "" {
		// Fire and forget; the local session is already gone.
		go func(tok string) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			h.client.Logout(ctx, upstream.StaticToken(tok))
		}(token)
	}

	countAuthRequest(c, "logout", "success")
	c.JSON(http.StatusOK, gin.H{"redirect": "/login"})
}

// ProfileHandler returns the session's own identity.
func (h *AuthHandlers) ProfileHandler(c *gin.Context) {
	if user := middleware.GetUserFromContext(c); user != nil {
		c.JSON(http.StatusOK, gin.H{"user": user})
		return
	}
	// Token-only session: the bootstrap could not resolve a profile.
	c.JSON(http.StatusOK, gin.H{"user": nil})
}

// UpdateProfileHandler pushes profile changes upstream and merges the
// result into the session.
func (h *AuthHandlers) UpdateProfileHandler(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data profil tidak valid"})
		return
	}

	store := middleware.StoreFromContext(c)
	if store == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	fields := map[string]any{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.Email != "" {
		fields["email"] = req.Email
	}
	if req.Avatar != "" {
		fields["avatar"] = req.Avatar
	}

	updated, err := h.client.UpdateProfile(c.Request.Context(), store, fields)
	if err != nil {
		common.RespondError(c, h.logger, err)
		return
	}

	if updated != nil {
		store.SetUser(updated)
	} else {
		patch := session.UserPatch{}
		if req.Name != "" {
			patch.Name = &req.Name
		}
		if req.Email != "" {
			patch.Email = &req.Email
		}
		if req.Avatar != "" {
			patch.Avatar = &req.Avatar
		}
		if err := store.UpdateUser(patch); err != nil {
			h.logger.Warn("Profile update on user-less session", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"user": store.User()})
}

// LoginPageHandler is the public login shell: it reports whether a live
// session already exists (so the client can skip the form) and drains
// any pending notices from a forced logout.
func (h *AuthHandlers) LoginPageHandler(c *gin.Context) {
	store := h.manager.Get(c)
	if !store.IsHydrated() {
		if err := store.Hydrate(c.Request.Context()); err != nil {
			h.logger.Debug("Hydration failed on login page", zap.Error(err))
		}
	}

	if store.IsAuthenticated() && store.User() != nil {
		c.Redirect(http.StatusFound, roles.LandingPath(roles.Role(store.User().Role)))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":    "login",
		"notices": middleware.DrainFlashes(c),
	})
}
