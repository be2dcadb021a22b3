package users

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sipas-id/sipas-portal/internal/app/common"
	"github.com/sipas-id/sipas-portal/internal/app/middleware"
	"github.com/sipas-id/sipas-portal/internal/app/upstream"
)

// UsersHandlers is the admin-only user management surface; everything
// proxies through to the backend's /users endpoints.
type UsersHandlers struct {
	client *upstream.Client
	logger *zap.Logger
}

func NewUsersHandlers(client *upstream.Client, logger *zap.Logger) *UsersHandlers {
	return &UsersHandlers{client: client, logger: logger}
}

func (h *UsersHandlers) ListHandler(c *gin.Context) {
	store := middleware.StoreFromContext(c)
	list, err := h.client.ListUsers(c.Request.Context(), store)
	if err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users":   list,
		"notices": middleware.DrainFlashes(c),
	})
}

func (h *UsersHandlers) CreateHandler(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data pengguna tidak valid"})
		return
	}
	store := middleware.StoreFromContext(c)
	created, err := h.client.CreateUser(c.Request.Context(), store, fields)
	if err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": created})
}

func (h *UsersHandlers) UpdateHandler(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data pengguna tidak valid"})
		return
	}
	store := middleware.StoreFromContext(c)
	updated, err := h.client.UpdateUser(c.Request.Context(), store, c.Param("id"), fields)
	if err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": updated})
}

func (h *UsersHandlers) DeleteHandler(c *gin.Context) {
	store := middleware.StoreFromContext(c)
	if err := h.client.DeleteUser(c.Request.Context(), store, c.Param("id")); err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
