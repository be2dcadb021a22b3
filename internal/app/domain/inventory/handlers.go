package inventory

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sipas-id/sipas-portal/internal/app/common"
	"github.com/sipas-id/sipas-portal/internal/app/middleware"
	"github.com/sipas-id/sipas-portal/internal/app/upstream"
)

// InventoryHandlers covers the tool and category surfaces: the admin's
// CRUD pages and the borrower-facing catalog.
type InventoryHandlers struct {
	client *upstream.Client
	logger *zap.Logger
}

func NewInventoryHandlers(client *upstream.Client, logger *zap.Logger) *InventoryHandlers {
	return &InventoryHandlers{client: client, logger: logger}
}

func (h *InventoryHandlers) ListToolsHandler(c *gin.Context) {
	store := middleware.StoreFromContext(c)
	tools, err := h.client.ListTools(c.Request.Context(), store)
	if err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tools":   tools,
		"notices": middleware.DrainFlashes(c),
	})
}

// CatalogHandler is the peminjam landing page: the same tool list,
// categories alongside for filtering.
func (h *InventoryHandlers) CatalogHandler(c *gin.Context) {
	store := middleware.StoreFromContext(c)
	ctx := c.Request.Context()

	tools, err := h.client.ListTools(ctx, store)
	if err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	categories, err := h.client.ListCategories(ctx, store)
	if err != nil {
		// The catalog is still usable without the filter list.
		h.logger.Warn("Category list unavailable for catalog", zap.Error(err))
		categories = nil
	}

	c.JSON(http.StatusOK, gin.H{
		"tools":      tools,
		"categories": categories,
		"notices":    middleware.DrainFlashes(c),
	})
}

func (h *InventoryHandlers) GetToolHandler(c *gin.Context) {
	store := middleware.StoreFromContext(c)
	tool, err := h.client.GetTool(c.Request.Context(), store, c.Param("id"))
	if err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tool": tool})
}

func (h *InventoryHandlers) CreateToolHandler(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data alat tidak valid"})
		return
	}
	store := middleware.StoreFromContext(c)
	created, err := h.client.CreateTool(c.Request.Context(), store, fields)
	if err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tool": created})
}

func (h *InventoryHandlers) UpdateToolHandler(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data alat tidak valid"})
		return
	}
	store := middleware.StoreFromContext(c)
	updated, err := h.client.UpdateTool(c.Request.Context(), store, c.Param("id"), fields)
	if err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tool": updated})
}

func (h *InventoryHandlers) DeleteToolHandler(c *gin.Context) {
	store := middleware.StoreFromContext(c)
	if err := h.client.DeleteTool(c.Request.Context(), store, c.Param("id")); err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InventoryHandlers) ListCategoriesHandler(c *gin.Context) {
	store := middleware.StoreFromContext(c)
	categories, err := h.client.ListCategories(c.Request.Context(), store)
	if err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"notices":    middleware.DrainFlashes(c),
	})
}

func (h *InventoryHandlers) CreateCategoryHandler(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data kategori tidak valid"})
		return
	}
	store := middleware.StoreFromContext(c)
	created, err := h.client.CreateCategory(c.Request.Context(), store, fields)
	if err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": created})
}

func (h *InventoryHandlers) UpdateCategoryHandler(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data kategori tidak valid"})
		return
	}
	store := middleware.StoreFromContext(c)
	updated, err := h.client.UpdateCategory(c.Request.Context(), store, c.Param("id"), fields)
	if err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": updated})
}

func (h *InventoryHandlers) DeleteCategoryHandler(c *gin.Context) {
	store := middleware.StoreFromContext(c)
	if err := h.client.DeleteCategory(c.Request.Context(), store, c.Param("id")); err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
