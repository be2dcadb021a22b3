package borrowings

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sipas-id/sipas-portal/internal/app/common"
	"github.com/sipas-id/sipas-portal/internal/app/middleware"
	"github.com/sipas-id/sipas-portal/internal/app/models"
	"github.com/sipas-id/sipas-portal/internal/app/upstream"
)

type RejectRequest struct {
	Reason string `json:"reason"`
}

type BorrowingsHandlers struct {
	client *upstream.Client
	logger *zap.Logger
}

func NewBorrowingsHandlers(client *upstream.Client, logger *zap.Logger) *BorrowingsHandlers {
	return &BorrowingsHandlers{client: client, logger: logger}
}

// ListHandler serves the petugas/admin view of all borrowings.
func (h *BorrowingsHandlers) ListHandler(c *gin.Context) {
	store := middleware.StoreFromContext(c)
	list, err := h.client.ListBorrowings(c.Request.Context(), store)
	if err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"borrowings": list,
		"notices":    middleware.DrainFlashes(c),
	})
}

// ApprovalsHandler is the petugas landing page: borrowings still waiting
// for a decision.
func (h *BorrowingsHandlers) ApprovalsHandler(c *gin.Context) {
	store := middleware.StoreFromContext(c)
	list, err := h.client.ListBorrowings(c.Request.Context(), store)
	if err != nil {
		common.RespondError(c, h.logger, err)
		return
	}

	pending := make([]models.Borrowing, 0, len(list))
	for _, b := range list {
		if b.Status == models.BorrowingPending {
			pending = append(pending, b)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"approvals": pending,
		"notices":   middleware.DrainFlashes(c),
	})
}

// MyHandler serves the borrower's own loans.
func (h *BorrowingsHandlers) MyHandler(c *gin.Context) {
	store := middleware.StoreFromContext(c)
	list, err := h.client.MyBorrowings(c.Request.Context(), store)
	if err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"borrowings": list,
		"notices":    middleware.DrainFlashes(c),
	})
}

func (h *BorrowingsHandlers) CreateHandler(c *gin.Context) {
	var req models.CreateBorrowingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data peminjaman tidak valid"})
		return
	}
	store := middleware.StoreFromContext(c)
	created, err := h.client.CreateBorrowing(c.Request.Context(), store, req)
	if err != nil {
		// Stock-exceeded and similar business errors surface inline with
		// the backend's status.
		common.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"borrowing": created})
}

func (h *BorrowingsHandlers) ApproveHandler(c *gin.Context) {
	store := middleware.StoreFromContext(c)
	updated, err := h.client.ApproveBorrowing(c.Request.Context(), store, c.Param("id"))
	if err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"borrowing": updated})
}

func (h *BorrowingsHandlers) RejectHandler(c *gin.Context) {
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "alasan penolakan tidak valid"})
		return
	}
	store := middleware.StoreFromContext(c)
	updated, err := h.client.RejectBorrowing(c.Request.Context(), store, c.Param("id"), req.Reason)
	if err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"borrowing": updated})
}

func (h *BorrowingsHandlers) ReturnHandler(c *gin.Context) {
	store := middleware.StoreFromContext(c)
	updated, err := h.client.ReturnBorrowing(c.Request.Context(), store, c.Param("id"))
	if err != nil {
		common.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"borrowing": updated})
}
