package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kevin-phan-25/pantrypal/internal/models"
	"github.com/kevin-phan-25/pantrypal/internal/repository"
	"github.com/kevin-phan-25/pantrypal/pkg/errors"
	"github.com/kevin-phan-25/pantrypal/pkg/middleware"
)

// AccountHandler exposes the caller's scan metering and tier.
type AccountHandler struct {
	logger *zap.Logger
	store  repository.Store
	quota  int
}

// NewAccountHandler creates an account handler.
func NewAccountHandler(logger *zap.Logger, store repository.Store, quota int) *AccountHandler {
	return &AccountHandler{
		logger: logger,
		store:  store,
		quota:  quota,
	}
}

// Get handles GET /api/v1/account.
func (h *AccountHandler) Get(c *gin.Context) {
	accountID := middleware.GetAccountID(c)

	doc, err := h.store.Get(c.Request.Context(), accountID)
	if err != nil {
		h.logger.Error("Failed to load account", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errors.NewDatabaseError("load account", err))
		return
	}

	resp := gin.H{
		"accountId": accountID,
		"scanCount": doc.ScanCount,
		"tier":      doc.Tier,
	}
	if doc.Tier != models.TierPaid {
		remaining := h.quota - doc.ScanCount
		if remaining < 0 {
			remaining = 0
		}
		resp["remainingScans"] = remaining
	}

	c.JSON(http.StatusOK, resp)
}
