package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kevin-phan-25/pantrypal/internal/cache"
	"github.com/kevin-phan-25/pantrypal/internal/domain"
	"github.com/kevin-phan-25/pantrypal/internal/events"
	"github.com/kevin-phan-25/pantrypal/internal/models"
	"github.com/kevin-phan-25/pantrypal/internal/repository"
	"github.com/kevin-phan-25/pantrypal/pkg/errors"
	"github.com/kevin-phan-25/pantrypal/pkg/middleware"
)

// ShoppingHandler serves the shopping list plus the advisory low-stock
// projection.
type ShoppingHandler struct {
	logger    *zap.Logger
	store     repository.Store
	publisher events.Publisher
	cache     cache.Cache // nil when caching is disabled
	cacheTTL  time.Duration
}

// NewShoppingHandler creates a shopping-list handler.
func NewShoppingHandler(logger *zap.Logger, store repository.Store, publisher events.Publisher, cacheClient cache.Cache, cacheTTL time.Duration) *ShoppingHandler {
	return &ShoppingHandler{
		logger:    logger,
		store:     store,
		publisher: publisher,
		cache:     cacheClient,
		cacheTTL:  cacheTTL,
	}
}

// List handles GET /api/v1/shopping. The persisted list and the derived
// low-stock suggestions are separate fields; suggestions only become list
// entries when a client adds them explicitly.
func (h *ShoppingHandler) List(c *gin.Context) {
	accountID := middleware.GetAccountID(c)

	if h.cache != nil {
		if body, err := h.cache.Get(c.Request.Context(), shoppingCacheKey(accountID)); err == nil {
			c.Data(http.StatusOK, "application/json", body)
			return
		}
	}

	doc, err := h.store.Get(c.Request.Context(), accountID)
	if err != nil {
		h.logger.Error("Failed to load shopping list", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errors.NewDatabaseError("list shopping", err))
		return
	}

	resp := ShoppingResponse{
		List:     doc.ShoppingList,
		LowStock: domain.LowStockSuggestions(doc.Pantry),
	}

	body, err := json.Marshal(resp)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("failed to encode shopping list", err))
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(c.Request.Context(), shoppingCacheKey(accountID), body, h.cacheTTL); err != nil {
			h.logger.Warn("Failed to cache shopping response", zap.Error(err))
		}
	}

	c.Data(http.StatusOK, "application/json", body)
}

// Add handles POST /api/v1/shopping. Exact-key match: increments Needed for
// a repeat add, creates the entry otherwise.
func (h *ShoppingHandler) Add(c *gin.Context) {
	var req AddShoppingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid shopping add request", zap.Error(err))
		c.JSON(http.StatusBadRequest, errors.NewInvalidRequest("invalid request body", err.Error()))
		return
	}
	if req.Code == "" && req.ItemName == "" {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("code or itemName is required", "code"))
		return
	}

	accountID := middleware.GetAccountID(c)
	entry := models.ShoppingEntry{
		Code:     req.Code,
		ItemName: req.ItemName,
		Needed:   domain.CoerceQuantity(req.Needed, 1),
		AddedAt:  time.Now().UTC(),
	}

	err := h.store.Update(c.Request.Context(), accountID, func(doc *models.AccountDoc) error {
		domain.AddShoppingEntry(doc, entry)
		return nil
	})
	if err != nil {
		h.logger.Error("Failed to add shopping entry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errors.NewDatabaseError("add shopping entry", err))
		return
	}

	h.invalidate(c.Request.Context(), accountID)
	if err := h.publisher.Publish(c.Request.Context(), events.AuditEvent{
		AccountID:   accountID,
		Action:      events.ActionShoppingAdd,
		Code:        req.Code,
		DisplayName: req.ItemName,
		Quantity:    entry.Needed,
		OccurredAt:  time.Now().UTC(),
	}); err != nil {
		h.logger.Warn("Failed to publish audit event", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Remove handles DELETE /api/v1/shopping/:key. Removes every entry whose
// code or name equals the key; removing an absent key is not an error.
func (h *ShoppingHandler) Remove(c *gin.Context) {
	key := c.Param("key")
	accountID := middleware.GetAccountID(c)

	err := h.store.Update(c.Request.Context(), accountID, func(doc *models.AccountDoc) error {
		domain.RemoveShoppingKey(doc, key)
		return nil
	})
	if err != nil {
		h.logger.Error("Failed to remove shopping entry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errors.NewDatabaseError("remove shopping entry", err))
		return
	}

	h.invalidate(c.Request.Context(), accountID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Clear handles DELETE /api/v1/shopping.
func (h *ShoppingHandler) Clear(c *gin.Context) {
	accountID := middleware.GetAccountID(c)

	err := h.store.Update(c.Request.Context(), accountID, func(doc *models.AccountDoc) error {
		doc.ShoppingList = make([]models.ShoppingEntry, 0)
		return nil
	})
	if err != nil {
		h.logger.Error("Failed to clear shopping list", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errors.NewDatabaseError("clear shopping list", err))
		return
	}

	h.invalidate(c.Request.Context(), accountID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ShoppingHandler) invalidate(ctx context.Context, accountID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.DeleteByPattern(ctx, accountCachePattern(accountID)); err != nil {
		h.logger.Warn("Failed to invalidate cache", zap.String("account_id", accountID), zap.Error(err))
	}
}
