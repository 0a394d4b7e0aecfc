package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kevin-phan-25/pantrypal/internal/cache"
	"github.com/kevin-phan-25/pantrypal/internal/domain"
	"github.com/kevin-phan-25/pantrypal/internal/events"
	"github.com/kevin-phan-25/pantrypal/internal/models"
	"github.com/kevin-phan-25/pantrypal/internal/repository"
	"github.com/kevin-phan-25/pantrypal/pkg/errors"
	"github.com/kevin-phan-25/pantrypal/pkg/middleware"
)

// InventoryHandler serves the pantry ledger: add-or-increment, list with
// derived statuses, partial edit and delete.
type InventoryHandler struct {
	logger    *zap.Logger
	store     repository.Store
	resolver  ProductResolver
	publisher events.Publisher
	cache     cache.Cache // nil when caching is disabled
	cacheTTL  time.Duration
}

// NewInventoryHandler creates an inventory handler.
func NewInventoryHandler(logger *zap.Logger, store repository.Store, resolver ProductResolver, publisher events.Publisher, cacheClient cache.Cache, cacheTTL time.Duration) *InventoryHandler {
	return &InventoryHandler{
		logger:    logger,
		store:     store,
		resolver:  resolver,
		publisher: publisher,
		cache:     cacheClient,
		cacheTTL:  cacheTTL,
	}
}

// AddItem handles POST /api/v1/inventory. The resolver runs first; the
// effective expiration (explicit override, else resolver default) is part of
// the match key, so the same code with different explicit dates never merges.
func (h *InventoryHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid add request", zap.Error(err))
		c.JSON(http.StatusBadRequest, errors.NewInvalidRequest("invalid request body", err.Error()))
		return
	}
	if req.Code == "" {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("code is required", "code"))
		return
	}

	accountID := middleware.GetAccountID(c)
	qty := domain.CoerceQuantity(req.Quantity, 1)

	resolved := h.resolver.Resolve(c.Request.Context(), req.Code)

	expiration := req.ExpirationDate
	if expiration == "" {
		expiration = resolved.ExpirationDate
	}

	item := models.InventoryItem{
		ID:             uuid.New().String(),
		Code:           req.Code,
		DisplayName:    resolved.DisplayName,
		ImageURL:       resolved.ImageURL,
		Category:       resolved.Category,
		Quantity:       qty,
		ExpirationDate: expiration,
		AddedAt:        time.Now().UTC(),
	}

	var newQuantity int
	err := h.store.Update(c.Request.Context(), accountID, func(doc *models.AccountDoc) error {
		newQuantity = domain.AddOrIncrement(doc, item)
		return nil
	})
	if err != nil {
		h.logger.Error("Failed to add item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errors.NewDatabaseError("add item", err))
		return
	}

	h.invalidate(c.Request.Context(), accountID)
	h.audit(c.Request.Context(), events.AuditEvent{
		AccountID:   accountID,
		Action:      events.ActionAdd,
		Code:        req.Code,
		DisplayName: resolved.DisplayName,
		Quantity:    qty,
		Expiration:  expiration,
		OccurredAt:  time.Now().UTC(),
	})

	h.logger.Info("Item added",
		zap.String("account_id", accountID),
		zap.String("code", req.Code),
		zap.Int("quantity", newQuantity),
	)
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"displayName": resolved.DisplayName,
		"quantity":    newQuantity,
	})
}

// ListInventory handles GET /api/v1/inventory. Statuses and the summary are
// computed at read time and never stored.
func (h *InventoryHandler) ListInventory(c *gin.Context) {
	accountID := middleware.GetAccountID(c)

	if h.cache != nil {
		if body, err := h.cache.Get(c.Request.Context(), inventoryCacheKey(accountID)); err == nil {
			c.Data(http.StatusOK, "application/json", body)
			return
		}
	}

	doc, err := h.store.Get(c.Request.Context(), accountID)
	if err != nil {
		h.logger.Error("Failed to load inventory", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errors.NewDatabaseError("list inventory", err))
		return
	}

	now := time.Now()
	resp := InventoryResponse{
		Inventory: domain.ClassifyPantry(doc.Pantry, now),
		Summary:   domain.Summarize(doc.Pantry, now),
	}

	body, err := json.Marshal(resp)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("failed to encode inventory", err))
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(c.Request.Context(), inventoryCacheKey(accountID), body, h.cacheTTL); err != nil {
			h.logger.Warn("Failed to cache inventory response", zap.Error(err))
		}
	}

	c.Data(http.StatusOK, "application/json", body)
}

// EditItem handles PUT /api/v1/item/:id. Partial update: only supplied
// fields change; AddedAt and Code never do.
func (h *InventoryHandler) EditItem(c *gin.Context) {
	itemID := c.Param("id")
	accountID := middleware.GetAccountID(c)

	var req EditItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid edit request", zap.Error(err))
		c.JSON(http.StatusBadRequest, errors.NewInvalidRequest("invalid request body", err.Error()))
		return
	}

	var quantity *int
	if req.Quantity.Set {
		q := domain.CoerceQuantity(req.Quantity, 1)
		quantity = &q
	}

	var updated models.InventoryItem
	err := h.store.Update(c.Request.Context(), accountID, func(doc *models.AccountDoc) error {
		item, err := domain.EditItem(doc, itemID, quantity, req.ExpirationDate)
		if err != nil {
			return err
		}
		updated = *item
		return nil
	})
	if err != nil {
		if err == domain.ErrItemNotFound {
			c.JSON(http.StatusNotFound, errors.NewItemNotFound(itemID))
			return
		}
		h.logger.Error("Failed to edit item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errors.NewDatabaseError("edit item", err))
		return
	}

	h.invalidate(c.Request.Context(), accountID)
	h.audit(c.Request.Context(), events.AuditEvent{
		AccountID:   accountID,
		Action:      events.ActionEdit,
		Code:        updated.Code,
		DisplayName: updated.DisplayName,
		Quantity:    updated.Quantity,
		Expiration:  updated.ExpirationDate,
		OccurredAt:  time.Now().UTC(),
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"item":    updated,
	})
}

// DeleteItem handles DELETE /api/v1/item/:id.
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	itemID := c.Param("id")
	accountID := middleware.GetAccountID(c)

	var removed models.InventoryItem
	err := h.store.Update(c.Request.Context(), accountID, func(doc *models.AccountDoc) error {
		for _, item := range doc.Pantry {
			if item.ID == itemID {
				removed = item
				break
			}
		}
		return domain.RemoveItem(doc, itemID)
	})
	if err != nil {
		if err == domain.ErrItemNotFound {
			c.JSON(http.StatusNotFound, errors.NewItemNotFound(itemID))
			return
		}
		h.logger.Error("Failed to delete item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errors.NewDatabaseError("delete item", err))
		return
	}

	h.invalidate(c.Request.Context(), accountID)
	h.audit(c.Request.Context(), events.AuditEvent{
		AccountID:   accountID,
		Action:      events.ActionDelete,
		Code:        removed.Code,
		DisplayName: removed.DisplayName,
		Quantity:    removed.Quantity,
		Expiration:  removed.ExpirationDate,
		OccurredAt:  time.Now().UTC(),
	})

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// invalidate drops every cached read for the account after a mutation.
func (h *InventoryHandler) invalidate(ctx context.Context, accountID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.DeleteByPattern(ctx, accountCachePattern(accountID)); err != nil {
		h.logger.Warn("Failed to invalidate cache", zap.String("account_id", accountID), zap.Error(err))
	}
}

// audit publishes a mutation row. Best-effort: failure is logged, never
// surfaced.
func (h *InventoryHandler) audit(ctx context.Context, event events.AuditEvent) {
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("Failed to publish audit event",
			zap.String("action", event.Action),
			zap.Error(err),
		)
	}
}
