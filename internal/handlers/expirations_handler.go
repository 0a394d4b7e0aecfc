package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kevin-phan-25/pantrypal/internal/domain"
	"github.com/kevin-phan-25/pantrypal/internal/events"
	"github.com/kevin-phan-25/pantrypal/internal/repository"
	"github.com/kevin-phan-25/pantrypal/pkg/errors"
)

// expiryNoticeDays is the look-ahead for expiry notifications.
const expiryNoticeDays = 3

// ExpirationsHandler is the maintenance hook a scheduler calls daily. It
// sweeps every account and publishes a notification event per item expiring
// within the notice window. Delivery to a push channel is external.
type ExpirationsHandler struct {
	logger    *zap.Logger
	store     repository.Store
	publisher events.Publisher
}

// NewExpirationsHandler creates an expirations sweep handler.
func NewExpirationsHandler(logger *zap.Logger, store repository.Store, publisher events.Publisher) *ExpirationsHandler {
	return &ExpirationsHandler{
		logger:    logger,
		store:     store,
		publisher: publisher,
	}
}

// Check handles POST /api/v1/check-expirations.
func (h *ExpirationsHandler) Check(c *gin.Context) {
	accounts, err := h.store.Accounts(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list accounts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errors.NewDatabaseError("list accounts", err))
		return
	}

	now := time.Now()
	notified := 0
	for _, accountID := range accounts {
		doc, err := h.store.Get(c.Request.Context(), accountID)
		if err != nil {
			h.logger.Warn("Skipping account in expiry sweep",
				zap.String("account_id", accountID),
				zap.Error(err),
			)
			continue
		}

		for _, item := range doc.Pantry {
			exp, err := time.Parse(domain.DateLayout, item.ExpirationDate)
			if err != nil {
				continue
			}
			daysLeft := int(exp.Sub(now).Hours() / 24)
			if exp.Before(now) || daysLeft > expiryNoticeDays {
				continue
			}

			event := events.ExpiringItemEvent{
				AccountID:   accountID,
				Code:        item.Code,
				DisplayName: item.DisplayName,
				Expiration:  item.ExpirationDate,
				DaysLeft:    daysLeft,
				OccurredAt:  now.UTC(),
			}
			if err := h.publisher.Publish(c.Request.Context(), event); err != nil {
				h.logger.Warn("Failed to publish expiry notification",
					zap.String("account_id", accountID),
					zap.String("code", item.Code),
					zap.Error(err),
				)
				continue
			}
			notified++
		}
	}

	h.logger.Info("Expiry sweep complete",
		zap.Int("accounts", len(accounts)),
		zap.Int("notified", notified),
	)
	c.JSON(http.StatusOK, gin.H{"success": true, "notified": notified})
}
