package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kevin-phan-25/pantrypal/internal/domain"
	"github.com/kevin-phan-25/pantrypal/internal/models"
	"github.com/kevin-phan-25/pantrypal/internal/repository"
	"github.com/kevin-phan-25/pantrypal/pkg/errors"
	"github.com/kevin-phan-25/pantrypal/pkg/middleware"
)

// maxScanImageBytes caps uploaded label images at 5 MB.
const maxScanImageBytes = 5 << 20

// ScanHandler serves the AI label scan behind the free/paid access gate.
type ScanHandler struct {
	logger  *zap.Logger
	store   repository.Store
	scanner LabelScanner
	quota   int
}

// NewScanHandler creates a scan handler.
func NewScanHandler(logger *zap.Logger, store repository.Store, scanner LabelScanner, quota int) *ScanHandler {
	return &ScanHandler{
		logger:  logger,
		store:   store,
		scanner: scanner,
		quota:   quota,
	}
}

// Scan handles POST /api/v1/scan (multipart field "image"). The gate runs
// first inside one atomic store update, so concurrent scans for one account
// cannot exceed the quota. Over quota is a normal response, not an error.
func (h *ScanHandler) Scan(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("image file is required", "image"))
		return
	}
	if file.Size > maxScanImageBytes {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("image exceeds the 5MB limit", "image"))
		return
	}

	accountID := middleware.GetAccountID(c)

	var decision domain.ScanDecision
	err = h.store.Update(c.Request.Context(), accountID, func(doc *models.AccountDoc) error {
		decision = domain.RecordScan(doc, h.quota)
		return nil
	})
	if err != nil {
		h.logger.Error("Failed to record scan", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errors.NewDatabaseError("record scan", err))
		return
	}

	if !decision.Allowed {
		h.logger.Info("Scan rejected by quota",
			zap.String("account_id", accountID),
			zap.Int("scan_count", decision.ScanCount),
		)
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"allowed": false,
			"message": decision.Message,
		})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("failed to read image", err))
		return
	}
	defer src.Close()

	image, err := io.ReadAll(io.LimitReader(src, maxScanImageBytes))
	if err != nil {
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("failed to read image", err))
		return
	}

	name, err := h.scanner.ScanLabel(c.Request.Context(), image)
	if err != nil {
		h.logger.Error("AI scan failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errors.NewStandardError("UpstreamError", "AI scan failed", ""))
		return
	}

	h.logger.Info("Label scanned",
		zap.String("account_id", accountID),
		zap.String("name", name),
		zap.Int("scan_count", decision.ScanCount),
	)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"allowed": true,
		"record": ScanRecord{
			DisplayName:    name,
			ExpirationDate: time.Now().AddDate(0, 0, domain.DefaultShelfLifeDays).Format(domain.DateLayout),
		},
	})
}
