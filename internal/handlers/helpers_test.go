package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kevin-phan-25/pantrypal/internal/domain"
	"github.com/kevin-phan-25/pantrypal/internal/products"
	"github.com/kevin-phan-25/pantrypal/internal/recipes"
	"github.com/kevin-phan-25/pantrypal/pkg/middleware"
)

// stubResolver returns a fixed record per code, falling back to the unknown
// record like the real resolver does.
type stubResolver struct {
	records map[string]products.ResolvedProduct
	calls   int
}

func (r *stubResolver) Resolve(ctx context.Context, code string) products.ResolvedProduct {
	r.calls++
	if record, ok := r.records[code]; ok {
		return record
	}
	return products.ResolvedProduct{
		Code:           code,
		DisplayName:    "Unknown Item",
		Category:       "Unknown",
		ExpirationDate: time.Now().AddDate(0, 0, domain.DefaultShelfLifeDays).Format(domain.DateLayout),
	}
}

type stubScanner struct {
	enabled bool
	name    string
	err     error
	calls   int
}

func (s *stubScanner) Enabled() bool { return s.enabled }

func (s *stubScanner) ScanLabel(ctx context.Context, image []byte) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.name, nil
}

type stubSuggester struct {
	enabled     bool
	recipes     []recipes.Recipe
	err         error
	ingredients []string
}

func (s *stubSuggester) Enabled() bool { return s.enabled }

func (s *stubSuggester) Suggest(ctx context.Context, ingredients []string) ([]recipes.Recipe, error) {
	s.ingredients = ingredients
	if s.err != nil {
		return nil, s.err
	}
	return s.recipes, nil
}

// withAccount stands in for the auth middleware in handler tests.
func withAccount(accountID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.AccountIDKey, accountID)
		c.Next()
	}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
