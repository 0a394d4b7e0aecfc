package handlers

import (
	"context"
	"fmt"

	"github.com/kevin-phan-25/pantrypal/internal/models"
	"github.com/kevin-phan-25/pantrypal/internal/products"
	"github.com/kevin-phan-25/pantrypal/internal/recipes"
)

// ProductResolver resolves a scannable code into a canonical item record.
// Implementations never fail; they degrade to a fallback record.
type ProductResolver interface {
	Resolve(ctx context.Context, code string) products.ResolvedProduct
}

// LabelScanner performs OCR over a label image.
type LabelScanner interface {
	Enabled() bool
	ScanLabel(ctx context.Context, image []byte) (string, error)
}

// RecipeSuggester fetches recipe suggestions for a set of ingredients.
type RecipeSuggester interface {
	Enabled() bool
	Suggest(ctx context.Context, ingredients []string) ([]recipes.Recipe, error)
}

// AddItemRequest is the body for POST /inventory.
type AddItemRequest struct {
	Code           string         `json:"code"`
	Quantity       models.FlexInt `json:"quantity"`
	ExpirationDate string         `json:"expirationDate"`
}

// EditItemRequest is the body for PUT /item/:id. Both fields are optional;
// only supplied fields change.
type EditItemRequest struct {
	Quantity       models.FlexInt `json:"quantity"`
	ExpirationDate *string        `json:"expirationDate"`
}

// AddShoppingRequest is the body for POST /shopping. At least one of Code or
// ItemName is required.
type AddShoppingRequest struct {
	Code     string         `json:"code"`
	ItemName string         `json:"itemName"`
	Needed   models.FlexInt `json:"needed"`
}

// InventoryResponse is the body for GET /inventory.
type InventoryResponse struct {
	Inventory []models.InventoryItemView `json:"inventory"`
	Summary   models.InventorySummary    `json:"summary"`
}

// ShoppingResponse is the body for GET /shopping. List and LowStock are
// separate collections: the suggestions are advisory and never persisted.
type ShoppingResponse struct {
	List     []models.ShoppingEntry      `json:"list"`
	LowStock []models.LowStockSuggestion `json:"lowStock"`
}

// ScanRecord is the resolved result of an OCR scan, ready for the client to
// add explicitly.
type ScanRecord struct {
	DisplayName    string `json:"displayName"`
	ExpirationDate string `json:"expirationDate,omitempty"`
	Code           string `json:"code,omitempty"`
}

// Cache keys are namespaced per account so a mutation can invalidate every
// cached read for that account in one pattern delete.
func inventoryCacheKey(accountID string) string {
	return fmt.Sprintf("pantry:%s:inventory", accountID)
}

func shoppingCacheKey(accountID string) string {
	return fmt.Sprintf("pantry:%s:shopping", accountID)
}

func accountCachePattern(accountID string) string {
	return fmt.Sprintf("pantry:%s:*", accountID)
}
