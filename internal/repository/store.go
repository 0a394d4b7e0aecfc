package repository

import (
	"context"

	"github.com/kevin-phan-25/pantrypal/internal/models"
)

// Store is the per-account document storage capability. Every backend must
// make Update an atomic read-modify-write for the account: two concurrent
// updates for the same account never interleave, so quantity increments and
// scan-count bumps cannot be lost.
//
// Get returns an empty free-tier document for unknown accounts; accounts are
// created implicitly by their first Update.
type Store interface {
	Get(ctx context.Context, accountID string) (*models.AccountDoc, error)
	// Update loads the account document, applies fn, and persists the
	// result. fn returning an error aborts without persisting anything.
	Update(ctx context.Context, accountID string, fn func(doc *models.AccountDoc) error) error
	// Accounts lists all known account ids (maintenance sweeps only).
	Accounts(ctx context.Context) ([]string, error)
	Close() error
}

// cloneDoc returns a deep copy so callers can never mutate stored state
// outside an Update.
func cloneDoc(doc *models.AccountDoc) *models.AccountDoc {
	clone := &models.AccountDoc{
		Pantry:       make([]models.InventoryItem, len(doc.Pantry)),
		ShoppingList: make([]models.ShoppingEntry, len(doc.ShoppingList)),
		ScanCount:    doc.ScanCount,
		Tier:         doc.Tier,
	}
	copy(clone.Pantry, doc.Pantry)
	copy(clone.ShoppingList, doc.ShoppingList)
	return clone
}
