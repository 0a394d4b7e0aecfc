package domain

import (
	"time"

	"github.com/kevin-phan-25/pantrypal/internal/models"
)

// Item statuses derived at read time
const (
	StatusExpired  = "expired"
	StatusExpiring = "expiring"
	StatusGood     = "good"
)

const (
	// LowStockThreshold marks an item as low stock at or below this quantity
	LowStockThreshold = 2
	// RestockTarget is the quantity low-stock suggestions aim to restore
	RestockTarget = 3
	// ExpiringWindowDays is the look-ahead window for "expiring" status
	ExpiringWindowDays = 7
	// FreeScanQuota is the lifetime scan allowance on the free tier
	FreeScanQuota = 10
	// DefaultShelfLifeDays is used when no category or date is known
	DefaultShelfLifeDays = 30
)

// DateLayout is the calendar-date format used for expiration dates.
const DateLayout = "2006-01-02"

// CoerceQuantity applies the lax-input rule for quantities: anything that did
// not parse, was omitted, or came in below 1 becomes the fallback.
func CoerceQuantity(q models.FlexInt, fallback int) int {
	if !q.Set || q.Value < 1 {
		return fallback
	}
	return q.Value
}

// ItemStatus classifies an expiration date relative to now. Dates that do not
// parse are treated as good, matching the permissive read path.
func ItemStatus(expirationDate string, now time.Time) string {
	exp, err := time.Parse(DateLayout, expirationDate)
	if err != nil {
		return StatusGood
	}
	if exp.Before(now) {
		return StatusExpired
	}
	if !exp.After(now.AddDate(0, 0, ExpiringWindowDays)) {
		return StatusExpiring
	}
	return StatusGood
}

// ClassifyPantry attaches a read-time status to every item.
func ClassifyPantry(pantry []models.InventoryItem, now time.Time) []models.InventoryItemView {
	views := make([]models.InventoryItemView, 0, len(pantry))
	for _, item := range pantry {
		views = append(views, models.InventoryItemView{
			InventoryItem: item,
			Status:        ItemStatus(item.ExpirationDate, now),
		})
	}
	return views
}

// Summarize aggregates the pantry: total units, low-stock count and the
// expiring/expired counts inside the look-ahead window.
func Summarize(pantry []models.InventoryItem, now time.Time) models.InventorySummary {
	var s models.InventorySummary
	for _, item := range pantry {
		s.TotalItems += item.Quantity
		if item.Quantity <= LowStockThreshold {
			s.LowStock++
		}
		switch ItemStatus(item.ExpirationDate, now) {
		case StatusExpiring:
			s.ExpiringSoon++
		case StatusExpired:
			s.Expired++
		}
	}
	return s
}

// LowStockSuggestions projects the pantry onto advisory shopping entries for
// items at or below the threshold. needed = max(1, RestockTarget - quantity).
func LowStockSuggestions(pantry []models.InventoryItem) []models.LowStockSuggestion {
	suggestions := make([]models.LowStockSuggestion, 0)
	for _, item := range pantry {
		if item.Quantity > LowStockThreshold {
			continue
		}
		needed := RestockTarget - item.Quantity
		if needed < 1 {
			needed = 1
		}
		suggestions = append(suggestions, models.LowStockSuggestion{
			Code:        item.Code,
			DisplayName: item.DisplayName,
			Needed:      needed,
		})
	}
	return suggestions
}

// AddOrIncrement merges an item into the pantry. The match key is
// (code, expiration date): a repeat add of the pair increments the existing
// quantity; differing expirations always create a separate item. Returns the
// resulting quantity of the touched item.
func AddOrIncrement(doc *models.AccountDoc, item models.InventoryItem) int {
	for i := range doc.Pantry {
		if doc.Pantry[i].Code == item.Code && doc.Pantry[i].ExpirationDate == item.ExpirationDate {
			doc.Pantry[i].Quantity += item.Quantity
			return doc.Pantry[i].Quantity
		}
	}
	doc.Pantry = append(doc.Pantry, item)
	return item.Quantity
}

// EditItem applies a partial update to the item with the given id. Only the
// supplied fields change; AddedAt and Code never do.
func EditItem(doc *models.AccountDoc, itemID string, quantity *int, expirationDate *string) (*models.InventoryItem, error) {
	for i := range doc.Pantry {
		if doc.Pantry[i].ID != itemID {
			continue
		}
		if quantity != nil {
			doc.Pantry[i].Quantity = *quantity
		}
		if expirationDate != nil {
			doc.Pantry[i].ExpirationDate = *expirationDate
		}
		return &doc.Pantry[i], nil
	}
	return nil, ErrItemNotFound
}

// RemoveItem deletes the item with the given id from the pantry.
func RemoveItem(doc *models.AccountDoc, itemID string) error {
	for i := range doc.Pantry {
		if doc.Pantry[i].ID == itemID {
			doc.Pantry = append(doc.Pantry[:i], doc.Pantry[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

// shoppingKey returns the identity of a shopping entry: code when present,
// otherwise the free-text name.
func shoppingKey(e models.ShoppingEntry) string {
	if e.Code != "" {
		return e.Code
	}
	return e.ItemName
}

// AddShoppingEntry merges a desired item into the shopping list by exact key
// equality, incrementing Needed on a repeat add.
func AddShoppingEntry(doc *models.AccountDoc, entry models.ShoppingEntry) {
	key := shoppingKey(entry)
	for i := range doc.ShoppingList {
		if shoppingKey(doc.ShoppingList[i]) == key {
			doc.ShoppingList[i].Needed += entry.Needed
			return
		}
	}
	doc.ShoppingList = append(doc.ShoppingList, entry)
}

// RemoveShoppingKey deletes every entry whose code or name equals key.
// Deleting a key that is not on the list is not an error.
func RemoveShoppingKey(doc *models.AccountDoc, key string) {
	kept := doc.ShoppingList[:0]
	for _, e := range doc.ShoppingList {
		if e.Code == key || e.ItemName == key {
			continue
		}
		kept = append(kept, e)
	}
	doc.ShoppingList = kept
}

// ScanDecision is the outcome of the access gate for one scan attempt.
type ScanDecision struct {
	Allowed   bool
	ScanCount int
	Message   string
}

// RecordScan applies the free/paid scan gate to the account document. Paid
// accounts always pass and the counter is untouched. Free accounts consume
// one unit of quota; over quota the increment is not applied. Must run inside
// an atomic store update so concurrent scans cannot exceed the quota.
func RecordScan(doc *models.AccountDoc, quota int) ScanDecision {
	if doc.Tier == models.TierPaid {
		return ScanDecision{Allowed: true, ScanCount: doc.ScanCount}
	}
	if doc.ScanCount+1 > quota {
		return ScanDecision{
			Allowed:   false,
			ScanCount: doc.ScanCount,
			Message:   "Scan limit reached. Upgrade to Pro for unlimited scans.",
		}
	}
	doc.ScanCount++
	return ScanDecision{Allowed: true, ScanCount: doc.ScanCount}
}
