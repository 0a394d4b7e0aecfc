package models

import (
	"bytes"
	"strconv"
	"time"
)

// Account tiers
const (
	TierFree = "free"
	TierPaid = "paid"
)

// InventoryItem represents one pantry entry. Items are unique per account by
// (Code, ExpirationDate); a repeat add of the same pair increments Quantity.
type InventoryItem struct {
	ID             string    `json:"id"`
	Code           string    `json:"code"`
	DisplayName    string    `json:"displayName"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	Category       string    `json:"category"`
	Quantity       int       `json:"quantity"`
	ExpirationDate string    `json:"expirationDate"` // YYYY-MM-DD
	AddedAt        time.Time `json:"addedAt"`
}

// InventoryItemView is an InventoryItem with its read-time status attached.
// Status is derived on every read and never stored.
type InventoryItemView struct {
	InventoryItem
	Status string `json:"status"` // "expired" | "expiring" | "good"
}

// ShoppingEntry is one desired item on the shopping list, keyed by Code when
// present, otherwise by ItemName.
type ShoppingEntry struct {
	Code     string    `json:"code,omitempty"`
	ItemName string    `json:"itemName"`
	Needed   int       `json:"needed"`
	AddedAt  time.Time `json:"addedAt"`
}

// LowStockSuggestion is an advisory shopping-list entry derived from the
// pantry. Suggestions are recomputed per read and never persisted.
type LowStockSuggestion struct {
	Code        string `json:"code"`
	DisplayName string `json:"displayName"`
	Needed      int    `json:"needed"`
}

// InventorySummary aggregates the pantry for the dashboard header.
type InventorySummary struct {
	TotalItems   int `json:"totalItems"`
	LowStock     int `json:"lowStock"`
	ExpiringSoon int `json:"expiringSoon"`
	Expired      int `json:"expired"`
}

// AccountDoc is the per-account document held by the store. The layout
// matches the local data.json fallback file, extended with scan metering.
type AccountDoc struct {
	Pantry       []InventoryItem `json:"pantry"`
	ShoppingList []ShoppingEntry `json:"shoppingList"`
	ScanCount    int             `json:"scanCount"`
	Tier         string          `json:"tier"`
}

// NewAccountDoc returns an empty free-tier document.
func NewAccountDoc() *AccountDoc {
	return &AccountDoc{
		Pantry:       make([]InventoryItem, 0),
		ShoppingList: make([]ShoppingEntry, 0),
		Tier:         TierFree,
	}
}

// FlexInt accepts a JSON number, a numeric string, or junk. Junk unmarshals
// to value 0 with Set=true so the caller can coerce it, mirroring the lax
// clients this API has to accept.
type FlexInt struct {
	Set   bool
	Value int
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	f.Set = true
	s := string(bytes.Trim(data, `"`))
	if n, err := strconv.Atoi(s); err == nil {
		f.Value = n
		return nil
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil {
		f.Value = int(fl)
		return nil
	}
	f.Value = 0
	return nil
}
