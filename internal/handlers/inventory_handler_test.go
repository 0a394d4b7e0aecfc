package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin-phan-25/pantrypal/internal/cache"
	"github.com/kevin-phan-25/pantrypal/internal/domain"
	"github.com/kevin-phan-25/pantrypal/internal/events"
	"github.com/kevin-phan-25/pantrypal/internal/products"
	"github.com/kevin-phan-25/pantrypal/internal/repository"
)

type inventoryFixture struct {
	handler   *InventoryHandler
	store     *repository.MemoryStore
	resolver  *stubResolver
	publisher *events.InMemoryPublisher
	router    *gin.Engine
}

func newInventoryFixture(cacheClient cache.Cache) *inventoryFixture {
	gin.SetMode(gin.TestMode)

	f := &inventoryFixture{
		store: repository.NewMemoryStore(),
		resolver: &stubResolver{records: map[string]products.ResolvedProduct{
			"3017620422003": {
				Code:           "3017620422003",
				DisplayName:    "Nutella",
				ImageURL:       "https://img.example/nutella.jpg",
				Category:       "spreads",
				ExpirationDate: time.Now().AddDate(0, 0, 180).Format(domain.DateLayout),
			},
		}},
		publisher: events.NewInMemoryPublisher(testLogger()),
	}
	f.handler = NewInventoryHandler(testLogger(), f.store, f.resolver, f.publisher, cacheClient, time.Minute)

	f.router = gin.New()
	f.router.Use(withAccount("alice"))
	f.router.POST("/api/v1/inventory", f.handler.AddItem)
	f.router.GET("/api/v1/inventory", f.handler.ListInventory)
	f.router.PUT("/api/v1/item/:id", f.handler.EditItem)
	f.router.DELETE("/api/v1/item/:id", f.handler.DeleteItem)
	return f
}

func (f *inventoryFixture) addItem(t *testing.T, body string) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/v1/inventory", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (f *inventoryFixture) listInventory(t *testing.T) InventoryResponse {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/v1/inventory", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp InventoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAddItem_ResolvedProduct(t *testing.T) {
	f := newInventoryFixture(nil)

	resp := f.addItem(t, `{"code": "3017620422003", "quantity": 2}`)

	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Nutella", resp["displayName"])
	assert.Equal(t, float64(2), resp["quantity"])

	inventory := f.listInventory(t)
	require.Len(t, inventory.Inventory, 1)
	assert.Equal(t, "spreads", inventory.Inventory[0].Category)
}

func TestAddItem_MissingCode(t *testing.T) {
	f := newInventoryFixture(nil)

	req := httptest.NewRequest("POST", "/api/v1/inventory", bytes.NewBufferString(`{"quantity": 2}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ValidationError", body["error"])
}

func TestAddItem_RepeatAddIncrements(t *testing.T) {
	f := newInventoryFixture(nil)

	f.addItem(t, `{"code": "3017620422003", "quantity": 2}`)
	resp := f.addItem(t, `{"code": "3017620422003", "quantity": 3}`)

	assert.Equal(t, float64(5), resp["quantity"])

	inventory := f.listInventory(t)
	assert.Len(t, inventory.Inventory, 1)
	assert.Equal(t, 5, inventory.Inventory[0].Quantity)
}

func TestAddItem_DifferentExpirationsStaySeparate(t *testing.T) {
	f := newInventoryFixture(nil)

	f.addItem(t, `{"code": "3017620422003", "quantity": 1, "expirationDate": "2027-01-01"}`)
	f.addItem(t, `{"code": "3017620422003", "quantity": 1, "expirationDate": "2027-06-01"}`)

	inventory := f.listInventory(t)
	assert.Len(t, inventory.Inventory, 2)
}

func TestAddItem_QuantityCoercion(t *testing.T) {
	f := newInventoryFixture(nil)

	// Junk, zero and negative quantities all become 1
	resp := f.addItem(t, `{"code": "3017620422003", "quantity": "abc"}`)
	assert.Equal(t, float64(1), resp["quantity"])

	resp = f.addItem(t, `{"code": "3017620422003", "quantity": 0}`)
	assert.Equal(t, float64(2), resp["quantity"])

	resp = f.addItem(t, `{"code": "3017620422003", "quantity": -5}`)
	assert.Equal(t, float64(3), resp["quantity"])
}

func TestAddItem_NumericStringQuantity(t *testing.T) {
	f := newInventoryFixture(nil)

	resp := f.addItem(t, `{"code": "3017620422003", "quantity": "4"}`)

	assert.Equal(t, float64(4), resp["quantity"])
}

func TestAddItem_UnknownCodeUsesFallback(t *testing.T) {
	f := newInventoryFixture(nil)

	resp := f.addItem(t, `{"code": "0000000000000"}`)

	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Unknown Item", resp["displayName"])
}

func TestAddItem_ResolutionIsAlwaysFresh(t *testing.T) {
	f := newInventoryFixture(nil)

	f.addItem(t, `{"code": "3017620422003"}`)
	f.addItem(t, `{"code": "3017620422003"}`)

	// The resolver runs on every add; inventory is never used as a name cache
	assert.Equal(t, 2, f.resolver.calls)
}

func TestAddItem_PublishesAuditEvent(t *testing.T) {
	f := newInventoryFixture(nil)

	f.addItem(t, `{"code": "3017620422003", "quantity": 2}`)

	published := f.publisher.Events()
	require.Len(t, published, 1)
	audit, ok := published[0].(events.AuditEvent)
	require.True(t, ok)
	assert.Equal(t, events.ActionAdd, audit.Action)
	assert.Equal(t, "alice", audit.AccountID)
	assert.Equal(t, 2, audit.Quantity)
}

func TestListInventory_EmptyPantry(t *testing.T) {
	f := newInventoryFixture(nil)

	inventory := f.listInventory(t)

	assert.Empty(t, inventory.Inventory)
	assert.Equal(t, 0, inventory.Summary.TotalItems)
}

func TestListInventory_StatusesAndSummary(t *testing.T) {
	f := newInventoryFixture(nil)
	yesterday := time.Now().AddDate(0, 0, -1).Format(domain.DateLayout)
	soon := time.Now().AddDate(0, 0, 3).Format(domain.DateLayout)
	far := time.Now().AddDate(0, 0, 90).Format(domain.DateLayout)

	f.addItem(t, `{"code": "111", "quantity": 1, "expirationDate": "`+yesterday+`"}`)
	f.addItem(t, `{"code": "222", "quantity": 2, "expirationDate": "`+soon+`"}`)
	f.addItem(t, `{"code": "333", "quantity": 6, "expirationDate": "`+far+`"}`)

	inventory := f.listInventory(t)

	require.Len(t, inventory.Inventory, 3)
	statuses := map[string]string{}
	for _, item := range inventory.Inventory {
		statuses[item.Code] = item.Status
	}
	assert.Equal(t, domain.StatusExpired, statuses["111"])
	assert.Equal(t, domain.StatusExpiring, statuses["222"])
	assert.Equal(t, domain.StatusGood, statuses["333"])

	assert.Equal(t, 9, inventory.Summary.TotalItems)
	assert.Equal(t, 2, inventory.Summary.LowStock)
	assert.Equal(t, 1, inventory.Summary.ExpiringSoon)
	assert.Equal(t, 1, inventory.Summary.Expired)
}

func TestListInventory_CachedThenInvalidated(t *testing.T) {
	cacheClient := cache.NewInMemoryCache(testLogger())
	f := newInventoryFixture(cacheClient)

	f.addItem(t, `{"code": "3017620422003", "quantity": 1}`)
	first := f.listInventory(t)
	require.Len(t, first.Inventory, 1)

	// Cached response is served until the next mutation
	cached, err := cacheClient.Get(context.Background(), "pantry:alice:inventory")
	require.NoError(t, err)
	assert.NotEmpty(t, cached)

	// A mutation drops the cached body
	f.addItem(t, `{"code": "3017620422003", "quantity": 1}`)
	_, err = cacheClient.Get(context.Background(), "pantry:alice:inventory")
	assert.Equal(t, cache.ErrCacheMiss, err)

	second := f.listInventory(t)
	require.Len(t, second.Inventory, 1)
	assert.Equal(t, 2, second.Inventory[0].Quantity)
}

func TestEditItem_PartialUpdate(t *testing.T) {
	f := newInventoryFixture(nil)
	f.addItem(t, `{"code": "3017620422003", "quantity": 2, "expirationDate": "2027-01-01"}`)
	itemID := f.listInventory(t).Inventory[0].ID

	req := httptest.NewRequest("PUT", "/api/v1/item/"+itemID, bytes.NewBufferString(`{"quantity": 7}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	inventory := f.listInventory(t)
	assert.Equal(t, 7, inventory.Inventory[0].Quantity)
	assert.Equal(t, "2027-01-01", inventory.Inventory[0].ExpirationDate)
}

func TestEditItem_NotFound(t *testing.T) {
	f := newInventoryFixture(nil)

	req := httptest.NewRequest("PUT", "/api/v1/item/missing", bytes.NewBufferString(`{"quantity": 7}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ItemNotFound", body["error"])
}

func TestDeleteItem_Success(t *testing.T) {
	f := newInventoryFixture(nil)
	f.addItem(t, `{"code": "3017620422003", "quantity": 2}`)
	itemID := f.listInventory(t).Inventory[0].ID

	req := httptest.NewRequest("DELETE", "/api/v1/item/"+itemID, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, f.listInventory(t).Inventory)

	published := f.publisher.Events()
	require.Len(t, published, 2) // add + delete
	audit := published[1].(events.AuditEvent)
	assert.Equal(t, events.ActionDelete, audit.Action)
}

func TestDeleteItem_NotFound(t *testing.T) {
	f := newInventoryFixture(nil)

	req := httptest.NewRequest("DELETE", "/api/v1/item/missing", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInventory_AccountsAreIsolated(t *testing.T) {
	f := newInventoryFixture(nil)
	f.addItem(t, `{"code": "3017620422003", "quantity": 2}`)

	// Same store, different account
	other := gin.New()
	other.Use(withAccount("bob"))
	other.GET("/api/v1/inventory", f.handler.ListInventory)

	req := httptest.NewRequest("GET", "/api/v1/inventory", nil)
	w := httptest.NewRecorder()
	other.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp InventoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Inventory)
}
