package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kevin-phan-25/pantrypal/internal/models"
)

func storeItem(code string, quantity int) models.InventoryItem {
	return models.InventoryItem{
		ID:             "item-" + code,
		Code:           code,
		DisplayName:    "Item " + code,
		Category:       "Snacks",
		Quantity:       quantity,
		ExpirationDate: "2026-06-01",
		AddedAt:        time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStore_GetUnknownAccountIsEmpty(t *testing.T) {
	store := NewMemoryStore()

	doc, err := store.Get(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Empty(t, doc.Pantry)
	assert.Equal(t, models.TierFree, doc.Tier)
}

func TestMemoryStore_UpdateCreatesAccount(t *testing.T) {
	store := NewMemoryStore()

	err := store.Update(context.Background(), "alice", func(doc *models.AccountDoc) error {
		doc.Pantry = append(doc.Pantry, storeItem("100", 2))
		return nil
	})
	require.NoError(t, err)

	doc, err := store.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, doc.Pantry, 1)

	accounts, err := store.Accounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, accounts)
}

func TestMemoryStore_UpdateErrorDiscardsChanges(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Update(context.Background(), "alice", func(doc *models.AccountDoc) error {
		doc.Pantry = append(doc.Pantry, storeItem("100", 2))
		return nil
	}))

	err := store.Update(context.Background(), "alice", func(doc *models.AccountDoc) error {
		doc.Pantry = nil
		return errors.New("boom")
	})

	assert.Error(t, err)
	doc, _ := store.Get(context.Background(), "alice")
	assert.Len(t, doc.Pantry, 1)
}

func TestMemoryStore_GetReturnsACopy(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Update(context.Background(), "alice", func(doc *models.AccountDoc) error {
		doc.Pantry = append(doc.Pantry, storeItem("100", 2))
		return nil
	}))

	doc, _ := store.Get(context.Background(), "alice")
	doc.Pantry[0].Quantity = 99

	fresh, _ := store.Get(context.Background(), "alice")
	assert.Equal(t, 2, fresh.Pantry[0].Quantity)
}

func TestMemoryStore_AccountsAreIsolated(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Update(context.Background(), "alice", func(doc *models.AccountDoc) error {
		doc.Pantry = append(doc.Pantry, storeItem("100", 2))
		return nil
	}))

	doc, err := store.Get(context.Background(), "bob")

	require.NoError(t, err)
	assert.Empty(t, doc.Pantry)
}

func TestMemoryStore_ConcurrentUpdatesDoNotLoseIncrements(t *testing.T) {
	store := NewMemoryStore()
	const workers = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Update(context.Background(), "alice", func(doc *models.AccountDoc) error {
				doc.ScanCount++
				return nil
			})
		}()
	}
	wg.Wait()

	doc, err := store.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, workers, doc.ScanCount)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")

	store, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Update(context.Background(), "alice", func(doc *models.AccountDoc) error {
		doc.Pantry = append(doc.Pantry, storeItem("100", 2))
		doc.ScanCount = 4
		return nil
	}))
	require.NoError(t, store.Close())

	// Reopen and verify the state survived
	reopened, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)
	doc, err := reopened.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, doc.Pantry, 1)
	assert.Equal(t, "100", doc.Pantry[0].Code)
	assert.Equal(t, 4, doc.ScanCount)
}

func TestFileStore_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")

	store, err := NewFileStore(path, zap.NewNop())

	require.NoError(t, err)
	accounts, err := store.Accounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestFileStore_UpdateErrorDiscardsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	store, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)

	err = store.Update(context.Background(), "alice", func(doc *models.AccountDoc) error {
		doc.ScanCount = 7
		return errors.New("boom")
	})

	assert.Error(t, err)
	doc, _ := store.Get(context.Background(), "alice")
	assert.Equal(t, 0, doc.ScanCount)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pantry.db")

	store, err := NewSQLiteStore(path, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Update(context.Background(), "alice", func(doc *models.AccountDoc) error {
		doc.Pantry = append(doc.Pantry, storeItem("100", 2))
		doc.Tier = models.TierPaid
		return nil
	}))

	doc, err := store.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, doc.Pantry, 1)
	assert.Equal(t, models.TierPaid, doc.Tier)

	accounts, err := store.Accounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, accounts)
}

func TestSQLiteStore_GetUnknownAccountIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pantry.db")

	store, err := NewSQLiteStore(path, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	doc, err := store.Get(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Empty(t, doc.Pantry)
	assert.Equal(t, models.TierFree, doc.Tier)
}

func TestSQLiteStore_ConcurrentUpdatesDoNotLoseIncrements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pantry.db")
	store, err := NewSQLiteStore(path, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Update(context.Background(), "alice", func(doc *models.AccountDoc) error {
				doc.ScanCount++
				return nil
			})
		}()
	}
	wg.Wait()

	doc, err := store.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, workers, doc.ScanCount)
}
