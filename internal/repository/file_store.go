package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/kevin-phan-25/pantrypal/internal/models"
)

// FileStore persists all account documents to a single JSON file. This is
// the local single-machine mode; every mutation rewrites the file under one
// mutex, which keeps per-account updates atomic at the cost of throughput.
type FileStore struct {
	path   string
	logger *zap.Logger

	mu   sync.Mutex
	docs map[string]*models.AccountDoc
}

// fileLayout is the on-disk shape, one document per account id.
type fileLayout struct {
	Accounts map[string]*models.AccountDoc `json:"accounts"`
}

// NewFileStore opens (or creates) the data file at path.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		logger: logger,
		docs:   make(map[string]*models.AccountDoc),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("Data file does not exist yet, starting empty", zap.String("path", path))
			return s, nil
		}
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	var layout fileLayout
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
	}
	if layout.Accounts != nil {
		s.docs = layout.Accounts
	}

	logger.Info("Loaded data file",
		zap.String("path", path),
		zap.Int("accounts", len(s.docs)),
	)
	return s, nil
}

func (s *FileStore) Get(ctx context.Context, accountID string) (*models.AccountDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[accountID]
	if !ok {
		return models.NewAccountDoc(), nil
	}
	return cloneDoc(doc), nil
}

func (s *FileStore) Update(ctx context.Context, accountID string, fn func(doc *models.AccountDoc) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[accountID]
	if !ok {
		doc = models.NewAccountDoc()
	}

	working := cloneDoc(doc)
	if err := fn(working); err != nil {
		return err
	}

	s.docs[accountID] = working
	if err := s.save(); err != nil {
		// Roll back the in-memory state so memory and disk stay in step.
		if ok {
			s.docs[accountID] = doc
		} else {
			delete(s.docs, accountID)
		}
		return err
	}
	return nil
}

func (s *FileStore) Accounts(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *FileStore) Close() error {
	return nil
}

// save writes the whole data file. Caller must hold the mutex.
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(fileLayout{Accounts: s.docs}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace data file: %w", err)
	}
	return nil
}
