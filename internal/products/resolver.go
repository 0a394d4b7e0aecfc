package products

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kevin-phan-25/pantrypal/internal/domain"
)

// DefaultBaseURL is the public Open Food Facts endpoint.
const DefaultBaseURL = "https://world.openfoodfacts.org"

const lookupTimeout = 10 * time.Second

// shelfLife maps a category keyword to a shelf life in days. The slice order
// matters: the first keyword found anywhere in the product's category text
// wins, so broad keywords must stay below the specific ones they shadow.
var shelfLife = []struct {
	keyword string
	days    int
}{
	{"breakfast cereals", 365},
	{"cereals", 365},
	{"sodas", 365},
	{"beverages", 365},
	{"spreads", 180},
	{"chocolate", 365},
	{"canned", 730},
	{"pasta", 730},
	{"rice", 730},
	{"dairy", 7},
	{"milk", 7},
	{"yogurt", 14},
	{"cheese", 30},
	{"meat", 5},
	{"fish", 3},
	{"bread", 3},
	{"vegetables", 7},
	{"fruits", 5},
	{"snacks", 180},
}

// ResolvedProduct is the canonical item record produced for a scannable code.
type ResolvedProduct struct {
	Code           string
	DisplayName    string
	ImageURL       string
	Category       string
	ExpirationDate string // YYYY-MM-DD
}

// Resolver resolves scannable codes against the Open Food Facts product
// database. A Resolver never fails: every error path degrades to the
// "Unknown Item" fallback so an add is never blocked by a flaky upstream.
type Resolver struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
	now     func() time.Time
}

// NewResolver creates a resolver against the given Open Food Facts base URL.
func NewResolver(baseURL string, logger *zap.Logger) *Resolver {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Resolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: lookupTimeout},
		logger:  logger,
		now:     time.Now,
	}
}

type offResponse struct {
	Status  int `json:"status"`
	Product struct {
		ProductName   string `json:"product_name"`
		Brands        string `json:"brands"`
		ImageFrontURL string `json:"image_front_url"`
		Categories    string `json:"categories"`
	} `json:"product"`
}

// Resolve produces the canonical record for a code. Resolution is always
// fresh; existing inventory is never consulted, so names and categories can
// not go stale.
func (r *Resolver) Resolve(ctx context.Context, code string) ResolvedProduct {
	url := fmt.Sprintf("%s/api/v2/product/%s.json", r.baseURL, code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		r.logger.Warn("Product lookup request failed", zap.String("code", code), zap.Error(err))
		return r.fallback(code)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("Product lookup failed", zap.String("code", code), zap.Error(err))
		return r.fallback(code)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.logger.Warn("Product lookup returned non-2xx",
			zap.String("code", code),
			zap.Int("status", resp.StatusCode),
		)
		return r.fallback(code)
	}

	var off offResponse
	if err := json.NewDecoder(resp.Body).Decode(&off); err != nil {
		r.logger.Warn("Product lookup parse failed", zap.String("code", code), zap.Error(err))
		return r.fallback(code)
	}

	if off.Status != 1 {
		r.logger.Debug("Product lookup miss", zap.String("code", code))
		return r.fallback(code)
	}

	days := domain.DefaultShelfLifeDays
	category := "Unknown"
	categories := strings.ToLower(off.Product.Categories)
	for _, entry := range shelfLife {
		if strings.Contains(categories, entry.keyword) {
			days = entry.days
			category = entry.keyword
			break
		}
	}

	name := off.Product.ProductName
	if name == "" {
		name = off.Product.Brands
	}
	if name == "" {
		name = "Unknown Item"
	}

	resolved := ResolvedProduct{
		Code:           code,
		DisplayName:    name,
		ImageURL:       off.Product.ImageFrontURL,
		Category:       category,
		ExpirationDate: r.now().AddDate(0, 0, days).Format(domain.DateLayout),
	}

	r.logger.Debug("Product lookup hit",
		zap.String("code", code),
		zap.String("name", resolved.DisplayName),
		zap.String("category", category),
		zap.Int("shelf_life_days", days),
	)

	return resolved
}

// fallback is the record every failure path degrades to.
func (r *Resolver) fallback(code string) ResolvedProduct {
	return ResolvedProduct{
		Code:           code,
		DisplayName:    "Unknown Item",
		Category:       "Unknown",
		ExpirationDate: r.now().AddDate(0, 0, domain.DefaultShelfLifeDays).Format(domain.DateLayout),
	}
}
