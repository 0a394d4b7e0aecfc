package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the public Spoonacular endpoint.
const DefaultBaseURL = "https://api.spoonacular.com"

const searchTimeout = 10 * time.Second

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("recipe API key is not configured")

// Recipe is one suggestion for the caller's current pantry.
type Recipe struct {
	Title    string `json:"title"`
	Image    string `json:"image"`
	ReadyIn  int    `json:"readyIn"`
	Servings int    `json:"servings"`
	Link     string `json:"link"`
}

// Client queries the recipe API for suggestions matching a list of
// ingredients. Failures surface to the caller as errors; there is no
// degraded recipe result worth returning.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a recipe client. An empty apiKey leaves the client
// disabled.
func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: searchTimeout},
		logger:  logger,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type searchResponse struct {
	Results []struct {
		ID             int    `json:"id"`
		Title          string `json:"title"`
		Image          string `json:"image"`
		ReadyInMinutes int    `json:"readyInMinutes"`
		Servings       int    `json:"servings"`
		SourceURL      string `json:"sourceUrl"`
	} `json:"results"`
}

// Suggest returns up to five recipes matching the given ingredient names.
func (c *Client) Suggest(ctx context.Context, ingredients []string) ([]Recipe, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	if len(ingredients) == 0 {
		return []Recipe{}, nil
	}

	query := url.Values{}
	query.Set("apiKey", c.apiKey)
	query.Set("query", strings.Join(ingredients, ", "))
	query.Set("number", "5")
	query.Set("addRecipeInformation", "true")

	endpoint := fmt.Sprintf("%s/recipes/complexSearch?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build recipe request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("Recipe API call failed", zap.Error(err))
		return nil, fmt.Errorf("recipe API call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Recipe API returned non-2xx", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("recipe API returned status %d", resp.StatusCode)
	}

	var search searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("failed to parse recipe response: %w", err)
	}

	recipes := make([]Recipe, 0, len(search.Results))
	for _, r := range search.Results {
		link := r.SourceURL
		if link == "" {
			link = fmt.Sprintf("https://spoonacular.com/recipes/%d", r.ID)
		}
		recipes = append(recipes, Recipe{
			Title:    r.Title,
			Image:    r.Image,
			ReadyIn:  r.ReadyInMinutes,
			Servings: r.Servings,
			Link:     link,
		})
	}

	c.logger.Debug("Recipe suggestions fetched", zap.Int("count", len(recipes)))
	return recipes, nil
}
