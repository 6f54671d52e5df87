// Package remote fetches the product catalog from a Fake Store compatible API.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"minishop/models"
)

const DefaultBaseURL = "https://fakestoreapi.com"

type remoteProduct struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// Client calls GET {baseURL}/products through a circuit breaker. After five
// consecutive failures the breaker opens and calls fail fast for 30 seconds.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]models.Product]
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]models.Product](gobreaker.Settings{
		Name:        "fake-store",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c
}

// Products returns the remote catalog normalized to {id, name, price, desc}.
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	return c.breaker.Execute(func() ([]models.Product, error) {
		return c.fetch(ctx)
	})
}

func (c *Client) fetch(ctx context.Context) ([]models.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products", nil)
	if err != nil {
		return nil, fmt.Errorf("build remote catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote catalog returned status %d", resp.StatusCode)
	}

	var remote []remoteProduct
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		return nil, fmt.Errorf("decode remote catalog: %w", err)
	}

	out := make([]models.Product, 0, len(remote))
	for _, p := range remote {
		name := p.Title
		if name == "" {
			name = p.Name
		}
		out = append(out, models.Product{ID: p.ID, Name: name, Price: p.Price, Desc: p.Description})
	}
	return out, nil
}
