package envato

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/codehaven/licensing-service/internal/ports"
)

// ClientConfig configures the marketplace purchase-verification client.
type ClientConfig struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// Client talks to the Envato author/sale endpoint to resolve purchase codes
// that have no local license row yet.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient builds a marketplace client. A default timeout is applied when the
// caller does not supply an HTTP client, so a slow marketplace cannot stall
// verification indefinitely.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 8 * time.Second}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.envato.com"
	}
	return &Client{
		baseURL:    baseURL,
		token:      cfg.Token,
		httpClient: httpClient,
	}
}

type saleResponse struct {
	Item struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"item"`
	License        string     `json:"license"`
	Buyer          string     `json:"buyer"`
	SoldAt         time.Time  `json:"sold_at"`
	SupportedUntil *time.Time `json:"supported_until"`
}

// VerifyPurchase resolves a purchase code at the marketplace.
// 404 means the code is unknown and is reported as (nil, nil); every other
// non-200 outcome is an error so callers can tell outage from miss.
func (c *Client) VerifyPurchase(ctx context.Context, purchaseCode string) (*ports.MarketplacePurchase, error) {
	endpoint := c.baseURL + "/v3/market/author/sale?code=" + url.QueryEscape(purchaseCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build marketplace request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("marketplace request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("marketplace returned status %d: %s", resp.StatusCode, string(body))
	}

	var sale saleResponse
	if err := json.NewDecoder(resp.Body).Decode(&sale); err != nil {
		return nil, fmt.Errorf("decode marketplace response: %w", err)
	}

	return &ports.MarketplacePurchase{
		ItemID:           sale.Item.ID,
		ItemName:         sale.Item.Name,
		Buyer:            sale.Buyer,
		LicenseType:      sale.License,
		SoldAt:           sale.SoldAt,
		SupportExpiresAt: sale.SupportedUntil,
	}, nil
}
