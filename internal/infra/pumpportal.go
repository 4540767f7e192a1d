package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/freelancing-solutions/pump-bot/internal/domain"
)

// tokenInfoResponse represents the PumpPortal token endpoint payload.
type tokenInfoResponse struct {
	Mint         string  `json:"mint"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	ImageURI     string  `json:"image_uri"`
	PriceSol     float64 `json:"price_sol"`
	MarketCapSol float64 `json:"market_cap_sol"`
	Complete     bool    `json:"complete"`
}

// PumpPortalClient is the REST client for launched-token status lookups.
// It implements domain.TokenSource.
type PumpPortalClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewPumpPortalClient creates a new REST client.
func NewPumpPortalClient(baseURL, apiKey string) *PumpPortalClient {
	return &PumpPortalClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// TokenInfo fetches the current status of a launched token.
func (c *PumpPortalClient) TokenInfo(ctx context.Context, mint string) (*domain.TokenStatus, error) {
	url := fmt.Sprintf("%s/api/token/%s", c.baseURL, mint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewNetworkError("token_info", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewNetworkError("token_info", fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewNetworkError("token_info", err)
	}

	var info tokenInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}

	return &domain.TokenStatus{
		Mint:      info.Mint,
		Symbol:    info.Symbol,
		Name:      info.Name,
		ImageURL:  info.ImageURI,
		PriceSol:  decimal.NewFromFloat(info.PriceSol),
		MarketCap: decimal.NewFromFloat(info.MarketCapSol),
		Complete:  info.Complete,
	}, nil
}
