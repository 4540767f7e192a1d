package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/freelancing-solutions/pump-bot/internal/domain"
)

// rpcRequest is a Solana JSON-RPC 2.0 request envelope.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SolanaClient is a thin JSON-RPC client used for connectivity health checks.
// It implements domain.StatusSource.
type SolanaClient struct {
	rpcURL     string
	httpClient *http.Client

	mu        sync.RWMutex
	connected bool
}

// NewSolanaClient creates a client for the given RPC endpoint.
func NewSolanaClient(rpcURL string) *SolanaClient {
	return &SolanaClient{
		rpcURL: rpcURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *SolanaClient) rpcCall(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewNetworkError("rpc", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewNetworkError("rpc", fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewNetworkError("rpc", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, err
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}

// Health probes the node with a getHealth call.
func (c *SolanaClient) Health(ctx context.Context) error {
	result, err := c.rpcCall(ctx, "getHealth", nil)
	c.setConnected(err == nil)
	if err != nil {
		return err
	}

	var status string
	if err := json.Unmarshal(result, &status); err != nil {
		return err
	}
	if status != "ok" {
		c.setConnected(false)
		return fmt.Errorf("node unhealthy: %s", status)
	}
	return nil
}

// IsConnected reports whether the last health probe succeeded, refreshing it
// with a live call.
func (c *SolanaClient) IsConnected(ctx context.Context) bool {
	if err := c.Health(ctx); err != nil {
		slog.Debug("Solana health probe failed", slog.Any("error", err))
		return false
	}
	return true
}

// Reconnect re-probes the node under the standard retry policy. The RPC
// transport is stateless, so a successful probe is a successful reconnect.
func (c *SolanaClient) Reconnect(ctx context.Context) error {
	return Retry(ctx, "solana_reconnect", DefaultRetryAttempts, DefaultRetryBase, c.Health)
}

func (c *SolanaClient) setConnected(connected bool) {
	c.mu.Lock()
	c.connected = connected
	c.mu.Unlock()
}
