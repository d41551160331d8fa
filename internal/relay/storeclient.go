package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/footyguess/footyguess/internal/auth"
)

// StoreClient calls the game API's internal endpoints. Used only for
// disconnect handling; failures are logged by the caller, never fatal to the
// relay.
type StoreClient struct {
	baseURL string
	secret  string
	client  *http.Client
}

// NewStoreClient creates a client for the game API at baseURL.
func NewStoreClient(baseURL, secret string) *StoreClient {
	return &StoreClient{
		baseURL: baseURL,
		secret:  secret,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// SocketDisconnect asks the store to remove a disconnected player. The store
// decides whether removal applies (non-host, game still waiting).
func (c *StoreClient) SocketDisconnect(ctx context.Context, sessionID, userID string) error {
	body, err := json.Marshal(map[string]string{"userId": userID})
	if err != nil {
		return fmt.Errorf("marshal disconnect request: %w", err)
	}

	url := fmt.Sprintf("%s/api/games/%s/socket-disconnect", c.baseURL, sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build disconnect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.HeaderInternalSecret, c.secret)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call store: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("store returned status %d", resp.StatusCode)
	}
	return nil
}
