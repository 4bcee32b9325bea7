package fleet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/Depot/internal/store"
)

// Source supplies the current fleet records.
type Source interface {
	Fleet(ctx context.Context) ([]*store.Train, error)
}

// HTTPClient reads fleet records from the maintenance/telemetry backend.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) doReq(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fleet backend %s %s: %d %s", method, path, resp.StatusCode, string(body))
	}
	return body, nil
}

// Fleet fetches every train and rejects the batch if any record is null,
// falls outside the scoring domain, or repeats an id.
func (c *HTTPClient) Fleet(ctx context.Context) ([]*store.Train, error) {
	data, err := c.doReq(ctx, http.MethodGet, "/fleet")
	if err != nil {
		return nil, err
	}
	var trains []*store.Train
	if err := json.Unmarshal(data, &trains); err != nil {
		return nil, fmt.Errorf("decode fleet: %w", err)
	}
	if err := store.ValidateFleet(trains); err != nil {
		return nil, fmt.Errorf("fleet backend: %w", err)
	}
	return trains, nil
}
