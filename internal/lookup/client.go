// Package lookup talks to the store's aisle location API. The pipeline never
// calls it directly; the resolver consults the location cache first and only
// falls through to the API on a miss.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/config"
)

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

type locationPayload struct {
	Term  string  `json:"term"`
	Aisle *string `json:"aisle"`
	Zone  *string `json:"zone"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.AisleTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.AisleRateLimitRPS),
	}
}

// Locate asks the aisle API where a term lives in the store. A nil result
// means the service does not know the term; that is not an error.
func (c *Client) Locate(ctx context.Context, term string) (*internal.ItemLocation, error) {
	body, err := c.fetchJSON(ctx, "locations", map[string]string{"term": term})
	if err != nil {
		return nil, err
	}

	var payload locationPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if payload.Aisle == nil || strings.TrimSpace(*payload.Aisle) == "" {
		return nil, nil
	}

	return &internal.ItemLocation{
		Term:   term,
		Aisle:  strings.TrimSpace(*payload.Aisle),
		Zone:   payload.Zone,
		Source: "api",
	}, nil
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	if strings.TrimSpace(c.cfg.AisleAPIToken) == "" {
		return nil, errors.New("missing AISLE_API_TOKEN")
	}

	baseURL := strings.TrimRight(c.cfg.AisleAPIBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		c.limiter.WaitTurn()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.AisleAPIToken)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("aisle api status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("aisle api error: status=%d body=%s", resp.StatusCode, string(body))
		}

		var apiResp apiResponse
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return nil, err
		}
		if !apiResp.Success {
			return nil, fmt.Errorf("aisle api unsuccessful: %s", string(apiResp.Errors))
		}
		return apiResp.Data, nil
	}

	if lastErr == nil {
		lastErr = errors.New("aisle api request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
