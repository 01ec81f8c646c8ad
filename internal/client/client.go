// Package client talks to the booking API over HTTP.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/afyalink/care-booking/backend/internal/domain"
)

var ErrRequestFailed = errors.New("request failed")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func get[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var zero T

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return zero, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	var env envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return zero, fmt.Errorf("%w: status %d: %v", ErrRequestFailed, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		return zero, fmt.Errorf("%w: %s", ErrRequestFailed, env.Message)
	}

	return env.Data, nil
}

// GetAvailableTimeSlots fetches the classified slots of a provider for date (YYYY-MM-DD).
func (c *Client) GetAvailableTimeSlots(ctx context.Context, providerID int64, date string) (*domain.AvailableTimeSlots, error) {
	res, err := get[domain.AvailableTimeSlots](ctx, c, fmt.Sprintf("/providers/%d/available-time-slots", providerID), url.Values{"date": {date}})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetProvider(ctx context.Context, providerID int64) (*domain.Provider, error) {
	p, err := get[domain.Provider](ctx, c, fmt.Sprintf("/providers/%d", providerID), nil)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
