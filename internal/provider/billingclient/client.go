// Package billingclient implements the outbound producer (C12) used by
// the approval workflow to provision a Billing-side provider.
package billingclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"
)

const maxAttempts = 3

var retriableStatus = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateProvider POSTs {"name": ...} to the Billing service and
// returns the newly created provider id. Delay between retries honors
// a server-sent Retry-After header when present and parseable, else
// falls back to 0.5 × 2^attempt seconds.
func (c *Client) CreateProvider(ctx context.Context, name string) (int64, error) {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return 0, err
	}

	var providerID int64
	attempt := 0
	var nextDelay time.Duration
	haveOverride := false

	b := retry.BackoffFunc(func() (time.Duration, bool) {
		if attempt >= maxAttempts {
			return 0, true
		}
		delay := time.Duration(float64(time.Second) * 0.5 * float64(uint(1)<<uint(attempt)))
		if haveOverride {
			delay = nextDelay
			haveOverride = false
		}
		attempt++
		return delay, false
	})

	err = retry.Do(ctx, b, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/provider", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusCreated {
			var created struct {
				ID int64 `json:"id"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
				return err
			}
			providerID = created.ID
			return nil
		}

		if retriableStatus[resp.StatusCode] {
			if d, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
				nextDelay = d
				haveOverride = true
			}
			return retry.RetryableError(fmt.Errorf("billing service returned %d", resp.StatusCode))
		}
		return fmt.Errorf("billing service rejected provider creation: %d", resp.StatusCode)
	})
	if err != nil {
		return 0, err
	}
	return providerID, nil
}

func parseRetryAfter(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	if when, err := http.ParseTime(v); err == nil {
		return time.Until(when), true
	}
	return 0, false
}
