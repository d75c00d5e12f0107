// Package weightclient talks to the weight service on behalf of the
// billing aggregator (C9). Failures are retried with a doubling
// backoff; a 404 is treated as "nothing to report" rather than an
// error, and other 4xx responses are never retried.
package weightclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"

	"ganshmuel/platform/internal/apperr"
)

const maxAttempts = 3

type Transaction struct {
	ID        int64    `json:"id"`
	SessionID string   `json:"session_id"`
	Direction string   `json:"direction"`
	Truck     string   `json:"truck"`
	Bruto     int      `json:"bruto"`
	TruckTara *int     `json:"truck_tara"`
	Neto      *int     `json:"neto"`
	Produce   string   `json:"produce"`
	Datetime  string   `json:"datetime"`
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

// TransactionsInWindow fetches every weighing transaction recorded
// across all trucks within [from, to]. A 404 from the weight service
// means no transactions exist and is reported as an empty slice, not
// an error.
func (c *Client) TransactionsInWindow(ctx context.Context, from, to string) ([]Transaction, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	reqURL := fmt.Sprintf("%s/weight?%s", c.baseURL, q.Encode())

	var out []Transaction
	err := c.doWithRetry(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			out = nil
			return nil
		case resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("weight service returned %d", resp.StatusCode))
		case resp.StatusCode >= 400:
			return apperr.UpstreamUnavailable("weight service rejected request: %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(&out)
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUpstreamUnavailable {
			return nil, err
		}
		return nil, apperr.UpstreamUnavailable("weight service unreachable: %v", err)
	}
	return out, nil
}

// doWithRetry makes at most maxAttempts calls, counting the initial
// attempt as attempt 0 and backing off 2^attempt seconds after a failed
// attempt before the next one.
func (c *Client) doWithRetry(ctx context.Context, fn retry.RetryFunc) error {
	attempt := 0
	b := retry.BackoffFunc(func() (time.Duration, bool) {
		if attempt >= maxAttempts-1 {
			return 0, true
		}
		delay := time.Duration(1<<uint(attempt)) * time.Second
		attempt++
		return delay, false
	})
	return retry.Do(ctx, b, fn)
}
