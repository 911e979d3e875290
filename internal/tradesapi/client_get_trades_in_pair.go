package tradesapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"tradefeed/internal/trade"
)

var (
	ErrNotFound         = errors.New("pair not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrRateLimited      = errors.New("rate limited")
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

// GetTradesInPair retrieves the latest trades between two assets.
// It performs exactly one GET /trades/pair/{symbol0}/{symbol1}; there is no retry.
func (c *TradesAPIClient) GetTradesInPair(ctx context.Context, symbol0, symbol1 string, opts ...TradesAPIClientOption) ([]trade.Record, error) {
	var override = &TradesAPIClient{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		header:     c.header.Clone(),
	}
	for _, opt := range opts {
		opt(override)
	}

	symbol0, symbol1 = strings.TrimSpace(symbol0), strings.TrimSpace(symbol1)
	if symbol0 == "" || symbol1 == "" {
		return nil, fmt.Errorf("tradesapi: both pair symbols are required, got %q and %q", symbol0, symbol1)
	}

	endpoint := fmt.Sprintf("%s/trades/pair/%s/%s", override.baseURL, url.PathEscape(symbol0), url.PathEscape(symbol1))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, &TransportError{Op: "creating request", URL: endpoint, Err: err}
	}
	req.Header = override.header
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	res, err := override.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "performing request", URL: endpoint, Err: err}
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusNotFound:
		return nil, &TransportError{Op: "GET", URL: endpoint, StatusCode: res.StatusCode, Err: ErrNotFound}

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, &TransportError{Op: "GET", URL: endpoint, StatusCode: res.StatusCode, Err: ErrUnauthorized}

	case http.StatusTooManyRequests:
		return nil, &TransportError{Op: "GET", URL: endpoint, StatusCode: res.StatusCode, Err: ErrRateLimited}

	default:
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return nil, &TransportError{
			Op:         "GET",
			URL:        endpoint,
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrUnexpectedStatus, strings.TrimSpace(string(b))),
		}
	}

	// [
	//   {
	//     "id": 1,
	//     "owner": "0x...",
	//     "asset0": "0x...",
	//     "asset1": "0x...",
	//     "amount0": "1500000000",
	//     "amount1": "3000000",
	//     "timestamp": 1700000000
	//   }
	// ]
	var records []trade.Record
	dec := json.NewDecoder(res.Body)
	if err := dec.Decode(&records); err != nil {
		return nil, &TransportError{Op: "decoding trades response", URL: endpoint, StatusCode: res.StatusCode, Err: err}
	}
	if records == nil {
		records = []trade.Record{}
	}
	return records, nil
}
