package tradesapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"tradefeed/internal/trade"
	"tradefeed/internal/tradesapi"
)

var mockRecords = []map[string]any{
	{
		"id":        1,
		"owner":     "0xowner1",
		"asset0":    "0xeth",
		"asset1":    "0xusdc",
		"amount0":   "1500000000",
		"amount1":   "3000000",
		"timestamp": 1700000000,
	},
	{
		"id":        2,
		"owner":     "0xowner2",
		"asset0":    "0xusdc",
		"asset1":    "0xeth",
		"amount0":   "123456789012345678901234567890",
		"amount1":   2500000000,
		"timestamp": 1700000060,
	},
}

func jsonResponse(t *testing.T, status int, body any) *http.Response {
	t.Helper()
	buffer := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buffer).Encode(body))
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(buffer),
	}
}

func TestGetTradesInPair(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodGet, req.Method)
			require.Equal(t, "/api/trades/pair/ETH/USDC", req.URL.Path)
			require.Empty(t, req.URL.RawQuery)
			return jsonResponse(t, http.StatusOK, mockRecords), nil
		}).
		Times(1)

	// Arrange: setup a new trades API client
	client, err := tradesapi.NewTradesAPIClient("https://backend.example.com/api", tradesapi.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act: call GetTradesInPair
	records, err := client.GetTradesInPair(t.Context(), "ETH", "USDC")
	require.NoError(t, err)

	// Assert: records should be unmarshalled from the mock response
	require.Len(t, records, len(mockRecords))
	require.Equal(t, trade.Record{
		ID:        1,
		Owner:     "0xowner1",
		Asset0:    "0xeth",
		Asset1:    "0xusdc",
		Amount0:   "1500000000",
		Amount1:   "3000000",
		Timestamp: 1700000000,
	}, records[0])

	// Assert: long amounts keep every digit and unquoted amounts are accepted
	require.Equal(t, "123456789012345678901234567890", records[1].Amount0.String())
	require.Equal(t, "2500000000", records[1].Amount1.String())
}

func TestGetTradesInPair_EscapesSymbols(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/trades/pair/A%2FB/USDC", req.URL.EscapedPath())
			return jsonResponse(t, http.StatusOK, []any{}), nil
		}).
		Times(1)

	client, err := tradesapi.NewTradesAPIClient("http://localhost", tradesapi.WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.GetTradesInPair(t.Context(), "A/B", "USDC")
	require.NoError(t, err)
}

func TestGetTradesInPair_MissingSymbol(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: no request is made
	httpClient.EXPECT().
		Do(gomock.Any()).
		Times(0)

	client, err := tradesapi.NewTradesAPIClient("http://localhost", tradesapi.WithHTTPClient(httpClient))
	require.NoError(t, err)

	records, err := client.GetTradesInPair(t.Context(), "ETH", " ")
	require.Error(t, err)
	require.Nil(t, records)
}

func TestGetTradesInPair_ErrCreatingRequest(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		Times(0)

	// Arrange: setup a new trades API client
	client, err := tradesapi.NewTradesAPIClient("http://localhost", tradesapi.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act: call GetTradesInPair with an unparsable base URL
	records, err := client.GetTradesInPair(t.Context(), "ETH", "USDC", tradesapi.WithBaseURL(string([]rune{0x7f})))

	// Assert: the failure is a transport error
	var transportErr *tradesapi.TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, "creating request", transportErr.Op)
	require.Nil(t, records)
}

func TestGetTradesInPair_ErrPerformingRequest(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)
	cause := fmt.Errorf("connection refused")

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return nil, cause
		}).
		Times(1)

	// Arrange: setup a new trades API client
	client, err := tradesapi.NewTradesAPIClient("http://localhost", tradesapi.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act: call GetTradesInPair
	records, err := client.GetTradesInPair(t.Context(), "ETH", "USDC")

	// Assert: the cause is kept intact
	require.ErrorIs(t, err, cause)
	var transportErr *tradesapi.TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Zero(t, transportErr.StatusCode)
	require.Nil(t, records)
}

func TestGetTradesInPair_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		}).
		Times(1)

	client, err := tradesapi.NewTradesAPIClient("http://localhost", tradesapi.WithHTTPClient(httpClient))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err = client.GetTradesInPair(ctx, "ETH", "USDC")
	require.ErrorIs(t, err, context.Canceled)
}

func TestGetTradesInPair_ErrStatusCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status int
		want   error
	}{
		{status: http.StatusNotFound, want: tradesapi.ErrNotFound},
		{status: http.StatusUnauthorized, want: tradesapi.ErrUnauthorized},
		{status: http.StatusForbidden, want: tradesapi.ErrUnauthorized},
		{status: http.StatusTooManyRequests, want: tradesapi.ErrRateLimited},
		{status: http.StatusInternalServerError, want: tradesapi.ErrUnexpectedStatus},
		{status: http.StatusBadGateway, want: tradesapi.ErrUnexpectedStatus},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			t.Parallel()

			// Arrange: create a mock HTTP client
			ctrl := gomock.NewController(t)
			httpClient := NewMockHTTPClient(ctrl)

			// Assert: stub the Do method
			httpClient.EXPECT().
				Do(gomock.Any()).
				DoAndReturn(func(req *http.Request) (*http.Response, error) {
					return &http.Response{
						StatusCode: tc.status,
						Body:       io.NopCloser(bytes.NewBufferString("backend says no")),
					}, nil
				}).
				Times(1)

			client, err := tradesapi.NewTradesAPIClient("http://localhost", tradesapi.WithHTTPClient(httpClient))
			require.NoError(t, err)

			// Act: call GetTradesInPair
			records, err := client.GetTradesInPair(t.Context(), "ETH", "USDC")

			// Assert: the status is reported
			require.ErrorIs(t, err, tc.want)
			var transportErr *tradesapi.TransportError
			require.True(t, errors.As(err, &transportErr))
			require.Equal(t, tc.status, transportErr.StatusCode)
			require.Nil(t, records)
		})
	}
}

func TestGetTradesInPair_ErrDecodingResponse(t *testing.T) {
	t.Parallel()

	for name, body := range map[string]string{
		"not json":       "<html>",
		"object":         `{"trades": []}`,
		"bad amount":     `[{"id": 1, "amount0": "abc"}]`,
		"string id":      `[{"id": "one"}]`,
		"truncated json": `[{"id": 1,`,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			httpClient := NewMockHTTPClient(ctrl)

			httpClient.EXPECT().
				Do(gomock.Any()).
				Return(&http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(body)),
				}, nil).
				Times(1)

			client, err := tradesapi.NewTradesAPIClient("http://localhost", tradesapi.WithHTTPClient(httpClient))
			require.NoError(t, err)

			records, err := client.GetTradesInPair(t.Context(), "ETH", "USDC")
			var transportErr *tradesapi.TransportError
			require.ErrorAs(t, err, &transportErr)
			require.Equal(t, "decoding trades response", transportErr.Op)
			require.Nil(t, records)
		})
	}
}
