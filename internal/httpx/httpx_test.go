package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_FillsDefaultHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tradefeed/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "kept", r.Header.Get("X-Trace"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(2 * time.Second)
	c.Headers = map[string]string{"X-Api-Key": "secret", "X-Trace": "default"}

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, http.NoBody)
	require.NoError(t, err)
	req.Header.Set("X-Trace", "kept")

	res, err := c.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusNoContent, res.StatusCode)
}
