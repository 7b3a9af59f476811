package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDo_SetsUserAgent(t *testing.T) {
	t.Parallel()

	// Arrange: capture the user agent seen by the server
	agents := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents <- r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(Options{Timeout: time.Second})

	// Act: one request without and one with its own user agent
	for _, ua := range []string{"", "catalog-admin/2.0"} {
		req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, http.NoBody)
		require.NoError(t, err)
		if ua != "" {
			req.Header.Set("User-Agent", ua)
		}
		res, err := c.Do(req)
		require.NoError(t, err)
		res.Body.Close()
		require.Equal(t, http.StatusNoContent, res.StatusCode)
	}

	// Assert: the default fills the gap but never overrides the request
	require.Equal(t, "goldcatalog/1.0", <-agents)
	require.Equal(t, "catalog-admin/2.0", <-agents)
}

func TestNew_InsecureSkipVerify(t *testing.T) {
	t.Parallel()

	// Arrange: a TLS server with a self-signed certificate
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// Act + Assert: the strict client rejects the certificate
	strict := New(Options{Timeout: time.Second})
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, http.NoBody)
	require.NoError(t, err)
	_, err = strict.Do(req)
	require.Error(t, err)

	// Act + Assert: the dev client accepts it
	insecure := New(Options{Timeout: time.Second, InsecureSkipVerify: true})
	req, err = http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, http.NoBody)
	require.NoError(t, err)
	res, err := insecure.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
}
