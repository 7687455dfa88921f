package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flexprice/feeledger/internal/config"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const knownPayer = "7f9c2ba4-e88f-4d2b-9c7a-0b5e1d3f6a21"

func newTestServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "secret", r.Header.Get(headerAPIKey))

		switch r.URL.Path {
		case "/payers/" + knownPayer:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id":"` + knownPayer + `"}`))
		case "/payers/broken":
			w.WriteHeader(http.StatusInternalServerError)
		case "/payers/forbidden":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestClient(baseURL string, retryMax int) *Client {
	return NewClient(config.PayerDirectoryConfig{
		BaseURL:  baseURL + "/",
		APIKey:   "secret",
		Timeout:  time.Second,
		RetryMax: retryMax,
	}, logger.NewNoopLogger())
}

func TestClient_Exists(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)
	defer srv.Close()

	client := newTestClient(srv.URL, 0)

	tests := []struct {
		name     string
		payerID  string
		expected bool
		wantErr  bool
	}{
		{name: "known payer", payerID: knownPayer, expected: true},
		{name: "unknown payer", payerID: "2b1e4c7d-0000-4000-8000-000000000000", expected: false},
		{name: "unexpected status", payerID: "forbidden", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists, err := client.Exists(context.Background(), tt.payerID)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, ierr.Is(err, ierr.ErrHTTPClient))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, exists)
		})
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)
	defer srv.Close()

	client := newTestClient(srv.URL, 2)

	_, err := client.Exists(context.Background(), "broken")
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.ErrHTTPClient))
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestClient_PropagatesRequestID(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(types.HeaderRequestID)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx := types.SetRequestID(context.Background(), "req-123")
	exists, err := newTestClient(srv.URL, 0).Exists(ctx, knownPayer)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "req-123", got)
}

func TestNewDirectory_RequiresBaseURL(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.PayerDirectory.BaseURL = ""

	_, err := NewDirectory(cfg, logger.NewNoopLogger())
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.ErrSystem))
}
