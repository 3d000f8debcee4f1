//go:build unit

package provider_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"keypanel/internal/infra/provider"
	"keypanel/internal/pkg/config"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	entries map[string]*provider.StatusResult
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]*provider.StatusResult)}
}

func (c *mapCache) Get(key string) (*provider.StatusResult, bool) {
	result, ok := c.entries[key]
	return result, ok
}

func (c *mapCache) Set(key string, result *provider.StatusResult) {
	c.entries[key] = result
}

func newClient(cache provider.StatusCache) *provider.Client {
	cfg := config.ProviderConfig{RequestTimeout: 2 * time.Second, StatusCacheTTL: time.Second}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return provider.NewClient(cfg, cache, logger)
}

func credFor(server *httptest.Server) provider.Credential {
	return provider.Credential{
		ID:      uuid.New(),
		BaseURL: server.URL,
		Secret:  "provider-secret",
	}
}

func TestSubmitOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted order returns the provider id", func(t *testing.T) {
		var form map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			form = map[string]string{
				"key":      r.PostFormValue("key"),
				"action":   r.PostFormValue("action"),
				"service":  r.PostFormValue("service"),
				"link":     r.PostFormValue("link"),
				"quantity": r.PostFormValue("quantity"),
			}
			w.Write([]byte(`{"order": 987654}`))
		}))
		defer server.Close()

		client := newClient(newMapCache())
		result, err := client.SubmitOrder(ctx, credFor(server), "101", "https://instagram.com/example", 100)
		require.NoError(t, err)

		assert.Equal(t, "987654", result.ProviderOrderID)
		assert.False(t, result.Rejected())

		expectedForm := map[string]string{
			"key":      "provider-secret",
			"action":   "add",
			"service":  "101",
			"link":     "https://instagram.com/example",
			"quantity": "100",
		}
		if diff := cmp.Diff(expectedForm, form); diff != "" {
			t.Errorf("submit form mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("provider rejection is not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"error": "not enough funds"}`))
		}))
		defer server.Close()

		client := newClient(newMapCache())
		result, err := client.SubmitOrder(ctx, credFor(server), "101", "", 100)
		require.NoError(t, err)

		assert.True(t, result.Rejected())
		assert.Equal(t, "not enough funds", result.ErrorMessage)
	})

	t.Run("HTTP failure is unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := newClient(newMapCache())
		_, err := client.SubmitOrder(ctx, credFor(server), "101", "", 100)
		assert.ErrorIs(t, err, provider.ErrUnreachable)
	})

	t.Run("connection failure is unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		server.Close()

		client := newClient(newMapCache())
		_, err := client.SubmitOrder(ctx, credFor(server), "101", "", 100)
		assert.ErrorIs(t, err, provider.ErrUnreachable)
	})

	t.Run("response without order id or error is unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"balance": "10.00"}`))
		}))
		defer server.Close()

		client := newClient(newMapCache())
		_, err := client.SubmitOrder(ctx, credFor(server), "101", "", 100)
		assert.ErrorIs(t, err, provider.ErrUnreachable)
	})
}

func TestQueryStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("parses the provider status payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "status", r.PostFormValue("action"))
			assert.Equal(t, "987654", r.PostFormValue("order"))
			w.Write([]byte(`{"status": "Partial", "remains": 40, "charge": "1.20"}`))
		}))
		defer server.Close()

		client := newClient(newMapCache())
		result, err := client.QueryStatus(ctx, credFor(server), "987654")
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.Equal(t, "Partial", result.Status)
		assert.Equal(t, "40", result.Remains)
		assert.Equal(t, "1.20", result.Charge)
	})

	t.Run("repeated queries within the TTL hit the cache", func(t *testing.T) {
		hits := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits++
			w.Write([]byte(`{"status": "In progress"}`))
		}))
		defer server.Close()

		client := newClient(newMapCache())
		cred := credFor(server)

		first, err := client.QueryStatus(ctx, cred, "987654")
		require.NoError(t, err)
		second, err := client.QueryStatus(ctx, cred, "987654")
		require.NoError(t, err)

		assert.Equal(t, 1, hits)
		assert.Equal(t, first, second)
	})

	t.Run("transport failure yields no result and no error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		server.Close()

		client := newClient(newMapCache())
		result, err := client.QueryStatus(ctx, credFor(server), "987654")
		assert.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("payload without a status yields no result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"charge": "1.20"}`))
		}))
		defer server.Close()

		client := newClient(newMapCache())
		result, err := client.QueryStatus(ctx, credFor(server), "987654")
		assert.NoError(t, err)
		assert.Nil(t, result)
	})
}
