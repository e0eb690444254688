package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testClient builds a client against a fake server with pacing effectively
// disabled and backoff sleeps recorded instead of performed.
func testClient(t *testing.T, serverURL string) (*Client, *[]time.Duration) {
	t.Helper()

	client := NewClientWithConfig("test-token", ClientConfig{
		BaseURL:              serverURL,
		MaxRequestsPerSecond: 1000,
	}, zap.NewNop())

	delays := &[]time.Duration{}
	client.sleep = func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}

	return client, delays
}

// fakeDatabase serves pages out of a fixed pool, honoring page_size and
// cursors the way the real API does.
func fakeDatabase(t *testing.T, total int, requests *int) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		*requests++

		var req struct {
			StartCursor string `json:"start_cursor"`
			PageSize    int    `json:"page_size"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.LessOrEqual(t, req.PageSize, 100, "page_size must respect the provider cap")

		offset := 0
		if req.StartCursor != "" {
			fmt.Sscanf(req.StartCursor, "cursor-%d", &offset)
		}

		count := req.PageSize
		if offset+count > total {
			count = total - offset
		}

		pages := make([]Page, count)
		for i := range pages {
			pages[i] = Page{
				ID:         fmt.Sprintf("page-%d", offset+i),
				Properties: map[string]Property{},
			}
		}

		hasMore := offset+count < total
		resp := map[string]interface{}{
			"object":   "list",
			"results":  pages,
			"has_more": hasMore,
		}
		if hasMore {
			resp["next_cursor"] = fmt.Sprintf("cursor-%d", offset+count)
		}

		json.NewEncoder(w).Encode(resp)
	}
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"object":  "error",
		"status":  status,
		"code":    code,
		"message": message,
	})
}

func TestQueryDatabasePagination(t *testing.T) {
	tests := []struct {
		name         string
		total        int
		maxItems     int
		wantItems    int
		wantRequests int
	}{
		{"all items across pages", 250, 1000, 250, 3},
		{"capped mid page", 250, 150, 150, 2},
		{"cap equals total", 100, 100, 100, 1},
		{"single short page", 7, 1000, 7, 1},
		{"zero budget issues no requests", 250, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requests := 0
			server := httptest.NewServer(fakeDatabase(t, tt.total, &requests))
			defer server.Close()

			client, _ := testClient(t, server.URL)
			pages, err := client.QueryDatabase(context.Background(), "db1", nil, nil, tt.maxItems)
			require.NoError(t, err)

			assert.Len(t, pages, tt.wantItems)
			assert.Equal(t, tt.wantRequests, requests)

			if tt.wantItems > 0 {
				// Provider pagination order is preserved
				assert.Equal(t, "page-0", pages[0].ID)
				assert.Equal(t, fmt.Sprintf("page-%d", tt.wantItems-1), pages[tt.wantItems-1].ID)
			}
		})
	}
}

func TestQueryDatabaseBackoffExhaustion(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		writeAPIError(w, 429, "rate_limited", "slow down")
	}))
	defer server.Close()

	client, delays := testClient(t, server.URL)
	_, err := client.QueryDatabase(context.Background(), "db1", nil, nil, 10)

	require.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 6, requests, "initial request plus 5 retries")
	assert.Equal(t, []time.Duration{
		1000 * time.Millisecond,
		2000 * time.Millisecond,
		4000 * time.Millisecond,
		8000 * time.Millisecond,
		10000 * time.Millisecond,
	}, *delays)
}

func TestQueryDatabaseRecoversAfterThrottle(t *testing.T) {
	requests := 0
	pool := fakeDatabase(t, 5, &requests)
	throttled := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if throttled < 2 {
			throttled++
			writeAPIError(w, 429, "rate_limited", "slow down")
			return
		}
		pool(w, r)
	}))
	defer server.Close()

	client, delays := testClient(t, server.URL)
	pages, err := client.QueryDatabase(context.Background(), "db1", nil, nil, 10)

	require.NoError(t, err)
	assert.Len(t, pages, 5)
	assert.Equal(t, []time.Duration{
		1000 * time.Millisecond,
		2000 * time.Millisecond,
	}, *delays)
}

func TestQueryDatabaseNonThrottlingErrorPropagates(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		writeAPIError(w, 400, "validation_error", "bad filter")
	}))
	defer server.Close()

	client, delays := testClient(t, server.URL)
	_, err := client.QueryDatabase(context.Background(), "db1", nil, nil, 10)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "validation_error", apiErr.Code)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, 1, requests, "no retry for non-throttling errors")
	assert.Empty(t, *delays)
}

func TestGetDatabase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/databases/db1", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(Database{Object: "database", ID: "db1"})
	}))
	defer server.Close()

	client, _ := testClient(t, server.URL)
	db, err := client.GetDatabase(context.Background(), "db1")
	require.NoError(t, err)
	assert.Equal(t, "db1", db.ID)
}

func TestSearchDatabases(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "roadmap", req["query"])

		json.NewEncoder(w).Encode(SearchResult{
			Object:  "list",
			Results: []Database{{ID: "db1"}, {ID: "db2"}},
		})
	}))
	defer server.Close()

	client, _ := testClient(t, server.URL)
	result, err := client.SearchDatabases(context.Background(), "roadmap")
	require.NoError(t, err)
	assert.Len(t, result.Results, 2)
}

func TestTestConnection(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users/me", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"object": "user", "id": "u1"})
	}))
	defer healthy.Close()

	client, _ := testClient(t, healthy.URL)
	assert.True(t, client.TestConnection(context.Background()))

	unauthorized := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, 401, "unauthorized", "bad token")
	}))
	defer unauthorized.Close()

	client, _ = testClient(t, unauthorized.URL)
	assert.False(t, client.TestConnection(context.Background()))
}
