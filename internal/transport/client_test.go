package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/refsync/pkg/errors"
)

func fastRetry(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: attempts,
		Backoff:     time.Millisecond,
		MaxBackoff:  5 * time.Millisecond,
	}
}

func TestAuthAndHeadersApplied(t *testing.T) {
	var gotAuth, gotVersion, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("Notion-Version")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := New("notion", &BearerAuth{Token: "secret"}, map[string]string{
		"Notion-Version": "2022-06-28",
	}).WithRetryPolicy(fastRetry(1))

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, client.Get(context.Background(), server.URL, &out))

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "2022-06-28", gotVersion)
	assert.Equal(t, "application/json", gotAccept)
	assert.True(t, out.OK)
}

func TestHeaderAuth(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Zotero-API-Key")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New("zotero", &HeaderAuth{Header: "Zotero-API-Key", Token: "zkey"}, nil).
		WithRetryPolicy(fastRetry(1))

	require.NoError(t, client.Get(context.Background(), server.URL, nil))
	assert.Equal(t, "zkey", got)
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := New("notion", &NoAuth{}, nil).WithRetryPolicy(fastRetry(3))

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, client.Get(context.Background(), server.URL, &out))
	assert.Equal(t, int32(3), calls.Load())
	assert.True(t, out.OK)
}

func TestRetryExhaustionReturnsAPIError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := New("notion", &NoAuth{}, nil).WithRetryPolicy(fastRetry(3))

	err := client.Get(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load(), "all attempts should be spent")
	assert.True(t, errors.IsRateLimited(err))
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := New("notion", &NoAuth{}, nil).WithRetryPolicy(fastRetry(3))

	err := client.Get(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
	assert.True(t, errors.IsNotFound(err))
}

func TestRetryAfterHeaderHonored(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	policy := RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond, MaxBackoff: 2 * time.Second}
	client := New("notion", &NoAuth{}, nil).WithRetryPolicy(policy)

	start := time.Now()
	require.NoError(t, client.Get(context.Background(), server.URL, nil))
	assert.GreaterOrEqual(t, time.Since(start), time.Second, "Retry-After should stretch the backoff")
}

func TestContextCancellationStopsRetry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	policy := RetryPolicy{MaxAttempts: 10, Backoff: time.Hour, MaxBackoff: time.Hour}
	client := New("notion", &NoAuth{}, nil).WithRetryPolicy(policy)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := client.Get(ctx, server.URL, nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "cancellation must cut the backoff short")
}

func TestPostMarshalsBody(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(buf)
		got = string(buf)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New("notion", &NoAuth{}, nil).WithRetryPolicy(fastRetry(1))

	body := map[string]string{"page_size": "100"}
	require.NoError(t, client.Post(context.Background(), server.URL, body, nil))
	assert.JSONEq(t, `{"page_size":"100"}`, got)
}
