package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloudCover(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		assert.Equal(t, "cloud_cover", r.URL.Query().Get("current"))
		assert.Equal(t, "41.7869", r.URL.Query().Get("latitude"))
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{"current":{"time":"2026-08-25T12:00","cloud_cover":42.0}}`))
		require.NoError(t, err)
	}))
	defer server.Close()

	s := NewService(server.URL, 41.7869, 1.0964)
	ctx := context.Background()

	cc, ok := s.CloudCover(ctx)
	require.True(t, ok)
	assert.InDelta(t, 42.0, cc, 0.001)

	// second call should be served from cache
	cc, ok = s.CloudCover(ctx)
	require.True(t, ok)
	assert.InDelta(t, 42.0, cc, 0.001)
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls))
}

func TestCloudCoverDisabled(t *testing.T) {
	s := &Service{}
	_, ok := s.CloudCover(context.Background())
	assert.False(t, ok)
}

func TestCloudCoverStaleOnError(t *testing.T) {
	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"current":{"cloud_cover":80.0}}`))
	}))
	defer server.Close()

	s := NewService(server.URL, 41.7869, 1.0964)
	ctx := context.Background()

	cc, ok := s.CloudCover(ctx)
	require.True(t, ok)
	assert.InDelta(t, 80.0, cc, 0.001)

	// expire the cache and make the upstream fail, the stale value remains
	s.mu.Lock()
	s.fetchedAt = s.fetchedAt.Add(-2 * cacheTTL)
	s.mu.Unlock()
	fail.Store(true)

	cc, ok = s.CloudCover(ctx)
	require.True(t, ok)
	assert.InDelta(t, 80.0, cc, 0.001)
}
