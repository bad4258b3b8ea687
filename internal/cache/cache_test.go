package cache

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appstorewatch/insights/internal/monitoring"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(time.Minute)

	c.Set("key1", []byte("value1"))

	data, found := c.Get("key1")
	require.True(t, found)
	assert.Equal(t, []byte("value1"), data)

	_, found = c.Get("missing")
	assert.False(t, found)
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(10 * time.Millisecond)

	c.Set("key1", []byte("value1"))
	time.Sleep(20 * time.Millisecond)

	_, found := c.Get("key1")
	assert.False(t, found)
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := NewCache(time.Minute)

	c.Set("key1", []byte("a"))
	c.Set("key2", []byte("b"))
	require.Equal(t, 2, c.Size())

	c.Delete("key1")
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestCacheStats(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("key1", []byte("a"))

	stats := c.Stats()
	assert.Equal(t, 1, stats["total_items"])
	assert.Equal(t, 1, stats["active_items"])
	assert.Equal(t, float64(60), stats["ttl_seconds"])
}

func TestMiddlewareCachesListResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c := NewCache(time.Minute)
	metrics := monitoring.NewMetrics()

	hits := 0
	r := gin.New()
	r.Use(c.Middleware(metrics, "/api/articles"))
	r.GET("/api/articles", func(ctx *gin.Context) {
		hits++
		ctx.JSON(http.StatusOK, gin.H{"total": hits})
	})
	r.GET("/api/uncached", func(ctx *gin.Context) {
		hits++
		ctx.JSON(http.StatusOK, gin.H{"total": hits})
	})

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/articles", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/articles", nil))
	require.Equal(t, http.StatusOK, second.Code)

	// Second request is served from cache, the handler runs once
	assert.Equal(t, 1, hits)
	assert.Equal(t, first.Body.String(), second.Body.String())

	// A different query string is a different cache entry
	third := httptest.NewRecorder()
	r.ServeHTTP(third, httptest.NewRequest(http.MethodGet, "/api/articles?category=fees", nil))
	require.Equal(t, http.StatusOK, third.Code)
	assert.Equal(t, 2, hits)

	// Paths outside the configured prefixes are never cached
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/uncached", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 4, hits)
}
