package cache_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildwithgo/amarodoc"
	"github.com/buildwithgo/amarodoc/addons/cache"
	"github.com/buildwithgo/amarodoc/routers"
)

func TestMemoryCache(t *testing.T) {
	c := cache.NewMemoryCache(0)
	defer c.Close()

	c.Set("a", 1, 0)
	c.Set("b", 2, time.Nanosecond)
	time.Sleep(time.Millisecond)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = c.Get("b")
	assert.False(t, ok, "expired")

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)

	c.Set("c", 3, 0)
	c.Flush()
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCacheSweep(t *testing.T) {
	c := cache.NewMemoryCache(time.Millisecond)
	c.Set("a", 1, time.Nanosecond)
	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)
	c.Close()
	c.Close()
}

func TestIdempotent(t *testing.T) {
	store := cache.NewMemoryCache(0)
	defer store.Close()

	app := amarodoc.New(amarodoc.WithRouter(routers.NewTrieRouter()))
	calls := 0
	mw := cache.Idempotent(store, time.Minute)
	require.NoError(t, app.POST("/orders", func(c *amarodoc.Context) error {
		calls++
		return c.JSON(http.StatusCreated, map[string]int{"order": calls})
	}, mw))
	require.NoError(t, app.POST("/fail", func(c *amarodoc.Context) error {
		calls++
		return amarodoc.NewHTTPError(http.StatusConflict)
	}, mw))

	post := func(path, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		if key != "" {
			req.Header.Set(cache.IdempotencyHeader, key)
		}
		return app.Test(req)
	}

	first := post("/orders", "k1")
	require.Equal(t, http.StatusCreated, first.Code)
	replay := post("/orders", "k1")
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, first.Body.String(), replay.Body.String())
	assert.Equal(t, "true", replay.Header().Get(cache.ReplayHeader))
	assert.Equal(t, "application/json", replay.Header().Get("Content-Type"))
	assert.Equal(t, 1, calls)

	post("/orders", "k2")
	post("/orders", "")
	assert.Equal(t, 3, calls)

	assert.Equal(t, http.StatusConflict, post("/fail", "k1").Code)
	post("/fail", "k1")
	assert.Equal(t, 5, calls, "failures are not stored")
}
