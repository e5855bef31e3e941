package amarodoc_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildwithgo/amarodoc"
	"github.com/buildwithgo/amarodoc/routers"
)

func TestBasicRouting(t *testing.T) {
	app := amarodoc.New(amarodoc.WithRouter(routers.NewTrieRouter()))

	app.GET("/hello", func(c *amarodoc.Context) error {
		return c.String(http.StatusOK, "world")
	})

	app.GET("/users/{id}", func(c *amarodoc.Context) error {
		return c.String(http.StatusOK, "user "+c.PathParam("id"))
	})

	t.Run("Static", func(t *testing.T) {
		w := app.Test(httptest.NewRequest(http.MethodGet, "/hello", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "world", w.Body.String())
	})

	t.Run("Param", func(t *testing.T) {
		w := app.Test(httptest.NewRequest(http.MethodGet, "/users/123", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user 123", w.Body.String())
	})
}

func TestErrorHandler(t *testing.T) {
	t.Run("DefaultErrorHandler", func(t *testing.T) {
		app := amarodoc.New(amarodoc.WithRouter(routers.NewTrieRouter()))
		app.GET("/teapot", func(c *amarodoc.Context) error {
			return amarodoc.NewHTTPError(http.StatusTeapot, "short and stout")
		})
		app.GET("/boom", func(c *amarodoc.Context) error {
			return errors.New("database exploded")
		})
		app.GET("/missing", func(c *amarodoc.Context) error {
			return &amarodoc.MissingParameterError{Source: "query", Name: "id"}
		})

		w := app.Test(httptest.NewRequest(http.MethodGet, "/not-found", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "404 page not found\n", w.Body.String())

		w = app.Test(httptest.NewRequest(http.MethodGet, "/teapot", nil))
		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Equal(t, "short and stout\n", w.Body.String())

		w = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "database exploded")

		w = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `missing required query parameter "id"`)
	})

	t.Run("CustomJSONHandler", func(t *testing.T) {
		type ErrorResponse struct {
			Error string `json:"error"`
			Code  int    `json:"code"`
		}

		app := amarodoc.New(
			amarodoc.WithRouter(routers.NewTrieRouter()),
			amarodoc.WithErrorHandler(func(c *amarodoc.Context, err error, code int) {
				_ = c.JSON(code, ErrorResponse{Error: err.Error(), Code: code})
			}),
		)
		app.GET("/fail", func(c *amarodoc.Context) error {
			return errors.New("something went wrong")
		})

		w := app.Test(httptest.NewRequest(http.MethodGet, "/api/missing", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		w = app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, ErrorResponse{Error: "something went wrong", Code: http.StatusInternalServerError}, resp)
	})
}

func TestContextStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	c := amarodoc.NewContext(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, c.Written())
	assert.Equal(t, http.StatusOK, c.Status())

	require.NoError(t, c.NoContent(http.StatusAccepted))
	assert.True(t, c.Written())
	assert.Equal(t, http.StatusAccepted, c.Status())

	c.Set("user", "alice")
	v, ok := c.Get("user")
	assert.True(t, ok)
	assert.Equal(t, "alice", v)
}

func BenchmarkParamRoute(b *testing.B) {
	app := amarodoc.New(amarodoc.WithRouter(routers.NewTrieRouter()))
	app.GET("/users/{id}", func(c *amarodoc.Context) error {
		_ = c.PathParam("id")
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/users/123", nil)
	w := httptest.NewRecorder()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		app.ServeHTTP(w, req)
	}
}
