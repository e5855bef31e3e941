package petstore_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/buildwithgo/amarodoc"
	"github.com/buildwithgo/amarodoc/addons/cache"
	"github.com/buildwithgo/amarodoc/internal/petstore"
	"github.com/buildwithgo/amarodoc/middlewares"
	"github.com/buildwithgo/amarodoc/openapi"
	"github.com/buildwithgo/amarodoc/routers"
)

const secret = "test-secret"

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fixture struct {
	app   *amarodoc.App
	gen   *openapi.Generator
	store *petstore.Store
	token string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := petstore.NewStore(0)
	gen := petstore.NewGenerator(openapi.Config{}, logger)
	idem := cache.NewMemoryCache(0)
	t.Cleanup(idem.Close)

	api := petstore.NewAPI(store, gen,
		petstore.WithLogger(logger),
		petstore.WithAuth(middlewares.JWT(middlewares.WithSecret(secret))),
		petstore.WithIdempotency(idem, time.Minute))
	app := amarodoc.New(amarodoc.WithRouter(routers.NewTrieRouter()), amarodoc.WithLogger(logger))
	require.NoError(t, api.Register(app))

	token, err := middlewares.CreateToken(jwt.MapClaims{"sub": "admin"}, middlewares.NewJWTConfig(middlewares.WithSecret(secret)))
	require.NoError(t, err)
	return &fixture{app: app, gen: gen, store: store, token: token}
}

func (f *fixture) do(method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	return f.app.Test(req)
}

func params(op *openapi.Operation) map[string]*openapi.Parameter {
	out := make(map[string]*openapi.Parameter)
	for _, p := range op.Parameters {
		out[p.In+":"+p.Name] = p
	}
	return out
}

func TestDocument(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, openapi.ApplyComments(f.gen, "."))
	spec := f.gen.Spec()

	list := spec.Paths["/pets"].Get
	require.NotNil(t, list)
	assert.Equal(t, "listPets", list.OperationID)
	assert.Equal(t, []string{"Pets"}, list.Tags)
	lp := params(list)
	require.Len(t, lp, 3)
	assert.False(t, lp["query:limit"].Required, "limit has a default")
	assert.Equal(t, 20, lp["query:limit"].Schema.Default)
	assert.False(t, lp["query:offset"].Required)
	assert.False(t, lp["query:tag"].Required, "tag is a pointer")

	get := spec.Paths["/pets/{id}"].Get
	require.NotNil(t, get)
	assert.True(t, params(get)["path:id"].Required)
	assert.Contains(t, get.Responses, "200")

	create := spec.Paths["/pets"].Post
	require.NotNil(t, create)
	cp := params(create)
	require.Len(t, cp, 1)
	assert.False(t, cp["header:Idempotency-Key"].Required)
	assert.Contains(t, create.Responses, "201")
	assert.Contains(t, create.Responses, "400")
	require.NotNil(t, create.RequestBody)
	assert.Equal(t, "#/components/schemas/CreatePetRequest", create.RequestBody.Content["application/json"].Schema.Ref)

	body := spec.Components.Schemas["CreatePetRequest"]
	require.NotNil(t, body)
	assert.Equal(t, []string{"name"}, body.Required)
	assert.NotContains(t, body.Properties, "Idempotency-Key")
	assert.NotContains(t, body.Properties, "IdempotencyKey")
	assert.Equal(t, "byte", body.Properties["photo"].Format)
	assert.True(t, body.Properties["category"].Deprecated)

	del := spec.Paths["/pets/{id}"].Delete
	require.NotNil(t, del)
	dp := params(del)
	require.Len(t, dp, 2, "context fields are not parameters")
	assert.True(t, dp["path:id"].Required)
	assert.False(t, dp["query:force"].Required)
	assert.Nil(t, del.RequestBody)
	assert.Equal(t, []map[string][]string{{petstore.BearerAuth: {}}}, del.Security)
	assert.Contains(t, del.Responses, "204")
	assert.Contains(t, spec.Components.SecuritySchemes, petstore.BearerAuth)

	photo := spec.Paths["/pets/{id}/photo"].Get
	require.NotNil(t, photo)
	assert.Equal(t, "getPetPhoto", photo.OperationID)
	assert.True(t, params(photo)["path:id"].Required, "path parameters are always required")

	events := spec.Paths["/events"].Get
	require.NotNil(t, events)
	assert.Equal(t, []string{"Events"}, events.Tags)
	assert.False(t, params(events)["query:follow"].Required)
	assert.Contains(t, events.Responses["200"].Content, "text/event-stream")

	pet := spec.Components.Schemas["Pet"]
	require.NotNil(t, pet)
	assert.Contains(t, pet.Description, "animal")
	assert.Equal(t, "Name the pet answers to.", pet.Properties["name"].Description)
	assert.True(t, pet.Properties["category"].Deprecated)
	assert.True(t, pet.Properties["tag"].Nullable)
	assert.Equal(t, "date-time", pet.Properties["createdAt"].Format)

	findings, err := f.gen.Validate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func decodePet(t *testing.T, rec *httptest.ResponseRecorder) petstore.Pet {
	t.Helper()
	var p petstore.Pet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestCreateAndGet(t *testing.T) {
	f := newFixture(t)
	photo, err := json.Marshal(pngHeader)
	require.NoError(t, err)
	body := `{"name":"Rex","tag":"dog","photo":` + string(photo) + `}`
	key := map[string]string{cache.IdempotencyHeader: "k1"}

	rec := f.do(http.MethodPost, "/pets", body, key)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodePet(t, rec)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Rex", created.Name)
	require.NotNil(t, created.Tag)
	assert.Equal(t, "dog", *created.Tag)

	replay := f.do(http.MethodPost, "/pets", body, key)
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get(cache.ReplayHeader))
	assert.Equal(t, created.ID, decodePet(t, replay).ID)
	_, total := f.store.List(petstore.Filter{})
	assert.Equal(t, 1, total)

	assert.Equal(t, http.StatusUnprocessableEntity, f.do(http.MethodPost, "/pets", `{"name":" "}`, nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/pets", `{`, nil).Code)

	rec = f.do(http.MethodGet, "/pets/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngHeader, decodePet(t, rec).Photo)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/pets/9", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/pets/abc", "", nil).Code)

	rec = f.do(http.MethodGet, "/pets/1/photo", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngHeader, rec.Body.Bytes())

	f.store.Create(petstore.NewPet{Name: "Tom"})
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/pets/2/photo", "", nil).Code)
}

func TestListPets(t *testing.T) {
	f := newFixture(t)
	dog, cat := "dog", "cat"
	for i, tag := range []*string{&dog, &cat, &dog, nil} {
		f.store.Create(petstore.NewPet{Name: string(rune('a' + i)), Tag: tag})
	}

	var page petstore.PetList
	rec := f.do(http.MethodGet, "/pets", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 4, page.Total)
	assert.Len(t, page.Items, 4)

	rec = f.do(http.MethodGet, "/pets?tag=dog&limit=1&offset=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(3), page.Items[0].ID)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/pets?limit=-1", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/pets?limit=many", "", nil).Code)
}

func TestDeletePet(t *testing.T) {
	f := newFixture(t)
	f.store.Create(petstore.NewPet{Name: "Rex"})
	auth := map[string]string{"Authorization": "Bearer " + f.token}

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodDelete, "/pets/1", "", nil).Code)
	assert.Equal(t, http.StatusConflict, f.do(http.MethodDelete, "/pets/1", "", auth).Code)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/pets/1?force=true", "", auth).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/pets/1?force=true", "", auth).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/pets/1", "", nil).Code)
}

func TestEventsReplay(t *testing.T) {
	f := newFixture(t)
	p := f.store.Create(petstore.NewPet{Name: "Rex"})
	require.NoError(t, f.store.Delete(p.ID))

	rec := f.do(http.MethodGet, "/events", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	out := rec.Body.String()
	assert.Contains(t, out, "event: created\nid: 1\ndata: ")
	assert.Contains(t, out, "event: deleted\nid: 2\ndata: ")
}

func TestEventsFollow(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.app)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?follow=true", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	f.store.Create(petstore.NewPet{Name: "Tom"})

	r := bufio.NewReader(resp.Body)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: created\n", line)
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "id: 1\n", line)
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"name":"Tom"`)
}
