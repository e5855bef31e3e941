package petstore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/buildwithgo/amarodoc"
	"github.com/buildwithgo/amarodoc/addons/cache"
	"github.com/buildwithgo/amarodoc/addons/streaming"
	"github.com/buildwithgo/amarodoc/middlewares"
	"github.com/buildwithgo/amarodoc/openapi"
	"github.com/buildwithgo/amarodoc/openapi/nullable"
)

// BearerAuth is the name of the security scheme protecting write operations.
const BearerAuth = "bearerAuth"

// DefaultIdempotencyTTL is how long a created pet is replayed for a repeated Idempotency-Key.
const DefaultIdempotencyTTL = 10 * time.Minute

type ListPetsRequest struct {
	Limit  int     `query:"limit" default:"20" doc:"Maximum number of pets to return" example:"20"`
	Offset int     `query:"offset" default:"0" doc:"Number of pets to skip"`
	Tag    *string `query:"tag" doc:"Only list pets with this tag" example:"dog"`
}

type GetPetRequest struct {
	ID int64 `path:"id" doc:"Pet identifier" example:"1"`
}

type CreatePetRequest struct {
	IdempotencyKey *string `header:"Idempotency-Key" doc:"Repeating a key replays the first response"`

	// Name the pet answers to.
	Name string  `json:"name" example:"Rex"`
	Tag  *string `json:"tag,omitempty" example:"dog"`
	// Photo is the raw image, base64 encoded.
	Photo []byte `json:"photo,omitempty"`
	// Deprecated: use Tag.
	Category string `json:"category,omitempty"`
}

type DeletePetRequest struct {
	Ctx   context.Context
	ID    int64 `path:"id" doc:"Pet identifier"`
	Force bool  `query:"force" default:"false" doc:"Delete even if the pet was created less than a minute ago"`
}

// Router registers routes; *amarodoc.App and *amarodoc.Group satisfy it.
type Router interface {
	Add(method, path string, handler amarodoc.Handler, mw ...amarodoc.Middleware) error
}

// API serves a Store.
type API struct {
	store          *Store
	gen            *openapi.Generator
	logger         *zap.Logger
	auth           amarodoc.Middleware
	idempotency    cache.Cache
	idempotencyTTL time.Duration
}

type Option func(*API)

func WithLogger(logger *zap.Logger) Option {
	return func(a *API) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithAuth protects the write operations with mw.
func WithAuth(mw amarodoc.Middleware) Option {
	return func(a *API) { a.auth = mw }
}

// WithIdempotency replays pet creation responses stored in c for ttl.
func WithIdempotency(c cache.Cache, ttl time.Duration) Option {
	return func(a *API) {
		a.idempotency = c
		a.idempotencyTTL = ttl
	}
}

// NewAPI returns the HTTP API of store documented by gen.
func NewAPI(store *Store, gen *openapi.Generator, opts ...Option) *API {
	a := &API{
		store:          store,
		gen:            gen,
		logger:         zap.NewNop(),
		idempotencyTTL: DefaultIdempotencyTTL,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register documents the API and adds its routes to r.
func (a *API) Register(r Router) error {
	var createMW, deleteMW []amarodoc.Middleware
	if a.idempotency != nil {
		createMW = append(createMW, cache.Idempotent(a.idempotency, a.idempotencyTTL))
	}
	var security []openapi.OperationOption
	if a.auth != nil {
		deleteMW = append(deleteMW, a.auth)
		security = append(security, openapi.WithSecurity(BearerAuth))
	}

	routes := []struct {
		method  string
		path    string
		handler amarodoc.Handler
		mw      []amarodoc.Middleware
	}{
		{http.MethodGet, "/pets", openapi.WrapHandler(a.gen, http.MethodGet, "/pets", a.listPets,
			openapi.WithOperationID("listPets"), openapi.WithSummary("List pets")), nil},
		{http.MethodPost, "/pets", openapi.WrapHandler(a.gen, http.MethodPost, "/pets", a.createPet,
			openapi.WithOperationID("createPet"), openapi.WithSummary("Create a pet"), openapi.WithStatus(http.StatusCreated)), createMW},
		{http.MethodGet, "/pets/:id", openapi.WrapHandler(a.gen, http.MethodGet, "/pets/:id", a.getPet,
			openapi.WithOperationID("getPet"), openapi.WithSummary("Get a pet")), nil},
		{http.MethodDelete, "/pets/:id", openapi.WrapHandler(a.gen, http.MethodDelete, "/pets/:id", a.deletePet,
			append(security, openapi.WithOperationID("deletePet"), openapi.WithSummary("Delete a pet"))...), deleteMW},
		{http.MethodGet, "/pets/:id/photo", openapi.Document(a.gen, http.MethodGet, "/pets/:id/photo", a.photo, photoOperation()), nil},
		{http.MethodGet, "/events", openapi.WrapStream(a.gen, http.MethodGet, "/events", a.events,
			openapi.WithOperationID("streamEvents"), openapi.WithSummary("Stream store events"),
			openapi.WithTags("Events"),
			openapi.WithParameters(&openapi.Parameter{
				Name:        "follow",
				In:          amarodoc.SourceQuery,
				Description: "Keep the stream open and send new events",
				Schema:      &openapi.Schema{Type: "boolean", Default: false},
			})), nil},
	}
	for _, rt := range routes {
		if err := r.Add(rt.method, rt.path, rt.handler, rt.mw...); err != nil {
			return err
		}
	}
	return nil
}

func photoOperation() openapi.Operation {
	return openapi.Operation{
		OperationID: "getPetPhoto",
		Summary:     "Get the photo of a pet",
		Parameters: []*openapi.Parameter{{
			Name:        "id",
			In:          amarodoc.SourcePath,
			Description: "Pet identifier",
			Schema:      &openapi.Schema{Type: "integer", Format: "int64"},
		}},
		Responses: map[string]*openapi.Response{
			"200": {
				Description: http.StatusText(http.StatusOK),
				Content: map[string]*openapi.MediaType{
					"application/octet-stream": {Schema: &openapi.Schema{Type: "string", Format: "binary"}},
				},
			},
			"404": {Description: http.StatusText(http.StatusNotFound)},
		},
	}
}

func notFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return amarodoc.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
	}
	return err
}

func (a *API) listPets(c *amarodoc.Context, req *ListPetsRequest) (*PetList, error) {
	if req.Limit < 0 || req.Offset < 0 {
		return nil, amarodoc.NewHTTPError(http.StatusBadRequest, "limit and offset must not be negative")
	}
	items, total := a.store.List(Filter{Tag: req.Tag, Offset: req.Offset, Limit: req.Limit})
	return &PetList{Items: items, Total: total}, nil
}

func (a *API) getPet(c *amarodoc.Context, req *GetPetRequest) (*Pet, error) {
	p, err := a.store.Get(req.ID)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (a *API) createPet(c *amarodoc.Context, req *CreatePetRequest) (*Pet, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, amarodoc.NewHTTPError(http.StatusUnprocessableEntity, "name is required")
	}
	p := a.store.Create(NewPet{Name: name, Tag: req.Tag, Photo: req.Photo, Category: req.Category})
	fields := []zap.Field{zap.Int64("id", p.ID)}
	if req.IdempotencyKey != nil {
		fields = append(fields, zap.String("idempotency_key", *req.IdempotencyKey))
	}
	a.logger.Info("pet created", fields...)
	return &p, nil
}

func (a *API) deletePet(c *amarodoc.Context, req *DeletePetRequest) (*struct{}, error) {
	if err := req.Ctx.Err(); err != nil {
		return nil, err
	}
	p, err := a.store.Get(req.ID)
	if err != nil {
		return nil, notFound(err)
	}
	if !req.Force && time.Since(p.CreatedAt) < time.Minute {
		return nil, amarodoc.NewHTTPError(http.StatusConflict, "pet was created less than a minute ago, use force")
	}
	if err := a.store.Delete(req.ID); err != nil {
		return nil, notFound(err)
	}
	a.logger.Info("pet deleted", zap.Int64("id", req.ID), zap.String("deleted_by", middlewares.Subject(c)))
	return nil, nil
}

func (a *API) photo(c *amarodoc.Context) error {
	id, err := strconv.ParseInt(c.PathParam("id"), 10, 64)
	if err != nil {
		return amarodoc.NewHTTPError(http.StatusBadRequest, "invalid pet id").SetInternal(err)
	}
	p, err := a.store.Get(id)
	if err != nil {
		return notFound(err)
	}
	if len(p.Photo) == 0 {
		return amarodoc.NewHTTPError(http.StatusNotFound, "pet has no photo")
	}
	return c.Blob(http.StatusOK, http.DetectContentType(p.Photo), p.Photo)
}

func (a *API) events(c *amarodoc.Context) error {
	follow, _ := strconv.ParseBool(c.QueryParam("follow"))
	var updates <-chan Event
	if follow {
		ch, cancel := a.store.Subscribe(16)
		defer cancel()
		updates = ch
	}
	history := a.store.Events()

	return streaming.SSE(c, func(w *streaming.EventWriter) error {
		var last int64
		for _, ev := range history {
			if err := sendEvent(w, ev); err != nil {
				return err
			}
			last = ev.Seq
		}
		if updates == nil {
			return nil
		}
		for {
			select {
			case <-w.Done():
				return nil
			case ev, ok := <-updates:
				if !ok {
					return nil
				}
				if ev.Seq <= last {
					continue
				}
				if err := sendEvent(w, ev); err != nil {
					return err
				}
				last = ev.Seq
			}
		}
	})
}

func sendEvent(w *streaming.EventWriter, ev Event) error {
	data, err := json.Marshal(ev.Pet)
	if err != nil {
		return err
	}
	return w.Send(streaming.Message{
		Event: ev.Type,
		ID:    strconv.FormatInt(ev.Seq, 10),
		Data:  string(data),
	})
}

// NewGenerator returns the generator documenting the API under cfg. The
// nullable conventions module is installed after opts.
func NewGenerator(cfg openapi.Config, logger *zap.Logger, opts ...openapi.Option) *openapi.Generator {
	info := openapi.Info{
		Title:       "Petstore",
		Description: "An in-memory pet store.",
		Version:     "1.0.0",
	}
	base := []openapi.Option{
		openapi.WithLogger(logger),
		openapi.WithConfig(cfg),
		openapi.WithSecurityScheme(BearerAuth, openapi.BearerJWT()),
	}
	base = append(base, opts...)
	base = append(base, openapi.WithModule(nullable.Module()))
	return openapi.NewGenerator(info, base...)
}
