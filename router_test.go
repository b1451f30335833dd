package docroute_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/docroute"
)

var info = docroute.Info{Title: "Widgets", Version: "1.0.0"}

func serve(t *testing.T, h http.Handler, method, path string, body string) (int, string) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, r))
	b, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return rec.Code, string(b)
}

func TestRouter_Route_getAndPost(t *testing.T) {
	t.Parallel()

	svc := docroute.New().
		Route("/items", docroute.Get(docroute.Handle(listWidgets)).
			Post(docroute.Handle(createWidget, docroute.WithStatus(http.StatusCreated)))).
		Finalize(info)

	doc := svc.Document()
	assert.Equal(t, "3.1.0", doc.OpenAPI)
	assert.Equal(t, info, doc.Info)
	require.Contains(t, doc.Paths, "/items")
	assert.Equal(t, []string{"GET", "POST"}, doc.Paths["/items"].Methods())

	post := doc.Paths["/items"].Post
	require.NotNil(t, post.RequestBody)
	assert.Contains(t, post.Responses, "201")

	code, body := serve(t, svc, http.MethodGet, "/items", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"items":[{"id":"1","name":"one"}]}`, body)

	code, body = serve(t, svc, http.MethodPost, "/items", `{"name":"gear"}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.JSONEq(t, `{"id":"new","name":"gear"}`, body)

	code, _ = serve(t, svc, http.MethodDelete, "/items", "")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}

func TestRouter_Nest(t *testing.T) {
	t.Parallel()

	widgets := docroute.New().
		Route("/widgets", docroute.Get(docroute.Handle(listWidgets))).
		Route("/widgets/{id}", docroute.Get(docroute.Handle(getWidget)))

	svc := docroute.New().Nest("/api", widgets).Finalize(info)

	doc := svc.Document()
	assert.Len(t, doc.Paths, 2)
	assert.Contains(t, doc.Paths, "/api/widgets")
	assert.Contains(t, doc.Paths, "/api/widgets/{id}")

	code, body := serve(t, svc, http.MethodGet, "/api/widgets/7", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"id":"7","name":"w-7"}`, body)

	code, _ = serve(t, svc, http.MethodGet, "/widgets", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRouter_Nest_slashJoin(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		prefix, path, want string
	}{
		"plain":            {prefix: "/api", path: "/widgets", want: "/api/widgets"},
		"trailing prefix":  {prefix: "/api/", path: "/widgets", want: "/api/widgets"},
		"root sub path":    {prefix: "/api", path: "/", want: "/api/"},
		"root prefix":      {prefix: "/", path: "/widgets", want: "/widgets"},
		"wildcard prefix":  {prefix: "/t/{tenant}", path: "/items", want: "/t/{tenant}/items"},
		"nested two level": {prefix: "/v1/api", path: "/x/y", want: "/v1/api/x/y"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			sub := docroute.New().Route(tc.path, docroute.Get(textEndpoint("ok")))
			svc := docroute.New().Nest(tc.prefix, sub).Finalize(info)

			assert.Equal(t, []string{tc.want}, pathKeys(svc.Document()))

			code, body := serve(t, svc, http.MethodGet, strings.ReplaceAll(tc.want, "{tenant}", "acme"), "")
			assert.Equal(t, http.StatusOK, code)
			assert.Equal(t, "ok", body)
		})
	}
}

// The document's path set after nesting equals the prefixed sub path set,
// and every documented path is served.
func TestRouter_Nest_pathSetProperty(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))
	segments := []string{"a", "b", "users", "c", "items", "v2"}

	for i := range 25 {
		sub := docroute.New()
		want := map[string]bool{}
		for range 1 + rng.IntN(5) {
			var path string
			for range 1 + rng.IntN(3) {
				path += "/" + segments[rng.IntN(len(segments))]
			}
			if want["/p"+path] {
				continue
			}
			want["/p"+path] = true
			sub.Route(path, docroute.Get(textEndpoint(path)))
		}

		svc := docroute.New().Nest("/p", sub).Finalize(info)
		doc := svc.Document()

		got := map[string]bool{}
		for path := range doc.Paths {
			got[path] = true
		}
		require.Equal(t, want, got, "iteration %d", i)

		for path := range want {
			code, _ := serve(t, svc, http.MethodGet, path, "")
			require.Equal(t, http.StatusOK, code, "iteration %d path %s", i, path)
		}
	}
}

func TestRouter_sharedSchemaDeduplicated(t *testing.T) {
	t.Parallel()

	svc := docroute.New().
		Route("/widgets", docroute.Post(docroute.Handle(createWidget))).
		Route("/widgets/{id}", docroute.Get(docroute.Handle(getWidget))).
		Finalize(info)

	doc := svc.Document()
	require.NotNil(t, doc.Components)
	assert.Equal(t, []string{"Widget"}, doc.Components.SchemaNames())

	ref := doc.Paths["/widgets/{id}"].Get.Responses["200"].Content["application/json"].Schema.Ref
	assert.Equal(t, "#/components/schemas/Widget", ref)
	require.NoError(t, doc.Validate())
}

func TestRouter_componentConflictPanics(t *testing.T) {
	t.Parallel()

	r := docroute.New(docroute.WithComponents(docroute.Components{
		Schemas: map[string]docroute.JSONSchema{"Widget": {Type: "string"}},
	}))

	err := recoverErr(t, func() {
		r.Route("/widgets/{id}", docroute.Get(docroute.Handle(getWidget)))
	})
	require.ErrorIs(t, err, docroute.ErrComponentConflict)
}

func TestRouter_configurationErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		build   func()
		wantErr error
	}{
		"duplicate path": {
			build: func() {
				docroute.New().
					Route("/a", docroute.Get(textEndpoint("1"))).
					Route("/a", docroute.Post(textEndpoint("2")))
			},
			wantErr: docroute.ErrDuplicatePath,
		},
		"duplicate document path via wildcard suffix": {
			build: func() {
				docroute.New().
					Route("/files/{name}", docroute.Get(textEndpoint("1"))).
					Route("/files/{name...}", docroute.Post(textEndpoint("2")))
			},
			wantErr: docroute.ErrDuplicatePath,
		},
		"invalid path": {
			build: func() {
				docroute.New().Route("items", docroute.Get(textEndpoint("1")))
			},
			wantErr: docroute.ErrInvalidPath,
		},
		"nest collision": {
			build: func() {
				sub := docroute.New().Route("/widgets", docroute.Get(textEndpoint("1")))
				docroute.New().
					Route("/api/widgets", docroute.Get(textEndpoint("2"))).
					Nest("/api", sub)
			},
			wantErr: docroute.ErrDuplicatePath,
		},
		"merge overlap": {
			build: func() {
				a := docroute.New().Route("/x", docroute.Get(textEndpoint("1")))
				b := docroute.New().Route("/x", docroute.Post(textEndpoint("2")))
				a.Merge(b)
			},
			wantErr: docroute.ErrDuplicatePath,
		},
		"merge two fallbacks": {
			build: func() {
				a := docroute.New().Fallback(textEndpoint("1"))
				b := docroute.New().Fallback(textEndpoint("2"))
				a.Merge(b)
			},
			wantErr: docroute.ErrDuplicateFallback,
		},
		"second fallback": {
			build: func() {
				docroute.New().Fallback(textEndpoint("1")).Fallback(textEndpoint("2"))
			},
			wantErr: docroute.ErrDuplicateFallback,
		},
		"nest into self": {
			build: func() {
				r := docroute.New()
				r.Nest("/a", r)
			},
			wantErr: docroute.ErrConsumed,
		},
		"reuse nested router": {
			build: func() {
				sub := docroute.New()
				docroute.New().Nest("/a", sub)
				sub.Route("/b", docroute.Get(textEndpoint("1")))
			},
			wantErr: docroute.ErrConsumed,
		},
		"reuse merged router": {
			build: func() {
				other := docroute.New()
				docroute.New().Merge(other)
				other.Finalize(info)
			},
			wantErr: docroute.ErrConsumed,
		},
		"route after finalize": {
			build: func() {
				r := docroute.New()
				r.Finalize(info)
				r.Route("/late", docroute.Get(textEndpoint("1")))
			},
			wantErr: docroute.ErrFinalized,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := recoverErr(t, tc.build)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestRouter_Merge(t *testing.T) {
	t.Parallel()

	a := docroute.New().Route("/a", docroute.Get(textEndpoint("a")))
	b := docroute.New().
		Route("/b", docroute.Get(textEndpoint("b"))).
		Fallback(textEndpoint("fallback"))

	svc := a.Merge(b).Finalize(info)
	assert.Equal(t, []string{"/a", "/b"}, pathKeys(svc.Document()))

	for path, want := range map[string]string{"/a": "a", "/b": "b", "/nowhere": "fallback"} {
		code, body := serve(t, svc, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, code, path)
		assert.Equal(t, want, body, path)
	}
}

func TestRouter_Fallback(t *testing.T) {
	t.Parallel()

	type NotFound struct {
		Message string `json:"message"`
	}
	nf := docroute.Handle(func(_ context.Context, _ *docroute.Void) (*NotFound, error) {
		return &NotFound{Message: "nothing here"}, nil
	}, docroute.WithStatus(http.StatusNotFound))

	svc := docroute.New().
		Route("/a", docroute.Get(textEndpoint("a"))).
		Fallback(nf).
		Finalize(info)

	doc := svc.Document()
	assert.Equal(t, []string{"/a"}, pathKeys(doc))
	require.NotNil(t, doc.Components)
	assert.Contains(t, doc.Components.Schemas, "NotFound")

	code, body := serve(t, svc, http.MethodGet, "/missing/deep", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"message":"nothing here"}`, body)
}

func TestRouter_FallbackRouter(t *testing.T) {
	t.Parallel()

	legacy := docroute.New(docroute.WithSecurityScheme("apikey", docroute.SecurityScheme{Type: "apiKey", In: "header", Name: "X-Key"})).
		Route("/inventory", docroute.Get(docroute.Handle(listWidgets)))

	r := docroute.New().
		Route("/a", docroute.Get(textEndpoint("a"))).
		FallbackRouter(legacy)

	err := recoverErr(t, func() {
		legacy.Route("/late", docroute.Get(textEndpoint("late")))
	})
	require.ErrorIs(t, err, docroute.ErrConsumed)

	err = recoverErr(t, func() {
		r.Fallback(textEndpoint("second"))
	})
	require.ErrorIs(t, err, docroute.ErrDuplicateFallback)

	svc := r.Finalize(info)
	doc := svc.Document()
	assert.Equal(t, []string{"/a"}, pathKeys(doc))
	require.NotNil(t, doc.Components)
	assert.ElementsMatch(t, []string{"ListWidgetsResp", "Widget"}, doc.Components.SchemaNames())
	assert.Contains(t, doc.Components.SecuritySchemes, "apikey")

	tests := map[string]struct {
		path     string
		wantCode int
		wantBody string
	}{
		"own route":     {path: "/a", wantCode: http.StatusOK, wantBody: "a"},
		"subtree route": {path: "/inventory", wantCode: http.StatusOK, wantBody: `{"items":[{"id":"1","name":"one"}]}`},
		"neither":       {path: "/nowhere", wantCode: http.StatusNotFound},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			code, body := serve(t, svc, http.MethodGet, tc.path, "")
			assert.Equal(t, tc.wantCode, code)
			if tc.wantBody != "" {
				assert.Equal(t, tc.wantBody, strings.TrimSpace(body))
			}
		})
	}
}

func TestRouter_FallbackRouter_nested(t *testing.T) {
	t.Parallel()

	legacy := docroute.New().Route("/inventory", docroute.Get(textEndpoint("inventory")))
	api := docroute.New().
		Route("/widgets", docroute.Get(textEndpoint("widgets"))).
		FallbackRouter(legacy)

	svc := docroute.New().Nest("/api", api).Finalize(info)
	assert.Equal(t, []string{"/api/widgets"}, pathKeys(svc.Document()))

	code, body := serve(t, svc, http.MethodGet, "/api/inventory", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "inventory", body)

	code, body = serve(t, svc, http.MethodGet, "/api/widgets", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "widgets", body)

	code, _ = serve(t, svc, http.MethodGet, "/inventory", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRouter_componentKeysSurviveMergeAndNest(t *testing.T) {
	t.Parallel()

	reads := docroute.New(docroute.WithSecurityScheme("bearer", docroute.SecurityScheme{Type: "http", Scheme: "bearer"})).
		Route("/widgets/{id}", docroute.Get(docroute.Handle(getWidget)))
	writes := docroute.New(docroute.WithSecurityScheme("apikey", docroute.SecurityScheme{Type: "apiKey", In: "header", Name: "X-Key"})).
		Route("/widgets", docroute.Post(docroute.Handle(createWidget))).
		Route("/lists", docroute.Get(docroute.Handle(listWidgets, docroute.WithErrors(http.StatusForbidden))))

	readSchemas := reads.Components().SchemaNames()
	writeSchemas := writes.Components().SchemaNames()
	require.Contains(t, readSchemas, "Widget")
	require.Contains(t, writeSchemas, "Widget")

	v1 := reads.Merge(writes)
	svc := docroute.New().Nest("/v1", v1).Finalize(info)

	doc := svc.Document()
	require.NotNil(t, doc.Components)
	got := doc.Components.SchemaNames()
	assert.Subset(t, got, readSchemas)
	assert.Subset(t, got, writeSchemas)
	assert.ElementsMatch(t, []string{"ListWidgetsResp", "ProblemDetail", "Widget"}, got)

	widgets := 0
	for _, name := range got {
		if name == "Widget" {
			widgets++
		}
	}
	assert.Equal(t, 1, widgets)

	assert.Contains(t, doc.Components.SecuritySchemes, "bearer")
	assert.Contains(t, doc.Components.SecuritySchemes, "apikey")
	assert.Equal(t, []string{"/v1/lists", "/v1/widgets", "/v1/widgets/{id}"}, pathKeys(doc))
	require.NoError(t, doc.Validate())
}

func TestRouter_Nest_fallbackScopedToPrefix(t *testing.T) {
	t.Parallel()

	sub := docroute.New().
		Route("/widgets", docroute.Get(textEndpoint("widgets"))).
		Fallback(textEndpoint("api fallback"))

	svc := docroute.New().
		Route("/", docroute.Get(textEndpoint("home"))).
		Nest("/api", sub).
		Finalize(info)

	tests := map[string]struct {
		path     string
		wantCode int
		wantBody string
	}{
		"nested route":        {path: "/api/widgets", wantCode: http.StatusOK, wantBody: "widgets"},
		"under prefix":        {path: "/api/unknown", wantCode: http.StatusOK, wantBody: "api fallback"},
		"root exact":          {path: "/", wantCode: http.StatusOK, wantBody: "home"},
		"outside prefix":      {path: "/other", wantCode: http.StatusNotFound},
		"prefix with no tail": {path: "/api/", wantCode: http.StatusOK, wantBody: "api fallback"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			code, body := serve(t, svc, http.MethodGet, tc.path, "")
			assert.Equal(t, tc.wantCode, code)
			if tc.wantBody != "" {
				assert.Equal(t, tc.wantBody, body)
			}
		})
	}
}

func TestRouter_Nest_mergesComponentsWithoutPaths(t *testing.T) {
	t.Parallel()

	sub := docroute.New(docroute.WithSecurityScheme("bearer", docroute.SecurityScheme{Type: "http", Scheme: "bearer"}))
	svc := docroute.New().Nest("/api", sub).Finalize(info)

	doc := svc.Document()
	assert.Empty(t, doc.Paths)
	require.NotNil(t, doc.Components)
	assert.Contains(t, doc.Components.SecuritySchemes, "bearer")
}

func TestRouter_WithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	sub := docroute.New().Route("/w", docroute.Get(textEndpoint("w")))
	docroute.New(docroute.WithLogger(logger)).
		Route("/a", docroute.Get(textEndpoint("a"))).
		Nest("/api", sub).
		Fallback(textEndpoint("f")).
		Finalize(info)

	var msgs []string
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var line map[string]any
		require.NoError(t, dec.Decode(&line))
		msgs = append(msgs, fmt.Sprint(line["msg"]))
	}
	assert.Equal(t, []string{"route registered", "router nested", "fallback attached", "document finalized"}, msgs)
}

func TestRouter_emptyDocument(t *testing.T) {
	t.Parallel()

	svc := docroute.New().Finalize(info)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteSpec(&buf))
	assert.JSONEq(t, `{"openapi":"3.1.0","info":{"title":"Widgets","version":"1.0.0"},"paths":{}}`, buf.String())
}

func pathKeys(doc docroute.Document) []string {
	keys := make([]string, 0, len(doc.Paths))
	for k := range doc.Paths {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
