package docroute

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/bjaus/docroute/internal/dispatch"
)

// Router is a tree of paths that serves requests and describes itself.
// Every composition operation is applied to the serving tree and to the
// document tree together, so the paths one serves are exactly the paths the
// other documents.
//
// Composition mistakes (a path registered twice, overlapping verbs,
// conflicting component definitions) are configuration errors and panic
// with an error wrapping one of the Err* sentinels.
type Router struct {
	tree       *dispatch.Tree
	paths      map[string]*MethodRouter
	components Components
	fallback   bool

	logger *slog.Logger

	consumed  bool
	finalized bool
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLogger sets the logger used for composition events. The default is
// slog.Default().
func WithLogger(l *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = l
	}
}

// WithSecurityScheme registers a named security scheme in the router's
// components.
func WithSecurityScheme(name string, scheme SecurityScheme) RouterOption {
	return func(r *Router) {
		r.components.Merge(Components{
			SecuritySchemes: map[string]SecurityScheme{name: scheme},
		})
	}
}

// WithComponents adds hand-written components to the router, for fragments
// no handler type contributes.
func WithComponents(c Components) RouterOption {
	return func(r *Router) {
		r.components.Merge(c)
	}
}

// New creates an empty Router.
func New(opts ...RouterOption) *Router {
	r := &Router{
		tree:   dispatch.NewTree(),
		paths:  make(map[string]*MethodRouter),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route adds mr under path. path must begin with "/" and may use ServeMux
// wildcards such as "/items/{id}". mr is consumed.
func (r *Router) Route(path string, mr *MethodRouter) *Router {
	r.mustUsable()
	mr.consume()

	r.tree.Route(path, mr.methods)

	key := toOpenAPIPath(path)
	if _, ok := r.paths[key]; ok {
		panic(fmt.Errorf("%w: %s already documented", ErrDuplicatePath, key))
	}
	r.components.Merge(mr.components)
	r.paths[key] = mr

	r.logger.Debug("route registered", "path", key, "methods", mr.Documented().String())
	return r
}

// Nest adds every path of sub under prefix, joined with a single slash. A
// fallback on sub serves every unmatched request below prefix. sub's
// components are merged even when it has no paths. sub is consumed.
func (r *Router) Nest(prefix string, sub *Router) *Router {
	r.mustUsable()
	if sub == r {
		panic(fmt.Errorf("%w: cannot nest a router into itself", ErrConsumed))
	}
	sub.mustUsable()
	sub.consumed = true

	r.tree.Nest(prefix, sub.tree)

	nested := make(map[string]*MethodRouter, len(sub.paths))
	for key, mr := range sub.paths {
		full := toOpenAPIPath(dispatch.JoinPath(prefix, key))
		if _, ok := r.paths[full]; ok {
			panic(fmt.Errorf("%w: %s already documented", ErrDuplicatePath, full))
		}
		if _, ok := nested[full]; ok {
			panic(fmt.Errorf("%w: %s documented twice under %s", ErrDuplicatePath, full, prefix))
		}
		nested[full] = mr
	}
	r.components.Merge(sub.components)
	for key, mr := range nested {
		r.paths[key] = mr
	}

	r.logger.Debug("router nested", "prefix", prefix, "paths", len(nested), "fallback", sub.fallback)
	return r
}

// Merge adds every path of other to r. The path sets must be disjoint and
// at most one side may have a fallback. other is consumed.
func (r *Router) Merge(other *Router) *Router {
	r.mustUsable()
	if other == r {
		panic(fmt.Errorf("%w: cannot merge a router into itself", ErrConsumed))
	}
	other.mustUsable()
	other.consumed = true

	r.tree.Merge(other.tree)

	for key := range other.paths {
		if _, ok := r.paths[key]; ok {
			panic(fmt.Errorf("%w: %s documented on both sides of merge", ErrDuplicatePath, key))
		}
	}
	if r.fallback && other.fallback {
		panic(fmt.Errorf("%w: both routers define a fallback", ErrDuplicateFallback))
	}

	r.components.Merge(other.components)
	for key, mr := range other.paths {
		r.paths[key] = mr
	}
	r.fallback = r.fallback || other.fallback

	r.logger.Debug("router merged", "paths", len(other.paths))
	return r
}

// Fallback serves ep for requests no path matches. It adds no path to the
// document; its components are merged.
func (r *Router) Fallback(ep Endpoint) *Router {
	r.mustUsable()
	r.tree.Fallback(ep.handler)

	if r.fallback {
		panic(fmt.Errorf("%w: router already documents a fallback", ErrDuplicateFallback))
	}
	r.fallback = true
	r.components.Merge(ep.descriptor.Components)

	r.logger.Debug("fallback attached")
	return r
}

// FallbackRouter serves requests no path matches with sub, compiled into its
// own dispatcher. Like Fallback it adds no path to the document; sub's
// components are merged and sub is consumed.
func (r *Router) FallbackRouter(sub *Router) *Router {
	r.mustUsable()
	sub.mustUsable()
	r.tree.Fallback(sub.tree.Compile())

	if r.fallback {
		panic(fmt.Errorf("%w: router already documents a fallback", ErrDuplicateFallback))
	}
	r.fallback = true
	r.components.Merge(sub.components)
	sub.consumed = true

	r.logger.Debug("fallback router attached", "paths", len(sub.paths))
	return r
}

// Paths returns the documented paths in lexical order.
func (r *Router) Paths() []string {
	paths := make([]string, 0, len(r.paths))
	for path := range r.paths {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Components returns the union of every component contributed so far.
func (r *Router) Components() Components { return r.components }

// Finalize seals the router and produces a Service from it: the assembled
// document plus the compiled request dispatcher. Any further use of r
// panics with ErrFinalized.
func (r *Router) Finalize(info Info, opts ...ServiceOption) *Service {
	r.mustUsable()
	r.finalized = true

	cfg := newServiceConfig(opts)

	doc := Document{
		OpenAPI: openAPIVersion,
		Info:    info,
		Servers: cfg.servers,
		Paths:   make(map[string]PathItem, len(r.paths)),
		Tags:    cfg.tags(),
	}
	for key, mr := range r.paths {
		doc.Paths[key] = mr.PathItem()
	}

	var comps Components
	comps.Merge(r.components)
	if !comps.IsEmpty() {
		doc.Components = &comps
	}

	for _, name := range cfg.security {
		doc.Security = append(doc.Security, SecurityRequirement{name: {}})
	}

	r.logger.Debug("document finalized",
		"title", info.Title,
		"version", info.Version,
		"paths", len(doc.Paths),
		"components", comps.Len(),
	)

	return newService(doc, r.tree.Compile(), cfg)
}

func (r *Router) mustUsable() {
	if r.finalized {
		panic(fmt.Errorf("%w: router can no longer be changed", ErrFinalized))
	}
	if r.consumed {
		panic(fmt.Errorf("%w: router was already nested or merged", ErrConsumed))
	}
}
