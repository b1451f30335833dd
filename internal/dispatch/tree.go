package dispatch

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// rootFallback keys the catch-all of the whole tree in Tree.fallbacks.
const rootFallback = ""

// Tree maps full paths to method sets. Nested trees are flattened at Nest
// time, so a Tree is always a single level deep.
type Tree struct {
	routes    map[string]*Methods
	fallbacks map[string]http.Handler
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{
		routes:    make(map[string]*Methods),
		fallbacks: make(map[string]http.Handler),
	}
}

// Route inserts a single path. Panics if the path is already present.
func (t *Tree) Route(path string, m *Methods) {
	mustValidPath(path)
	if _, ok := t.routes[path]; ok {
		panic(fmt.Errorf("%w: %s already exists", ErrDuplicatePath, path))
	}
	t.routes[path] = m
}

// Nest inserts every path of sub under prefix. Fallbacks of sub see the
// request path with prefix removed. sub must not be used afterwards.
func (t *Tree) Nest(prefix string, sub *Tree) {
	mustValidPath(prefix)
	for path := range sub.routes {
		full := JoinPath(prefix, path)
		if _, ok := t.routes[full]; ok {
			panic(fmt.Errorf("%w: %s already exists", ErrDuplicatePath, full))
		}
	}
	for key := range sub.fallbacks {
		if _, ok := t.fallbacks[nestedFallbackKey(prefix, key)]; ok {
			panic(fmt.Errorf("%w: %s already has a fallback", ErrDuplicateFallback, prefix))
		}
	}

	for path, m := range sub.routes {
		t.routes[JoinPath(prefix, path)] = m
	}
	strip := strings.TrimSuffix(prefix, "/")
	for key, h := range sub.fallbacks {
		if strip != "" {
			h = http.StripPrefix(strip, h)
		}
		t.fallbacks[nestedFallbackKey(prefix, key)] = h
	}
}

// Merge unions other into t. The path sets must be disjoint.
func (t *Tree) Merge(other *Tree) {
	for path := range other.routes {
		if _, ok := t.routes[path]; ok {
			panic(fmt.Errorf("%w: %s already exists", ErrDuplicatePath, path))
		}
	}
	for key := range other.fallbacks {
		if _, ok := t.fallbacks[key]; ok {
			panic(fmt.Errorf("%w: both trees define a fallback for %q", ErrDuplicateFallback, key))
		}
	}

	for path, m := range other.routes {
		t.routes[path] = m
	}
	for key, h := range other.fallbacks {
		t.fallbacks[key] = h
	}
}

// Fallback installs the catch-all handler for requests no path matches.
func (t *Tree) Fallback(h http.Handler) {
	if _, ok := t.fallbacks[rootFallback]; ok {
		panic(fmt.Errorf("%w: tree already has a fallback", ErrDuplicateFallback))
	}
	t.fallbacks[rootFallback] = h
}

// Paths returns the registered paths in lexical order.
func (t *Tree) Paths() []string {
	paths := make([]string, 0, len(t.routes))
	for path := range t.routes {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Compile registers every route and fallback on a fresh ServeMux.
func (t *Tree) Compile() *http.ServeMux {
	mux := http.NewServeMux()

	for _, path := range t.Paths() {
		m := t.routes[path]
		pattern := exactPattern(path)
		for _, verb := range Verbs {
			if h := m.handlers[verb]; h != nil {
				mux.Handle(verb+" "+pattern, h)
			}
		}
		if m.fallback != nil {
			mux.Handle(pattern, m.fallback)
		}
	}

	for key, h := range t.fallbacks {
		mux.Handle(key+"/", h)
	}

	return mux
}

// JoinPath joins a nest prefix and a sub path with exactly one slash.
func JoinPath(prefix, path string) string {
	return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(path, "/")
}

func nestedFallbackKey(prefix, key string) string {
	return strings.TrimSuffix(prefix, "/") + key
}

// exactPattern anchors paths ending in a slash so ServeMux does not treat
// them as subtree patterns.
func exactPattern(path string) string {
	if strings.HasSuffix(path, "/") {
		return path + "{$}"
	}
	return path
}

func mustValidPath(path string) {
	if !strings.HasPrefix(path, "/") {
		panic(fmt.Errorf("%w: %q must begin with '/'", ErrInvalidPath, path))
	}
}
