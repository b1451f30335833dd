package docroute

import (
	"fmt"
	"reflect"
	"sort"
)

// Components is the shared table of named, reusable document fragments.
// Fragments are values: two entries are the same component only if they
// share a name and have equal content.
type Components struct {
	Schemas         map[string]JSONSchema     `json:"schemas,omitempty" yaml:"schemas,omitempty"`
	Responses       map[string]Response       `json:"responses,omitempty" yaml:"responses,omitempty"`
	Parameters      map[string]Parameter      `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Examples        map[string]Example        `json:"examples,omitempty" yaml:"examples,omitempty"`
	RequestBodies   map[string]RequestBody    `json:"requestBodies,omitempty" yaml:"requestBodies,omitempty"`
	Headers         map[string]Header         `json:"headers,omitempty" yaml:"headers,omitempty"`
	SecuritySchemes map[string]SecurityScheme `json:"securitySchemes,omitempty" yaml:"securitySchemes,omitempty"`
	Links           map[string]Link           `json:"links,omitempty" yaml:"links,omitempty"`
	Callbacks       map[string]Callback       `json:"callbacks,omitempty" yaml:"callbacks,omitempty"`
	Extensions      map[string]any            `json:"-" yaml:"-"`
}

// MergeComponents returns the union of a and b. Neither argument should be
// used afterwards. It panics with ErrComponentConflict if a name is bound to
// different content on the two sides.
func MergeComponents(a, b Components) Components {
	a.Merge(b)
	return a
}

// Merge adds every entry of other to c. It panics with ErrComponentConflict
// if a name is bound to different content on the two sides.
func (c *Components) Merge(other Components) {
	if err := c.Append(other); err != nil {
		panic(err)
	}
}

// Append adds every entry of other to c. A name already present with equal
// content is left as is; a name present with different content is an error
// wrapping ErrComponentConflict, and c is left unchanged.
func (c *Components) Append(other Components) error {
	checks := []error{
		checkCategory("schemas", c.Schemas, other.Schemas),
		checkCategory("responses", c.Responses, other.Responses),
		checkCategory("parameters", c.Parameters, other.Parameters),
		checkCategory("examples", c.Examples, other.Examples),
		checkCategory("requestBodies", c.RequestBodies, other.RequestBodies),
		checkCategory("headers", c.Headers, other.Headers),
		checkCategory("securitySchemes", c.SecuritySchemes, other.SecuritySchemes),
		checkCategory("links", c.Links, other.Links),
		checkCategory("callbacks", c.Callbacks, other.Callbacks),
		checkCategory("extensions", c.Extensions, other.Extensions),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}

	appendCategory(&c.Schemas, other.Schemas)
	appendCategory(&c.Responses, other.Responses)
	appendCategory(&c.Parameters, other.Parameters)
	appendCategory(&c.Examples, other.Examples)
	appendCategory(&c.RequestBodies, other.RequestBodies)
	appendCategory(&c.Headers, other.Headers)
	appendCategory(&c.SecuritySchemes, other.SecuritySchemes)
	appendCategory(&c.Links, other.Links)
	appendCategory(&c.Callbacks, other.Callbacks)
	appendCategory(&c.Extensions, other.Extensions)
	return nil
}

// Len reports the total number of entries across all categories.
func (c Components) Len() int {
	return len(c.Schemas) + len(c.Responses) + len(c.Parameters) +
		len(c.Examples) + len(c.RequestBodies) + len(c.Headers) +
		len(c.SecuritySchemes) + len(c.Links) + len(c.Callbacks) +
		len(c.Extensions)
}

// IsEmpty reports whether the table has no entries.
func (c Components) IsEmpty() bool {
	return c.Len() == 0
}

// SchemaNames returns the schema component names in lexical order.
func (c Components) SchemaNames() []string {
	names := make([]string, 0, len(c.Schemas))
	for name := range c.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON inlines the vendor extensions next to the categories.
func (c Components) MarshalJSON() ([]byte, error) {
	type plain Components
	return marshalJSONWithExtensions(plain(c), c.Extensions)
}

// MarshalYAML inlines the vendor extensions next to the categories.
func (c Components) MarshalYAML() (any, error) {
	type plain Components
	return marshalYAMLWithExtensions(plain(c), c.Extensions)
}

func checkCategory[V any](category string, dst, src map[string]V) error {
	for name, v := range src {
		existing, ok := dst[name]
		if !ok {
			continue
		}
		if !reflect.DeepEqual(existing, v) {
			return fmt.Errorf("%w: %s/%s has two different definitions", ErrComponentConflict, category, name)
		}
	}
	return nil
}

func appendCategory[V any](dst *map[string]V, src map[string]V) {
	if len(src) == 0 {
		return
	}
	if *dst == nil {
		*dst = make(map[string]V, len(src))
	}
	for name, v := range src {
		(*dst)[name] = v
	}
}
