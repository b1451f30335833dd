package docroute

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// documentURL is the resource name the document is registered under while
// its schemas are compiled.
const documentURL = "https://docroute.invalid/openapi.json"

// Validate checks that every reference in the document resolves inside the
// document. Each component schema and each inline operation schema is
// compiled as JSON Schema 2020-12 against the document itself; parameter,
// request body and response references are looked up in components. All
// failures are reported together, wrapped in ErrUnresolvedRef.
func (d Document) Validate() error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft2020)
	if err := c.AddResource(documentURL, inst); err != nil {
		return fmt.Errorf("add document resource: %w", err)
	}

	var errs []error
	compile := func(ptr ...string) {
		loc := documentURL + "#" + jsonPointer(ptr...)
		if _, err := c.Compile(loc); err != nil {
			errs = append(errs, err)
		}
	}

	var comps Components
	if d.Components != nil {
		comps = *d.Components
	}
	for _, name := range comps.SchemaNames() {
		compile("components", "schemas", name)
	}

	paths := make([]string, 0, len(d.Paths))
	for path := range d.Paths {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		item := d.Paths[path]
		for _, method := range item.Methods() {
			op := item.Operation(method)
			base := []string{"paths", path, strings.ToLower(method)}
			errs = append(errs, operationRefs(op, comps, base, compile)...)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrUnresolvedRef, errors.Join(errs...))
	}
	return nil
}

// operationRefs checks the references of one operation and compiles its
// inline schemas.
func operationRefs(op *Operation, comps Components, base []string, compile func(...string)) []error {
	var errs []error
	at := func(parts ...string) []string {
		return append(append([]string{}, base...), parts...)
	}

	for i, p := range op.Parameters {
		if p.Ref != "" {
			if err := lookupRef(p.Ref, "parameters", comps.Parameters); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if p.Schema != nil {
			compile(at("parameters", fmt.Sprint(i), "schema")...)
		}
	}

	if rb := op.RequestBody; rb != nil {
		if rb.Ref != "" {
			if err := lookupRef(rb.Ref, "requestBodies", comps.RequestBodies); err != nil {
				errs = append(errs, err)
			}
		}
		for _, mt := range sortedKeys(rb.Content) {
			if rb.Content[mt].Schema != nil {
				compile(at("requestBody", "content", mt, "schema")...)
			}
		}
	}

	for _, code := range sortedKeys(op.Responses) {
		resp := op.Responses[code]
		if resp.Ref != "" {
			if err := lookupRef(resp.Ref, "responses", comps.Responses); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		for _, mt := range sortedKeys(resp.Content) {
			if resp.Content[mt].Schema != nil {
				compile(at("responses", code, "content", mt, "schema")...)
			}
		}
	}
	return errs
}

func lookupRef[V any](ref, category string, table map[string]V) error {
	prefix := componentRef(category, "")
	name, ok := strings.CutPrefix(ref, prefix)
	if !ok {
		return fmt.Errorf("%s: not a %s reference", ref, category)
	}
	if _, ok := table[name]; !ok {
		return fmt.Errorf("%s: no such component", ref)
	}
	return nil
}

// jsonPointer builds an RFC 6901 pointer from unescaped tokens.
func jsonPointer(tokens ...string) string {
	var b strings.Builder
	r := strings.NewReplacer("~", "~0", "/", "~1")
	for _, tok := range tokens {
		b.WriteByte('/')
		b.WriteString(r.Replace(tok))
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
