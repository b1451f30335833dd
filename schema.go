package docroute

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// JSONSchema represents a JSON Schema object (subset for OpenAPI 3.1).
type JSONSchema struct {
	Type        string                `json:"type,omitempty" yaml:"type,omitempty"`
	Format      string                `json:"format,omitempty" yaml:"format,omitempty"`
	Properties  map[string]JSONSchema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Items       *JSONSchema           `json:"items,omitempty" yaml:"items,omitempty"`
	Required    []string              `json:"required,omitempty" yaml:"required,omitempty"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	Enum        []string              `json:"enum,omitempty" yaml:"enum,omitempty"`
	Ref         string                `json:"$ref,omitempty" yaml:"$ref,omitempty"`

	// AdditionalProperties can be true (any) or a schema.
	AdditionalProperties *JSONSchema `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
}

// SchemaGenerator turns a Go type into a schema fragment plus the named
// definitions the fragment references. Definitions are merged into
// components.schemas by the caller.
type SchemaGenerator interface {
	Generate(t reflect.Type) (JSONSchema, map[string]JSONSchema)
}

// ReflectGenerator is the default SchemaGenerator. Named struct types are
// emitted once as definitions and referenced by name; anonymous structs are
// inlined.
type ReflectGenerator struct{}

// Generate implements SchemaGenerator.
func (ReflectGenerator) Generate(t reflect.Type) (JSONSchema, map[string]JSONSchema) {
	w := &schemaWalker{
		defs:   make(map[string]JSONSchema),
		owners: make(map[string]reflect.Type),
	}
	return w.typeToSchema(t), w.defs
}

// defaultGenerator is used when an operation does not set its own generator.
var defaultGenerator SchemaGenerator = ReflectGenerator{}

// schemaWalker carries the definitions collected during one Generate call.
type schemaWalker struct {
	defs   map[string]JSONSchema
	owners map[string]reflect.Type
}

// typeToSchema converts a reflect.Type to a JSONSchema.
func (w *schemaWalker) typeToSchema(t reflect.Type) JSONSchema {
	// Unwrap pointer.
	if t.Kind() == reflect.Pointer {
		return w.typeToSchema(t.Elem())
	}

	// Handle well-known types.
	switch t {
	case reflect.TypeFor[time.Time]():
		return JSONSchema{Type: "string", Format: "date-time"}
	case reflect.TypeFor[time.Duration]():
		return JSONSchema{Type: "string", Format: "duration"}
	case reflect.TypeFor[Void]():
		return JSONSchema{}
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.String:
		return JSONSchema{Type: "string"}
	case reflect.Bool:
		return JSONSchema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return JSONSchema{Type: "integer"}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return JSONSchema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return JSONSchema{Type: "number"}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return JSONSchema{Type: "string", Format: "byte"}
		}
		items := w.typeToSchema(t.Elem())
		return JSONSchema{Type: "array", Items: &items}
	case reflect.Array:
		items := w.typeToSchema(t.Elem())
		return JSONSchema{Type: "array", Items: &items}
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return JSONSchema{Type: "object"}
		}
		valSchema := w.typeToSchema(t.Elem())
		return JSONSchema{Type: "object", AdditionalProperties: &valSchema}
	case reflect.Struct:
		if t.Name() == "" {
			return w.structToSchema(t)
		}
		return w.namedStruct(t)
	default:
		return JSONSchema{}
	}
}

// namedStruct records t under its schema name and returns a reference to it.
// A type already claimed, including one still being walked, is referenced
// without descending again, which terminates recursive types. Two distinct
// types with the same schema name panic with ErrComponentConflict.
func (w *schemaWalker) namedStruct(t reflect.Type) JSONSchema {
	name := schemaName(t)
	ref := JSONSchema{Ref: componentRef("schemas", name)}

	if owner, ok := w.owners[name]; ok {
		if owner != t {
			panic(fmt.Errorf("%w: schemas/%s is claimed by %s and %s", ErrComponentConflict, name, owner, t))
		}
		return ref
	}

	w.owners[name] = t
	w.defs[name] = w.structToSchema(t)

	return ref
}

// structToSchema converts a struct type to a JSONSchema with properties.
func (w *schemaWalker) structToSchema(t reflect.Type) JSONSchema {
	schema := JSONSchema{
		Type:       "object",
		Properties: make(map[string]JSONSchema),
	}
	w.collectFields(t, &schema)
	return schema
}

func (w *schemaWalker) collectFields(t reflect.Type, schema *JSONSchema) {
	for i := range t.NumField() {
		f := t.Field(i)

		// Embedded structs without a json name are flattened, as encoding/json does.
		if f.Anonymous && f.Tag.Get("json") == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				w.collectFields(ft, schema)
				continue
			}
		}

		if !f.IsExported() {
			continue
		}

		// Skip param/binding fields: they are not part of the body schema.
		if isParamField(f) {
			continue
		}

		name := jsonFieldName(f)
		if name == "-" {
			continue
		}

		prop := w.typeToSchema(f.Type)

		if doc := f.Tag.Get("doc"); doc != "" {
			prop.Description = doc
		}
		if format := f.Tag.Get("format"); format != "" {
			prop.Format = format
		}
		if enum := f.Tag.Get("enum"); enum != "" {
			prop.Enum = strings.Split(enum, ",")
		}

		schema.Properties[name] = prop

		if f.Tag.Get("required") == "true" {
			schema.Required = append(schema.Required, name)
		}
	}
}

// schemaName derives a component name from a named type. Generic
// instantiations keep only the unqualified type argument names, so
// Page[example.com/x.Item] becomes Page_Item.
func schemaName(t reflect.Type) string {
	name := t.Name()
	base, args, ok := strings.Cut(name, "[")
	if !ok {
		return name
	}

	args = strings.TrimSuffix(args, "]")
	parts := []string{base}
	for _, arg := range strings.Split(args, ",") {
		arg = strings.TrimLeft(strings.TrimSpace(arg), "*[]")
		if i := strings.LastIndexAny(arg, "./"); i >= 0 {
			arg = arg[i+1:]
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, "_")
}

// jsonFieldName returns the JSON field name for a struct field.
func jsonFieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}

// isParamField reports whether a struct field has parameter binding tags.
func isParamField(f reflect.StructField) bool {
	for _, tag := range paramTags {
		if f.Tag.Get(tag) != "" {
			return true
		}
	}
	return false
}
