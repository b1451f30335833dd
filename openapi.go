package docroute

import (
	"encoding/json"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// openAPIVersion is the version of the OpenAPI object model emitted.
const openAPIVersion = "3.1.0"

// Document is a finalized OpenAPI 3.1 document. It is plain data and must be
// treated as read-only once returned from Finalize.
type Document struct {
	OpenAPI    string                `json:"openapi" yaml:"openapi"`
	Info       Info                  `json:"info" yaml:"info"`
	Servers    []Server              `json:"servers,omitempty" yaml:"servers,omitempty"`
	Paths      map[string]PathItem   `json:"paths" yaml:"paths"`
	Components *Components           `json:"components,omitempty" yaml:"components,omitempty"`
	Security   []SecurityRequirement `json:"security,omitempty" yaml:"security,omitempty"`
	Tags       []Tag                 `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Info holds API metadata. It is passed through to the document untouched.
type Info struct {
	Title       string `json:"title" yaml:"title"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Server describes a server the API is reachable at.
type Server struct {
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Tag adds a description to a tag used by operations.
type Tag struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// SecurityRequirement maps a security scheme name to required scopes.
type SecurityRequirement map[string][]string

// PathItem holds the operations registered under one path.
type PathItem struct {
	Get     *Operation `json:"get,omitempty" yaml:"get,omitempty"`
	Put     *Operation `json:"put,omitempty" yaml:"put,omitempty"`
	Post    *Operation `json:"post,omitempty" yaml:"post,omitempty"`
	Delete  *Operation `json:"delete,omitempty" yaml:"delete,omitempty"`
	Options *Operation `json:"options,omitempty" yaml:"options,omitempty"`
	Head    *Operation `json:"head,omitempty" yaml:"head,omitempty"`
	Patch   *Operation `json:"patch,omitempty" yaml:"patch,omitempty"`
	Trace   *Operation `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// Operation describes a single verb on a path.
type Operation struct {
	Summary     string                `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string              `json:"tags,omitempty" yaml:"tags,omitempty"`
	OperationID string                `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Parameters  []Parameter           `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestBody *RequestBody          `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   Responses             `json:"responses" yaml:"responses"`
	Deprecated  bool                  `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Security    []SecurityRequirement `json:"security,omitempty" yaml:"security,omitempty"`
	Extensions  map[string]any        `json:"-" yaml:"-"`
}

// Parameter describes a single operation parameter. When Ref is set the
// parameter is a reference into components.parameters and the other fields
// are empty.
type Parameter struct {
	Ref         string      `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Name        string      `json:"name,omitempty" yaml:"name,omitempty"`
	In          string      `json:"in,omitempty" yaml:"in,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool        `json:"required,omitempty" yaml:"required,omitempty"`
	Deprecated  bool        `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Schema      *JSONSchema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// RequestBody describes the request body.
type RequestBody struct {
	Ref         string               `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool                 `json:"required,omitempty" yaml:"required,omitempty"`
	Content     map[string]MediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

// MediaType is a media type object with an optional schema.
type MediaType struct {
	Schema  *JSONSchema `json:"schema,omitempty" yaml:"schema,omitempty"`
	Example any         `json:"example,omitempty" yaml:"example,omitempty"`
}

// Responses maps HTTP status codes (or "default") to responses.
type Responses map[string]Response

// Response describes a single response.
type Response struct {
	Ref         string               `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Headers     map[string]Header    `json:"headers,omitempty" yaml:"headers,omitempty"`
	Content     map[string]MediaType `json:"content,omitempty" yaml:"content,omitempty"`
	Links       map[string]Link      `json:"links,omitempty" yaml:"links,omitempty"`
}

// Header describes a response header.
type Header struct {
	Ref         string      `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool        `json:"required,omitempty" yaml:"required,omitempty"`
	Schema      *JSONSchema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// Example is a named example value.
type Example struct {
	Ref         string `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Summary     string `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Value       any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// Link describes a design-time link from a response to an operation.
type Link struct {
	Ref         string            `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	OperationID string            `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Parameters  map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
}

// Callback maps runtime expressions to path items.
type Callback map[string]PathItem

// SecurityScheme defines a security scheme usable by operations.
type SecurityScheme struct {
	Type         string `json:"type" yaml:"type"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	In           string `json:"in,omitempty" yaml:"in,omitempty"`
	Scheme       string `json:"scheme,omitempty" yaml:"scheme,omitempty"`
	BearerFormat string `json:"bearerFormat,omitempty" yaml:"bearerFormat,omitempty"`
}

// Operation returns the operation for method, or nil.
func (p PathItem) Operation(method string) *Operation {
	switch strings.ToUpper(method) {
	case "GET":
		return p.Get
	case "PUT":
		return p.Put
	case "POST":
		return p.Post
	case "DELETE":
		return p.Delete
	case "OPTIONS":
		return p.Options
	case "HEAD":
		return p.Head
	case "PATCH":
		return p.Patch
	case "TRACE":
		return p.Trace
	default:
		return nil
	}
}

// Methods returns the methods that carry an operation, in document order.
func (p PathItem) Methods() []string {
	var methods []string
	for _, m := range allMethods {
		if p.Operation(m.String()) != nil {
			methods = append(methods, m.String())
		}
	}
	return methods
}

// MarshalJSON inlines the vendor extensions next to the regular fields.
func (o Operation) MarshalJSON() ([]byte, error) {
	type plain Operation
	return marshalJSONWithExtensions(plain(o), o.Extensions)
}

// MarshalYAML inlines the vendor extensions next to the regular fields.
func (o Operation) MarshalYAML() (any, error) {
	type plain Operation
	return marshalYAMLWithExtensions(plain(o), o.Extensions)
}

func marshalJSONWithExtensions(v any, ext map[string]any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || len(ext) == 0 {
		return b, err
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	for k, val := range ext {
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		fields[k] = raw
	}
	return json.Marshal(fields)
}

func marshalYAMLWithExtensions(v any, ext map[string]any) (any, error) {
	if len(ext) == 0 {
		return v, nil
	}
	b, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]any)
	if err := yaml.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	for k, val := range ext {
		fields[k] = val
	}
	return fields, nil
}

// toOpenAPIPath converts a ServeMux pattern like "/files/{path...}" to an
// OpenAPI path by dropping wildcard suffixes and the {$} anchor.
func toOpenAPIPath(pattern string) string {
	result := strings.ReplaceAll(pattern, "...", "")
	return strings.ReplaceAll(result, "{$}", "")
}

// statusToString converts an HTTP status code to its string representation.
func statusToString(code int) string {
	return strconv.Itoa(code)
}

// componentRef builds a reference pointer into a components category.
func componentRef(category, name string) string {
	return "#/components/" + category + "/" + name
}
