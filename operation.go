package docroute

import (
	"maps"
	"net/http"
	"reflect"
	"slices"
)

// Descriptor is the document side of one handler registration: the
// operation record plus the components its parameter and response types
// contributed. It is built once and not modified afterwards.
type Descriptor struct {
	Operation  Operation
	Components Components
}

// Endpoint pairs a handler with its Descriptor. Endpoints are what
// MethodRouter installs into verb slots.
type Endpoint struct {
	handler    http.Handler
	descriptor Descriptor
}

// Handler returns the request-serving half of the endpoint.
func (e Endpoint) Handler() http.Handler { return e.handler }

// Descriptor returns the document half of the endpoint.
func (e Endpoint) Descriptor() Descriptor { return e.descriptor }

// operationConfig collects OperationOptions before the descriptor is built.
type operationConfig struct {
	summary     string
	desc        string
	tags        []string
	operationID string
	deprecated  bool
	status      int
	errors      []int
	security    []string
	extensions  map[string]any
	responses   Responses

	generator    SchemaGenerator
	errorHandler ErrorHandler
}

// OperationOption configures an endpoint at registration time.
type OperationOption func(*operationConfig)

// WithStatus sets the default HTTP status code for the response.
func WithStatus(code int) OperationOption {
	return func(c *operationConfig) {
		c.status = code
	}
}

// WithSummary sets the OpenAPI summary for the operation.
func WithSummary(s string) OperationOption {
	return func(c *operationConfig) {
		c.summary = s
	}
}

// WithDescription sets the OpenAPI description for the operation.
func WithDescription(d string) OperationOption {
	return func(c *operationConfig) {
		c.desc = d
	}
}

// WithTags adds OpenAPI tags to the operation.
func WithTags(tags ...string) OperationOption {
	return func(c *operationConfig) {
		c.tags = append(c.tags, tags...)
	}
}

// WithDeprecated marks the operation as deprecated.
func WithDeprecated() OperationOption {
	return func(c *operationConfig) {
		c.deprecated = true
	}
}

// WithErrors declares problem-detail error responses for the given status
// codes. The ProblemDetail schema is contributed as a shared component.
func WithErrors(codes ...int) OperationOption {
	return func(c *operationConfig) {
		c.errors = append(c.errors, codes...)
	}
}

// WithOperationID sets a custom OpenAPI operationId.
func WithOperationID(id string) OperationOption {
	return func(c *operationConfig) {
		c.operationID = id
	}
}

// WithSecurity sets security scheme requirements for this operation.
func WithSecurity(schemes ...string) OperationOption {
	return func(c *operationConfig) {
		c.security = append(c.security, schemes...)
	}
}

// WithExtension adds an OpenAPI extension to the operation.
// The key must start with "x-".
func WithExtension(key string, value any) OperationOption {
	return func(c *operationConfig) {
		if c.extensions == nil {
			c.extensions = make(map[string]any)
		}
		c.extensions[key] = value
	}
}

// WithResponse documents an additional response without a body.
func WithResponse(code int, description string) OperationOption {
	return func(c *operationConfig) {
		if c.responses == nil {
			c.responses = make(Responses)
		}
		c.responses[statusToString(code)] = Response{Description: description}
	}
}

// WithSchemaGenerator replaces the reflection-based schema generator for
// this operation.
func WithSchemaGenerator(g SchemaGenerator) OperationOption {
	return func(c *operationConfig) {
		c.generator = g
	}
}

// WithErrorHandler sets a custom error writer for this handler.
func WithErrorHandler(h ErrorHandler) OperationOption {
	return func(c *operationConfig) {
		c.errorHandler = h
	}
}

func newOperationConfig(opts []OperationOption) *operationConfig {
	cfg := &operationConfig{generator: defaultGenerator}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.generator == nil {
		cfg.generator = defaultGenerator
	}
	return cfg
}

// Handle builds an Endpoint from a typed handler. The request type's
// parameters and body and the response type's schema are extracted here,
// once; nothing is re-derived when the endpoint is later combined into
// routers.
func Handle[Req, Resp any](h Handler[Req, Resp], opts ...OperationOption) Endpoint {
	cfg := newOperationConfig(opts)
	respType := reflect.TypeFor[Resp]()

	// Determine default status: Void response → 204, otherwise 200.
	if cfg.status == 0 {
		if respType == reflect.TypeFor[Void]() {
			cfg.status = http.StatusNoContent
		} else {
			cfg.status = http.StatusOK
		}
	}

	return Endpoint{
		handler:    buildHandler(h, cfg.status, cfg.errorHandler),
		descriptor: describe(reflect.TypeFor[Req](), respType, cfg),
	}
}

// Raw builds an Endpoint from a plain http.Handler. The operation is
// described only by the options; without WithResponse or WithErrors it
// documents a single default response.
func Raw(h http.Handler, opts ...OperationOption) Endpoint {
	cfg := newOperationConfig(opts)

	op := cfg.operation()
	op.Responses = make(Responses)
	maps.Copy(op.Responses, cfg.responses)

	errResps, comps := errorResponses(cfg.errors, cfg.generator)
	maps.Copy(op.Responses, errResps)

	if len(op.Responses) == 0 {
		op.Responses["default"] = Response{Description: "Response"}
	}

	return Endpoint{
		handler:    h,
		descriptor: Descriptor{Operation: op, Components: comps},
	}
}

// describe extracts the operation for a request/response type pair.
func describe(reqType, respType reflect.Type, cfg *operationConfig) Descriptor {
	g := cfg.generator

	responses, comps := extractResponses(respType, cfg.status, g)
	params, paramComps := extractParameters(reqType, g)
	body, bodyComps := extractRequestBody(reqType, g)
	errResps, errComps := errorResponses(cfg.errors, g)

	comps.Merge(paramComps)
	comps.Merge(bodyComps)
	comps.Merge(errComps)

	op := cfg.operation()
	op.Parameters = params
	op.RequestBody = body
	op.Responses = make(Responses, len(responses)+len(errResps)+len(cfg.responses))
	maps.Copy(op.Responses, cfg.responses)
	maps.Copy(op.Responses, errResps)
	maps.Copy(op.Responses, responses)

	return Descriptor{Operation: op, Components: comps}
}

// operation returns the pass-through metadata as an Operation.
func (c *operationConfig) operation() Operation {
	op := Operation{
		Summary:     c.summary,
		Description: c.desc,
		Tags:        c.tags,
		OperationID: c.operationID,
		Deprecated:  c.deprecated,
		Extensions:  c.extensions,
	}
	if len(c.security) > 0 {
		req := make(SecurityRequirement, len(c.security))
		for _, name := range c.security {
			req[name] = []string{}
		}
		op.Security = []SecurityRequirement{req}
	}
	return op
}

// clone returns a copy of op that shares no slices or maps with it.
func (op Operation) clone() *Operation {
	op.Tags = slices.Clone(op.Tags)
	op.Parameters = slices.Clone(op.Parameters)
	op.Security = slices.Clone(op.Security)
	op.Responses = maps.Clone(op.Responses)
	op.Extensions = maps.Clone(op.Extensions)
	return &op
}
