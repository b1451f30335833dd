package docroute

import (
	"net/http"
	"reflect"
)

// ResponseSource is implemented by response types that describe their own
// responses. The returned components hold every schema the responses
// reference.
type ResponseSource interface {
	OpenAPIResponses(g SchemaGenerator) (Responses, Components)
}

var responseSourceType = reflect.TypeFor[ResponseSource]()

// JSONResponse describes a single JSON response of type t under status.
func JSONResponse(g SchemaGenerator, status int, description string, t reflect.Type) (Responses, Components) {
	schema, defs := g.Generate(t)
	var comps Components
	comps.Merge(Components{Schemas: defs})

	return Responses{
		statusToString(status): {
			Description: description,
			Content: map[string]MediaType{
				"application/json": {Schema: &schema},
			},
		},
	}, comps
}

// extractResponses builds the responses of an operation from its response
// type. Types implementing ResponseSource describe themselves; Void is an
// empty response; anything else is a JSON body.
func extractResponses(t reflect.Type, status int, g SchemaGenerator) (Responses, Components) {
	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if reflect.PointerTo(base).Implements(responseSourceType) {
		rs, _ := reflect.New(base).Interface().(ResponseSource)
		return rs.OpenAPIResponses(g)
	}

	if base == reflect.TypeFor[Void]() {
		if status == 0 {
			status = http.StatusNoContent
		}
		return Responses{
			statusToString(status): {Description: "No content"},
		}, Components{}
	}

	if status == 0 {
		status = http.StatusOK
	}
	return JSONResponse(g, status, "Successful response", t)
}

// errorResponses describes the problem-detail responses declared with
// WithErrors, sharing one ProblemDetail schema component.
func errorResponses(codes []int, g SchemaGenerator) (Responses, Components) {
	if len(codes) == 0 {
		return nil, Components{}
	}

	schema, defs := g.Generate(reflect.TypeFor[ProblemDetail]())
	var comps Components
	comps.Merge(Components{Schemas: defs})

	resps := make(Responses, len(codes))
	for _, code := range codes {
		resps[statusToString(code)] = Response{
			Description: http.StatusText(code),
			Content: map[string]MediaType{
				"application/problem+json": {Schema: &schema},
			},
		}
	}
	return resps, comps
}
