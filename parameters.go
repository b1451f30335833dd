package docroute

import "reflect"

// ParameterSource is implemented by request types (or request fields) that
// describe their own parameters instead of relying on struct tags.
type ParameterSource interface {
	OpenAPIParameters() []ParamSpec
}

// ParamSpec is one parameter produced by a ParameterSource. When Component
// is set the parameter is stored in components.parameters under that name
// and the operation refers to it by reference.
type ParamSpec struct {
	Component string
	Parameter Parameter
}

// Inline returns a ParamSpec that is written directly into the operation.
func Inline(p Parameter) ParamSpec {
	return ParamSpec{Parameter: p}
}

// Shared returns a ParamSpec promoted into components.parameters as name.
func Shared(name string, p Parameter) ParamSpec {
	return ParamSpec{Component: name, Parameter: p}
}

var parameterSourceType = reflect.TypeFor[ParameterSource]()

func implementsParameterSource(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return reflect.PointerTo(t).Implements(parameterSourceType)
}

// parameterSourceOf returns the ParameterSource of a zero value of t.
func parameterSourceOf(t reflect.Type) (ParameterSource, bool) {
	if !implementsParameterSource(t) {
		return nil, false
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	ps, ok := reflect.New(t).Interface().(ParameterSource)
	return ps, ok
}

// extractParameters folds the parameters of a request type into an
// operation parameter list, in field declaration order. Shared parameters
// are moved into the returned components table.
func extractParameters(t reflect.Type, g SchemaGenerator) ([]Parameter, Components) {
	var comps Components
	if t == reflect.TypeFor[Void]() {
		return nil, comps
	}

	var specs []ParamSpec
	if ps, ok := parameterSourceOf(t); ok {
		specs = ps.OpenAPIParameters()
	} else {
		specs = reflectParameters(t, g, &comps)
	}

	params := make([]Parameter, 0, len(specs))
	for _, spec := range specs {
		params = append(params, convertParameter(spec, &comps))
	}
	if len(params) == 0 {
		return nil, comps
	}
	return params, comps
}

// reflectParameters builds ParamSpecs from param-tagged fields and nested
// parameter groups.
func reflectParameters(t reflect.Type, g SchemaGenerator, comps *Components) []ParamSpec {
	t, ok := structType(t)
	if !ok {
		return nil
	}

	var specs []ParamSpec
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || f.Name == "Body" {
			continue
		}

		if ps, ok := parameterSourceOf(f.Type); ok {
			specs = append(specs, ps.OpenAPIParameters()...)
			continue
		}

		if isParamGroup(f) {
			specs = append(specs, reflectParameters(f.Type, g, comps)...)
			continue
		}

		for _, tagName := range paramTags {
			val := f.Tag.Get(tagName)
			if val == "" {
				continue
			}

			schema, defs := g.Generate(f.Type)
			comps.Merge(Components{Schemas: defs})

			p := Parameter{
				Name:   val,
				In:     tagName,
				Schema: &schema,
			}

			if doc := f.Tag.Get("doc"); doc != "" {
				p.Description = doc
			}

			if f.Tag.Get("required") == "true" || tagName == "path" {
				p.Required = true
			}

			specs = append(specs, Inline(p))
		}
	}

	return specs
}

// convertParameter places a ParamSpec either inline or into the components
// table, returning what the operation should carry.
func convertParameter(spec ParamSpec, comps *Components) Parameter {
	if spec.Component == "" {
		return spec.Parameter
	}
	comps.Merge(Components{
		Parameters: map[string]Parameter{spec.Component: spec.Parameter},
	})
	return Parameter{Ref: componentRef("parameters", spec.Component)}
}

// extractRequestBody builds an OpenAPI RequestBody if the request type has a body.
func extractRequestBody(t reflect.Type, g SchemaGenerator) (*RequestBody, Components) {
	var comps Components
	if t == reflect.TypeFor[Void]() {
		return nil, comps
	}
	st, ok := structType(t)
	if !ok {
		return nil, comps
	}

	var bodyType reflect.Type
	switch {
	case hasBodyField(st):
		f, _ := st.FieldByName("Body")
		bodyType = f.Type
	case !hasParamTags(st) && !implementsParameterSource(st) && st.NumField() > 0:
		// No param tags: the entire struct is the body.
		bodyType = t
	default:
		return nil, comps
	}

	schema, defs := g.Generate(bodyType)
	comps.Schemas = defs
	if len(comps.Schemas) == 0 {
		comps.Schemas = nil
	}
	return &RequestBody{
		Required: true,
		Content: map[string]MediaType{
			"application/json": {Schema: &schema},
		},
	}, comps
}
