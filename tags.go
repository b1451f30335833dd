package docroute

import "reflect"

// paramTags are the struct tags used for binding request parameters. The
// tag name doubles as the OpenAPI "in" value.
var paramTags = []string{"path", "query", "header", "cookie"}

// structType unwraps pointers and reports whether the result is a struct.
func structType(t reflect.Type) (reflect.Type, bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t, t.Kind() == reflect.Struct
}

// hasParamTags reports whether the given type has any fields with
// parameter binding tags (path, query, header, cookie), including fields
// of nested parameter groups.
func hasParamTags(t reflect.Type) bool {
	t, ok := structType(t)
	if !ok {
		return false
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if isParamField(f) || isParamGroup(f) {
			return true
		}
	}
	return false
}

// hasBodyField reports whether the given type has an exported "Body" field.
func hasBodyField(t reflect.Type) bool {
	t, ok := structType(t)
	if !ok {
		return false
	}
	f, ok := t.FieldByName("Body")
	return ok && f.IsExported()
}

// isParamGroup reports whether a field's type contributes parameters on its
// own, either by implementing ParameterSource or by carrying tagged fields.
func isParamGroup(f reflect.StructField) bool {
	if implementsParameterSource(f.Type) {
		return true
	}
	ft, ok := structType(f.Type)
	if !ok || f.Name == "Body" {
		return false
	}
	for i := range ft.NumField() {
		if ft.Field(i).IsExported() && isParamField(ft.Field(i)) {
			return true
		}
	}
	return false
}
