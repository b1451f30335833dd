package docroute

// Test-only exports for internal functions.
var (
	SchemaName    = schemaName
	JSONPointer   = jsonPointer
	ToOpenAPIPath = toOpenAPIPath
	HasParamTags  = hasParamTags
	HasBodyField  = hasBodyField
)
