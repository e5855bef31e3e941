// Package openapi generates an OpenAPI v3 document from typed amarodoc handlers.
//
// Request types are plain structs. Fields tagged with a parameter source become
// operation parameters, the remaining JSON fields become the request body:
//
//	type ListPetsRequest struct {
//		Limit int     `query:"limit" default:"20" doc:"Page size"`
//		Tag   *string `query:"tag"`
//	}
//
// Every documented parameter passes through the registered ParameterCustomizers,
// which is how modules such as openapi/nullable adjust the generated parameters.
// The document itself is served with Handler and checked with Generator.Validate.
package openapi
