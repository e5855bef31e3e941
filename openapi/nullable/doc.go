// Package nullable teaches the openapi generator Go's own conventions for
// optional values.
//
// Its core is the parameter requiredness rule used by Resolver: a request
// parameter is required when its documentation says so, optional when its
// binding supplies a default, and otherwise required exactly when its declared
// type cannot be nil. The Module installs the resolver together with the
// related conventions: byte slices document as base64 strings, context values
// are never parameters, "Deprecated:" doc paragraphs deprecate, and bodies follow
// the encoding/json field rules.
package nullable
