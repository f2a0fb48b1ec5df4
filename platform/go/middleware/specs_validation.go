package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	oapimiddleware "github.com/oapi-codegen/nethttp-middleware"
)

// SpecValidation builds request-validation middleware from a loaded OpenAPI
// document. Requests that miss the contract are answered with the same JSON
// error envelope the handlers use, instead of the library's plain-text
// default.
func SpecValidation(spec *openapi3.T) func(http.Handler) http.Handler {
	return oapimiddleware.OapiRequestValidatorWithOptions(spec, &oapimiddleware.Options{
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(statusCode)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
		},
	})
}
