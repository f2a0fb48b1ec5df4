// Package contracts embeds the server's OpenAPI documents and parses them for
// request validation and docs serving.
package contracts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed onboarding.yaml
var onboardingYAML []byte

// Onboarding parses and validates the embedded wizard contract.
func Onboarding() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(onboardingYAML)
	if err != nil {
		return nil, fmt.Errorf("parse onboarding contract: %w", err)
	}
	if err := spec.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate onboarding contract: %w", err)
	}
	return spec, nil
}
