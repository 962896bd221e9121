package loader

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// cohortExpressionSchema is a coarse JSON Schema for the canonical (Circe)
// document shape. It is a cheap pre-flight check, not the authoritative
// validation: alias spellings and enum literals are the validate package's
// concern, so the document must be converted to the canonical convention
// before this check applies.
//
//go:embed cohort_expression.schema.json
var cohortExpressionSchema []byte

// Precheck validates a canonical-convention document against the embedded
// coarse schema and reports every violation in one error.
func Precheck(doc map[string]interface{}) error {
	schemaLoader := gojsonschema.NewBytesLoader(cohortExpressionSchema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema precheck failed to run: %w", err)
	}
	if result.Valid() {
		return nil
	}

	parts := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		parts = append(parts, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return fmt.Errorf("document failed schema precheck: %s", strings.Join(parts, "; "))
}
