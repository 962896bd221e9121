package validate

import (
	"cohortschema/convert"
	"cohortschema/core"
)

// SchemaOnly runs structural validation alone and returns the entity graph.
// This is the fastest entry point, intended for production hot paths where
// business findings are not needed.
func SchemaOnly(doc map[string]interface{}) (*core.CohortExpression, error) {
	return Decode(doc)
}

// WithWarnings runs structural validation followed by the business-rule
// catalog. Issues of every severity come back as data; only a structural
// failure produces an error.
func WithWarnings(doc map[string]interface{}) (*core.CohortExpression, []core.Issue, error) {
	cohort, err := Decode(doc)
	if err != nil {
		return nil, nil, err
	}
	issues := NewBusinessValidator().Validate(cohort)
	return cohort, issues, nil
}

// Strict runs both validators and fails when any error-severity issue is
// present. Warning and info issues never escalate.
func Strict(doc map[string]interface{}) (*core.CohortExpression, error) {
	cohort, issues, err := WithWarnings(doc)
	if err != nil {
		return nil, err
	}
	var errs []core.Issue
	for _, issue := range issues {
		if issue.Severity == core.SeverityError {
			errs = append(errs, issue)
		}
	}
	if len(errs) > 0 {
		return nil, &core.RuleViolationError{Issues: errs}
	}
	return cohort, nil
}

// WebAPISchemaOnly is SchemaOnly for documents in the WebAPI (camelCase)
// convention: the document is converted to the canonical convention first.
func WebAPISchemaOnly(doc map[string]interface{}) (*core.CohortExpression, error) {
	return SchemaOnly(convert.ToCirce(doc))
}

// WebAPIWithWarnings is WithWarnings for WebAPI-convention documents.
func WebAPIWithWarnings(doc map[string]interface{}) (*core.CohortExpression, []core.Issue, error) {
	return WithWarnings(convert.ToCirce(doc))
}

// WebAPIStrict is Strict for WebAPI-convention documents.
func WebAPIStrict(doc map[string]interface{}) (*core.CohortExpression, error) {
	return Strict(convert.ToCirce(doc))
}
