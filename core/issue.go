package core

// Severity grades a business-logic finding. Only error-severity issues can
// escalate a strict validation into a failure.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is one graded finding from business-logic validation. It is data,
// not an error: callers decide what to do with it.
type Issue struct {
	Severity  Severity `json:"severity"`
	FieldPath string   `json:"field_path"`
	Message   string   `json:"message"`
	RuleID    string   `json:"rule_id"`
}

// HasErrors reports whether any issue in the list carries error severity.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}
