package validate

import (
	"fmt"

	"cohortschema/core"
)

// checkReferentialIntegrity verifies that every codeset reference in the
// criteria tree resolves against the cohort's concept sets. A codeset id is
// a weak reference, so a dangling one is structurally legal but always a
// defect: the criterion can never match anything.
func checkReferentialIntegrity(cohort *core.CohortExpression, index map[int]*core.ConceptSet) []core.Issue {
	var issues []core.Issue
	for _, ref := range collectCodesetRefs(cohort) {
		if _, ok := index[ref.ID]; ok {
			continue
		}
		issues = append(issues, core.Issue{
			Severity:  core.SeverityError,
			FieldPath: ref.Path,
			Message:   fmt.Sprintf("%s references concept set %d which does not exist", ref.Kind, ref.ID),
			RuleID:    RuleReferentialIntegrity,
		})
	}
	return issues
}
