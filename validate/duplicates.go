package validate

import (
	"fmt"

	"cohortschema/core"
)

// checkDuplicateConceptSetIDs warns when two concept sets share an id. The
// index keeps the first occurrence, so later duplicates are unreachable
// through codeset references and almost certainly an authoring mistake.
func checkDuplicateConceptSetIDs(cohort *core.CohortExpression, index map[int]*core.ConceptSet) []core.Issue {
	var issues []core.Issue
	seen := make(map[int]int, len(cohort.ConceptSets))
	for i := range cohort.ConceptSets {
		cs := &cohort.ConceptSets[i]
		if first, dup := seen[cs.ID]; dup {
			issues = append(issues, core.Issue{
				Severity:  core.SeverityWarning,
				FieldPath: fmt.Sprintf("ConceptSets[%d].id", i),
				Message: fmt.Sprintf("concept set id %d is already used by ConceptSets[%d] (%q); references resolve to the first occurrence",
					cs.ID, first, cohort.ConceptSets[first].Name),
				RuleID: RuleDuplicateConceptSetID,
			})
			continue
		}
		seen[cs.ID] = i
	}
	return issues
}
