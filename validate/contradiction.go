package validate

import (
	"fmt"

	"cohortschema/core"
)

// checkContradictoryCriteria flags sibling criteria inside one inclusion
// rule group that assert mutually exclusive facts: one requires the presence
// and the other the absence of an event against the same concept set over
// the same temporal window. Both the start and end windows must match;
// differing end constraints can make both criteria satisfiable. When the
// group combines with ALL semantics the pair can never be satisfied
// together, which escalates the finding to an error; under ANY / AT_LEAST /
// AT_MOST semantics it is reported as a warning because only some branches
// need to hold.
func checkContradictoryCriteria(cohort *core.CohortExpression, index map[int]*core.ConceptSet) []core.Issue {
	var issues []core.Issue
	for i := range cohort.InclusionRules {
		rule := &cohort.InclusionRules[i]
		issues = checkGroupContradictions(issues, &rule.Expression,
			fmt.Sprintf("InclusionRules[%d].expression", i))
	}
	return issues
}

func checkGroupContradictions(issues []core.Issue, group *core.CriteriaGroup, path string) []core.Issue {
	// Compare each sibling pair once, in document order. Cost is quadratic
	// in the group's criteria count, which is small in practice.
	for i := range group.CriteriaList {
		for j := i + 1; j < len(group.CriteriaList); j++ {
			a, b := &group.CriteriaList[i], &group.CriteriaList[j]
			if issue, found := contradicts(a, b, group, path, i, j); found {
				issues = append(issues, issue)
			}
		}
	}
	for i := range group.Groups {
		issues = checkGroupContradictions(issues, &group.Groups[i],
			fmt.Sprintf("%s.Groups[%d]", path, i))
	}
	return issues
}

func contradicts(a, b *core.CorrelatedCriteria, group *core.CriteriaGroup, path string, i, j int) (core.Issue, bool) {
	aEvent, aKind := a.Criteria.Event(), a.Criteria.Kind()
	bEvent, bKind := b.Criteria.Event(), b.Criteria.Kind()
	if aEvent == nil || bEvent == nil || aEvent.CodesetID == nil || bEvent.CodesetID == nil {
		return core.Issue{}, false
	}
	if *aEvent.CodesetID != *bEvent.CodesetID {
		return core.Issue{}, false
	}
	if !a.StartWindow.Equal(b.StartWindow) || !a.EndWindow.Equal(b.EndWindow) {
		return core.Issue{}, false
	}

	// Opposite inclusion polarity in either direction.
	opposite := (a.Occurrence.RequiresPresence() && b.Occurrence.RequiresAbsence()) ||
		(a.Occurrence.RequiresAbsence() && b.Occurrence.RequiresPresence())
	if !opposite {
		return core.Issue{}, false
	}

	severity := core.SeverityWarning
	if group.Type == core.GroupAll {
		severity = core.SeverityError
	}
	aPath := fmt.Sprintf("%s.CriteriaList[%d]", path, i)
	bPath := fmt.Sprintf("%s.CriteriaList[%d]", path, j)
	return core.Issue{
		Severity:  severity,
		FieldPath: aPath,
		Message: fmt.Sprintf("%s and %s (%s, %s) both reference concept set %d over the same window with opposite inclusion polarity",
			aPath, bPath, aKind, bKind, *aEvent.CodesetID),
		RuleID: RuleContradictoryCriteria,
	}, true
}
