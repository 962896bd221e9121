package validate

import (
	"fmt"
	"strings"

	"cohortschema/core"
)

// expectedDomains maps each criterion kind to the clinical domain its
// referenced concepts are expected to belong to. Kinds absent from the table
// (observation periods, visits spanning several domains in practice) are not
// domain-checked.
var expectedDomains = map[core.Kind]string{
	core.KindConditionOccurrence: "Condition",
	core.KindConditionEra:        "Condition",
	core.KindDrugExposure:        "Drug",
	core.KindDrugEra:             "Drug",
	core.KindDoseEra:             "Drug",
	core.KindProcedureOccurrence: "Procedure",
	core.KindObservation:         "Observation",
	core.KindMeasurement:         "Measurement",
	core.KindVisitOccurrence:     "Visit",
	core.KindDeviceExposure:      "Device",
	core.KindSpecimen:            "Specimen",
	core.KindDeath:               "Condition",
}

// checkDomainConsistency warns when a criterion references a concept set
// whose member concepts are not uniformly of the criterion's expected
// domain. Concepts with an empty domain are skipped: the vocabulary lookup
// may simply not have been resolved yet.
func checkDomainConsistency(cohort *core.CohortExpression, index map[int]*core.ConceptSet) []core.Issue {
	var issues []core.Issue
	for _, ref := range collectCodesetRefs(cohort) {
		expected, checked := expectedDomains[ref.Kind]
		if !checked {
			continue
		}
		cs, ok := index[ref.ID]
		if !ok {
			// Dangling reference; the referential integrity rule owns that.
			continue
		}
		foreign := foreignDomains(cs, expected)
		if len(foreign) == 0 {
			continue
		}
		issues = append(issues, core.Issue{
			Severity:  core.SeverityWarning,
			FieldPath: ref.Path,
			Message: fmt.Sprintf("%s expects concepts in the %q domain but concept set %d (%q) contains: %s",
				ref.Kind, expected, cs.ID, cs.Name, strings.Join(foreign, ", ")),
			RuleID: RuleDomainConsistency,
		})
	}
	return issues
}

// foreignDomains returns the sorted-by-first-appearance list of domains in
// the set that differ from the expected one.
func foreignDomains(cs *core.ConceptSet, expected string) []string {
	var foreign []string
	seen := map[string]bool{}
	for i := range cs.Expression.Items {
		domain := cs.Expression.Items[i].Concept.DomainID
		if domain == "" || domain == expected || seen[domain] {
			continue
		}
		seen[domain] = true
		foreign = append(foreign, domain)
	}
	return foreign
}
