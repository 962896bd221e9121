package validate

import (
	"fmt"

	"cohortschema/core"
)

// Rule is one independent business check. Rules are pure functions of the
// cohort and the prebuilt concept set index; they run in a fixed order and
// emit their issues in document-traversal order.
type Rule struct {
	ID    string
	Check func(cohort *core.CohortExpression, index map[int]*core.ConceptSet) []core.Issue
}

// Catalog returns the rule catalog in execution order. The order is part of
// the contract: issues from one rule always precede issues from the next.
func Catalog() []Rule {
	return []Rule{
		{ID: RuleDuplicateConceptSetID, Check: checkDuplicateConceptSetIDs},
		{ID: RuleReferentialIntegrity, Check: checkReferentialIntegrity},
		{ID: RuleDomainConsistency, Check: checkDomainConsistency},
		{ID: RuleContradictoryCriteria, Check: checkContradictoryCriteria},
	}
}

// Rule identifiers, stable across releases so callers can filter on them.
const (
	RuleDuplicateConceptSetID = "duplicate-concept-set-id"
	RuleReferentialIntegrity  = "referential-integrity"
	RuleDomainConsistency     = "domain-consistency"
	RuleContradictoryCriteria = "contradictory-criteria"
)

// BusinessValidator indexes a validated entity graph and runs the rule
// catalog over it. Stateless across calls; safe for concurrent use.
type BusinessValidator struct {
	rules []Rule
}

// NewBusinessValidator returns a validator running the standard catalog.
func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{rules: Catalog()}
}

// Validate runs every rule against the cohort and returns the combined,
// ordered issue list. An empty result means no findings of any severity.
func (v *BusinessValidator) Validate(cohort *core.CohortExpression) []core.Issue {
	index := cohort.ConceptSetIndex()
	var issues []core.Issue
	for _, rule := range v.rules {
		issues = append(issues, rule.Check(cohort, index)...)
	}
	return issues
}

// codesetRef is one weak reference from a criterion to a concept set,
// pinned to the referencing field's path.
type codesetRef struct {
	Path string
	Kind core.Kind
	ID   int
}

// collectCodesetRefs walks the whole criteria tree in document order and
// gathers every codeset reference: primary criteria first, then inclusion
// rules, then censoring criteria.
func collectCodesetRefs(cohort *core.CohortExpression) []codesetRef {
	var refs []codesetRef

	for i := range cohort.PrimaryCriteria.CriteriaList {
		crit := &cohort.PrimaryCriteria.CriteriaList[i]
		refs = appendCriterionRef(refs, crit, fmt.Sprintf("PrimaryCriteria.CriteriaList[%d]", i))
	}

	for i := range cohort.InclusionRules {
		rule := &cohort.InclusionRules[i]
		refs = appendGroupRefs(refs, &rule.Expression, fmt.Sprintf("InclusionRules[%d].expression", i))
	}

	for i := range cohort.CensoringCriteria {
		refs = appendGroupRefs(refs, &cohort.CensoringCriteria[i], fmt.Sprintf("CensoringCriteria[%d]", i))
	}

	return refs
}

func appendCriterionRef(refs []codesetRef, crit *core.Criterion, path string) []codesetRef {
	kind := crit.Kind()
	if kind == "" {
		return refs
	}
	event := crit.Event()
	if event == nil || event.CodesetID == nil {
		return refs
	}
	return append(refs, codesetRef{
		Path: fmt.Sprintf("%s.%s.CodesetId", path, kind),
		Kind: kind,
		ID:   *event.CodesetID,
	})
}

func appendGroupRefs(refs []codesetRef, group *core.CriteriaGroup, path string) []codesetRef {
	for i := range group.CriteriaList {
		cc := &group.CriteriaList[i]
		refs = appendCriterionRef(refs, &cc.Criteria, fmt.Sprintf("%s.CriteriaList[%d].Criteria", path, i))
	}
	for i := range group.Groups {
		refs = appendGroupRefs(refs, &group.Groups[i], fmt.Sprintf("%s.Groups[%d]", path, i))
	}
	return refs
}
