package core

// CohortExpression is the root aggregate of a cohort definition: the concept
// sets it owns plus the criteria tree selecting and filtering clinical
// events. Instances are built once per validation call and never mutated.
type CohortExpression struct {
	ConceptSets       []ConceptSet    `json:"ConceptSets"`
	PrimaryCriteria   PrimaryCriteria `json:"PrimaryCriteria"`
	QualifiedLimit    *ResultLimit    `json:"QualifiedLimit,omitempty"`
	ExpressionLimit   *ResultLimit    `json:"ExpressionLimit,omitempty"`
	InclusionRules    []InclusionRule `json:"InclusionRules"`
	CensoringCriteria []CriteriaGroup `json:"CensoringCriteria,omitempty"`
}

// ConceptSetIndex maps concept set id to its definition. On duplicate ids the
// first occurrence wins; later duplicates are reported by the business
// validator, not silently shadowed.
func (c *CohortExpression) ConceptSetIndex() map[int]*ConceptSet {
	index := make(map[int]*ConceptSet, len(c.ConceptSets))
	for i := range c.ConceptSets {
		cs := &c.ConceptSets[i]
		if _, exists := index[cs.ID]; !exists {
			index[cs.ID] = cs
		}
	}
	return index
}
