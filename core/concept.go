package core

// Concept identifies one coded clinical concept from a standard vocabulary
// (SNOMED, RxNorm, LOINC, ...). Concepts are immutable values; equality is
// by concept id within a vocabulary.
type Concept struct {
	ConceptID       int     `json:"CONCEPT_ID"`
	ConceptName     string  `json:"CONCEPT_NAME"`
	DomainID        string  `json:"DOMAIN_ID,omitempty"`
	VocabularyID    string  `json:"VOCABULARY_ID,omitempty"`
	ConceptClassID  string  `json:"CONCEPT_CLASS_ID,omitempty"`
	ConceptCode     string  `json:"CONCEPT_CODE,omitempty"`
	StandardConcept *string `json:"STANDARD_CONCEPT,omitempty"`
	InvalidReason   *string `json:"INVALID_REASON,omitempty"`
}

// ConceptSetItem wraps a Concept with its set-membership modifiers. The item
// has no identity of its own beyond the concept it carries.
type ConceptSetItem struct {
	Concept            Concept `json:"concept"`
	IncludeDescendants bool    `json:"includeDescendants"`
	IncludeMapped      bool    `json:"includeMapped"`
	IsExcluded         bool    `json:"isExcluded"`
}

// ConceptSetExpression is the ordered list of items making up a concept set.
// Order carries no semantics but is preserved for round-trip fidelity.
type ConceptSetExpression struct {
	Items []ConceptSetItem `json:"items"`
}

// ConceptSet is a named, identified collection of concepts. The ID is the
// join key criteria refer to as CodesetId; within one CohortExpression the
// IDs are expected to be unique (duplicates surface as a business-rule
// warning, not a structural error).
type ConceptSet struct {
	ID         int                  `json:"id"`
	Name       string               `json:"name"`
	Expression ConceptSetExpression `json:"expression"`
}
