// Package convert moves cohort definition documents between the two wire
// conventions: the Circe convention (PascalCase structure keys,
// SCREAMING_SNAKE concept attribute keys) and the WebAPI convention
// (camelCase throughout). Conversion is purely key renaming; values are
// never inspected or altered, and unmapped keys pass through verbatim so
// forward-compatible extension fields survive a round trip exactly.
package convert

// WebAPIToCirce maps every known WebAPI (camelCase) key to its Circe
// spelling. Keys spelled identically in both conventions map to themselves;
// anything absent from the table is an extension field and passes through
// unchanged.
var WebAPIToCirce = map[string]string{
	// CohortExpression structure
	"conceptSets":          "ConceptSets",
	"primaryCriteria":      "PrimaryCriteria",
	"criteriaList":         "CriteriaList",
	"observationWindow":    "ObservationWindow",
	"priorDays":            "PriorDays",
	"postDays":             "PostDays",
	"primaryCriteriaLimit": "PrimaryCriteriaLimit",
	"qualifiedLimit":       "QualifiedLimit",
	"expressionLimit":      "ExpressionLimit",
	"inclusionRules":       "InclusionRules",
	"censoringCriteria":    "CensoringCriteria",

	// Criteria groups and correlated criteria
	"type":                    "Type",
	"count":                   "Count",
	"criteria":                "Criteria",
	"groups":                  "Groups",
	"demographicCriteriaList": "DemographicCriteriaList",
	"correlatedCriteria":      "CorrelatedCriteria",
	"startWindow":             "StartWindow",
	"endWindow":               "EndWindow",
	"start":                   "Start",
	"end":                     "End",
	"days":                    "Days",
	"coeff":                   "Coeff",
	"useEventEnd":             "UseEventEnd",
	"occurrence":              "Occurrence",
	"first":                   "First",
	"codesetId":               "CodesetId",
	"drugCodesetId":           "DrugCodesetId",

	// Criterion variants
	"conditionOccurrence": "ConditionOccurrence",
	"conditionEra":        "ConditionEra",
	"drugExposure":        "DrugExposure",
	"drugEra":             "DrugEra",
	"doseEra":             "DoseEra",
	"procedureOccurrence": "ProcedureOccurrence",
	"observation":         "Observation",
	"observationPeriod":   "ObservationPeriod",
	"measurement":         "Measurement",
	"visitOccurrence":     "VisitOccurrence",
	"deviceExposure":      "DeviceExposure",
	"specimen":            "Specimen",
	"death":               "Death",

	// Concept attributes (camelCase -> SCREAMING_SNAKE)
	"conceptId":       "CONCEPT_ID",
	"conceptName":     "CONCEPT_NAME",
	"conceptCode":     "CONCEPT_CODE",
	"conceptClassId":  "CONCEPT_CLASS_ID",
	"vocabularyId":    "VOCABULARY_ID",
	"domainId":        "DOMAIN_ID",
	"standardConcept": "STANDARD_CONCEPT",
	"invalidReason":   "INVALID_REASON",

	// Identical in both conventions
	"id":                 "id",
	"name":               "name",
	"description":        "description",
	"expression":         "expression",
	"items":              "items",
	"concept":            "concept",
	"includeDescendants": "includeDescendants",
	"includeMapped":      "includeMapped",
	"isExcluded":         "isExcluded",
}

// CirceToWebAPI is the exact inverse of WebAPIToCirce, derived once at
// package init. The two tables being exact inverses is what makes the
// round-trip guarantee hold.
var CirceToWebAPI = invert(WebAPIToCirce)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
