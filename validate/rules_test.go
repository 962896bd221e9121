package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cohortschema/core"
)

func TestReferentialIntegrity_DanglingPrimaryCriterion(t *testing.T) {
	// An empty concept set list with a criterion referencing codeset 0.
	doc := minimalCirceDoc()
	pc := doc["PrimaryCriteria"].(map[string]interface{})
	pc["CriteriaList"] = []interface{}{
		map[string]interface{}{
			"ConditionOccurrence": map[string]interface{}{"CodesetId": 0},
		},
	}

	cohort, issues, err := WithWarnings(doc)
	require.NoError(t, err, "schema-only validation succeeds; the dangling reference is a business issue")
	require.NotNil(t, cohort)

	require.Len(t, issues, 1)
	issue := issues[0]
	assert.Equal(t, core.SeverityError, issue.Severity)
	assert.Equal(t, "PrimaryCriteria.CriteriaList[0].ConditionOccurrence.CodesetId", issue.FieldPath)
	assert.Contains(t, issue.Message, "concept set 0")
	assert.Equal(t, RuleReferentialIntegrity, issue.RuleID)
}

func TestReferentialIntegrity_CoversInclusionAndCensoring(t *testing.T) {
	doc := minimalCirceDoc()
	doc["InclusionRules"] = []interface{}{
		map[string]interface{}{
			"name": "dangling in rule",
			"expression": map[string]interface{}{
				"Type": "ALL",
				"CriteriaList": []interface{}{
					map[string]interface{}{
						"Criteria": map[string]interface{}{
							"DrugExposure": map[string]interface{}{"CodesetId": 5},
						},
					},
				},
			},
		},
	}
	doc["CensoringCriteria"] = []interface{}{
		map[string]interface{}{
			"Type": "ANY",
			"CriteriaList": []interface{}{
				map[string]interface{}{
					"Criteria": map[string]interface{}{
						"Measurement": map[string]interface{}{"CodesetId": 9},
					},
				},
			},
		},
	}

	_, issues, err := WithWarnings(doc)
	require.NoError(t, err)

	var paths []string
	for _, issue := range issues {
		require.Equal(t, RuleReferentialIntegrity, issue.RuleID)
		require.Equal(t, core.SeverityError, issue.Severity)
		paths = append(paths, issue.FieldPath)
	}
	assert.Equal(t, []string{
		"InclusionRules[0].expression.CriteriaList[0].Criteria.DrugExposure.CodesetId",
		"CensoringCriteria[0].CriteriaList[0].Criteria.Measurement.CodesetId",
	}, paths)
}

func TestDomainConsistency_MismatchedDomainWarns(t *testing.T) {
	// A condition criterion referencing a concept set of Drug concepts.
	doc := minimalCirceDoc()
	doc["ConceptSets"] = []interface{}{conceptSetDoc(0, "Metformin", "Drug")}
	pc := doc["PrimaryCriteria"].(map[string]interface{})
	pc["CriteriaList"] = []interface{}{
		map[string]interface{}{
			"ConditionOccurrence": map[string]interface{}{"CodesetId": 0},
		},
	}

	_, issues, err := WithWarnings(doc)
	require.NoError(t, err)

	require.Len(t, issues, 1)
	issue := issues[0]
	assert.Equal(t, core.SeverityWarning, issue.Severity)
	assert.Equal(t, RuleDomainConsistency, issue.RuleID)
	assert.Equal(t, "PrimaryCriteria.CriteriaList[0].ConditionOccurrence.CodesetId", issue.FieldPath)
	assert.Contains(t, issue.Message, `"Condition"`)
	assert.Contains(t, issue.Message, "Drug")
}

func TestDomainConsistency_MatchingDomainIsClean(t *testing.T) {
	doc := minimalCirceDoc()
	doc["ConceptSets"] = []interface{}{conceptSetDoc(0, "Diabetes", "Condition")}
	pc := doc["PrimaryCriteria"].(map[string]interface{})
	pc["CriteriaList"] = []interface{}{
		map[string]interface{}{
			"ConditionOccurrence": map[string]interface{}{"CodesetId": 0},
		},
	}

	_, issues, err := WithWarnings(doc)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

// contradictionDoc builds a cohort whose only inclusion rule holds two
// sibling criteria on the same codeset and window with opposite polarity.
func contradictionDoc(groupType string) map[string]interface{} {
	window := map[string]interface{}{
		"Start": map[string]interface{}{"Days": 365, "Coeff": -1},
		"End":   map[string]interface{}{"Days": 0, "Coeff": 1},
	}
	doc := minimalCirceDoc()
	doc["ConceptSets"] = []interface{}{conceptSetDoc(0, "Diabetes", "Condition")}
	pc := doc["PrimaryCriteria"].(map[string]interface{})
	pc["CriteriaList"] = []interface{}{
		map[string]interface{}{
			"ConditionOccurrence": map[string]interface{}{"CodesetId": 0},
		},
	}
	doc["InclusionRules"] = []interface{}{
		map[string]interface{}{
			"name": "has diabetes but never had diabetes",
			"expression": map[string]interface{}{
				"Type": groupType,
				"CriteriaList": []interface{}{
					map[string]interface{}{
						"Criteria": map[string]interface{}{
							"ConditionOccurrence": map[string]interface{}{"CodesetId": 0},
						},
						"StartWindow": window,
						"Occurrence":  map[string]interface{}{"Type": 2, "Count": 1},
					},
					map[string]interface{}{
						"Criteria": map[string]interface{}{
							"ConditionOccurrence": map[string]interface{}{"CodesetId": 0},
						},
						"StartWindow": window,
						"Occurrence":  map[string]interface{}{"Type": 0, "Count": 0},
					},
				},
			},
		},
	}
	return doc
}

func TestContradiction_AllGroupEscalatesToError(t *testing.T) {
	_, issues, err := WithWarnings(contradictionDoc("ALL"))
	require.NoError(t, err)

	require.Len(t, issues, 1)
	issue := issues[0]
	assert.Equal(t, core.SeverityError, issue.Severity)
	assert.Equal(t, RuleContradictoryCriteria, issue.RuleID)
	assert.Equal(t, "InclusionRules[0].expression.CriteriaList[0]", issue.FieldPath)
	// The message cites both sibling paths.
	assert.Contains(t, issue.Message, "InclusionRules[0].expression.CriteriaList[0]")
	assert.Contains(t, issue.Message, "InclusionRules[0].expression.CriteriaList[1]")
}

func TestContradiction_AnyGroupStaysWarning(t *testing.T) {
	_, issues, err := WithWarnings(contradictionDoc("ANY"))
	require.NoError(t, err)

	require.Len(t, issues, 1)
	assert.Equal(t, core.SeverityWarning, issues[0].Severity)
	assert.Equal(t, RuleContradictoryCriteria, issues[0].RuleID)
}

func TestContradiction_DifferentWindowsDoNotConflict(t *testing.T) {
	doc := contradictionDoc("ALL")
	rule := doc["InclusionRules"].([]interface{})[0].(map[string]interface{})
	second := rule["expression"].(map[string]interface{})["CriteriaList"].([]interface{})[1].(map[string]interface{})
	second["StartWindow"] = map[string]interface{}{
		"Start": map[string]interface{}{"Days": 30, "Coeff": -1},
		"End":   map[string]interface{}{"Days": 0, "Coeff": 1},
	}

	_, issues, err := WithWarnings(doc)
	require.NoError(t, err)
	assert.Empty(t, issues, "absence in one window and presence in another can both hold")
}

func TestContradiction_DifferentEndWindowsDoNotConflict(t *testing.T) {
	// Same codeset and start window, but one sibling constrains the event's
	// end as well. Both criteria can hold at once, so no conflict.
	doc := contradictionDoc("ALL")
	rule := doc["InclusionRules"].([]interface{})[0].(map[string]interface{})
	second := rule["expression"].(map[string]interface{})["CriteriaList"].([]interface{})[1].(map[string]interface{})
	second["EndWindow"] = map[string]interface{}{
		"Start": map[string]interface{}{"Days": 0, "Coeff": -1},
		"End":   map[string]interface{}{"Days": 90, "Coeff": 1},
	}

	_, issues, err := WithWarnings(doc)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestDuplicateConceptSetIDs_FirstWins(t *testing.T) {
	doc := minimalCirceDoc()
	doc["ConceptSets"] = []interface{}{
		conceptSetDoc(0, "original", "Condition"),
		conceptSetDoc(0, "shadowed", "Condition"),
	}

	cohort, issues, err := WithWarnings(doc)
	require.NoError(t, err)

	require.Len(t, issues, 1)
	issue := issues[0]
	assert.Equal(t, core.SeverityWarning, issue.Severity)
	assert.Equal(t, RuleDuplicateConceptSetID, issue.RuleID)
	assert.Equal(t, "ConceptSets[1].id", issue.FieldPath)

	index := cohort.ConceptSetIndex()
	require.Contains(t, index, 0)
	assert.Equal(t, "original", index[0].Name, "the first occurrence wins for index purposes")
}

func TestRuleCatalog_FixedOrder(t *testing.T) {
	ids := make([]string, 0)
	for _, rule := range Catalog() {
		ids = append(ids, rule.ID)
	}
	assert.Equal(t, []string{
		RuleDuplicateConceptSetID,
		RuleReferentialIntegrity,
		RuleDomainConsistency,
		RuleContradictoryCriteria,
	}, ids)
}
