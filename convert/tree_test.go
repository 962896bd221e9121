package convert

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_KeyMappingExamples(t *testing.T) {
	tests := []struct {
		webapi string
		circe  string
	}{
		{"conceptSets", "ConceptSets"},
		{"primaryCriteria", "PrimaryCriteria"},
		{"conceptId", "CONCEPT_ID"},
		{"conceptName", "CONCEPT_NAME"},
		{"includeDescendants", "includeDescendants"}, // identical in both
		{"id", "id"},                                 // identical in both
		{"codesetId", "CodesetId"},
		{"drugCodesetId", "DrugCodesetId"},
	}

	for _, tt := range tests {
		t.Run(tt.webapi, func(t *testing.T) {
			mapped, ok := WebAPIToCirce[tt.webapi]
			require.True(t, ok, "missing WebAPI mapping for %s", tt.webapi)
			assert.Equal(t, tt.circe, mapped)

			reverse, ok := CirceToWebAPI[tt.circe]
			require.True(t, ok, "missing Circe mapping for %s", tt.circe)
			assert.Equal(t, tt.webapi, reverse)
		})
	}
}

func TestConvert_SimpleDocument(t *testing.T) {
	webapiDoc := map[string]interface{}{
		"conceptSets": []interface{}{
			map[string]interface{}{
				"id":   1,
				"name": "Test Concept Set",
				"expression": map[string]interface{}{
					"items": []interface{}{
						map[string]interface{}{
							"concept": map[string]interface{}{
								"conceptId":       123,
								"conceptName":     "Test Concept",
								"standardConcept": "S",
								"conceptCode":     "TEST",
								"domainId":        "Condition",
								"vocabularyId":    "SNOMED",
								"conceptClassId":  "Clinical Finding",
							},
							"includeDescendants": true,
							"isExcluded":         false,
							"includeMapped":      false,
						},
					},
				},
			},
		},
		"primaryCriteria": map[string]interface{}{
			"criteriaList": []interface{}{
				map[string]interface{}{
					"conditionOccurrence": map[string]interface{}{"codesetId": 1},
				},
			},
			"observationWindow":    map[string]interface{}{"priorDays": 0, "postDays": 0},
			"primaryCriteriaLimit": map[string]interface{}{"type": "First"},
		},
		"qualifiedLimit":    map[string]interface{}{"type": "First"},
		"expressionLimit":   map[string]interface{}{"type": "First"},
		"inclusionRules":    []interface{}{},
		"censoringCriteria": []interface{}{},
	}

	circeDoc := ToCirce(webapiDoc)

	require.Contains(t, circeDoc, "ConceptSets")
	require.Contains(t, circeDoc, "PrimaryCriteria")

	cs := circeDoc["ConceptSets"].([]interface{})[0].(map[string]interface{})
	item := cs["expression"].(map[string]interface{})["items"].([]interface{})[0].(map[string]interface{})
	concept := item["concept"].(map[string]interface{})
	assert.Equal(t, 123, concept["CONCEPT_ID"])
	assert.Equal(t, "Test Concept", concept["CONCEPT_NAME"])

	pc := circeDoc["PrimaryCriteria"].(map[string]interface{})
	crit := pc["CriteriaList"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, 1, crit["ConditionOccurrence"].(map[string]interface{})["CodesetId"])

	// Round trip restores the original exactly.
	webapiBack := ToWebAPI(circeDoc)
	assert.Equal(t, webapiDoc, webapiBack)
}

func TestConvert_UnknownFieldsPreserved(t *testing.T) {
	webapiDoc := map[string]interface{}{
		"conceptSets":  []interface{}{},
		"unknownField": "should be preserved",
		"nestedUnknown": map[string]interface{}{
			"someField": "also preserved",
			"deepNested": map[string]interface{}{
				"evenDeeper": "still here",
			},
		},
	}

	circeDoc := ToCirce(webapiDoc)
	assert.Equal(t, "should be preserved", circeDoc["unknownField"])
	nested := circeDoc["nestedUnknown"].(map[string]interface{})
	assert.Equal(t, "also preserved", nested["someField"])
	assert.Equal(t, "still here", nested["deepNested"].(map[string]interface{})["evenDeeper"])

	webapiBack := ToWebAPI(circeDoc)
	assert.Equal(t, webapiDoc, webapiBack)
}

func TestConvert_SequencesPreserveOrderAndLength(t *testing.T) {
	doc := map[string]interface{}{
		"inclusionRules": []interface{}{
			map[string]interface{}{"name": "first rule"},
			map[string]interface{}{"name": "second rule"},
			map[string]interface{}{"name": "third rule"},
		},
	}

	converted := ToCirce(doc)
	rules := converted["InclusionRules"].([]interface{})
	require.Len(t, rules, 3)
	assert.Equal(t, "first rule", rules[0].(map[string]interface{})["name"])
	assert.Equal(t, "second rule", rules[1].(map[string]interface{})["name"])
	assert.Equal(t, "third rule", rules[2].(map[string]interface{})["name"])
}

func TestConvert_ScalarsNeverInspected(t *testing.T) {
	// A string value spelling a mapping key must pass through untouched.
	doc := map[string]interface{}{
		"unknownHolder": "conceptSets",
		"values":        []interface{}{"primaryCriteria", 42, true, nil},
	}

	converted := ToCirce(doc)
	assert.Equal(t, "conceptSets", converted["unknownHolder"])
	assert.Equal(t, []interface{}{"primaryCriteria", 42, true, nil}, converted["values"])
}

func TestConvert_RoundTripThroughJSON(t *testing.T) {
	// Scenario: a WebAPI document with an unmapped field nested at depth 3
	// survives webapi -> circe -> webapi byte-for-byte.
	raw := `{
		"primaryCriteria": {
			"criteriaList": [
				{"conditionOccurrence": {"codesetId": 0, "unknownField": "should be preserved"}}
			],
			"observationWindow": {"priorDays": 30, "postDays": 0},
			"primaryCriteriaLimit": {"type": "All"}
		},
		"conceptSets": []
	}`

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	roundTripped := ToWebAPI(ToCirce(doc))
	assert.Equal(t, doc, roundTripped)

	// Stability: converting an already-converted tree again is a no-op.
	circe := ToCirce(doc)
	assert.Equal(t, circe, ToCirce(ToWebAPI(circe)))
}
