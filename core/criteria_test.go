package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriterion_KindAndEvent(t *testing.T) {
	codeset := 3
	crit := Criterion{}
	assert.Equal(t, Kind(""), crit.Kind())
	assert.Nil(t, crit.Event())

	crit.SetVariant(KindDrugExposure, &EventCriterion{CodesetID: &codeset})
	assert.Equal(t, KindDrugExposure, crit.Kind())
	require.NotNil(t, crit.Event())
	assert.Equal(t, 3, *crit.Event().CodesetID)
}

func TestCriterion_KindOrderIsDeterministic(t *testing.T) {
	// With two variants set, the first in canonical order wins.
	crit := Criterion{
		Observation:         &EventCriterion{},
		ConditionOccurrence: &EventCriterion{},
	}
	assert.Equal(t, KindConditionOccurrence, crit.Kind())
}

func TestOccurrence_Polarity(t *testing.T) {
	tests := []struct {
		name     string
		occ      *Occurrence
		presence bool
		absence  bool
	}{
		{"nil means the event must exist", nil, true, false},
		{"at least one", &Occurrence{Type: OccurrenceAtLeast, Count: 1}, true, false},
		{"exactly zero", &Occurrence{Type: OccurrenceExactly, Count: 0}, false, true},
		{"at most zero", &Occurrence{Type: OccurrenceAtMost, Count: 0}, false, true},
		{"exactly two", &Occurrence{Type: OccurrenceExactly, Count: 2}, true, false},
		{"at most three", &Occurrence{Type: OccurrenceAtMost, Count: 3}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.presence, tt.occ.RequiresPresence())
			assert.Equal(t, tt.absence, tt.occ.RequiresAbsence())
		})
	}
}

func TestWindow_Equal(t *testing.T) {
	days := func(n int) *int { return &n }

	a := &Window{Start: &WindowEndpoint{Days: days(365), Coeff: -1}, End: &WindowEndpoint{Days: days(0), Coeff: 1}}
	b := &Window{Start: &WindowEndpoint{Days: days(365), Coeff: -1}, End: &WindowEndpoint{Days: days(0), Coeff: 1}}
	c := &Window{Start: &WindowEndpoint{Days: days(30), Coeff: -1}, End: &WindowEndpoint{Days: days(0), Coeff: 1}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))

	var nilWindow *Window
	assert.True(t, nilWindow.Equal(nil))

	unbounded := &Window{Start: &WindowEndpoint{Coeff: -1}}
	bounded := &Window{Start: &WindowEndpoint{Days: days(0), Coeff: -1}}
	assert.False(t, unbounded.Equal(bounded))
}

func TestConceptSetIndex_FirstOccurrenceWins(t *testing.T) {
	cohort := CohortExpression{
		ConceptSets: []ConceptSet{
			{ID: 1, Name: "first"},
			{ID: 1, Name: "shadowed"},
			{ID: 2, Name: "other"},
		},
	}

	index := cohort.ConceptSetIndex()
	require.Len(t, index, 2)
	assert.Equal(t, "first", index[1].Name)
	assert.Equal(t, "other", index[2].Name)
}

func TestHasErrors(t *testing.T) {
	assert.False(t, HasErrors(nil))
	assert.False(t, HasErrors([]Issue{{Severity: SeverityWarning}, {Severity: SeverityInfo}}))
	assert.True(t, HasErrors([]Issue{{Severity: SeverityWarning}, {Severity: SeverityError}}))
}

func TestStructuralValidationError_Message(t *testing.T) {
	single := &StructuralValidationError{Errors: []FieldError{
		{Path: "PrimaryCriteria", Message: "required field is missing"},
	}}
	assert.Equal(t, "structural validation failed: PrimaryCriteria: required field is missing", single.Error())

	multi := &StructuralValidationError{Errors: []FieldError{
		{Path: "a", Message: "x"},
		{Path: "b", Message: "y"},
	}}
	assert.Contains(t, multi.Error(), "2 violations")
	assert.Contains(t, multi.Error(), "a: x")
	assert.Contains(t, multi.Error(), "b: y")
}
