package core

// Result limit types restrict how many qualifying events enter the cohort.
const (
	LimitFirst = "First"
	LimitAll   = "All"
	LimitLast  = "Last"
)

// ValidLimitTypes defines the closed set of allowed result limit types.
var ValidLimitTypes = map[string]bool{
	LimitFirst: true,
	LimitAll:   true,
	LimitLast:  true,
}

// ResultLimit selects which of several qualifying events are kept.
type ResultLimit struct {
	Type string `json:"Type"`
}

// ObservationWindow is the required continuous-observation period around an
// index event, in days. Both sides are non-negative.
type ObservationWindow struct {
	PriorDays int `json:"PriorDays"`
	PostDays  int `json:"PostDays"`
}

// WindowEndpoint is one boundary of a temporal window. A nil Days means the
// boundary is unbounded; Coeff is -1 for "before" and 1 for "after".
type WindowEndpoint struct {
	Days  *int `json:"Days,omitempty"`
	Coeff int  `json:"Coeff"`
}

// Window is a temporal window relative to the index event.
type Window struct {
	Start       *WindowEndpoint `json:"Start,omitempty"`
	End         *WindowEndpoint `json:"End,omitempty"`
	UseEventEnd *bool           `json:"UseEventEnd,omitempty"`
}

// Equal reports whether two windows describe the same temporal span.
func (w *Window) Equal(o *Window) bool {
	if w == nil || o == nil {
		return w == o
	}
	return endpointEqual(w.Start, o.Start) &&
		endpointEqual(w.End, o.End) &&
		boolPtrEqual(w.UseEventEnd, o.UseEventEnd)
}

func endpointEqual(a, b *WindowEndpoint) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Coeff != b.Coeff {
		return false
	}
	if a.Days == nil || b.Days == nil {
		return a.Days == b.Days
	}
	return *a.Days == *b.Days
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Occurrence count semantics for a correlated criterion.
const (
	OccurrenceExactly = 0
	OccurrenceAtMost  = 1
	OccurrenceAtLeast = 2
)

// Occurrence states how many matching events a correlated criterion
// requires inside its window.
type Occurrence struct {
	Type  int `json:"Type"`
	Count int `json:"Count"`
}

// RequiresAbsence reports whether the occurrence demands that no matching
// event exists (exactly zero, or at most zero).
func (o *Occurrence) RequiresAbsence() bool {
	if o == nil {
		return false
	}
	return (o.Type == OccurrenceExactly || o.Type == OccurrenceAtMost) && o.Count == 0
}

// RequiresPresence reports whether the occurrence demands at least one
// matching event.
func (o *Occurrence) RequiresPresence() bool {
	// A criterion without an explicit occurrence requires the event to exist.
	if o == nil {
		return true
	}
	if o.Type == OccurrenceAtLeast && o.Count >= 1 {
		return true
	}
	return o.Type == OccurrenceExactly && o.Count >= 1
}

// Kind names one clinical-event criterion variant. The set is closed; the
// decoder and the rule catalog both iterate CriterionKinds so a new variant
// only needs to be registered there.
type Kind string

const (
	KindConditionOccurrence Kind = "ConditionOccurrence"
	KindConditionEra        Kind = "ConditionEra"
	KindDrugExposure        Kind = "DrugExposure"
	KindDrugEra             Kind = "DrugEra"
	KindDoseEra             Kind = "DoseEra"
	KindProcedureOccurrence Kind = "ProcedureOccurrence"
	KindObservation         Kind = "Observation"
	KindObservationPeriod   Kind = "ObservationPeriod"
	KindMeasurement         Kind = "Measurement"
	KindVisitOccurrence     Kind = "VisitOccurrence"
	KindDeviceExposure      Kind = "DeviceExposure"
	KindSpecimen            Kind = "Specimen"
	KindDeath               Kind = "Death"
)

// CriterionKinds is the closed variant set in canonical traversal order.
var CriterionKinds = []Kind{
	KindConditionOccurrence,
	KindConditionEra,
	KindDrugExposure,
	KindDrugEra,
	KindDoseEra,
	KindProcedureOccurrence,
	KindObservation,
	KindObservationPeriod,
	KindMeasurement,
	KindVisitOccurrence,
	KindDeviceExposure,
	KindSpecimen,
	KindDeath,
}

// EventCriterion carries the attributes shared by every clinical-event kind.
// CodesetID is a weak reference into the cohort's concept sets: a lookup
// key, never an embedded object, and it may dangle.
type EventCriterion struct {
	CodesetID *int  `json:"CodesetId,omitempty"`
	First     *bool `json:"First,omitempty"`
}

// Criterion is a closed tagged variant over clinical-event kinds. Exactly
// one kind field is non-nil on a well-formed criterion.
type Criterion struct {
	ConditionOccurrence *EventCriterion `json:"ConditionOccurrence,omitempty"`
	ConditionEra        *EventCriterion `json:"ConditionEra,omitempty"`
	DrugExposure        *EventCriterion `json:"DrugExposure,omitempty"`
	DrugEra             *EventCriterion `json:"DrugEra,omitempty"`
	DoseEra             *EventCriterion `json:"DoseEra,omitempty"`
	ProcedureOccurrence *EventCriterion `json:"ProcedureOccurrence,omitempty"`
	Observation         *EventCriterion `json:"Observation,omitempty"`
	ObservationPeriod   *EventCriterion `json:"ObservationPeriod,omitempty"`
	Measurement         *EventCriterion `json:"Measurement,omitempty"`
	VisitOccurrence     *EventCriterion `json:"VisitOccurrence,omitempty"`
	DeviceExposure      *EventCriterion `json:"DeviceExposure,omitempty"`
	Specimen            *EventCriterion `json:"Specimen,omitempty"`
	Death               *EventCriterion `json:"Death,omitempty"`
}

// variant returns the pointer slot for a kind. Keeping the switch in one
// place keeps Kind/Event exhaustive over the closed set.
func (c *Criterion) variant(k Kind) **EventCriterion {
	switch k {
	case KindConditionOccurrence:
		return &c.ConditionOccurrence
	case KindConditionEra:
		return &c.ConditionEra
	case KindDrugExposure:
		return &c.DrugExposure
	case KindDrugEra:
		return &c.DrugEra
	case KindDoseEra:
		return &c.DoseEra
	case KindProcedureOccurrence:
		return &c.ProcedureOccurrence
	case KindObservation:
		return &c.Observation
	case KindObservationPeriod:
		return &c.ObservationPeriod
	case KindMeasurement:
		return &c.Measurement
	case KindVisitOccurrence:
		return &c.VisitOccurrence
	case KindDeviceExposure:
		return &c.DeviceExposure
	case KindSpecimen:
		return &c.Specimen
	case KindDeath:
		return &c.Death
	}
	return nil
}

// Kind returns the variant set on this criterion, or "" when none is set.
func (c *Criterion) Kind() Kind {
	for _, k := range CriterionKinds {
		if *c.variant(k) != nil {
			return k
		}
	}
	return ""
}

// Event returns the attributes of the set variant, or nil when none is set.
func (c *Criterion) Event() *EventCriterion {
	k := c.Kind()
	if k == "" {
		return nil
	}
	return *c.variant(k)
}

// SetVariant assigns the attributes for a kind. Used by the decoder.
func (c *Criterion) SetVariant(k Kind, e *EventCriterion) {
	if slot := c.variant(k); slot != nil {
		*slot = e
	}
}

// CorrelatedCriteria qualifies a criterion with the temporal window and
// occurrence count it must satisfy relative to the index event.
type CorrelatedCriteria struct {
	Criteria    Criterion   `json:"Criteria"`
	StartWindow *Window     `json:"StartWindow,omitempty"`
	EndWindow   *Window     `json:"EndWindow,omitempty"`
	Occurrence  *Occurrence `json:"Occurrence,omitempty"`
}

// Criteria group combination semantics.
const (
	GroupAll     = "ALL"
	GroupAny     = "ANY"
	GroupAtLeast = "AT_LEAST"
	GroupAtMost  = "AT_MOST"
)

// ValidGroupTypes defines the closed set of allowed group types.
var ValidGroupTypes = map[string]bool{
	GroupAll:     true,
	GroupAny:     true,
	GroupAtLeast: true,
	GroupAtMost:  true,
}

// CriteriaGroup combines correlated criteria and sub-groups under
// ALL / ANY / AT_LEAST n / AT_MOST n semantics.
type CriteriaGroup struct {
	Type         string               `json:"Type"`
	Count        *int                 `json:"Count,omitempty"`
	CriteriaList []CorrelatedCriteria `json:"CriteriaList"`
	Groups       []CriteriaGroup      `json:"Groups,omitempty"`
}

// PrimaryCriteria selects the index events a cohort entry starts from.
type PrimaryCriteria struct {
	CriteriaList         []Criterion       `json:"CriteriaList"`
	ObservationWindow    ObservationWindow `json:"ObservationWindow"`
	PrimaryCriteriaLimit ResultLimit       `json:"PrimaryCriteriaLimit"`
}

// InclusionRule is one named inclusion/exclusion rule. Rules are numbered
// by their position in the owning list, so order is significant.
type InclusionRule struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Expression  CriteriaGroup `json:"expression"`
}
