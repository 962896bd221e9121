// Package validate turns raw cohort definition documents into validated
// entity graphs and runs the business-rule catalog over them. Structural
// validation collects every violation in one pass; business validation
// returns graded issues as data and only escalates in strict mode.
package validate

import (
	"fmt"
	"math"
	"strings"

	"cohortschema/core"
)

// collector accumulates structural violations so one call reports the whole
// document, never just the first offending field.
type collector struct {
	errs []core.FieldError
}

func (c *collector) add(path, format string, args ...interface{}) {
	c.errs = append(c.errs, core.FieldError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (c *collector) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &core.StructuralValidationError{Errors: c.errs}
}

// lookup resolves a field against its ordered accepted spellings. The first
// name in the list that is present wins; this is the deterministic policy
// for documents carrying more than one spelling of the same field.
func lookup(obj map[string]interface{}, names ...string) (interface{}, bool) {
	for _, name := range names {
		if v, ok := obj[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func asObject(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

func asArray(v interface{}) ([]interface{}, bool) {
	a, ok := v.([]interface{})
	return a, ok
}

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v interface{}) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// asInt accepts the numeric shapes a JSON decoder can produce. Fractional
// values are rejected rather than truncated.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

// Decode builds a CohortExpression entity graph from a raw JSON-compatible
// document in canonical (Circe) or any accepted alias spelling. It is a pure
// function of its input: on any structural violation it returns a
// StructuralValidationError carrying every offending field path, and no
// partially constructed graph.
func Decode(raw map[string]interface{}) (*core.CohortExpression, error) {
	c := &collector{}
	cohort := &core.CohortExpression{}

	if v, ok := lookup(raw, "ConceptSets", "conceptSets", "concept_sets"); ok {
		if arr, ok := asArray(v); ok {
			cohort.ConceptSets = make([]core.ConceptSet, 0, len(arr))
			for i, item := range arr {
				path := fmt.Sprintf("ConceptSets[%d]", i)
				obj, ok := asObject(item)
				if !ok {
					c.add(path, "expected an object, got %T", item)
					continue
				}
				cohort.ConceptSets = append(cohort.ConceptSets, decodeConceptSet(obj, path, c))
			}
		} else {
			c.add("ConceptSets", "expected an array, got %T", v)
		}
	}

	if v, ok := lookup(raw, "PrimaryCriteria", "primaryCriteria", "primary_criteria"); ok {
		if obj, ok := asObject(v); ok {
			cohort.PrimaryCriteria = decodePrimaryCriteria(obj, "PrimaryCriteria", c)
		} else {
			c.add("PrimaryCriteria", "expected an object, got %T", v)
		}
	} else {
		c.add("PrimaryCriteria", "required field is missing")
	}

	cohort.QualifiedLimit = decodeOptionalLimit(raw, "QualifiedLimit", []string{"QualifiedLimit", "qualifiedLimit", "qualified_limit"}, c)
	cohort.ExpressionLimit = decodeOptionalLimit(raw, "ExpressionLimit", []string{"ExpressionLimit", "expressionLimit", "expression_limit"}, c)

	if v, ok := lookup(raw, "InclusionRules", "inclusionRules", "inclusion_rules"); ok {
		if arr, ok := asArray(v); ok {
			cohort.InclusionRules = make([]core.InclusionRule, 0, len(arr))
			for i, item := range arr {
				path := fmt.Sprintf("InclusionRules[%d]", i)
				obj, ok := asObject(item)
				if !ok {
					c.add(path, "expected an object, got %T", item)
					continue
				}
				cohort.InclusionRules = append(cohort.InclusionRules, decodeInclusionRule(obj, path, c))
			}
		} else {
			c.add("InclusionRules", "expected an array, got %T", v)
		}
	}

	if v, ok := lookup(raw, "CensoringCriteria", "censoringCriteria", "censoring_criteria"); ok {
		if arr, ok := asArray(v); ok {
			cohort.CensoringCriteria = make([]core.CriteriaGroup, 0, len(arr))
			for i, item := range arr {
				path := fmt.Sprintf("CensoringCriteria[%d]", i)
				obj, ok := asObject(item)
				if !ok {
					c.add(path, "expected an object, got %T", item)
					continue
				}
				cohort.CensoringCriteria = append(cohort.CensoringCriteria, decodeGroup(obj, path, c))
			}
		} else {
			c.add("CensoringCriteria", "expected an array, got %T", v)
		}
	}

	if err := c.err(); err != nil {
		return nil, err
	}
	return cohort, nil
}

func decodeConceptSet(obj map[string]interface{}, path string, c *collector) core.ConceptSet {
	cs := core.ConceptSet{}

	if v, ok := lookup(obj, "id"); ok {
		if n, ok := asInt(v); ok {
			cs.ID = n
		} else {
			c.add(path+".id", "expected an integer, got %v", v)
		}
	} else {
		c.add(path+".id", "required field is missing")
	}

	if v, ok := lookup(obj, "name"); ok {
		if s, ok := asString(v); ok {
			cs.Name = s
		} else {
			c.add(path+".name", "expected a string, got %T", v)
		}
	} else {
		c.add(path+".name", "required field is missing")
	}

	if v, ok := lookup(obj, "expression"); ok {
		if exprObj, ok := asObject(v); ok {
			cs.Expression = decodeConceptSetExpression(exprObj, path+".expression", c)
		} else {
			c.add(path+".expression", "expected an object, got %T", v)
		}
	} else {
		c.add(path+".expression", "required field is missing")
	}

	return cs
}

func decodeConceptSetExpression(obj map[string]interface{}, path string, c *collector) core.ConceptSetExpression {
	expr := core.ConceptSetExpression{}

	v, ok := lookup(obj, "items")
	if !ok {
		c.add(path+".items", "required field is missing")
		return expr
	}
	arr, ok := asArray(v)
	if !ok {
		c.add(path+".items", "expected an array, got %T", v)
		return expr
	}

	expr.Items = make([]core.ConceptSetItem, 0, len(arr))
	for i, item := range arr {
		itemPath := fmt.Sprintf("%s.items[%d]", path, i)
		itemObj, ok := asObject(item)
		if !ok {
			c.add(itemPath, "expected an object, got %T", item)
			continue
		}
		expr.Items = append(expr.Items, decodeConceptSetItem(itemObj, itemPath, c))
	}
	return expr
}

func decodeConceptSetItem(obj map[string]interface{}, path string, c *collector) core.ConceptSetItem {
	item := core.ConceptSetItem{}

	if v, ok := lookup(obj, "concept"); ok {
		if conceptObj, ok := asObject(v); ok {
			item.Concept = decodeConcept(conceptObj, path+".concept", c)
		} else {
			c.add(path+".concept", "expected an object, got %T", v)
		}
	} else {
		c.add(path+".concept", "required field is missing")
	}

	item.IncludeDescendants = decodeOptionalBool(obj, path, []string{"includeDescendants", "include_descendants"}, c)
	item.IncludeMapped = decodeOptionalBool(obj, path, []string{"includeMapped", "include_mapped"}, c)
	item.IsExcluded = decodeOptionalBool(obj, path, []string{"isExcluded", "is_excluded"}, c)

	return item
}

func decodeOptionalBool(obj map[string]interface{}, path string, names []string, c *collector) bool {
	v, ok := lookup(obj, names...)
	if !ok {
		return false
	}
	b, ok := asBool(v)
	if !ok {
		c.add(path+"."+names[0], "expected a boolean, got %T", v)
		return false
	}
	return b
}

func decodeConcept(obj map[string]interface{}, path string, c *collector) core.Concept {
	concept := core.Concept{}

	if v, ok := lookup(obj, "CONCEPT_ID", "conceptId", "concept_id"); ok {
		if n, ok := asInt(v); ok {
			concept.ConceptID = n
		} else {
			c.add(path+".CONCEPT_ID", "expected an integer, got %v", v)
		}
	} else {
		c.add(path+".CONCEPT_ID", "required field is missing")
	}

	if v, ok := lookup(obj, "CONCEPT_NAME", "conceptName", "concept_name"); ok {
		if s, ok := asString(v); ok {
			concept.ConceptName = s
		} else {
			c.add(path+".CONCEPT_NAME", "expected a string, got %T", v)
		}
	} else {
		c.add(path+".CONCEPT_NAME", "required field is missing")
	}

	concept.DomainID = decodeOptionalString(obj, path, "DOMAIN_ID", []string{"DOMAIN_ID", "domainId", "domain_id"}, c)
	concept.VocabularyID = decodeOptionalString(obj, path, "VOCABULARY_ID", []string{"VOCABULARY_ID", "vocabularyId", "vocabulary_id"}, c)
	concept.ConceptClassID = decodeOptionalString(obj, path, "CONCEPT_CLASS_ID", []string{"CONCEPT_CLASS_ID", "conceptClassId", "concept_class_id"}, c)
	concept.ConceptCode = decodeOptionalString(obj, path, "CONCEPT_CODE", []string{"CONCEPT_CODE", "conceptCode", "concept_code"}, c)
	concept.StandardConcept = decodeNullableString(obj, path, "STANDARD_CONCEPT", []string{"STANDARD_CONCEPT", "standardConcept", "standard_concept"}, c)
	concept.InvalidReason = decodeNullableString(obj, path, "INVALID_REASON", []string{"INVALID_REASON", "invalidReason", "invalid_reason"}, c)

	return concept
}

func decodeOptionalString(obj map[string]interface{}, path, canonical string, names []string, c *collector) string {
	v, ok := lookup(obj, names...)
	if !ok || v == nil {
		return ""
	}
	s, ok := asString(v)
	if !ok {
		c.add(path+"."+canonical, "expected a string, got %T", v)
		return ""
	}
	return s
}

// decodeNullableString keeps the distinction between an absent field, an
// explicit null, and an empty string: standard_concept is a nullable flag.
func decodeNullableString(obj map[string]interface{}, path, canonical string, names []string, c *collector) *string {
	v, ok := lookup(obj, names...)
	if !ok || v == nil {
		return nil
	}
	s, ok := asString(v)
	if !ok {
		c.add(path+"."+canonical, "expected a string or null, got %T", v)
		return nil
	}
	return &s
}

func decodePrimaryCriteria(obj map[string]interface{}, path string, c *collector) core.PrimaryCriteria {
	pc := core.PrimaryCriteria{}

	if v, ok := lookup(obj, "CriteriaList", "criteriaList", "criteria_list"); ok {
		if arr, ok := asArray(v); ok {
			pc.CriteriaList = make([]core.Criterion, 0, len(arr))
			for i, item := range arr {
				critPath := fmt.Sprintf("%s.CriteriaList[%d]", path, i)
				critObj, ok := asObject(item)
				if !ok {
					c.add(critPath, "expected an object, got %T", item)
					continue
				}
				pc.CriteriaList = append(pc.CriteriaList, decodeCriterion(critObj, critPath, c))
			}
		} else {
			c.add(path+".CriteriaList", "expected an array, got %T", v)
		}
	} else {
		c.add(path+".CriteriaList", "required field is missing")
	}

	if v, ok := lookup(obj, "ObservationWindow", "observationWindow", "observation_window"); ok {
		if owObj, ok := asObject(v); ok {
			pc.ObservationWindow = decodeObservationWindow(owObj, path+".ObservationWindow", c)
		} else {
			c.add(path+".ObservationWindow", "expected an object, got %T", v)
		}
	} else {
		c.add(path+".ObservationWindow", "required field is missing")
	}

	if v, ok := lookup(obj, "PrimaryCriteriaLimit", "primaryCriteriaLimit", "primary_criteria_limit"); ok {
		if limitObj, ok := asObject(v); ok {
			pc.PrimaryCriteriaLimit = decodeLimit(limitObj, path+".PrimaryCriteriaLimit", c)
		} else {
			c.add(path+".PrimaryCriteriaLimit", "expected an object, got %T", v)
		}
	} else {
		c.add(path+".PrimaryCriteriaLimit", "required field is missing")
	}

	return pc
}

func decodeObservationWindow(obj map[string]interface{}, path string, c *collector) core.ObservationWindow {
	ow := core.ObservationWindow{}
	ow.PriorDays = decodeDays(obj, path, "PriorDays", []string{"PriorDays", "priorDays", "prior_days"}, c)
	ow.PostDays = decodeDays(obj, path, "PostDays", []string{"PostDays", "postDays", "post_days"}, c)
	return ow
}

func decodeDays(obj map[string]interface{}, path, canonical string, names []string, c *collector) int {
	v, ok := lookup(obj, names...)
	if !ok {
		c.add(path+"."+canonical, "required field is missing")
		return 0
	}
	n, ok := asInt(v)
	if !ok {
		c.add(path+"."+canonical, "expected an integer, got %v", v)
		return 0
	}
	if n < 0 {
		c.add(path+"."+canonical, "must be >= 0, got %d", n)
		return 0
	}
	return n
}

func decodeLimit(obj map[string]interface{}, path string, c *collector) core.ResultLimit {
	limit := core.ResultLimit{}

	v, ok := lookup(obj, "Type", "type")
	if !ok {
		c.add(path+".Type", "required field is missing")
		return limit
	}
	s, ok := asString(v)
	if !ok {
		c.add(path+".Type", "expected a string, got %T", v)
		return limit
	}
	if !core.ValidLimitTypes[s] {
		c.add(path+".Type", "invalid limit type %q, must be one of: %s", s, strings.Join(limitTypeNames(), ", "))
		return limit
	}
	limit.Type = s
	return limit
}

func limitTypeNames() []string {
	return []string{core.LimitFirst, core.LimitAll, core.LimitLast}
}

func decodeOptionalLimit(obj map[string]interface{}, canonical string, names []string, c *collector) *core.ResultLimit {
	v, ok := lookup(obj, names...)
	if !ok || v == nil {
		return nil
	}
	limitObj, ok := asObject(v)
	if !ok {
		c.add(canonical, "expected an object, got %T", v)
		return nil
	}
	limit := decodeLimit(limitObj, canonical, c)
	return &limit
}

// criterionAliases lists the accepted spellings of each variant key, in
// first-match-wins order.
var criterionAliases = map[core.Kind][]string{
	core.KindConditionOccurrence: {"ConditionOccurrence", "conditionOccurrence", "condition_occurrence"},
	core.KindConditionEra:        {"ConditionEra", "conditionEra", "condition_era"},
	core.KindDrugExposure:        {"DrugExposure", "drugExposure", "drug_exposure"},
	core.KindDrugEra:             {"DrugEra", "drugEra", "drug_era"},
	core.KindDoseEra:             {"DoseEra", "doseEra", "dose_era"},
	core.KindProcedureOccurrence: {"ProcedureOccurrence", "procedureOccurrence", "procedure_occurrence"},
	core.KindObservation:         {"Observation", "observation"},
	core.KindObservationPeriod:   {"ObservationPeriod", "observationPeriod", "observation_period"},
	core.KindMeasurement:         {"Measurement", "measurement"},
	core.KindVisitOccurrence:     {"VisitOccurrence", "visitOccurrence", "visit_occurrence"},
	core.KindDeviceExposure:      {"DeviceExposure", "deviceExposure", "device_exposure"},
	core.KindSpecimen:            {"Specimen", "specimen"},
	core.KindDeath:               {"Death", "death"},
}

// decodeCriterion resolves the tagged variant. A criterion object must carry
// at least one recognized variant key; when several are present the first in
// canonical kind order wins, matching the alias policy.
func decodeCriterion(obj map[string]interface{}, path string, c *collector) core.Criterion {
	crit := core.Criterion{}
	for _, kind := range core.CriterionKinds {
		v, ok := lookup(obj, criterionAliases[kind]...)
		if !ok {
			continue
		}
		variantObj, ok := asObject(v)
		if !ok {
			c.add(fmt.Sprintf("%s.%s", path, kind), "expected an object, got %T", v)
			return crit
		}
		event := decodeEventCriterion(variantObj, fmt.Sprintf("%s.%s", path, kind), c)
		crit.SetVariant(kind, event)
		return crit
	}
	c.add(path, "no recognized criterion variant present")
	return crit
}

func decodeEventCriterion(obj map[string]interface{}, path string, c *collector) *core.EventCriterion {
	event := &core.EventCriterion{}

	if v, ok := lookup(obj, "CodesetId", "codesetId", "codeset_id"); ok && v != nil {
		if n, ok := asInt(v); ok {
			event.CodesetID = &n
		} else {
			c.add(path+".CodesetId", "expected an integer, got %v", v)
		}
	}

	if v, ok := lookup(obj, "First", "first"); ok && v != nil {
		if b, ok := asBool(v); ok {
			event.First = &b
		} else {
			c.add(path+".First", "expected a boolean, got %T", v)
		}
	}

	return event
}

func decodeInclusionRule(obj map[string]interface{}, path string, c *collector) core.InclusionRule {
	rule := core.InclusionRule{}

	if v, ok := lookup(obj, "name"); ok {
		if s, ok := asString(v); ok {
			rule.Name = s
		} else {
			c.add(path+".name", "expected a string, got %T", v)
		}
	} else {
		c.add(path+".name", "required field is missing")
	}

	rule.Description = decodeOptionalString(obj, path, "description", []string{"description"}, c)

	if v, ok := lookup(obj, "expression"); ok {
		if exprObj, ok := asObject(v); ok {
			rule.Expression = decodeGroup(exprObj, path+".expression", c)
		} else {
			c.add(path+".expression", "expected an object, got %T", v)
		}
	} else {
		c.add(path+".expression", "required field is missing")
	}

	return rule
}

func decodeGroup(obj map[string]interface{}, path string, c *collector) core.CriteriaGroup {
	group := core.CriteriaGroup{}

	if v, ok := lookup(obj, "Type", "type"); ok {
		if s, ok := asString(v); ok {
			if core.ValidGroupTypes[s] {
				group.Type = s
			} else {
				c.add(path+".Type", "invalid group type %q, must be one of: %s, %s, %s, %s",
					s, core.GroupAll, core.GroupAny, core.GroupAtLeast, core.GroupAtMost)
			}
		} else {
			c.add(path+".Type", "expected a string, got %T", v)
		}
	} else {
		c.add(path+".Type", "required field is missing")
	}

	if v, ok := lookup(obj, "Count", "count"); ok && v != nil {
		if n, ok := asInt(v); ok {
			group.Count = &n
		} else {
			c.add(path+".Count", "expected an integer, got %v", v)
		}
	}
	if (group.Type == core.GroupAtLeast || group.Type == core.GroupAtMost) && group.Count == nil {
		c.add(path+".Count", "required when group type is %s", group.Type)
	}

	if v, ok := lookup(obj, "CriteriaList", "criteriaList", "criteria_list"); ok {
		if arr, ok := asArray(v); ok {
			group.CriteriaList = make([]core.CorrelatedCriteria, 0, len(arr))
			for i, item := range arr {
				ccPath := fmt.Sprintf("%s.CriteriaList[%d]", path, i)
				ccObj, ok := asObject(item)
				if !ok {
					c.add(ccPath, "expected an object, got %T", item)
					continue
				}
				group.CriteriaList = append(group.CriteriaList, decodeCorrelated(ccObj, ccPath, c))
			}
		} else {
			c.add(path+".CriteriaList", "expected an array, got %T", v)
		}
	}

	if v, ok := lookup(obj, "Groups", "groups"); ok {
		if arr, ok := asArray(v); ok {
			group.Groups = make([]core.CriteriaGroup, 0, len(arr))
			for i, item := range arr {
				subPath := fmt.Sprintf("%s.Groups[%d]", path, i)
				subObj, ok := asObject(item)
				if !ok {
					c.add(subPath, "expected an object, got %T", item)
					continue
				}
				group.Groups = append(group.Groups, decodeGroup(subObj, subPath, c))
			}
		} else {
			c.add(path+".Groups", "expected an array, got %T", v)
		}
	}

	return group
}

func decodeCorrelated(obj map[string]interface{}, path string, c *collector) core.CorrelatedCriteria {
	cc := core.CorrelatedCriteria{}

	if v, ok := lookup(obj, "Criteria", "criteria"); ok {
		if critObj, ok := asObject(v); ok {
			cc.Criteria = decodeCriterion(critObj, path+".Criteria", c)
		} else {
			c.add(path+".Criteria", "expected an object, got %T", v)
		}
	} else {
		c.add(path+".Criteria", "required field is missing")
	}

	cc.StartWindow = decodeOptionalWindow(obj, path, "StartWindow", []string{"StartWindow", "startWindow", "start_window"}, c)
	cc.EndWindow = decodeOptionalWindow(obj, path, "EndWindow", []string{"EndWindow", "endWindow", "end_window"}, c)

	if v, ok := lookup(obj, "Occurrence", "occurrence"); ok && v != nil {
		if occObj, ok := asObject(v); ok {
			cc.Occurrence = decodeOccurrence(occObj, path+".Occurrence", c)
		} else {
			c.add(path+".Occurrence", "expected an object, got %T", v)
		}
	}

	return cc
}

func decodeOptionalWindow(obj map[string]interface{}, path, canonical string, names []string, c *collector) *core.Window {
	v, ok := lookup(obj, names...)
	if !ok || v == nil {
		return nil
	}
	winObj, ok := asObject(v)
	if !ok {
		c.add(path+"."+canonical, "expected an object, got %T", v)
		return nil
	}
	return decodeWindow(winObj, path+"."+canonical, c)
}

func decodeWindow(obj map[string]interface{}, path string, c *collector) *core.Window {
	w := &core.Window{}

	if v, ok := lookup(obj, "Start", "start"); ok && v != nil {
		if epObj, ok := asObject(v); ok {
			w.Start = decodeEndpoint(epObj, path+".Start", c)
		} else {
			c.add(path+".Start", "expected an object, got %T", v)
		}
	}
	if v, ok := lookup(obj, "End", "end"); ok && v != nil {
		if epObj, ok := asObject(v); ok {
			w.End = decodeEndpoint(epObj, path+".End", c)
		} else {
			c.add(path+".End", "expected an object, got %T", v)
		}
	}
	if v, ok := lookup(obj, "UseEventEnd", "useEventEnd", "use_event_end"); ok && v != nil {
		if b, ok := asBool(v); ok {
			w.UseEventEnd = &b
		} else {
			c.add(path+".UseEventEnd", "expected a boolean, got %T", v)
		}
	}

	return w
}

func decodeEndpoint(obj map[string]interface{}, path string, c *collector) *core.WindowEndpoint {
	ep := &core.WindowEndpoint{}

	if v, ok := lookup(obj, "Days", "days"); ok && v != nil {
		if n, ok := asInt(v); ok {
			ep.Days = &n
		} else {
			c.add(path+".Days", "expected an integer, got %v", v)
		}
	}
	if v, ok := lookup(obj, "Coeff", "coeff"); ok {
		if n, ok := asInt(v); ok {
			ep.Coeff = n
		} else {
			c.add(path+".Coeff", "expected an integer, got %v", v)
		}
	} else {
		c.add(path+".Coeff", "required field is missing")
	}

	return ep
}

func decodeOccurrence(obj map[string]interface{}, path string, c *collector) *core.Occurrence {
	occ := &core.Occurrence{}

	if v, ok := lookup(obj, "Type", "type"); ok {
		if n, ok := asInt(v); ok {
			if n < core.OccurrenceExactly || n > core.OccurrenceAtLeast {
				c.add(path+".Type", "invalid occurrence type %d, must be 0 (exactly), 1 (at most) or 2 (at least)", n)
			} else {
				occ.Type = n
			}
		} else {
			c.add(path+".Type", "expected an integer, got %v", v)
		}
	} else {
		c.add(path+".Type", "required field is missing")
	}

	if v, ok := lookup(obj, "Count", "count"); ok {
		if n, ok := asInt(v); ok {
			if n < 0 {
				c.add(path+".Count", "must be >= 0, got %d", n)
			} else {
				occ.Count = n
			}
		} else {
			c.add(path+".Count", "expected an integer, got %v", v)
		}
	} else {
		c.add(path+".Count", "required field is missing")
	}

	return occ
}
