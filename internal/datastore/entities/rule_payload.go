package entities

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ConditionKind discriminates the parsed form of a rule condition.
type ConditionKind string

const (
	// ConditionAlways matches every event. Produced by an empty, "{}",
	// or null condition column.
	ConditionAlways ConditionKind = "always"
	// ConditionField compares a card property against a value.
	ConditionField ConditionKind = "field"
	// ConditionOlderThan matches cards whose timestamp field is older
	// than a number of days.
	ConditionOlderThan ConditionKind = "older_than"
	// ConditionUnknown never matches. Produced by malformed or
	// unrecognized condition JSON.
	ConditionUnknown ConditionKind = "unknown"
)

// OperatorOlderThan is the temporal operator used by older_than conditions.
const OperatorOlderThan = "olderThan"

// Field comparison operators.
const (
	OperatorIs             = "is"
	OperatorIsNot          = "is_not"
	OperatorContains       = "contains"
	OperatorNotContains    = "not_contains"
	OperatorGreaterThan    = "greater_than"
	OperatorLessThan       = "less_than"
	OperatorGreaterOrEqual = "greater_or_equal"
	OperatorLessOrEqual    = "less_or_equal"
)

// FieldOperators lists every valid field comparison operator.
var FieldOperators = []string{
	OperatorIs,
	OperatorIsNot,
	OperatorContains,
	OperatorNotContains,
	OperatorGreaterThan,
	OperatorLessThan,
	OperatorGreaterOrEqual,
	OperatorLessOrEqual,
}

// RuleCondition is the parsed form of a rule's condition column.
// Field/Operator/Value are set for field conditions; TimeField/Days for
// older_than conditions.
type RuleCondition struct {
	Kind      ConditionKind `json:"kind"`
	Field     string        `json:"field,omitempty"`
	Operator  string        `json:"operator,omitempty"`
	Value     any           `json:"value,omitempty"`
	TimeField string        `json:"time_field,omitempty"`
	Days      int           `json:"days,omitempty"`
}

// Always reports whether the condition matches unconditionally.
func (c RuleCondition) Always() bool {
	return c.Kind == ConditionAlways
}

// conditionPayload mirrors the wire shape of the condition column.
type conditionPayload struct {
	Field     string `json:"field"`
	Operator  string `json:"operator"`
	Value     any    `json:"value"`
	TimeField string `json:"timeField"`
	Days      *int   `json:"days"`
}

// ParseCondition decodes a condition column into its tagged form. It never
// panics and never returns an error: empty input means always-match,
// anything unrecognized means never-match.
func ParseCondition(raw string) RuleCondition {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" || trimmed == "{}" {
		return RuleCondition{Kind: ConditionAlways}
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &m); err != nil {
		return RuleCondition{Kind: ConditionUnknown}
	}
	if len(m) == 0 {
		return RuleCondition{Kind: ConditionAlways}
	}

	var p conditionPayload
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return RuleCondition{Kind: ConditionUnknown}
	}

	if p.Operator == OperatorOlderThan {
		if p.TimeField == "" || p.Days == nil || *p.Days < 0 {
			return RuleCondition{Kind: ConditionUnknown}
		}
		return RuleCondition{
			Kind:      ConditionOlderThan,
			Operator:  OperatorOlderThan,
			TimeField: p.TimeField,
			Days:      *p.Days,
		}
	}

	if p.Field != "" && p.Operator != "" {
		return RuleCondition{
			Kind:     ConditionField,
			Field:    p.Field,
			Operator: p.Operator,
			Value:    p.Value,
		}
	}

	return RuleCondition{Kind: ConditionUnknown}
}

// RuleAction is a single action in a rule's action list. Value carries the
// action argument (target column, user, or tag ID) as a string regardless
// of how the frontend encoded it.
type RuleAction struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// UnmarshalJSON accepts the action value as either a JSON string or a
// number, since rule builders have emitted both over time.
func (a *RuleAction) UnmarshalJSON(b []byte) error {
	var p struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	a.Type = p.Type
	a.Value = ""

	if len(p.Value) == 0 || string(p.Value) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(p.Value, &s); err == nil {
		a.Value = s
		return nil
	}
	var n float64
	if err := json.Unmarshal(p.Value, &n); err == nil {
		a.Value = strconv.FormatInt(int64(n), 10)
		return nil
	}
	// Unrepresentable value; leave empty so the executor skips it.
	return nil
}

// ParseActions decodes an actions column. Malformed JSON yields nil; the
// dispatcher treats a rule with no actions as a no-op.
func ParseActions(raw string) []RuleAction {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	var actions []RuleAction
	if err := json.Unmarshal([]byte(trimmed), &actions); err != nil {
		return nil
	}
	return actions
}

// UintValue parses the action value as an unsigned ID.
func (a RuleAction) UintValue() (uint, bool) {
	n, err := strconv.ParseUint(a.Value, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}
