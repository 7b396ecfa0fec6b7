package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCondition_Always(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"empty string", ""},
		{"whitespace", "   "},
		{"empty object", "{}"},
		{"null literal", "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cond := ParseCondition(tt.raw)
			assert.Equal(t, ConditionAlways, cond.Kind)
			assert.True(t, cond.Always())
		})
	}
}

func TestParseCondition_Field(t *testing.T) {
	t.Parallel()

	cond := ParseCondition(`{"field":"title","operator":"contains","value":"urgent"}`)
	assert.Equal(t, ConditionField, cond.Kind)
	assert.Equal(t, "title", cond.Field)
	assert.Equal(t, OperatorContains, cond.Operator)
	assert.Equal(t, "urgent", cond.Value)
}

func TestParseCondition_FieldNumericValue(t *testing.T) {
	t.Parallel()

	cond := ParseCondition(`{"field":"position","operator":"greater_than","value":3}`)
	assert.Equal(t, ConditionField, cond.Kind)
	assert.Equal(t, float64(3), cond.Value)
}

func TestParseCondition_OlderThan(t *testing.T) {
	t.Parallel()

	cond := ParseCondition(`{"timeField":"updated_at","operator":"olderThan","days":14}`)
	assert.Equal(t, ConditionOlderThan, cond.Kind)
	assert.Equal(t, "updated_at", cond.TimeField)
	assert.Equal(t, 14, cond.Days)
}

func TestParseCondition_Unknown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"malformed JSON", `{"field":"title",`},
		{"JSON array", `["title","is","x"]`},
		{"JSON string", `"title"`},
		{"missing operator", `{"field":"title"}`},
		{"missing field", `{"operator":"is","value":"x"}`},
		{"olderThan without timeField", `{"operator":"olderThan","days":7}`},
		{"olderThan without days", `{"timeField":"updated_at","operator":"olderThan"}`},
		{"olderThan negative days", `{"timeField":"updated_at","operator":"olderThan","days":-1}`},
		{"unrelated keys", `{"foo":"bar"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cond := ParseCondition(tt.raw)
			assert.Equal(t, ConditionUnknown, cond.Kind, "raw: %s", tt.raw)
		})
	}
}

func TestParseActions(t *testing.T) {
	t.Parallel()

	actions := ParseActions(`[{"type":"MOVE_CARD","value":"7"},{"type":"ADD_TAG","value":3}]`)
	require.Len(t, actions, 2)

	assert.Equal(t, ActionMoveCard, actions[0].Type)
	assert.Equal(t, "7", actions[0].Value)

	// Numeric values are normalized to strings.
	assert.Equal(t, ActionAddTag, actions[1].Type)
	assert.Equal(t, "3", actions[1].Value)
}

func TestParseActions_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"empty string", ""},
		{"null literal", "null"},
		{"truncated", `[{"type":`},
		{"object not array", `{"type":"ARCHIVE_CARD"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Nil(t, ParseActions(tt.raw))
		})
	}
}

func TestParseActions_ValuelessAction(t *testing.T) {
	t.Parallel()

	actions := ParseActions(`[{"type":"ARCHIVE_CARD"}]`)
	require.Len(t, actions, 1)
	assert.Equal(t, ActionArchiveCard, actions[0].Type)
	assert.Empty(t, actions[0].Value)
}

func TestRuleAction_UintValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    string
		expected uint
		ok       bool
	}{
		{"valid", "42", 42, true},
		{"zero", "0", 0, true},
		{"empty", "", 0, false},
		{"negative", "-1", 0, false},
		{"non-numeric", "abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, ok := RuleAction{Value: tt.value}.UintValue()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestAutomationRule_ParsePayloads(t *testing.T) {
	t.Parallel()

	rule := AutomationRule{
		ConditionJSON: `{"field":"column_id","operator":"is","value":5}`,
		ActionsJSON:   `[{"type":"ASSIGN_USER","value":"9"}]`,
	}
	rule.ParsePayloads()

	assert.Equal(t, ConditionField, rule.Condition.Kind)
	require.Len(t, rule.Actions, 1)
	assert.Equal(t, ActionAssignUser, rule.Actions[0].Type)
}

func TestAutomationRule_ParsePayloads_MalformedNeverPanics(t *testing.T) {
	t.Parallel()

	rule := AutomationRule{
		ConditionJSON: `{{{{`,
		ActionsJSON:   `not json at all`,
	}
	require.NotPanics(t, rule.ParsePayloads)

	assert.Equal(t, ConditionUnknown, rule.Condition.Kind)
	assert.Nil(t, rule.Actions)
}

// Parsed payloads must never leak into the rule's JSON representation;
// the frontend only sees the raw columns.
func TestAutomationRule_ParsedFieldsNotSerialized(t *testing.T) {
	t.Parallel()

	rule := AutomationRule{
		ID:            1,
		BoardID:       2,
		Name:          "archive stale",
		TriggerType:   TriggerTimeBased,
		ConditionJSON: `{"timeField":"updated_at","operator":"olderThan","days":30}`,
		ActionsJSON:   `[{"type":"ARCHIVE_CARD"}]`,
	}
	rule.ParsePayloads()

	data, err := json.Marshal(rule)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	assert.Contains(t, m, "condition_json")
	assert.Contains(t, m, "actions_json")
	assert.NotContains(t, m, "Condition")
	assert.NotContains(t, m, "Actions")
	assert.NotContains(t, m, "kind")
}
