package automation

import (
	"encoding/json"
	"testing"

	"github.com/flowboardhq/flowboard/internal/datastore/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSchema_CoversAllTriggersAndActions(t *testing.T) {
	t.Parallel()

	schema := GetSchema()

	triggerNames := make([]string, 0, len(schema.Triggers))
	for _, tr := range schema.Triggers {
		triggerNames = append(triggerNames, tr.Name)
	}
	assert.ElementsMatch(t, entities.TriggerTypes, triggerNames)

	actionNames := make([]string, 0, len(schema.Actions))
	for _, a := range schema.Actions {
		actionNames = append(actionNames, a.Name)
	}
	assert.ElementsMatch(t, entities.ActionTypes, actionNames)
}

func TestGetSchema_TimeBasedTriggerUsesOlderThan(t *testing.T) {
	t.Parallel()

	schema := GetSchema()
	for _, tr := range schema.Triggers {
		if tr.Name != entities.TriggerTimeBased {
			assert.False(t, tr.TimeBased)
			continue
		}
		assert.True(t, tr.TimeBased)
		require.NotEmpty(t, tr.Fields)
		for _, field := range tr.Fields {
			assert.Equal(t, []string{entities.OperatorOlderThan}, field.Operators)
		}
	}
}

func TestGetSchema_OperatorCatalogMatchesEvaluator(t *testing.T) {
	t.Parallel()

	schema := GetSchema()
	names := make([]string, 0, len(schema.Operators))
	for _, op := range schema.Operators {
		names = append(names, op.Name)
	}
	expected := append([]string{}, entities.FieldOperators...)
	expected = append(expected, entities.OperatorOlderThan)
	assert.ElementsMatch(t, expected, names)
}

func TestGetSchema_SerializesForFrontend(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(GetSchema())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Contains(t, m, "triggers")
	assert.Contains(t, m, "actions")
	assert.Contains(t, m, "operators")
}
