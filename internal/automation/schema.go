package automation

import "github.com/flowboardhq/flowboard/internal/datastore/entities"

// Schema describes the full catalog of triggers, condition fields, and
// actions available to the rule-builder UI.
type Schema struct {
	Triggers  []TriggerSchema  `json:"triggers"`
	Actions   []ActionSchema   `json:"actions"`
	Operators []OperatorSchema `json:"operators"`
}

// TriggerSchema describes a trigger and the condition fields it exposes.
type TriggerSchema struct {
	Name      string        `json:"name"`
	Label     string        `json:"label"`
	TimeBased bool          `json:"timeBased,omitempty"`
	Fields    []FieldSchema `json:"fields"`
}

// FieldSchema describes a field available for condition building.
type FieldSchema struct {
	Name      string   `json:"name"`
	Label     string   `json:"label"`
	Type      string   `json:"type"` // "string", "number", or "time"
	Operators []string `json:"operators"`
}

// ActionSchema describes an action kind and what its value refers to.
type ActionSchema struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	ValueKind string `json:"valueKind"` // "column", "user", "tag", or "none"
}

// OperatorSchema describes an operator for the UI.
type OperatorSchema struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Type  string `json:"type"` // "string", "number", or "time"
}

// stringOperators are operators valid for string fields.
var stringOperators = []string{
	entities.OperatorIs, entities.OperatorIsNot,
	entities.OperatorContains, entities.OperatorNotContains,
}

// numericOperators are operators valid for numeric fields.
var numericOperators = []string{
	entities.OperatorIs, entities.OperatorIsNot,
	entities.OperatorGreaterThan, entities.OperatorLessThan,
	entities.OperatorGreaterOrEqual, entities.OperatorLessOrEqual,
}

// GetSchema returns the full automation schema for the UI.
func GetSchema() Schema {
	return Schema{
		Triggers: []TriggerSchema{
			{Name: entities.TriggerCardCreate, Label: "Card Created", Fields: cardFields()},
			{Name: entities.TriggerCardMove, Label: "Card Moved", Fields: moveFields()},
			{Name: entities.TriggerCardUpdate, Label: "Card Updated", Fields: cardFields()},
			{Name: entities.TriggerCardArchive, Label: "Card Archived", Fields: cardFields()},
			{Name: entities.TriggerTimeBased, Label: "On a Schedule", TimeBased: true, Fields: timeFields()},
		},
		Actions: []ActionSchema{
			{Name: entities.ActionArchiveCard, Label: "Archive the card", ValueKind: "none"},
			{Name: entities.ActionMoveCard, Label: "Move the card to a column", ValueKind: "column"},
			{Name: entities.ActionAssignUser, Label: "Assign a user", ValueKind: "user"},
			{Name: entities.ActionAddTag, Label: "Add a tag", ValueKind: "tag"},
		},
		Operators: []OperatorSchema{
			{Name: entities.OperatorIs, Label: "is", Type: "string"},
			{Name: entities.OperatorIsNot, Label: "is not", Type: "string"},
			{Name: entities.OperatorContains, Label: "contains", Type: "string"},
			{Name: entities.OperatorNotContains, Label: "does not contain", Type: "string"},
			{Name: entities.OperatorGreaterThan, Label: "greater than", Type: "number"},
			{Name: entities.OperatorLessThan, Label: "less than", Type: "number"},
			{Name: entities.OperatorGreaterOrEqual, Label: "greater or equal", Type: "number"},
			{Name: entities.OperatorLessOrEqual, Label: "less or equal", Type: "number"},
			{Name: entities.OperatorOlderThan, Label: "older than (days)", Type: "time"},
		},
	}
}

func cardFields() []FieldSchema {
	return []FieldSchema{
		{Name: PropertyTitle, Label: "Title", Type: "string", Operators: stringOperators},
		{Name: PropertyDescription, Label: "Description", Type: "string", Operators: stringOperators},
		{Name: PropertyColumnID, Label: "Column", Type: "number", Operators: numericOperators},
		{Name: PropertyPosition, Label: "Position", Type: "number", Operators: numericOperators},
	}
}

func moveFields() []FieldSchema {
	return append(cardFields(),
		FieldSchema{Name: PropertyFromColumnID, Label: "Moved From Column", Type: "number", Operators: numericOperators},
		FieldSchema{Name: PropertyToColumnID, Label: "Moved To Column", Type: "number", Operators: numericOperators},
	)
}

func timeFields() []FieldSchema {
	olderThan := []string{entities.OperatorOlderThan}
	return []FieldSchema{
		{Name: PropertyUpdatedAt, Label: "Last Updated", Type: "time", Operators: olderThan},
		{Name: PropertyCreatedAt, Label: "Created", Type: "time", Operators: olderThan},
	}
}
