package automation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/flowboardhq/flowboard/internal/datastore/entities"
)

// ConditionMatches checks a parsed rule condition against event properties.
// Always-conditions match everything, unknown conditions match nothing;
// a rule with a malformed condition can therefore never fire but also
// never crashes dispatch.
func ConditionMatches(cond entities.RuleCondition, properties map[string]any, now time.Time) bool {
	switch cond.Kind {
	case entities.ConditionAlways:
		return true
	case entities.ConditionField:
		return evaluateField(cond, properties)
	case entities.ConditionOlderThan:
		return evaluateOlderThan(cond, properties, now)
	default:
		return false
	}
}

func evaluateField(cond entities.RuleCondition, properties map[string]any) bool {
	propVal, exists := properties[cond.Field]
	if !exists {
		return false
	}

	propStr := fmt.Sprintf("%v", propVal)
	condStr := fmt.Sprintf("%v", cond.Value)

	switch cond.Operator {
	case entities.OperatorIs:
		return equalValues(propVal, cond.Value, propStr, condStr)
	case entities.OperatorIsNot:
		return !equalValues(propVal, cond.Value, propStr, condStr)
	case entities.OperatorContains:
		return strings.Contains(strings.ToLower(propStr), strings.ToLower(condStr))
	case entities.OperatorNotContains:
		return !strings.Contains(strings.ToLower(propStr), strings.ToLower(condStr))
	case entities.OperatorGreaterThan, entities.OperatorLessThan,
		entities.OperatorGreaterOrEqual, entities.OperatorLessOrEqual:
		return evaluateNumeric(cond.Operator, propVal, cond.Value)
	default:
		return false
	}
}

// equalValues compares numerically when both sides coerce to numbers
// (so 3 matches "3" and 3.0), case-insensitive string compare otherwise.
func equalValues(propVal, condVal any, propStr, condStr string) bool {
	propFloat, errA := toFloat64(propVal)
	condFloat, errB := toFloat64(condVal)
	if errA == nil && errB == nil {
		return propFloat == condFloat
	}
	return strings.EqualFold(propStr, condStr)
}

func evaluateNumeric(operator string, propVal, condVal any) bool {
	propFloat, err := toFloat64(propVal)
	if err != nil {
		return false
	}
	condFloat, err := toFloat64(condVal)
	if err != nil {
		return false
	}

	switch operator {
	case entities.OperatorGreaterThan:
		return propFloat > condFloat
	case entities.OperatorLessThan:
		return propFloat < condFloat
	case entities.OperatorGreaterOrEqual:
		return propFloat >= condFloat
	case entities.OperatorLessOrEqual:
		return propFloat <= condFloat
	default:
		return false
	}
}

// evaluateOlderThan checks whether the referenced timestamp property is
// more than cond.Days days before now. A missing or unparseable timestamp
// never matches.
func evaluateOlderThan(cond entities.RuleCondition, properties map[string]any, now time.Time) bool {
	propVal, exists := properties[cond.TimeField]
	if !exists {
		return false
	}
	ts, err := toTime(propVal)
	if err != nil {
		return false
	}
	// Inclusive: a timestamp exactly Days old already qualifies.
	cutoff := now.AddDate(0, 0, -cond.Days)
	return !ts.After(cutoff)
}

func toFloat64(val any) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to float64", val)
	}
}

func toTime(val any) (time.Time, error) {
	switch v := val.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("nil time")
		}
		return *v, nil
	case string:
		return time.Parse(time.RFC3339, v)
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to time", val)
	}
}

// cardProperties builds the evaluation context for a card, used both by
// the scheduler and by event publishers that only have the card row.
func cardProperties(card *entities.Card) map[string]any {
	return map[string]any{
		PropertyCardID:      card.ID,
		PropertyBoardID:     card.BoardID,
		PropertyColumnID:    card.ColumnID,
		PropertyTitle:       card.Title,
		PropertyDescription: card.Description,
		PropertyPosition:    card.Position,
		PropertyCreatedAt:   card.CreatedAt,
		PropertyUpdatedAt:   card.UpdatedAt,
	}
}
