package entities

import (
	"fmt"
	"strings"
	"time"
)

// Trigger types for automation rules.
const (
	TriggerCardCreate  = "CARD_CREATE"
	TriggerCardMove    = "CARD_MOVE"
	TriggerCardUpdate  = "CARD_UPDATE"
	TriggerCardArchive = "CARD_ARCHIVE"
	TriggerTimeBased   = "TIME_BASED"
)

// TriggerTypes lists every valid trigger type.
var TriggerTypes = []string{
	TriggerCardCreate,
	TriggerCardMove,
	TriggerCardUpdate,
	TriggerCardArchive,
	TriggerTimeBased,
}

// Action types executable by a rule.
const (
	ActionArchiveCard = "ARCHIVE_CARD"
	ActionMoveCard    = "MOVE_CARD"
	ActionAssignUser  = "ASSIGN_USER"
	ActionAddTag      = "ADD_TAG"
)

// ActionTypes lists every valid action type.
var ActionTypes = []string{
	ActionArchiveCard,
	ActionMoveCard,
	ActionAssignUser,
	ActionAddTag,
}

// AutomationRule is a user-configurable board automation. Condition and
// actions are stored as JSON text columns; the parsed forms are populated
// at the repository boundary and never persisted.
type AutomationRule struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	BoardID        uint       `gorm:"not null;index" json:"board_id"`
	Name           string     `gorm:"size:255;not null" json:"name"`
	Description    string     `gorm:"size:1000;default:''" json:"description"`
	Active         bool       `gorm:"not null;index" json:"active"`
	TriggerType    string     `gorm:"size:20;not null;index" json:"trigger_type"`
	ConditionJSON  string     `gorm:"type:text;default:''" json:"condition_json"`
	ActionsJSON    string     `gorm:"type:text;default:''" json:"actions_json"`
	CronExpression *string    `gorm:"size:100" json:"cron_expression,omitempty"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Parsed payloads, populated by ParsePayloads. Not persisted.
	Condition RuleCondition `gorm:"-" json:"-"`
	Actions   []RuleAction  `gorm:"-" json:"-"`
}

// TableName returns the table name for GORM.
func (AutomationRule) TableName() string {
	return "automation_rules"
}

// ParsePayloads decodes the JSON condition and actions columns into their
// in-memory forms. Malformed JSON never fails: the condition becomes
// ConditionUnknown (never matches) and actions become nil.
func (r *AutomationRule) ParsePayloads() {
	r.Condition = ParseCondition(r.ConditionJSON)
	r.Actions = ParseActions(r.ActionsJSON)
}

// Validate checks structural correctness before a rule is persisted.
// Time-based rules must carry a cron expression; event rules must not.
func (r *AutomationRule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("rule name is required")
	}
	if r.BoardID == 0 {
		return fmt.Errorf("rule board_id is required")
	}

	valid := false
	for _, t := range TriggerTypes {
		if r.TriggerType == t {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid trigger type %q", r.TriggerType)
	}

	hasCron := r.CronExpression != nil && strings.TrimSpace(*r.CronExpression) != ""
	if r.TriggerType == TriggerTimeBased && !hasCron {
		return fmt.Errorf("time-based rule requires a cron expression")
	}
	if r.TriggerType != TriggerTimeBased && hasCron {
		return fmt.Errorf("cron expression is only valid on time-based rules")
	}
	return nil
}
