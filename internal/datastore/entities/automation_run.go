package entities

import "time"

// Automation run statuses.
const (
	RunStatusSuccess = "success"
	RunStatusSkipped = "skipped"
	RunStatusFailed  = "failed"
)

// AutomationRun records one firing of an automation rule against a card.
// It is the audit trail behind the board's activity view; old rows are
// pruned by the engine's retention cleanup.
type AutomationRun struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RuleID    uint      `gorm:"not null;index:idx_automation_runs_rule_fired,priority:1" json:"rule_id"`
	BoardID   uint      `gorm:"not null;index" json:"board_id"`
	CardID    uint      `gorm:"not null;default:0" json:"card_id"`
	Status    string    `gorm:"size:20;not null" json:"status"`
	Message   string    `gorm:"type:text;default:''" json:"message"`
	FiredAt   time.Time `gorm:"not null;index:idx_automation_runs_rule_fired,priority:2" json:"fired_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM.
func (AutomationRun) TableName() string {
	return "automation_runs"
}
