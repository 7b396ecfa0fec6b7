package repository

import (
	"context"
	"time"

	"github.com/flowboardhq/flowboard/internal/datastore/entities"
)

// RuleRepository handles automation rule CRUD and run-history operations.
// Implementations populate the parsed Condition/Actions fields on every
// rule they return.
type RuleRepository interface {
	// Rule CRUD
	ListRules(ctx context.Context, filter RuleFilter) ([]entities.AutomationRule, error)
	GetRule(ctx context.Context, id uint) (*entities.AutomationRule, error)
	CreateRule(ctx context.Context, rule *entities.AutomationRule) error
	UpdateRule(ctx context.Context, rule *entities.AutomationRule) error
	DeleteRule(ctx context.Context, id uint) error
	ToggleRule(ctx context.Context, id uint, active bool) error

	// Dispatch and scheduling reads. These hit the database fresh on
	// every call; rule state is never cached between events or ticks.
	FindActiveByBoardAndTrigger(ctx context.Context, boardID uint, triggerType string) ([]entities.AutomationRule, error)
	FindActiveTimeBased(ctx context.Context) ([]entities.AutomationRule, error)
	TouchLastRun(ctx context.Context, id uint, at time.Time) error

	// Run history
	SaveRun(ctx context.Context, run *entities.AutomationRun) error
	ListRuns(ctx context.Context, filter RunFilter) ([]entities.AutomationRun, int64, error)
	DeleteRunsBefore(ctx context.Context, before time.Time) (int64, error)
}

// RuleFilter controls rule listing queries.
type RuleFilter struct {
	BoardID     uint
	TriggerType string
	Active      *bool
}

// RunFilter controls run listing queries.
type RunFilter struct {
	RuleID  uint
	BoardID uint
	Limit   int
	Offset  int
}
