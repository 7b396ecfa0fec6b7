package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flowboardhq/flowboard/internal/datastore/entities"
	"gorm.io/gorm"
)

// ruleRepository implements RuleRepository.
type ruleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new RuleRepository.
func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

// parseAll populates the parsed payloads on a slice of rules loaded from
// the database. Malformed payloads degrade to never-match/no-op instead
// of failing the query.
func parseAll(rules []entities.AutomationRule) []entities.AutomationRule {
	for i := range rules {
		rules[i].ParsePayloads()
	}
	return rules
}

// ListRules returns automation rules matching the given filter.
func (r *ruleRepository) ListRules(ctx context.Context, filter RuleFilter) ([]entities.AutomationRule, error) {
	var rules []entities.AutomationRule
	query := r.db.WithContext(ctx)

	if filter.BoardID > 0 {
		query = query.Where("board_id = ?", filter.BoardID)
	}
	if filter.TriggerType != "" {
		query = query.Where("trigger_type = ?", filter.TriggerType)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	if err := query.Order("id ASC").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to list automation rules: %w", err)
	}
	return parseAll(rules), nil
}

// GetRule returns a single automation rule by ID with parsed payloads.
// Returns ErrRuleNotFound if the rule does not exist.
func (r *ruleRepository) GetRule(ctx context.Context, id uint) (*entities.AutomationRule, error) {
	var rule entities.AutomationRule
	if err := r.db.WithContext(ctx).First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("failed to get automation rule %d: %w", id, err)
	}
	rule.ParsePayloads()
	return &rule, nil
}

// CreateRule validates and creates a new automation rule.
func (r *ruleRepository) CreateRule(ctx context.Context, rule *entities.AutomationRule) error {
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("invalid automation rule: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("failed to create automation rule: %w", err)
	}
	rule.ParsePayloads()
	return nil
}

// UpdateRule validates and saves an existing automation rule.
func (r *ruleRepository) UpdateRule(ctx context.Context, rule *entities.AutomationRule) error {
	if rule.ID == 0 {
		return fmt.Errorf("failed to update automation rule: missing rule ID")
	}
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("invalid automation rule: %w", err)
	}
	result := r.db.WithContext(ctx).Model(&entities.AutomationRule{}).Where("id = ?", rule.ID).
		Updates(map[string]any{
			"name":            rule.Name,
			"description":     rule.Description,
			"active":          rule.Active,
			"trigger_type":    rule.TriggerType,
			"condition_json":  rule.ConditionJSON,
			"actions_json":    rule.ActionsJSON,
			"cron_expression": rule.CronExpression,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update automation rule %d: %w", rule.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	rule.ParsePayloads()
	return nil
}

// DeleteRule deletes an automation rule.
func (r *ruleRepository) DeleteRule(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entities.AutomationRule{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete automation rule %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// ToggleRule activates or deactivates an automation rule.
func (r *ruleRepository) ToggleRule(ctx context.Context, id uint, active bool) error {
	result := r.db.WithContext(ctx).Model(&entities.AutomationRule{}).Where("id = ?", id).Update("active", active)
	if result.Error != nil {
		return fmt.Errorf("failed to toggle automation rule %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// FindActiveByBoardAndTrigger returns the active rules for one board and
// trigger type, ordered by ID for deterministic dispatch.
func (r *ruleRepository) FindActiveByBoardAndTrigger(ctx context.Context, boardID uint, triggerType string) ([]entities.AutomationRule, error) {
	var rules []entities.AutomationRule
	err := r.db.WithContext(ctx).
		Where("board_id = ? AND trigger_type = ? AND active = ?", boardID, triggerType, true).
		Order("id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find active rules for board %d trigger %s: %w", boardID, triggerType, err)
	}
	return parseAll(rules), nil
}

// FindActiveTimeBased returns every active time-based rule across all boards.
func (r *ruleRepository) FindActiveTimeBased(ctx context.Context) ([]entities.AutomationRule, error) {
	var rules []entities.AutomationRule
	err := r.db.WithContext(ctx).
		Where("trigger_type = ? AND active = ?", entities.TriggerTimeBased, true).
		Order("id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find active time-based rules: %w", err)
	}
	return parseAll(rules), nil
}

// TouchLastRun records the last scheduler pass that evaluated the rule.
// Only the last_run_at column is written; updated_at is left alone so the
// scheduler does not look like a user edit.
func (r *ruleRepository) TouchLastRun(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&entities.AutomationRule{}).Where("id = ?", id).
		UpdateColumn("last_run_at", at)
	if result.Error != nil {
		return fmt.Errorf("failed to touch last run for rule %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// SaveRun saves an automation run record.
func (r *ruleRepository) SaveRun(ctx context.Context, run *entities.AutomationRun) error {
	if run.FiredAt.IsZero() {
		run.FiredAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to save automation run: %w", err)
	}
	return nil
}

// ListRuns returns run records matching the filter with pagination.
func (r *ruleRepository) ListRuns(ctx context.Context, filter RunFilter) ([]entities.AutomationRun, int64, error) {
	var runs []entities.AutomationRun
	var total int64

	countQuery := r.db.WithContext(ctx).Model(&entities.AutomationRun{})
	if filter.RuleID > 0 {
		countQuery = countQuery.Where("rule_id = ?", filter.RuleID)
	}
	if filter.BoardID > 0 {
		countQuery = countQuery.Where("board_id = ?", filter.BoardID)
	}
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count automation runs: %w", err)
	}

	query := r.db.WithContext(ctx).Order("fired_at DESC")
	if filter.RuleID > 0 {
		query = query.Where("rule_id = ?", filter.RuleID)
	}
	if filter.BoardID > 0 {
		query = query.Where("board_id = ?", filter.BoardID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if err := query.Find(&runs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list automation runs: %w", err)
	}
	return runs, total, nil
}

// DeleteRunsBefore deletes run records older than the given time.
func (r *ruleRepository) DeleteRunsBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("fired_at < ?", before).Delete(&entities.AutomationRun{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete automation runs before %v: %w", before, result.Error)
	}
	return result.RowsAffected, nil
}
