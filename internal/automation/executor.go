package automation

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowboardhq/flowboard/internal/datastore/entities"
	"github.com/flowboardhq/flowboard/internal/logger"
)

// CardStore is the slice of card persistence the executor needs.
type CardStore interface {
	GetCard(ctx context.Context, id uint) (*entities.Card, error)
	ArchiveCard(ctx context.Context, id uint) error
	SetAssignee(ctx context.Context, cardID, userID uint) error
	AddTag(ctx context.Context, cardID, tagID uint) error
}

// CardRelocator moves cards between columns while preserving ordering.
type CardRelocator interface {
	Relocate(ctx context.Context, cardID, targetColumnID uint, targetPos *int) (*entities.Card, error)
}

// Executor runs a rule's actions against a card. Every action is attempted
// even when earlier ones fail; failures are joined into the returned error
// so the dispatcher can record them without aborting the rule.
type Executor struct {
	cards     CardStore
	relocator CardRelocator
	log       logger.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(cards CardStore, relocator CardRelocator, log logger.Logger) *Executor {
	if log == nil {
		log = logger.NewNop()
	}
	return &Executor{cards: cards, relocator: relocator, log: log}
}

// Execute runs every action of the rule against the card. Unknown action
// types and unparseable action values are logged and skipped rather than
// treated as failures.
func (x *Executor) Execute(ctx context.Context, rule *entities.AutomationRule, cardID uint) error {
	var errs []error
	for i := range rule.Actions {
		action := &rule.Actions[i]
		if err := x.executeAction(ctx, action, rule, cardID); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", action.Type, err))
			x.log.Error("automation action failed",
				logger.Uint64("rule_id", uint64(rule.ID)),
				logger.Uint64("card_id", uint64(cardID)),
				logger.String("action", action.Type),
				logger.Error(err))
		}
	}
	return errors.Join(errs...)
}

func (x *Executor) executeAction(ctx context.Context, action *entities.RuleAction, rule *entities.AutomationRule, cardID uint) error {
	switch action.Type {
	case entities.ActionArchiveCard:
		return x.cards.ArchiveCard(ctx, cardID)

	case entities.ActionMoveCard:
		columnID, ok := action.UintValue()
		if !ok {
			x.skipAction(action, rule, cardID)
			return nil
		}
		_, err := x.relocator.Relocate(ctx, cardID, columnID, nil)
		return err

	case entities.ActionAssignUser:
		userID, ok := action.UintValue()
		if !ok {
			x.skipAction(action, rule, cardID)
			return nil
		}
		return x.cards.SetAssignee(ctx, cardID, userID)

	case entities.ActionAddTag:
		tagID, ok := action.UintValue()
		if !ok {
			x.skipAction(action, rule, cardID)
			return nil
		}
		return x.cards.AddTag(ctx, cardID, tagID)

	default:
		x.log.Warn("unknown automation action type",
			logger.String("action", action.Type),
			logger.Uint64("rule_id", uint64(rule.ID)))
		return nil
	}
}

func (x *Executor) skipAction(action *entities.RuleAction, rule *entities.AutomationRule, cardID uint) {
	x.log.Warn("automation action skipped: unparseable value",
		logger.String("action", action.Type),
		logger.String("value", action.Value),
		logger.Uint64("rule_id", uint64(rule.ID)),
		logger.Uint64("card_id", uint64(cardID)))
}
