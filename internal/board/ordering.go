// Package board maintains the card-ordering invariant: active cards in a
// column always occupy positions 0..n-1 with no gaps or duplicates.
package board

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowboardhq/flowboard/internal/datastore/entities"
	"github.com/flowboardhq/flowboard/internal/datastore/repository"
	"github.com/flowboardhq/flowboard/internal/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrCrossBoardMove is returned when a relocation targets a column on a
// different board than the card's.
var ErrCrossBoardMove = errors.New("cannot move card to a column on another board")

// Ordering relocates cards while keeping every affected column dense.
// All shifts and the final write happen in a single transaction; readers
// never observe a gap or a duplicate position.
type Ordering struct {
	db  *gorm.DB
	log logger.Logger
}

// NewOrdering creates an Ordering on the given database.
func NewOrdering(db *gorm.DB, log logger.Logger) *Ordering {
	if log == nil {
		log = logger.NewNop()
	}
	return &Ordering{db: db, log: log}
}

// Relocate moves a card to targetColumnID at targetPos. A nil targetPos
// appends the card at the end of the target column; out-of-range positions
// are clamped to the valid range. Archived cards cannot be relocated and
// report repository.ErrCardNotFound. Returns the card in its new location.
func (o *Ordering) Relocate(ctx context.Context, cardID, targetColumnID uint, targetPos *int) (*entities.Card, error) {
	var moved entities.Card

	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var card entities.Card
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&card, cardID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrCardNotFound
			}
			return fmt.Errorf("failed to load card %d: %w", cardID, err)
		}
		if card.Archived() {
			return repository.ErrCardNotFound
		}

		var column entities.Column
		if err := tx.First(&column, targetColumnID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrColumnNotFound
			}
			return fmt.Errorf("failed to load column %d: %w", targetColumnID, err)
		}
		if column.BoardID != card.BoardID {
			return ErrCrossBoardMove
		}

		var activeCount int64
		if err := tx.Model(&entities.Card{}).
			Where("column_id = ? AND archived_at IS NULL", targetColumnID).
			Count(&activeCount).Error; err != nil {
			return fmt.Errorf("failed to count cards in column %d: %w", targetColumnID, err)
		}

		sameColumn := card.ColumnID == targetColumnID

		// The valid position range: same-column moves rearrange n cards
		// (max index n-1); cross-column moves insert among n cards (max
		// index n, i.e. append).
		maxPos := int(activeCount)
		if sameColumn {
			maxPos = int(activeCount) - 1
			if maxPos < 0 {
				maxPos = 0
			}
		}
		pos := maxPos
		if targetPos != nil {
			pos = *targetPos
			if pos < 0 {
				pos = 0
			}
			if pos > maxPos {
				pos = maxPos
			}
		}

		if sameColumn && pos == card.Position {
			moved = card
			return nil
		}

		if sameColumn {
			if err := o.shiftWithinColumn(tx, targetColumnID, card.Position, pos); err != nil {
				return err
			}
		} else {
			if err := o.shiftAcrossColumns(tx, card.ColumnID, targetColumnID, card.Position, pos); err != nil {
				return err
			}
		}

		// Only the location columns are written; relocation is not a
		// content edit and must not bump updated_at.
		err := tx.Model(&entities.Card{}).Where("id = ?", card.ID).
			UpdateColumns(map[string]any{
				"column_id": targetColumnID,
				"position":  pos,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to place card %d: %w", card.ID, err)
		}

		if err := tx.First(&moved, card.ID).Error; err != nil {
			return fmt.Errorf("failed to reload card %d: %w", card.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.log.Debug("card relocated",
		logger.Uint64("card_id", uint64(moved.ID)),
		logger.Uint64("column_id", uint64(moved.ColumnID)),
		logger.Int("position", moved.Position))
	return &moved, nil
}

// shiftWithinColumn closes the gap at from and opens one at to, using
// half-open ranges so only the cards between the two positions move.
func (o *Ordering) shiftWithinColumn(tx *gorm.DB, columnID uint, from, to int) error {
	var err error
	if to > from {
		err = tx.Model(&entities.Card{}).
			Where("column_id = ? AND archived_at IS NULL AND position > ? AND position <= ?", columnID, from, to).
			UpdateColumn("position", gorm.Expr("position - 1")).Error
	} else {
		err = tx.Model(&entities.Card{}).
			Where("column_id = ? AND archived_at IS NULL AND position >= ? AND position < ?", columnID, to, from).
			UpdateColumn("position", gorm.Expr("position + 1")).Error
	}
	if err != nil {
		return fmt.Errorf("failed to shift cards in column %d: %w", columnID, err)
	}
	return nil
}

// shiftAcrossColumns compacts the source column above the vacated slot and
// opens a slot in the destination.
func (o *Ordering) shiftAcrossColumns(tx *gorm.DB, sourceColumnID, targetColumnID uint, from, to int) error {
	err := tx.Model(&entities.Card{}).
		Where("column_id = ? AND archived_at IS NULL AND position > ?", sourceColumnID, from).
		UpdateColumn("position", gorm.Expr("position - 1")).Error
	if err != nil {
		return fmt.Errorf("failed to compact column %d: %w", sourceColumnID, err)
	}

	err = tx.Model(&entities.Card{}).
		Where("column_id = ? AND archived_at IS NULL AND position >= ?", targetColumnID, to).
		UpdateColumn("position", gorm.Expr("position + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to open slot in column %d: %w", targetColumnID, err)
	}
	return nil
}
