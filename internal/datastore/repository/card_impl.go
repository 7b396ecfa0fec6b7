package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flowboardhq/flowboard/internal/datastore/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// cardRepository implements CardRepository.
type cardRepository struct {
	db *gorm.DB
}

// NewCardRepository creates a new CardRepository.
func NewCardRepository(db *gorm.DB) CardRepository {
	return &cardRepository{db: db}
}

// GetCard returns a single card by ID with its assignees and tags.
// Returns ErrCardNotFound if the card does not exist.
func (r *cardRepository) GetCard(ctx context.Context, id uint) (*entities.Card, error) {
	var card entities.Card
	if err := r.db.WithContext(ctx).Preload("Assignees").Preload("Tags").First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card %d: %w", id, err)
	}
	return &card, nil
}

// ListColumnCards returns the active cards of a column in position order.
func (r *cardRepository) ListColumnCards(ctx context.Context, columnID uint) ([]entities.Card, error) {
	var cards []entities.Card
	err := r.db.WithContext(ctx).
		Where("column_id = ? AND archived_at IS NULL", columnID).
		Order("position ASC").
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cards for column %d: %w", columnID, err)
	}
	return cards, nil
}

// FindCards returns cards matching the filter, oldest first so capped
// scheduler queries act on the stalest cards.
func (r *cardRepository) FindCards(ctx context.Context, filter CardFilter) ([]entities.Card, error) {
	var cards []entities.Card
	query := r.db.WithContext(ctx)

	if filter.BoardID > 0 {
		query = query.Where("board_id = ?", filter.BoardID)
	}
	if filter.ColumnID > 0 {
		query = query.Where("column_id = ?", filter.ColumnID)
	}
	if filter.UpdatedBefore != nil {
		query = query.Where("updated_at <= ?", *filter.UpdatedBefore)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}
	if !filter.IncludeArchived {
		query = query.Where("archived_at IS NULL")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if err := query.Order("updated_at ASC, id ASC").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to find cards: %w", err)
	}
	return cards, nil
}

// CreateBoard creates a new board.
func (r *cardRepository) CreateBoard(ctx context.Context, board *entities.Board) error {
	if err := r.db.WithContext(ctx).Create(board).Error; err != nil {
		return fmt.Errorf("failed to create board: %w", err)
	}
	return nil
}

// CreateColumn creates a new column on its board.
func (r *cardRepository) CreateColumn(ctx context.Context, column *entities.Column) error {
	if err := r.db.WithContext(ctx).Create(column).Error; err != nil {
		return fmt.Errorf("failed to create column: %w", err)
	}
	return nil
}

// CreateCard creates a card appended at the end of its column. The position
// is assigned inside the transaction so concurrent creates cannot produce
// duplicate positions.
func (r *cardRepository) CreateCard(ctx context.Context, card *entities.Card) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var column entities.Column
		if err := tx.First(&column, card.ColumnID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrColumnNotFound
			}
			return fmt.Errorf("failed to load column %d: %w", card.ColumnID, err)
		}
		card.BoardID = column.BoardID

		var count int64
		if err := tx.Model(&entities.Card{}).
			Where("column_id = ? AND archived_at IS NULL", card.ColumnID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count cards in column %d: %w", card.ColumnID, err)
		}
		card.Position = int(count)

		if err := tx.Create(card).Error; err != nil {
			return fmt.Errorf("failed to create card: %w", err)
		}
		return nil
	})
}

// ArchiveCard marks the card archived and closes the position gap it
// leaves behind, all in one transaction. Archiving an already-archived
// card is a no-op.
func (r *cardRepository) ArchiveCard(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var card entities.Card
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&card, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCardNotFound
			}
			return fmt.Errorf("failed to load card %d: %w", id, err)
		}
		if card.Archived() {
			return nil
		}

		now := time.Now()
		if err := tx.Model(&entities.Card{}).Where("id = ?", id).
			Update("archived_at", now).Error; err != nil {
			return fmt.Errorf("failed to archive card %d: %w", id, err)
		}

		// Close the gap so active positions stay dense.
		err := tx.Model(&entities.Card{}).
			Where("column_id = ? AND archived_at IS NULL AND position > ?", card.ColumnID, card.Position).
			UpdateColumn("position", gorm.Expr("position - 1")).Error
		if err != nil {
			return fmt.Errorf("failed to compact positions in column %d: %w", card.ColumnID, err)
		}
		return nil
	})
}

// SetAssignee replaces the card's assignees with the single given user.
// Re-assigning the same user is a no-op that still leaves one row.
func (r *cardRepository) SetAssignee(ctx context.Context, cardID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireCard(tx, cardID); err != nil {
			return err
		}
		if err := tx.Where("card_id = ? AND user_id <> ?", cardID, userID).
			Delete(&entities.CardAssignee{}).Error; err != nil {
			return fmt.Errorf("failed to clear assignees for card %d: %w", cardID, err)
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "card_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(&entities.CardAssignee{CardID: cardID, UserID: userID}).Error
		if err != nil {
			return fmt.Errorf("failed to assign user %d to card %d: %w", userID, cardID, err)
		}
		return nil
	})
}

// AddTag associates a tag with a card. Duplicate associations are
// swallowed via ON CONFLICT DO NOTHING.
func (r *cardRepository) AddTag(ctx context.Context, cardID, tagID uint) error {
	if err := requireCard(r.db.WithContext(ctx), cardID); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "card_id"}, {Name: "tag_id"}},
		DoNothing: true,
	}).Create(&entities.CardTag{CardID: cardID, TagID: tagID}).Error
	if err != nil {
		return fmt.Errorf("failed to add tag %d to card %d: %w", tagID, cardID, err)
	}
	return nil
}

// requireCard returns ErrCardNotFound unless the card exists.
func requireCard(tx *gorm.DB, cardID uint) error {
	var count int64
	if err := tx.Model(&entities.Card{}).Where("id = ?", cardID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check card %d: %w", cardID, err)
	}
	if count == 0 {
		return ErrCardNotFound
	}
	return nil
}
