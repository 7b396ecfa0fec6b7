package repository

import (
	"context"
	"time"

	"github.com/flowboardhq/flowboard/internal/datastore/entities"
)

// CardRepository handles board, column, and card persistence. Relocation
// between columns lives in the board package; everything else that touches
// card state goes through here.
type CardRepository interface {
	GetCard(ctx context.Context, id uint) (*entities.Card, error)
	ListColumnCards(ctx context.Context, columnID uint) ([]entities.Card, error)
	FindCards(ctx context.Context, filter CardFilter) ([]entities.Card, error)

	CreateBoard(ctx context.Context, board *entities.Board) error
	CreateColumn(ctx context.Context, column *entities.Column) error
	CreateCard(ctx context.Context, card *entities.Card) error

	// ArchiveCard marks the card archived and compacts sibling positions
	// so the column's active cards stay dense. Idempotent.
	ArchiveCard(ctx context.Context, id uint) error

	// SetAssignee replaces the card's assignees with the single given user.
	SetAssignee(ctx context.Context, cardID, userID uint) error

	// AddTag associates a tag with a card. Adding an existing tag is a
	// silent no-op.
	AddTag(ctx context.Context, cardID, tagID uint) error
}

// CardFilter controls card search queries. Zero values mean "no constraint".
// The time filters are inclusive: a card touched exactly at the cutoff matches.
type CardFilter struct {
	BoardID         uint
	ColumnID        uint
	UpdatedBefore   *time.Time
	CreatedBefore   *time.Time
	IncludeArchived bool
	Limit           int
}
