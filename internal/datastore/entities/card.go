package entities

import "time"

// Card is a work item on a board. Position is the zero-based order of the
// card within its column; active (non-archived) cards in a column always
// occupy the dense range 0..n-1 with no gaps or duplicates.
type Card struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	BoardID     uint           `gorm:"not null;index" json:"board_id"`
	ColumnID    uint           `gorm:"not null;index:idx_cards_column_position,priority:1" json:"column_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text;default:''" json:"description"`
	Position    int            `gorm:"not null;index:idx_cards_column_position,priority:2" json:"position"`
	ArchivedAt  *time.Time     `gorm:"index" json:"archived_at,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	Assignees   []CardAssignee `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE" json:"assignees"`
	Tags        []CardTag      `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE" json:"tags"`
}

// TableName returns the table name for GORM.
func (Card) TableName() string {
	return "cards"
}

// Archived reports whether the card has been archived.
func (c *Card) Archived() bool {
	return c.ArchivedAt != nil
}

// CardAssignee links a card to an assigned user. The repository enforces
// single-assignee replace semantics; the unique index only guards against
// duplicate rows.
type CardAssignee struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	CardID uint `gorm:"not null;uniqueIndex:idx_card_assignees_card_user,priority:1" json:"card_id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_card_assignees_card_user,priority:2" json:"user_id"`
}

// TableName returns the table name for GORM.
func (CardAssignee) TableName() string {
	return "card_assignees"
}

// CardTag links a card to a tag. Duplicate associations are swallowed at
// insert time via ON CONFLICT DO NOTHING.
type CardTag struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	CardID uint `gorm:"not null;uniqueIndex:idx_card_tags_card_tag,priority:1" json:"card_id"`
	TagID  uint `gorm:"not null;uniqueIndex:idx_card_tags_card_tag,priority:2" json:"tag_id"`
}

// TableName returns the table name for GORM.
func (CardTag) TableName() string {
	return "card_tags"
}
