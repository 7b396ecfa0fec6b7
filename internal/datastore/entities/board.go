// Package entities defines the persisted data model for boards, cards,
// and automation rules. All structs carry snake_case json tags matching
// the frontend TypeScript interfaces.
package entities

import "time"

// Board is a kanban board. Columns and cards reference it by ID.
type Board struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Board) TableName() string {
	return "boards"
}

// Column is a vertical lane on a board. Position orders columns
// left-to-right within the board.
type Column struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BoardID   uint      `gorm:"not null;index" json:"board_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Column) TableName() string {
	return "columns"
}
