// Package automation provides the board automation engine: event-triggered
// rule dispatch, the time-based scheduler, and action execution.
package automation

// Event properties available for condition evaluation. Board mutation code
// fills these on the events it publishes; the scheduler derives them from
// card rows.
const (
	PropertyCardID       = "card_id"
	PropertyBoardID      = "board_id"
	PropertyColumnID     = "column_id"
	PropertyFromColumnID = "from_column_id"
	PropertyToColumnID   = "to_column_id"
	PropertyUserID       = "user_id"
	PropertyTitle        = "title"
	PropertyDescription  = "description"
	PropertyPosition     = "position"
	PropertyCreatedAt    = "created_at"
	PropertyUpdatedAt    = "updated_at"
)
