package board

import (
	"testing"
	"time"

	"github.com/flowboardhq/flowboard/internal/datastore/entities"
	"github.com/flowboardhq/flowboard/internal/datastore/repository"
	"github.com/flowboardhq/flowboard/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

// setupOrderingTestDB creates an in-memory SQLite database. Shared-cache
// mode with a single connection keeps every operation on the same database.
func setupOrderingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_foreign_keys=ON"), &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "failed to get sql.DB")
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(&entities.Board{}, &entities.Column{}, &entities.Card{})
	require.NoError(t, err, "failed to migrate tables")
	return db
}

// seedColumn creates a column on the board with cards titled after titles,
// positioned in order.
func seedColumn(t *testing.T, db *gorm.DB, boardID uint, titles ...string) *entities.Column {
	t.Helper()
	column := &entities.Column{BoardID: boardID, Title: "col"}
	require.NoError(t, db.Create(column).Error)
	for i, title := range titles {
		card := &entities.Card{BoardID: boardID, ColumnID: column.ID, Title: title, Position: i}
		require.NoError(t, db.Create(card).Error)
	}
	return column
}

func seedBoard(t *testing.T, db *gorm.DB) *entities.Board {
	t.Helper()
	b := &entities.Board{Title: "test board"}
	require.NoError(t, db.Create(b).Error)
	return b
}

// columnTitles returns the titles of a column's active cards in position
// order, failing the test if positions are not dense from zero.
func columnTitles(t *testing.T, db *gorm.DB, columnID uint) []string {
	t.Helper()
	var cards []entities.Card
	require.NoError(t, db.Where("column_id = ? AND archived_at IS NULL", columnID).
		Order("position ASC").Find(&cards).Error)

	titles := make([]string, 0, len(cards))
	for i, c := range cards {
		assert.Equal(t, i, c.Position, "positions must be dense from zero, card %q is at %d", c.Title, c.Position)
		titles = append(titles, c.Title)
	}
	return titles
}

func cardByTitle(t *testing.T, db *gorm.DB, title string) *entities.Card {
	t.Helper()
	var card entities.Card
	require.NoError(t, db.Where("title = ?", title).First(&card).Error)
	return &card
}

func intPtr(i int) *int { return &i }

func TestRelocate_CrossColumn(t *testing.T) {
	db := setupOrderingTestDB(t)
	b := seedBoard(t, db)
	src := seedColumn(t, db, b.ID, "A", "B", "C")
	dst := seedColumn(t, db, b.ID, "X", "Y")
	ord := NewOrdering(db, logger.NewNop())

	moved, err := ord.Relocate(t.Context(), cardByTitle(t, db, "B").ID, dst.ID, intPtr(1))
	require.NoError(t, err)
	assert.Equal(t, dst.ID, moved.ColumnID)
	assert.Equal(t, 1, moved.Position)

	assert.Equal(t, []string{"A", "C"}, columnTitles(t, db, src.ID))
	assert.Equal(t, []string{"X", "B", "Y"}, columnTitles(t, db, dst.ID))
}

func TestRelocate_CrossColumnAppend(t *testing.T) {
	db := setupOrderingTestDB(t)
	b := seedBoard(t, db)
	src := seedColumn(t, db, b.ID, "A", "B")
	dst := seedColumn(t, db, b.ID, "X", "Y")
	ord := NewOrdering(db, logger.NewNop())

	// nil position appends to the end of the destination.
	moved, err := ord.Relocate(t.Context(), cardByTitle(t, db, "A").ID, dst.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Position)

	assert.Equal(t, []string{"B"}, columnTitles(t, db, src.ID))
	assert.Equal(t, []string{"X", "Y", "A"}, columnTitles(t, db, dst.ID))
}

func TestRelocate_CrossColumnToEmptyColumn(t *testing.T) {
	db := setupOrderingTestDB(t)
	b := seedBoard(t, db)
	src := seedColumn(t, db, b.ID, "A")
	dst := seedColumn(t, db, b.ID)
	ord := NewOrdering(db, logger.NewNop())

	moved, err := ord.Relocate(t.Context(), cardByTitle(t, db, "A").ID, dst.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, moved.Position)

	assert.Empty(t, columnTitles(t, db, src.ID))
	assert.Equal(t, []string{"A"}, columnTitles(t, db, dst.ID))
}

func TestRelocate_SameColumnDown(t *testing.T) {
	db := setupOrderingTestDB(t)
	b := seedBoard(t, db)
	col := seedColumn(t, db, b.ID, "X", "Y", "Z")
	ord := NewOrdering(db, logger.NewNop())

	// Move X from the front to the back: everything between shifts up.
	moved, err := ord.Relocate(t.Context(), cardByTitle(t, db, "X").ID, col.ID, intPtr(2))
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Position)
	assert.Equal(t, []string{"Y", "Z", "X"}, columnTitles(t, db, col.ID))
}

func TestRelocate_SameColumnUp(t *testing.T) {
	db := setupOrderingTestDB(t)
	b := seedBoard(t, db)
	col := seedColumn(t, db, b.ID, "X", "Y", "Z", "W")
	ord := NewOrdering(db, logger.NewNop())

	moved, err := ord.Relocate(t.Context(), cardByTitle(t, db, "W").ID, col.ID, intPtr(1))
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Position)
	assert.Equal(t, []string{"X", "W", "Y", "Z"}, columnTitles(t, db, col.ID))
}

func TestRelocate_SameColumnSamePositionIsNoOp(t *testing.T) {
	db := setupOrderingTestDB(t)
	b := seedBoard(t, db)
	col := seedColumn(t, db, b.ID, "X", "Y", "Z")
	ord := NewOrdering(db, logger.NewNop())

	moved, err := ord.Relocate(t.Context(), cardByTitle(t, db, "Y").ID, col.ID, intPtr(1))
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Position)
	assert.Equal(t, []string{"X", "Y", "Z"}, columnTitles(t, db, col.ID))
}

func TestRelocate_ClampsOutOfRangePositions(t *testing.T) {
	db := setupOrderingTestDB(t)
	b := seedBoard(t, db)
	col := seedColumn(t, db, b.ID, "X", "Y", "Z")
	ord := NewOrdering(db, logger.NewNop())

	// Way past the end clamps to the last index.
	moved, err := ord.Relocate(t.Context(), cardByTitle(t, db, "X").ID, col.ID, intPtr(99))
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Position)
	assert.Equal(t, []string{"Y", "Z", "X"}, columnTitles(t, db, col.ID))

	// Negative clamps to zero.
	moved, err = ord.Relocate(t.Context(), cardByTitle(t, db, "X").ID, col.ID, intPtr(-5))
	require.NoError(t, err)
	assert.Equal(t, 0, moved.Position)
	assert.Equal(t, []string{"X", "Y", "Z"}, columnTitles(t, db, col.ID))
}

func TestRelocate_ArchivedCardNotRelocatable(t *testing.T) {
	db := setupOrderingTestDB(t)
	b := seedBoard(t, db)
	col := seedColumn(t, db, b.ID, "X", "Y")
	ord := NewOrdering(db, logger.NewNop())

	card := cardByTitle(t, db, "X")
	now := time.Now()
	require.NoError(t, db.Model(card).Update("archived_at", now).Error)

	_, err := ord.Relocate(t.Context(), card.ID, col.ID, intPtr(0))
	assert.ErrorIs(t, err, repository.ErrCardNotFound)
}

func TestRelocate_ArchivedCardsIgnoredInShifts(t *testing.T) {
	db := setupOrderingTestDB(t)
	b := seedBoard(t, db)
	col := seedColumn(t, db, b.ID, "X", "Y", "Z")
	ord := NewOrdering(db, logger.NewNop())

	// Archive Y manually; X and Z stay at 0 and 2 to simulate the moment
	// before compaction, then compact like ArchiveCard would.
	now := time.Now()
	require.NoError(t, db.Model(cardByTitle(t, db, "Y")).Update("archived_at", now).Error)
	require.NoError(t, db.Model(&entities.Card{}).
		Where("column_id = ? AND archived_at IS NULL AND position > 1", col.ID).
		UpdateColumn("position", gorm.Expr("position - 1")).Error)

	moved, err := ord.Relocate(t.Context(), cardByTitle(t, db, "Z").ID, col.ID, intPtr(0))
	require.NoError(t, err)
	assert.Equal(t, 0, moved.Position)
	assert.Equal(t, []string{"Z", "X"}, columnTitles(t, db, col.ID))

	// The archived card is untouched.
	assert.NotNil(t, cardByTitle(t, db, "Y").ArchivedAt)
}

func TestRelocate_MissingCard(t *testing.T) {
	db := setupOrderingTestDB(t)
	b := seedBoard(t, db)
	col := seedColumn(t, db, b.ID, "X")
	ord := NewOrdering(db, logger.NewNop())

	_, err := ord.Relocate(t.Context(), 9999, col.ID, nil)
	assert.ErrorIs(t, err, repository.ErrCardNotFound)
}

func TestRelocate_MissingColumn(t *testing.T) {
	db := setupOrderingTestDB(t)
	b := seedBoard(t, db)
	seedColumn(t, db, b.ID, "X")
	ord := NewOrdering(db, logger.NewNop())

	_, err := ord.Relocate(t.Context(), cardByTitle(t, db, "X").ID, 9999, nil)
	assert.ErrorIs(t, err, repository.ErrColumnNotFound)
}

func TestRelocate_CrossBoardRejected(t *testing.T) {
	db := setupOrderingTestDB(t)
	b1 := seedBoard(t, db)
	b2 := seedBoard(t, db)
	src := seedColumn(t, db, b1.ID, "X")
	other := seedColumn(t, db, b2.ID, "Q")
	ord := NewOrdering(db, logger.NewNop())

	_, err := ord.Relocate(t.Context(), cardByTitle(t, db, "X").ID, other.ID, nil)
	assert.ErrorIs(t, err, ErrCrossBoardMove)

	// Nothing moved.
	assert.Equal(t, []string{"X"}, columnTitles(t, db, src.ID))
	assert.Equal(t, []string{"Q"}, columnTitles(t, db, other.ID))
}

func TestRelocate_DoesNotBumpUpdatedAt(t *testing.T) {
	db := setupOrderingTestDB(t)
	b := seedBoard(t, db)
	seedColumn(t, db, b.ID, "X", "Y")
	dst := seedColumn(t, db, b.ID)
	ord := NewOrdering(db, logger.NewNop())

	before := cardByTitle(t, db, "X")
	moved, err := ord.Relocate(t.Context(), before.ID, dst.ID, nil)
	require.NoError(t, err)
	assert.True(t, before.UpdatedAt.Equal(moved.UpdatedAt),
		"relocation must not count as a content edit")
}
