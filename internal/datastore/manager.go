// Package datastore owns database lifecycle: opening the SQLite or MySQL
// backend, migrating the schema, and handing out the shared *gorm.DB.
package datastore

import (
	"fmt"
	"path/filepath"

	"github.com/flowboardhq/flowboard/internal/datastore/entities"
	"github.com/flowboardhq/flowboard/internal/logger"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

// Manager owns a database connection and its schema.
type Manager struct {
	db  *gorm.DB
	log logger.Logger
}

// NewSQLiteManager opens (or creates) the SQLite database file under dataDir.
func NewSQLiteManager(dataDir string, log logger.Logger) (*Manager, error) {
	path := filepath.Join(dataDir, "flowboard.db")
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=ON"), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	return newManager(db, log)
}

// NewMySQLManager opens a MySQL database from a DSN.
func NewMySQLManager(dsn string, log logger.Logger) (*Manager, error) {
	db, err := gorm.Open(mysql.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql database: %w", err)
	}
	return newManager(db, log)
}

// NewManagerFromDB wraps an already-open gorm connection. Used by tests
// and by hosts that manage their own connection pool.
func NewManagerFromDB(db *gorm.DB, log logger.Logger) (*Manager, error) {
	return newManager(db, log)
}

func gormConfig() *gorm.Config {
	// gorm's own logger is silenced; query failures surface as errors.
	return &gorm.Config{Logger: gorm_logger.Default.LogMode(gorm_logger.Silent)}
}

func newManager(db *gorm.DB, log logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.NewNop()
	}
	m := &Manager{db: db, log: log}
	if err := m.migrate(); err != nil {
		return nil, err
	}
	return m, nil
}

// migrate creates or updates all tables.
func (m *Manager) migrate() error {
	err := m.db.AutoMigrate(
		&entities.Board{},
		&entities.Column{},
		&entities.Card{},
		&entities.CardAssignee{},
		&entities.CardTag{},
		&entities.AutomationRule{},
		&entities.AutomationRun{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	m.log.Debug("database schema migrated")
	return nil
}

// DB returns the underlying gorm connection.
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Close closes the underlying connection pool.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
