// Package dbtest opens throwaway databases for repository and service tests.
package dbtest

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Schema mirrors the goose migrations in SQLite syntax.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS payee_profiles (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  display_name TEXT NOT NULL,
  role TEXT NOT NULL,
  reports_to_id INTEGER,
  withholding_rate NUMERIC,
  created_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS sales (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  lead_id INTEGER,
  sale_amount INTEGER NOT NULL,
  cost_amount INTEGER NOT NULL DEFAULT 0,
  currency TEXT,
  manager_id INTEGER,
  agent_id INTEGER,
  branch_commission INTEGER,
  sales_commission INTEGER,
  override_commission INTEGER,
  net_revenue INTEGER,
  status TEXT NOT NULL,
  sold_at DATETIME NOT NULL,
  ledger_synced_at DATETIME,
  snapshot_applied INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS commission_tier_snapshots (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sale_id INTEGER NOT NULL UNIQUE,
  hq_share_amount INTEGER,
  branch_share_amount INTEGER,
  sales_share_amount INTEGER,
  override_amount INTEGER,
  currency TEXT,
  created_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS ledger_entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sale_id INTEGER NOT NULL,
  profile_id INTEGER,
  entry_type TEXT NOT NULL,
  line_key TEXT NOT NULL,
  amount INTEGER NOT NULL,
  withholding_amount INTEGER NOT NULL DEFAULT 0,
  currency TEXT NOT NULL,
  is_settled INTEGER NOT NULL DEFAULT 0,
  metadata TEXT,
  created_at DATETIME,
  UNIQUE (sale_id, line_key)
);`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
}

// OpenSQLite returns an isolated in-memory database with the ledger schema applied.
// Each call gets its own database so tests in one package do not share rows.
func OpenSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range Schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

// MockDB wraps a gorm Postgres dialect over sqlmock for asserting Postgres-only SQL.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB opens a sqlmock-backed Postgres connection. It is closed on test cleanup.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	t.Cleanup(func() { _ = mockDB.Close() })
	return &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
}

// ExpectationsWereMet fails the test when queued SQL expectations were not consumed.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet())
}
