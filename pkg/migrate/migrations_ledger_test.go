package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/monicajeon28/cruiseguide-sub010/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestLedgerEntriesMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_ledger_entries")
	checks := []string{
		"CREATE TABLE IF NOT EXISTS ledger_entries",
		"CONSTRAINT ux_ledger_entries_sale_line UNIQUE (sale_id, line_key)",
		"FOREIGN KEY (sale_id) REFERENCES sales(id) ON DELETE CASCADE",
		"withholding_amount BIGINT NOT NULL DEFAULT 0",
		"metadata JSONB",
		"DROP TABLE IF EXISTS ledger_entries",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSalesMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_sales")
	checks := []string{
		"CREATE TABLE IF NOT EXISTS sales",
		"FOREIGN KEY (manager_id) REFERENCES payee_profiles(id)",
		"FOREIGN KEY (agent_id) REFERENCES payee_profiles(id)",
		"ledger_synced_at TIMESTAMPTZ NULL",
		"WHERE ledger_synced_at IS NULL AND status = 'CONFIRMED'",
		"DROP TABLE IF EXISTS sales",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPayeeProfilesMigrationUsesRateColumn(t *testing.T) {
	content := readMigration(t, "create_payee_profiles")
	for _, sub := range []string{
		"withholding_rate NUMERIC(6,3) NULL",
		"reports_to_id BIGINT NULL",
		"CHECK (role IN ('MANAGER', 'AGENT'))",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSnapshotMigrationIsOnePerSale(t *testing.T) {
	content := readMigration(t, "create_commission_tier_snapshots")
	if !strings.Contains(content, "UNIQUE (sale_id)") {
		t.Errorf("commission_tier_snapshots must be unique per sale")
	}
}

func TestSalesSnapshotAppliedMigration(t *testing.T) {
	content := readMigration(t, "add_sales_snapshot_applied")
	for _, sub := range []string{
		"ADD COLUMN IF NOT EXISTS snapshot_applied BOOLEAN NOT NULL DEFAULT FALSE",
		"DROP COLUMN IF EXISTS snapshot_applied",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatalf("expected invalid filename error")
	}
}

func TestValidateDirRejectsMisorderedOrUnbalancedMarkers(t *testing.T) {
	cases := map[string]string{
		"down before up": "-- +goose Down\n-- +goose Up\n",
		"unbalanced":     "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n",
		"missing down":   "-- +goose Up\nSELECT 1;\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "20260301090000_broken.sql"), []byte(body), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if err := migrate.ValidateDir(dir); err == nil {
				t.Fatalf("expected %s to be rejected", name)
			}
		})
	}
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Payout Batches")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_payout_batches.sql") {
		t.Fatalf("unexpected path %q", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
	if _, err := migrate.CreateSQLMigration(dir, "--"); err == nil {
		t.Fatalf("expected empty name to be rejected")
	}
}
