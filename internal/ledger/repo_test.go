package ledger

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monicajeon28/cruiseguide-sub010/pkg/db/dbtest"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/db/models"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/enums"
)

func sampleEntries(saleID int64) []models.LedgerEntry {
	return []models.LedgerEntry{
		{SaleID: saleID, EntryType: enums.LedgerEntryTypeHQNet, LineKey: LineKeyHQNet, Amount: 500_000, Currency: enums.CurrencyKRW, Metadata: models.EntryMetadata{Source: sourceCommissionSplit}},
		{SaleID: saleID, ProfileID: int64Ptr(10), EntryType: enums.LedgerEntryTypeBranchCommission, LineKey: LineKeyBranchCommission, Amount: 100_000, WithholdingAmount: 3_300, Currency: enums.CurrencyKRW},
		{SaleID: saleID, ProfileID: int64Ptr(10), EntryType: enums.LedgerEntryTypeWithholding, LineKey: LineKeyBranchWithholding, Amount: -3_300, Currency: enums.CurrencyKRW, Metadata: models.EntryMetadata{Note: noteBranchWithholding, Annotations: map[string]string{"ticket": "OPS-1"}}},
	}
}

func TestRepositoryBulkInsertAndList(t *testing.T) {
	db := dbtest.OpenSQLite(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.BulkInsert(ctx, sampleEntries(1))
	require.NoError(t, err)
	assert.Equal(t, int64(3), created)

	_, err = repo.BulkInsert(ctx, sampleEntries(2)[:1])
	require.NoError(t, err)

	entries, err := repo.ListBySale(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, LineKeyHQNet, entries[0].LineKey)
	assert.Nil(t, entries[0].ProfileID)
	assert.Equal(t, sourceCommissionSplit, entries[0].Metadata.Source)
	assert.Equal(t, int64(-3_300), entries[2].Amount)
	assert.Equal(t, noteBranchWithholding, entries[2].Metadata.Note)
	assert.Equal(t, "OPS-1", entries[2].Metadata.Annotations["ticket"])
	require.NotNil(t, entries[1].ProfileID)
	assert.Equal(t, int64(10), *entries[1].ProfileID)
	assert.Less(t, entries[0].ID, entries[1].ID)
}

func TestRepositoryBulkInsertSkipsDuplicateLineKeys(t *testing.T) {
	db := dbtest.OpenSQLite(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.BulkInsert(ctx, sampleEntries(1)[:2])
	require.NoError(t, err)

	created, err := repo.BulkInsert(ctx, sampleEntries(1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created)

	entries, err := repo.ListBySale(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	created, err = repo.BulkInsert(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestRepositoryDeleteBySale(t *testing.T) {
	db := dbtest.OpenSQLite(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.BulkInsert(ctx, sampleEntries(1))
	require.NoError(t, err)
	_, err = repo.BulkInsert(ctx, sampleEntries(2))
	require.NoError(t, err)

	deleted, err := repo.DeleteBySale(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	remaining, err := repo.ListBySale(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	other, err := repo.ListBySale(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, other, 3)
}

func TestRepositoryWithTxRollsBack(t *testing.T) {
	db := dbtest.OpenSQLite(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tx := db.Begin()
	require.NoError(t, tx.Error)
	_, err := repo.WithTx(tx).BulkInsert(ctx, sampleEntries(1))
	require.NoError(t, err)
	require.NoError(t, tx.Rollback().Error)

	entries, err := repo.ListBySale(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Same(t, repo, repo.WithTx(nil))
}

func TestRepositoryLockSale(t *testing.T) {
	t.Run("postgres takes a transaction advisory lock", func(t *testing.T) {
		mock := dbtest.NewMockDB(t)
		mock.Mock.ExpectExec(`SELECT pg_advisory_xact_lock\(\$1\)`).
			WithArgs(int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewRepository(mock.DB).LockSale(context.Background(), 42))
		mock.ExpectationsWereMet(t)
	})

	t.Run("sqlite is a no-op", func(t *testing.T) {
		db := dbtest.OpenSQLite(t)
		require.NoError(t, NewRepository(db).LockSale(context.Background(), 42))
	})
}
