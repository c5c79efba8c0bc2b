package ledger

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/monicajeon28/cruiseguide-sub010/pkg/db/models"
)

// Repository manages persistence for ledger entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LockSale(ctx context.Context, saleID int64) error
	DeleteBySale(ctx context.Context, saleID int64) (int64, error)
	BulkInsert(ctx context.Context, entries []models.LedgerEntry) (int64, error)
	ListBySale(ctx context.Context, saleID int64) ([]models.LedgerEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// LockSale takes a transaction-scoped advisory lock on the sale so concurrent syncs of the
// same sale serialize. It must run inside the sync transaction. Drivers without advisory
// locks rely on the transaction and the unique line key instead.
func (r *repository) LockSale(ctx context.Context, saleID int64) error {
	if r.db.Dialector == nil || r.db.Dialector.Name() != "postgres" {
		return nil
	}
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", saleID).Error
}

func (r *repository) DeleteBySale(ctx context.Context, saleID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Delete(&models.LedgerEntry{})
	return res.RowsAffected, res.Error
}

// BulkInsert writes entries, skipping any whose (sale_id, line_key) already exists.
// It returns the number of rows actually inserted.
func (r *repository) BulkInsert(ctx context.Context, entries []models.LedgerEntry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sale_id"}, {Name: "line_key"}},
			DoNothing: true,
		}).
		Create(&entries)
	return res.RowsAffected, res.Error
}

func (r *repository) ListBySale(ctx context.Context, saleID int64) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
