package sales

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/monicajeon28/cruiseguide-sub010/internal/commission"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/db/models"
)

// SnapshotRepository serves tier snapshots from commission_tier_snapshots.
type SnapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository returns a commission.SnapshotSource backed by the database.
func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// WithTx binds the snapshot reads to the provided transaction.
func (r *SnapshotRepository) WithTx(tx *gorm.DB) commission.SnapshotSource {
	if tx == nil {
		return r
	}
	return &SnapshotRepository{db: tx}
}

// DefaultsFor implements commission.SnapshotSource.
func (r *SnapshotRepository) DefaultsFor(ctx context.Context, saleID int64) (*commission.TierSnapshot, error) {
	var row models.CommissionTierSnapshot
	err := r.db.WithContext(ctx).Where("sale_id = ?", saleID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	snap := &commission.TierSnapshot{
		HQShare:       row.HQShareAmount,
		BranchShare:   row.BranchShareAmount,
		SalesShare:    row.SalesShareAmount,
		OverrideShare: row.OverrideAmount,
	}
	if row.Currency != nil {
		snap.Currency = *row.Currency
	}
	return snap, nil
}
