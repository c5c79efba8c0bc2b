package sales

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/monicajeon28/cruiseguide-sub010/pkg/db/models"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/enums"
)

// Stamp is the computed split written back onto a sale after a ledger sync.
type Stamp struct {
	NetRevenue         int64
	BranchCommission   int64
	SalesCommission    int64
	OverrideCommission int64
	Currency           enums.Currency
	SnapshotApplied    bool
	SyncedAt           time.Time
}

// Filter scopes summary queries to a payee (as manager or agent) or a lead.
type Filter struct {
	PayeeID *int64
	LeadID  *int64
}

// StatusTotal aggregates the sales sharing one status.
type StatusTotal struct {
	Status     enums.SaleStatus
	SaleCount  int64
	SaleAmount int64
	NetRevenue int64
}

// Repository manages persistence for sales and their payees.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindWithPayees(ctx context.Context, saleID int64) (*models.Sale, error)
	StampBreakdown(ctx context.Context, saleID int64, stamp Stamp) error
	FindUnsyncedConfirmed(ctx context.Context, soldBefore time.Time, limit int) ([]int64, error)
	StatusTotals(ctx context.Context, filter Filter) ([]StatusTotal, error)
	LatestSale(ctx context.Context, filter Filter) (*models.Sale, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sales repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindWithPayees loads the sale with its manager and agent profiles.
// It returns gorm.ErrRecordNotFound when the sale does not exist.
func (r *repository) FindWithPayees(ctx context.Context, saleID int64) (*models.Sale, error) {
	var sale models.Sale
	if err := r.db.WithContext(ctx).
		Preload("Manager").
		Preload("Agent").
		First(&sale, "id = ?", saleID).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) StampBreakdown(ctx context.Context, saleID int64, stamp Stamp) error {
	res := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("id = ?", saleID).
		Updates(map[string]any{
			"net_revenue":         stamp.NetRevenue,
			"branch_commission":   stamp.BranchCommission,
			"sales_commission":    stamp.SalesCommission,
			"override_commission": stamp.OverrideCommission,
			"currency":            stamp.Currency,
			"snapshot_applied":    stamp.SnapshotApplied,
			"ledger_synced_at":    stamp.SyncedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindUnsyncedConfirmed returns confirmed sales sold before the cutoff that were never synced, oldest first.
func (r *repository) FindUnsyncedConfirmed(ctx context.Context, soldBefore time.Time, limit int) ([]int64, error) {
	var ids []int64
	q := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("status = ? AND ledger_synced_at IS NULL AND sold_at < ?", enums.SaleStatusConfirmed, soldBefore).
		Order("sold_at ASC").
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// StatusTotals groups the filtered sales by status. Unsynced sales count their gross margin as net revenue.
func (r *repository) StatusTotals(ctx context.Context, filter Filter) ([]StatusTotal, error) {
	var rows []StatusTotal
	q, err := r.scoped(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := q.
		Select(`status,
  COUNT(*) AS sale_count,
  COALESCE(SUM(sale_amount), 0) AS sale_amount,
  COALESCE(SUM(COALESCE(net_revenue, sale_amount - cost_amount)), 0) AS net_revenue`).
		Group("status").
		Order("status ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// LatestSale returns the most recently sold sale matching filter, or nil when there is none.
func (r *repository) LatestSale(ctx context.Context, filter Filter) (*models.Sale, error) {
	q, err := r.scoped(ctx, filter)
	if err != nil {
		return nil, err
	}
	var sale models.Sale
	err = q.Order("sold_at DESC").Order("id DESC").Take(&sale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) scoped(ctx context.Context, filter Filter) (*gorm.DB, error) {
	q := r.db.WithContext(ctx).Model(&models.Sale{})
	switch {
	case filter.PayeeID != nil:
		return q.Where("manager_id = ? OR agent_id = ?", *filter.PayeeID, *filter.PayeeID), nil
	case filter.LeadID != nil:
		return q.Where("lead_id = ?", *filter.LeadID), nil
	default:
		return nil, errors.New("sales filter requires a payee or lead")
	}
}
