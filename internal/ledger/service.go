package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/monicajeon28/cruiseguide-sub010/internal/commission"
	"github.com/monicajeon28/cruiseguide-sub010/internal/sales"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/db"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/db/models"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/enums"
	pkgerrors "github.com/monicajeon28/cruiseguide-sub010/pkg/errors"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/logger"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/metrics"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/outbox"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/outbox/payloads"
)

// Service syncs a sale's ledger and serves the per-sale entry list.
type Service interface {
	Sync(ctx context.Context, saleID int64, opts SyncOptions) (*SyncResult, error)
	ListBySale(ctx context.Context, saleID int64) ([]models.LedgerEntry, error)
}

// SyncOptions controls one sync. IncludeHQ defaults to true when nil.
type SyncOptions struct {
	Regenerate       bool
	IncludeHQ        *bool
	ExtraAdjustments []Adjustment
	Actor            string
}

// SyncResult reports the computed split and how many entries were written.
type SyncResult struct {
	SaleID         int64                `json:"sale_id"`
	Breakdown      commission.Breakdown `json:"breakdown"`
	EntriesCreated int64                `json:"entries_created"`
	EntriesDeleted int64                `json:"entries_deleted"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type summaryInvalidator interface {
	InvalidateSale(ctx context.Context, sale *models.Sale) error
}

// txSnapshotSource is implemented by snapshot sources that can read inside the sync transaction.
type txSnapshotSource interface {
	WithTx(tx *gorm.DB) commission.SnapshotSource
}

// ServiceParams collects the collaborators of the sync service. Summaries, Metrics and
// Clock are optional.
type ServiceParams struct {
	Tx        txRunner
	Repo      Repository
	Sales     sales.Repository
	Snapshots commission.SnapshotSource
	Generator *Generator
	Outbox    outboxPublisher
	Summaries summaryInvalidator
	Metrics   *metrics.LedgerMetrics
	Logger    *logger.Logger
	Clock     func() time.Time
}

type service struct {
	tx        txRunner
	repo      Repository
	sales     sales.Repository
	snapshots commission.SnapshotSource
	generator *Generator
	outbox    outboxPublisher
	summaries summaryInvalidator
	metrics   *metrics.LedgerMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires the ledger sync service.
func NewService(p ServiceParams) (Service, error) {
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if p.Sales == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if p.Generator == nil {
		return nil, fmt.Errorf("ledger generator required")
	}
	if p.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if p.Snapshots == nil {
		p.Snapshots = commission.NoSnapshots{}
	}
	if p.Clock == nil {
		p.Clock = time.Now
	}
	return &service{
		tx:        p.Tx,
		repo:      p.Repo,
		sales:     p.Sales,
		snapshots: p.Snapshots,
		generator: p.Generator,
		outbox:    p.Outbox,
		summaries: p.Summaries,
		metrics:   p.Metrics,
		logg:      p.Logger,
		now:       p.Clock,
	}, nil
}

func (s *service) ListBySale(ctx context.Context, saleID int64) ([]models.LedgerEntry, error) {
	if saleID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id must be positive")
	}
	entries, err := s.repo.ListBySale(ctx, saleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}
	return entries, nil
}

// Sync recomputes the split for a sale and journals it in one transaction:
// lock, load, compute, clear (when regenerating), persist, stamp the sale, queue the event.
// Any failure rolls the whole unit back. Retrying with Regenerate is safe.
func (s *service) Sync(ctx context.Context, saleID int64, opts SyncOptions) (*SyncResult, error) {
	start := time.Now()
	ctx = s.logg.WithSaleID(ctx, saleID)
	ctx = s.logg.WithField(ctx, "regenerate", opts.Regenerate)
	if opts.Actor != "" {
		ctx = s.logg.WithActor(ctx, opts.Actor)
	}
	s.logg.Info(ctx, "ledger.sync.start")

	result, sale, err := s.sync(ctx, saleID, opts)
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.ObserveSync(resultLabel(err), elapsed, 0)
		switch {
		case pkgerrors.IsCode(err, pkgerrors.CodeNotFound), pkgerrors.IsCode(err, pkgerrors.CodeValidation),
			pkgerrors.IsCode(err, pkgerrors.CodeConflict):
			s.logg.Warn(ctx, "ledger.sync.rejected: "+err.Error())
		default:
			s.logg.Error(ctx, "ledger.sync.failed", err)
		}
		return nil, err
	}
	s.metrics.ObserveSync(metrics.ResultSuccess, elapsed, result.EntriesCreated)

	if s.summaries != nil {
		if err := s.summaries.InvalidateSale(ctx, sale); err != nil {
			s.logg.Warn(ctx, "summary cache invalidation failed: "+err.Error())
		}
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"entries_created": result.EntriesCreated,
		"entries_deleted": result.EntriesDeleted,
		"duration_ms":     elapsed.Milliseconds(),
	}), "ledger.sync.complete")
	return result, nil
}

func (s *service) sync(ctx context.Context, saleID int64, opts SyncOptions) (*SyncResult, *models.Sale, error) {
	if saleID <= 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id must be positive")
	}

	var (
		result *SyncResult
		loaded *models.Sale
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ledgerRepo := s.repo.WithTx(tx)
		salesRepo := s.sales.WithTx(tx)

		if err := ledgerRepo.LockSale(ctx, saleID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock sale")
		}

		sale, err := salesRepo.FindWithPayees(ctx, saleID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
		}
		if err := validateSale(sale); err != nil {
			return err
		}

		input, err := s.buildInput(ctx, tx, sale, opts)
		if err != nil {
			return err
		}
		firstAdjustment := 1
		if !opts.Regenerate && len(opts.ExtraAdjustments) > 0 {
			existing, err := ledgerRepo.ListBySale(ctx, sale.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ledger entries")
			}
			firstAdjustment = NextAdjustment(existing)
		}
		generated, err := s.generator.Generate(GenerateOptions{
			Input:            input,
			SaleID:           sale.ID,
			ManagerProfileID: sale.ManagerID,
			AgentProfileID:   sale.AgentID,
			ExtraAdjustments: opts.ExtraAdjustments,
			FirstAdjustment:  firstAdjustment,
		})
		if err != nil {
			return err
		}
		s.logSkippedPayees(ctx, sale, generated.Breakdown)
		for i := range generated.Entries {
			generated.Entries[i].Metadata.SyncedBy = opts.Actor
		}

		var deleted int64
		if opts.Regenerate {
			if deleted, err = ledgerRepo.DeleteBySale(ctx, sale.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear ledger entries")
			}
		}

		created, err := ledgerRepo.BulkInsert(ctx, generated.Entries)
		if err != nil {
			return storageError(err, "insert ledger entries")
		}

		b := generated.Breakdown
		if err := salesRepo.StampBreakdown(ctx, sale.ID, sales.Stamp{
			NetRevenue:         b.NetRevenue,
			BranchCommission:   b.BranchCommission,
			SalesCommission:    b.SalesCommission,
			OverrideCommission: b.OverrideCommission,
			Currency:           b.Currency,
			SnapshotApplied:    input.Snapshot != nil,
			SyncedAt:           s.now().UTC(),
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp sale")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventLedgerSynced,
			AggregateType: enums.AggregateSale,
			AggregateID:   strconv.FormatInt(sale.ID, 10),
			Actor:         actorRef(opts.Actor),
			Version:       1,
			Data: payloads.LedgerSyncedEvent{
				SaleID:             sale.ID,
				Regenerated:        opts.Regenerate,
				EntriesCreated:     created,
				Currency:           b.Currency,
				NetRevenue:         b.NetRevenue,
				HQNet:              b.HQNet,
				BranchCommission:   b.BranchCommission,
				SalesCommission:    b.SalesCommission,
				OverrideCommission: b.OverrideCommission,
				TotalWithholding:   b.TotalWithholding,
			},
		}); err != nil {
			return storageError(err, "queue ledger event")
		}

		result = &SyncResult{SaleID: sale.ID, Breakdown: b, EntriesCreated: created, EntriesDeleted: deleted}
		loaded = sale
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "commit ledger sync")
		}
		return nil, nil, err
	}
	return result, loaded, nil
}

// buildInput maps the sale onto the calculator input. Payee rates fall back to the platform
// default. The snapshot is read when the sale leaves a commission or its currency unset, or
// when an earlier sync stamped snapshot-derived values onto it.
func (s *service) buildInput(ctx context.Context, tx *gorm.DB, sale *models.Sale, opts SyncOptions) (commission.Input, error) {
	defaults := s.generator.Defaults()
	input := commission.Input{
		SaleAmount:             decimal.NewFromInt(sale.SaleAmount),
		CostAmount:             decimal.NewFromInt(sale.CostAmount),
		BranchCommission:       commission.OptionalAmount(sale.BranchCommission),
		SalesCommission:        commission.OptionalAmount(sale.SalesCommission),
		OverrideCommission:     commission.OptionalAmount(sale.OverrideCommission),
		WithholdingRate:        payeeRate(sale.Agent, defaults.WithholdingRate),
		ManagerWithholdingRate: payeeRate(sale.Manager, defaults.WithholdingRate),
		IncludeHQNet:           opts.IncludeHQ,
	}
	if sale.Currency != nil {
		input.Currency = *sale.Currency
	}

	complete := sale.BranchCommission != nil && sale.SalesCommission != nil &&
		sale.OverrideCommission != nil && sale.Currency != nil
	if complete && !sale.SnapshotApplied {
		return input, nil
	}
	source := s.snapshots
	if bound, ok := source.(txSnapshotSource); ok {
		source = bound.WithTx(tx)
	}
	snapshot, err := source.DefaultsFor(ctx, sale.ID)
	if err != nil {
		return commission.Input{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tier snapshot")
	}
	input.Snapshot = snapshot
	return input, nil
}

func (s *service) logSkippedPayees(ctx context.Context, sale *models.Sale, b commission.Breakdown) {
	if b.BranchCommission > 0 && sale.ManagerID == nil {
		s.logg.Debug(ctx, "branch commission has no manager, entry skipped")
	}
	if b.OverrideCommission > 0 && OverridePayee(nil, sale.ManagerID) == nil {
		s.logg.Debug(ctx, "override commission has no payee, entry skipped")
	}
	if b.SalesCommission > 0 && sale.AgentID == nil {
		s.logg.Debug(ctx, "sales commission has no agent, entry skipped")
	}
}

// validateSale rejects sales the calculator would silently coerce, and payee references
// whose profile no longer exists.
func validateSale(sale *models.Sale) error {
	if sale.SaleAmount < 0 || sale.CostAmount < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale amounts must not be negative")
	}
	if sale.CostAmount > sale.SaleAmount {
		return pkgerrors.New(pkgerrors.CodeValidation, "cost amount exceeds sale amount")
	}
	for _, c := range []*int64{sale.BranchCommission, sale.SalesCommission, sale.OverrideCommission} {
		if c != nil && *c < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "commission amounts must not be negative")
		}
	}
	if sale.ManagerID != nil && sale.Manager == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "manager profile not found")
	}
	if sale.AgentID != nil && sale.Agent == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "agent profile not found")
	}
	return nil
}

// storageError maps a unique violation to a conflict and anything else to a retryable dependency error.
func storageError(err error, message string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}

func payeeRate(profile *models.PayeeProfile, fallback decimal.Decimal) decimal.NullDecimal {
	if profile != nil && profile.WithholdingRate.Valid && !profile.WithholdingRate.Decimal.IsNegative() {
		return profile.WithholdingRate
	}
	return decimal.NewNullDecimal(fallback)
}

func actorRef(actor string) *outbox.ActorRef {
	if actor == "" {
		return nil
	}
	return &outbox.ActorRef{Name: actor}
}

func resultLabel(err error) string {
	switch {
	case pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		return metrics.ResultNotFound
	case pkgerrors.IsCode(err, pkgerrors.CodeValidation):
		return metrics.ResultValidation
	case pkgerrors.IsCode(err, pkgerrors.CodeConflict):
		return metrics.ResultConflict
	default:
		return metrics.ResultError
	}
}
