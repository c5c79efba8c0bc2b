package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/monicajeon28/cruiseguide-sub010/internal/ledger"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/logger"
)

const (
	ledgerBackfillJobName = "ledger-backfill"
	ledgerBackfillActor   = "cron:" + ledgerBackfillJobName
	defaultBackfillBatch  = 100
	defaultBackfillMinAge = 2 * time.Minute
)

// LedgerBackfillJobParams configure the ledger backfill job.
type LedgerBackfillJobParams struct {
	Logger    *logger.Logger
	Sales     unsyncedSaleFinder
	Ledger    ledgerSyncer
	BatchSize int
	MinAge    time.Duration
}

type unsyncedSaleFinder interface {
	FindUnsyncedConfirmed(ctx context.Context, soldBefore time.Time, limit int) ([]int64, error)
}

type ledgerSyncer interface {
	Sync(ctx context.Context, saleID int64, opts ledger.SyncOptions) (*ledger.SyncResult, error)
}

// NewLedgerBackfillJob builds the job that journals confirmed sales nobody synced yet.
// MinAge leaves recent sales to the confirmation workflow's own sync.
func NewLedgerBackfillJob(params LedgerBackfillJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sales == nil {
		return nil, fmt.Errorf("sales finder required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger syncer required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultBackfillBatch
	}
	minAge := params.MinAge
	if minAge < 0 {
		minAge = defaultBackfillMinAge
	}
	return &ledgerBackfillJob{
		logg:   params.Logger,
		sales:  params.Sales,
		ledger: params.Ledger,
		batch:  batch,
		minAge: minAge,
		now:    time.Now,
	}, nil
}

type ledgerBackfillJob struct {
	logg   *logger.Logger
	sales  unsyncedSaleFinder
	ledger ledgerSyncer
	batch  int
	minAge time.Duration
	now    func() time.Time
}

func (j *ledgerBackfillJob) Name() string { return ledgerBackfillJobName }

// Run syncs one batch with Regenerate so a partially journaled sale converges.
// A failing sale does not stop the rest of the batch.
func (j *ledgerBackfillJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.minAge)
	ids, err := j.sales.FindUnsyncedConfirmed(ctx, cutoff, j.batch)
	if err != nil {
		return fmt.Errorf("query unsynced sales: %w", err)
	}

	var (
		errs    []error
		synced  int
		entries int64
	)
	for _, id := range ids {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		result, err := j.ledger.Sync(ctx, id, ledger.SyncOptions{Regenerate: true, Actor: ledgerBackfillActor})
		if err != nil {
			errs = append(errs, fmt.Errorf("sync sale %d: %w", id, err))
			continue
		}
		synced++
		entries += result.EntriesCreated
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates":      len(ids),
		"synced":          synced,
		"failed":          len(ids) - synced,
		"entries_created": entries,
	})
	j.logg.Info(logCtx, "ledger backfill batch complete")
	return multierr.Combine(errs...)
}
