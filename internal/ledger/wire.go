package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/monicajeon28/cruiseguide-sub010/internal/commission"
	"github.com/monicajeon28/cruiseguide-sub010/internal/sales"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/config"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/db"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/enums"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/logger"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/metrics"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/outbox"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/redis"
)

// StackParams are the process-level resources the ledger stack is built on. A nil Cache
// serves summaries straight from the database.
type StackParams struct {
	Config  config.LedgerConfig
	DB      *db.Client
	Cache   *redis.Client
	Metrics *metrics.LedgerMetrics
	Logger  *logger.Logger
}

type summaryCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SummaryKey(scope, id string) string
}

// Stack groups the services both binaries share.
type Stack struct {
	Ledger    Service
	Sales     sales.Service
	SalesRepo sales.Repository
}

// NewStack wires the calculator, generator, repositories and services from config.
func NewStack(p StackParams) (*Stack, error) {
	if p.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	currency, err := enums.ParseCurrency(p.Config.DefaultCurrency)
	if err != nil {
		return nil, fmt.Errorf("ledger default currency: %w", err)
	}

	calc := commission.NewCalculator(commission.Defaults{
		WithholdingRate: p.Config.DefaultWithholdingRate,
		Currency:        currency,
	})
	generator, err := NewGenerator(calc)
	if err != nil {
		return nil, err
	}

	var cache summaryCache
	if p.Cache != nil {
		cache = p.Cache
	}

	gormDB := p.DB.DB()
	salesRepo := sales.NewRepository(gormDB)
	salesService, err := sales.NewService(salesRepo, cache, p.Config.SummaryCacheTTL, p.Logger)
	if err != nil {
		return nil, fmt.Errorf("sales service: %w", err)
	}

	ledgerService, err := NewService(ServiceParams{
		Tx:        p.DB,
		Repo:      NewRepository(gormDB),
		Sales:     salesRepo,
		Snapshots: sales.NewSnapshotRepository(gormDB),
		Generator: generator,
		Outbox:    outbox.NewService(outbox.NewRepository(gormDB), p.Logger),
		Summaries: salesService,
		Metrics:   p.Metrics,
		Logger:    p.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("ledger service: %w", err)
	}

	return &Stack{Ledger: ledgerService, Sales: salesService, SalesRepo: salesRepo}, nil
}
