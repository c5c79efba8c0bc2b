package sales

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/monicajeon28/cruiseguide-sub010/pkg/db/models"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/enums"
	pkgerrors "github.com/monicajeon28/cruiseguide-sub010/pkg/errors"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/logger"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/redis"
)

const (
	scopePayee = "payee"
	scopeLead  = "lead"
)

// Summary is the dashboard aggregate for a payee or lead.
type Summary struct {
	TotalSalesCount      int64             `json:"total_sales_count"`
	TotalSalesAmount     int64             `json:"total_sales_amount"`
	TotalNetRevenue      int64             `json:"total_net_revenue"`
	ConfirmedSalesCount  int64             `json:"confirmed_sales_count"`
	ConfirmedSalesAmount int64             `json:"confirmed_sales_amount"`
	LastSaleAt           *time.Time        `json:"last_sale_at,omitempty"`
	LastSaleStatus       *enums.SaleStatus `json:"last_sale_status,omitempty"`
}

// Service exposes read-only sales summaries and keeps their cache fresh.
type Service interface {
	SummaryForPayee(ctx context.Context, profileID int64) (*Summary, error)
	SummaryForLead(ctx context.Context, leadID int64) (*Summary, error)
	InvalidateSale(ctx context.Context, sale *models.Sale) error
}

type cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SummaryKey(scope, id string) string
}

type service struct {
	repo  Repository
	cache cache
	ttl   time.Duration
	logg  *logger.Logger
}

// NewService wires the summary service. A nil cache disables caching.
func NewService(repo Repository, cache cache, ttl time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, cache: cache, ttl: ttl, logg: logg}, nil
}

func (s *service) SummaryForPayee(ctx context.Context, profileID int64) (*Summary, error) {
	if profileID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile id must be positive")
	}
	return s.summary(ctx, scopePayee, profileID, Filter{PayeeID: &profileID})
}

func (s *service) SummaryForLead(ctx context.Context, leadID int64) (*Summary, error) {
	if leadID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lead id must be positive")
	}
	return s.summary(ctx, scopeLead, leadID, Filter{LeadID: &leadID})
}

// InvalidateSale drops the cached summaries the sale contributes to.
func (s *service) InvalidateSale(ctx context.Context, sale *models.Sale) error {
	if s.cache == nil || sale == nil {
		return nil
	}
	var keys []string
	for _, id := range []*int64{sale.ManagerID, sale.AgentID} {
		if id != nil {
			keys = append(keys, s.cache.SummaryKey(scopePayee, strconv.FormatInt(*id, 10)))
		}
	}
	if sale.LeadID != nil {
		keys = append(keys, s.cache.SummaryKey(scopeLead, strconv.FormatInt(*sale.LeadID, 10)))
	}
	if len(keys) == 0 {
		return nil
	}
	return s.cache.Del(ctx, keys...)
}

func (s *service) summary(ctx context.Context, scope string, id int64, filter Filter) (*Summary, error) {
	key := ""
	if s.cache != nil {
		key = s.cache.SummaryKey(scope, strconv.FormatInt(id, 10))
		if cached, ok := s.fromCache(ctx, key); ok {
			return cached, nil
		}
	}

	totals, err := s.repo.StatusTotals(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales totals")
	}
	latest, err := s.repo.LatestSale(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest sale")
	}

	summary := buildSummary(totals, latest)
	if s.cache != nil {
		s.toCache(ctx, key, summary)
	}
	return summary, nil
}

func buildSummary(totals []StatusTotal, latest *models.Sale) *Summary {
	summary := &Summary{}
	for _, t := range totals {
		summary.TotalSalesCount += t.SaleCount
		summary.TotalSalesAmount += t.SaleAmount
		summary.TotalNetRevenue += t.NetRevenue
		if t.Status == enums.SaleStatusConfirmed {
			summary.ConfirmedSalesCount += t.SaleCount
			summary.ConfirmedSalesAmount += t.SaleAmount
		}
	}
	if latest != nil {
		soldAt := latest.SoldAt
		status := latest.Status
		summary.LastSaleAt = &soldAt
		summary.LastSaleStatus = &status
	}
	return summary
}

// Cache failures degrade to a database read and are never returned to the caller.
func (s *service) fromCache(ctx context.Context, key string) (*Summary, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !redis.IsMiss(err) {
			s.logg.Warn(s.logg.WithField(ctx, "cache_key", key), "summary cache read failed: "+err.Error())
		}
		return nil, false
	}
	var summary Summary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "cache_key", key), "summary cache entry unreadable")
		return nil, false
	}
	return &summary, true
}

func (s *service) toCache(ctx context.Context, key string, summary *Summary) {
	payload, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(payload), s.ttl); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "cache_key", key), "summary cache write failed: "+err.Error())
	}
}
