package routes

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monicajeon28/cruiseguide-sub010/internal/ledger"
	"github.com/monicajeon28/cruiseguide-sub010/internal/sales"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/config"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/db/models"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/logger"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/metrics"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubLedgerService struct {
	syncedSale int64
	opts       ledger.SyncOptions
}

func (s *stubLedgerService) Sync(_ context.Context, saleID int64, opts ledger.SyncOptions) (*ledger.SyncResult, error) {
	s.syncedSale = saleID
	s.opts = opts
	return &ledger.SyncResult{SaleID: saleID, EntriesCreated: 6}, nil
}

func (s *stubLedgerService) ListBySale(_ context.Context, saleID int64) ([]models.LedgerEntry, error) {
	return []models.LedgerEntry{{ID: 1, SaleID: saleID, LineKey: ledger.LineKeyHQNet}}, nil
}

type stubSalesService struct{}

func (stubSalesService) SummaryForPayee(context.Context, int64) (*sales.Summary, error) {
	return &sales.Summary{TotalSalesCount: 2}, nil
}

func (stubSalesService) SummaryForLead(context.Context, int64) (*sales.Summary, error) {
	return &sales.Summary{TotalSalesCount: 1}, nil
}

func (stubSalesService) InvalidateSale(context.Context, *models.Sale) error { return nil }

func newTestRouter(t *testing.T, redisErr error) (http.Handler, *stubLedgerService, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics.NewLedgerMetrics(reg).ObserveSync(metrics.ResultSuccess, 0, 6)
	ledgerSvc := &stubLedgerService{}
	handler := NewRouter(Params{
		Config: &config.Config{App: config.AppConfig{
			Env:         "dev",
			CORSOrigins: []string{"http://localhost:3000"},
		}},
		Logger:   logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard}),
		DB:       stubPinger{},
		Redis:    stubPinger{err: redisErr},
		Ledger:   ledgerSvc,
		Sales:    stubSalesService{},
		Gatherer: reg,
	})
	return handler, ledgerSvc, reg
}

func TestRouterHealth(t *testing.T) {
	handler, _, _ := newTestRouter(t, nil)

	for _, path := range []string{"/health/live", "/health/ready"} {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, resp.Code, path)
		assert.NotEmpty(t, resp.Header().Get("X-Request-Id"), path)
	}
}

func TestRouterReadyFailsWhenRedisDown(t *testing.T) {
	handler, _, _ := newTestRouter(t, errors.New("dial tcp: connection refused"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestRouterLedgerRoutes(t *testing.T) {
	handler, ledgerSvc, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/sales/42/ledger/sync", strings.NewReader(`{"regenerate":true}`))
	req.Header.Set("X-Actor", "ops")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, int64(42), ledgerSvc.syncedSale)
	assert.True(t, ledgerSvc.opts.Regenerate)
	assert.Equal(t, "ops", ledgerSvc.opts.Actor)

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/admin/sales/42/ledger", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"line_key":"hq_net"`)

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/admin/payees/10/summary", nil))
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/admin/leads/3/summary", nil))
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/admin/sales/42/ledger/sync", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
}

func TestRouterMetricsEndpoint(t *testing.T) {
	handler, _, _ := newTestRouter(t, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "cruiseguide_ledger_sync_total")
	assert.Contains(t, resp.Body.String(), "cruiseguide_ledger_entries_created_total 6")
}
