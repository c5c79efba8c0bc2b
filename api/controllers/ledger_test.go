package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monicajeon28/cruiseguide-sub010/internal/commission"
	"github.com/monicajeon28/cruiseguide-sub010/internal/ledger"
	"github.com/monicajeon28/cruiseguide-sub010/internal/sales"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/db/models"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/enums"
	pkgerrors "github.com/monicajeon28/cruiseguide-sub010/pkg/errors"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/logger"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/types"
)

type testLedgerService struct {
	syncFn func(ctx context.Context, saleID int64, opts ledger.SyncOptions) (*ledger.SyncResult, error)
	listFn func(ctx context.Context, saleID int64) ([]models.LedgerEntry, error)
}

func (s *testLedgerService) Sync(ctx context.Context, saleID int64, opts ledger.SyncOptions) (*ledger.SyncResult, error) {
	if s.syncFn != nil {
		return s.syncFn(ctx, saleID, opts)
	}
	return &ledger.SyncResult{SaleID: saleID}, nil
}

func (s *testLedgerService) ListBySale(ctx context.Context, saleID int64) ([]models.LedgerEntry, error) {
	if s.listFn != nil {
		return s.listFn(ctx, saleID)
	}
	return nil, nil
}

type testSalesService struct {
	payeeFn func(ctx context.Context, profileID int64) (*sales.Summary, error)
	leadFn  func(ctx context.Context, leadID int64) (*sales.Summary, error)
}

func (s *testSalesService) SummaryForPayee(ctx context.Context, profileID int64) (*sales.Summary, error) {
	return s.payeeFn(ctx, profileID)
}

func (s *testSalesService) SummaryForLead(ctx context.Context, leadID int64) (*sales.Summary, error) {
	return s.leadFn(ctx, leadID)
}

func (s *testSalesService) InvalidateSale(context.Context, *models.Sale) error { return nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func decodeError(t *testing.T, body io.Reader) types.APIError {
	t.Helper()
	var envelope types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(body).Decode(&envelope))
	return envelope.Error
}

func TestSyncSaleLedgerPassesOptions(t *testing.T) {
	var got ledger.SyncOptions
	var gotSale int64
	svc := &testLedgerService{
		syncFn: func(_ context.Context, saleID int64, opts ledger.SyncOptions) (*ledger.SyncResult, error) {
			gotSale = saleID
			got = opts
			return &ledger.SyncResult{
				SaleID:         saleID,
				EntriesCreated: 8,
				Breakdown:      commission.Breakdown{NetRevenue: 800000, HQNet: 500000, Currency: enums.CurrencyKRW},
			}, nil
		},
	}

	body := `{"regenerate":true,"include_hq":false,"adjustments":[{"amount":-2000,"payee_id":20,"note":" refund fee "},{"type":"bonus","amount":500}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/sales/7/ledger/sync", strings.NewReader(body))
	req.Header.Set(ActorHeader, "ops@cruiseguide")
	req = withParam(req, "saleId", "7")
	resp := httptest.NewRecorder()
	SyncSaleLedger(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, int64(7), gotSale)
	assert.True(t, got.Regenerate)
	require.NotNil(t, got.IncludeHQ)
	assert.False(t, *got.IncludeHQ)
	assert.Equal(t, "ops@cruiseguide", got.Actor)
	require.Len(t, got.ExtraAdjustments, 2)
	assert.Equal(t, enums.LedgerEntryTypeAdjustment, got.ExtraAdjustments[0].Type)
	assert.Equal(t, int64(-2000), got.ExtraAdjustments[0].Amount)
	assert.Equal(t, "refund fee", got.ExtraAdjustments[0].Metadata.Note)
	assert.Equal(t, enums.LedgerEntryType("BONUS"), got.ExtraAdjustments[1].Type)

	var envelope struct {
		Data ledger.SyncResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, int64(8), envelope.Data.EntriesCreated)
	assert.Equal(t, int64(500000), envelope.Data.Breakdown.HQNet)
}

func TestSyncSaleLedgerEmptyBodyDefaults(t *testing.T) {
	var got ledger.SyncOptions
	svc := &testLedgerService{
		syncFn: func(_ context.Context, saleID int64, opts ledger.SyncOptions) (*ledger.SyncResult, error) {
			got = opts
			return &ledger.SyncResult{SaleID: saleID}, nil
		},
	}
	req := withParam(httptest.NewRequest(http.MethodPost, "/api/v1/admin/sales/3/ledger/sync", nil), "saleId", "3")
	resp := httptest.NewRecorder()
	SyncSaleLedger(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.False(t, got.Regenerate)
	assert.Nil(t, got.IncludeHQ)
	assert.Equal(t, "admin", got.Actor)
	assert.Empty(t, got.ExtraAdjustments)
}

func TestSyncSaleLedgerRejectsBadInput(t *testing.T) {
	called := false
	svc := &testLedgerService{
		syncFn: func(context.Context, int64, ledger.SyncOptions) (*ledger.SyncResult, error) {
			called = true
			return nil, nil
		},
	}
	cases := []struct {
		name   string
		saleID string
		body   string
	}{
		{name: "non numeric sale", saleID: "abc", body: `{}`},
		{name: "zero amount adjustment", saleID: "1", body: `{"adjustments":[{"amount":0}]}`},
		{name: "unknown field", saleID: "1", body: `{"regen":true}`},
		{name: "bad payee id", saleID: "1", body: `{"adjustments":[{"amount":10,"payee_id":-4}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			req = withParam(req, "saleId", tc.saleID)
			resp := httptest.NewRecorder()
			SyncSaleLedger(svc, testLogger())(resp, req)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Equal(t, string(pkgerrors.CodeValidation), decodeError(t, resp.Body).Code)
		})
	}
	assert.False(t, called)
}

func TestSyncSaleLedgerMapsServiceErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "not found", err: pkgerrors.New(pkgerrors.CodeNotFound, "sale not found"), wantStatus: http.StatusNotFound, wantMsg: "sale not found"},
		{name: "validation", err: pkgerrors.New(pkgerrors.CodeValidation, "cost exceeds sale amount"), wantStatus: http.StatusBadRequest, wantMsg: "cost exceeds sale amount"},
		{name: "dependency", err: pkgerrors.New(pkgerrors.CodeDependency, "acquire sale lock"), wantStatus: http.StatusServiceUnavailable, wantMsg: "temporarily unavailable, try again"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &testLedgerService{
				syncFn: func(context.Context, int64, ledger.SyncOptions) (*ledger.SyncResult, error) {
					return nil, tc.err
				},
			}
			req := withParam(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)), "saleId", "9")
			resp := httptest.NewRecorder()
			SyncSaleLedger(svc, testLogger())(resp, req)
			assert.Equal(t, tc.wantStatus, resp.Code)
			assert.Equal(t, tc.wantMsg, decodeError(t, resp.Body).Message)
		})
	}
}

func TestListSaleLedger(t *testing.T) {
	svc := &testLedgerService{
		listFn: func(_ context.Context, saleID int64) ([]models.LedgerEntry, error) {
			return []models.LedgerEntry{
				{ID: 1, SaleID: saleID, EntryType: enums.LedgerEntryTypeHQNet, LineKey: ledger.LineKeyHQNet, Amount: 500000, Currency: enums.CurrencyKRW},
			}, nil
		},
	}
	req := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "saleId", "5")
	resp := httptest.NewRecorder()
	ListSaleLedger(svc, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var envelope struct {
		Data struct {
			SaleID  int64                `json:"sale_id"`
			Entries []models.LedgerEntry `json:"entries"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, int64(5), envelope.Data.SaleID)
	require.Len(t, envelope.Data.Entries, 1)
	assert.Equal(t, "hq_net", envelope.Data.Entries[0].LineKey)
}

func TestListSaleLedgerEmpty(t *testing.T) {
	req := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "saleId", "5")
	resp := httptest.NewRecorder()
	ListSaleLedger(&testLedgerService{}, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"entries":[]`)
}

func TestSalesSummaryHandlers(t *testing.T) {
	last := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var payeeID, leadID int64
	svc := &testSalesService{
		payeeFn: func(_ context.Context, id int64) (*sales.Summary, error) {
			payeeID = id
			return &sales.Summary{TotalSalesCount: 6, TotalNetRevenue: 288000, LastSaleAt: &last}, nil
		},
		leadFn: func(_ context.Context, id int64) (*sales.Summary, error) {
			leadID = id
			return &sales.Summary{}, nil
		},
	}

	req := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "profileId", "10")
	resp := httptest.NewRecorder()
	PayeeSalesSummary(svc, testLogger())(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, int64(10), payeeID)
	var envelope struct {
		Data sales.Summary `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, int64(288000), envelope.Data.TotalNetRevenue)

	req = withParam(httptest.NewRequest(http.MethodGet, "/", nil), "leadId", "77")
	resp = httptest.NewRecorder()
	LeadSalesSummary(svc, testLogger())(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, int64(77), leadID)

	req = withParam(httptest.NewRequest(http.MethodGet, "/", nil), "leadId", "0")
	resp = httptest.NewRecorder()
	LeadSalesSummary(svc, testLogger())(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHandlersRequireServices(t *testing.T) {
	req := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "saleId", "1")
	resp := httptest.NewRecorder()
	ListSaleLedger(nil, testLogger())(resp, req)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}
