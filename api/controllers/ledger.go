package controllers

import (
	"net/http"
	"strings"

	"github.com/monicajeon28/cruiseguide-sub010/api/responses"
	"github.com/monicajeon28/cruiseguide-sub010/api/validators"
	"github.com/monicajeon28/cruiseguide-sub010/internal/ledger"
	"github.com/monicajeon28/cruiseguide-sub010/internal/sales"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/db/models"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/enums"
	pkgerrors "github.com/monicajeon28/cruiseguide-sub010/pkg/errors"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/logger"
)

const (
	// ActorHeader names the operator behind an admin request. Authentication happens upstream.
	ActorHeader  = "X-Actor"
	defaultActor = "admin"
	maxActorLen  = 128
	maxNoteLen   = 500
)

type syncLedgerRequest struct {
	Regenerate  bool                `json:"regenerate"`
	IncludeHQ   *bool               `json:"include_hq"`
	Adjustments []adjustmentRequest `json:"adjustments" validate:"max=50,dive"`
}

type adjustmentRequest struct {
	Type    string `json:"type" validate:"omitempty,max=64"`
	Amount  int64  `json:"amount" validate:"ne=0"`
	PayeeID *int64 `json:"payee_id" validate:"omitempty,gt=0"`
	Note    string `json:"note" validate:"max=500"`
}

func (r syncLedgerRequest) toOptions(actor string) (ledger.SyncOptions, error) {
	opts := ledger.SyncOptions{
		Regenerate: r.Regenerate,
		IncludeHQ:  r.IncludeHQ,
		Actor:      actor,
	}
	for i, adj := range r.Adjustments {
		entryType := enums.LedgerEntryTypeAdjustment
		if raw := strings.ToUpper(strings.TrimSpace(adj.Type)); raw != "" {
			parsed, err := enums.ParseLedgerEntryType(raw)
			if err != nil {
				return ledger.SyncOptions{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid adjustment type").
					WithDetails(map[string]any{"index": i})
			}
			entryType = parsed
		}
		opts.ExtraAdjustments = append(opts.ExtraAdjustments, ledger.Adjustment{
			Type:    entryType,
			Amount:  adj.Amount,
			PayeeID: adj.PayeeID,
			Metadata: models.EntryMetadata{
				Note: validators.SanitizeString(adj.Note, maxNoteLen),
			},
		})
	}
	return opts, nil
}

func actorFrom(r *http.Request) string {
	if actor := validators.SanitizeString(r.Header.Get(ActorHeader), maxActorLen); actor != "" {
		return actor
	}
	return defaultActor
}

// SyncSaleLedger recomputes the split for one sale and journals it.
func SyncSaleLedger(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		saleID, err := validators.ParsePathID(r, "saleId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req syncLedgerRequest
		if err := validators.DecodeOptionalJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		actor := actorFrom(r)
		opts, err := req.toOptions(actor)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			ctx = logg.WithActor(ctx, actor)
		}
		result, err := svc.Sync(ctx, saleID, opts)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListSaleLedger returns the journal rows of one sale.
func ListSaleLedger(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		saleID, err := validators.ParsePathID(r, "saleId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		entries, err := svc.ListBySale(ctx, saleID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if entries == nil {
			entries = []models.LedgerEntry{}
		}
		responses.WriteSuccess(w, map[string]any{"sale_id": saleID, "entries": entries})
	}
}

func PayeeSalesSummary(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}
		profileID, err := validators.ParsePathID(r, "profileId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		summary, err := svc.SummaryForPayee(ctx, profileID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func LeadSalesSummary(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}
		leadID, err := validators.ParsePathID(r, "leadId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		summary, err := svc.SummaryForLead(ctx, leadID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
