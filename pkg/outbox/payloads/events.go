package payloads

import "github.com/monicajeon28/cruiseguide-sub010/pkg/enums"

// LedgerSyncedEvent is emitted after a sale's ledger entries are written and the sale is stamped.
type LedgerSyncedEvent struct {
	SaleID             int64          `json:"sale_id"`
	Regenerated        bool           `json:"regenerated"`
	EntriesCreated     int64          `json:"entries_created"`
	Currency           enums.Currency `json:"currency"`
	NetRevenue         int64          `json:"net_revenue"`
	HQNet              int64          `json:"hq_net"`
	BranchCommission   int64          `json:"branch_commission"`
	SalesCommission    int64          `json:"sales_commission"`
	OverrideCommission int64          `json:"override_commission"`
	TotalWithholding   int64          `json:"total_withholding"`
}
