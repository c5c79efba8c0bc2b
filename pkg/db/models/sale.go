package models

import (
	"time"

	"github.com/monicajeon28/cruiseguide-sub010/pkg/enums"
)

// Sale is a finalized booking. Only the ledger sync mutates it, to stamp the computed split.
// SnapshotApplied marks stamped commissions that came from the tier snapshot, so later syncs
// keep reading the snapshot instead of treating them as explicit allotments.
type Sale struct {
	ID                 int64            `gorm:"column:id;primaryKey;autoIncrement"`
	LeadID             *int64           `gorm:"column:lead_id"`
	SaleAmount         int64            `gorm:"column:sale_amount;not null"`
	CostAmount         int64            `gorm:"column:cost_amount;not null;default:0"`
	Currency           *enums.Currency  `gorm:"column:currency;type:varchar(3)"`
	ManagerID          *int64           `gorm:"column:manager_id"`
	AgentID            *int64           `gorm:"column:agent_id"`
	BranchCommission   *int64           `gorm:"column:branch_commission"`
	SalesCommission    *int64           `gorm:"column:sales_commission"`
	OverrideCommission *int64           `gorm:"column:override_commission"`
	NetRevenue         *int64           `gorm:"column:net_revenue"`
	Status             enums.SaleStatus `gorm:"column:status;type:varchar(16);not null"`
	SoldAt             time.Time        `gorm:"column:sold_at;not null"`
	LedgerSyncedAt     *time.Time       `gorm:"column:ledger_synced_at"`
	SnapshotApplied    bool             `gorm:"column:snapshot_applied;not null;default:false"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time        `gorm:"column:updated_at;autoUpdateTime"`

	Manager *PayeeProfile `gorm:"foreignKey:ManagerID"`
	Agent   *PayeeProfile `gorm:"foreignKey:AgentID"`
}

func (Sale) TableName() string { return "sales" }
