package models

import (
	"time"

	"github.com/monicajeon28/cruiseguide-sub010/pkg/enums"
)

// CommissionTierSnapshot caches a prior split for a sale. Advisory only: explicit sale fields win.
type CommissionTierSnapshot struct {
	ID                int64           `gorm:"column:id;primaryKey;autoIncrement"`
	SaleID            int64           `gorm:"column:sale_id;not null;uniqueIndex"`
	HQShareAmount     *int64          `gorm:"column:hq_share_amount"`
	BranchShareAmount *int64          `gorm:"column:branch_share_amount"`
	SalesShareAmount  *int64          `gorm:"column:sales_share_amount"`
	OverrideAmount    *int64          `gorm:"column:override_amount"`
	Currency          *enums.Currency `gorm:"column:currency;type:varchar(3)"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (CommissionTierSnapshot) TableName() string { return "commission_tier_snapshots" }
