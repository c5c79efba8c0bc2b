package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/monicajeon28/cruiseguide-sub010/pkg/enums"
)

// PayeeProfile is a reseller (branch manager or sales agent). Read-only to the ledger.
type PayeeProfile struct {
	ID              int64               `gorm:"column:id;primaryKey;autoIncrement"`
	DisplayName     string              `gorm:"column:display_name;not null"`
	Role            enums.PayeeRole     `gorm:"column:role;type:varchar(16);not null"`
	ReportsToID     *int64              `gorm:"column:reports_to_id"`
	WithholdingRate decimal.NullDecimal `gorm:"column:withholding_rate;type:numeric(6,3)"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (PayeeProfile) TableName() string { return "payee_profiles" }
