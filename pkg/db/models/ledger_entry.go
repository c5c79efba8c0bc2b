package models

import (
	"time"

	"github.com/monicajeon28/cruiseguide-sub010/pkg/enums"
)

// LedgerEntry is one append-only journal row for a sale. A nil ProfileID is the platform operator.
// Rows are never edited: a regenerate deletes and recreates the whole set for the sale.
type LedgerEntry struct {
	ID                int64                 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SaleID            int64                 `gorm:"column:sale_id;not null" json:"sale_id"`
	ProfileID         *int64                `gorm:"column:profile_id" json:"profile_id"`
	EntryType         enums.LedgerEntryType `gorm:"column:entry_type;type:varchar(64);not null" json:"entry_type"`
	LineKey           string                `gorm:"column:line_key;not null" json:"line_key"`
	Amount            int64                 `gorm:"column:amount;not null" json:"amount"`
	WithholdingAmount int64                 `gorm:"column:withholding_amount;not null;default:0" json:"withholding_amount"`
	Currency          enums.Currency        `gorm:"column:currency;type:varchar(3);not null" json:"currency"`
	IsSettled         bool                  `gorm:"column:is_settled;not null;default:false" json:"is_settled"`
	Metadata          EntryMetadata         `gorm:"column:metadata;type:jsonb;serializer:json" json:"metadata"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }

// EntryMetadata is the audit context attached to an entry.
type EntryMetadata struct {
	Source          string            `json:"source,omitempty"`
	Note            string            `json:"note,omitempty"`
	WithholdingRate string            `json:"withholding_rate,omitempty"`
	Withholding     int64             `json:"withholding,omitempty"`
	SyncedBy        string            `json:"synced_by,omitempty"`
	Annotations     map[string]string `json:"annotations,omitempty"`
}
