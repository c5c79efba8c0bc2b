package enums

import "fmt"

// LedgerEntryType classifies a ledger_entries row.
type LedgerEntryType string

const (
	LedgerEntryTypeHQNet              LedgerEntryType = "HQ_NET"
	LedgerEntryTypeBranchCommission   LedgerEntryType = "BRANCH_COMMISSION"
	LedgerEntryTypeSalesCommission    LedgerEntryType = "SALES_COMMISSION"
	LedgerEntryTypeOverrideCommission LedgerEntryType = "OVERRIDE_COMMISSION"
	LedgerEntryTypeWithholding        LedgerEntryType = "WITHHOLDING"
	LedgerEntryTypeAdjustment         LedgerEntryType = "ADJUSTMENT"
)

var generatedLedgerEntryTypes = []LedgerEntryType{
	LedgerEntryTypeHQNet,
	LedgerEntryTypeBranchCommission,
	LedgerEntryTypeSalesCommission,
	LedgerEntryTypeOverrideCommission,
	LedgerEntryTypeWithholding,
}

// IsGenerated reports whether the type is one the commission split emits itself.
func (t LedgerEntryType) IsGenerated() bool {
	for _, candidate := range generatedLedgerEntryTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsValid accepts the generated types and any caller-supplied adjustment type.
// Adjustment types are free-form but must fit the column.
func (t LedgerEntryType) IsValid() bool {
	if t.IsGenerated() || t == LedgerEntryTypeAdjustment {
		return true
	}
	return t != "" && len(t) <= 64
}

// ParseLedgerEntryType converts raw input into LedgerEntryType.
func ParseLedgerEntryType(value string) (LedgerEntryType, error) {
	t := LedgerEntryType(value)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid ledger entry type %q", value)
	}
	return t, nil
}
