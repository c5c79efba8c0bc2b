package enums

import "fmt"

// SaleStatus tracks the booking lifecycle of a sale.
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusConfirmed SaleStatus = "CONFIRMED"
	SaleStatusCancelled SaleStatus = "CANCELLED"
	SaleStatusRefunded  SaleStatus = "REFUNDED"
)

var validSaleStatuses = []SaleStatus{
	SaleStatusPending,
	SaleStatusConfirmed,
	SaleStatusCancelled,
	SaleStatusRefunded,
}

// IsValid reports whether the value matches a known sale status.
func (s SaleStatus) IsValid() bool {
	for _, candidate := range validSaleStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSaleStatus converts raw input into SaleStatus.
func ParseSaleStatus(value string) (SaleStatus, error) {
	for _, candidate := range validSaleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sale status %q", value)
}
