package commission

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/monicajeon28/cruiseguide-sub010/pkg/enums"
)

// TierSnapshot is a cached prior split for a sale. Its values are advisory defaults and
// never override amounts present on the sale itself.
type TierSnapshot struct {
	HQShare       *int64
	BranchShare   *int64
	SalesShare    *int64
	OverrideShare *int64
	Currency      enums.Currency
}

// SnapshotSource looks up the advisory defaults for a sale. A nil snapshot with a nil
// error means the sale has none.
type SnapshotSource interface {
	DefaultsFor(ctx context.Context, saleID int64) (*TierSnapshot, error)
}

// NoSnapshots is a SnapshotSource that never has defaults.
type NoSnapshots struct{}

// DefaultsFor implements SnapshotSource.
func (NoSnapshots) DefaultsFor(context.Context, int64) (*TierSnapshot, error) {
	return nil, nil
}

func (s *TierSnapshot) hq() decimal.NullDecimal {
	if s == nil {
		return decimal.NullDecimal{}
	}
	return OptionalAmount(s.HQShare)
}

func (s *TierSnapshot) branch() decimal.NullDecimal {
	if s == nil {
		return decimal.NullDecimal{}
	}
	return OptionalAmount(s.BranchShare)
}

func (s *TierSnapshot) sales() decimal.NullDecimal {
	if s == nil {
		return decimal.NullDecimal{}
	}
	return OptionalAmount(s.SalesShare)
}

func (s *TierSnapshot) override() decimal.NullDecimal {
	if s == nil {
		return decimal.NullDecimal{}
	}
	return OptionalAmount(s.OverrideShare)
}
