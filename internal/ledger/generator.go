package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/monicajeon28/cruiseguide-sub010/internal/commission"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/db/models"
	"github.com/monicajeon28/cruiseguide-sub010/pkg/enums"
	pkgerrors "github.com/monicajeon28/cruiseguide-sub010/pkg/errors"
)

// Line keys identify an entry within its sale. (sale_id, line_key) is unique in storage.
const (
	LineKeyHQNet               = "hq_net"
	LineKeyBranchCommission    = "branch_commission"
	LineKeySalesCommission     = "sales_commission"
	LineKeyOverrideCommission  = "override_commission"
	LineKeyBranchWithholding   = "withholding:branch"
	LineKeyOverrideWithholding = "withholding:override"

	lineKeyAdjustmentPrefix = "adjustment:"

	sourceCommissionSplit  = "commission_split"
	sourceManualAdjustment = "manual_adjustment"

	noteBranchWithholding   = "branch withholding"
	noteOverrideWithholding = "override withholding"
)

// AdjustmentLineKey returns the line key of the n-th (1-based) extra adjustment.
func AdjustmentLineKey(n int) string {
	return fmt.Sprintf("%s%d", lineKeyAdjustmentPrefix, n)
}

// Adjustment is a caller-supplied one-off entry appended after the generated split.
// An empty Type records a plain ADJUSTMENT.
type Adjustment struct {
	Type     enums.LedgerEntryType
	Amount   int64
	PayeeID  *int64
	Metadata models.EntryMetadata
}

// GenerateOptions extends the calculator input with the sale and its payees.
// OverrideProfileID defaults to ManagerProfileID. FirstAdjustment numbers the first extra
// adjustment (default 1) so appended corrections never reuse a journaled line key.
type GenerateOptions struct {
	commission.Input
	SaleID            int64
	ManagerProfileID  *int64
	AgentProfileID    *int64
	OverrideProfileID *int64
	ExtraAdjustments  []Adjustment
	FirstAdjustment   int
}

// GenerateResult pairs the breakdown with the entries derived from it.
type GenerateResult struct {
	Breakdown commission.Breakdown
	Entries   []models.LedgerEntry
}

// Generator turns a breakdown into journal entries. It is pure and safe for concurrent use.
type Generator struct {
	calc *commission.Calculator
}

// NewGenerator wires a generator around the provided calculator.
func NewGenerator(calc *commission.Calculator) (*Generator, error) {
	if calc == nil {
		return nil, fmt.Errorf("commission calculator required")
	}
	return &Generator{calc: calc}, nil
}

// Defaults returns the platform defaults of the underlying calculator.
func (g *Generator) Defaults() commission.Defaults {
	return g.calc.Defaults()
}

// Generate computes the breakdown and emits entries in a fixed order: HQ net, branch,
// sales and override commissions, branch and override withholding, then adjustments.
// A commission without a payee produces no entry and is not an error.
func (g *Generator) Generate(opts GenerateOptions) (*GenerateResult, error) {
	if opts.SaleID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id must be positive")
	}
	for i, adj := range opts.ExtraAdjustments {
		if adj.Type != "" && !adj.Type.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("adjustment %d has invalid type", i+1))
		}
	}

	b := g.calc.Calculate(opts.Input)
	manager := presentID(opts.ManagerProfileID)
	agent := presentID(opts.AgentProfileID)
	override := OverridePayee(opts.OverrideProfileID, opts.ManagerProfileID)
	firstAdjustment := opts.FirstAdjustment
	if firstAdjustment < 1 {
		firstAdjustment = 1
	}

	entries := make([]models.LedgerEntry, 0, 6+len(opts.ExtraAdjustments))
	newEntry := func(key string, entryType enums.LedgerEntryType, payee *int64, amount int64) models.LedgerEntry {
		return models.LedgerEntry{
			SaleID:    opts.SaleID,
			ProfileID: payee,
			EntryType: entryType,
			LineKey:   key,
			Amount:    amount,
			Currency:  b.Currency,
			Metadata:  models.EntryMetadata{Source: sourceCommissionSplit},
		}
	}

	if b.IncludeHQNet && b.HQNet > 0 {
		entries = append(entries, newEntry(LineKeyHQNet, enums.LedgerEntryTypeHQNet, nil, b.HQNet))
	}

	branchPaid := b.BranchCommission > 0 && manager != nil
	if branchPaid {
		e := newEntry(LineKeyBranchCommission, enums.LedgerEntryTypeBranchCommission, manager, b.BranchCommission)
		e.WithholdingAmount = b.BranchWithholding
		e.Metadata.WithholdingRate = b.ManagerWithholdingRate.String()
		entries = append(entries, e)
	}

	if b.SalesCommission > 0 && agent != nil {
		e := newEntry(LineKeySalesCommission, enums.LedgerEntryTypeSalesCommission, agent, b.SalesCommission)
		e.WithholdingAmount = b.WithholdingAmount
		e.Metadata.WithholdingRate = b.WithholdingRate.String()
		e.Metadata.Withholding = b.WithholdingAmount
		entries = append(entries, e)
	}

	overridePaid := b.OverrideCommission > 0 && override != nil
	if overridePaid {
		e := newEntry(LineKeyOverrideCommission, enums.LedgerEntryTypeOverrideCommission, override, b.OverrideCommission)
		e.WithholdingAmount = b.OverrideWithholding
		e.Metadata.WithholdingRate = b.ManagerWithholdingRate.String()
		entries = append(entries, e)
	}

	// Sales withholding stays informational on the SALES_COMMISSION line.
	if branchPaid && b.BranchWithholding > 0 {
		e := newEntry(LineKeyBranchWithholding, enums.LedgerEntryTypeWithholding, manager, -b.BranchWithholding)
		e.Metadata.Note = noteBranchWithholding
		e.Metadata.WithholdingRate = b.ManagerWithholdingRate.String()
		entries = append(entries, e)
	}
	if overridePaid && b.OverrideWithholding > 0 {
		e := newEntry(LineKeyOverrideWithholding, enums.LedgerEntryTypeWithholding, override, -b.OverrideWithholding)
		e.Metadata.Note = noteOverrideWithholding
		e.Metadata.WithholdingRate = b.ManagerWithholdingRate.String()
		entries = append(entries, e)
	}

	for i, adj := range opts.ExtraAdjustments {
		if adj.Amount == 0 {
			continue
		}
		entryType := adj.Type
		if entryType == "" {
			entryType = enums.LedgerEntryTypeAdjustment
		}
		e := newEntry(AdjustmentLineKey(firstAdjustment+i), entryType, presentID(adj.PayeeID), adj.Amount)
		e.Metadata = adj.Metadata
		if e.Metadata.Source == "" {
			e.Metadata.Source = sourceManualAdjustment
		}
		entries = append(entries, e)
	}

	return &GenerateResult{Breakdown: b, Entries: entries}, nil
}

// OverridePayee resolves who receives the override commission: the override profile, else the manager.
func OverridePayee(overrideID, managerID *int64) *int64 {
	if id := presentID(overrideID); id != nil {
		return id
	}
	return presentID(managerID)
}

// NextAdjustment returns the number following the highest adjustment line among entries.
func NextAdjustment(entries []models.LedgerEntry) int {
	next := 1
	for _, e := range entries {
		raw, ok := strings.CutPrefix(e.LineKey, lineKeyAdjustmentPrefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(raw); err == nil && n >= next {
			next = n + 1
		}
	}
	return next
}

func presentID(id *int64) *int64 {
	if id == nil || *id <= 0 {
		return nil
	}
	v := *id
	return &v
}
