/*
Package generic provides the core building blocks of the leave engine.

PURPOSE:
  This package contains domain-agnostic types shared by the leave domain,
  the stores and the HTTP layer: quantities with units, the append-only
  audit transaction log, balances, calendar time points and the error
  taxonomy.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., 5 days, 9.5 hours)
  - Transaction: An immutable audit entry recording a balance change
  - ResourceType: What a transaction is about (a leave category)
  - Entity IDs: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Immutability: Transactions are never modified
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Type Safety: Strong typing for IDs prevents mixing entity/request IDs
  4. Auditability: Every transaction has reason, reference, and idempotency key

USAGE:
  amount, err := generic.ParseAmount(4.5, generic.UnitHours)
  tx := generic.Transaction{
      EntityID: "emp-123",
      Delta:    amount,
      Type:     generic.TxGrant,
  }

SEE ALSO:
  - balance.go: Available-balance view
  - ledger.go: Transaction persistence interface
  - errors.go: Error taxonomy
*/
package generic

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitDays  Unit = "days"
	UnitHours Unit = "hours"
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

func NewAmountFromDecimal(value decimal.Decimal, unit Unit) Amount {
	return Amount{Value: value, Unit: unit}
}

// ParseAmount converts caller-supplied float input into an Amount.
// NaN and infinities are rejected with ErrInvalidAmount.
func ParseAmount(value float64, unit Unit) (Amount, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Amount{}, &InvalidAmountError{Reason: fmt.Sprintf("amount %v is not a finite number", value)}
	}
	return NewAmount(value, unit), nil
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (a Amount) Zero() Amount                     { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount              { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount              { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount     { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) Neg() Amount                      { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) IsNegative() bool                 { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                     { return a.Value.IsZero() }
func (a Amount) IsPositive() bool                 { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool        { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool           { return a.Value.LessThan(b.Value) }
func (a Amount) GreaterThanOrEqual(b Amount) bool { return a.Value.GreaterThanOrEqual(b.Value) }
func (a Amount) Float64() float64                 { f, _ := a.Value.Float64(); return f }

// String renders the amount for messages, e.g. "4.5 hours".
func (a Amount) String() string {
	return a.Value.String() + " " + string(a.Unit)
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EntityID string
type TransactionID string

// ResourceType identifies what kind of balance a transaction touches.
// The leave domain implements it with its category type.
type ResourceType interface {
	// ResourceID returns the unique identifier for this resource type.
	ResourceID() string

	// ResourceDomain returns which domain this resource belongs to.
	ResourceDomain() string
}

// =============================================================================
// TRANSACTION - Audit entry for a balance change
// =============================================================================

type TransactionType string

const (
	TxGrant          TransactionType = "grant"          // Entitlement or earned-hours credit
	TxConsumption    TransactionType = "consumption"    // Approved leave debit
	TxReconciliation TransactionType = "reconciliation" // Accrual-period reset
	TxAdjustment     TransactionType = "adjustment"     // Manual admin correction
	TxMigration      TransactionType = "migration"      // Legacy data reconciliation
)

type Transaction struct {
	ID             TransactionID
	EntityID       EntityID
	ResourceType   ResourceType
	EffectiveAt    TimePoint
	Delta          Amount
	Type           TransactionType
	ReferenceID    string
	Reason         string
	IdempotencyKey string
	Metadata       map[string]string

	CreatedBy string
	CreatedAt TimePoint
}
