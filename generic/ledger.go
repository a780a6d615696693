/*
ledger.go - Append-only audit log of balance changes

PURPOSE:
  Every credit, debit, accrual reset and migration performed on a leave
  ledger record is mirrored here as an immutable Transaction. The record
  holds the current totals; this log explains how they got there.

INVARIANTS:
  1. APPEND-ONLY: No Update, No Delete.
  2. IDEMPOTENT: Same idempotency key = same transaction (no duplicates)
  3. Transactions are written inside the same store transaction as the
     balance change they describe.

EXAMPLE FLOW:
  1. Annual accrual on Jan 1:      reconciliation  annual +17
  2. Saturday overtime, 10 hours:  grant           substitute +11
  3. Approved 4 hour request:      consumption     substitute -4

SEE ALSO:
  - store.go: Low-level persistence interface
  - timeoff/ledger.go: Writes these transactions
*/
package generic

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Ledger is the audit trail for all balance changes.
type Ledger interface {
	// Append adds a transaction. Fails if idempotency key exists.
	Append(ctx context.Context, tx Transaction) error

	// Transactions returns all transactions for an entity, oldest first.
	Transactions(ctx context.Context, entityID EntityID) ([]Transaction, error)

	// Net sums the deltas of one resource for an entity.
	Net(ctx context.Context, entityID EntityID, resource ResourceType, unit Unit) (Amount, error)
}

// =============================================================================
// DEFAULT LEDGER - Implementation using Store
// =============================================================================

type DefaultLedger struct {
	Store Store
	Now   func() time.Time
}

func NewLedger(store Store) *DefaultLedger {
	return &DefaultLedger{Store: store, Now: time.Now}
}

func (l *DefaultLedger) Append(ctx context.Context, tx Transaction) error {
	if tx.IdempotencyKey != "" {
		exists, err := l.Store.Exists(ctx, tx.IdempotencyKey)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateIdempotencyKey
		}
	}
	if tx.ID == "" {
		tx.ID = TransactionID(uuid.NewString())
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = DateOf(l.Now())
	}
	if tx.EffectiveAt.IsZero() {
		tx.EffectiveAt = tx.CreatedAt
	}
	return l.Store.Append(ctx, tx)
}

func (l *DefaultLedger) Transactions(ctx context.Context, entityID EntityID) ([]Transaction, error) {
	return l.Store.Load(ctx, entityID)
}

func (l *DefaultLedger) Net(ctx context.Context, entityID EntityID, resource ResourceType, unit Unit) (Amount, error) {
	txs, err := l.Store.Load(ctx, entityID)
	if err != nil {
		return Amount{}, err
	}
	total := NewAmount(0, unit)
	for _, tx := range txs {
		if tx.ResourceType == nil || tx.ResourceType.ResourceID() != resource.ResourceID() {
			continue
		}
		total = total.Add(tx.Delta)
	}
	return total, nil
}
