/*
store.go - Persistence interface for audit transactions

PURPOSE:
  Defines the boundary between the audit ledger and the database. Balance
  state itself lives in the leave domain's ledger records; this store only
  keeps the append-only history of every change made to them.

APPEND-ONLY CONTRACT:
  - Append(): single transaction write
  - NO Update() or Delete() methods exist

IDEMPOTENCY:
  Every write carries an idempotency key. If the key already exists the
  write is rejected with ErrDuplicateIdempotencyKey. The annual accrual
  run and overtime crediting rely on this to make reruns no-ops.

IMPLEMENTATIONS:
  - store/sqlite: durable SQLite store
  - store/memory: in-memory store for tests and local runs
*/
package generic

import "context"

// Store handles persistence of audit transactions.
type Store interface {
	// Append persists a transaction. Returns ErrDuplicateIdempotencyKey if
	// the key was already used.
	Append(ctx context.Context, tx Transaction) error

	// Load returns all transactions for an entity in insertion order.
	Load(ctx context.Context, entityID EntityID) ([]Transaction, error)

	// Exists checks if idempotency key already exists.
	Exists(ctx context.Context, idempotencyKey string) (bool, error)
}
