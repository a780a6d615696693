/*
store.go - Persistence boundary for the leave domain

PURPOSE:
  Everything the engine persists goes through this interface: employees
  (read mostly, written on onboarding), one ledger record per employee,
  leave requests, and the audit transaction log inherited from
  generic.Store.

ATOMICITY:
  WithTx runs fn against a store bound to one database transaction. The
  ledger uses it so that a balance change, its audit transaction and the
  request status flip commit or roll back together.

IMPLEMENTATIONS:
  - store/sqlite: durable store on mattn/go-sqlite3
  - store/memory: map-backed store for tests
*/
package timeoff

import (
	"context"

	"github.com/warp/leave-engine/generic"
)

type Store interface {
	generic.Store

	GetEmployee(ctx context.Context, id generic.EntityID) (Employee, error)
	SaveEmployee(ctx context.Context, e Employee) error
	ListEmployees(ctx context.Context) ([]Employee, error)

	// LoadLedger returns generic.ErrEntityNotFound when no record exists.
	LoadLedger(ctx context.Context, id generic.EntityID) (LedgerRecord, error)
	SaveLedger(ctx context.Context, rec LedgerRecord) error

	// GetRequest returns generic.ErrRequestNotFound when no request exists.
	GetRequest(ctx context.Context, id string) (LeaveRequest, error)
	SaveRequest(ctx context.Context, req LeaveRequest) error
	ListRequests(ctx context.Context, employeeID generic.EntityID) ([]LeaveRequest, error)
	ListPendingRequests(ctx context.Context) ([]LeaveRequest, error)

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	WithTx(ctx context.Context, fn func(Store) error) error
}
