// Package memory provides an in-memory timeoff.Store for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Store keeps everything in maps guarded by one RWMutex. WithTx works on a
// copy of the data and swaps it in on success, so a failed transaction
// leaves no trace. Transactions are serialized.
type Store struct {
	mu   sync.RWMutex
	data *data
}

var _ timeoff.Store = (*Store)(nil)

func New() *Store {
	return &Store{data: newData()}
}

type data struct {
	employees    map[generic.EntityID]timeoff.Employee
	ledgers      map[generic.EntityID]timeoff.LedgerRecord
	requests     map[string]timeoff.LeaveRequest
	transactions []generic.Transaction
	idempotency  map[string]bool
}

func newData() *data {
	return &data{
		employees:   make(map[generic.EntityID]timeoff.Employee),
		ledgers:     make(map[generic.EntityID]timeoff.LedgerRecord),
		requests:    make(map[string]timeoff.LeaveRequest),
		idempotency: make(map[string]bool),
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.employees {
		c.employees[k] = v
	}
	for k, v := range d.ledgers {
		c.ledgers[k] = v
	}
	for k, v := range d.requests {
		c.requests[k] = v
	}
	for k, v := range d.idempotency {
		c.idempotency[k] = v
	}
	c.transactions = append([]generic.Transaction(nil), d.transactions...)
	return c
}

// WithTx runs fn against a private copy and commits it if fn succeeds.
func (s *Store) WithTx(_ context.Context, fn func(timeoff.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(&txView{d: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *Store) write(fn func(d *data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) Load(_ context.Context, id generic.EntityID) ([]generic.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.load(id), nil
}

func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.idempotency[key], nil
}

func (s *Store) Append(_ context.Context, tx generic.Transaction) error {
	return s.write(func(d *data) error { return d.append(tx) })
}

func (s *Store) GetEmployee(_ context.Context, id generic.EntityID) (timeoff.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.employee(id)
}

func (s *Store) SaveEmployee(_ context.Context, e timeoff.Employee) error {
	return s.write(func(d *data) error { d.employees[e.ID] = e; return nil })
}

func (s *Store) ListEmployees(_ context.Context) ([]timeoff.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listEmployees(), nil
}

func (s *Store) LoadLedger(_ context.Context, id generic.EntityID) (timeoff.LedgerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.ledger(id)
}

func (s *Store) SaveLedger(_ context.Context, rec timeoff.LedgerRecord) error {
	return s.write(func(d *data) error { d.ledgers[rec.EmployeeID] = rec; return nil })
}

func (s *Store) GetRequest(_ context.Context, id string) (timeoff.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.request(id)
}

func (s *Store) SaveRequest(_ context.Context, r timeoff.LeaveRequest) error {
	return s.write(func(d *data) error { d.requests[r.ID] = r; return nil })
}

func (s *Store) ListRequests(_ context.Context, id generic.EntityID) ([]timeoff.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listRequests(func(r timeoff.LeaveRequest) bool { return r.EmployeeID == id }), nil
}

func (s *Store) ListPendingRequests(_ context.Context) ([]timeoff.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listRequests(func(r timeoff.LeaveRequest) bool { return r.Status == timeoff.StatusPending }), nil
}

// =============================================================================
// TX VIEW - Unlocked access to a working copy
// =============================================================================

type txView struct {
	d *data
}

func (v *txView) WithTx(_ context.Context, fn func(timeoff.Store) error) error { return fn(v) }

func (v *txView) Append(_ context.Context, tx generic.Transaction) error { return v.d.append(tx) }
func (v *txView) Load(_ context.Context, id generic.EntityID) ([]generic.Transaction, error) {
	return v.d.load(id), nil
}
func (v *txView) Exists(_ context.Context, key string) (bool, error) { return v.d.idempotency[key], nil }

func (v *txView) GetEmployee(_ context.Context, id generic.EntityID) (timeoff.Employee, error) {
	return v.d.employee(id)
}
func (v *txView) SaveEmployee(_ context.Context, e timeoff.Employee) error {
	v.d.employees[e.ID] = e
	return nil
}
func (v *txView) ListEmployees(_ context.Context) ([]timeoff.Employee, error) {
	return v.d.listEmployees(), nil
}

func (v *txView) LoadLedger(_ context.Context, id generic.EntityID) (timeoff.LedgerRecord, error) {
	return v.d.ledger(id)
}
func (v *txView) SaveLedger(_ context.Context, rec timeoff.LedgerRecord) error {
	v.d.ledgers[rec.EmployeeID] = rec
	return nil
}

func (v *txView) GetRequest(_ context.Context, id string) (timeoff.LeaveRequest, error) {
	return v.d.request(id)
}
func (v *txView) SaveRequest(_ context.Context, r timeoff.LeaveRequest) error {
	v.d.requests[r.ID] = r
	return nil
}
func (v *txView) ListRequests(_ context.Context, id generic.EntityID) ([]timeoff.LeaveRequest, error) {
	return v.d.listRequests(func(r timeoff.LeaveRequest) bool { return r.EmployeeID == id }), nil
}
func (v *txView) ListPendingRequests(_ context.Context) ([]timeoff.LeaveRequest, error) {
	return v.d.listRequests(func(r timeoff.LeaveRequest) bool { return r.Status == timeoff.StatusPending }), nil
}

// =============================================================================
// DATA ACCESS
// =============================================================================

func (d *data) append(tx generic.Transaction) error {
	if tx.IdempotencyKey != "" {
		if d.idempotency[tx.IdempotencyKey] {
			return generic.ErrDuplicateIdempotencyKey
		}
		d.idempotency[tx.IdempotencyKey] = true
	}
	d.transactions = append(d.transactions, tx)
	return nil
}

func (d *data) load(id generic.EntityID) []generic.Transaction {
	var out []generic.Transaction
	for _, tx := range d.transactions {
		if tx.EntityID == id {
			out = append(out, tx)
		}
	}
	return out
}

func (d *data) employee(id generic.EntityID) (timeoff.Employee, error) {
	e, ok := d.employees[id]
	if !ok {
		return timeoff.Employee{}, fmt.Errorf("%w: employee %s", generic.ErrEntityNotFound, id)
	}
	return e, nil
}

func (d *data) listEmployees() []timeoff.Employee {
	out := make([]timeoff.Employee, 0, len(d.employees))
	for _, e := range d.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *data) ledger(id generic.EntityID) (timeoff.LedgerRecord, error) {
	rec, ok := d.ledgers[id]
	if !ok {
		return timeoff.LedgerRecord{}, fmt.Errorf("%w: ledger of %s", generic.ErrEntityNotFound, id)
	}
	return rec, nil
}

func (d *data) request(id string) (timeoff.LeaveRequest, error) {
	r, ok := d.requests[id]
	if !ok {
		return timeoff.LeaveRequest{}, fmt.Errorf("%w: %s", generic.ErrRequestNotFound, id)
	}
	return r, nil
}

func (d *data) listRequests(keep func(timeoff.LeaveRequest) bool) []timeoff.LeaveRequest {
	var out []timeoff.LeaveRequest
	for _, r := range d.requests {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out
}
