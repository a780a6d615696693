/*
Package sqlite provides a SQLite-backed implementation of timeoff.Store.

PURPOSE:
  Durable storage for employees, ledger records, leave requests, the audit
  transaction log and the public holiday calendar.

KEY TABLES:
  employees:     Hire and termination dates read by the engine
  ledgers:       One row per employee, one canonical column per balance
  requests:      Leave requests and their lifecycle fields
  transactions:  Append-only audit log (no UPDATE, no DELETE)
  holidays:      Public holidays; backs generic.HolidayCalendar

AMOUNTS:
  Decimal amounts are stored as TEXT and parsed back with shopspring/decimal
  so nothing is lost to floating point.

CONCURRENCY:
  The pool is limited to a single connection. SQLite serializes writers
  anyway, and ":memory:" databases are per-connection, so one connection
  keeps both file and in-memory stores consistent. WithTx holds that
  connection for the whole transaction; code running inside it must use
  the Store it is handed, never the outer one.

LEGACY DATA:
  ledgers.legacy_json holds hour balances imported from the previous
  system. It is exposed as LedgerRecord.LegacyHours and cleared by
  timeoff.MigrateLegacyBalances.

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - timeoff/store.go: Interface definition
  - store/memory: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

// Store implements timeoff.Store using SQLite.
type Store struct {
	queries
	db *sql.DB
}

var (
	_ timeoff.Store           = (*Store)(nil)
	_ generic.HolidayCalendar = (*Store)(nil)
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries holds every statement; it runs against the pool or a transaction.
type queries struct {
	q querier
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{queries: queries{q: db}, db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		hire_date TEXT,
		termination_date TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ledgers (
		employee_id TEXT PRIMARY KEY REFERENCES employees(id),
		annual_days INTEGER NOT NULL DEFAULT 0 CHECK (annual_days >= 0),
		used_annual_days TEXT NOT NULL DEFAULT '0',
		sick_days INTEGER NOT NULL DEFAULT 60 CHECK (sick_days >= 0),
		used_sick_days TEXT NOT NULL DEFAULT '0',
		substitute_leave_hours TEXT NOT NULL DEFAULT '0',
		compensatory_leave_hours TEXT NOT NULL DEFAULT '0',
		archived INTEGER NOT NULL DEFAULT 0,
		legacy_json TEXT,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		category TEXT NOT NULL,
		sub_type TEXT,
		amount TEXT NOT NULL,
		unit TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		reason TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		submitted_at TEXT NOT NULL,
		processed_at TEXT,
		processed_by TEXT,
		admin_notes TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_requests_employee
		ON requests(employee_id);
	CREATE INDEX IF NOT EXISTS idx_requests_status
		ON requests(status);

	-- Audit log (append-only)
	CREATE TABLE IF NOT EXISTS transactions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		entity_id TEXT NOT NULL,
		resource_type TEXT NOT NULL,
		effective_at TEXT NOT NULL,
		delta_value TEXT NOT NULL,
		delta_unit TEXT NOT NULL,
		tx_type TEXT NOT NULL,
		reference_id TEXT,
		reason TEXT,
		idempotency_key TEXT UNIQUE,
		metadata_json TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_entity
		ON transactions(entity_id, seq);
	CREATE INDEX IF NOT EXISTS idx_transactions_reference
		ON transactions(reference_id) WHERE reference_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		recurring INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		UNIQUE(date, name)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(timeoff.Store) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{queries: queries{q: sqlTx}}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

type txStore struct {
	queries
}

// WithTx joins the surrounding transaction.
func (ts *txStore) WithTx(_ context.Context, fn func(timeoff.Store) error) error {
	return fn(ts)
}

// =============================================================================
// AUDIT TRANSACTIONS (generic.Store)
// =============================================================================

const txColumns = `id, entity_id, resource_type, effective_at, delta_value, delta_unit,
	tx_type, reference_id, reason, idempotency_key, metadata_json, created_by, created_at`

// Append adds a transaction to the audit log.
func (qs queries) Append(ctx context.Context, tx generic.Transaction) error {
	metadataJSON, err := json.Marshal(tx.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	resource := ""
	if tx.ResourceType != nil {
		resource = tx.ResourceType.ResourceID()
	}

	_, err = qs.q.ExecContext(ctx, `INSERT INTO transactions (`+txColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(tx.ID),
		string(tx.EntityID),
		resource,
		formatDate(tx.EffectiveAt),
		tx.Delta.Value.String(),
		string(tx.Delta.Unit),
		string(tx.Type),
		nullString(tx.ReferenceID),
		nullString(tx.Reason),
		nullString(tx.IdempotencyKey),
		string(metadataJSON),
		nullString(tx.CreatedBy),
		formatDate(tx.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return generic.ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

// Load returns all transactions for an entity in insertion order.
func (qs queries) Load(ctx context.Context, entityID generic.EntityID) ([]generic.Transaction, error) {
	rows, err := qs.q.QueryContext(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE entity_id = ? ORDER BY seq ASC`, string(entityID))
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []generic.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

// Exists checks if an idempotency key exists.
func (qs queries) Exists(ctx context.Context, idempotencyKey string) (bool, error) {
	var count int
	err := qs.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE idempotency_key = ?", idempotencyKey,
	).Scan(&count)
	return count > 0, err
}

func scanTransaction(rows *sql.Rows) (generic.Transaction, error) {
	var (
		tx             generic.Transaction
		resourceTypeID string
		effectiveAt    string
		deltaValue     string
		deltaUnit      string
		txType         string
		referenceID    sql.NullString
		reason         sql.NullString
		idempotencyKey sql.NullString
		metadataJSON   sql.NullString
		createdBy      sql.NullString
		createdAt      string
	)
	err := rows.Scan(
		&tx.ID, &tx.EntityID, &resourceTypeID, &effectiveAt, &deltaValue, &deltaUnit,
		&txType, &referenceID, &reason, &idempotencyKey, &metadataJSON, &createdBy, &createdAt,
	)
	if err != nil {
		return tx, fmt.Errorf("failed to scan transaction: %w", err)
	}

	tx.ResourceType = generic.GetOrCreateResource(resourceTypeID)
	tx.EffectiveAt = parseDate(effectiveAt)
	tx.CreatedAt = parseDate(createdAt)
	tx.Delta = parseAmount(deltaValue, deltaUnit)
	tx.Type = generic.TransactionType(txType)
	tx.ReferenceID = referenceID.String
	tx.Reason = reason.String
	tx.IdempotencyKey = idempotencyKey.String
	tx.CreatedBy = createdBy.String
	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &tx.Metadata); err != nil {
			return tx, fmt.Errorf("decoding metadata of %s: %w", tx.ID, err)
		}
	}
	return tx, nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee inserts or updates an employee.
func (qs queries) SaveEmployee(ctx context.Context, e timeoff.Employee) error {
	_, err := qs.q.ExecContext(ctx, `
		INSERT INTO employees (id, name, hire_date, termination_date, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			hire_date = excluded.hire_date,
			termination_date = excluded.termination_date
	`,
		string(e.ID), e.Name, nullDate(e.HireDate), nullDate(e.TerminationDate),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// GetEmployee returns an employee by ID.
func (qs queries) GetEmployee(ctx context.Context, id generic.EntityID) (timeoff.Employee, error) {
	row := qs.q.QueryRowContext(ctx,
		`SELECT id, name, hire_date, termination_date FROM employees WHERE id = ?`, string(id))
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return timeoff.Employee{}, fmt.Errorf("%w: employee %s", generic.ErrEntityNotFound, id)
	}
	return e, err
}

// ListEmployees returns all employees ordered by ID.
func (qs queries) ListEmployees(ctx context.Context) ([]timeoff.Employee, error) {
	rows, err := qs.q.QueryContext(ctx,
		`SELECT id, name, hire_date, termination_date FROM employees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var out []timeoff.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (timeoff.Employee, error) {
	var (
		e           timeoff.Employee
		hire, until sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Name, &hire, &until); err != nil {
		return e, err
	}
	e.HireDate = parseNullDate(hire)
	e.TerminationDate = parseNullDate(until)
	return e, nil
}

// =============================================================================
// LEDGER RECORDS
// =============================================================================

// LoadLedger returns the ledger record of an employee.
func (qs queries) LoadLedger(ctx context.Context, id generic.EntityID) (timeoff.LedgerRecord, error) {
	var (
		rec                      timeoff.LedgerRecord
		usedAnnual, usedSick     string
		substitute, compensatory string
		archived                 bool
		legacy                   sql.NullString
		updatedAt                string
	)
	err := qs.q.QueryRowContext(ctx, `
		SELECT employee_id, annual_days, used_annual_days, sick_days, used_sick_days,
		       substitute_leave_hours, compensatory_leave_hours, archived, legacy_json, updated_at
		FROM ledgers WHERE employee_id = ?
	`, string(id)).Scan(
		&rec.EmployeeID, &rec.Annual.Entitlement, &usedAnnual, &rec.Sick.Entitlement, &usedSick,
		&substitute, &compensatory, &archived, &legacy, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return timeoff.LedgerRecord{}, fmt.Errorf("%w: ledger of %s", generic.ErrEntityNotFound, id)
	}
	if err != nil {
		return timeoff.LedgerRecord{}, fmt.Errorf("failed to load ledger: %w", err)
	}

	rec.Annual.Used = generic.MustParseDecimal(usedAnnual)
	rec.Sick.Used = generic.MustParseDecimal(usedSick)
	rec.Substitute.Hours = generic.MustParseDecimal(substitute)
	rec.Compensatory.Hours = generic.MustParseDecimal(compensatory)
	rec.Archived = archived
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	if legacy.Valid {
		if err := json.Unmarshal([]byte(legacy.String), &rec.LegacyHours); err != nil {
			return timeoff.LedgerRecord{}, fmt.Errorf("decoding legacy hours of %s: %w", id, err)
		}
	}
	return rec, nil
}

// SaveLedger writes the full ledger record. A nil LegacyHours clears the
// legacy column.
func (qs queries) SaveLedger(ctx context.Context, rec timeoff.LedgerRecord) error {
	var legacy sql.NullString
	if rec.LegacyHours != nil {
		b, err := json.Marshal(rec.LegacyHours)
		if err != nil {
			return fmt.Errorf("encoding legacy hours: %w", err)
		}
		legacy = sql.NullString{String: string(b), Valid: true}
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err := qs.q.ExecContext(ctx, `
		INSERT INTO ledgers (employee_id, annual_days, used_annual_days, sick_days, used_sick_days,
		                     substitute_leave_hours, compensatory_leave_hours, archived, legacy_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			annual_days = excluded.annual_days,
			used_annual_days = excluded.used_annual_days,
			sick_days = excluded.sick_days,
			used_sick_days = excluded.used_sick_days,
			substitute_leave_hours = excluded.substitute_leave_hours,
			compensatory_leave_hours = excluded.compensatory_leave_hours,
			archived = excluded.archived,
			legacy_json = excluded.legacy_json,
			updated_at = excluded.updated_at
	`,
		string(rec.EmployeeID),
		rec.Annual.Entitlement, rec.Annual.Used.String(),
		rec.Sick.Entitlement, rec.Sick.Used.String(),
		rec.Substitute.Hours.String(), rec.Compensatory.Hours.String(),
		rec.Archived, legacy,
		updatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	return nil
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

const requestColumns = `id, employee_id, category, sub_type, amount, unit, start_date, end_date,
	reason, status, submitted_at, processed_at, processed_by, admin_notes`

// SaveRequest inserts or updates a leave request.
func (qs queries) SaveRequest(ctx context.Context, r timeoff.LeaveRequest) error {
	var processedAt sql.NullString
	if r.ProcessedAt != nil {
		processedAt = sql.NullString{String: r.ProcessedAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}
	_, err := qs.q.ExecContext(ctx, `
		INSERT INTO requests (`+requestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			processed_at = excluded.processed_at,
			processed_by = excluded.processed_by,
			admin_notes = excluded.admin_notes
	`,
		r.ID, string(r.EmployeeID), string(r.Category), nullString(string(r.SubType)),
		r.Amount.Value.String(), string(r.Amount.Unit),
		formatDate(r.Period.Start), formatDate(r.Period.End),
		nullString(r.Reason), string(r.Status),
		r.SubmittedAt.UTC().Format(time.RFC3339Nano),
		processedAt, nullString(r.ProcessedBy), nullString(r.AdminNotes),
	)
	if err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	return nil
}

// GetRequest returns a request by ID.
func (qs queries) GetRequest(ctx context.Context, id string) (timeoff.LeaveRequest, error) {
	reqs, err := qs.queryRequests(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = ?`, id)
	if err != nil {
		return timeoff.LeaveRequest{}, err
	}
	if len(reqs) == 0 {
		return timeoff.LeaveRequest{}, fmt.Errorf("%w: %s", generic.ErrRequestNotFound, id)
	}
	return reqs[0], nil
}

// ListRequests returns an employee's requests, newest first.
func (qs queries) ListRequests(ctx context.Context, employeeID generic.EntityID) ([]timeoff.LeaveRequest, error) {
	return qs.queryRequests(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE employee_id = ? ORDER BY submitted_at DESC`,
		string(employeeID))
}

// ListPendingRequests returns all pending requests, oldest first.
func (qs queries) ListPendingRequests(ctx context.Context) ([]timeoff.LeaveRequest, error) {
	return qs.queryRequests(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE status = ? ORDER BY submitted_at ASC`,
		string(timeoff.StatusPending))
}

func (qs queries) queryRequests(ctx context.Context, query string, args ...any) ([]timeoff.LeaveRequest, error) {
	rows, err := qs.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var out []timeoff.LeaveRequest
	for rows.Next() {
		var (
			r                              timeoff.LeaveRequest
			category, unit, status, amount string
			start, end, submittedAt        string
			subType, reason, processedBy   sql.NullString
			adminNotes, processedAt        sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.EmployeeID, &category, &subType, &amount, &unit, &start, &end,
			&reason, &status, &submittedAt, &processedAt, &processedBy, &adminNotes); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		r.Category = timeoff.Category(category)
		r.SubType = timeoff.LegalSubType(subType.String)
		r.Amount = parseAmount(amount, unit)
		r.Period = generic.Period{Start: parseDate(start), End: parseDate(end)}
		r.Reason = reason.String
		r.Status = timeoff.RequestStatus(status)
		r.SubmittedAt, _ = time.Parse(time.RFC3339Nano, submittedAt)
		if processedAt.Valid {
			t, _ := time.Parse(time.RFC3339Nano, processedAt.String)
			r.ProcessedAt = &t
		}
		r.ProcessedBy = processedBy.String
		r.AdminNotes = adminNotes.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

// SaveHoliday saves a holiday to the database.
func (s *Store) SaveHoliday(ctx context.Context, h generic.Holiday) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, date, name, recurring, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date, name) DO UPDATE SET
			recurring = excluded.recurring
	`,
		h.ID, formatDate(h.Date), h.Name, h.Recurring, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// HolidayName implements generic.HolidayCalendar.
func (s *Store) HolidayName(ctx context.Context, date generic.TimePoint) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `
		SELECT name FROM holidays
		WHERE (recurring = 0 AND date = ?)
		   OR (recurring = 1 AND strftime('%m-%d', date) = ?)
		ORDER BY recurring ASC
		LIMIT 1
	`, formatDate(date), date.Time.Format("01-02")).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return name, err
}

// ListHolidays returns the holidays falling in year, recurring ones moved
// to that year.
func (s *Store) ListHolidays(ctx context.Context, year int) ([]generic.Holiday, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, name, recurring FROM holidays
		WHERE recurring = 1 OR strftime('%Y', date) = ?
		ORDER BY strftime('%m-%d', date) ASC
	`, fmt.Sprintf("%04d", year))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []generic.Holiday
	for rows.Next() {
		var (
			h       generic.Holiday
			dateStr string
		)
		if err := rows.Scan(&h.ID, &dateStr, &h.Name, &h.Recurring); err != nil {
			return nil, err
		}
		h.Date = parseDate(dateStr)
		if h.Recurring {
			h.Date = generic.NewTimePoint(year, h.Date.Month(), h.Date.Day())
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatDate(tp generic.TimePoint) string {
	return tp.Time.Format(generic.DateLayout)
}

func parseDate(s string) generic.TimePoint {
	tp, err := generic.ParseDate(s)
	if err != nil {
		return generic.TimePoint{}
	}
	return tp
}

func nullDate(tp *generic.TimePoint) sql.NullString {
	if tp == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatDate(*tp), Valid: true}
}

func parseNullDate(s sql.NullString) *generic.TimePoint {
	if !s.Valid || s.String == "" {
		return nil
	}
	tp := parseDate(s.String)
	return &tp
}

func parseAmount(value, unit string) generic.Amount {
	d, err := decimal.NewFromString(value)
	if err != nil {
		d = decimal.Zero
	}
	return generic.Amount{Value: d, Unit: generic.Unit(unit)}
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
