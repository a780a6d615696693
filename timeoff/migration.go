package timeoff

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// LEGACY HOUR BALANCES
// =============================================================================
//
// The previous system kept hour balances in a free-form blob in which the
// same balance could appear under two names. Each pair is reconciled by
// preferring the non-zero value; when both are non-zero the canonical name
// wins.

var legacyHourFields = []struct {
	category  Category
	canonical string
	alias     string
}{
	{CategorySubstitute, "substitute_leave_hours", "substitute_hours"},
	{CategoryCompensatory, "compensatory_leave_hours", "compensatory_hours"},
}

// ReconcileLegacyHours extracts one value per hour category from a legacy blob.
func ReconcileLegacyHours(blob map[string]float64) (substitute, compensatory decimal.Decimal) {
	out := map[Category]decimal.Decimal{}
	for _, f := range legacyHourFields {
		v := blob[f.canonical]
		if v == 0 {
			v = blob[f.alias]
		}
		out[f.category] = decimal.NewFromFloat(v)
	}
	return out[CategorySubstitute], out[CategoryCompensatory]
}

// ImportLegacyHours attaches a legacy hour blob to the employee's ledger
// record for MigrateLegacyBalances to fold in. An employee is imported at
// most once; later calls report false and change nothing.
func (l *LeaveLedger) ImportLegacyHours(ctx context.Context, id generic.EntityID, blob map[string]float64) (bool, error) {
	key := "legacy-import-" + string(id)
	imported := false
	err := l.Update(ctx, id, func(tx Store, rec *LedgerRecord) error {
		done, err := tx.Exists(ctx, key)
		if err != nil || done {
			return err
		}
		rec.LegacyHours = blob
		imported = true
		return l.audit(ctx, tx, id, CategorySubstitute, generic.NewAmount(0, generic.UnitHours),
			Source{Type: generic.TxMigration, Reason: "legacy export imported", IdempotencyKey: key})
	})
	return imported, err
}

// ImportLegacyExport reads a legacy export, a JSON object mapping employee
// IDs to hour blobs, and imports each blob. Employees must already exist.
// Returns the number of blobs imported.
func ImportLegacyExport(ctx context.Context, r io.Reader, ledger *LeaveLedger) (int, error) {
	var export map[generic.EntityID]map[string]float64
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return 0, fmt.Errorf("decoding legacy export: %w", err)
	}
	ids := make([]generic.EntityID, 0, len(export))
	for id := range export {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	imported := 0
	for _, id := range ids {
		ok, err := ledger.ImportLegacyHours(ctx, id, export[id])
		if err != nil {
			return imported, fmt.Errorf("importing %s: %w", id, err)
		}
		if ok {
			imported++
		}
	}
	return imported, nil
}

// MigrateLegacyBalances folds every remaining legacy blob into its ledger
// record and clears it. Records without a blob are left alone, so running
// it again changes nothing. Returns the number of records migrated.
func MigrateLegacyBalances(ctx context.Context, store Store, ledger *LeaveLedger, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	employees, err := store.ListEmployees(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing employees: %w", err)
	}

	migrated := 0
	for _, emp := range employees {
		applied := false
		err := ledger.Update(ctx, emp.ID, func(tx Store, rec *LedgerRecord) error {
			if rec.LegacyHours == nil {
				return nil
			}
			sub, comp := ReconcileLegacyHours(rec.LegacyHours)
			for _, c := range []struct {
				cat  Category
				bal  *HourBalance
				want decimal.Decimal
			}{
				{CategorySubstitute, &rec.Substitute, sub},
				{CategoryCompensatory, &rec.Compensatory, comp},
			} {
				if c.want.IsNegative() {
					return &generic.InvalidAmountError{Reason: fmt.Sprintf("legacy %s balance is negative", c.cat)}
				}
				delta := c.want.Sub(c.bal.Hours)
				c.bal.Hours = c.want
				if delta.IsZero() {
					continue
				}
				if err := ledger.audit(ctx, tx, emp.ID, c.cat,
					generic.NewAmountFromDecimal(delta, generic.UnitHours),
					Source{Type: generic.TxMigration, Reason: "legacy hour balance reconciliation"},
				); err != nil {
					return err
				}
			}
			rec.LegacyHours = nil
			applied = true
			return nil
		})
		if err != nil {
			return migrated, fmt.Errorf("migrating %s: %w", emp.ID, err)
		}
		if applied {
			migrated++
		}
	}
	logger.Info("legacy hour balances migrated", zap.Int("records", migrated))
	return migrated, nil
}
