package timeoff_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

// =============================================================================
// TENURE FORMULA
// =============================================================================

func TestAnnualEntitlement(t *testing.T) {
	tests := []struct {
		name string
		hire *generic.TimePoint
		eval generic.TimePoint
		want int
	}{
		{"hire year, day before monthly anniversary", datePtr(2024, time.March, 10), date(2024, time.June, 9), 3},
		{"hire year, on monthly anniversary", datePtr(2024, time.March, 10), date(2024, time.June, 10), 4},
		{"hire year, hire day itself", datePtr(2024, time.March, 10), date(2024, time.March, 10), 1},
		{"hire year, evaluated before hire", datePtr(2025, time.May, 1), date(2025, time.March, 1), 0},
		{"year after hire, pro-rated", datePtr(2024, time.October, 1), date(2025, time.January, 1), 13},
		{"year after a full first year", datePtr(2023, time.January, 1), date(2024, time.January, 1), 15},
		{"second year after hire", datePtr(2023, time.July, 15), date(2025, time.January, 1), 15},
		{"third year after hire", datePtr(2022, time.July, 15), date(2025, time.January, 1), 16},
		{"ten years", datePtr(2015, time.January, 1), date(2025, time.January, 1), 19},
		{"twenty one years reaches the cap", datePtr(2004, time.January, 1), date(2025, time.January, 1), 25},
		{"capped", datePtr(1990, time.January, 1), date(2025, time.January, 1), 25},
		{"evaluation before hire year", datePtr(2026, time.January, 1), date(2025, time.January, 1), 0},
		{"no hire date", nil, date(2025, time.January, 1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, timeoff.AnnualEntitlement(tt.hire, tt.eval))
		})
	}
}

func TestAnnualEntitlement_HireYearBounds(t *testing.T) {
	// GIVEN: Hires on several days of 2025
	// WHEN: Evaluating every day of 2025
	// THEN: The entitlement stays within 0..12 and never decreases

	for _, hire := range []generic.TimePoint{
		date(2025, time.January, 1),
		date(2025, time.January, 31),
		date(2025, time.February, 28),
		date(2025, time.June, 15),
		date(2025, time.December, 31),
	} {
		prev := 0
		for eval := date(2025, time.January, 1); eval.Year() == 2025; eval = eval.AddDays(1) {
			got := timeoff.AnnualEntitlement(&hire, eval)
			require.GreaterOrEqual(t, got, 0, "hire %s eval %s", hire, eval)
			require.LessOrEqual(t, got, 12, "hire %s eval %s", hire, eval)
			require.GreaterOrEqual(t, got, prev, "hire %s eval %s", hire, eval)
			prev = got
		}
	}

	hire := date(2025, time.January, 1)
	assert.Equal(t, 12, timeoff.AnnualEntitlement(&hire, date(2025, time.December, 31)))
}

// =============================================================================
// ACCRUAL RUN
// =============================================================================

func TestRunAnnualAccrual_ResetsBalances(t *testing.T) {
	// GIVEN: Employees with different tenures, one terminated, one with used sick leave
	// WHEN: Running the accrual as of 2025-01-01
	// THEN: Annual follows the tenure formula, sick is back to 60 unused,
	//       and the terminated employee is left alone

	ledger, store := newTestLedger(t)
	ctx := context.Background()

	onboard(t, ledger, "senior", datePtr(2015, time.January, 1))
	onboard(t, ledger, "junior", datePtr(2024, time.October, 1))
	onboard(t, ledger, "unknown-hire", nil)
	onboard(t, ledger, "leaver", datePtr(2010, time.January, 1))
	require.NoError(t, ledger.Archive(ctx, "leaver", date(2024, time.December, 31)))
	require.NoError(t, ledger.Debit(ctx, "senior", timeoff.CategorySick, days(2), timeoff.Source{}))

	runner := timeoff.NewAccrualRunner(store, ledger, 4, nil)
	summary, err := runner.RunAnnualAccrual(ctx, date(2025, time.January, 1))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 0, summary.Skipped)
	assert.Empty(t, summary.Failed)

	want := map[generic.EntityID]int{"senior": 19, "junior": 13, "unknown-hire": 0}
	for id, annual := range want {
		rec, err := store.LoadLedger(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, annual, rec.Annual.Entitlement, id)
		assert.True(t, rec.Annual.Used.IsZero(), id)
		assert.Equal(t, 60, rec.Sick.Entitlement, id)
		assert.True(t, rec.Sick.Used.IsZero(), id)
	}

	leaver, err := store.LoadLedger(ctx, "leaver")
	require.NoError(t, err)
	assert.Equal(t, 0, leaver.Annual.Entitlement)
}

func TestRunAnnualAccrual_Idempotent(t *testing.T) {
	// GIVEN: A completed accrual run
	// WHEN: Running it again for the same date after leave was taken
	// THEN: Every employee is skipped and the used leave stays used

	ledger, store := newTestLedger(t)
	ctx := context.Background()
	onboard(t, ledger, "emp-1", datePtr(2015, time.January, 1))
	onboard(t, ledger, "emp-2", datePtr(2020, time.June, 1))

	runner := timeoff.NewAccrualRunner(store, ledger, 0, nil)
	asOf := date(2025, time.January, 1)
	_, err := runner.RunAnnualAccrual(ctx, asOf)
	require.NoError(t, err)

	require.NoError(t, ledger.Debit(ctx, "emp-1", timeoff.CategoryAnnual, days(2), timeoff.Source{}))

	summary, err := runner.RunAnnualAccrual(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 2, summary.Skipped)

	rec, err := store.LoadLedger(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, rec.Annual.Used.Equal(dec("2")))
}

func TestRunAnnualAccrual_AuditMatchesBalances(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()
	onboard(t, ledger, "emp-1", datePtr(2015, time.January, 1))
	require.NoError(t, ledger.Debit(ctx, "emp-1", timeoff.CategorySick, days(4), timeoff.Source{}))

	runner := timeoff.NewAccrualRunner(store, ledger, 1, nil)
	_, err := runner.RunAnnualAccrual(ctx, date(2025, time.January, 1))
	require.NoError(t, err)

	audit := generic.NewLedger(store)
	annual, err := audit.Net(ctx, "emp-1", timeoff.CategoryAnnual, generic.UnitDays)
	require.NoError(t, err)
	sick, err := audit.Net(ctx, "emp-1", timeoff.CategorySick, generic.UnitDays)
	require.NoError(t, err)

	assert.True(t, annual.Value.Equal(dec("19")))
	assert.True(t, sick.Value.Equal(dec("60")))

	exists, err := store.Exists(ctx, "accrual-emp-1-2025-01-01")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAccrueEmployee(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()
	onboard(t, ledger, "emp-1", datePtr(2015, time.January, 1))
	onboard(t, ledger, "other", datePtr(2015, time.January, 1))
	onboard(t, ledger, "leaver", datePtr(2015, time.January, 1))
	require.NoError(t, ledger.Archive(ctx, "leaver", date(2024, time.June, 1)))

	runner := timeoff.NewAccrualRunner(store, ledger, 1, nil)
	asOf := date(2025, time.January, 1)

	t.Run("applies once", func(t *testing.T) {
		applied, err := runner.AccrueEmployee(ctx, "emp-1", asOf)
		require.NoError(t, err)
		assert.True(t, applied)

		applied, err = runner.AccrueEmployee(ctx, "emp-1", asOf)
		require.NoError(t, err)
		assert.False(t, applied)
	})

	t.Run("touches nobody else", func(t *testing.T) {
		rec, err := store.LoadLedger(ctx, "other")
		require.NoError(t, err)
		assert.Equal(t, 0, rec.Annual.Entitlement)
	})

	t.Run("skips terminated employees", func(t *testing.T) {
		applied, err := runner.AccrueEmployee(ctx, "leaver", asOf)
		require.NoError(t, err)
		assert.False(t, applied)
	})

	t.Run("skips employees hired after the run date", func(t *testing.T) {
		onboard(t, ledger, "future", datePtr(2025, time.February, 1))

		applied, err := runner.AccrueEmployee(ctx, "future", asOf)
		require.NoError(t, err)
		assert.False(t, applied)

		exists, err := store.Exists(ctx, "accrual-future-2025-01-01")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("unknown employee", func(t *testing.T) {
		_, err := runner.AccrueEmployee(ctx, "ghost", asOf)
		assert.ErrorIs(t, err, generic.ErrEntityNotFound)
	})
}

func TestRunAnnualAccrual_CancelledContext(t *testing.T) {
	ledger, store := newTestLedger(t)
	onboard(t, ledger, "emp-1", datePtr(2015, time.January, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := timeoff.NewAccrualRunner(store, ledger, 1, nil)
	_, err := runner.RunAnnualAccrual(ctx, date(2025, time.January, 1))
	assert.Error(t, err)
}

// =============================================================================
// UNITS
// =============================================================================

func TestUnits(t *testing.T) {
	assert.True(t, timeoff.HoursToDays(dec("9")).Equal(dec("1.125")))
	assert.True(t, timeoff.HoursToDays(dec("-3")).IsZero())
	assert.True(t, timeoff.HoursToDays(dec("0")).IsZero())
	assert.True(t, timeoff.DaysToHours(dec("1.5")).Equal(dec("12")))
	assert.True(t, timeoff.DaysToHours(timeoff.HoursToDays(dec("20"))).Equal(dec("20")))
	assert.Equal(t, "1.125 days (9 hours)", timeoff.FormatDays(dec("9")))
}

func TestUnits_DaysRoundTrip(t *testing.T) {
	eighth := dec("0.125")
	for k := int64(1); k <= 480; k++ {
		d := eighth.Mul(decimal.NewFromInt(k))
		back := timeoff.HoursToDays(timeoff.DaysToHours(d))
		require.True(t, back.Equal(d), "%s days came back as %s", d, back)
	}
}
