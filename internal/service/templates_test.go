package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pkoval/tally/internal/recurrence"
)

func TestCreateTemplate_MaterializesImmediately(t *testing.T) {
	t.Parallel()
	fx := setupSchedulerTest(t)

	tpl, err := fx.sched.CreateTemplate(fx.ctx, ScheduleParams{
		AccountID:       checkingID,
		Amount:          decimal.NewFromInt(-42),
		Note:            "Gym",
		Start:           time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Rule:            &recurrence.Rule{Frequency: recurrence.Monthly, Interval: 1},
		IncludeStartDay: true,
	})
	require.NoError(t, err)
	require.NotNil(t, tpl)

	stored := fx.mustGet(t, tpl.ID)
	require.True(t, stored.IsTemplate)
	require.NotNil(t, stored.RuleFrequency)
	require.Equal(t, "monthly", *stored.RuleFrequency)
	require.Equal(t, "USD", stored.Currency)

	series, err := fx.store.ByTemplate(fx.ctx, tpl.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"2026-04-01", "2026-05-01", "2026-06-01"}, effectiveDates(series))
}

func TestCreateTemplate_RejectsInvalid(t *testing.T) {
	t.Parallel()
	fx := setupSchedulerTest(t)

	base := ScheduleParams{
		AccountID: checkingID,
		Amount:    decimal.NewFromInt(-42),
		Start:     time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Rule:      &recurrence.Rule{Frequency: recurrence.Monthly, Interval: 1},
	}

	noRule := base
	noRule.Rule = nil
	_, err := fx.sched.CreateTemplate(fx.ctx, noRule)
	require.Error(t, err)

	badInterval := base
	badInterval.Rule = &recurrence.Rule{Frequency: recurrence.Monthly, Interval: 0}
	_, err = fx.sched.CreateTemplate(fx.ctx, badInterval)
	require.Error(t, err)

	noAmount := base
	noAmount.Amount = decimal.Zero
	_, err = fx.sched.CreateTemplate(fx.ctx, noAmount)
	require.Error(t, err)

	noAccount := base
	noAccount.AccountID = ""
	_, err = fx.sched.CreateTemplate(fx.ctx, noAccount)
	require.Error(t, err)
}

func TestCreateScheduled_WeekendShiftAndReminder(t *testing.T) {
	t.Parallel()
	fx := setupSchedulerTest(t)

	// 2026-03-14 is a Saturday.
	shifted, err := fx.sched.CreateScheduled(fx.ctx, ScheduleParams{
		AccountID:        checkingID,
		Amount:           decimal.NewFromInt(-30),
		Note:             "Insurance",
		Start:            time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		AdjustWorkingDay: true,
	})
	require.NoError(t, err)
	require.Equal(t, "2026-03-16", fx.mustGet(t, shifted.ID).EffectiveDate.Format("2006-01-02"))

	n, err := fx.notifs.Get(fx.ctx, shifted.ID)
	require.NoError(t, err)
	require.NotNil(t, n)
	require.True(t, n.FiresAt.Equal(time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)), "fires at %s", n.FiresAt)

	plain, err := fx.sched.CreateScheduled(fx.ctx, ScheduleParams{
		AccountID: checkingID,
		Amount:    decimal.NewFromInt(-30),
		Start:     time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, "2026-03-14", fx.mustGet(t, plain.ID).EffectiveDate.Format("2006-01-02"))
}

func TestUpcoming_ProjectsWithoutPersisting(t *testing.T) {
	t.Parallel()
	fx := setupSchedulerTest(t)

	plain := monthlyTemplate("tpl-plain", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	plain.IncludeStartDay = true
	require.NoError(t, fx.store.Insert(fx.ctx, plain))

	// From the 31st the clamped nominals are Feb 28 and Mar 28, both
	// Saturdays in 2026, so both projections shift to Monday.
	payday := monthlyTemplate("tpl-payday", time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))
	payday.AdjustWorkingDay = true
	require.NoError(t, fx.store.Insert(fx.ctx, payday))

	broken := monthlyTemplate("tpl-broken", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	freq := "hourly"
	broken.RuleFrequency = &freq
	require.NoError(t, fx.store.Insert(fx.ctx, broken))

	occ, err := fx.sched.Upcoming(fx.ctx, 2)
	require.NoError(t, err)
	require.Len(t, occ, 4)

	type row struct {
		template string
		date     string
		adjusted bool
	}
	var got []row
	for _, o := range occ {
		got = append(got, row{o.TemplateID, o.Date.Format("2006-01-02"), o.Adjusted})
	}
	require.Equal(t, []row{
		{"tpl-payday", "2026-03-02", true},
		{"tpl-plain", "2026-03-15", false},
		{"tpl-payday", "2026-03-30", true},
		{"tpl-plain", "2026-04-15", false},
	}, got)

	// A preview never writes instances.
	for _, id := range []string{"tpl-plain", "tpl-payday", "tpl-broken"} {
		series, err := fx.store.ByTemplate(fx.ctx, id)
		require.NoError(t, err)
		require.Empty(t, series)
	}
}

func TestUpcoming_ResumesPastMaterializedWindow(t *testing.T) {
	t.Parallel()
	fx := setupSchedulerTest(t)

	tpl := monthlyTemplate("tpl-resume", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	tpl.IncludeStartDay = true
	require.NoError(t, fx.store.Insert(fx.ctx, tpl))
	_, err := fx.sched.GenerateAll(fx.ctx)
	require.NoError(t, err)

	// Materialized through 2026-05-15; the preview continues beyond it.
	occ, err := fx.sched.Upcoming(fx.ctx, 2)
	require.NoError(t, err)
	require.Len(t, occ, 2)
	require.Equal(t, "2026-06-15", occ[0].Date.Format("2006-01-02"))
	require.Equal(t, "2026-07-15", occ[1].Date.Format("2006-01-02"))
}

func TestUpcoming_RespectsRecurrenceEnd(t *testing.T) {
	t.Parallel()
	fx := setupSchedulerTest(t)

	end := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)
	tpl := monthlyTemplate("tpl-capped", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	tpl.RecurrenceEnd = &end
	require.NoError(t, fx.store.Insert(fx.ctx, tpl))

	occ, err := fx.sched.Upcoming(fx.ctx, 5)
	require.NoError(t, err)
	require.Len(t, occ, 1)
	require.Equal(t, "2026-04-15", occ[0].Date.Format("2006-01-02"))
}
