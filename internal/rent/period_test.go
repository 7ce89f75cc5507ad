package rent_test

import (
	"testing"
	"time"

	"github.com/maynagashev/roomrent/internal/rent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Часы клиента: 14 октября 2026, вечер по Катманду.
func fixedCalculator() rent.Calculator {
	kathmandu := time.FixedZone("NPT", 5*3600+45*60)
	return rent.Calculator{Now: func() time.Time {
		return time.Date(2026, time.October, 14, 22, 30, 0, 0, kathmandu)
	}}
}

func mustPeriod(t *testing.T, from, to string) rent.Period {
	t.Helper()
	p, err := rent.ParsePeriod(from, to)
	require.NoError(t, err)
	return p
}

func TestCalculator_Validate(t *testing.T) {
	calc := fixedCalculator()

	tests := []struct {
		name     string
		from, to string
		wantDays int
		wantErr  error
	}{
		{name: "Три дня с сегодняшнего", from: "2026-10-14", to: "2026-10-17", wantDays: 3},
		{name: "Минимум одни сутки", from: "2026-10-20", to: "2026-10-21", wantDays: 1},
		{name: "Через конец месяца", from: "2026-10-30", to: "2026-11-02", wantDays: 3},
		{name: "Сегодня по сегодня", from: "2026-10-14", to: "2026-10-14", wantErr: rent.ErrEndTooEarly},
		{name: "Окончание раньше начала", from: "2026-10-20", to: "2026-10-18", wantErr: rent.ErrEndTooEarly},
		{name: "Начало вчера", from: "2026-10-13", to: "2026-10-16", wantErr: rent.ErrStartInPast},
		{name: "Нет даты начала", from: "", to: "2026-10-16", wantErr: rent.ErrPeriodUnset},
		{name: "Нет даты окончания", from: "2026-10-14", to: "", wantErr: rent.ErrPeriodUnset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, err := calc.Validate(mustPeriod(t, tt.from, tt.to))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, days)
				var inputErr *rent.InputError
				assert.ErrorAs(t, err, &inputErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDays, days)
		})
	}
}

func TestCalculator_ValidPeriodsProperty(t *testing.T) {
	calc := fixedCalculator()
	today := calc.Today()

	// Для всех start >= today и end >= start+1: длительность = разница в сутках и >= 1
	for startOffset := 0; startOffset < 40; startOffset++ {
		for length := 1; length < 40; length++ {
			from := today.AddDate(0, 0, startOffset)
			to := from.AddDate(0, 0, length)
			days, err := calc.Validate(rent.Period{From: from, To: to})
			require.NoError(t, err)
			require.Equal(t, length, days)
			require.GreaterOrEqual(t, days, 1)
		}
	}
}

func TestCalculator_InvalidPeriodsProperty(t *testing.T) {
	calc := fixedCalculator()
	today := calc.Today()

	for offset := -10; offset < 10; offset++ {
		from := today.AddDate(0, 0, offset)
		for length := -5; length <= 0; length++ {
			_, err := calc.Validate(rent.Period{From: from, To: from.AddDate(0, 0, length)})
			require.Error(t, err, "end <= start отклоняется")
		}
		if offset < 0 {
			_, err := calc.Validate(rent.Period{From: from, To: from.AddDate(0, 0, 3)})
			require.ErrorIs(t, err, rent.ErrStartInPast)
		}
	}
}

func TestCalculator_TodayIgnoresTimeOfDay(t *testing.T) {
	calc := fixedCalculator()
	assert.Equal(t, "2026-10-14", calc.Today().Format(rent.DateLayout))

	// Начало сегодня с временем суток тоже допустимо
	from := time.Date(2026, time.October, 14, 8, 0, 0, 0, time.UTC)
	days, err := calc.Validate(rent.Period{From: from, To: from.AddDate(0, 0, 2)})
	require.NoError(t, err)
	assert.Equal(t, 2, days)
}

func TestDays(t *testing.T) {
	assert.Equal(t, 0, rent.Days(rent.Period{}), "невыбранные даты")
	assert.Equal(t, 0, rent.Days(mustPeriod(t, "2026-10-20", "2026-10-10")), "отрицательная разница обрезается")
	assert.Equal(t, 3, rent.Days(mustPeriod(t, "2026-10-14", "2026-10-17")))
	assert.Equal(t, 0, rent.Duration(time.Time{}, time.Now()))

	// Переход на летнее время не дает лишних суток
	ny, err := time.LoadLocation("America/New_York")
	if err == nil {
		from := time.Date(2026, time.March, 7, 0, 0, 0, 0, ny)
		to := time.Date(2026, time.March, 9, 0, 0, 0, 0, ny)
		assert.Equal(t, 2, rent.Days(rent.Period{From: from, To: to}))
	}
}

func TestParseDate(t *testing.T) {
	d, err := rent.ParseDate(" 2026-10-14 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC), d)

	d, err = rent.ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = rent.ParseDate("14/10/2026")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "неверный формат даты")

	_, err = rent.ParsePeriod("2026-10-14", "bad")
	require.Error(t, err)
}

func TestPeriod_Strings(t *testing.T) {
	p := mustPeriod(t, "2026-10-14", "2026-10-17")
	assert.Equal(t, "2026-10-14", p.FromString())
	assert.Equal(t, "2026-10-17", p.ToString())
	assert.Empty(t, rent.Period{}.FromString())
	assert.False(t, rent.Period{From: p.From}.IsSet())
}
