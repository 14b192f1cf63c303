package generic_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/paye-engine/generic"
)

func TestPeriod_IncludesWholeEndDay(t *testing.T) {
	p, err := generic.NewPeriod(generic.Date(2025, time.March, 1), generic.Date(2025, time.March, 31))
	require.NoError(t, err)

	assert.True(t, p.Contains(time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2025, time.February, 28, 23, 59, 0, 0, time.UTC)))
	assert.Len(t, p.Days(), 31)
}

func TestPeriod_RejectsInverted(t *testing.T) {
	_, err := generic.NewPeriod(generic.Date(2025, time.March, 2), generic.Date(2025, time.March, 1))
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
	assert.True(t, generic.IsClientError(err))
}

func TestPeriod_Overlaps(t *testing.T) {
	march := generic.Period{Start: generic.Date(2025, time.March, 1), End: generic.Date(2025, time.March, 31)}
	lastDay := generic.Period{Start: generic.Date(2025, time.March, 31), End: generic.Date(2025, time.March, 31)}
	april := generic.Period{Start: generic.Date(2025, time.April, 1), End: generic.Date(2025, time.April, 30)}

	assert.True(t, march.Overlaps(lastDay))
	assert.True(t, lastDay.Overlaps(march))
	assert.False(t, march.Overlaps(april))
}

func TestTimeOfDay(t *testing.T) {
	tod, err := generic.ParseTimeOfDay("09:15")
	require.NoError(t, err)
	assert.Equal(t, int64(9*3600+15*60), tod.Seconds)
	assert.Equal(t, "09:15:00", tod.String())

	unset, err := generic.ParseTimeOfDay("")
	require.NoError(t, err)
	assert.False(t, unset.Valid)

	_, err = generic.ParseTimeOfDay("25:99")
	assert.ErrorIs(t, err, generic.ErrInvalidFormat)

	day := generic.Date(2025, time.March, 10)
	assert.Equal(t, time.Date(2025, time.March, 10, 9, 15, 0, 0, time.UTC), tod.On(day))
}

func TestSecondsOfDay_DropsSubSecond(t *testing.T) {
	ts := time.Date(2025, time.March, 10, 9, 5, 3, 999_000_000, time.UTC)
	assert.Equal(t, int64(9*3600+5*60+3), generic.SecondsOfDay(ts))
}

func TestHourlyAmount(t *testing.T) {
	// 45 minutes at 20/hour
	got := generic.HourlyAmount(2700, decimal.NewFromInt(20))
	assert.True(t, got.Equal(decimal.NewFromInt(15)), "got %s", got)

	// 10 minutes at 10/hour rounds to cents
	got = generic.HourlyAmount(600, decimal.NewFromInt(10))
	assert.Equal(t, "1.67", got.StringFixed(2))
}

func TestMustParseDecimal(t *testing.T) {
	assert.Equal(t, "12.50", generic.MustParseDecimal("12.5").StringFixed(2))
	assert.Panics(t, func() { generic.MustParseDecimal("12,5") })
	assert.Panics(t, func() { generic.MustParseDecimal("") })
}

func TestMonthsBetween(t *testing.T) {
	assert.Equal(t, 14, generic.MonthsBetween(generic.Date(2024, time.July, 1), generic.Date(2025, time.September, 15)))
	assert.Equal(t, -1, generic.MonthsBetween(generic.Date(2025, time.February, 1), generic.Date(2025, time.January, 1)))
}
