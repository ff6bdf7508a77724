package plan

import (
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketgrid/nsesync/internal/expiry"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// evening returns a clock far past the availability gate.
func evening(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 22, 0, 0, 0, time.Local) }
}

func newPlanner(t *testing.T, now func() time.Time) *Planner {
	t.Helper()
	cal, err := expiry.NewCalendar()
	require.NoError(t, err)
	return New(cal, Policy{AvailableAfterHour: 21, Now: now})
}

func TestEquityWindowsChunkedPerYear(t *testing.T) {
	p := newPlanner(t, evening(2023, time.June, 30))

	ws, err := p.EquityWindows("TCS", date(2021, time.March, 10), date(2023, time.June, 15), date(2021, time.January, 1))
	require.NoError(t, err)
	require.Len(t, ws, 3)
	assert.Equal(t, date(2021, time.March, 10), ws[0].From)
	assert.Equal(t, date(2021, time.December, 31), ws[0].To)
	assert.Equal(t, date(2022, time.January, 1), ws[1].From)
	assert.Equal(t, date(2022, time.December, 31), ws[1].To)
	assert.Equal(t, date(2023, time.January, 1), ws[2].From)
	assert.Equal(t, date(2023, time.June, 15), ws[2].To)
}

func TestEquityWatermarkClampSkipsWatermarkDay(t *testing.T) {
	p := newPlanner(t, evening(2022, time.June, 1))

	ws, err := p.EquityWindows("TCS", date(2021, time.January, 1), date(2022, time.March, 1), date(2021, time.June, 10))
	require.NoError(t, err)
	assert.Equal(t, date(2021, time.June, 11), ws[0].From)
}

func TestEquityFromEqualWatermarkUnchanged(t *testing.T) {
	p := newPlanner(t, evening(2022, time.June, 1))

	ws, err := p.EquityWindows("TCS", date(2021, time.June, 10), date(2021, time.July, 1), date(2021, time.June, 10))
	require.NoError(t, err)
	assert.Equal(t, date(2021, time.June, 10), ws[0].From)
}

func TestDailyWindowsRefetchWatermarkDay(t *testing.T) {
	p := newPlanner(t, evening(2021, time.July, 1))

	ws, err := p.DailyWindows(Delivery, date(2021, time.June, 7), date(2021, time.June, 11), date(2021, time.June, 9))
	require.NoError(t, err)
	require.Len(t, ws, 3)
	assert.Equal(t, date(2021, time.June, 9), ws[0].From)
	assert.Equal(t, ws[0].From, ws[0].To)
	assert.Equal(t, date(2021, time.June, 11), ws[2].From)
}

func TestClampPastToIsNoData(t *testing.T) {
	p := newPlanner(t, evening(2021, time.July, 1))

	_, err := p.EquityWindows("TCS", date(2021, time.June, 1), date(2021, time.June, 5), date(2021, time.June, 20))
	assert.True(t, eris.Is(err, ErrNoData))
}

func TestAvailabilityGate(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{"before gate", time.Date(2021, time.June, 11, 14, 0, 0, 0, time.Local), ErrNotYetAvailable},
		{"after gate", time.Date(2021, time.June, 11, 21, 30, 0, 0, time.Local), nil},
		{"future window", time.Date(2021, time.June, 10, 22, 0, 0, 0, time.Local), ErrNotYetAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPlanner(t, func() time.Time { return tt.now })
			_, err := p.DailyWindows(BhavCopy, date(2021, time.June, 11), date(2021, time.June, 11), date(2021, time.June, 11))
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, eris.Is(err, tt.wantErr))
			}
		})
	}
}

func TestWeekendGuard(t *testing.T) {
	// 2021-06-12 is Saturday, 2021-06-13 Sunday.
	p := newPlanner(t, evening(2021, time.July, 1))

	t.Run("weekend-only range has no data", func(t *testing.T) {
		_, err := p.EquityWindows("TCS", date(2021, time.June, 12), date(2021, time.June, 13), date(2021, time.January, 1))
		assert.True(t, eris.Is(err, ErrNoData))
	})

	t.Run("long range bypasses the guard", func(t *testing.T) {
		ws, err := p.EquityWindows("TCS", date(2021, time.June, 12), date(2021, time.June, 20), date(2021, time.January, 1))
		require.NoError(t, err)
		assert.NotEmpty(t, ws)
	})

	t.Run("daily series ignores the guard", func(t *testing.T) {
		ws, err := p.DailyWindows(Delivery, date(2021, time.June, 12), date(2021, time.June, 13), date(2021, time.January, 1))
		require.NoError(t, err)
		assert.Len(t, ws, 2)
	})
}

func TestFuturesWindows(t *testing.T) {
	p := newPlanner(t, evening(2021, time.March, 10))

	ws, err := p.FuturesWindows("NIFTY", true, date(2021, time.January, 15), date(2021, time.February, 10), date(2021, time.January, 1))
	require.NoError(t, err)
	require.Len(t, ws, 4)

	// January contract month: near and next expiries over the whole month.
	assert.Equal(t, date(2021, time.January, 1), ws[0].From)
	assert.Equal(t, date(2021, time.January, 31), ws[0].To)
	assert.Equal(t, "28-Jan-2021", ws[0].Expiry)
	assert.Equal(t, "25-Feb-2021", ws[1].Expiry)
	assert.True(t, ws[0].Index)

	// February contract month.
	assert.Equal(t, date(2021, time.February, 1), ws[2].From)
	assert.Equal(t, date(2021, time.February, 28), ws[2].To)
	assert.Equal(t, "25-Feb-2021", ws[2].Expiry)
	assert.Equal(t, "25-Mar-2021", ws[3].Expiry)
}

func TestFuturesWindowsStockInstrument(t *testing.T) {
	p := newPlanner(t, evening(2021, time.March, 10))

	ws, err := p.FuturesWindows("TCS", false, date(2021, time.January, 15), date(2021, time.January, 20), date(2021, time.January, 1))
	require.NoError(t, err)
	for _, w := range ws {
		assert.False(t, w.Index)
	}
}

func TestPlanningIsIdempotent(t *testing.T) {
	p := newPlanner(t, evening(2023, time.June, 30))

	first, err := p.EquityWindows("TCS", date(2021, time.March, 10), date(2023, time.June, 15), date(2021, time.January, 1))
	require.NoError(t, err)
	second, err := p.EquityWindows("TCS", date(2021, time.March, 10), date(2023, time.June, 15), date(2021, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSeriesString(t *testing.T) {
	assert.Equal(t, "EQUITY", Equity.String())
	assert.Equal(t, "FUTURES", Futures.String())
	assert.Equal(t, "DELIVERY", Delivery.String())
	assert.Equal(t, "BHAVCOPY", BhavCopy.String())
}
