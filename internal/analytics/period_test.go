package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "smartbiz/internal/errors"
)

var testNow = time.Date(2024, 6, 15, 12, 30, 0, 0, time.UTC)

func TestResolvePeriod(t *testing.T) {
	tests := []struct {
		name       string
		selector   string
		wantName   string
		wantLayout string
		wantStart  time.Time
	}{
		{"default is monthly", "", PeriodMonthly, "%Y-%m", testNow.AddDate(0, 0, -365)},
		{"daily", "daily", PeriodDaily, "%Y-%m-%d", testNow.AddDate(0, 0, -30)},
		{"weekly", "weekly", PeriodWeekly, "%x-W%v", testNow.AddDate(0, 0, -84)},
		{"monthly", "monthly", PeriodMonthly, "%Y-%m", testNow.AddDate(0, 0, -365)},
		{"yearly", "yearly", PeriodYearly, "%Y", testNow.AddDate(-5, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ResolvePeriod(tt.selector, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name)
			assert.Equal(t, tt.wantLayout, p.BucketLayout)
			assert.Equal(t, tt.wantStart, p.Window.Start)
			assert.Equal(t, testNow, p.Window.End)
		})
	}
}

func TestResolvePeriod_Invalid(t *testing.T) {
	_, err := ResolvePeriod("hourly", testNow)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestResolveDashboardWindow_Days(t *testing.T) {
	current, previous, err := ResolveDashboardWindow("7", testNow)
	require.NoError(t, err)

	assert.Equal(t, testNow.AddDate(0, 0, -7), current.Start)
	assert.Equal(t, testNow, current.End)

	// Previous window is the same length, ending where current starts.
	assert.Equal(t, current.Start, previous.End)
	assert.Equal(t, testNow.AddDate(0, 0, -14), previous.Start)
}

func TestResolveDashboardWindow_DefaultsToThirtyDays(t *testing.T) {
	current, _, err := ResolveDashboardWindow("", testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow.AddDate(0, 0, -30), current.Start)
}

func TestResolveDashboardWindow_NamedWindows(t *testing.T) {
	t.Run("month", func(t *testing.T) {
		current, previous, err := ResolveDashboardWindow("month", testNow)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), current.Start)
		assert.Equal(t, testNow, current.End)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), previous.Start)
		assert.Equal(t, current.Start, previous.End)
	})

	t.Run("last_month", func(t *testing.T) {
		current, previous, err := ResolveDashboardWindow("last_month", testNow)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), current.Start)
		assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), current.End)
		assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), previous.Start)
	})

	t.Run("year", func(t *testing.T) {
		current, previous, err := ResolveDashboardWindow("year", testNow)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), current.Start)
		assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), previous.Start)
	})
}

func TestResolveDashboardWindow_Invalid(t *testing.T) {
	for _, selector := range []string{"0", "-3", "soon"} {
		_, _, err := ResolveDashboardWindow(selector, testNow)
		_, ok := apperrors.IsValidationError(err)
		assert.True(t, ok, "selector %q", selector)
	}
}

func TestPctChange(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		previous string
		want     string
	}{
		{"growth", "150", "100", "+50.0%"},
		{"decline", "75", "100", "-25.0%"},
		{"flat", "100", "100", "+0.0%"},
		{"zero previous guards division", "100", "0", "+0%"},
		{"both zero", "0", "0", "+0%"},
		{"fractional", "105", "100", "+5.0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PctChange(
				decimal.RequireFromString(tt.current),
				decimal.RequireFromString(tt.previous),
			)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPctChangeInt(t *testing.T) {
	assert.Equal(t, "+100.0%", PctChangeInt(10, 5))
	assert.Equal(t, "+0%", PctChangeInt(10, 0))
}

func TestProfitMargin(t *testing.T) {
	margin := profitMargin(decimal.RequireFromString("200"), decimal.RequireFromString("50"))
	assert.Equal(t, "75", margin.String())

	assert.True(t, profitMargin(decimal.Zero, decimal.RequireFromString("50")).IsZero())
}
