package analytics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	apperrors "smartbiz/internal/errors"
)

// Window is a left-closed time range: created_at >= Start AND created_at < End.
type Window struct {
	Start time.Time
	End   time.Time
}

// Period ties a trend granularity to its lookback window and the MySQL
// DATE_FORMAT layout that buckets timestamps into canonical labels.
type Period struct {
	Name         string
	Window       Window
	BucketLayout string
}

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// ResolvePeriod maps a trend period selector to its window and bucket
// expression. Labels come out as YYYY-MM-DD, YYYY-Www, YYYY-MM or YYYY.
// An empty selector means monthly.
func ResolvePeriod(name string, now time.Time) (Period, error) {
	now = now.UTC()
	end := now

	switch name {
	case PeriodDaily:
		return Period{
			Name:         PeriodDaily,
			Window:       Window{Start: end.AddDate(0, 0, -30), End: end},
			BucketLayout: "%Y-%m-%d",
		}, nil
	case PeriodWeekly:
		return Period{
			Name:         PeriodWeekly,
			Window:       Window{Start: end.AddDate(0, 0, -12*7), End: end},
			BucketLayout: "%x-W%v",
		}, nil
	case "", PeriodMonthly:
		return Period{
			Name:         PeriodMonthly,
			Window:       Window{Start: end.AddDate(0, 0, -365), End: end},
			BucketLayout: "%Y-%m",
		}, nil
	case PeriodYearly:
		return Period{
			Name:         PeriodYearly,
			Window:       Window{Start: end.AddDate(-5, 0, 0), End: end},
			BucketLayout: "%Y",
		}, nil
	default:
		return Period{}, apperrors.NewValidationError("invalid period",
			apperrors.ValidationDetail{Field: "period", Message: "period must be daily, weekly, monthly or yearly"})
	}
}

// ResolveDashboardWindow maps the days selector of the dashboard to the
// current window plus the equal-length window immediately before it.
// Accepted values: a positive day count, "month", "last_month" or "year".
func ResolveDashboardWindow(selector string, now time.Time) (current, previous Window, err error) {
	now = now.UTC()

	switch selector {
	case "month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		prevStart := start.AddDate(0, -1, 0)
		return Window{Start: start, End: now},
			Window{Start: prevStart, End: start},
			nil
	case "last_month":
		end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		start := end.AddDate(0, -1, 0)
		prevStart := start.AddDate(0, -1, 0)
		return Window{Start: start, End: end},
			Window{Start: prevStart, End: start},
			nil
	case "year":
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		prevStart := start.AddDate(-1, 0, 0)
		return Window{Start: start, End: now},
			Window{Start: prevStart, End: start},
			nil
	default:
		days := 30
		if selector != "" {
			days, err = strconv.Atoi(selector)
			if err != nil || days < 1 {
				return Window{}, Window{}, apperrors.NewValidationError("invalid days",
					apperrors.ValidationDetail{Field: "days", Message: "days must be a positive integer or one of month, last_month, year"})
			}
		}
		start := now.AddDate(0, 0, -days)
		prevStart := start.AddDate(0, 0, -days)
		return Window{Start: start, End: now},
			Window{Start: prevStart, End: start},
			nil
	}
}

// PctChange formats the period-over-period delta, sign-prefixed with one
// decimal. A zero previous value reports "+0%" instead of dividing.
func PctChange(current, previous decimal.Decimal) string {
	if previous.IsZero() {
		return "+0%"
	}
	change, _ := current.Sub(previous).
		Div(previous).
		Mul(decimal.NewFromInt(100)).
		Float64()
	return fmt.Sprintf("%+.1f%%", change)
}

// PctChangeInt is PctChange over plain counts.
func PctChangeInt(current, previous int) string {
	return PctChange(decimal.NewFromInt(int64(current)), decimal.NewFromInt(int64(previous)))
}
