package leave

import (
	"time"

	leaveerrors "github.com/Wakkzz12/employee-leave-tracker/internal/leave/errors"

	"github.com/shopspring/decimal"
)

var halfDay = decimal.New(5, -1)

// MaxRangeDays is the longest calendar span a single request may cover,
// start and end included.
const MaxRangeDays = 366

// CalculateDaysRequested counts the chargeable days of [start, end]: every
// Monday to Friday is one day and weekends are free. A single-day request
// flagged halfDay is worth 0.5 whatever its weekday; the flag is ignored on
// longer ranges.
func CalculateDaysRequested(start, end time.Time, halfDayRequested bool) (decimal.Decimal, error) {
	start, end = truncateDay(start), truncateDay(end)
	if end.Before(start) {
		return decimal.Zero, leaveerrors.ErrInvalidRange
	}
	if end.After(start.AddDate(0, 0, MaxRangeDays-1)) {
		return decimal.Zero, leaveerrors.ErrRangeTooLong
	}

	if start.Equal(end) && halfDayRequested {
		return halfDay, nil
	}

	var days int64
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			days++
		}
	}
	return decimal.NewFromInt(days), nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
