// Package schedule validates cron expressions before they are submitted
// to the backend and previews upcoming firing times for the schedule
// forms. The backend evaluates cron itself; this is client-side input
// checking only.
package schedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// standard 5-field parser: minute, hour, day-of-month, month, day-of-week.
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Validate checks a 5-field cron expression.
func Validate(expr string) error {
	if expr == "" {
		return fmt.Errorf("cron expression is required")
	}
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

// Next returns the next firing time after from, or the zero time when the
// expression does not parse.
func Next(expr string, from time.Time) time.Time {
	sched, err := parser.Parse(expr)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(from)
}

// Preview returns the next n firing times after from, for display beside
// the cron input.
func Preview(expr string, from time.Time, n int) []time.Time {
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil
	}
	times := make([]time.Time, 0, n)
	t := from
	for i := 0; i < n; i++ {
		t = sched.Next(t)
		if t.IsZero() {
			break
		}
		times = append(times, t)
	}
	return times
}
