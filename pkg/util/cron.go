package util

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Standard 5-field format (minute, hour, day, month, weekday), the same
// format asynq's scheduler accepts.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronExpr checks that expr is a valid 5-field cron expression.
func ValidateCronExpr(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// NextCronRuns returns the next n activations of expr strictly after from, in UTC.
func NextCronRuns(expr string, from time.Time, n int) ([]time.Time, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	runs := make([]time.Time, 0, n)
	next := from.UTC()
	for i := 0; i < n; i++ {
		next = schedule.Next(next)
		runs = append(runs, next)
	}
	return runs, nil
}
