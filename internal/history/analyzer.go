// Package history turns a user's order history into time-aware frequency tables.
//
// Each order line always counts toward the overall table; it also counts toward
// the time-period table when its hour falls in the same bucket as the target
// moment, and toward the weekday table when it was placed on the target's weekday.
package history

import (
	"time"

	"github.com/diekoffieblik/brewcast/internal/models"
)

// Analyze computes the three frequency tables for lines relative to target.
// It is a pure function: empty input gives three empty tables.
func Analyze(lines []models.OrderLine, target time.Time, b Boundaries) Tables {
	tables := NewTables()

	targetPeriod := b.Bucket(target.Hour())
	targetWeekday := target.Weekday()

	for _, line := range lines {
		tables.Overall[line.ProductID] += line.Quantity

		if b.Bucket(line.OccurredAt.Hour()) == targetPeriod {
			tables.TimePeriod[line.ProductID] += line.Quantity
		}
		if line.OccurredAt.Weekday() == targetWeekday {
			tables.Weekday[line.ProductID] += line.Quantity
		}
	}

	return tables
}
