package history

import "fmt"

// Period is a time-of-day bucket.
type Period string

const (
	Morning   Period = "morning"
	Afternoon Period = "afternoon"
	Evening   Period = "evening"
	Night     Period = "night"
)

// Boundaries are the start hours of each bucket. Night runs from NightStart
// through midnight until MorningStart. Setting NightStart to 24 makes the
// evening bucket run until midnight.
type Boundaries struct {
	MorningStart   int
	AfternoonStart int
	EveningStart   int
	NightStart     int
}

// DefaultBoundaries returns morning [5,12), afternoon [12,17), evening [17,21), night otherwise.
func DefaultBoundaries() Boundaries {
	return Boundaries{MorningStart: 5, AfternoonStart: 12, EveningStart: 17, NightStart: 21}
}

// Validate checks that the boundaries are ordered and inside the day
func (b Boundaries) Validate() error {
	if b.MorningStart < 0 || b.MorningStart >= b.AfternoonStart || b.AfternoonStart >= b.EveningStart ||
		b.EveningStart > b.NightStart || b.NightStart > 24 {
		return fmt.Errorf("invalid boundaries %+v: need 0 <= morning < afternoon < evening <= night <= 24", b)
	}
	return nil
}

// Bucket maps an hour in [0,24) to its period.
func (b Boundaries) Bucket(hour int) Period {
	switch {
	case hour >= b.MorningStart && hour < b.AfternoonStart:
		return Morning
	case hour >= b.AfternoonStart && hour < b.EveningStart:
		return Afternoon
	case hour >= b.EveningStart && hour < b.NightStart:
		return Evening
	default:
		return Night
	}
}
