package recommender

import "strings"

// Signal tags a contribution to a recommendation.
type Signal int

const (
	SignalWeekday Signal = iota
	SignalTimePeriod
	SignalOverall
	SignalWeather
)

func (s Signal) String() string {
	switch s {
	case SignalWeekday:
		return "weekday preference"
	case SignalTimePeriod:
		return "time preference"
	case SignalOverall:
		return "overall preference"
	case SignalWeather:
		return "weather conditions"
	}
	return "unknown"
}

// signalSet records signals in first-seen order, each at most once.
type signalSet struct {
	seen  map[Signal]bool
	order []Signal
}

func newSignalSet() *signalSet {
	return &signalSet{seen: make(map[Signal]bool)}
}

func (s *signalSet) add(sig Signal) {
	if s.seen[sig] {
		return
	}
	s.seen[sig] = true
	s.order = append(s.order, sig)
}

// render produces "Based on a, b, c". With no tagged signal only the overall
// frequency contributed.
func (s *signalSet) render() string {
	if len(s.order) == 0 {
		return "Based on " + SignalOverall.String()
	}
	parts := make([]string, len(s.order))
	for i, sig := range s.order {
		parts[i] = sig.String()
	}
	return "Based on " + strings.Join(parts, ", ")
}
