package models

import "time"

// WeatherObservation is a point-in-time reading from the weather provider.
// Every field is optional; the zero value means "no weather signal".
type WeatherObservation struct {
	Temperature   *float64   `json:"temperature,omitempty"` // °C
	WindSpeed     *float64   `json:"windspeed,omitempty"`
	ConditionCode *int       `json:"weathercode,omitempty"` // WMO weather interpretation code
	ObservedAt    *time.Time `json:"time,omitempty"`
}

// IsEmpty reports whether the observation carries no data at all.
func (w WeatherObservation) IsEmpty() bool {
	return w.Temperature == nil && w.WindSpeed == nil && w.ConditionCode == nil && w.ObservedAt == nil
}
