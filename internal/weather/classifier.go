// Package weather maps weather observations to drink preference categories and
// fetches current conditions from the Open-Meteo forecast API.
//
// Classification is evaluated in order, first match wins:
//
//	temperature >= Hot            -> cold drinks
//	temperature <= Cold           -> hot drinks
//	temperature <= Cool           -> comfort drinks
//	rain, drizzle, storm, snow    -> hot drinks
//	clear sky (0, 1)              -> cold drinks if temperature > ClearSkyWarm, else comfort
//	anything else                 -> comfort drinks
package weather

import (
	"fmt"
	"strings"

	"github.com/diekoffieblik/brewcast/internal/models"
)

// Category is a coarse, weather-derived drink affinity.
type Category string

const (
	CategoryHot     Category = "hot"
	CategoryCold    Category = "cold"
	CategoryComfort Category = "comfort"
)

// Categories lists every valid category in a stable order.
var Categories = []Category{CategoryHot, CategoryCold, CategoryComfort}

// ParseCategory parses a category name. "neutral" is accepted as an alias for comfort.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hot":
		return CategoryHot, nil
	case "cold":
		return CategoryCold, nil
	case "comfort", "neutral":
		return CategoryComfort, nil
	}
	return "", fmt.Errorf("unknown weather category %q", s)
}

// Thresholds are the temperature cut-offs used by the classifier, in °C.
type Thresholds struct {
	Hot          float64 // at or above: cold drinks
	Cold         float64 // at or below: hot drinks
	Cool         float64 // above Cold and at or below: comfort drinks
	ClearSkyWarm float64 // clear sky strictly above: cold drinks
}

// DefaultThresholds returns the stock cut-offs (hot 25, cold 10, cool 15, clear-sky warm 20).
func DefaultThresholds() Thresholds {
	return Thresholds{Hot: 25, Cold: 10, Cool: 15, ClearSkyWarm: 20}
}

var (
	rainyCodes  = codeSet(51, 53, 55, 61, 63, 65, 66, 67, 80, 81, 82)
	stormyCodes = codeSet(95, 96, 99)
	coldCodes   = codeSet(56, 57, 71, 73, 75, 77, 85, 86)
	clearCodes  = codeSet(0, 1)
)

func codeSet(codes ...int) map[int]struct{} {
	set := make(map[int]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

func inSet(set map[int]struct{}, code int) bool {
	_, ok := set[code]
	return ok
}

// Classifier owns the category rules and the category to product table.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	thresholds Thresholds
	products   map[Category][]string
}

// NewClassifier creates a classifier with the standard product table
func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{
		thresholds: t,
		products: map[Category][]string{
			CategoryHot:     {"cappuccino", "americano", "hot_chocolate", "chai_latte", "mocha"},
			CategoryCold:    {"iced_latte", "frappuccino", "iced_tea", "cold_brew", "iced_americano"},
			CategoryComfort: {"latte", "flat_white", "macchiato", "espresso"},
		},
	}
}

// Classify maps an observation to a category. ok is false when the observation
// is empty, meaning there is no weather signal at all.
func (c *Classifier) Classify(obs models.WeatherObservation) (cat Category, ok bool) {
	if obs.IsEmpty() {
		return "", false
	}

	if t := obs.Temperature; t != nil {
		switch {
		case *t >= c.thresholds.Hot:
			return CategoryCold, true
		case *t <= c.thresholds.Cold:
			return CategoryHot, true
		case *t <= c.thresholds.Cool:
			return CategoryComfort, true
		}
	}

	if obs.ConditionCode == nil {
		return CategoryComfort, true
	}
	code := *obs.ConditionCode
	switch {
	case inSet(rainyCodes, code), inSet(stormyCodes, code):
		return CategoryHot, true
	case inSet(coldCodes, code):
		return CategoryHot, true
	case inSet(clearCodes, code):
		if obs.Temperature != nil && *obs.Temperature > c.thresholds.ClearSkyWarm {
			return CategoryCold, true
		}
		return CategoryComfort, true
	}
	return CategoryComfort, true
}

// Candidates returns the representative products for a category, in table
// order. Unknown categories yield nil. The returned slice is a copy.
func (c *Classifier) Candidates(cat Category) []string {
	products := c.products[cat]
	if len(products) == 0 {
		return nil
	}
	out := make([]string, len(products))
	copy(out, products)
	return out
}

// Evaluate classifies obs and returns the category together with its candidates.
// An empty observation yields an empty category and no candidates.
func (c *Classifier) Evaluate(obs models.WeatherObservation) (Category, []string) {
	cat, ok := c.Classify(obs)
	if !ok {
		return "", nil
	}
	return cat, c.Candidates(cat)
}
