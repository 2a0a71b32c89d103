package history

import "sort"

// FrequencyTable maps product ID to accumulated quantity. A missing product
// counts as zero.
type FrequencyTable map[string]int

// Get returns the count for a product
func (t FrequencyTable) Get(product string) int {
	return t[product]
}

// Max returns the largest count, or 0 for an empty table.
func (t FrequencyTable) Max() int {
	top := 0
	for _, v := range t {
		if v > top {
			top = v
		}
	}
	return top
}

// Total returns the sum of all counts.
func (t FrequencyTable) Total() int {
	total := 0
	for _, v := range t {
		total += v
	}
	return total
}

// Norm returns t[product] / max(t), which lies in [0,1]. An empty or all-zero
// table normalizes to 0.
func (t FrequencyTable) Norm(product string) float64 {
	top := t.Max()
	if top == 0 {
		return 0
	}
	return float64(t[product]) / float64(top)
}

// Products returns the product IDs in lexicographic order.
func (t FrequencyTable) Products() []string {
	products := make([]string, 0, len(t))
	for p := range t {
		products = append(products, p)
	}
	sort.Strings(products)
	return products
}

// Leaders returns every product sharing the maximum positive count, sorted.
func (t FrequencyTable) Leaders() []string {
	top := t.Max()
	if top == 0 {
		return nil
	}
	var leaders []string
	for _, p := range t.Products() {
		if t[p] == top {
			leaders = append(leaders, p)
		}
	}
	return leaders
}

// Tables holds the three frequency views produced by one analysis run.
type Tables struct {
	Overall    FrequencyTable `json:"overall"`
	TimePeriod FrequencyTable `json:"time_period"`
	Weekday    FrequencyTable `json:"weekday"`
}

// NewTables returns three empty tables
func NewTables() Tables {
	return Tables{
		Overall:    FrequencyTable{},
		TimePeriod: FrequencyTable{},
		Weekday:    FrequencyTable{},
	}
}

// IsEmpty reports whether no order contributed to any table.
func (t Tables) IsEmpty() bool {
	return len(t.Overall) == 0 && len(t.TimePeriod) == 0 && len(t.Weekday) == 0
}
