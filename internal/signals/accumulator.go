package signals

// #region accumulator

// Accumulator collects contributions in evaluation order. It is owned by a
// single request and is not safe for concurrent use.
type Accumulator struct {
	items []Contribution
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add appends c. Zero deltas are kept so their reasons still reach the trail.
func (a *Accumulator) Add(c Contribution) {
	reasons := make([]string, len(c.Reasons))
	copy(reasons, c.Reasons)
	c.Reasons = reasons
	a.items = append(a.items, c)
}

// Sum is the raw, unclamped sum of deltas.
func (a *Accumulator) Sum() float64 {
	var sum float64
	for _, c := range a.items {
		sum += c.Delta
	}
	return sum
}

// Score is Sum clamped to [0, 1].
func (a *Accumulator) Score() float64 {
	return Clamp(a.Sum(), 0, 1)
}

// Reasons flattens every contribution's reasons in insertion order.
// No deduplication.
func (a *Accumulator) Reasons() []string {
	out := make([]string, 0, len(a.items))
	for _, c := range a.items {
		out = append(out, c.Reasons...)
	}
	return out
}

// Contributions returns a copy of the collected contributions.
func (a *Accumulator) Contributions() []Contribution {
	out := make([]Contribution, len(a.items))
	copy(out, a.items)
	return out
}

// #endregion accumulator

// #region helpers

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #endregion helpers
