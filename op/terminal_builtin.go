package op

// CountTerminal and SumTerminal are minimal Terminal implementations;
// CountTerminal is used by package unshard's tests. Real terminals (reduce expressions, etc.)
// are produced by the query front-end, out of scope per spec.md §1; these
// exist so the accumulator contract in package unshard has something
// concrete to exercise.
type CountTerminal struct{}

func (CountTerminal) NewAccumulator(order SortOrder) Accumulator { return &countAccumulator{} }

type countAccumulator struct{ n int64 }

func (a *countAccumulator) Add(Row)      { a.n++ }
func (a *countAccumulator) AddPartial(p interface{}) {
	if v, ok := p.(int64); ok {
		a.n += v
	}
}
func (a *countAccumulator) Finish() interface{} { return a.n }

// SumTerminal sums a float64 extracted from each row's Value by Extract.
type SumTerminal struct {
	Extract func(Row) float64
}

func (s SumTerminal) NewAccumulator(order SortOrder) Accumulator {
	return &sumAccumulator{extract: s.Extract}
}

type sumAccumulator struct {
	extract func(Row) float64
	total   float64
}

func (a *sumAccumulator) Add(r Row) {
	if a.extract != nil {
		a.total += a.extract(r)
	}
}
func (a *sumAccumulator) AddPartial(p interface{}) {
	if v, ok := p.(float64); ok {
		a.total += v
	}
}
func (a *sumAccumulator) Finish() interface{} { return a.total }
