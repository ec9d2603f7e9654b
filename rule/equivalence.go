package rule

// Exact equality of integer values: BFS depths, CDLP and WCC labels.
type Equivalence struct{}

func (Equivalence) Parse(raw string) (int64, error) {
	return parseInt(raw)
}

func (Equivalence) Match(candidate int64, reference int64) bool {
	return candidate == reference
}

// Exact equality of floating point values. Two NaNs match.
type FloatEquivalence struct{}

func (FloatEquivalence) Parse(raw string) (float64, error) {
	return parseFloat(raw)
}

func (FloatEquivalence) Match(candidate float64, reference float64) bool {
	return candidate == reference || (candidate != candidate && reference != reference)
}
