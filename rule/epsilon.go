package rule

import (
	"math"

	"github.com/ScottSallinen/lp-validate/utils"
)

const (
	DefaultEpsilon   = 0.0001
	DefaultTolerance = 0.001
)

// Relative error bound for floating point results such as PageRank or LCC.
// A reference of zero falls back to an absolute bound of Epsilon.
type Epsilon struct {
	Epsilon float64
}

func NewEpsilon(epsilon float64) Epsilon {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return Epsilon{Epsilon: epsilon}
}

func (Epsilon) Parse(raw string) (float64, error) {
	return parseFloat(raw)
}

func (e Epsilon) Match(candidate float64, reference float64) bool {
	if ok, decided := matchSpecial(candidate, reference); decided {
		return ok
	}
	if reference == 0 {
		return math.Abs(candidate) <= e.Epsilon
	}
	return math.Abs(candidate-reference) <= e.Epsilon*math.Abs(reference)
}

// Absolute difference bound, strictly less than Tolerance.
type Tolerance struct {
	Tolerance float64
}

func NewTolerance(tolerance float64) Tolerance {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return Tolerance{Tolerance: tolerance}
}

func (Tolerance) Parse(raw string) (float64, error) {
	return parseFloat(raw)
}

func (t Tolerance) Match(candidate float64, reference float64) bool {
	if ok, decided := matchSpecial(candidate, reference); decided {
		return ok
	}
	return utils.FloatEquals(candidate, reference, t.Tolerance)
}

// Shortest path distances. Unreachable vertices are written as "infinity" and must be unreachable on both sides;
// finite distances are compared with a relative epsilon. Negative or NaN distances do not parse.
type PathLength struct {
	Epsilon
}

func NewPathLength(epsilon float64) PathLength {
	return PathLength{NewEpsilon(epsilon)}
}

func (PathLength) Parse(raw string) (float64, error) {
	v, err := parseFloat(raw)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) {
		return 0, &ParseError{Raw: raw, Err: ErrNaN}
	}
	if v < 0 {
		return 0, &ParseError{Raw: raw, Err: ErrNegative}
	}
	return v, nil
}

// Equal values (including equal infinities) and double NaN match; any other NaN or infinity does not.
func matchSpecial(candidate float64, reference float64) (ok bool, decided bool) {
	if candidate == reference {
		return true, true
	}
	cNaN, rNaN := math.IsNaN(candidate), math.IsNaN(reference)
	if cNaN || rNaN {
		return cNaN && rNaN, true
	}
	if math.IsInf(candidate, 0) || math.IsInf(reference, 0) {
		return false, true
	}
	return false, false
}
