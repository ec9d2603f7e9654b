package utils

import (
	"math"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

type Pair[F any, S any] struct {
	First  F
	Second S
}

// An imprecise float approximate comparison. "optional" variance with ... args strategy
func FloatEquals(a float64, b float64, inputVariance ...float64) bool {
	variance := 0.001
	if len(inputVariance) >= 1 {
		variance = inputVariance[0]
	}
	return math.Abs(a-b) < variance
}

// Round up to the next power of 2
func RoundUpPow(i uint64) uint64 {
	i--
	i |= i >> 1
	i |= i >> 2
	i |= i >> 4
	i |= i >> 8
	i |= i >> 16
	i |= i >> 32
	i++
	return i
}

func Max[T constraints.Ordered](x, y T) T {
	if x < y {
		return y
	}
	return x
}

func Min[T constraints.Ordered](x, y T) T {
	if y < x {
		return y
	}
	return x
}

// Percentile of an already sorted slice (nearest rank).
func SortedPercentile[T constraints.Integer | constraints.Float](sorted []T, percentile int) T {
	if len(sorted) == 0 {
		return 0
	}
	idx := int((float64(percentile) / 100.0) * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Percentage of part in total; zero when total is zero.
func Percent[T constraints.Integer | constraints.Float](part T, total T) float64 {
	if total == 0 {
		return 0
	}
	return 100.0 * float64(part) / float64(total)
}

// Compares two equal length arrays position by position: showcases average and L1 differences.
// Non-finite differences (e.g. an unreachable distance on one side) are counted separately and left out of the statistics.
// The L1 array is returned so callers can look for the largest deviations.
func ResultCompare[T constraints.Float | constraints.Integer](a []T, b []T) (avgL1Diff, medianL1Diff, percentile95L1 float64, nonFinite int, listL1Diff []float64) {
	if len(a) == 0 {
		return
	}
	listL1Diff = make([]float64, len(a))
	finite := make([]float64, 0, len(a))

	for i := range a {
		l1delta := math.Abs(float64(b[i]) - float64(a[i]))
		if math.IsNaN(l1delta) || math.IsInf(l1delta, 0) {
			if float64(a[i]) == float64(b[i]) { // Both the same infinity.
				l1delta = 0
			} else {
				nonFinite++
				listL1Diff[i] = math.Inf(1)
				continue
			}
		}
		listL1Diff[i] = l1delta
		finite = append(finite, l1delta)
		avgL1Diff += l1delta
	}
	if len(finite) == 0 {
		return 0, 0, 0, nonFinite, listL1Diff
	}
	avgL1Diff = avgL1Diff / float64(len(finite))

	slices.Sort(finite)
	medianL1Diff = finite[len(finite)/2]
	if len(finite)%2 == 0 {
		medianL1Diff = (finite[len(finite)/2-1] + finite[len(finite)/2]) / 2
	}
	percentile95L1 = SortedPercentile(finite, 95)

	return avgL1Diff, medianL1Diff, percentile95L1, nonFinite, listL1Diff
}
