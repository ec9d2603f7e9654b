package validate

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ScottSallinen/lp-validate/dataset"
	"github.com/ScottSallinen/lp-validate/rule"
)

func ints(pairs map[int64]int64) *dataset.Dataset[int64] {
	ids := make([]int64, 0, len(pairs))
	vals := make([]int64, 0, len(pairs))
	for id, v := range pairs {
		ids = append(ids, id)
		vals = append(vals, v)
	}
	return dataset.FromPairs(ids, vals)
}

func TestReconcileMixed(t *testing.T) {
	reference := ints(map[int64]int64{1: 10, 2: 20, 3: 30})
	output := ints(map[int64]int64{1: 10, 2: 25, 4: 40})

	report := Reconcile(reference, output, rule.Equivalence{}, Options{Verbose: true, MaxReported: -1})
	assert.False(t, report.Passed())
	assert.EqualValues(t, 1, report.Correct)
	assert.EqualValues(t, 1, report.Incorrect)
	assert.EqualValues(t, 1, report.Missing)
	assert.EqualValues(t, 1, report.Unknown)
	assert.EqualValues(t, 4, report.Vertices())
	assert.EqualValues(t, 3, report.Errors())
	assert.Equal(t, []string{
		"Vertex 2 is incorrect: has value '25', but valid value is '20'",
		"Vertex 3 is missing",
		"Vertex 4 is unknown: not a valid vertex",
	}, report.Discrepancies)
	assert.Zero(t, report.Omitted)
	assert.Equal(t, DefaultMaxReported, report.MaxReported)
}

func TestReconcileIdentical(t *testing.T) {
	reference := ints(map[int64]int64{5: 7})
	output := ints(map[int64]int64{5: 7})

	report := Reconcile(reference, output, rule.Equivalence{}, Options{Verbose: true, MaxReported: DefaultMaxReported})
	assert.True(t, report.Passed())
	assert.EqualValues(t, 1, report.Correct)
	assert.Empty(t, report.Discrepancies)
	assert.Zero(t, report.Omitted)
}

func TestReconcileEmpty(t *testing.T) {
	report := Reconcile(dataset.New[int64](), dataset.New[int64](), rule.Equivalence{}, Options{})
	assert.True(t, report.Passed())
	assert.Zero(t, report.Vertices())
}

func TestReconcileCap(t *testing.T) {
	reference := ints(map[int64]int64{1: 1, 2: 2, 3: 3, 4: 4, 5: 5})
	output := dataset.New[int64]()

	report := Reconcile(reference, output, rule.Equivalence{}, Options{Verbose: true, MaxReported: 2})
	assert.EqualValues(t, 5, report.Missing)
	assert.Equal(t, []string{"Vertex 1 is missing", "Vertex 2 is missing"}, report.Discrepancies)
	assert.EqualValues(t, 3, report.Omitted)
	assert.Contains(t, report.String(), "[3 errors omitted]")
}

func TestReconcileZeroCap(t *testing.T) {
	reference := ints(map[int64]int64{1: 1, 2: 2, 3: 3, 4: 4, 5: 5})
	output := ints(map[int64]int64{1: 9, 2: 9, 3: 9, 4: 9, 5: 9})

	report := Reconcile(reference, output, rule.Equivalence{}, Options{Verbose: true, MaxReported: 0})
	assert.EqualValues(t, 5, report.Incorrect)
	assert.Empty(t, report.Discrepancies)
	assert.EqualValues(t, 5, report.Omitted)
	assert.Equal(t, 0, report.MaxReported)
	assert.Contains(t, report.String(), " - [5 errors omitted]\n")
}

func TestReconcileVerboseOnlyAffectsDescriptions(t *testing.T) {
	reference := ints(map[int64]int64{1: 1, 2: 2, 3: 3})
	output := ints(map[int64]int64{2: 5, 3: 3, 9: 9})

	quiet := Reconcile(reference, output, rule.Equivalence{}, Options{MaxReported: 1})
	loud := Reconcile(reference, output, rule.Equivalence{}, Options{Verbose: true, MaxReported: 1})

	assert.Nil(t, quiet.Discrepancies)
	assert.Len(t, loud.Discrepancies, 1)
	assert.Equal(t, loud.Passed(), quiet.Passed())
	for _, c := range []Category{Correct, Missing, Unknown, Incorrect} {
		assert.Equal(t, loud.Count(c), quiet.Count(c), c.String())
	}
	assert.Equal(t, loud.Omitted, quiet.Omitted)
	assert.NotContains(t, quiet.String(), "omitted")
}

func TestReconcileNegativeIdsInOrder(t *testing.T) {
	reference := ints(map[int64]int64{-5: 1, 3: 1, math.MinInt64: 1, math.MaxInt64: 1, 0: 1})
	output := dataset.New[int64]()

	report := Reconcile(reference, output, rule.Equivalence{}, Options{Verbose: true, MaxReported: DefaultMaxReported})
	assert.Equal(t, []string{
		"Vertex -9223372036854775808 is missing",
		"Vertex -5 is missing",
		"Vertex 0 is missing",
		"Vertex 3 is missing",
		"Vertex 9223372036854775807 is missing",
	}, report.Discrepancies)
}

func TestReconcileRandomInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		refPairs := map[int64]int64{}
		outPairs := map[int64]int64{}
		for i := 0; i < 2000; i++ {
			id := rng.Int63n(3000) - 1000
			switch rng.Intn(4) {
			case 0:
				refPairs[id] = id % 3
			case 1:
				outPairs[id] = id % 3
			default:
				refPairs[id] = id % 3
				outPairs[id] = id%3 + int64(rng.Intn(2))
			}
		}

		union := map[int64]bool{}
		var refOnly, outOnly, wrong uint64
		for id, v := range refPairs {
			union[id] = true
			ov, ok := outPairs[id]
			if !ok {
				refOnly++
			} else if ov != v {
				wrong++
			}
		}
		for id := range outPairs {
			union[id] = true
			if _, ok := refPairs[id]; !ok {
				outOnly++
			}
		}

		report := Reconcile(ints(refPairs), ints(outPairs), rule.Equivalence{}, Options{Verbose: true, MaxReported: 10})
		require.EqualValues(t, len(union), report.Vertices())
		assert.Equal(t, refOnly, report.Missing)
		assert.Equal(t, outOnly, report.Unknown)
		assert.Equal(t, wrong, report.Incorrect)
		assert.EqualValues(t, report.Errors(), uint64(len(report.Discrepancies))+report.Omitted)
	}
}

func TestReconcileEpsilonPasses(t *testing.T) {
	reference := dataset.FromPairs([]int64{1, 2, 3}, []float64{0.15, 0.35, math.Inf(1)})
	output := dataset.FromPairs([]int64{3, 2, 1}, []float64{math.Inf(1), 0.350001, 0.15})

	report := Reconcile(reference, output, rule.NewPathLength(0), Options{})
	assert.True(t, report.Passed())
	assert.EqualValues(t, 3, report.Correct)
}

func TestReconcileDeviation(t *testing.T) {
	reference := dataset.FromPairs([]int64{1, 2, 3, 4, 5}, []float64{1, 2, math.Inf(1), 5, 6})
	output := dataset.FromPairs([]int64{1, 2, 3, 4}, []float64{1, 2.5, 3, 5})

	report := Reconcile(reference, output, rule.NewEpsilon(0), Options{Deviations: 3})
	assert.EqualValues(t, 2, report.Incorrect)
	assert.EqualValues(t, 1, report.Missing)
	require.NotNil(t, report.Deviation)

	dev := report.Deviation
	assert.EqualValues(t, 4, dev.Compared)
	assert.EqualValues(t, 1, dev.NonFinite)
	assert.InDelta(t, 0.5/3, dev.AvgL1, 1e-12)
	assert.Equal(t, 0.0, dev.MedianL1)
	assert.Equal(t, 0.5, dev.P95L1)
	require.Len(t, dev.Largest, 2)
	assert.EqualValues(t, 3, dev.Largest[0].ID)
	assert.True(t, math.IsInf(dev.Largest[0].L1, 1))
	assert.Equal(t, VertexDeviation{ID: 2, Output: 2.5, Reference: 2, L1: 0.5}, dev.Largest[1])

	assert.Contains(t, report.String(), "AvgL1Diff 1.667e-01")
}

func TestReconcileDeviationDisabled(t *testing.T) {
	reference := dataset.FromPairs([]int64{1}, []float64{1})
	report := Reconcile(reference, reference, rule.NewEpsilon(0), Options{})
	assert.Nil(t, report.Deviation)
}
