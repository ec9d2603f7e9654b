// Package validate reconciles an algorithm's per-vertex output with a reference result and reports the differences.
package validate

import (
	"strconv"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/ScottSallinen/lp-validate/dataset"
	"github.com/ScottSallinen/lp-validate/rule"
)

const DefaultMaxReported = 100

type Options struct {
	Verbose     bool // Keep discrepancy descriptions. Never changes the counts or the verdict.
	MaxReported int  // Discrepancies kept at most; 0 keeps none. Negative uses DefaultMaxReported.
	Deviations  int  // If non-zero, compute L1 deviation statistics and keep this many of the largest.
}

// Flips the sign bit so that unsigned bitmap order is signed id order.
func orderKey(id int64) uint64 {
	return uint64(id) ^ (1 << 63)
}

func fromOrderKey(k uint64) int64 {
	return int64(k ^ (1 << 63))
}

// Classifies every id in the union of both datasets. Ids are visited in ascending order.
func Reconcile[T rule.Value](reference, output *dataset.Dataset[T], r rule.Rule[T], opts Options) *Report {
	maxReported := opts.MaxReported
	if maxReported < 0 {
		maxReported = DefaultMaxReported
	}
	report := &Report{MaxReported: maxReported}
	if opts.Verbose {
		report.Discrepancies = make([]string, 0, min(maxReported, 16))
	}

	ids := roaring64.New()
	reference.ForEach(func(id int64, _ T) { ids.Add(orderKey(id)) })
	output.ForEach(func(id int64, _ T) { ids.Add(orderKey(id)) })

	var dev *deviationBuilder[T]
	if opts.Deviations > 0 {
		dev = &deviationBuilder[T]{}
	}

	reported := 0
	it := ids.Iterator()
	for it.HasNext() {
		id := fromOrderKey(it.Next())
		refValue, inRef := reference.Get(id)
		outValue, inOut := output.Get(id)

		var c Category
		switch {
		case !inOut:
			c = Missing
		case !inRef:
			c = Unknown
		case !r.Match(outValue, refValue):
			c = Incorrect
		default:
			c = Correct
		}
		if dev != nil && inOut && inRef {
			dev.add(id, outValue, refValue)
		}

		switch c {
		case Correct:
			report.Correct++
			continue
		case Missing:
			report.Missing++
		case Unknown:
			report.Unknown++
		case Incorrect:
			report.Incorrect++
		}
		if reported < maxReported {
			reported++
			if opts.Verbose {
				report.Discrepancies = append(report.Discrepancies, describe(id, c, outValue, refValue))
			}
		} else {
			report.Omitted++
		}
	}

	if dev != nil {
		report.Deviation = dev.build(opts.Deviations)
	}
	return report
}

func describe[T rule.Value](id int64, c Category, output T, reference T) string {
	vertex := "Vertex " + strconv.FormatInt(id, 10)
	switch c {
	case Missing:
		return vertex + " is missing"
	case Unknown:
		return vertex + " is unknown: not a valid vertex"
	case Incorrect:
		return vertex + " is incorrect: has value '" + formatValue(output) + "', but valid value is '" + formatValue(reference) + "'"
	}
	return vertex + " is " + c.String()
}

func formatValue[T rule.Value](v T) string {
	switch x := any(v).(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return ""
}
