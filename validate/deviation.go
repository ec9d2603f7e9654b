package validate

import (
	"strings"

	"github.com/ScottSallinen/lp-validate/rule"
	"github.com/ScottSallinen/lp-validate/utils"
)

// L1 differences between output and reference values, over the vertices present in both.
// Informational only: the verdict comes from the rule.
type Deviation struct {
	Compared  uint64            `yaml:"compared"`   // Vertices present in both datasets.
	NonFinite uint64            `yaml:"non_finite"` // Pairs whose difference is not finite (e.g. a finite distance against infinity).
	AvgL1     float64           `yaml:"avg_l1"`     // Over the finite pairs.
	MedianL1  float64           `yaml:"median_l1"`
	P95L1     float64           `yaml:"p95_l1"`
	Largest   []VertexDeviation `yaml:"largest,omitempty"` // Largest differences first; non-finite ones rank highest.
}

type VertexDeviation struct {
	ID        int64   `yaml:"id"`
	Output    float64 `yaml:"output"`
	Reference float64 `yaml:"reference"`
	L1        float64 `yaml:"l1"`
}

type deviationBuilder[T rule.Value] struct {
	ids       []int64
	output    []float64
	reference []float64
}

func (b *deviationBuilder[T]) add(id int64, output T, reference T) {
	b.ids = append(b.ids, id)
	b.output = append(b.output, float64(output))
	b.reference = append(b.reference, float64(reference))
}

func (b *deviationBuilder[T]) build(top int) *Deviation {
	d := &Deviation{Compared: uint64(len(b.ids))}
	if len(b.ids) == 0 {
		return d
	}
	var nonFinite int
	var l1 []float64
	d.AvgL1, d.MedianL1, d.P95L1, nonFinite, l1 = utils.ResultCompare(b.reference, b.output)
	d.NonFinite = uint64(nonFinite)

	for _, p := range utils.FindTopNInArray(l1, uint32(top)) {
		if p.Second == 0 {
			break
		}
		d.Largest = append(d.Largest, VertexDeviation{
			ID:        b.ids[p.First],
			Output:    b.output[p.First],
			Reference: b.reference[p.First],
			L1:        p.Second,
		})
	}
	return d
}

func (d *Deviation) emit(sb *strings.Builder) {
	sb.WriteString(" - Compared " + utils.V(d.Compared) + " NonFinite " + utils.V(d.NonFinite) +
		" AvgL1Diff " + utils.F("%.3e", d.AvgL1) + " MedianL1Diff " + utils.F("%.3e", d.MedianL1) +
		" 95pL1Diff " + utils.F("%.3e", d.P95L1) + "\n")
	for _, v := range d.Largest {
		sb.WriteString("   - Vertex " + utils.V(v.ID) + " L1Diff " + utils.F("%.3e", v.L1) +
			" (" + utils.V(v.Output) + " vs " + utils.V(v.Reference) + ")\n")
	}
}
