package validate

import (
	"io"
	"strconv"
	"strings"

	"github.com/ScottSallinen/lp-validate/utils"
)

type Category uint8

const (
	Correct   Category = iota
	Missing            // In the reference only.
	Unknown            // In the output only.
	Incorrect          // In both, values not equivalent.
)

func (c Category) String() string {
	switch c {
	case Correct:
		return "correct"
	case Missing:
		return "missing"
	case Unknown:
		return "unknown"
	case Incorrect:
		return "incorrect"
	}
	return "category(" + strconv.Itoa(int(c)) + ")"
}

// Outcome of reconciling an output dataset against its reference.
// A failed validation is a Report with Passed() false, never an error.
type Report struct {
	Correct   uint64
	Missing   uint64
	Unknown   uint64
	Incorrect uint64

	// First MaxReported discrepancy descriptions in ascending id order; nil unless verbose.
	Discrepancies []string
	// Discrepancies beyond MaxReported, counted but not described.
	Omitted     uint64
	MaxReported int

	// Numeric deviation between output and reference values; nil unless requested.
	Deviation *Deviation
}

func (r *Report) Passed() bool {
	return r.Errors() == 0
}

func (r *Report) Errors() uint64 {
	return r.Missing + r.Unknown + r.Incorrect
}

// Size of the union of reference and output ids.
func (r *Report) Vertices() uint64 {
	return r.Correct + r.Missing + r.Unknown + r.Incorrect
}

func (r *Report) Count(c Category) uint64 {
	switch c {
	case Correct:
		return r.Correct
	case Missing:
		return r.Missing
	case Unknown:
		return r.Unknown
	case Incorrect:
		return r.Incorrect
	}
	return 0
}

// Percentage of a category over the reference vertices (correct + incorrect + missing).
// Unknown vertices use the same base. If the reference side is empty, the id union is the base instead.
func (r *Report) Percent(c Category) float64 {
	total := r.Correct + r.Incorrect + r.Missing
	if total == 0 {
		total = r.Vertices()
	}
	return utils.Percent(r.Count(c), total)
}

// Writes the human readable report. Deterministic for a given Report.
// The "[N errors omitted]" note follows the discrepancy lines, so it is only written for verbose reports.
func (r *Report) Emit(w io.Writer) error {
	var sb strings.Builder
	for _, d := range r.Discrepancies {
		sb.WriteString(" - " + d + "\n")
	}
	if r.Discrepancies != nil && r.Omitted > 0 {
		sb.WriteString(" - [" + utils.V(r.Omitted) + " errors omitted]\n")
	}

	if r.Passed() {
		sb.WriteString("Validation is successful.\n")
	} else {
		sb.WriteString("Validation failed.\n")
		for _, c := range []Category{Correct, Incorrect, Missing, Unknown} {
			sb.WriteString(" - " + strings.ToUpper(c.String()[:1]) + c.String()[1:] + " vertices: " +
				utils.V(r.Count(c)) + " (" + utils.F("%.2f", r.Percent(c)) + "%)\n")
		}
		if r.Deviation != nil {
			r.Deviation.emit(&sb)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func (r *Report) String() string {
	var sb strings.Builder
	_ = r.Emit(&sb)
	return sb.String()
}
