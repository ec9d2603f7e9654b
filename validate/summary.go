package validate

import (
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Machine readable record of a run.
type Summary struct {
	RunID     string `yaml:"run_id"`
	Reference string `yaml:"reference"`
	Output    string `yaml:"output"`
	Rule      string `yaml:"rule,omitempty"`
	Passed    bool   `yaml:"passed"`
	Vertices  uint64 `yaml:"vertices"`

	Correct   CategorySummary `yaml:"correct"`
	Incorrect CategorySummary `yaml:"incorrect"`
	Missing   CategorySummary `yaml:"missing"`
	Unknown   CategorySummary `yaml:"unknown"`

	Discrepancies []string `yaml:"discrepancies,omitempty"`
	Omitted       uint64   `yaml:"omitted,omitempty"`

	ReferenceInput InputSummary      `yaml:"reference_input"`
	OutputInput    InputSummary      `yaml:"output_input"`
	Timings        map[string]string `yaml:"timings"`
	Deviation      *Deviation        `yaml:"deviation,omitempty"`
}

type CategorySummary struct {
	Count   uint64  `yaml:"count"`
	Percent float64 `yaml:"percent"`
}

type InputSummary struct {
	Files       uint64 `yaml:"files"`
	Lines       uint64 `yaml:"lines"`
	Skipped     uint64 `yaml:"skipped"`
	Overwritten uint64 `yaml:"overwritten"`
}

func NewSummary(cfg Config, ruleName string, res *Result) Summary {
	rep := res.Report
	cat := func(c Category) CategorySummary {
		return CategorySummary{Count: rep.Count(c), Percent: rep.Percent(c)}
	}
	return Summary{
		RunID:         uuid.NewString(),
		Reference:     cfg.ReferencePath,
		Output:        cfg.OutputPath,
		Rule:          ruleName,
		Passed:        rep.Passed(),
		Vertices:      rep.Vertices(),
		Correct:       cat(Correct),
		Incorrect:     cat(Incorrect),
		Missing:       cat(Missing),
		Unknown:       cat(Unknown),
		Discrepancies: rep.Discrepancies,
		Omitted:       rep.Omitted,
		ReferenceInput: InputSummary{
			Files: res.Reference.Files, Lines: res.Reference.Lines,
			Skipped: res.Reference.Skipped, Overwritten: res.Reference.Overwritten,
		},
		OutputInput: InputSummary{
			Files: res.Output.Files, Lines: res.Output.Lines,
			Skipped: res.Output.Skipped, Overwritten: res.Output.Overwritten,
		},
		Timings: map[string]string{
			"load_reference": res.Timings.LoadReference.String(),
			"load_output":    res.Timings.LoadOutput.String(),
			"reconcile":      res.Timings.Reconcile.String(),
			"total":          res.Timings.Total.String(),
		},
		Deviation: rep.Deviation,
	}
}

func (s Summary) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

func (s Summary) WriteYAML(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
