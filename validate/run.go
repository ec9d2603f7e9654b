package validate

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ScottSallinen/lp-validate/dataset"
	"github.com/ScottSallinen/lp-validate/rule"
	"github.com/ScottSallinen/lp-validate/utils"
)

const (
	RoleReference = "reference"
	RoleOutput    = "output"
)

// LoadError means an input could not be read at all, so no report exists. Distinct from a failed validation.
type LoadError struct {
	Role string // RoleReference or RoleOutput.
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return "failed to read " + e.Role + " '" + e.Path + "': " + e.Err.Error()
}

func (e *LoadError) Unwrap() error { return e.Err }

type Config struct {
	ReferencePath string
	OutputPath    string
	Options                       // Reconciliation.
	Load          dataset.Options // Shared by both loads. Nil diagnostics log to Log.
	Log           *zerolog.Logger // Nil uses the global logger.
}

type Timings struct {
	LoadReference time.Duration
	LoadOutput    time.Duration
	Reconcile     time.Duration
	Total         time.Duration
}

type Result struct {
	Report    *Report
	Reference dataset.Stats
	Output    dataset.Stats
	Timings   Timings
}

func (r *Result) Passed() bool {
	return r.Report.Passed()
}

// Loads both datasets and reconciles them with rule r.
// The only errors are a *LoadError for an unreadable input, or the context error.
func Run[T rule.Value](ctx context.Context, cfg Config, r rule.Rule[T]) (*Result, error) {
	logger := cfg.Log
	if logger == nil {
		logger = &log.Logger
	}
	loadOpts := cfg.Load
	if loadOpts.Diagnostics == nil {
		loadOpts.Diagnostics = dataset.NewLogDiagnostics(*logger)
	}

	watch := utils.Watch{}
	watch.Start()
	res := &Result{}

	logger.Info().Msg("Validating contents of '" + cfg.OutputPath + "'...")
	logger.Debug().Msg(utils.MemoryStats())

	logger.Info().Msg("Parsing file/directory " + cfg.ReferencePath)
	reference, err := dataset.Load(ctx, cfg.ReferencePath, r, loadOpts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &LoadError{Role: RoleReference, Path: cfg.ReferencePath, Err: err}
	}
	res.Reference = reference.Stats
	res.Timings.LoadReference = watch.Lap()
	logger.Info().Msg("Reference: " + utils.V(reference.Size()) + " vertices in (ms) " + utils.V(res.Timings.LoadReference.Milliseconds()))

	logger.Info().Msg("Parsing file/directory " + cfg.OutputPath)
	loadOpts.SizeHint = uint64(reference.Size())
	output, err := dataset.Load(ctx, cfg.OutputPath, r, loadOpts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &LoadError{Role: RoleOutput, Path: cfg.OutputPath, Err: err}
	}
	res.Output = output.Stats
	res.Timings.LoadOutput = watch.Lap()
	logger.Info().Msg("Output: " + utils.V(output.Size()) + " vertices in (ms) " + utils.V(res.Timings.LoadOutput.Milliseconds()))

	res.Report = Reconcile(reference, output, r, cfg.Options)
	res.Timings.Reconcile = watch.Lap()
	res.Timings.Total = watch.Elapsed()

	if res.Passed() {
		logger.Info().Msg("Validation is successful. Vertices: " + utils.V(res.Report.Vertices()))
	} else {
		logger.Warn().Msg("Validation failed. Errors: " + utils.V(res.Report.Errors()) + " of " + utils.V(res.Report.Vertices()) + " vertices")
	}
	logger.Debug().Msg("Reconcile (ms) " + utils.V(res.Timings.Reconcile.Milliseconds()) + " Total (ms) " + utils.V(res.Timings.Total.Milliseconds()))
	logger.Debug().Msg(utils.MemoryStats())
	return res, nil
}
