package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ScottSallinen/lp-validate/dataset"
	"github.com/ScottSallinen/lp-validate/rule"
	"github.com/ScottSallinen/lp-validate/utils"
	"github.com/ScottSallinen/lp-validate/validate"
)

// Exit codes.
const (
	ExitPassed = 0
	ExitFailed = 1 // The output does not match the reference.
	ExitError  = 2 // An input could not be loaded, or the configuration is invalid.
)

var ErrValidationFailed = errors.New("validation failed")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lp-validate --reference <path> --output <path>",
		Short: "Validate graph algorithm output against a reference",
		Long: `Loads a reference and an output vertex-value dataset (a file, or a directory of part files,
one "<vertex id> <value>" pair per line) and compares them with an equivalence rule.

Examples:
  # Exact comparison of integer labels (e.g. BFS, WCC, CDLP)
  lp-validate --reference expected/wcc --output results/wcc

  # PageRank with a relative epsilon, printing the first 10 discrepancies
  lp-validate --rule epsilon --epsilon 1e-4 -r expected/pr -o results/pr -v --max-reported 10

  # Custom rule
  lp-validate --rule expression --expression 'candidate <= reference + 1.0' -r a -o b`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runValidate,
	}
	addConfigFlags(root.PersistentFlags())
	root.Flags().StringP("reference", "r", "", "Reference file or directory")
	root.Flags().StringP("output", "o", "", "Output file or directory to validate")
	root.Flags().BoolP("verbose", "v", false, "Describe discrepancies")
	root.Flags().Int("max-reported", validate.DefaultMaxReported, "Discrepancies described at most")
	root.Flags().Int("deviations", 0, "Report L1 deviation statistics and this many of the largest deviations")
	root.Flags().String("summary", "", "Write a YAML summary of the run to this path")

	root.AddCommand(&cobra.Command{
		Use:   "inspect <path>",
		Short: "Load one dataset and print its statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	})
	return root
}

func setup(cmd *cobra.Command) (*Config, Selection, error) {
	cfg, err := LoadConfig(cmd.Flags())
	if err != nil {
		return nil, Selection{}, err
	}
	utils.SetLoggerConsole(cfg.NoColour)
	utils.SetLevel(cfg.Debug)
	sel, err := cfg.SelectRule()
	return cfg, sel, err
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, sel, err := setup(cmd)
	if err != nil {
		return err
	}
	if cfg.Reference == "" || cfg.Output == "" {
		return fmt.Errorf("%w: both --reference and --output are required", ErrConfig)
	}

	vcfg := cfg.ValidateConfig()
	var res *validate.Result
	if sel.Int != nil {
		res, err = validate.Run(cmd.Context(), vcfg, sel.Int)
	} else {
		res, err = validate.Run(cmd.Context(), vcfg, sel.Float)
	}
	if err != nil {
		return err
	}

	if err := res.Report.Emit(cmd.OutOrStdout()); err != nil {
		return err
	}
	if cfg.Summary != "" {
		if err := validate.NewSummary(vcfg, sel.Name, res).WriteYAML(cfg.Summary); err != nil {
			return err
		}
		log.Info().Msg("Wrote summary to " + cfg.Summary)
	}
	if !res.Passed() {
		return ErrValidationFailed
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, sel, err := setup(cmd)
	if err != nil {
		return err
	}
	opts := cfg.LoadOptions()
	opts.Diagnostics = dataset.NewLogDiagnostics(log.Logger)
	if sel.Int != nil {
		return inspect(cmd.Context(), cmd.OutOrStdout(), args[0], sel.Int, opts)
	}
	return inspect(cmd.Context(), cmd.OutOrStdout(), args[0], sel.Float, opts)
}

func inspect[T rule.Value](ctx context.Context, w io.Writer, path string, r rule.Rule[T], opts dataset.Options) error {
	d, err := dataset.Load(ctx, path, r, opts)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Path: %s\nFiles: %d\nLines: %d\nVertices: %d\nSkipped: %d\nOverwritten: %d\n",
		path, d.Stats.Files, d.Stats.Lines, d.Size(), d.Stats.Skipped, d.Stats.Overwritten)
	return err
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitPassed
	case errors.Is(err, ErrValidationFailed):
		return ExitFailed
	default:
		return ExitError
	}
}

func execute(ctx context.Context, args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, ErrValidationFailed) {
		log.Error().Err(err).Msg("command failed")
	}
	return exitCode(err)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
