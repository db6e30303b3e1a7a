package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/arbor/internal/fold"
	"github.com/roach88/arbor/internal/ir"
	"github.com/roach88/arbor/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Record   bool
	MaxDepth int
}

// RunSummary is the success payload for the run command.
type RunSummary struct {
	Fingerprint string `json:"fingerprint,omitempty"`
	Result      string `json:"result"`
	RunHash     string `json:"run_hash,omitempty"`
	RunID       string `json:"run_id,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <tree-file | snapshot>",
		Short: "Evaluate a construction tree or stored snapshot",
		Long: `Evaluate a graph with the memoizing fold.

The argument is a construction tree file when it names an existing
file; otherwise it is resolved against the snapshot store, first as a
name and then as a fingerprint.

Example:
  arbor run expr.cue
  arbor run main --db ./arbor.db --record`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Record, "record", false, "record the run in the snapshot store")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "construction tree depth limit (0 = default)")

	return cmd
}

func runEval(opts *RunOptions, source string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := cmd.Context()

	_, statErr := os.Stat(source)
	isFile := statErr == nil

	var st *store.Store
	if !isFile || opts.Record {
		var err error
		st, err = openStore(opts.RootOptions)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	var x ir.IR
	var fingerprint string

	if isFile {
		compiled, err := compileTree(opts.RootOptions, source, opts.MaxDepth)
		if err != nil {
			_ = formatter.Error("COMPILE_FAILED", err.Error(), nil)
			return WrapExitError(ExitCommandError, "compile failed", err)
		}
		x = compiled
		slog.Debug("compiled tree", "file", source, "entries", len(x.Entries))
	} else {
		snap, err := resolveSnapshot(ctx, st, source)
		if err != nil {
			return err
		}
		x = snap.IR
		fingerprint = snap.Fingerprint
		slog.Debug("loaded snapshot", "fingerprint", fingerprint, "entries", len(x.Entries))
	}

	_, handlers, err := composeKinds()
	if err != nil {
		return err
	}

	result, err := fold.Fold(ctx, x, handlers)
	if err != nil {
		_ = formatter.Error("EVAL_FAILED", err.Error(), nil)
		return WrapExitError(ExitFailure, "evaluation failed", err)
	}

	summary := RunSummary{
		Fingerprint: fingerprint,
		Result:      ir.Format(result),
	}

	if opts.Record {
		// A tree evaluated straight from a file has no snapshot row
		// yet; save it unnamed so the run has something to reference.
		if fingerprint == "" {
			fingerprint, err = st.SaveSnapshot(ctx, "", x)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to save snapshot", err)
			}
			summary.Fingerprint = fingerprint
		}

		run, err := st.RecordRun(ctx, fingerprint, result)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		summary.RunHash = run.RunHash
		summary.RunID = run.ID
		slog.Debug("run recorded", "id", run.ID, "hash", run.RunHash)
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	fmt.Fprintf(formatter.Writer, "%s\n", summary.Result)
	if summary.RunID != "" {
		fmt.Fprintf(formatter.Writer, "recorded run %s (%s)\n", summary.RunID, summary.RunHash)
	}
	return nil
}
