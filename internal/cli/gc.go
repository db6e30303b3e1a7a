package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/arbor/internal/dirty"
)

// GCOptions holds flags for the gc command.
type GCOptions struct {
	*RootOptions
	Save string
}

// GCSummary is the success payload for the gc command.
type GCSummary struct {
	From        string `json:"from"`
	Fingerprint string `json:"fingerprint"`
	Removed     int    `json:"removed"`
	SavedAs     string `json:"saved_as,omitempty"`
}

// NewGCCommand creates the gc command.
func NewGCCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GCOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "gc <snapshot>",
		Short: "Drop entries unreachable from the root",
		Long: `Collect a snapshot: entries not reachable from the root, alias
markers included, are dropped and the result saved as a new snapshot.
A graph with no garbage round-trips to the same fingerprint.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGC(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Save, "save", "", "save the result under this name")

	return cmd
}

func runGC(opts *GCOptions, ref string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := cmd.Context()

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := resolveSnapshot(ctx, st, ref)
	if err != nil {
		return err
	}

	before := len(snap.IR.Entries)
	collected, err := dirty.Commit(dirty.GC(dirty.From(snap.IR)))
	if err != nil {
		return WrapExitError(ExitFailure, "gc produced an invalid graph", err)
	}

	fingerprint, err := st.SaveSnapshot(ctx, opts.Save, collected)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to save snapshot", err)
	}
	slog.Debug("gc complete", "from", snap.Fingerprint, "to", fingerprint,
		"removed", before-len(collected.Entries))

	summary := GCSummary{
		From:        snap.Fingerprint,
		Fingerprint: fingerprint,
		Removed:     before - len(collected.Entries),
		SavedAs:     opts.Save,
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	fmt.Fprintf(formatter.Writer, "✓ Removed %d unreachable entries\n", summary.Removed)
	fmt.Fprintf(formatter.Writer, "  %s -> %s\n", summary.From, summary.Fingerprint)
	return nil
}
