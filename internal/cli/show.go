package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/arbor/internal/ir"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Canonical bool
	Runs      bool
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show [snapshot]",
		Short: "List snapshots or dump one graph",
		Long: `With no argument, list stored snapshots. With a name or
fingerprint, print that graph's dump.

Example:
  arbor show --db ./arbor.db
  arbor show main --db ./arbor.db --canonical`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runShowList(opts, cmd)
			}
			return runShowOne(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Canonical, "canonical", false, "print the exact canonical bytes used for hashing")
	cmd.Flags().BoolVar(&opts.Runs, "runs", false, "also list recorded runs")

	return cmd
}

func runShowList(opts *ShowOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	infos, err := st.ListSnapshots(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list snapshots", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}

	if len(infos) == 0 {
		fmt.Fprintln(formatter.Writer, "no snapshots")
		return nil
	}
	for _, info := range infos {
		fmt.Fprintf(formatter.Writer, "%s  %s  root %s: %s, %d entries\n",
			info.Fingerprint, info.CreatedAt, info.Root, info.OutType, info.EntryCount)
	}
	return nil
}

func runShowOne(opts *ShowOptions, ref string, cmd *cobra.Command) error {
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

	if opts.Canonical {
		body, err := ir.MarshalCanonical(snap.IR.CanonicalDump())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to marshal graph", err)
		}
		fmt.Fprintln(formatter.Writer, string(body))
	} else if formatter.Format == "json" {
		if err := formatter.Success(snap.IR.CanonicalDump()); err != nil {
			return err
		}
	} else {
		data, err := json.MarshalIndent(snap.IR.CanonicalDump(), "", "  ")
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to marshal graph", err)
		}
		fmt.Fprintln(formatter.Writer, string(data))
	}

	if opts.Runs {
		runs, err := st.ListRuns(ctx, snap.Fingerprint)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		for _, run := range runs {
			fmt.Fprintf(formatter.Writer, "run %s  %s  %s\n",
				run.ID, run.CreatedAt, ir.Format(run.Result))
		}
	}

	return nil
}
