package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/arbor/internal/dirty"
	"github.com/roach88/arbor/internal/ir"
	"github.com/roach88/arbor/internal/pred"
)

// RewriteOptions holds flags for the rewrite command.
type RewriteOptions struct {
	*RootOptions
	MatchKind   string
	MatchPrefix string
	MatchAlias  string
	To          string
	Wrap        string
	Save        string
}

// RewriteSummary is the success payload for the rewrite command.
type RewriteSummary struct {
	From        string   `json:"from"`
	Fingerprint string   `json:"fingerprint"`
	Matched     []string `json:"matched"`
	SavedAs     string   `json:"saved_as,omitempty"`
}

// NewRewriteCommand creates the rewrite command.
func NewRewriteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RewriteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rewrite <snapshot>",
		Short: "Rewrite matched entries of a stored graph",
		Long: `Select entries by predicate and rewrite them, producing a new
snapshot. The source snapshot is untouched; rewrites are pure.

Matchers combine with AND. Exactly one action is required: --to swaps
the kind of every matched entry, --wrap inserts a wrapper node above a
single matched entry.

Example:
  arbor rewrite main --match-kind num/add --to num/mul --save fast
  arbor rewrite main --match-alias retry --wrap scope/fresh --save fresh`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRewrite(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.MatchKind, "match-kind", "", "match entries with this exact kind")
	cmd.Flags().StringVar(&opts.MatchPrefix, "match-prefix", "", "match entries whose kind has this pack prefix")
	cmd.Flags().StringVar(&opts.MatchAlias, "match-alias", "", "match the entry carrying this alias")
	cmd.Flags().StringVar(&opts.To, "to", "", "replace matched kinds with this kind")
	cmd.Flags().StringVar(&opts.Wrap, "wrap", "", "wrap the single matched entry in this kind")
	cmd.Flags().StringVar(&opts.Save, "save", "", "save the result under this name")

	return cmd
}

func runRewrite(opts *RewriteOptions, ref string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := cmd.Context()

	if (opts.To == "") == (opts.Wrap == "") {
		return NewExitError(ExitCommandError, "exactly one of --to or --wrap is required")
	}

	p, err := buildPredicate(opts)
	if err != nil {
		return err
	}

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := resolveSnapshot(ctx, st, ref)
	if err != nil {
		return err
	}

	reg, _, err := composeKinds()
	if err != nil {
		return err
	}

	matched := pred.SelectWhere(snap.IR, p)
	if len(matched) == 0 {
		return NewExitError(ExitFailure, "no entries matched")
	}

	var rewritten ir.IR
	switch {
	case opts.To != "":
		rewritten, err = pred.ReplaceWhere(snap.IR, p, opts.To, reg)
		if err != nil {
			_ = formatter.Error("REWRITE_FAILED", err.Error(), nil)
			return WrapExitError(ExitFailure, "rewrite failed", err)
		}

	case opts.Wrap != "":
		if len(matched) != 1 {
			return NewExitError(ExitFailure,
				fmt.Sprintf("--wrap needs exactly one match, got %d", len(matched)))
		}
		var target ir.NodeID
		for id := range matched {
			target = id
		}
		d := dirty.From(snap.IR)
		d, err = dirty.WrapAbove(d, target, opts.Wrap, reg)
		if err != nil {
			_ = formatter.Error("REWRITE_FAILED", err.Error(), nil)
			return WrapExitError(ExitFailure, "rewrite failed", err)
		}
		rewritten, err = dirty.Commit(dirty.GC(d))
		if err != nil {
			_ = formatter.Error("REWRITE_FAILED", err.Error(), nil)
			return WrapExitError(ExitFailure, "rewrite failed", err)
		}
	}

	fingerprint, err := st.SaveSnapshot(ctx, opts.Save, rewritten)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to save snapshot", err)
	}
	slog.Debug("rewrite saved", "from", snap.Fingerprint, "to", fingerprint)

	ids := make([]ir.NodeID, 0, len(matched))
	for id := range matched {
		ids = append(ids, id)
	}
	ir.SortIDs(ids)
	matchedIDs := make([]string, len(ids))
	for i, id := range ids {
		matchedIDs[i] = string(id)
	}

	summary := RewriteSummary{
		From:        snap.Fingerprint,
		Fingerprint: fingerprint,
		Matched:     matchedIDs,
		SavedAs:     opts.Save,
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	fmt.Fprintf(formatter.Writer, "✓ Rewrote %d entries\n", len(matchedIDs))
	fmt.Fprintf(formatter.Writer, "  %s -> %s\n", summary.From, summary.Fingerprint)
	if summary.SavedAs != "" {
		fmt.Fprintf(formatter.Writer, "  saved as %q\n", summary.SavedAs)
	}
	return nil
}

// buildPredicate combines the match flags with AND.
func buildPredicate(opts *RewriteOptions) (pred.Predicate, error) {
	var parts []pred.Predicate
	if opts.MatchKind != "" {
		parts = append(parts, pred.Kind(opts.MatchKind))
	}
	if opts.MatchPrefix != "" {
		parts = append(parts, pred.KindPrefix(opts.MatchPrefix))
	}
	if opts.MatchAlias != "" {
		parts = append(parts, pred.Alias(opts.MatchAlias))
	}
	if len(parts) == 0 {
		return nil, NewExitError(ExitCommandError, "at least one --match flag is required")
	}
	return pred.And(parts...), nil
}
