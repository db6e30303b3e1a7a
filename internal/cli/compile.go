package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/arbor/internal/elab"
	"github.com/roach88/arbor/internal/ir"
	"github.com/roach88/arbor/internal/loader"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Save     string // snapshot name to save under
	Output   string // output file path for the dump
	MaxDepth int
}

// CompileSummary is the success payload for the compile command.
type CompileSummary struct {
	Fingerprint string `json:"fingerprint"`
	Root        string `json:"root"`
	OutType     string `json:"out_type"`
	EntryCount  int    `json:"entry_count"`
	SavedAs     string `json:"saved_as,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <tree-file>",
		Short: "Compile a construction tree to a validated graph",
		Long: `Compile a CUE construction tree into a flat validated graph.

The elaborator resolves kinds and traits, lifts raw values to literal
leaves, and assigns sequential ids in child-before-parent order. The
resulting graph is content-addressed by the hash of its canonical dump.

Example:
  arbor compile expr.cue
  arbor compile expr.cue --save main --db ./arbor.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompileCmd(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Save, "save", "", "save snapshot under this name")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the graph dump to this file")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "construction tree depth limit (0 = default)")

	return cmd
}

func runCompileCmd(opts *CompileOptions, treePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	x, err := compileTree(opts.RootOptions, treePath, opts.MaxDepth)
	if err != nil {
		_ = formatter.Error("COMPILE_FAILED", err.Error(), nil)
		return WrapExitError(ExitCommandError, "compile failed", err)
	}

	fingerprint, err := ir.Fingerprint(x)
	if err != nil {
		return WrapExitError(ExitCommandError, "fingerprint failed", err)
	}

	summary := CompileSummary{
		Fingerprint: fingerprint,
		Root:        string(x.Root),
		OutType:     string(x.Out),
		EntryCount:  len(x.Entries),
	}

	if opts.Save != "" {
		st, err := openStore(opts.RootOptions)
		if err != nil {
			return err
		}
		defer st.Close()

		if _, err := st.SaveSnapshot(cmd.Context(), opts.Save, x); err != nil {
			return WrapExitError(ExitCommandError, "failed to save snapshot", err)
		}
		summary.SavedAs = opts.Save
		slog.Debug("snapshot saved", "name", opts.Save, "fingerprint", fingerprint)
	}

	if opts.Output != "" {
		if err := writeDumpToFile(x, opts.Output); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output file", err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d entries, root %s: %s\n",
		summary.EntryCount, summary.Root, summary.OutType)
	fmt.Fprintf(formatter.Writer, "  fingerprint %s\n", summary.Fingerprint)
	if summary.SavedAs != "" {
		fmt.Fprintf(formatter.Writer, "  saved as %q\n", summary.SavedAs)
	}
	return nil
}

// compileTree loads and elaborates a construction tree file.
func compileTree(opts *RootOptions, treePath string, maxDepth int) (ir.IR, error) {
	node, err := loader.Load(treePath)
	if err != nil {
		return ir.IR{}, err
	}

	reg, _, err := composeKinds()
	if err != nil {
		return ir.IR{}, err
	}

	elabOpts := elab.Options{MaxDepth: maxDepth}
	if elabOpts.MaxDepth == 0 {
		elabOpts.MaxDepth = opts.Config.MaxDepth
	}
	return elab.ElaborateWith(node, reg, elabOpts)
}

// writeDumpToFile writes the graph dump to a file as indented JSON.
// The canonical compact form is used only for hashing and storage.
func writeDumpToFile(x ir.IR, filename string) error {
	data, err := json.MarshalIndent(x.CanonicalDump(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling dump: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
