package cli

import (
	"context"
	"errors"

	"github.com/roach88/arbor/internal/corekind"
	"github.com/roach88/arbor/internal/fold"
	"github.com/roach88/arbor/internal/ir"
	"github.com/roach88/arbor/internal/registry"
	"github.com/roach88/arbor/internal/store"
)

// irSnapshot pairs a loaded graph with the fingerprint it was stored
// under.
type irSnapshot struct {
	IR          ir.IR
	Fingerprint string
}

// composeKinds builds the registry and handler table from the built-in
// kind packs. Composition can only fail if the packs themselves are
// inconsistent, so a failure here is a command error, not user error.
func composeKinds() (*registry.Registry, fold.Handlers, error) {
	reg, handlers, err := corekind.Compose()
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "kind packs failed to compose", err)
	}
	return reg, handlers, nil
}

// openStore opens the snapshot database named by --db or the config
// file. Commands that touch the store require it.
func openStore(opts *RootOptions) (*store.Store, error) {
	if opts.Database == "" {
		return nil, NewExitError(ExitCommandError, "no database configured: pass --db or set database in arbor.yaml")
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// resolveSnapshot loads a snapshot by name first, then by fingerprint.
// Names are the common spelling; fingerprints are exact.
func resolveSnapshot(ctx context.Context, st *store.Store, ref string) (x irSnapshot, err error) {
	loaded, fingerprint, err := st.LoadByName(ctx, ref)
	if err == nil {
		return irSnapshot{IR: loaded, Fingerprint: fingerprint}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return irSnapshot{}, WrapExitError(ExitCommandError, "failed to load snapshot", err)
	}

	loaded, err = st.LoadSnapshot(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		return irSnapshot{}, NewExitError(ExitCommandError, "no snapshot named "+ref)
	}
	if err != nil {
		return irSnapshot{}, WrapExitError(ExitCommandError, "failed to load snapshot", err)
	}
	return irSnapshot{IR: loaded, Fingerprint: ref}, nil
}
