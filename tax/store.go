/*
store.go - Persistence contract for bracket versions

PURPOSE:
  Defines the interface between the tax model and the database. Versions
  are append-only per (kind, effective_from): resolution is a pure lookup,
  and the only mutation is a whole-version atomic replace.

RESOLUTION CONTRACT:
  ResolveVersion picks the version with the greatest effective_from at or
  before the target date. No covering version returns ErrNoBracketVersion,
  which callers treat as "no estimate available", not as a failure.

ATOMIC REPLACE:
  ReplaceVersion deletes any rows for the exact (kind, effective_from) and
  inserts the new set in one transaction. No reader ever observes a
  partially replaced version.

ALL-OR-NOTHING APPLY:
  ReplaceAll writes several versions plus the dependent config in a single
  atomic unit. The synchronizer uses it so an apply across both tax kinds
  either fully commits or leaves the store untouched.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - tax/store: in-memory store for tests and demos
*/
package tax

import (
	"context"
	"time"
)

// BracketStore resolves and replaces effective-dated bracket versions.
type BracketStore interface {
	// ResolveVersion returns the active version for a target date:
	// greatest effective_from <= target. Returns ErrNoBracketVersion
	// when no version covers the date.
	ResolveVersion(ctx context.Context, kind Kind, target time.Time) (*BracketVersion, error)

	// ReplaceVersion atomically replaces the full row set for the
	// version's exact (kind, effective_from). The version must Validate.
	ReplaceVersion(ctx context.Context, v BracketVersion) error

	// ListVersions returns all versions for a kind, newest first.
	ListVersions(ctx context.Context, kind Kind) ([]BracketVersion, error)

	// ResolveDependentDeduction returns the dependent-deduction config
	// active at the target date, resolved the same "latest <= target"
	// way, independent of bracket rows.
	ResolveDependentDeduction(ctx context.Context, target time.Time) (*DependentDeduction, error)

	// SaveDependentDeduction inserts or updates the config for its
	// exact effective date.
	SaveDependentDeduction(ctx context.Context, cfg DependentDeduction) error
}

// SyncStore extends BracketStore with the all-or-nothing write the
// synchronizer needs in apply mode.
type SyncStore interface {
	BracketStore

	// ReplaceAll replaces every given version and, when non-nil, the
	// dependent config, as ONE atomic unit across tax kinds.
	ReplaceAll(ctx context.Context, versions []BracketVersion, cfg *DependentDeduction) error
}
