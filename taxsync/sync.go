/*
sync.go - Synchronizer: walk the ranked chains, then dry-run or apply

PURPOSE:
  Orchestrates one synchronization attempt for a target year. Each tax
  kind's provider chain is walked in order until one source yields a
  valid table; per-source failures are concatenated into one message so
  the caller sees the whole fallback story.

APPLY SEMANTICS:
  Dry-run always succeeds and returns the report, whatever the sources
  did. Apply is all-or-nothing: if ANY kind failed extraction, nothing
  is persisted and the call returns *tax.ApplyRefusedError. On success
  both kinds (and the dependent-deduction config) land in a single
  store transaction via SyncStore.ReplaceAll.
*/
package taxsync

import (
	"context"
	"fmt"
	"strings"

	"github.com/warp/payroll-engine/tax"
)

// Result is the outcome of one synchronization run, for both the CLI
// and the HTTP endpoint. Errors holds the concatenated per-source
// failure text for kinds whose whole chain failed.
type Result struct {
	TargetYear int
	Applied    bool

	SourceUsed map[tax.Kind]string
	Extracted  map[tax.Kind]*Extracted
	Errors     map[tax.Kind]string

	ReportLines []string
}

// Synchronizer wires the fetcher and provider chains to a store.
type Synchronizer struct {
	Store     tax.SyncStore
	Fetcher   *Fetcher
	Providers map[tax.Kind][]Provider
}

// New builds a synchronizer with the official provider chains and the
// default fetch timeout.
func New(store tax.SyncStore) *Synchronizer {
	return &Synchronizer{
		Store:     store,
		Fetcher:   NewFetcher(DefaultFetchTimeout),
		Providers: DefaultProviders(),
	}
}

// Run walks both chains for the target year. With apply=false it is a
// pure dry-run: the result carries the report and never an error. With
// apply=true the extracted tables are persisted atomically, effective
// January 1st of the target year; any chain failure refuses the whole
// apply.
func (s *Synchronizer) Run(ctx context.Context, targetYear int, apply bool) (*Result, error) {
	res := &Result{
		TargetYear: targetYear,
		SourceUsed: make(map[tax.Kind]string),
		Extracted:  make(map[tax.Kind]*Extracted),
		Errors:     make(map[tax.Kind]string),
	}

	for _, kind := range tax.Kinds {
		ext, source, errText := s.extractKind(ctx, kind)
		if ext == nil {
			res.Errors[kind] = errText
			continue
		}
		res.SourceUsed[kind] = source
		res.Extracted[kind] = ext
	}

	res.ReportLines = renderReport(res, apply)

	if !apply {
		return res, nil
	}
	if len(res.Errors) > 0 {
		return res, &tax.ApplyRefusedError{Errors: res.Errors}
	}

	effective := tax.Date(targetYear, 1, 1)
	versions := make([]tax.BracketVersion, 0, len(tax.Kinds))
	for _, kind := range tax.Kinds {
		versions = append(versions, tax.BracketVersion{
			Kind:          kind,
			EffectiveFrom: effective,
			Rows:          res.Extracted[kind].Rows,
		})
	}

	var cfg *tax.DependentDeduction
	if dep := res.Extracted[tax.KindWithholding].DependentDeduction; dep != nil {
		cfg = &tax.DependentDeduction{EffectiveFrom: effective, PerDependent: *dep}
	}

	if err := s.Store.ReplaceAll(ctx, versions, cfg); err != nil {
		return res, fmt.Errorf("persist synchronized tables: %w", err)
	}
	res.Applied = true
	return res, nil
}

// extractKind walks one kind's chain. On success it returns the
// extraction and the winning source name; on exhaustion it returns the
// concatenated failure text.
func (s *Synchronizer) extractKind(ctx context.Context, kind tax.Kind) (*Extracted, string, string) {
	var parts []string
	for _, p := range s.Providers[kind] {
		ext, err := p.Extract(ctx, s.Fetcher)
		if err == nil {
			return ext, p.Name, ""
		}
		parts = append(parts, fmt.Sprintf("%s: %v", p.Name, err))
	}
	if len(parts) == 0 {
		parts = append(parts, "no sources configured")
	}
	return nil, "", strings.Join(parts, " | ")
}
