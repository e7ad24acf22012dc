// Package store provides an in-memory BracketStore implementation
// (for testing/dev).
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/payroll-engine/tax"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	versions map[tax.Kind][]tax.BracketVersion // sorted ascending by EffectiveFrom
	configs  []tax.DependentDeduction          // sorted ascending by EffectiveFrom
}

func NewMemory() *Memory {
	return &Memory{versions: make(map[tax.Kind][]tax.BracketVersion)}
}

// Compile-time check that Memory implements the sync contract.
var _ tax.SyncStore = (*Memory)(nil)

func (m *Memory) ResolveVersion(_ context.Context, kind tax.Kind, target time.Time) (*tax.BracketVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vs := m.versions[kind]
	// Binary search for the first version AFTER target; the one before it
	// is the active version.
	i := sort.Search(len(vs), func(i int) bool { return vs[i].EffectiveFrom.After(target) })
	if i == 0 {
		return nil, tax.ErrNoBracketVersion
	}
	v := cloneVersion(vs[i-1])
	return &v, nil
}

func (m *Memory) ReplaceVersion(_ context.Context, v tax.BracketVersion) error {
	if err := v.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceLocked(v)
	return nil
}

func (m *Memory) replaceLocked(v tax.BracketVersion) {
	vs := m.versions[v.Kind]
	i := sort.Search(len(vs), func(i int) bool { return !vs[i].EffectiveFrom.Before(v.EffectiveFrom) })
	if i < len(vs) && vs[i].EffectiveFrom.Equal(v.EffectiveFrom) {
		vs[i] = cloneVersion(v)
	} else {
		vs = append(vs, tax.BracketVersion{})
		copy(vs[i+1:], vs[i:])
		vs[i] = cloneVersion(v)
	}
	m.versions[v.Kind] = vs
}

func (m *Memory) ListVersions(_ context.Context, kind tax.Kind) ([]tax.BracketVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vs := m.versions[kind]
	out := make([]tax.BracketVersion, 0, len(vs))
	for i := len(vs) - 1; i >= 0; i-- { // newest first
		out = append(out, cloneVersion(vs[i]))
	}
	return out, nil
}

func (m *Memory) ResolveDependentDeduction(_ context.Context, target time.Time) (*tax.DependentDeduction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := sort.Search(len(m.configs), func(i int) bool { return m.configs[i].EffectiveFrom.After(target) })
	if i == 0 {
		return nil, tax.ErrNoDependentDeduction
	}
	cfg := m.configs[i-1]
	return &cfg, nil
}

func (m *Memory) SaveDependentDeduction(_ context.Context, cfg tax.DependentDeduction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveConfigLocked(cfg)
	return nil
}

func (m *Memory) saveConfigLocked(cfg tax.DependentDeduction) {
	i := sort.Search(len(m.configs), func(i int) bool { return !m.configs[i].EffectiveFrom.Before(cfg.EffectiveFrom) })
	if i < len(m.configs) && m.configs[i].EffectiveFrom.Equal(cfg.EffectiveFrom) {
		m.configs[i] = cfg
		return
	}
	m.configs = append(m.configs, tax.DependentDeduction{})
	copy(m.configs[i+1:], m.configs[i:])
	m.configs[i] = cfg
}

// ReplaceAll writes all versions plus the config under one lock so readers
// never observe a partial apply.
func (m *Memory) ReplaceAll(_ context.Context, versions []tax.BracketVersion, cfg *tax.DependentDeduction) error {
	for _, v := range versions {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range versions {
		m.replaceLocked(v)
	}
	if cfg != nil {
		m.saveConfigLocked(*cfg)
	}
	return nil
}

func cloneVersion(v tax.BracketVersion) tax.BracketVersion {
	rows := make([]tax.BracketRow, len(v.Rows))
	copy(rows, v.Rows)
	v.Rows = rows
	return v
}
