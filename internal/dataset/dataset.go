// Package dataset models the rectangular tables the analysis engines consume
// and adapts their raw, possibly non-numeric cells into clean numeric series.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound reports a dataset identifier unknown to the provider.
var ErrNotFound = errors.New("dataset not found")

// IsNotFound reports whether err means the requested dataset does not exist.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// Dataset is a row-aligned table of raw values. It is owned by the caller and
// read-only to every engine.
type Dataset struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Fields []string         `json:"fields"`
	Rows   []map[string]any `json:"rows"`
}

// HasField reports whether the dataset declares the named column.
func (d *Dataset) HasField(name string) bool {
	for _, f := range d.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// Provider supplies datasets by logical identifier. Persistence, ingestion
// and ownership filtering live behind this interface.
type Provider interface {
	Dataset(ctx context.Context, id string) (*Dataset, error)
}

// MemoryProvider is an in-process Provider used by tests and as the demo
// collaborator mounted by the server.
type MemoryProvider struct {
	mu   sync.RWMutex
	byID map[string]*Dataset
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{byID: make(map[string]*Dataset)}
}

// Put registers or replaces a dataset.
func (p *MemoryProvider) Put(ds *Dataset) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byID[ds.ID] = ds
}

func (p *MemoryProvider) Dataset(_ context.Context, id string) (*Dataset, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ds, ok := p.byID[id]
	if !ok {
		return nil, fmt.Errorf("dataset %q: %w", id, ErrNotFound)
	}
	return ds, nil
}
