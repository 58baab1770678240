// Package adapter converts collection records to and from serialized formats.
package adapter

import (
	"sort"
	"strings"
	"sync"

	"github.com/viant/fluxmesh/errs"
)

// Record represents a single exported item
type Record = map[string]interface{}

// Adapter converts records for a named format
type Adapter interface {
	// Format returns the format name the adapter is registered under
	Format() string
	// Export encodes records
	Export(records []Record) ([]byte, error)
	// Import decodes records
	Import(data []byte) ([]Record, error)
}

// Registry holds adapters keyed by format name
type Registry struct {
	mux      sync.RWMutex
	adapters map[string]Adapter
}

// Register adds or replaces adapters
func (r *Registry) Register(adapters ...Adapter) {
	r.mux.Lock()
	defer r.mux.Unlock()
	for _, adapter := range adapters {
		r.adapters[strings.ToLower(adapter.Format())] = adapter
	}
}

// Lookup returns adapter for a format name
func (r *Registry) Lookup(format string) (Adapter, error) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	ret, ok := r.adapters[strings.ToLower(format)]
	if !ok {
		return nil, errs.Lookup("adapter %q not registered", format)
	}
	return ret, nil
}

// Formats returns registered format names
func (r *Registry) Formats() []string {
	r.mux.RLock()
	defer r.mux.RUnlock()
	ret := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// NewRegistry creates a registry with the JSON, YAML and CSV adapters
func NewRegistry(adapters ...Adapter) *Registry {
	ret := &Registry{adapters: make(map[string]Adapter)}
	ret.Register(&JSON{}, &YAML{}, &CSV{})
	ret.Register(adapters...)
	return ret
}

// Table is a tabular view of records
type Table struct {
	Columns []string
	Rows    [][]interface{}
}

var leadingColumns = []string{"id", "created_at"}

// NewTable builds a table, identity columns come first, remaining ones are sorted.
func NewTable(records []Record) *Table {
	seen := map[string]bool{}
	var rest []string
	for _, record := range records {
		for key := range record {
			if !seen[key] {
				seen[key] = true
				if !isLeading(key) {
					rest = append(rest, key)
				}
			}
		}
	}
	sort.Strings(rest)
	ret := &Table{}
	for _, column := range leadingColumns {
		if seen[column] {
			ret.Columns = append(ret.Columns, column)
		}
	}
	ret.Columns = append(ret.Columns, rest...)
	for _, record := range records {
		row := make([]interface{}, len(ret.Columns))
		for i, column := range ret.Columns {
			row[i] = record[column]
		}
		ret.Rows = append(ret.Rows, row)
	}
	return ret
}

// Records converts table rows back to records, nil cells are skipped.
func (t *Table) Records() []Record {
	ret := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		record := Record{}
		for i, column := range t.Columns {
			if i < len(row) && row[i] != nil {
				record[column] = row[i]
			}
		}
		ret = append(ret, record)
	}
	return ret
}

func isLeading(column string) bool {
	for _, candidate := range leadingColumns {
		if candidate == column {
			return true
		}
	}
	return false
}
