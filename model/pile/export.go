package pile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/fluxmesh/model/pile/adapter"
)

func (p *Pile[T]) adapterRegistry() *adapter.Registry {
	if p.adapters == nil {
		return adapter.NewRegistry()
	}
	return p.adapters
}

func (p *Pile[T]) fileSystem() afs.Service {
	if p.fs == nil {
		return afs.New()
	}
	return p.fs
}

// Records returns items as records in pile order
func (p *Pile[T]) Records() ([]adapter.Record, error) {
	values := p.Values()
	ret := make([]adapter.Record, 0, len(values))
	for _, item := range values {
		data, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("failed to encode item %v: %w", item.Identity(), err)
		}
		record := adapter.Record{}
		if err = json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("failed to decode item %v: %w", item.Identity(), err)
		}
		ret = append(ret, record)
	}
	return ret, nil
}

// Table returns a tabular view of the pile
func (p *Pile[T]) Table() (*adapter.Table, error) {
	records, err := p.Records()
	if err != nil {
		return nil, err
	}
	return adapter.NewTable(records), nil
}

// Export encodes the pile with the adapter registered for format
func (p *Pile[T]) Export(format string) ([]byte, error) {
	encoder, err := p.adapterRegistry().Lookup(format)
	if err != nil {
		return nil, err
	}
	records, err := p.Records()
	if err != nil {
		return nil, err
	}
	return encoder.Export(records)
}

// Dump writes the exported pile to URL, optionally clearing it afterwards.
func (p *Pile[T]) Dump(ctx context.Context, URL, format string, clear bool) error {
	data, err := p.Export(format)
	if err != nil {
		return err
	}
	if err = p.fileSystem().Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to dump pile to %v: %w", URL, err)
	}
	if clear {
		return p.ClearContext(ctx)
	}
	return nil
}

// Load reads records from URL and includes the decoded items.
// newItem returns an empty item the record is decoded into.
func (p *Pile[T]) Load(ctx context.Context, URL, format string, newItem func() T) error {
	decoder, err := p.adapterRegistry().Lookup(format)
	if err != nil {
		return err
	}
	data, err := p.fileSystem().DownloadWithURL(ctx, URL)
	if err != nil {
		return fmt.Errorf("failed to load pile from %v: %w", URL, err)
	}
	records, err := decoder.Import(data)
	if err != nil {
		return err
	}
	return p.IncludeRecords(ctx, records, newItem)
}

// IncludeRecords decodes records into items and includes them
func (p *Pile[T]) IncludeRecords(ctx context.Context, records []adapter.Record, newItem func() T) error {
	items := make([]T, 0, len(records))
	for i, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to encode record %d: %w", i, err)
		}
		item := newItem()
		if err = json.Unmarshal(data, item); err != nil {
			return fmt.Errorf("failed to decode record %d: %w", i, err)
		}
		items = append(items, item)
	}
	return p.IncludeContext(ctx, items...)
}
