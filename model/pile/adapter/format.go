package adapter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/viant/toolbox"
	"gopkg.in/yaml.v3"
)

// JSON encodes records as a JSON array
type JSON struct{}

func (j *JSON) Format() string { return "json" }

func (j *JSON) Export(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.Marshal(records)
}

func (j *JSON) Import(data []byte) ([]Record, error) {
	var ret []Record
	if err := json.Unmarshal(data, &ret); err != nil {
		return nil, fmt.Errorf("failed to decode json records: %w", err)
	}
	return ret, nil
}

// YAML encodes records as a YAML sequence
type YAML struct{}

func (y *YAML) Format() string { return "yaml" }

func (y *YAML) Export(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return yaml.Marshal(records)
}

func (y *YAML) Import(data []byte) ([]Record, error) {
	var ret []Record
	if err := yaml.Unmarshal(data, &ret); err != nil {
		return nil, fmt.Errorf("failed to decode yaml records: %w", err)
	}
	return ret, nil
}

// CSV encodes records as a header row followed by one row per record.
// Nested values are JSON encoded; imported cells are strings.
type CSV struct{}

func (c *CSV) Format() string { return "csv" }

func (c *CSV) Export(records []Record) ([]byte, error) {
	table := NewTable(records)
	buffer := new(bytes.Buffer)
	writer := csv.NewWriter(buffer)
	if err := writer.Write(table.Columns); err != nil {
		return nil, err
	}
	for _, row := range table.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			text, err := cellText(cell)
			if err != nil {
				return nil, err
			}
			cells[i] = text
		}
		if err := writer.Write(cells); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	return buffer.Bytes(), writer.Error()
}

func (c *CSV) Import(data []byte) ([]Record, error) {
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to decode csv records: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	table := &Table{Columns: rows[0]}
	for _, row := range rows[1:] {
		cells := make([]interface{}, len(row))
		for i, cell := range row {
			if cell != "" {
				cells[i] = cell
			}
		}
		table.Rows = append(table.Rows, cells)
	}
	return table.Records(), nil
}

func cellText(cell interface{}) (string, error) {
	switch cell.(type) {
	case nil:
		return "", nil
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(cell)
		return string(data), err
	}
	return toolbox.AsString(cell), nil
}
