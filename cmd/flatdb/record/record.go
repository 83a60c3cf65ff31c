// Package record defines the schema and row representations of the
// record store and the codec for the stored table file format.  A
// table file is a JSON object with two fields: "columns", an ordered
// list of column descriptors, and "rows", an ordered list of row
// objects whose keys match the column names.
package record

import (
	"github.com/flatdb-project/flatdb/cmd/flatdb/dberr"
	"github.com/flatdb-project/flatdb/cmd/flatdb/types"
)

type Column struct {
	Name string
	Type types.DataType
}

// Schema is an ordered list of column definitions.  The order defines
// the positional mapping of inserted values.
type Schema []Column

// Column returns the column definition with the given name.
func (s Schema) Column(name string) (Column, bool) {
	for _, c := range s {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Validate checks that a schema is usable for creating a table.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return dberr.Validation("schema has no columns")
	}
	names := make(map[string]bool)
	for _, c := range s {
		if c.Name == "" {
			return dberr.Validation("schema has a column with no name")
		}
		if names[c.Name] {
			return dberr.Validation("duplicate column name %q", c.Name)
		}
		names[c.Name] = true
		switch c.Type {
		case types.StringType, types.IntegerType, types.FloatType,
			types.BooleanType, types.DateType, types.NumericType,
			types.UUIDType:
		default:
			return dberr.Validation("column %q has unknown data type", c.Name)
		}
	}
	return nil
}

type Field struct {
	Name  string
	Value any
}

// Row is one stored record, an ordered list of fields.  Field order
// follows schema order for rows written by the table engine.
type Row []Field

// Get returns the value of the named field.
func (r Row) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}
