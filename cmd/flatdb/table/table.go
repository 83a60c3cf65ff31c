// Package table implements the storage engine for one table.  A table
// is a single file containing a schema and a sequence of rows.  The
// engine keeps no row cache: every insert, query, and count rereads
// the file so that results always reflect the latest persisted state.
// Inserts use whole-file rewrite: the file is read in full, the new
// row is appended in memory, and the file is written back in full.
// There is no locking; concurrent writers to the same table are not
// supported.
package table

import (
	"fmt"
	"os"

	"github.com/flatdb-project/flatdb/cmd/flatdb/dberr"
	"github.com/flatdb-project/flatdb/cmd/flatdb/log"
	"github.com/flatdb-project/flatdb/cmd/flatdb/record"
	"github.com/flatdb-project/flatdb/cmd/flatdb/types"
	"github.com/flatdb-project/flatdb/cmd/flatdb/util"
)

type Table struct {
	name     string
	filepath string
	schema   record.Schema
}

// Open opens the named table in a database directory.  If the table
// file does not exist, a new one is created containing the given
// schema and no rows.  If the file exists, the persisted schema is
// loaded and the schema argument is ignored.
func Open(dbdir, name string, schema record.Schema) (*Table, error) {
	t := &Table{name: name, filepath: util.TableFileName(dbdir, name)}
	exists, err := util.FileExists(t.filepath)
	if err != nil {
		return nil, dberr.Storage(err, "checking table file %s", t.filepath)
	}
	if !exists {
		if schema == nil {
			return nil, dberr.Validation("table %q not found and no schema given", name)
		}
		if err = schema.Validate(); err != nil {
			return nil, err
		}
		t.schema = schema
		if err = t.writeFile(nil); err != nil {
			return nil, err
		}
		log.Debug("created table file: %s", t.filepath)
		return t, nil
	}
	s, _, err := t.readFile()
	if err != nil {
		return nil, err
	}
	t.schema = s
	return t, nil
}

func (t *Table) Name() string {
	return t.name
}

// Describe returns the table schema.
func (t *Table) Describe() record.Schema {
	return append(record.Schema(nil), t.schema...)
}

// Insert validates positional values against the schema and appends
// them as a new row.  The number of values must equal the number of
// columns, and each value's type must match the column's data type.
// Validation happens before the file is touched.
func (t *Table) Insert(values ...any) error {
	if len(values) != len(t.schema) {
		return dberr.Validation("Invalid amount of field")
	}
	row := make(record.Row, 0, len(t.schema))
	for i, col := range t.schema {
		v, ok := types.NormalizeValue(values[i], col.Type)
		if !ok {
			return dberr.Validation("Invalid type of field %q: Given %q, expected %q",
				col.Name, fmt.Sprintf("%T", values[i]), col.Type.String())
		}
		row = append(row, record.Field{Name: col.Name, Value: v})
	}
	_, wire, err := t.readFile()
	if err != nil {
		return err
	}
	rows, err := t.nativeRows(wire)
	if err != nil {
		return err
	}
	rows = append(rows, row)
	return t.writeFile(rows)
}

// Query rereads the table file and returns a cursor over the rows
// matching the predicate.  A row matches if every predicate field
// equals the row's value for that field; a nil or empty predicate
// matches every row.  Calling Query again rereads the file, so a
// repeated query sees updated data.
func (t *Table) Query(pred map[string]any) (*Rows, error) {
	p := make(record.Row, 0, len(pred))
	for k, v := range pred {
		col, ok := t.schema.Column(k)
		if !ok {
			return nil, dberr.Validation("unknown field %q in query", k)
		}
		nv, ok := types.NormalizeValue(v, col.Type)
		if !ok {
			return nil, dberr.Validation("Invalid type of field %q: Given %q, expected %q",
				col.Name, fmt.Sprintf("%T", v), col.Type.String())
		}
		p = append(p, record.Field{Name: k, Value: nv})
	}
	log.Dump("query predicate", p)
	_, wire, err := t.readFile()
	if err != nil {
		return nil, err
	}
	rows, err := t.nativeRows(wire)
	if err != nil {
		return nil, err
	}
	return &Rows{rows: rows, pred: p}, nil
}

// All returns a cursor over every row in the table.
func (t *Table) All() (*Rows, error) {
	return t.Query(nil)
}

// Count rereads the table file and returns the number of stored rows.
func (t *Table) Count() (int, error) {
	_, rows, err := t.readFile()
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (t *Table) readFile() (record.Schema, []record.Row, error) {
	log.Trace("reading table file: %s", t.filepath)
	data, err := os.ReadFile(t.filepath)
	if err != nil {
		return nil, nil, dberr.Storage(err, "reading table file %s", t.filepath)
	}
	schema, rows, err := record.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("table file %s: %w", t.filepath, err)
	}
	return schema, rows, nil
}

func (t *Table) writeFile(rows []record.Row) error {
	data, err := record.Encode(t.schema, rows)
	if err != nil {
		return fmt.Errorf("encoding table %q: %v", t.name, err)
	}
	log.Trace("writing table file: %s", t.filepath)
	if err = os.WriteFile(t.filepath, data, util.ModePermRW); err != nil {
		return dberr.Storage(err, "writing table file %s", t.filepath)
	}
	return nil
}

// nativeRows converts decoded wire rows to canonical values in schema
// order.
func (t *Table) nativeRows(rows []record.Row) ([]record.Row, error) {
	out := make([]record.Row, 0, len(rows))
	for i, r := range rows {
		row := make(record.Row, 0, len(t.schema))
		for _, col := range t.schema {
			w, ok := r.Get(col.Name)
			if !ok {
				return nil, dberr.CorruptStore(nil, "table file %s: row %d: missing field %q",
					t.filepath, i+1, col.Name)
			}
			v, err := types.FromWireValue(w, col.Type)
			if err != nil {
				return nil, dberr.CorruptStore(err, "table file %s: row %d", t.filepath, i+1)
			}
			row = append(row, record.Field{Name: col.Name, Value: v})
		}
		out = append(out, row)
	}
	return out, nil
}

// Rows is a cursor over query results.
type Rows struct {
	rows []record.Row
	pred record.Row
	pos  int
	cur  record.Row
}

// Next advances to the next matching row.
func (r *Rows) Next() bool {
	for r.pos < len(r.rows) {
		row := r.rows[r.pos]
		r.pos++
		if matches(row, r.pred) {
			r.cur = row
			return true
		}
	}
	r.cur = nil
	return false
}

// Row returns the current row.
func (r *Rows) Row() record.Row {
	return r.cur
}

func matches(row, pred record.Row) bool {
	for _, p := range pred {
		v, ok := row.Get(p.Name)
		if !ok || !types.EqualValues(v, p.Value) {
			return false
		}
	}
	return true
}
