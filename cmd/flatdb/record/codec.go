package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/flatdb-project/flatdb/cmd/flatdb/dberr"
	"github.com/flatdb-project/flatdb/cmd/flatdb/types"
)

type columnJSON struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
}

// Encode converts a schema and rows to the stored table file form.
// The output is deterministic: columns and row fields are written in
// order, and values are converted with types.ToWireValue.
func Encode(schema Schema, rows []Row) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("{\"columns\":")
	data, err := encodeColumns(schema)
	if err != nil {
		return nil, err
	}
	b.Write(data)
	b.WriteString(",\"rows\":[")
	for i, r := range rows {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := encodeRow(&b, schema, r); err != nil {
			return nil, err
		}
	}
	b.WriteString("]}")
	return b.Bytes(), nil
}

func encodeColumns(schema Schema) ([]byte, error) {
	type column struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	cols := make([]column, 0, len(schema))
	for _, c := range schema {
		cols = append(cols, column{Name: c.Name, Type: c.Type.String()})
	}
	data, err := json.Marshal(cols)
	if err != nil {
		return nil, fmt.Errorf("encoding columns: %v", err)
	}
	return data, nil
}

func encodeRow(b *bytes.Buffer, schema Schema, row Row) error {
	if len(row) != len(schema) {
		return fmt.Errorf("row has %d fields; schema has %d columns",
			len(row), len(schema))
	}
	b.WriteByte('{')
	for i, f := range row {
		col, ok := schema.Column(f.Name)
		if !ok {
			return fmt.Errorf("row field %q not in schema", f.Name)
		}
		if i > 0 {
			b.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return fmt.Errorf("encoding field name %q: %v", f.Name, err)
		}
		b.Write(name)
		b.WriteByte(':')
		w, err := types.ToWireValue(f.Value, col.Type)
		if err != nil {
			return fmt.Errorf("encoding field %q: %v", f.Name, err)
		}
		data, err := json.Marshal(w)
		if err != nil {
			return fmt.Errorf("encoding field %q: %v", f.Name, err)
		}
		b.Write(data)
	}
	b.WriteByte('}')
	return nil
}

// Decode parses a stored table file.  Row values are returned in wire
// form (string, bool, or json.Number); the caller converts them to
// canonical values using the schema.  Any malformed content fails with
// a corrupt store error.
func Decode(data []byte) (Schema, []Row, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := expectDelim(dec, '{'); err != nil {
		return nil, nil, dberr.CorruptStore(err, "reading table object")
	}
	var schema Schema
	var rows []Row
	var haveColumns, haveRows bool
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, dberr.CorruptStore(err, "reading table object")
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, dberr.CorruptStore(nil, "reading table object: unexpected %v", tok)
		}
		switch key {
		case "columns":
			if haveColumns {
				return nil, nil, dberr.CorruptStore(nil, "duplicate \"columns\" field")
			}
			haveColumns = true
			if schema, err = decodeColumns(dec); err != nil {
				return nil, nil, err
			}
		case "rows":
			if haveRows {
				return nil, nil, dberr.CorruptStore(nil, "duplicate \"rows\" field")
			}
			haveRows = true
			if rows, err = decodeRows(dec); err != nil {
				return nil, nil, err
			}
		default:
			return nil, nil, dberr.CorruptStore(nil, "unknown field %q in table object", key)
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, nil, dberr.CorruptStore(err, "reading table object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, nil, dberr.CorruptStore(nil, "unexpected data after table object")
	}
	if !haveColumns {
		return nil, nil, dberr.CorruptStore(nil, "missing \"columns\" field")
	}
	if !haveRows {
		return nil, nil, dberr.CorruptStore(nil, "missing \"rows\" field")
	}
	if err := checkRows(schema, rows); err != nil {
		return nil, nil, err
	}
	return schema, rows, nil
}

func decodeColumns(dec *json.Decoder) (Schema, error) {
	if err := expectDelim(dec, '['); err != nil {
		return nil, dberr.CorruptStore(err, "reading columns")
	}
	var schema Schema
	names := make(map[string]bool)
	for dec.More() {
		var cj columnJSON
		if err := dec.Decode(&cj); err != nil {
			return nil, dberr.CorruptStore(err, "reading column %d", len(schema)+1)
		}
		if cj.Name == nil || *cj.Name == "" {
			return nil, dberr.CorruptStore(nil, "column %d has no name", len(schema)+1)
		}
		if cj.Type == nil {
			return nil, dberr.CorruptStore(nil, "column %q has no type", *cj.Name)
		}
		if names[*cj.Name] {
			return nil, dberr.CorruptStore(nil, "duplicate column name %q", *cj.Name)
		}
		names[*cj.Name] = true
		dtype, err := types.MakeDataType(*cj.Type)
		if err != nil {
			return nil, dberr.CorruptStore(err, "column %q", *cj.Name)
		}
		schema = append(schema, Column{Name: *cj.Name, Type: dtype})
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, dberr.CorruptStore(err, "reading columns")
	}
	if len(schema) == 0 {
		return nil, dberr.CorruptStore(nil, "table object has no columns")
	}
	return schema, nil
}

func decodeRows(dec *json.Decoder) ([]Row, error) {
	if err := expectDelim(dec, '['); err != nil {
		return nil, dberr.CorruptStore(err, "reading rows")
	}
	rows := make([]Row, 0)
	for dec.More() {
		row, err := decodeRow(dec, len(rows)+1)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, dberr.CorruptStore(err, "reading rows")
	}
	return rows, nil
}

func decodeRow(dec *json.Decoder, n int) (Row, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, dberr.CorruptStore(err, "reading row %d", n)
	}
	var row Row
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, dberr.CorruptStore(err, "reading row %d", n)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, dberr.CorruptStore(nil, "reading row %d: unexpected %v", n, tok)
		}
		if seen[key] {
			return nil, dberr.CorruptStore(nil, "row %d has duplicate field %q", n, key)
		}
		seen[key] = true
		tok, err = dec.Token()
		if err != nil {
			return nil, dberr.CorruptStore(err, "reading row %d field %q", n, key)
		}
		switch tok.(type) {
		case string, bool, json.Number:
		case json.Delim:
			return nil, dberr.CorruptStore(nil, "row %d field %q has non-scalar value", n, key)
		case nil:
			return nil, dberr.CorruptStore(nil, "row %d field %q is null", n, key)
		default:
			return nil, dberr.CorruptStore(nil, "row %d field %q has unexpected value", n, key)
		}
		row = append(row, Field{Name: key, Value: tok})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, dberr.CorruptStore(err, "reading row %d", n)
	}
	return row, nil
}

// checkRows verifies that every row's field names exactly match the
// schema column names.  Duplicate fields are rejected during parsing,
// so a length match plus membership implies an exact set match.
func checkRows(schema Schema, rows []Row) error {
	for i, r := range rows {
		if len(r) != len(schema) {
			return dberr.CorruptStore(nil, "row %d has %d fields; schema has %d columns",
				i+1, len(r), len(schema))
		}
		for _, f := range r {
			if _, ok := schema.Column(f.Name); !ok {
				return dberr.CorruptStore(nil, "row %d has unknown field %q", i+1, f.Name)
			}
		}
	}
	return nil
}

func expectDelim(dec *json.Decoder, d json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != d {
		return fmt.Errorf("unexpected %v", tok)
	}
	return nil
}
