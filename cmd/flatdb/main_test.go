package main

import (
	"testing"
	"time"

	"github.com/flatdb-project/flatdb/cmd/flatdb/dberr"
	"github.com/flatdb-project/flatdb/cmd/flatdb/record"
	"github.com/flatdb-project/flatdb/cmd/flatdb/types"
)

var testSchema = record.Schema{
	{Name: "name", Type: types.StringType},
	{Name: "age", Type: types.IntegerType},
}

var parseColumnsTests = []struct {
	spec  string
	name  string
	dtype types.DataType
}{
	{"name:string", "name", types.StringType},
	{"age:integer", "age", types.IntegerType},
	{"height:float", "height", types.FloatType},
	{"active:boolean", "active", types.BooleanType},
	{"joined:date", "joined", types.DateType},
	{"balance:numeric", "balance", types.NumericType},
	{"id:uuid", "id", types.UUIDType},
	{"note:text", "note", types.StringType},
}

func TestParseColumns(t *testing.T) {
	for _, tt := range parseColumnsTests {
		t.Run(tt.spec, func(t *testing.T) {
			schema, err := parseColumns([]string{tt.spec})
			if err != nil {
				t.Fatal(err)
			}
			if len(schema) != 1 {
				t.Fatalf("got %d columns; want 1", len(schema))
			}
			if schema[0].Name != tt.name {
				t.Errorf("got %q; want %q", schema[0].Name, tt.name)
			}
			if schema[0].Type != tt.dtype {
				t.Errorf("got %v; want %v", schema[0].Type, tt.dtype)
			}
		})
	}
}

var parseColumnsErrorTests = []string{
	"name",
	":string",
	"name:",
	"name:widget",
}

func TestParseColumnsInvalid(t *testing.T) {
	for _, spec := range parseColumnsErrorTests {
		t.Run(spec, func(t *testing.T) {
			if _, err := parseColumns([]string{spec}); err == nil {
				t.Errorf("parseColumns(%q): expected error", spec)
			}
		})
	}
}

func TestParseValues(t *testing.T) {
	values, err := parseValues(testSchema, []string{"Ana", "30"})
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 2 {
		t.Fatalf("got %d values; want 2", len(values))
	}
	if values[0] != "Ana" {
		t.Errorf("got %v; want Ana", values[0])
	}
	if values[1] != int64(30) {
		t.Errorf("got %v (%T); want 30", values[1], values[1])
	}
}

func TestParseValuesWrongCount(t *testing.T) {
	_, err := parseValues(testSchema, []string{"Ana"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !dberr.IsValidation(err) {
		t.Errorf("expected validation error; got %v", err)
	}
	var want = "Invalid amount of field"
	if err.Error() != want {
		t.Errorf("got %q; want %q", err.Error(), want)
	}
}

func TestParseValuesBadLiteral(t *testing.T) {
	_, err := parseValues(testSchema, []string{"Ana", "abc"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !dberr.IsValidation(err) {
		t.Errorf("expected validation error; got %v", err)
	}
}

func TestParseFilters(t *testing.T) {
	filters, err := parseFilters(testSchema, []string{"name=Ana", "age=30"})
	if err != nil {
		t.Fatal(err)
	}
	if len(filters) != 2 {
		t.Fatalf("got %d filters; want 2", len(filters))
	}
	if filters["name"] != "Ana" {
		t.Errorf("got %v; want Ana", filters["name"])
	}
	if filters["age"] != int64(30) {
		t.Errorf("got %v (%T); want 30", filters["age"], filters["age"])
	}
}

func TestParseFiltersUnknownField(t *testing.T) {
	// An unknown field is passed through so the query rejects it.
	filters, err := parseFilters(testSchema, []string{"ghost=1"})
	if err != nil {
		t.Fatal(err)
	}
	if filters["ghost"] != "1" {
		t.Errorf("got %v; want 1", filters["ghost"])
	}
}

func TestParseFiltersValueWithEquals(t *testing.T) {
	filters, err := parseFilters(testSchema, []string{"name=a=b"})
	if err != nil {
		t.Fatal(err)
	}
	if filters["name"] != "a=b" {
		t.Errorf("got %v; want a=b", filters["name"])
	}
}

func TestParseFiltersInvalid(t *testing.T) {
	if _, err := parseFilters(testSchema, []string{"noequals"}); err == nil {
		t.Error("expected error")
	}
}

var printValueTests = []struct {
	value    any
	expected string
}{
	{"Ana", "Ana"},
	{int64(30), "30"},
	{float64(2.5), "2.5"},
	{true, "true"},
	{time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "2024-03-09"},
}

func TestPrintValue(t *testing.T) {
	for _, tt := range printValueTests {
		t.Run(tt.expected, func(t *testing.T) {
			s := printValue(tt.value)
			if s != tt.expected {
				t.Errorf("got %v; want %v", s, tt.expected)
			}
		})
	}
}

func TestFormatRow(t *testing.T) {
	row := record.Row{
		{Name: "name", Value: "Ana"},
		{Name: "age", Value: int64(30)},
	}
	var want = "name=Ana age=30"
	if got := formatRow(row); got != want {
		t.Errorf("got %q; want %q", got, want)
	}
}
