package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var makeDataTypeTests = []struct {
	in  string
	out DataType
}{
	{"string", StringType},
	{"text", StringType},
	{"varchar", StringType},
	{"integer", IntegerType},
	{"int", IntegerType},
	{"bigint", IntegerType},
	{"float", FloatType},
	{"double precision", FloatType},
	{"boolean", BooleanType},
	{"bool", BooleanType},
	{"date", DateType},
	{"numeric", NumericType},
	{"decimal", NumericType},
	{"uuid", UUIDType},
	{"INTEGER", IntegerType},
	{"Date", DateType},
}

func TestMakeDataType(t *testing.T) {
	for _, tt := range makeDataTypeTests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := MakeDataType(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if d != tt.out {
				t.Errorf("got %v; want %v", d, tt.out)
			}
		})
	}
}

func TestMakeDataTypeUnknown(t *testing.T) {
	_, err := MakeDataType("blob")
	if err == nil {
		t.Errorf("got %v; want error", err)
	}
}

var dataTypeStringTests = []struct {
	in  DataType
	out string
}{
	{StringType, "string"},
	{IntegerType, "integer"},
	{FloatType, "float"},
	{BooleanType, "boolean"},
	{DateType, "date"},
	{NumericType, "numeric"},
	{UUIDType, "uuid"},
}

func TestDataTypeString(t *testing.T) {
	for _, tt := range dataTypeStringTests {
		t.Run(tt.out, func(t *testing.T) {
			got := tt.in.String()
			if got != tt.out {
				t.Errorf("got %q; want %q", got, tt.out)
			}
			d, err := MakeDataType(got)
			if err != nil {
				t.Fatal(err)
			}
			if d != tt.in {
				t.Errorf("got %v; want %v", d, tt.in)
			}
		})
	}
}

func TestNormalizeValueInteger(t *testing.T) {
	v, ok := NormalizeValue(30, IntegerType)
	if !ok {
		t.Fatalf("got %v; want %v", ok, true)
	}
	if got, want := v, int64(30); got != want {
		t.Errorf("got %v (%T); want %v (%T)", got, got, want, want)
	}
	if _, ok = NormalizeValue(2.5, IntegerType); ok {
		t.Errorf("float accepted for integer column")
	}
	if _, ok = NormalizeValue("30", IntegerType); ok {
		t.Errorf("string accepted for integer column")
	}
}

func TestNormalizeValueFloat(t *testing.T) {
	v, ok := NormalizeValue(float32(2.5), FloatType)
	if !ok {
		t.Fatalf("got %v; want %v", ok, true)
	}
	if got, want := v, float64(2.5); got != want {
		t.Errorf("got %v; want %v", got, want)
	}
	if _, ok = NormalizeValue(2, FloatType); ok {
		t.Errorf("integer accepted for float column")
	}
}

func TestNormalizeValueDate(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	in := time.Date(2023, 4, 1, 17, 30, 9, 0, loc)
	v, ok := NormalizeValue(in, DateType)
	if !ok {
		t.Fatalf("got %v; want %v", ok, true)
	}
	want := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	if !v.(time.Time).Equal(want) {
		t.Errorf("got %v; want %v", v, want)
	}
	if _, ok = NormalizeValue("2023-04-01", DateType); ok {
		t.Errorf("string accepted for date column")
	}
}

func TestNormalizeValueString(t *testing.T) {
	if _, ok := NormalizeValue("Ana", StringType); !ok {
		t.Errorf("got %v; want %v", ok, true)
	}
	if _, ok := NormalizeValue(30, StringType); ok {
		t.Errorf("integer accepted for string column")
	}
}

var wireRoundTripTests = []struct {
	name  string
	value any
	dtype DataType
}{
	{"string", "Ana", StringType},
	{"integer", int64(30), IntegerType},
	{"float", 2.5, FloatType},
	{"boolean", true, BooleanType},
	{"date", time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), DateType},
	{"numeric", decimal.RequireFromString("149.99"), NumericType},
	{"uuid", uuid.MustParse("0c0adb2c-855d-4cb3-9d9f-ec5a3e68c52b"), UUIDType},
}

func TestWireRoundTrip(t *testing.T) {
	for _, tt := range wireRoundTripTests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := ToWireValue(tt.value, tt.dtype)
			if err != nil {
				t.Fatal(err)
			}
			// Numbers arrive from the decoder as json.Number.
			switch v := w.(type) {
			case int64:
				w = json.Number(decimal.NewFromInt(v).String())
			case float64:
				w = json.Number(decimal.NewFromFloat(v).String())
			}
			got, err := FromWireValue(w, tt.dtype)
			if err != nil {
				t.Fatal(err)
			}
			if !EqualValues(got, tt.value) {
				t.Errorf("got %v; want %v", got, tt.value)
			}
		})
	}
}

func TestFromWireValueMismatch(t *testing.T) {
	if _, err := FromWireValue("abc", IntegerType); err == nil {
		t.Errorf("got %v; want error", err)
	}
	if _, err := FromWireValue(json.Number("2.5"), IntegerType); err == nil {
		t.Errorf("got %v; want error", err)
	}
	if _, err := FromWireValue("2023-13-40", DateType); err == nil {
		t.Errorf("got %v; want error", err)
	}
	if _, err := FromWireValue("not-a-uuid", UUIDType); err == nil {
		t.Errorf("got %v; want error", err)
	}
}

var parseValueTests = []struct {
	in    string
	dtype DataType
	out   any
}{
	{"Ana", StringType, "Ana"},
	{"30", IntegerType, int64(30)},
	{"2.5", FloatType, 2.5},
	{"true", BooleanType, true},
	{"2023-04-01", DateType, time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)},
	{"149.99", NumericType, decimal.RequireFromString("149.99")},
	{"0c0adb2c-855d-4cb3-9d9f-ec5a3e68c52b", UUIDType,
		uuid.MustParse("0c0adb2c-855d-4cb3-9d9f-ec5a3e68c52b")},
}

func TestParseValue(t *testing.T) {
	for _, tt := range parseValueTests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseValue(tt.in, tt.dtype)
			if err != nil {
				t.Fatal(err)
			}
			if !EqualValues(got, tt.out) {
				t.Errorf("got %v; want %v", got, tt.out)
			}
		})
	}
}

func TestParseValueInvalid(t *testing.T) {
	if _, err := ParseValue("abc", IntegerType); err == nil {
		t.Errorf("got %v; want error", err)
	}
	if _, err := ParseValue("2023/04/01", DateType); err == nil {
		t.Errorf("got %v; want error", err)
	}
}

func TestEqualValuesNumeric(t *testing.T) {
	a := decimal.RequireFromString("5.50")
	b := decimal.RequireFromString("5.5")
	if !EqualValues(a, b) {
		t.Errorf("got %v; want %v", false, true)
	}
}

var dataTypeToSQLTests = []struct {
	in  DataType
	out string
}{
	{StringType, "text"},
	{IntegerType, "bigint"},
	{FloatType, "double precision"},
	{BooleanType, "boolean"},
	{DateType, "date"},
	{NumericType, "numeric"},
	{UUIDType, "uuid"},
}

func TestDataTypeToSQL(t *testing.T) {
	for _, tt := range dataTypeToSQLTests {
		t.Run(tt.out, func(t *testing.T) {
			got := DataTypeToSQL(tt.in)
			if got != tt.out {
				t.Errorf("got %q; want %q", got, tt.out)
			}
		})
	}
}
