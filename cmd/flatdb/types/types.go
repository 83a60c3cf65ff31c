package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/flatdb-project/flatdb/cmd/flatdb/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DataType int

const (
	UnknownType = 0
	StringType  = 1
	IntegerType = 2
	FloatType   = 3
	BooleanType = 4
	DateType    = 5
	NumericType = 6
	UUIDType    = 7
)

// DateFormat is the layout of date values in stored table files.
const DateFormat = "2006-01-02"

// String returns the type tag used in stored table files.
func (d DataType) String() string {
	switch d {
	case StringType:
		return "string"
	case IntegerType:
		return "integer"
	case FloatType:
		return "float"
	case BooleanType:
		return "boolean"
	case DateType:
		return "date"
	case NumericType:
		return "numeric"
	case UUIDType:
		return "uuid"
	default:
		log.Error("data type to string: unknown data type: %d", int(d))
		return "(unknown type)"
	}
}

// MakeDataType converts a type tag to a data type.  A few common
// aliases are accepted in addition to the canonical tags.
func MakeDataType(dataType string) (DataType, error) {
	switch strings.ToLower(dataType) {
	case "string", "text", "varchar":
		return StringType, nil
	case "integer", "int", "smallint", "bigint":
		return IntegerType, nil
	case "float", "real", "double", "double precision":
		return FloatType, nil
	case "boolean", "bool":
		return BooleanType, nil
	case "date":
		return DateType, nil
	case "numeric", "decimal":
		return NumericType, nil
	case "uuid":
		return UUIDType, nil
	default:
		return UnknownType, fmt.Errorf("unknown data type: %s", dataType)
	}
}

// NormalizeValue checks that a value is acceptable for a column of the
// given data type and converts it to the canonical representation:
// int64 for integers, float64 for floats, and midnight UTC for dates.
// It reports false if the value's type does not match the data type.
func NormalizeValue(value any, dtype DataType) (any, bool) {
	switch dtype {
	case StringType:
		v, ok := value.(string)
		if !ok {
			return nil, false
		}
		return v, true
	case IntegerType:
		switch v := value.(type) {
		case int:
			return int64(v), true
		case int8:
			return int64(v), true
		case int16:
			return int64(v), true
		case int32:
			return int64(v), true
		case int64:
			return v, true
		default:
			return nil, false
		}
	case FloatType:
		switch v := value.(type) {
		case float32:
			return float64(v), true
		case float64:
			return v, true
		default:
			return nil, false
		}
	case BooleanType:
		v, ok := value.(bool)
		if !ok {
			return nil, false
		}
		return v, true
	case DateType:
		v, ok := value.(time.Time)
		if !ok {
			return nil, false
		}
		return time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC), true
	case NumericType:
		v, ok := value.(decimal.Decimal)
		if !ok {
			return nil, false
		}
		return v, true
	case UUIDType:
		v, ok := value.(uuid.UUID)
		if !ok {
			return nil, false
		}
		return v, true
	default:
		return nil, false
	}
}

// ToWireValue converts a canonical value to the form written to a
// stored table file.  Dates and UUIDs become strings; numerics become
// JSON numbers so that their digits are preserved exactly.
func ToWireValue(value any, dtype DataType) (any, error) {
	switch dtype {
	case StringType:
		v, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s value \"%v\" has type %T", dtype, value, value)
		}
		return v, nil
	case IntegerType:
		v, ok := value.(int64)
		if !ok {
			return nil, fmt.Errorf("%s value \"%v\" has type %T", dtype, value, value)
		}
		return v, nil
	case FloatType:
		v, ok := value.(float64)
		if !ok {
			return nil, fmt.Errorf("%s value \"%v\" has type %T", dtype, value, value)
		}
		return v, nil
	case BooleanType:
		v, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%s value \"%v\" has type %T", dtype, value, value)
		}
		return v, nil
	case DateType:
		v, ok := value.(time.Time)
		if !ok {
			return nil, fmt.Errorf("%s value \"%v\" has type %T", dtype, value, value)
		}
		return v.Format(DateFormat), nil
	case NumericType:
		v, ok := value.(decimal.Decimal)
		if !ok {
			return nil, fmt.Errorf("%s value \"%v\" has type %T", dtype, value, value)
		}
		return json.Number(v.String()), nil
	case UUIDType:
		v, ok := value.(uuid.UUID)
		if !ok {
			return nil, fmt.Errorf("%s value \"%v\" has type %T", dtype, value, value)
		}
		return v.String(), nil
	default:
		return nil, fmt.Errorf("%s value \"%v\" has type %T", dtype, value, value)
	}
}

// FromWireValue converts a value read from a stored table file back to
// its canonical form for the given data type.
func FromWireValue(value any, dtype DataType) (any, error) {
	switch dtype {
	case StringType:
		v, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s value \"%v\" has type %T", dtype, value, value)
		}
		return v, nil
	case IntegerType:
		n, ok := value.(json.Number)
		if !ok {
			return nil, fmt.Errorf("%s value \"%v\" has type %T", dtype, value, value)
		}
		v, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s value \"%v\": %v", dtype, value, err)
		}
		return v, nil
	case FloatType:
		n, ok := value.(json.Number)
		if !ok {
			return nil, fmt.Errorf("%s value \"%v\" has type %T", dtype, value, value)
		}
		v, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return nil, fmt.Errorf("%s value \"%v\": %v", dtype, value, err)
		}
		return v, nil
	case BooleanType:
		v, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%s value \"%v\" has type %T", dtype, value, value)
		}
		return v, nil
	case DateType:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s value \"%v\" has type %T", dtype, value, value)
		}
		v, err := time.Parse(DateFormat, s)
		if err != nil {
			return nil, fmt.Errorf("%s value \"%v\": %v", dtype, value, err)
		}
		return v, nil
	case NumericType:
		var s string
		switch n := value.(type) {
		case json.Number:
			s = n.String()
		case string:
			s = n
		default:
			return nil, fmt.Errorf("%s value \"%v\" has type %T", dtype, value, value)
		}
		v, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("%s value \"%v\": %v", dtype, value, err)
		}
		return v, nil
	case UUIDType:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s value \"%v\" has type %T", dtype, value, value)
		}
		v, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%s value \"%v\": %v", dtype, value, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%s value \"%v\" has type %T", dtype, value, value)
	}
}

// ParseValue converts a command-line literal to a canonical value for
// the given data type.
func ParseValue(s string, dtype DataType) (any, error) {
	switch dtype {
	case StringType:
		return s, nil
	case IntegerType:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %s value %q: %v", dtype, s, err)
		}
		return v, nil
	case FloatType:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %s value %q: %v", dtype, s, err)
		}
		return v, nil
	case BooleanType:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("parsing %s value %q: %v", dtype, s, err)
		}
		return v, nil
	case DateType:
		v, err := time.Parse(DateFormat, s)
		if err != nil {
			return nil, fmt.Errorf("parsing %s value %q: %v", dtype, s, err)
		}
		return v, nil
	case NumericType:
		v, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("parsing %s value %q: %v", dtype, s, err)
		}
		return v, nil
	case UUIDType:
		v, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parsing %s value %q: %v", dtype, s, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("parsing value %q: unknown data type", s)
	}
}

// EqualValues compares two canonical values for equality.  Dates and
// numerics have their own equality; other values compare directly.
func EqualValues(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case decimal.Decimal:
		bv, ok := b.(decimal.Decimal)
		return ok && av.Equal(bv)
	default:
		return a == b
	}
}

// DataTypeToSQL converts a data type to a database type.
func DataTypeToSQL(dtype DataType) string {
	switch dtype {
	case StringType:
		return "text"
	case IntegerType:
		return "bigint"
	case FloatType:
		return "double precision"
	case BooleanType:
		return "boolean"
	case DateType:
		return "date"
	case NumericType:
		return "numeric"
	case UUIDType:
		return "uuid"
	default:
		return "(unknown)"
	}
}
