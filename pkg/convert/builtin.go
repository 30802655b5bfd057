package convert

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

type integer interface {
	int | int8 | int16 | int32 | int64 | uint | uint8 | uint16 | uint32 | uint64
}

// Integer converters. Go integer kinds, integral floats and decimal strings
// are accepted; anything that does not fit the target width is rejected.
var (
	Int    = integerOf[int]("int")
	Int8   = integerOf[int8]("int8")
	Int16  = integerOf[int16]("int16")
	Int32  = integerOf[int32]("int32")
	Int64  = integerOf[int64]("int64")
	Uint   = integerOf[uint]("uint")
	Uint8  = integerOf[uint8]("uint8")
	Uint16 = integerOf[uint16]("uint16")
	Uint32 = integerOf[uint32]("uint32")
	Uint64 = integerOf[uint64]("uint64")
)

// Float accepts numbers and numeric strings and yields a float64.
var Float = New("float", func(value any) Conversion {
	switch v := value.(type) {
	case float64:
		return Accept(v)
	case float32:
		return Accept(float64(v))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return Reject("invalid literal for float: %q", v)
		}
		return Accept(f)
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Accept(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Accept(float64(rv.Uint()))
	}
	return Reject("cannot convert %T to float", value)
})

// Bool accepts booleans and the strings understood by strconv.ParseBool.
var Bool = New("bool", func(value any) Conversion {
	switch v := value.(type) {
	case bool:
		return Accept(v)
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return Reject("invalid literal for bool: %q", v)
		}
		return Accept(b)
	}
	return Reject("cannot convert %T to bool", value)
})

// String accepts only string values.
var String = New("string", func(value any) Conversion {
	s, ok := value.(string)
	if !ok {
		return Reject("expected string, got %T", value)
	}
	return Accept(s)
})

// Stringify formats any value with fmt and never rejects.
var Stringify = New("str", func(value any) Conversion {
	if s, ok := value.(string); ok {
		return Accept(s)
	}
	return Accept(fmt.Sprint(value))
})

func integerOf[T integer](name string) Converter {
	return New(name, func(value any) Conversion {
		n, err := toInteger[T](value)
		if err != nil {
			return Reject("invalid %s: %v", name, err)
		}
		return Accept(n)
	})
}

func toInteger[T integer](value any) (T, error) {
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		if strings.HasPrefix(s, "-") {
			i, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return 0, err
			}
			return safecast.Conv[T](i)
		}
		u, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 64)
		if err != nil {
			return 0, err
		}
		return safecast.Conv[T](u)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return safecast.Conv[T](rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return safecast.Conv[T](rv.Uint())
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, fmt.Errorf("%v is not integral", f)
		}
		return safecast.Convert[T](f)
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("unsupported type %T", value)
}

// equal compares two values without panicking on uncomparable dynamic types.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if !ta.Comparable() {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}
