package overload

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/zurustar/overload/pkg/convert"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Reflect adapts a typed Go function into a variant.
//
// fn must look like func(recv R, a A, b B, ...) with results (), (T),
// (error) or (T, error). The first argument receives the dispatch receiver.
// params names the remaining arguments; when params is empty they are named
// arg0, arg1, ... A param without a converter gets one derived from the Go
// argument type, so that values of the wrong kind are rejected rather than
// panicking inside reflect.Call.
func Reflect(fn any, params ...Param) (*Variant, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("%w: %T is not a function", ErrInvalidVariant, fn)
	}
	ft := rv.Type()
	if ft.IsVariadic() {
		return nil, ErrVariadic
	}
	if ft.NumIn() == 0 {
		return nil, fmt.Errorf("%w: %s has no receiver argument", ErrInvalidVariant, ft)
	}
	if err := checkResults(ft); err != nil {
		return nil, err
	}

	n := ft.NumIn() - 1
	if len(params) == 0 {
		params = make([]Param, n)
		for i := range params {
			params[i] = P(fmt.Sprintf("arg%d", i))
		}
	} else if len(params) != n {
		return nil, fmt.Errorf("%w: %s takes %d arguments, %d params declared", ErrInvalidVariant, ft, n, len(params))
	}

	ps := make([]Param, n)
	for i, p := range params {
		if p.Convert == nil {
			p.Convert = typeConverter(ft.In(i + 1))
		}
		ps[i] = p
	}

	body := func(recv any, args []any) (any, error) {
		in := make([]reflect.Value, ft.NumIn())
		r, err := valueOf(recv, ft.In(0))
		if err != nil {
			return nil, fmt.Errorf("receiver: %w", err)
		}
		in[0] = r
		for i, a := range args {
			v, err := valueOf(a, ft.In(i+1))
			if err != nil {
				return nil, fmt.Errorf("argument %s: %w", ps[i].Name, err)
			}
			in[i+1] = v
		}
		return unpackResults(rv.Call(in))
	}
	return &Variant{Params: ps, Fn: body}, nil
}

func checkResults(ft reflect.Type) error {
	switch ft.NumOut() {
	case 0, 1:
		return nil
	case 2:
		if ft.Out(1) == errorType {
			return nil
		}
	}
	return fmt.Errorf("%w: %s must return (), (T), (error) or (T, error)", ErrInvalidVariant, ft)
}

func unpackResults(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type() == errorType {
			err, _ := out[0].Interface().(error)
			return nil, err
		}
		return out[0].Interface(), nil
	default:
		err, _ := out[1].Interface().(error)
		return out[0].Interface(), err
	}
}

// valueOf converts a dispatched value into an argument of type t.
func valueOf(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		if nillable(t) {
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use nil as %s", t)
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if v.Type().ConvertibleTo(t) && v.Kind() == t.Kind() {
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", value, t)
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// typeConverter derives a converter that accepts values usable as t.
// Numeric kinds go through the convert package, so "5" binds to an int
// argument; other kinds require an assignable value.
func typeConverter(t reflect.Type) convert.Converter {
	return convert.New(t.String(), func(value any) convert.Conversion {
		if value == nil {
			if nillable(t) {
				return convert.Accept(nil)
			}
			return convert.Reject("cannot use nil as %s", t)
		}
		if reflect.TypeOf(value).AssignableTo(t) {
			return convert.Accept(value)
		}

		var base convert.Converter
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			base = convert.Int64
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			base = convert.Uint64
		case reflect.Float32, reflect.Float64:
			base = convert.Float
		case reflect.Bool:
			base = convert.Bool
		case reflect.String:
			base = convert.String
		default:
			return convert.Reject("cannot use %T as %s", value, t)
		}

		res := base.Convert(value)
		if res.Outcome != convert.Accepted {
			return res
		}
		out := reflect.New(t).Elem()
		switch x := res.Value.(type) {
		case int64:
			if out.OverflowInt(x) {
				return convert.Reject("%d overflows %s", x, t)
			}
			out.SetInt(x)
		case uint64:
			if out.OverflowUint(x) {
				return convert.Reject("%d overflows %s", x, t)
			}
			out.SetUint(x)
		case float64:
			if out.OverflowFloat(x) {
				return convert.Reject("%g overflows %s", x, t)
			}
			out.SetFloat(x)
		case bool:
			out.SetBool(x)
		case string:
			out.SetString(x)
		default:
			return convert.Fault(errors.New("unexpected converted type " + reflect.TypeOf(x).String()))
		}
		return convert.Accept(out.Interface())
	})
}
