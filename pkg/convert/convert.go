// Package convert provides per-parameter converters for overloaded functions.
//
// A converter both validates and coerces one argument. It reports one of
// three outcomes:
//   - Accept: the value (possibly coerced) is usable for the parameter
//   - Reject: the value is not acceptable; dispatch moves on to the next variant
//   - Fault:  the converter itself is broken; dispatch aborts immediately
//
// Reject is ordinary control flow. Fault is reserved for programming errors
// and is never mistaken for a type mismatch.
package convert

import (
	"errors"
	"fmt"
	"strconv"
)

// Outcome is the tag of a Conversion.
type Outcome uint8

const (
	Accepted Outcome = iota
	Rejected
	Faulted
)

// String returns a readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case Faulted:
		return "faulted"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

// Conversion is the tagged result of running a Converter.
type Conversion struct {
	Value   any
	Outcome Outcome
	Reason  string
	Err     error
}

// Accept returns a successful conversion carrying value.
func Accept(value any) Conversion {
	return Conversion{Value: value, Outcome: Accepted}
}

// Reject returns a recoverable rejection with a formatted reason.
func Reject(format string, args ...any) Conversion {
	return Conversion{Outcome: Rejected, Reason: fmt.Sprintf(format, args...)}
}

// Fault returns a non-recoverable failure wrapping err.
func Fault(err error) Conversion {
	if err == nil {
		err = errors.New("converter fault")
	}
	return Conversion{Outcome: Faulted, Reason: err.Error(), Err: err}
}

// Converter validates and coerces a single argument value.
type Converter interface {
	Name() string
	Convert(value any) Conversion
}

type converter struct {
	name string
	fn   func(value any) Conversion
}

func (c *converter) Name() string { return c.name }

func (c *converter) Convert(value any) Conversion {
	return c.fn(value)
}

func (c *converter) String() string { return c.name }

// New builds a named Converter from fn.
func New(name string, fn func(value any) Conversion) Converter {
	return &converter{name: name, fn: fn}
}

// RejectError marks an error returned by a plain Go function as a rejection.
type RejectError struct {
	Reason string
}

func (e *RejectError) Error() string {
	return e.Reason
}

// Rejectf returns a *RejectError with a formatted reason.
func Rejectf(format string, args ...any) error {
	return &RejectError{Reason: fmt.Sprintf(format, args...)}
}

// Func adapts a plain Go function into a Converter.
//
// A returned *RejectError, strconv.ErrSyntax or strconv.ErrRange becomes a
// Reject. Any other error becomes a Fault.
func Func(name string, fn func(value any) (any, error)) Converter {
	return New(name, func(value any) Conversion {
		out, err := fn(value)
		if err == nil {
			return Accept(out)
		}
		if IsRejection(err) {
			return Reject("%s", err.Error())
		}
		return Fault(fmt.Errorf("%s: %w", name, err))
	})
}

// IsRejection reports whether err is one of the value-level errors that
// Func treats as a rejection.
func IsRejection(err error) bool {
	var rej *RejectError
	if errors.As(err, &rej) {
		return true
	}
	return errors.Is(err, strconv.ErrSyntax) || errors.Is(err, strconv.ErrRange)
}

// Chain runs converters in order, feeding each accepted value to the next.
// The first non-accepting outcome is returned as is.
func Chain(convs ...Converter) Converter {
	name := ""
	for i, c := range convs {
		if i > 0 {
			name += "|"
		}
		name += c.Name()
	}
	return New(name, func(value any) Conversion {
		for _, c := range convs {
			res := c.Convert(value)
			if res.Outcome != Accepted {
				return res
			}
			value = res.Value
		}
		return Accept(value)
	})
}

// OneOf accepts a value only if it equals one of the allowed values.
func OneOf(allowed ...any) Converter {
	return New(fmt.Sprintf("oneof%v", allowed), func(value any) Conversion {
		for _, a := range allowed {
			if equal(a, value) {
				return Accept(value)
			}
		}
		return Reject("%v is not one of %v", value, allowed)
	})
}

// Optional accepts nil as is and hands any other value to c.
func Optional(c Converter) Converter {
	return New(c.Name()+"?", func(value any) Conversion {
		if value == nil {
			return Accept(nil)
		}
		return c.Convert(value)
	})
}
