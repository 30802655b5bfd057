// Package overload implements ad-hoc multiple dispatch.
//
// Several implementations (variants) can be declared under one name. At call
// time the engine walks them in declaration order. For each one it binds the
// arguments against the declared parameters, then runs any per-parameter
// converters, and invokes the first variant for which both steps succeed.
//
// Declaration order is the only tie-break: when two variants both accept a
// call, the one declared first always wins, regardless of which is more
// specific. Callers control priority by controlling declaration order.
package overload

import (
	"fmt"
	"strings"

	"github.com/zurustar/overload/pkg/convert"
)

// Func is the body of a variant.
// args holds one value per declared parameter, in parameter order, after
// defaults have been filled in and converters have run.
type Func func(recv any, args []any) (any, error)

// Param describes one declared parameter of a variant.
type Param struct {
	Name       string
	Default    any
	HasDefault bool
	Convert    convert.Converter
}

// P returns a required parameter with no converter.
func P(name string) Param {
	return Param{Name: name}
}

// WithDefault returns a copy of p that is filled with value when the call
// does not supply it.
func (p Param) WithDefault(value any) Param {
	p.Default = value
	p.HasDefault = true
	return p
}

// As returns a copy of p that runs c on its bound value.
func (p Param) As(c convert.Converter) Param {
	p.Convert = c
	return p
}

// String formats the parameter as name[: converter][ = default].
func (p Param) String() string {
	var b strings.Builder
	b.WriteString(p.Name)
	if p.Convert != nil {
		b.WriteString(": ")
		b.WriteString(p.Convert.Name())
	}
	if p.HasDefault {
		fmt.Fprintf(&b, " = %#v", p.Default)
	}
	return b.String()
}

// Variant is one declared implementation of an overloaded name.
// Variants are not modified after declaration.
type Variant struct {
	Name   string
	Params []Param
	Fn     Func
}

// NewVariant creates a variant. The params slice is copied.
func NewVariant(name string, fn Func, params ...Param) *Variant {
	ps := make([]Param, len(params))
	copy(ps, params)
	return &Variant{Name: name, Params: ps, Fn: fn}
}

// Signature renders the variant for diagnostics, e.g. "area(w: int, h: int = 1)".
func (v *Variant) Signature() string {
	parts := make([]string, len(v.Params))
	for i, p := range v.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s(%s)", v.Name, strings.Join(parts, ", "))
}

// validate rejects declarations that could never be bound sensibly.
func (v *Variant) validate() error {
	if v.Fn == nil {
		return fmt.Errorf("%w: %s has no body", ErrInvalidVariant, v.Name)
	}
	seen := make(map[string]bool, len(v.Params))
	sawDefault := false
	for _, p := range v.Params {
		if p.Name == "" {
			return fmt.Errorf("%w: %s has an unnamed parameter", ErrInvalidVariant, v.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: %s declares parameter %q twice", ErrInvalidVariant, v.Name, p.Name)
		}
		seen[p.Name] = true
		if p.HasDefault {
			sawDefault = true
		} else if sawDefault {
			return fmt.Errorf("%w: %s: required parameter %q follows a parameter with a default",
				ErrInvalidVariant, v.Name, p.Name)
		}
	}
	return nil
}

// withName returns v, or a copy named name when v carries another name.
func (v *Variant) withName(name string) *Variant {
	if v.Name == name {
		return v
	}
	return NewVariant(name, v.Fn, v.Params...)
}
