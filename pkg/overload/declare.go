package overload

import (
	"fmt"
	"sort"
)

// Declare runs body against a fresh Collector and materializes the result as
// a Type. Repeated declarations of one name inside body accumulate into a
// VariantList rather than overwriting each other.
//
// Errors from body (including errors returned by Collector.Set) are relayed.
// The collector must not be retained past body.
func Declare(name string, body func(ns *Collector) error, opts ...Option) (*Type, error) {
	o := newOptions(opts)
	ns := NewCollector(opts...)
	if body != nil {
		if err := body(ns); err != nil {
			return nil, fmt.Errorf("declare %s: %w", name, err)
		}
	}
	return ns.materialize(name, newEngine(o)), nil
}

// Type is a materialized declaration: plain attributes plus frozen,
// dispatch-ready variant lists.
type Type struct {
	name  string
	attrs map[string]any
}

// Name returns the declared type name.
func (t *Type) Name() string { return t.name }

// Attr reads name at type level. Variant lists come back as an unbound
// Method; other values are returned as declared.
func (t *Type) Attr(name string) (any, bool) {
	v, ok := t.attrs[name]
	if !ok {
		return nil, false
	}
	if list, isList := v.(*VariantList); isList {
		return list.Unbound(), true
	}
	return v, true
}

// Methods returns the names bound to variant lists, sorted.
func (t *Type) Methods() []string {
	var names []string
	for k, v := range t.attrs {
		if _, ok := v.(*VariantList); ok {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// Method returns the unbound dispatcher for name.
func (t *Type) Method(name string) (Method, error) {
	list, err := t.list(name)
	if err != nil {
		return Method{}, err
	}
	return list.Unbound(), nil
}

// Variants returns the frozen list declared under name.
func (t *Type) Variants(name string) (*VariantList, error) {
	return t.list(name)
}

func (t *Type) list(name string) (*VariantList, error) {
	v, ok := t.attrs[name]
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", t.name, name, ErrNoSuchMethod)
	}
	list, ok := v.(*VariantList)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", t.name, name, ErrNotCallable)
	}
	return list, nil
}

// Bind returns an instance view of t with recv as the receiver.
func (t *Type) Bind(recv any) *Instance {
	return &Instance{typ: t, recv: recv}
}

// Instance pairs a receiver with a Type, so that method lookups return
// dispatchers already curried with the receiver.
type Instance struct {
	typ  *Type
	recv any
}

// Type returns the instance's type.
func (i *Instance) Type() *Type { return i.typ }

// Receiver returns the curried receiver.
func (i *Instance) Receiver() any { return i.recv }

// Attr reads name through the instance. Variant lists come back as a bound
// Method; other values are returned as declared.
func (i *Instance) Attr(name string) (any, bool) {
	v, ok := i.typ.attrs[name]
	if !ok {
		return nil, false
	}
	if list, isList := v.(*VariantList); isList {
		return list.Bind(i.recv), true
	}
	return v, true
}

// Method returns the dispatcher for name curried with the receiver.
func (i *Instance) Method(name string) (Method, error) {
	list, err := i.typ.list(name)
	if err != nil {
		return Method{}, err
	}
	return list.Bind(i.recv), nil
}

// Call dispatches name with positional arguments.
func (i *Instance) Call(name string, args ...any) (any, error) {
	return i.CallKw(name, args, nil)
}

// CallKw dispatches name with positional and keyword arguments.
func (i *Instance) CallKw(name string, args []any, kwargs map[string]any) (any, error) {
	m, err := i.Method(name)
	if err != nil {
		return nil, err
	}
	return m.CallKw(args, kwargs)
}
