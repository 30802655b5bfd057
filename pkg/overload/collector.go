package overload

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Collector is the namespace a type body is declared into.
//
// For plain values it behaves like an ordinary map: a later Set overwrites.
// For callable values it accumulates: every Set under the same name appends a
// variant to that name's VariantList instead of replacing it.
//
// Callable values are *Variant, Func, and any other Go func (adapted with
// Reflect). A *VariantList is stored as a plain value and becomes a method
// of the materialized type as is.
//
// Mixing callable and non-callable values under one name is unsupported. By
// default the later value wins; with WithStrict, Set returns
// ErrMixedDeclaration.
type Collector struct {
	values map[string]any
	strict bool
	frozen bool
	mu     sync.RWMutex
}

// NewCollector creates an empty collector.
func NewCollector(opts ...Option) *Collector {
	o := newOptions(opts)
	return &Collector{
		values: make(map[string]any),
		strict: o.strict,
	}
}

// Set assigns value to name using accumulate-on-callable semantics.
func (c *Collector) Set(name string, value any) error {
	v, callable, err := asVariant(name, value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return fmt.Errorf("%s: %w", name, ErrFrozen)
	}

	prev, bound := c.values[name]
	list, isList := prev.(*VariantList)

	if !callable {
		if bound && isList && !list.frozen && c.strict {
			return fmt.Errorf("%s: %w", name, ErrMixedDeclaration)
		}
		c.values[name] = value
		return nil
	}

	if !isList || list.frozen {
		if bound && c.strict {
			return fmt.Errorf("%s: %w", name, ErrMixedDeclaration)
		}
		list = NewVariantList(name)
		c.values[name] = list
	}
	return list.Append(v)
}

// Def declares a variant of name with the given body and parameters.
func (c *Collector) Def(name string, fn Func, params ...Param) error {
	return c.Set(name, NewVariant(name, fn, params...))
}

// Get returns the value bound to name.
func (c *Collector) Get(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.values[name]
	return value, ok
}

// Has reports whether name is bound.
func (c *Collector) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Delete unbinds name and reports whether it was bound. A materialized
// collector is left untouched.
func (c *Collector) Delete(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return false
	}
	if _, ok := c.values[name]; ok {
		delete(c.values, name)
		return true
	}
	return false
}

// Keys returns the bound names in sorted order.
func (c *Collector) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of bound names.
func (c *Collector) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

// materialize turns the collected namespace into a Type. Every list is
// frozen and pinned to e. Later Set calls on the collector return ErrFrozen.
func (c *Collector) materialize(name string, e *Engine) *Type {
	c.mu.Lock()
	defer c.mu.Unlock()

	attrs := make(map[string]any, len(c.values))
	for k, v := range c.values {
		if list, ok := v.(*VariantList); ok {
			list.freeze(e)
		}
		attrs[k] = v
	}
	c.values = nil
	c.frozen = true
	return &Type{name: name, attrs: attrs}
}

// asVariant reports whether value is callable and, if so, returns it as a
// variant named name.
func asVariant(name string, value any) (*Variant, bool, error) {
	switch fn := value.(type) {
	case nil:
		return nil, false, nil
	case *Variant:
		if fn == nil {
			return nil, false, nil
		}
		return fn.withName(name), true, nil
	case Func:
		return NewVariant(name, fn), true, nil
	case func(any, []any) (any, error):
		return NewVariant(name, fn), true, nil
	}

	if reflect.TypeOf(value).Kind() != reflect.Func {
		return nil, false, nil
	}
	v, err := Reflect(value)
	if err != nil {
		return nil, true, fmt.Errorf("%s: %w", name, err)
	}
	v.Name = name
	return v, true, nil
}
