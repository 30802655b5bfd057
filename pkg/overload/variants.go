package overload

import "fmt"

// VariantList is the ordered set of variants declared under one name.
// Insertion order is declaration order is dispatch priority. The list is
// never reordered or deduplicated. Once frozen it is read-only, and
// dispatching over it is safe from any number of goroutines.
type VariantList struct {
	name     string
	variants []*Variant
	frozen   bool
	engine   *Engine
}

// NewVariantList creates an empty, unfrozen list.
func NewVariantList(name string) *VariantList {
	return &VariantList{name: name}
}

// Append adds v as the lowest-priority variant.
func (l *VariantList) Append(v *Variant) error {
	if l.frozen {
		return fmt.Errorf("%s: %w", l.name, ErrFrozen)
	}
	if err := v.validate(); err != nil {
		return err
	}
	l.variants = append(l.variants, v)
	return nil
}

// Name returns the declared name shared by the variants.
func (l *VariantList) Name() string { return l.name }

// Len returns the number of variants.
func (l *VariantList) Len() int { return len(l.variants) }

// At returns the i-th variant in declaration order.
func (l *VariantList) At(i int) *Variant { return l.variants[i] }

// Frozen reports whether the list still accepts variants.
func (l *VariantList) Frozen() bool { return l.frozen }

// Variants returns a copy of the variants in declaration order.
func (l *VariantList) Variants() []*Variant {
	out := make([]*Variant, len(l.variants))
	copy(out, l.variants)
	return out
}

// Signatures renders every variant in declaration order.
func (l *VariantList) Signatures() []string {
	out := make([]string, len(l.variants))
	for i, v := range l.variants {
		out[i] = v.Signature()
	}
	return out
}

// freeze stops further appends and pins the engine used for dispatch.
// A list that is already frozen keeps its engine.
func (l *VariantList) freeze(e *Engine) {
	if l.frozen {
		return
	}
	l.frozen = true
	l.engine = e
}

// Dispatch resolves and invokes a call with an explicit receiver.
func (l *VariantList) Dispatch(recv any, args []any, kwargs map[string]any) (any, error) {
	e := l.engine
	if e == nil {
		e = defaultEngine
	}
	return e.Dispatch(l, recv, args, kwargs)
}

// Bind returns a dispatcher with recv curried in as the receiver, so that
// m.Call(a, b) behaves like an ordinary method call.
func (l *VariantList) Bind(recv any) Method {
	return Method{list: l, recv: recv, bound: true}
}

// Unbound returns a dispatcher that takes the receiver as its first
// positional argument.
func (l *VariantList) Unbound() Method {
	return Method{list: l}
}
