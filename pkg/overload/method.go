package overload

import "fmt"

// Method is a dispatcher over one VariantList, optionally curried with a
// receiver. The zero Method dispatches nothing and reports ErrNoSuchMethod.
type Method struct {
	list  *VariantList
	recv  any
	bound bool
}

// Call dispatches with positional arguments only.
func (m Method) Call(args ...any) (any, error) {
	return m.CallKw(args, nil)
}

// CallKw dispatches with positional and keyword arguments.
func (m Method) CallKw(args []any, kwargs map[string]any) (any, error) {
	if m.list == nil {
		return nil, ErrNoSuchMethod
	}
	recv := m.recv
	if !m.bound {
		if len(args) == 0 {
			return nil, fmt.Errorf("%s: %w", m.list.name, ErrMissingReceiver)
		}
		recv, args = args[0], args[1:]
	}
	return m.list.Dispatch(recv, args, kwargs)
}

// Name returns the overloaded name.
func (m Method) Name() string {
	if m.list == nil {
		return ""
	}
	return m.list.name
}

// Receiver returns the curried receiver, if any.
func (m Method) Receiver() (any, bool) {
	return m.recv, m.bound
}

// Variants returns the underlying list.
func (m Method) Variants() *VariantList {
	return m.list
}
