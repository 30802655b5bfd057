package overload

// Builder registers variants of one name without a Declare block:
//
//	area := overload.New("area").
//		Variant(square, overload.P("side").As(convert.Float)).
//		Variant(rect, overload.P("w").As(convert.Float), overload.P("h").As(convert.Float)).
//		MustBuild()
//
// The first error stops registration and is reported by Build.
type Builder struct {
	list   *VariantList
	engine *Engine
	err    error
}

// New starts a builder for name.
func New(name string, opts ...Option) *Builder {
	return &Builder{
		list:   NewVariantList(name),
		engine: newEngine(newOptions(opts)),
	}
}

// Variant appends a variant with the given body and parameters.
func (b *Builder) Variant(fn Func, params ...Param) *Builder {
	if b.err != nil {
		return b
	}
	b.err = b.list.Append(NewVariant(b.list.name, fn, params...))
	return b
}

// Func appends a variant adapted from a typed Go function with Reflect.
func (b *Builder) Func(fn any, params ...Param) *Builder {
	if b.err != nil {
		return b
	}
	v, err := Reflect(fn, params...)
	if err != nil {
		b.err = err
		return b
	}
	v.Name = b.list.name
	b.err = b.list.Append(v)
	return b
}

// Build freezes and returns the list.
func (b *Builder) Build() (*VariantList, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.list.freeze(b.engine)
	return b.list, nil
}

// MustBuild is like Build but panics on error. It is meant for
// package-level declarations.
func (b *Builder) MustBuild() *VariantList {
	list, err := b.Build()
	if err != nil {
		panic("overload: " + err.Error())
	}
	return list
}
