package overload

import (
	"fmt"
	"strings"
)

// bindArgs matches a call against the parameters of v using ordinary
// positional-or-keyword rules. It returns one value per parameter, or an
// error describing the mismatch. The returned slice is freshly allocated.
func bindArgs(v *Variant, args []any, kwargs map[string]any) ([]any, error) {
	if len(args) > len(v.Params) {
		return nil, fmt.Errorf("takes %d positional arguments but %d were given", len(v.Params), len(args))
	}

	values := make([]any, len(v.Params))
	matched := 0
	for i, p := range v.Params {
		kw, hasKw := kwargs[p.Name]
		switch {
		case i < len(args):
			if hasKw {
				return nil, fmt.Errorf("multiple values for argument %q", p.Name)
			}
			values[i] = args[i]
		case hasKw:
			values[i] = kw
			matched++
		case p.HasDefault:
			values[i] = p.Default
		default:
			return nil, fmt.Errorf("missing required argument %q", p.Name)
		}
	}

	if matched < len(kwargs) {
		var unknown []string
		for _, name := range sortedKeys(kwargs) {
			if !v.hasParam(name) {
				unknown = append(unknown, fmt.Sprintf("%q", name))
			}
		}
		return nil, fmt.Errorf("unexpected keyword argument %s", strings.Join(unknown, ", "))
	}
	return values, nil
}

func (v *Variant) hasParam(name string) bool {
	for _, p := range v.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}
