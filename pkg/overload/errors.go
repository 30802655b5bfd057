package overload

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType classifies dispatch outcomes.
type ErrorType string

const (
	// Local, recoverable: the engine moves on to the next variant.
	ErrorSignatureMismatch  ErrorType = "SIGNATURE_MISMATCH"
	ErrorConversionRejected ErrorType = "CONVERSION_REJECTED"

	// Terminal: surfaced to the caller.
	ErrorNoMatch        ErrorType = "NO_MATCH"
	ErrorConverterFault ErrorType = "CONVERTER_FAULT"
)

var (
	ErrMissingReceiver  = errors.New("missing receiver argument")
	ErrNoSuchMethod     = errors.New("no such method")
	ErrNotCallable      = errors.New("attribute is not callable")
	ErrMixedDeclaration = errors.New("name mixes callable and non-callable declarations")
	ErrFrozen           = errors.New("variant list is frozen")
	ErrInvalidVariant   = errors.New("invalid variant")
	ErrVariadic         = errors.New("variadic functions cannot be overloaded")
)

// Attempt records why one variant did not accept a call.
type Attempt struct {
	Signature string
	Params    []Param
	Stage     ErrorType
	Param     string // parameter whose converter rejected, if any
	Reason    string
}

// Converters lists the converter name of each parameter, "" where none.
func (a Attempt) Converters() []string {
	names := make([]string, len(a.Params))
	for i, p := range a.Params {
		if p.Convert != nil {
			names[i] = p.Convert.Name()
		}
	}
	return names
}

// DispatchError is returned when no variant accepts a call.
// It carries the call as made and every attempted signature.
type DispatchError struct {
	Name     string
	Receiver any
	Args     []any
	Kwargs   map[string]any
	Attempts []Attempt
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] no variant of %s accepts receiver %v, args %v, kwargs %s",
		ErrorNoMatch, e.Name, e.Receiver, e.Args, formatKwargs(e.Kwargs))
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "\n  %s: %s", a.Signature, a.Stage)
		if a.Param != "" {
			fmt.Fprintf(&b, " on %s", a.Param)
		}
		if a.Reason != "" {
			fmt.Fprintf(&b, " (%s)", a.Reason)
		}
	}
	return b.String()
}

// Signatures returns the attempted signatures in declaration order.
func (e *DispatchError) Signatures() []string {
	out := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		out[i] = a.Signature
	}
	return out
}

// ConverterFault is returned when a converter reports a fault. It aborts
// dispatch; later variants are not tried.
type ConverterFault struct {
	Name      string
	Signature string
	Param     string
	Converter string
	Err       error
}

// Error implements the error interface.
func (e *ConverterFault) Error() string {
	return fmt.Sprintf("[%s] %s: converter %s for parameter %s of %s: %v",
		ErrorConverterFault, e.Name, e.Converter, e.Param, e.Signature, e.Err)
}

// Unwrap returns the converter's error.
func (e *ConverterFault) Unwrap() error {
	return e.Err
}

func formatKwargs(kw map[string]any) string {
	if len(kw) == 0 {
		return "{}"
	}
	keys := sortedKeys(kw)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, kw[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
