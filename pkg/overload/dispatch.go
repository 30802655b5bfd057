package overload

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/zurustar/overload/pkg/convert"
	"github.com/zurustar/overload/pkg/logger"
)

// Option configures an Engine, a Builder or a Declare call.
type Option func(*options)

type options struct {
	log    *slog.Logger
	trace  bool
	strict bool
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used for dispatch tracing.
// Without it the engine uses logger.GetLogger() at call time.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithTrace logs every dispatch attempt at debug level.
func WithTrace(trace bool) Option {
	return func(o *options) {
		o.trace = trace
	}
}

// WithStrict makes a Collector refuse to mix callable and non-callable
// values under one name instead of silently replacing.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// Engine resolves calls against variant lists.
// An Engine holds no per-call state and may be shared between goroutines.
type Engine struct {
	log   *slog.Logger
	trace bool
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	return newEngine(newOptions(opts))
}

func newEngine(o options) *Engine {
	return &Engine{log: o.log, trace: o.trace}
}

var defaultEngine = &Engine{}

func (e *Engine) logger() *slog.Logger {
	if e.log != nil {
		return e.log
	}
	return logger.GetLogger()
}

// Dispatch invokes the first variant of list, in declaration order, that
// accepts recv, args and kwargs.
//
// A variant is skipped when its parameters cannot bind the arguments or when
// one of its converters rejects a bound value. A converter fault aborts
// dispatch with a *ConverterFault. The chosen variant's result and error are
// returned unchanged. When every variant is skipped a *DispatchError lists
// all of them.
func (e *Engine) Dispatch(list *VariantList, recv any, args []any, kwargs map[string]any) (any, error) {
	var callID string
	if e.trace {
		callID = uuid.NewString()
	}

	attempts := make([]Attempt, 0, len(list.variants))
	for _, v := range list.variants {
		values, err := bindArgs(v, args, kwargs)
		if err != nil {
			attempts = append(attempts, e.skip(callID, v, ErrorSignatureMismatch, "", err.Error()))
			continue
		}

		param, reason, err := applyConverters(v, values)
		if err != nil {
			if e.trace {
				e.logger().Debug("overload converter fault",
					"call", callID, "name", list.name, "variant", v.Signature(), "error", err)
			}
			return nil, err
		}
		if param != "" {
			attempts = append(attempts, e.skip(callID, v, ErrorConversionRejected, param, reason))
			continue
		}

		if e.trace {
			e.logger().Debug("overload matched", "call", callID, "name", list.name, "variant", v.Signature())
		}
		return v.Fn(recv, values)
	}

	derr := &DispatchError{
		Name:     list.name,
		Receiver: recv,
		Args:     append([]any(nil), args...),
		Kwargs:   copyKwargs(kwargs),
		Attempts: attempts,
	}
	if e.trace {
		e.logger().Debug("overload exhausted", "call", callID, "name", list.name, "attempts", len(attempts))
	}
	return nil, derr
}

func (e *Engine) skip(callID string, v *Variant, stage ErrorType, param, reason string) Attempt {
	a := Attempt{
		Signature: v.Signature(),
		Params:    v.Params,
		Stage:     stage,
		Param:     param,
		Reason:    reason,
	}
	if e.trace {
		e.logger().Debug("overload attempt skipped",
			"call", callID, "variant", a.Signature, "stage", string(stage), "param", param, "reason", reason)
	}
	return a
}

// applyConverters runs each parameter's converter over values in place.
// It returns the name of the rejecting parameter and the reason, or a
// *ConverterFault.
func applyConverters(v *Variant, values []any) (string, string, error) {
	for i, p := range v.Params {
		if p.Convert == nil {
			continue
		}
		res := p.Convert.Convert(values[i])
		switch res.Outcome {
		case convert.Accepted:
			values[i] = res.Value
		case convert.Rejected:
			return p.Name, res.Reason, nil
		default:
			err := res.Err
			if err == nil {
				err = fmt.Errorf("invalid conversion outcome %s", res.Outcome)
			}
			return "", "", &ConverterFault{
				Name:      v.Name,
				Signature: v.Signature(),
				Param:     p.Name,
				Converter: p.Convert.Name(),
				Err:       err,
			}
		}
	}
	return "", "", nil
}

func copyKwargs(kwargs map[string]any) map[string]any {
	if kwargs == nil {
		return nil
	}
	out := make(map[string]any, len(kwargs))
	for k, v := range kwargs {
		out[k] = v
	}
	return out
}
