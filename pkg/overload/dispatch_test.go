package overload

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/zurustar/overload/pkg/convert"
	"github.com/zurustar/overload/pkg/logger"
)

// tagged returns a body that reports which variant ran and what it received.
func tagged(tag string) Func {
	return func(recv any, args []any) (any, error) {
		return fmt.Sprintf("%s%v", tag, args), nil
	}
}

func firstArg(recv any, args []any) (any, error) {
	return args[0], nil
}

func TestDispatch_ConverterSelectsVariant(t *testing.T) {
	identity := New("identity").
		Variant(firstArg, P("x").As(convert.Int)).
		Variant(firstArg, P("x").As(convert.String)).
		MustBuild()
	m := identity.Bind("obj")

	t.Run("numeric string is converted by the first variant", func(t *testing.T) {
		got, err := m.Call("5")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 5 {
			t.Errorf("expected int 5, got %#v", got)
		}
	})

	t.Run("non-numeric string falls through to the second variant", func(t *testing.T) {
		got, err := m.Call("abc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "abc" {
			t.Errorf("expected \"abc\", got %#v", got)
		}
	})
}

func TestDispatch_ArityFallsThrough(t *testing.T) {
	f := New("f").
		Variant(tagged("ab"), P("a"), P("b")).
		Variant(tagged("a"), P("a")).
		MustBuild()

	got, err := f.Bind(nil).Call(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a[1]" {
		t.Errorf("expected second variant, got %v", got)
	}

	got, err = f.Bind(nil).Call(1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ab[1 2]" {
		t.Errorf("expected first variant, got %v", got)
	}
}

func TestDispatch_KeywordsReachLaterVariant(t *testing.T) {
	var tried []string
	watch := func(tag string) convert.Converter {
		return convert.New("watch", func(v any) convert.Conversion {
			tried = append(tried, tag)
			return convert.Accept(v)
		})
	}
	g := New("g").
		Variant(tagged("x"), P("x").As(watch("x"))).
		Variant(tagged("name"), P("name").As(watch("name"))).
		MustBuild()

	got, err := g.Bind(nil).CallKw(nil, map[string]any{"name": "n"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "name[n]" {
		t.Errorf("expected keyword variant, got %v", got)
	}
	// the first variant fails to bind, so its converter never runs
	if len(tried) != 1 || tried[0] != "name" {
		t.Errorf("unexpected converter calls: %v", tried)
	}
}

func TestDispatch_ExhaustionListsEverySignature(t *testing.T) {
	h := New("h").
		Variant(tagged("1"), P("a")).
		Variant(tagged("2"), P("a"), P("b").As(convert.Int)).
		MustBuild()

	_, err := h.Bind("recv").Call(1, 2, 3)
	var derr *DispatchError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DispatchError, got %v", err)
	}
	if derr.Receiver != "recv" || len(derr.Args) != 3 {
		t.Errorf("call not recorded: %+v", derr)
	}
	want := []string{"h(a)", "h(a, b: int)"}
	got := derr.Signatures()
	if len(got) != len(want) {
		t.Fatalf("expected %d attempts, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("attempt %d: expected %q, got %q", i, want[i], got[i])
		}
		if !strings.Contains(err.Error(), want[i]) {
			t.Errorf("message does not mention %q: %s", want[i], err)
		}
		if derr.Attempts[i].Stage != ErrorSignatureMismatch {
			t.Errorf("attempt %d: expected mismatch, got %s", i, derr.Attempts[i].Stage)
		}
	}
	if conv := derr.Attempts[1].Converters(); conv[0] != "" || conv[1] != "int" {
		t.Errorf("unexpected converters: %v", conv)
	}
}

func TestDispatch_RejectionRecordedInAttempt(t *testing.T) {
	list := New("only").Variant(firstArg, P("n").As(convert.Int8)).MustBuild()

	_, err := list.Bind(nil).Call(300)
	var derr *DispatchError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DispatchError, got %v", err)
	}
	a := derr.Attempts[0]
	if a.Stage != ErrorConversionRejected || a.Param != "n" || a.Reason == "" {
		t.Errorf("unexpected attempt: %+v", a)
	}
}

func TestDispatch_FaultAbortsDispatch(t *testing.T) {
	boom := errors.New("converter bug")
	laterCalled := false
	list := New("k").
		Variant(firstArg, P("x").As(convert.New("broken", func(any) convert.Conversion {
			return convert.Fault(boom)
		}))).
		Variant(func(recv any, args []any) (any, error) {
			laterCalled = true
			return nil, nil
		}, P("x")).
		MustBuild()

	_, err := list.Bind(nil).Call(1)
	var fault *ConverterFault
	if !errors.As(err, &fault) {
		t.Fatalf("expected *ConverterFault, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Error("fault should wrap the converter error")
	}
	if fault.Param != "x" || fault.Converter != "broken" {
		t.Errorf("unexpected fault: %+v", fault)
	}
	if laterCalled {
		t.Error("later variant must not run after a fault")
	}
}

func TestDispatch_PanicInConverterPropagates(t *testing.T) {
	laterCalled := false
	list := New("p").
		Variant(firstArg, P("x").As(convert.New("panics", func(any) convert.Conversion {
			panic("bug")
		}))).
		Variant(func(recv any, args []any) (any, error) {
			laterCalled = true
			return nil, nil
		}, P("x")).
		MustBuild()

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic to propagate")
		}
		if laterCalled {
			t.Error("later variant must not run after a panic")
		}
	}()
	_, _ = list.Bind(nil).Call(1)
}

func TestDispatch_BodyErrorDoesNotFallThrough(t *testing.T) {
	bodyErr := errors.New("body failed")
	list := New("b").
		Variant(func(any, []any) (any, error) { return nil, bodyErr }, P("x")).
		Variant(tagged("second"), P("x")).
		MustBuild()

	_, err := list.Bind(nil).Call(1)
	if !errors.Is(err, bodyErr) {
		t.Errorf("expected body error, got %v", err)
	}
}

func TestDispatch_EdgeCases(t *testing.T) {
	t.Run("zero parameters match zero arguments", func(t *testing.T) {
		list := New("z").Variant(tagged("z")).MustBuild()
		got, err := list.Bind(nil).Call()
		if err != nil || got != "z[]" {
			t.Fatalf("got %v, %v", got, err)
		}
		if _, err := list.Bind(nil).Call(1); err == nil {
			t.Error("expected zero-parameter variant to reject an argument")
		}
	})

	t.Run("defaults are converted", func(t *testing.T) {
		list := New("d").Variant(firstArg, P("n").WithDefault("7").As(convert.Int)).MustBuild()
		got, err := list.Bind(nil).Call()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 7 {
			t.Errorf("expected converted default 7, got %#v", got)
		}
	})

	t.Run("keyword duplicating a positional is a mismatch", func(t *testing.T) {
		list := New("dup").Variant(firstArg, P("x")).MustBuild()
		_, err := list.Bind(nil).CallKw([]any{1}, map[string]any{"x": 2})
		var derr *DispatchError
		if !errors.As(err, &derr) {
			t.Fatalf("expected *DispatchError, got %v", err)
		}
	})

	t.Run("receiver is passed to the body", func(t *testing.T) {
		list := New("r").Variant(func(recv any, _ []any) (any, error) { return recv, nil }).MustBuild()
		got, _ := list.Bind("me").Call()
		if got != "me" {
			t.Errorf("expected receiver, got %v", got)
		}
	})

	t.Run("converted values do not leak into caller args", func(t *testing.T) {
		list := New("c").Variant(firstArg, P("x").As(convert.Int)).MustBuild()
		args := []any{"3"}
		if _, err := list.Bind(nil).Call(args...); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if args[0] != "3" {
			t.Errorf("caller args mutated: %v", args)
		}
	})
}

func TestMethod_Unbound(t *testing.T) {
	list := New("u").Variant(func(recv any, args []any) (any, error) {
		return fmt.Sprintf("%v:%v", recv, args[0]), nil
	}, P("x")).MustBuild()

	got, err := list.Unbound().Call("self", 1)
	if err != nil || got != "self:1" {
		t.Fatalf("got %v, %v", got, err)
	}

	_, err = list.Unbound().Call()
	if !errors.Is(err, ErrMissingReceiver) {
		t.Errorf("expected ErrMissingReceiver, got %v", err)
	}

	var zero Method
	if _, err := zero.Call(); !errors.Is(err, ErrNoSuchMethod) {
		t.Errorf("expected ErrNoSuchMethod from zero Method, got %v", err)
	}
}

func TestEngine_TraceLogging(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.New("debug", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list := New("traced", WithLogger(l), WithTrace(true)).
		Variant(firstArg, P("x").As(convert.Int)).
		Variant(firstArg, P("x")).
		MustBuild()

	if _, err := list.Bind(nil).Call("abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"overload attempt skipped", "CONVERSION_REJECTED", "overload matched", "call="} {
		if !strings.Contains(out, want) {
			t.Errorf("trace output missing %q:\n%s", want, out)
		}
	}
}

func TestEngine_NoTraceByDefault(t *testing.T) {
	var buf bytes.Buffer
	l, _ := logger.New("debug", &buf)

	list := New("quiet", WithLogger(l)).Variant(firstArg, P("x")).MustBuild()
	if _, err := list.Bind(nil).Call(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output without tracing, got %q", buf.String())
	}
}

func TestDispatch_UnknownOutcomeFaults(t *testing.T) {
	odd := convert.New("odd", func(any) convert.Conversion {
		return convert.Conversion{Outcome: convert.Outcome(9)}
	})
	list := New("x").Variant(firstArg, P("x").As(odd)).MustBuild()

	_, err := list.Bind(nil).Call(1)
	var fault *ConverterFault
	if !errors.As(err, &fault) {
		t.Fatalf("expected *ConverterFault, got %v", err)
	}
	if fault.Unwrap() == nil {
		t.Fatal("fault should carry an error")
	}
	if !strings.Contains(err.Error(), "invalid conversion outcome Outcome(9)") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestDispatch_ErrorSnapshotsCall(t *testing.T) {
	list := New("pair").Variant(firstArg, P("a"), P("b")).MustBuild()

	args := []any{1}
	kwargs := map[string]any{"c": 3}
	_, err := list.Bind(nil).CallKw(args, kwargs)
	var derr *DispatchError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DispatchError, got %v", err)
	}

	args[0] = "changed"
	kwargs["c"] = "changed"
	kwargs["d"] = 4
	if derr.Args[0] != 1 {
		t.Errorf("args changed after dispatch: %v", derr.Args)
	}
	if len(derr.Kwargs) != 1 || derr.Kwargs["c"] != 3 {
		t.Errorf("kwargs changed after dispatch: %v", derr.Kwargs)
	}
}
