package overload

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/zurustar/overload/pkg/convert"
)

func failedCall(t *testing.T) *DispatchError {
	t.Helper()
	list := New("scale").
		Variant(firstArg, P("factor").As(convert.Int)).
		Variant(firstArg, P("x"), P("y")).
		MustBuild()
	_, err := list.Bind("shape").CallKw([]any{"big"}, map[string]any{"unit": "mm"})
	var derr *DispatchError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DispatchError, got %v", err)
	}
	return derr
}

func TestReport_Snapshot(t *testing.T) {
	r := failedCall(t).Report()

	if r.Name != "scale" || r.Receiver != "shape" {
		t.Errorf("unexpected header: %+v", r)
	}
	if len(r.Args) != 1 || r.Args[0] != `"big"` {
		t.Errorf("unexpected args: %v", r.Args)
	}
	if r.Kwargs["unit"] != `"mm"` {
		t.Errorf("unexpected kwargs: %v", r.Kwargs)
	}
	if len(r.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(r.Attempts))
	}
	first := r.Attempts[0]
	if first.Signature != "scale(factor: int)" || first.Converters[0] != "int" || first.Params[0] != "factor" {
		t.Errorf("unexpected first attempt: %+v", first)
	}
}

func TestReport_EncodeDecode(t *testing.T) {
	r := failedCall(t).Report()

	data, err := r.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	back, err := DecodeReport(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if back.Name != r.Name || len(back.Attempts) != len(r.Attempts) {
		t.Errorf("report changed in transit: %+v", back)
	}
	if back.Attempts[1].Signature != r.Attempts[1].Signature {
		t.Errorf("expected %q, got %q", r.Attempts[1].Signature, back.Attempts[1].Signature)
	}

	if _, err := DecodeReport([]byte{0xc1}); err == nil {
		t.Error("expected error for invalid payload")
	}
}

func TestWriteReport(t *testing.T) {
	derr := failedCall(t)

	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteReport(&buf, derr, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"no variant of scale matched",
			"receiver: shape",
			"scale(factor: int)",
			"scale(x, y)",
			string(ErrorSignatureMismatch),
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "\x1b[") {
			t.Errorf("plain output contains escape codes:\n%s", out)
		}
	})

	t.Run("colorized", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteReport(&buf, derr, true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\x1b[") {
			t.Errorf("expected escape codes:\n%s", buf.String())
		}
	})
}
