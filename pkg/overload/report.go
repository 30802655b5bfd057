package overload

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/vmihailenco/msgpack/v5"
)

// Report is a serializable snapshot of a DispatchError. Values are rendered
// with fmt so that the snapshot does not depend on the caller's types.
type Report struct {
	Name     string            `msgpack:"name"`
	Receiver string            `msgpack:"receiver"`
	Args     []string          `msgpack:"args"`
	Kwargs   map[string]string `msgpack:"kwargs,omitempty"`
	Attempts []AttemptReport   `msgpack:"attempts"`
}

// AttemptReport is the serializable form of an Attempt.
type AttemptReport struct {
	Signature  string   `msgpack:"signature"`
	Params     []string `msgpack:"params"`
	Converters []string `msgpack:"converters"`
	Stage      string   `msgpack:"stage"`
	Param      string   `msgpack:"param,omitempty"`
	Reason     string   `msgpack:"reason,omitempty"`
}

// Report snapshots the error.
func (e *DispatchError) Report() Report {
	r := Report{
		Name:     e.Name,
		Receiver: fmt.Sprintf("%v", e.Receiver),
		Args:     make([]string, len(e.Args)),
		Attempts: make([]AttemptReport, len(e.Attempts)),
	}
	for i, a := range e.Args {
		r.Args[i] = fmt.Sprintf("%#v", a)
	}
	if len(e.Kwargs) > 0 {
		r.Kwargs = make(map[string]string, len(e.Kwargs))
		for k, v := range e.Kwargs {
			r.Kwargs[k] = fmt.Sprintf("%#v", v)
		}
	}
	for i, a := range e.Attempts {
		names := make([]string, len(a.Params))
		for j, p := range a.Params {
			names[j] = p.Name
		}
		r.Attempts[i] = AttemptReport{
			Signature:  a.Signature,
			Params:     names,
			Converters: a.Converters(),
			Stage:      string(a.Stage),
			Param:      a.Param,
			Reason:     a.Reason,
		}
	}
	return r
}

// Encode serializes the report with MessagePack.
func (r Report) Encode() ([]byte, error) {
	return msgpack.Marshal(r)
}

// DecodeReport parses a report produced by Report.Encode.
func DecodeReport(data []byte) (Report, error) {
	var r Report
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("decode report: %w", err)
	}
	return r, nil
}

// WriteReport renders err as an aligned table, one attempted signature per
// row. When colorize is set the stage column is highlighted.
func WriteReport(w io.Writer, err *DispatchError, colorize bool) error {
	title := color.New(color.Bold)
	mismatch := color.New(color.FgRed)
	rejected := color.New(color.FgYellow)
	for _, c := range []*color.Color{title, mismatch, rejected} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	r := err.Report()
	var b strings.Builder
	b.WriteString(title.Sprintf("no variant of %s matched", r.Name))
	b.WriteByte('\n')
	fmt.Fprintf(&b, "  receiver: %s\n", r.Receiver)
	fmt.Fprintf(&b, "  args:     [%s]\n", strings.Join(r.Args, ", "))
	fmt.Fprintf(&b, "  kwargs:   %s\n", formatKwargs(stringMap(r.Kwargs)))

	width := 0
	for _, a := range r.Attempts {
		if n := runewidth.StringWidth(a.Signature); n > width {
			width = n
		}
	}
	for i, a := range r.Attempts {
		stage := a.Stage
		switch ErrorType(a.Stage) {
		case ErrorSignatureMismatch:
			stage = mismatch.Sprint(a.Stage)
		case ErrorConversionRejected:
			stage = rejected.Sprint(a.Stage)
		}
		fmt.Fprintf(&b, "  %d. %s  %s", i+1, runewidth.FillRight(a.Signature, width), stage)
		if a.Param != "" {
			fmt.Fprintf(&b, " [%s]", a.Param)
		}
		if a.Reason != "" {
			fmt.Fprintf(&b, ": %s", a.Reason)
		}
		b.WriteByte('\n')
	}

	_, werr := io.WriteString(w, b.String())
	return werr
}

func stringMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
