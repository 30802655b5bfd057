package overload

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/zurustar/overload/pkg/convert"
)

func TestDispatch_ConcurrentCalls(t *testing.T) {
	typ, err := Declare("Parser", func(ns *Collector) error {
		if err := ns.Def("parse", func(recv any, args []any) (any, error) {
			return fmt.Sprintf("%v:int:%d", recv, args[0]), nil
		}, P("v").As(convert.Int)); err != nil {
			return err
		}
		return ns.Def("parse", func(recv any, args []any) (any, error) {
			return fmt.Sprintf("%v:str:%s", recv, args[0]), nil
		}, P("v").As(convert.String))
	})
	if err != nil {
		t.Fatalf("Declare failed: %v", err)
	}

	g, _ := errgroup.WithContext(context.Background())
	for w := 0; w < 16; w++ {
		w := w
		inst := typ.Bind(w)
		g.Go(func() error {
			for i := 0; i < 200; i++ {
				var arg any = strconv.Itoa(i)
				want := fmt.Sprintf("%d:int:%d", w, i)
				if i%3 == 0 {
					arg = fmt.Sprintf("x%d", i)
					want = fmt.Sprintf("%d:str:x%d", w, i)
				}
				got, err := inst.Call("parse", arg)
				if err != nil {
					return err
				}
				if got != want {
					return fmt.Errorf("worker %d: expected %q, got %q", w, want, got)
				}
			}
			_, err := inst.Call("parse", 1.5)
			var derr *DispatchError
			if !errors.As(err, &derr) {
				return fmt.Errorf("worker %d: expected *DispatchError, got %v", w, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}
