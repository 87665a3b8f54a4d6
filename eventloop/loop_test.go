package eventloop

import (
	"context"
	"testing"
	"time"

	"github.com/wippyai/browser-runtime/errors"
)

func TestMicrotaskOrder(t *testing.T) {
	l := New()
	var order []int
	l.Schedule(func() {
		order = append(order, 1)
		l.Schedule(func() { order = append(order, 3) })
	})
	l.Schedule(func() { order = append(order, 2) })

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestTaskErrorStopsRun(t *testing.T) {
	l := New()
	boom := errors.InvalidInput(errors.PhaseLoop, "boom")
	ran := false
	l.Post(func() error { return boom })
	l.Schedule(func() { ran = true })

	if err := l.Run(context.Background()); err != boom {
		t.Fatalf("run error = %v, want boom", err)
	}
	if ran {
		t.Fatal("task after failure should not have run")
	}
}

func TestFrameIDsIncrease(t *testing.T) {
	l := New(WithMaxFrames(2))
	a := l.RequestFrame(nil)
	b := l.RequestFrame(nil)
	if b <= a || a == 0 {
		t.Fatalf("ids = %d, %d; want increasing nonzero", a, b)
	}
}

func TestFrameRunsAfterMicrotasks(t *testing.T) {
	l := New(WithMaxFrames(1))
	var order []string
	l.RequestFrame(func(uint32) error {
		order = append(order, "frame")
		return nil
	})
	l.Schedule(func() { order = append(order, "task") })

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(order) != 2 || order[0] != "task" || order[1] != "frame" {
		t.Fatalf("order = %v, want [task frame]", order)
	}
}

func TestFrameReRegistrationHonorsCap(t *testing.T) {
	l := New(WithMaxFrames(3))
	var ids []uint32
	var again func(id uint32) error
	again = func(id uint32) error {
		ids = append(ids, id)
		l.RequestFrame(again)
		return nil
	}
	l.RequestFrame(again)

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("frames delivered = %d, want 3", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Fatalf("ids not increasing: %v", ids)
		}
	}
}

func TestCancelFrame(t *testing.T) {
	l := New(WithMaxFrames(4))
	ran := false
	id := l.RequestFrame(func(uint32) error {
		ran = true
		return nil
	})
	l.CancelFrame(id)
	l.CancelFrame(9999) // unknown id is a no-op

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if ran {
		t.Fatal("cancelled frame callback ran")
	}
}

func TestZeroFrameBudgetSkipsFrames(t *testing.T) {
	l := New(WithMaxFrames(0))
	l.RequestFrame(func(uint32) error {
		t.Fatal("frame ran with zero budget")
		return nil
	})
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestAsyncCompletionWakesLoop(t *testing.T) {
	l := New()
	done := false
	l.AsyncBegin()
	go func() {
		time.Sleep(10 * time.Millisecond)
		l.Schedule(func() { done = true })
		l.AsyncDone()
	}()

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !done {
		t.Fatal("completion task did not run")
	}
}

func TestRunAbortsOnContext(t *testing.T) {
	l := New()
	l.AsyncBegin() // never completes

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Run(ctx)
	if err == nil {
		t.Fatal("run should fail when context expires")
	}
	var e *errors.Error
	if !errors.As(err, &e) || e.Kind != errors.KindAborted {
		t.Fatalf("error = %v, want aborted", err)
	}
}

func TestPostAfterClose(t *testing.T) {
	l := New()
	l.Close()
	l.Schedule(func() { t.Fatal("task ran after close") })
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
}
