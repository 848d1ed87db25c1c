package hunt

import (
	"sync/atomic"
	"testing"
	"time"
)

type countTicker struct {
	ticks int
	dt    float64
}

func (c *countTicker) Tick(dt float64) {
	c.ticks++
	c.dt += dt
}

func TestLoopDrainRunsPostedInOrder(t *testing.T) {
	l := NewLoop()

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}

	if n := l.Drain(); n != 5 {
		t.Fatalf("drained %d, want 5", n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("out of order: %v", got)
		}
	}
	if l.Drain() != 0 {
		t.Fatal("second drain found work")
	}
}

func TestLoopDrainRunsNestedPosts(t *testing.T) {
	l := NewLoop()
	ran := false
	l.Post(func() {
		l.Post(func() { ran = true })
	})
	l.Drain()
	if !ran {
		t.Fatal("nested post not drained")
	}
}

func TestLoopTickInvokesTickers(t *testing.T) {
	l := NewLoop()
	ct := &countTicker{}
	l.Register(ct)

	l.Tick(0.016)
	l.Tick(0.016)

	if ct.ticks != 2 {
		t.Fatalf("ticks = %d, want 2", ct.ticks)
	}
}

func TestLoopAfterDeliversOnLoop(t *testing.T) {
	l := NewLoop()
	var fired atomic.Bool
	l.After(5*time.Millisecond, func() { fired.Store(true) })

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		l.Drain()
		if fired.Load() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timer callback never ran on the loop")
}

func TestLoopAfterStopCancels(t *testing.T) {
	l := NewLoop()
	timer := l.After(5*time.Millisecond, func() { t.Error("stopped timer fired") })
	timer.Stop()

	time.Sleep(20 * time.Millisecond)
	l.Drain()
}
