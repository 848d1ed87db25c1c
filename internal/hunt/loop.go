package hunt

import (
	"context"
	"sync"
	"time"
)

// Ticker receives the cooperative frame callback.
type Ticker interface {
	Tick(dt float64)
}

// Loop is the single logical thread that owns all game state. Remote
// callbacks are marshalled onto it with Post, so session, catalog and
// placement state are only ever mutated from one goroutine and need no
// locking. Nothing posted to the loop may block.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	tickers []Ticker
}

func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post schedules fn to run on the loop goroutine. Safe to call from any
// goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Register adds a per-frame ticker. Must be called before Run.
func (l *Loop) Register(t Ticker) {
	l.tickers = append(l.tickers, t)
}

// Drain runs every queued function on the calling goroutine and reports
// how many ran. Run calls this each frame; tests call it directly to pump
// the loop synchronously.
func (l *Loop) Drain() int {
	n := 0
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return n
		}
		fn := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()

		fn()
		n++
	}
}

// Tick invokes every registered ticker with the elapsed frame time.
func (l *Loop) Tick(dt float64) {
	for _, t := range l.tickers {
		t.Tick(dt)
	}
}

// Run pumps the loop until ctx is cancelled: queued callbacks run as soon
// as they are posted, tickers run once per frame interval.
func (l *Loop) Run(ctx context.Context, frame time.Duration) error {
	tick := time.NewTicker(frame)
	defer tick.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
			l.Drain()
		case now := <-tick.C:
			l.Drain()
			l.Tick(now.Sub(last).Seconds())
			last = now
		}
	}
}

// After schedules fn onto the loop once d has elapsed. The returned timer
// can be stopped to cancel delivery.
func (l *Loop) After(d time.Duration, fn func()) *time.Timer {
	return time.AfterFunc(d, func() { l.Post(fn) })
}
