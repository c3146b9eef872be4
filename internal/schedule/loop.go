package schedule

import (
	"context"
	"sync"
	"time"
)

// DefaultFPS is the render rate when none is configured.
const DefaultFPS = 30

// Loop calls tick once per frame until stopped. Ticks never overlap.
type Loop struct {
	interval time.Duration
	tick     func(dt time.Duration)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLoop creates a stopped loop running at fps frames per second.
func NewLoop(fps int, tick func(dt time.Duration)) *Loop {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Loop{
		interval: time.Second / time.Duration(fps),
		tick:     tick,
	}
}

// Interval returns the time between frames.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Start begins ticking. Starting a running loop is a no-op.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	go l.run(ctx, l.done)
}

// Stop halts the loop and waits for an in-flight tick to finish.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop has been started and not stopped.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			l.tick(dt)
		}
	}
}
