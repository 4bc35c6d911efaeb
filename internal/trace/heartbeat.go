package trace

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Heartbeat periodically emits a campaign event naming the session in flight
// and how long it has been running. When the same iteration keeps showing up
// with a growing age, the harness is waiting on a stuck target.
type Heartbeat struct {
	tracer   Tracer
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
	once     sync.Once

	iteration atomic.Uint64
	since     atomic.Int64 // unix nanos when the current iteration started
}

// StartHeartbeat starts the heartbeat goroutine.
// It returns nil when tracing is disabled or interval is not positive.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:   tracer,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
	h.since.Store(time.Now().UnixNano())
	h.wg.Add(1)
	go h.run()
	return h
}

// Mark records that iteration n has started. Safe on a nil Heartbeat.
func (h *Heartbeat) Mark(n uint64) {
	if h == nil {
		return
	}
	h.since.Store(time.Now().UnixNano())
	h.iteration.Store(n)
}

// Iteration returns the last marked iteration, 0 before the first Mark.
func (h *Heartbeat) Iteration() uint64 {
	if h == nil {
		return 0
	}
	return h.iteration.Load()
}

func (h *Heartbeat) run() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			h.tracer.Emit(h.event(now))
		case <-h.stopCh:
			return
		}
	}
}

func (h *Heartbeat) event(now time.Time) *Event {
	n := h.iteration.Load()
	age := now.Sub(time.Unix(0, h.since.Load())).Round(time.Millisecond)
	detail := "idle"
	if n > 0 {
		detail = "iteration " + strconv.FormatUint(n, 10) + " running " + age.String()
	}
	return &Event{
		Time:   now,
		Seq:    NextSeq(),
		Kind:   KindHeartbeat,
		Scope:  ScopeCampaign,
		Name:   "heartbeat",
		Detail: detail,
		Extra: map[string]string{
			"iteration": strconv.FormatUint(n, 10),
			"age_ms":    strconv.FormatInt(age.Milliseconds(), 10),
		},
	}
}

// Stop stops the heartbeat goroutine and waits for it to finish.
// Safe to call on a nil Heartbeat and more than once.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		close(h.stopCh)
		h.wg.Wait()
	})
}

type heartbeatCtxKey struct{}

// WithHeartbeat attaches h to ctx so the loop can report its iterations.
func WithHeartbeat(ctx context.Context, h *Heartbeat) context.Context {
	return context.WithValue(ctx, heartbeatCtxKey{}, h)
}

// HeartbeatFrom returns the heartbeat stored in ctx, or nil.
func HeartbeatFrom(ctx context.Context) *Heartbeat {
	if ctx == nil {
		return nil
	}
	h, _ := ctx.Value(heartbeatCtxKey{}).(*Heartbeat)
	return h
}
