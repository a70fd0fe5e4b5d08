// Package bridge negotiates an optional external renderer. Loading runs off
// the UI goroutine under a timeout and resolves to exactly one outcome, which
// the UI goroutine collects with Poll.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"backdrop/hal"
	"backdrop/netfield/field"
	"backdrop/netfield/sched"
	"backdrop/raster"

	"github.com/sony/gobreaker"
)

// Outcome is the result of a negotiation.
type Outcome uint8

const (
	// None means no negotiation has been started.
	None Outcome = iota
	Pending
	Ready
	TimedOut
	Failed
)

func (o Outcome) String() string {
	switch o {
	case None:
		return "none"
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case TimedOut:
		return "timed-out"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("outcome(%d)", uint8(o))
}

// Resolved reports whether the outcome is final.
func (o Outcome) Resolved() bool { return o == Ready || o == TimedOut || o == Failed }

// DefaultTimeout bounds a load attempt.
const DefaultTimeout = 5 * time.Second

var (
	ErrInitPanic   = errors.New("bridge: renderer init panicked")
	ErrLoadPanic   = errors.New("bridge: loader panicked")
	ErrNilRenderer = errors.New("bridge: loader returned no renderer")
)

// Surface is what an external renderer draws on.
type Surface interface {
	Canvas() *raster.Canvas
	Present() error
}

// Mount is handed to a renderer's Init. The renderer schedules its own frames
// on Queue and must cancel them in Destroy.
type Mount struct {
	Queue         *sched.Queue
	Surface       Surface
	Focus         field.Interaction
	Width, Height float64
}

// Renderer is a loaded external renderer. Init, Resize and Destroy run on the
// UI goroutine.
type Renderer interface {
	Init(m Mount) error
	Resize(w, h float64)
	Destroy()
}

// Loader fetches a renderer. Load runs on its own goroutine and should return
// promptly once ctx is done.
type Loader interface {
	Load(ctx context.Context) (Renderer, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (Renderer, error)

func (f LoaderFunc) Load(ctx context.Context) (Renderer, error) { return f(ctx) }

// Config parameterizes a bridge.
type Config struct {
	Timeout time.Duration
	// FailuresToTrip consecutive failed negotiations open the breaker;
	// later negotiations fail immediately until Cooldown elapses.
	FailuresToTrip uint32
	Cooldown       time.Duration
	Logger         hal.Logger
}

type result struct {
	r   Renderer
	err error
}

// Bridge owns at most one negotiation and at most one active renderer. It is
// reused across mounts so the breaker remembers earlier failures.
type Bridge struct {
	cfg     Config
	breaker *gobreaker.TwoStepCircuitBreaker

	outcome  Outcome
	err      error
	renderer Renderer

	ctx    context.Context
	cancel context.CancelFunc
	ch     chan result
	// done reports the current attempt to the breaker. After Close abandons an
	// attempt it is kept unreported and reused by the next Negotiate.
	done  func(bool)
	mount Mount
}

// New returns an idle bridge.
func New(cfg Config) *Bridge {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.FailuresToTrip == 0 {
		cfg.FailuresToTrip = 2
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = time.Minute
	}
	b := &Bridge{cfg: cfg}
	b.breaker = gobreaker.NewTwoStepCircuitBreaker(gobreaker.Settings{
		Name:        "external-renderer",
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= cfg.FailuresToTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logf("breaker %s: %s -> %s", name, from, to)
		},
	})
	return b
}

func (b *Bridge) logf(format string, args ...any) {
	if b.cfg.Logger == nil {
		return
	}
	b.cfg.Logger.WriteLineString("backdrop: bridge: " + fmt.Sprintf(format, args...))
}

// Negotiate starts loading through l. Any previous negotiation or renderer is
// closed first. If the breaker is open the outcome is Failed at once.
func (b *Bridge) Negotiate(parent context.Context, l Loader, m Mount) Outcome {
	b.Close()
	b.err = nil
	b.mount = m

	if b.done == nil {
		done, err := b.breaker.Allow()
		if err != nil {
			b.outcome = Failed
			b.err = fmt.Errorf("bridge: skipped: %w", err)
			b.logf("warn: %v", b.err)
			return b.outcome
		}
		b.done = done
	}

	if parent == nil {
		parent = context.Background()
	}
	b.ctx, b.cancel = context.WithTimeout(parent, b.cfg.Timeout)
	b.ch = make(chan result, 1)
	b.outcome = Pending
	go load(b.ctx, l, b.ch)
	return b.outcome
}

func load(ctx context.Context, l Loader, ch chan<- result) {
	defer func() {
		if v := recover(); v != nil {
			ch <- result{err: fmt.Errorf("%w: %v", ErrLoadPanic, v)}
		}
	}()
	r, err := l.Load(ctx)
	if err == nil && r == nil {
		err = ErrNilRenderer
	}
	ch <- result{r: r, err: err}
}

// Poll collects the negotiation result without blocking. A loaded renderer is
// initialized here, on the caller's goroutine.
func (b *Bridge) Poll() Outcome {
	if b.outcome != Pending {
		return b.outcome
	}
	select {
	case res := <-b.ch:
		b.ch = nil
		if res.err != nil {
			b.resolve(ctxOutcome(b.ctx.Err()), fmt.Errorf("bridge: load: %w", res.err))
			return b.outcome
		}
		if err := b.ctx.Err(); err != nil {
			res.r.Destroy()
			b.resolve(ctxOutcome(err), fmt.Errorf("bridge: load: %w", err))
			return b.outcome
		}
		if err := initRenderer(res.r, b.mount); err != nil {
			res.r.Destroy()
			b.resolve(Failed, fmt.Errorf("bridge: init: %w", err))
			return b.outcome
		}
		b.renderer = res.r
		b.resolve(Ready, nil)
	default:
		if b.ctx.Err() != nil {
			abandon(b.ch)
			b.ch = nil
			b.resolve(ctxOutcome(b.ctx.Err()), fmt.Errorf("bridge: load: %w", b.ctx.Err()))
		}
	}
	return b.outcome
}

// ctxOutcome classifies a failed load by its context error.
func ctxOutcome(err error) Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return TimedOut
	}
	return Failed
}

// abandon destroys a renderer that arrives after its negotiation was given up.
// It was never initialized.
func abandon(ch <-chan result) {
	if ch == nil {
		return
	}
	go func() {
		if res := <-ch; res.r != nil {
			res.r.Destroy()
		}
	}()
}

func initRenderer(r Renderer, m Mount) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%w: %v\n%s", ErrInitPanic, v, debug.Stack())
		}
	}()
	return r.Init(m)
}

func (b *Bridge) resolve(o Outcome, err error) {
	b.outcome = o
	b.err = err
	if b.cancel != nil && o != Ready {
		b.cancel()
	}
	if b.done != nil {
		b.done(o == Ready)
		b.done = nil
	}
	switch o {
	case Ready:
		b.logf("external renderer ready")
	default:
		b.logf("warn: falling back to built-in renderer: %v", err)
	}
}

// Outcome returns the current outcome without polling.
func (b *Bridge) Outcome() Outcome { return b.outcome }

// Err returns why the last negotiation did not reach Ready.
func (b *Bridge) Err() error { return b.err }

// Active returns the initialized renderer, or nil.
func (b *Bridge) Active() Renderer { return b.renderer }

// BreakerState returns the breaker state name.
func (b *Bridge) BreakerState() string { return b.breaker.State().String() }

// Resize forwards a new logical size to the active renderer.
func (b *Bridge) Resize(w, h float64) {
	b.mount.Width, b.mount.Height = w, h
	if b.renderer != nil {
		b.renderer.Resize(w, h)
	}
}

// Close abandons a pending negotiation and destroys an active renderer. Safe
// to call any number of times.
func (b *Bridge) Close() {
	if b.outcome == Pending {
		abandon(b.ch)
		b.ch = nil
		// The attempt proved nothing either way, so b.done stays unreported.
	}
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	if b.renderer != nil {
		b.renderer.Destroy()
		b.renderer = nil
	}
	b.outcome = None
}
