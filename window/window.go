// Package window serializes all work on a page the way a browser's event
// loop does: one lock around the document, continuations queued behind it,
// and a generation counter that retires work belonging to a replaced
// fragment.
package window

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/foomo/portfolio-mcp/dom"
	"go.uber.org/zap"
)

// Generation tags one fragment load. Work carrying an older generation than
// the window's current one is discarded.
type Generation uint64

type Task = dom.Task

type Window struct {
	mu  sync.Mutex
	doc *dom.Document
	gen atomic.Uint64 // written with mu held

	queueMu sync.Mutex
	queue   []Task

	history  *History
	notifier Notifier
	timers   Timers
	changes  *broadcaster
	logger   *zap.Logger
}

type Option func(*Window)

func WithNotifier(n Notifier) Option {
	return func(w *Window) { w.notifier = n }
}

func WithTimers(t Timers) Option {
	return func(w *Window) { w.timers = t }
}

func WithLocation(hash string) Option {
	return func(w *Window) { w.history = NewHistory(hash) }
}

func WithLogger(l *zap.Logger) Option {
	return func(w *Window) {
		if l != nil {
			w.logger = l
		}
	}
}

func New(opts ...Option) *Window {
	w := &Window{
		history: NewHistory(""),
		timers:  RealTimers{},
		changes: &broadcaster{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.notifier == nil {
		w.notifier = LogNotifier{Logger: w.logger}
	}
	return w
}

// Load installs a new document and retires all outstanding work.
func (w *Window) Load(doc *dom.Document) Generation {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.doc = doc
	return Generation(w.gen.Add(1))
}

// Begin starts a new fragment load and returns its generation.
func (w *Window) Begin() Generation {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Generation(w.gen.Add(1))
}

// Current returns the generation of the latest load. It does not take the
// document lock and may be called from listeners.
func (w *Window) Current() Generation {
	return Generation(w.gen.Load())
}

// Apply runs fn on the document if gen is still current and reports whether
// it ran. Queued tasks are drained afterwards.
func (w *Window) Apply(ctx context.Context, gen Generation, fn func(doc *dom.Document)) bool {
	w.mu.Lock()
	if current := w.Current(); gen != current || w.doc == nil {
		w.mu.Unlock()
		w.logger.Debug("discarding stale work", zap.Uint64("generation", uint64(gen)), zap.Uint64("current", uint64(current)))
		return false
	}
	fn(w.doc)
	w.mu.Unlock()
	w.Drain(ctx)
	return true
}

// Do runs fn on the document regardless of generation.
func (w *Window) Do(ctx context.Context, fn func(doc *dom.Document)) {
	w.mu.Lock()
	if w.doc == nil {
		w.mu.Unlock()
		return
	}
	fn(w.doc)
	w.mu.Unlock()
	w.Drain(ctx)
}

// Dispatch fires an event of type typ at the element chosen by pick and
// reports whether a listener prevented the default action. Continuations
// deferred by listeners run before Dispatch returns.
func (w *Window) Dispatch(ctx context.Context, typ string, pick func(doc *dom.Document) *dom.Element) (dispatched, prevented bool) {
	w.mu.Lock()
	if w.doc == nil {
		w.mu.Unlock()
		return false, false
	}
	target := pick(w.doc)
	if target == nil {
		w.mu.Unlock()
		return false, false
	}
	ev := dom.NewEvent(typ, target)
	target.Dispatch(ev)
	w.mu.Unlock()

	w.Enqueue(ev.Deferred()...)
	w.Drain(ctx)
	return true, ev.DefaultPrevented()
}

// Enqueue appends tasks to the queue. It is safe to call while the document
// is held.
func (w *Window) Enqueue(tasks ...Task) {
	w.queueMu.Lock()
	defer w.queueMu.Unlock()
	for _, t := range tasks {
		if t != nil {
			w.queue = append(w.queue, t)
		}
	}
}

// Drain runs queued tasks in order until the queue is empty.
func (w *Window) Drain(ctx context.Context) {
	for {
		w.queueMu.Lock()
		if len(w.queue) == 0 {
			w.queueMu.Unlock()
			return
		}
		t := w.queue[0]
		w.queue = w.queue[1:]
		w.queueMu.Unlock()
		t(ctx)
	}
}

// After runs fn on the document once d has elapsed.
func (w *Window) After(d time.Duration, fn func(doc *dom.Document)) {
	w.timers.AfterFunc(d, func() {
		w.Do(context.Background(), fn)
	})
}

func (w *Window) History() *History { return w.history }

func (w *Window) Location() string { return w.history.Location() }

func (w *Window) PushState(hash string) {
	w.history.Push(hash)
	w.Emit(ChangeLocation, map[string]any{"location": hash})
}

// Alert shows a blocking notice to the user.
func (w *Window) Alert(message string) {
	w.notifier.Alert(message)
	w.Emit(ChangeAlert, map[string]any{"message": message})
}
