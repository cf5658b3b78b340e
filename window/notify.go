package window

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Notifier delivers blocking user notices.
type Notifier interface {
	Alert(message string)
}

type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Alert(message string) {
	n.Logger.Info("alert", zap.String("message", message))
}

// RecordingNotifier keeps every notice, e.g. for a remote driver to read back.
type RecordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *RecordingNotifier) Alert(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *RecordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type Timers interface {
	AfterFunc(d time.Duration, fn func())
}

type RealTimers struct{}

func (RealTimers) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

// ManualTimers fires callbacks only when Advance moves its clock past their
// deadline.
type ManualTimers struct {
	mu      sync.Mutex
	now     time.Duration
	pending []manualTimer
}

type manualTimer struct {
	at time.Duration
	fn func()
}

func (m *ManualTimers) AfterFunc(d time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, manualTimer{at: m.now + d, fn: fn})
}

func (m *ManualTimers) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due []func()
	rest := m.pending[:0]
	for _, t := range m.pending {
		if t.at <= m.now {
			due = append(due, t.fn)
		} else {
			rest = append(rest, t)
		}
	}
	m.pending = rest
	m.mu.Unlock()

	for _, fn := range due {
		fn()
	}
}

func (m *ManualTimers) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
