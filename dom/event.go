package dom

import (
	"context"
)

// Task is work that runs outside the document lock, e.g. the continuation of
// a handler after a network call.
type Task func(ctx context.Context)

type Listener func(ev *Event)

type registration struct {
	fn Listener
}

// Event is dispatched to the listeners of its target and, when it bubbles,
// to the listeners of every ancestor.
type Event struct {
	Type          string
	Target        *Element
	CurrentTarget *Element

	bubbles          bool
	defaultPrevented bool
	stopped          bool
	deferred         []Task
}

var bubbling = map[string]bool{
	"click":  true,
	"submit": true,
	"input":  true,
}

func NewEvent(typ string, target *Element) *Event {
	return &Event{
		Type:    typ,
		Target:  target,
		bubbles: bubbling[typ],
	}
}

func (ev *Event) PreventDefault() { ev.defaultPrevented = true }

func (ev *Event) DefaultPrevented() bool { return ev.defaultPrevented }

func (ev *Event) StopPropagation() { ev.stopped = true }

// Defer queues a continuation to run once dispatch has released the document.
func (ev *Event) Defer(t Task) {
	ev.deferred = append(ev.deferred, t)
}

func (ev *Event) Deferred() []Task { return ev.deferred }

// Dispatch runs the listeners for ev starting at e.
func (e *Element) Dispatch(ev *Event) {
	if ev.Target == nil {
		ev.Target = e
	}
	d := e.doc
	for n := e.node; n != nil; n = n.Parent {
		s, ok := d.state[n]
		if ok && len(s.listeners[ev.Type]) > 0 {
			registrations := append([]*registration(nil), s.listeners[ev.Type]...)
			ev.CurrentTarget = d.wrap(n)
			for _, r := range registrations {
				r.fn(ev)
			}
		}
		if ev.stopped || !ev.bubbles {
			break
		}
	}
	ev.CurrentTarget = nil
}
