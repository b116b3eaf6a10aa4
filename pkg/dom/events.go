package dom

import "sync"

const (
	EventInput  = "input"
	EventChange = "change"
)

// Event mirrors the parts of a DOM event observers care about.
type Event struct {
	Type    string
	Target  *Element
	Bubbles bool
}

// Listener receives dispatched events.
type Listener func(Event)

// AddEventListener registers fn for events of the given type reaching e,
// either as target or, for bubbling events, from a descendant.
func (e *Element) AddEventListener(eventType string, fn Listener) {
	if e == nil || fn == nil {
		return
	}
	if e.listeners == nil {
		e.listeners = make(map[string][]Listener)
	}
	e.listeners[eventType] = append(e.listeners[eventType], fn)
}

// Dispatch fires a bubbling event of the given type at e.
func (e *Element) Dispatch(eventType string) {
	if e == nil {
		return
	}
	e.DispatchEvent(Event{Type: eventType, Target: e, Bubbles: true})
}

// DispatchEvent delivers ev to the target's listeners, then (when bubbling)
// to every ancestor's listeners and finally to document listeners.
func (e *Element) DispatchEvent(ev Event) {
	if e == nil {
		return
	}
	if ev.Target == nil {
		ev.Target = e
	}
	for cur := e; cur != nil; cur = cur.Parent() {
		for _, fn := range cur.listeners[ev.Type] {
			fn(ev)
		}
		if !ev.Bubbles {
			return
		}
	}
	for _, fn := range e.doc.listeners {
		fn(ev)
	}
}

// Recorder collects every event reaching a document. The browser adapter
// replays recorded events against a live page.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder attaches a recorder to doc.
func NewRecorder(doc *Document) *Recorder {
	r := &Recorder{}
	doc.AddListener(r.record)
	return r
}

func (r *Recorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events in dispatch order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Targets returns the distinct targets of recorded events in first-seen order.
func (r *Recorder) Targets() []*Element {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[*Element]struct{}, len(r.events))
	var out []*Element
	for _, ev := range r.events {
		if _, ok := seen[ev.Target]; ok {
			continue
		}
		seen[ev.Target] = struct{}{}
		out = append(out, ev.Target)
	}
	return out
}

// Reset clears recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
