package engine

import "sync"

// EventKind identifies what changed.
type EventKind string

// Event kinds emitted by the engine.
const (
	EventCategoriesChanged    EventKind = "categories_changed"
	EventRuleAdded            EventKind = "rule_added"
	EventCorrectionRecorded   EventKind = "correction_recorded"
	EventSuggestionsRefreshed EventKind = "suggestions_refreshed"
	EventDataCleared          EventKind = "data_cleared"
)

// Event describes one engine state change.
type Event struct {
	Kind EventKind
}

// notifier maintains the subscriber callback list. Callbacks run
// synchronously on the mutating goroutine; subscribers needing isolation
// should hand the event off to their own channel.
type notifier struct {
	listeners []func(Event)
	mu        sync.Mutex
}

func (n *notifier) subscribe(fn func(Event)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}

func (n *notifier) publish(event Event) {
	n.mu.Lock()
	listeners := make([]func(Event), len(n.listeners))
	copy(listeners, n.listeners)
	n.mu.Unlock()

	for _, fn := range listeners {
		fn(event)
	}
}
