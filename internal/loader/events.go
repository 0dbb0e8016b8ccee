package loader

import (
	"fmt"
	"log/slog"
)

// EventKind is the type of a loader event.
type EventKind int

const (
	// EventLoaded is emitted when a plugin's content is loaded.
	EventLoaded EventKind = iota
	// EventUnloaded is emitted when a plugin is unloaded.
	EventUnloaded
	// EventFailed is emitted when a plugin fails to load.
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventUnloaded:
		return "unloaded"
	case EventFailed:
		return "failed"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event describes a plugin lifecycle change.
type Event struct {
	Kind   EventKind
	Plugin string
	Path   string
	Err    error
}

// EventHandler handles loader events. Handlers must not call back into
// the Loader. Panics in handlers are recovered.
type EventHandler func(Event)

// Subscribe registers a handler for loader events.
func (l *Loader) Subscribe(h EventHandler) {
	l.handlersMu.Lock()
	defer l.handlersMu.Unlock()
	l.handlers = append(l.handlers, h)
}

func (l *Loader) emit(ev Event) {
	l.handlersMu.RLock()
	handlers := make([]EventHandler, len(l.handlers))
	copy(handlers, l.handlers)
	l.handlersMu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Loader event handler panicked.", "event", ev.Kind.String(), "plugin", ev.Plugin, "panic", r)
				}
			}()
			h(ev)
		}()
	}
}
