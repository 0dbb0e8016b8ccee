package plugins

import "sync"

// EventKind identifies a tree notification.
type EventKind int

const (
	// EventMounting fires before a node's value is replaced.
	EventMounting EventKind = iota
	// EventMounted fires after a node's value was replaced.
	EventMounted
	// EventUnmounted fires after a node's value was cleared.
	EventUnmounted
)

func (k EventKind) String() string {
	switch k {
	case EventMounting:
		return "mounting"
	case EventMounted:
		return "mounted"
	case EventUnmounted:
		return "unmounted"
	}
	return "unknown"
}

// TreeEvent describes a mount or unmount. Old and New are the node's
// values (a *Builtin for constructs); neither is ever materialized for the
// event.
type TreeEvent struct {
	Kind EventKind
	Node *Node
	Path string
	Old  any
	New  any
}

// subscribers is a copy-on-write list of handlers.
type subscribers struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func(TreeEvent)
	order    []int
}

func (s *subscribers) add(fn func(TreeEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handlers == nil {
		s.handlers = make(map[int]func(TreeEvent))
	}
	id := s.nextID
	s.nextID++
	s.handlers[id] = fn
	s.order = append(s.order, id)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers, id)
		for i, o := range s.order {
			if o == id {
				s.order = append(s.order[:i:i], s.order[i+1:]...)
				break
			}
		}
	}
}

func (s *subscribers) publish(ev TreeEvent) {
	s.mu.Lock()
	fns := make([]func(TreeEvent), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.handlers[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
