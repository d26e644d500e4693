package gotmemo

import "sync"

// EventType identifies what changed in an engine's in-memory cache.
type EventType int

const (
	// EventResolved is published when a translation is added to the in-memory cache.
	EventResolved EventType = iota + 1
	// EventCleared is published when the in-memory cache is dropped by a target language change.
	EventCleared
)

func (t EventType) String() string {
	switch t {
	case EventResolved:
		return "resolved"
	case EventCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Event describes a change to an engine's in-memory cache.
// Key and Record are only set for EventResolved.
type Event struct {
	Type       EventType
	TargetLang string
	Key        string
	Record     Record
}

type subscribers struct {
	mu   sync.RWMutex
	next uint64
	fns  map[uint64]func(Event)
}

func (s *subscribers) add(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fns == nil {
		s.fns = make(map[uint64]func(Event))
	}
	id := s.next
	s.next++
	s.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.fns, id)
			s.mu.Unlock()
		})
	}
}

func (s *subscribers) publish(ev Event) {
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
