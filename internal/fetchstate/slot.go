package fetchstate

import "sync"

// Closer is anything a view mounts and later tears down
type Closer interface {
	Close()
}

// Slot holds the mounted instance of a view controller. The instance is
// created on first use and replaced after Unmount, since a closed
// controller never changes state again.
type Slot[C Closer] struct {
	factory func() C

	mu      sync.Mutex
	current C
	mounted bool
}

// NewSlot creates an empty slot
func NewSlot[C Closer](factory func() C) *Slot[C] {
	return &Slot[C]{factory: factory}
}

// Get returns the mounted instance, mounting a new one if needed
func (s *Slot[C]) Get() C {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		s.current = s.factory()
		s.mounted = true
	}
	return s.current
}

// Peek returns the mounted instance without mounting one
func (s *Slot[C]) Peek() (C, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.mounted
}

// Unmount closes the current instance, if any
func (s *Slot[C]) Unmount() {
	s.mu.Lock()
	current, mounted := s.current, s.mounted
	var zero C
	s.current = zero
	s.mounted = false
	s.mu.Unlock()

	if mounted {
		current.Close()
	}
}
