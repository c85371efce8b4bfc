package orchestrator

import (
	"errors"
	"fmt"
)

// releaseStack holds acquired resources and releases them in reverse
// acquisition order. unwind runs each release exactly once.
type releaseStack struct {
	entries []releaseEntry
	done    bool
}

type releaseEntry struct {
	name    string
	release func() error
}

// push records a successfully acquired resource.
func (s *releaseStack) push(name string, release func() error) {
	s.entries = append(s.entries, releaseEntry{name: name, release: release})
}

// unwind releases everything pushed so far, newest first.
// Calls after the first are no-ops.
func (s *releaseStack) unwind() error {
	if s.done {
		return nil
	}
	s.done = true

	var errs []error
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if err := e.release(); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", e.name, err))
		}
	}
	s.entries = nil
	return errors.Join(errs...)
}
