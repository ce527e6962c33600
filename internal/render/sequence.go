package render

import (
	"fmt"
	"sync/atomic"
)

// Sequencer hands out per-format sequence numbers starting at 1. Each format
// has its own counter: number 5 in one format says nothing about number 5 in
// another. Safe for concurrent use.
type Sequencer struct {
	counters map[string]*atomic.Int64
}

// NewSequencer creates counters for the named formats.
func NewSequencer(formats ...string) *Sequencer {
	s := &Sequencer{counters: make(map[string]*atomic.Int64, len(formats))}
	for _, f := range formats {
		s.counters[f] = new(atomic.Int64)
	}
	return s
}

// Next claims the next number for format.
func (s *Sequencer) Next(format string) (int, error) {
	c, ok := s.counters[format]
	if !ok {
		return 0, fmt.Errorf("sequencer: unknown format %q", format)
	}
	return int(c.Add(1)), nil
}

// Peek returns the last number handed out for format, 0 if none.
func (s *Sequencer) Peek(format string) int {
	c, ok := s.counters[format]
	if !ok {
		return 0
	}
	return int(c.Load())
}
