package diagnostics

import "sync"

// Reporter is the narrow interface the solver reports through.
type Reporter interface {
	Report(err *DiagnosticError)
}

// Sink collects diagnostics in report order. It is append-only; the solver
// never reads it back.
type Sink struct {
	mu     sync.Mutex
	errors []*DiagnosticError
	counts map[ErrorCode]int
}

// NewSink creates an empty sink.
func NewSink() *Sink {
	return &Sink{counts: make(map[ErrorCode]int)}
}

// Report implements Reporter.
func (s *Sink) Report(err *DiagnosticError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.counts == nil {
		s.counts = make(map[ErrorCode]int)
	}
	s.errors = append(s.errors, err)
	s.counts[err.Code]++
}

// Len returns the number of collected diagnostics.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errors)
}

// Count returns how many diagnostics carry code.
func (s *Sink) Count(code ErrorCode) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[code]
}

// HasErrors returns true if anything was reported.
func (s *Sink) HasErrors() bool {
	return s.Len() > 0
}

// Diagnostics returns a copy of all diagnostics in report order.
func (s *Sink) Diagnostics() []*DiagnosticError {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*DiagnosticError, len(s.errors))
	copy(result, s.errors)
	return result
}

// Drain returns all diagnostics and empties the sink.
func (s *Sink) Drain() []*DiagnosticError {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := s.errors
	s.errors = nil
	s.counts = make(map[ErrorCode]int)
	return result
}
