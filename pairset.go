package dedupe

import "sync"

// PairSet records unordered pairs of entity uuids that have already been
// compared, so a pair is never checked twice within a run. It is safe for
// concurrent use.
type PairSet struct {
	mu    sync.Mutex
	pairs map[[2]string]struct{}
}

// NewPairSet creates an empty pair set.
func NewPairSet() *PairSet {
	return &PairSet{pairs: make(map[[2]string]struct{})}
}

// key normalizes a pair so (a, b) and (b, a) map to the same entry.
func key(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// Add records the pair.
func (s *PairSet) Add(a, b string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs[key(a, b)] = struct{}{}
}

// Contains reports whether the pair has been recorded, in either order.
func (s *PairSet) Contains(a, b string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pairs[key(a, b)]
	return ok
}

// Len returns the number of recorded pairs.
func (s *PairSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pairs)
}
