// Package dedupe tracks report ids seen within a single batch.
package dedupe

// Set is an insertion-ordered id set. It is owned by one invocation and is
// not safe for concurrent use.
type Set struct {
	seen  map[string]struct{}
	order []string
}

// NewSet creates an empty Set sized for n ids.
func NewSet(n int) *Set {
	if n < 0 {
		n = 0
	}
	return &Set{
		seen:  make(map[string]struct{}, n),
		order: make([]string, 0, n),
	}
}

// SeenAndRecord returns true if id was already recorded, false if it was
// newly recorded.
func (s *Set) SeenAndRecord(id string) bool {
	if _, ok := s.seen[id]; ok {
		return true
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
	return false
}

// IDs returns the recorded ids in first-seen order.
func (s *Set) IDs() []string {
	return append([]string(nil), s.order...)
}

// Distinct returns ids with repeats removed, keeping first-seen order.
func Distinct(ids []string) []string {
	s := NewSet(len(ids))
	for _, id := range ids {
		s.SeenAndRecord(id)
	}
	return s.IDs()
}
