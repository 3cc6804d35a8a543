package encounter

import "sync/atomic"

// Sequence hands out monotonically increasing combatant IDs.
type Sequence struct {
	last atomic.Int64
}

// NewSequence returns a Sequence whose first ID is after+1.
func NewSequence(after int64) *Sequence {
	s := &Sequence{}
	s.last.Store(after)
	return s
}

// Next returns the next ID.
func (s *Sequence) Next() int64 { return s.last.Add(1) }

// Observe advances the sequence past id so restored combatants never collide
// with new ones.
func (s *Sequence) Observe(id int64) {
	for {
		cur := s.last.Load()
		if id <= cur || s.last.CompareAndSwap(cur, id) {
			return
		}
	}
}
