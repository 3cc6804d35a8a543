package history

import (
	"fmt"
	"math"
)

// DefaultCapacity is the number of entries retained before FIFO eviction.
const DefaultCapacity = 200

// Decay configures age weighting at aggregation time.
//
// weight(rank) = BaseWeight * 0.5^(rank/HalfLife), rank 0 being the most recent entry.
type Decay struct {
	BaseWeight float64
	HalfLife   float64
}

// DefaultDecay halves every 18 ranks, so an entry 50 battles old weighs ~15% of the newest.
func DefaultDecay() Decay {
	return Decay{BaseWeight: 1.0, HalfLife: 18}
}

// Weight returns the decay weight for an entry at rank battles ago.
//
// Precondition: rank >= 0.
// Postcondition: 0 < result <= BaseWeight; strictly decreasing in rank.
func (d Decay) Weight(rank int) float64 {
	if d.HalfLife <= 0 {
		return d.BaseWeight
	}
	return d.BaseWeight * math.Pow(0.5, float64(rank)/d.HalfLife)
}

// Weighted pairs an entry with its decay weight.
type Weighted struct {
	Entry  Entry
	Rank   int
	Weight float64
}

// Log is a fixed-capacity ring buffer of entries in chronological order.
// It is not safe for concurrent use; the owning combatant serialises access.
//
// Invariant: Len() <= Cap().
type Log struct {
	buf   []Entry
	head  int // index of the oldest entry
	size  int
	total int
	decay Decay
}

// NewLog creates an empty Log.
//
// Precondition: capacity > 0.
// Postcondition: Len() == 0, Cap() == capacity.
func NewLog(capacity int, decay Decay) *Log {
	if capacity <= 0 {
		panic(fmt.Sprintf("history: invariant violated: capacity must be > 0, got %d", capacity))
	}
	return &Log{buf: make([]Entry, capacity), decay: decay}
}

// Append stores a copy of e, evicting the oldest entry when the log is full.
//
// Postcondition: Len() == min(previous Len()+1, Cap()); e is the most recent entry.
func (l *Log) Append(e Entry) {
	l.checkInvariant()
	c := len(l.buf)
	if l.size < c {
		l.buf[(l.head+l.size)%c] = e.Clone()
		l.size++
	} else {
		l.buf[l.head] = e.Clone()
		l.head = (l.head + 1) % c
	}
	l.total++
}

// Entries returns copies of all retained entries, oldest first and most recent last.
func (l *Log) Entries() []Entry {
	out := make([]Entry, 0, l.size)
	for i := 0; i < l.size; i++ {
		out = append(out, l.buf[(l.head+i)%len(l.buf)].Clone())
	}
	return out
}

// Latest returns the most recent entry, or (Entry{}, false) when the log is empty.
func (l *Log) Latest() (Entry, bool) {
	if l.size == 0 {
		return Entry{}, false
	}
	return l.buf[(l.head+l.size-1)%len(l.buf)].Clone(), true
}

// Len returns the number of retained entries.
func (l *Log) Len() int { return l.size }

// Cap returns the fixed capacity.
func (l *Log) Cap() int { return len(l.buf) }

// Total returns the number of entries ever appended, including evicted ones.
func (l *Log) Total() int { return l.total }

// Decay returns the log's decay configuration.
func (l *Log) Decay() Decay { return l.decay }

// DecayedWeight returns the aggregation weight of the entry rank positions back
// from the most recent (rank 0).
func (l *Log) DecayedWeight(rank int) float64 {
	return l.decay.Weight(rank)
}

// Weighted returns every retained entry paired with its decay weight, oldest first.
func (l *Log) Weighted() []Weighted {
	entries := l.Entries()
	out := make([]Weighted, len(entries))
	for i, e := range entries {
		rank := len(entries) - 1 - i
		out[i] = Weighted{Entry: e, Rank: rank, Weight: l.decay.Weight(rank)}
	}
	return out
}

// Restore rebuilds a log from persisted entries, keeping only the newest Cap()
// entries and recording total as the lifetime append count.
func (l *Log) Restore(entries []Entry, total int) {
	l.head, l.size, l.total = 0, 0, 0
	start := 0
	if len(entries) > len(l.buf) {
		start = len(entries) - len(l.buf)
	}
	for _, e := range entries[start:] {
		l.Append(e)
	}
	if total > l.total {
		l.total = total
	}
}

func (l *Log) checkInvariant() {
	if l.size > len(l.buf) {
		panic(fmt.Sprintf("history: invariant violated: %d entries exceed capacity %d", l.size, len(l.buf)))
	}
}
