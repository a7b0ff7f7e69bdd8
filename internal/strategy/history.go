// internal/strategy/history.go
package strategy

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/clipsense/clipsense/pkg/types"
)

// History configuration constants
const (
	DefaultHistoryCapacity = 500

	// DecayWindow is the e-folding age of a history entry's vote weight.
	DecayWindow = 30 * 24 * time.Hour

	// satisfactionBoost scales how strongly a recorded satisfaction score
	// amplifies an entry's weight.
	satisfactionBoost = 0.5
)

// HistoryEntry is one recorded strategy decision.
type HistoryEntry struct {
	ContentType  types.ContentType
	Strategy     types.ProcessingStrategy
	Timestamp    time.Time
	Satisfaction *float64
}

// HistoryStore persists history entries behind the in-memory ring.
type HistoryStore interface {
	Append(entry HistoryEntry) error
	Load(limit int) ([]HistoryEntry, error)
	Close() error
}

// HistoryRing is a fixed-capacity ring buffer of decisions. The ring caps
// memory regardless of how many decisions are recorded.
type HistoryRing struct {
	mu       sync.Mutex
	entries  []HistoryEntry
	capacity int
	next     int
	full     bool
}

// NewHistoryRing creates a ring with the given capacity.
func NewHistoryRing(capacity int) *HistoryRing {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &HistoryRing{
		entries:  make([]HistoryEntry, capacity),
		capacity: capacity,
	}
}

// Record appends a decision made now.
func (r *HistoryRing) Record(contentType types.ContentType, strategy types.ProcessingStrategy) HistoryEntry {
	entry := HistoryEntry{
		ContentType: contentType,
		Strategy:    strategy,
		Timestamp:   time.Now(),
	}
	r.Append(entry)
	return entry
}

// Append adds an entry, overwriting the oldest slot when full.
func (r *HistoryRing) Append(entry HistoryEntry) {
	r.mu.Lock()
	r.entries[r.next] = entry
	r.next = (r.next + 1) % r.capacity
	if r.next == 0 {
		r.full = true
	}
	r.mu.Unlock()
}

// Len reports how many entries the ring holds.
func (r *HistoryRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return r.capacity
	}
	return r.next
}

// AttachSatisfaction sets the satisfaction score on the most recent entry
// for a content type.
func (r *HistoryRing) AttachSatisfaction(contentType types.ContentType, satisfaction float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := r.next
	if r.full {
		count = r.capacity
	}
	for i := 0; i < count; i++ {
		idx := (r.next - 1 - i + r.capacity) % r.capacity
		if r.entries[idx].ContentType == contentType {
			s := satisfaction
			r.entries[idx].Satisfaction = &s
			return
		}
	}
}

// WeightedVote computes the time-decayed vote over past strategies for a
// content type. Weight is exp(-age/DecayWindow), amplified by recorded
// satisfaction. Returns the winning strategy and its vote share, or false
// when no history exists for the content type.
func (r *HistoryRing) WeightedVote(contentType types.ContentType) (types.ProcessingStrategy, float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	votes := make(map[types.ProcessingStrategy]float64)
	var total float64

	count := r.next
	if r.full {
		count = r.capacity
	}
	for i := 0; i < count; i++ {
		entry := &r.entries[i]
		if entry.ContentType != contentType {
			continue
		}

		age := now.Sub(entry.Timestamp)
		weight := math.Exp(-float64(age) / float64(DecayWindow))
		if entry.Satisfaction != nil {
			weight *= 1 + satisfactionBoost*(*entry.Satisfaction-0.5)*2
		}
		if weight <= 0 {
			continue
		}

		votes[entry.Strategy] += weight
		total += weight
	}

	if total == 0 {
		return "", 0, false
	}

	winner, winnerWeight := tallyWinner(votes)
	return winner, winnerWeight / total, true
}

// tallyWinner picks the strategy with the highest vote weight. Exact ties
// resolve to the earlier strategy in the canonical order, so repeated votes
// over the same history always agree.
func tallyWinner(votes map[types.ProcessingStrategy]float64) (types.ProcessingStrategy, float64) {
	var winner types.ProcessingStrategy
	var winnerWeight float64

	seen := make(map[types.ProcessingStrategy]bool, len(votes))
	for _, strategy := range types.ValidStrategies() {
		weight, ok := votes[strategy]
		if !ok {
			continue
		}
		seen[strategy] = true
		if weight > winnerWeight {
			winner = strategy
			winnerWeight = weight
		}
	}

	// Custom strategies outside the canonical list tie-break lexically.
	var extras []types.ProcessingStrategy
	for strategy := range votes {
		if !seen[strategy] {
			extras = append(extras, strategy)
		}
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })
	for _, strategy := range extras {
		if votes[strategy] > winnerWeight {
			winner = strategy
			winnerWeight = votes[strategy]
		}
	}

	return winner, winnerWeight
}
