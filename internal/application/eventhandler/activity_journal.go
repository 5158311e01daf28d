// Package eventhandler contains domain event handlers. Handlers react to
// changes after they are committed and never modify the gradebook.
package eventhandler

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ACTIVITY JOURNAL
// Keeps the most recent gradebook changes as readable lines and writes an
// audit log record for every event.
// ═══════════════════════════════════════════════════════════════════════════

// DefaultJournalCapacity is used when NewActivityJournal gets capacity <= 0.
const DefaultJournalCapacity = 50

// JournalEntry is one recorded change.
type JournalEntry struct {
	At          time.Time
	Type        shared.EventType
	AggregateID string
	Description string
}

// ActivityJournal is a bounded, concurrency-safe journal of domain events.
type ActivityJournal struct {
	mu       sync.RWMutex
	entries  []JournalEntry
	capacity int
	logger   *slog.Logger
}

// NewActivityJournal creates a journal keeping at most capacity entries.
func NewActivityJournal(capacity int, logger *slog.Logger) *ActivityJournal {
	if capacity <= 0 {
		capacity = DefaultJournalCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ActivityJournal{
		entries:  make([]JournalEntry, 0, capacity),
		capacity: capacity,
		logger:   logger.With("handler", "activity_journal"),
	}
}

// Register subscribes the journal to every event on the bus.
func (j *ActivityJournal) Register(subscriber shared.EventSubscriber) error {
	return subscriber.SubscribeAll(j.Handle)
}

// Handle records the event. It implements shared.EventHandler.
func (j *ActivityJournal) Handle(event shared.Event) error {
	entry := JournalEntry{
		At:          event.OccurredAt(),
		Type:        event.EventType(),
		AggregateID: event.AggregateID(),
		Description: Describe(event),
	}

	j.mu.Lock()
	if len(j.entries) == j.capacity {
		copy(j.entries, j.entries[1:])
		j.entries = j.entries[:len(j.entries)-1]
	}
	j.entries = append(j.entries, entry)
	j.mu.Unlock()

	j.logger.Debug("gradebook activity",
		"event_type", entry.Type,
		"aggregate_id", entry.AggregateID,
		"description", entry.Description,
	)
	return nil
}

// Recent returns up to n entries, newest first.
func (j *ActivityJournal) Recent(n int) []JournalEntry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if n <= 0 || n > len(j.entries) {
		n = len(j.entries)
	}

	out := make([]JournalEntry, 0, n)
	for i := len(j.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, j.entries[i])
	}
	return out
}

// Len returns the number of stored entries.
func (j *ActivityJournal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return len(j.entries)
}

// Describe renders an event as a single line.
func Describe(event shared.Event) string {
	switch e := event.(type) {
	case shared.StudentEnrolledEvent:
		return fmt.Sprintf("%s enrolled with %d grade(s)", e.FullName, e.GradeCount)
	case shared.StudentRemovedEvent:
		return fmt.Sprintf("%s removed (average %.2f)", e.FullName, e.Average)
	case shared.GradeRecordedEvent:
		if e.Previous != nil {
			return fmt.Sprintf("%s: %s changed from %d to %d", e.FullName, e.Subject, *e.Previous, e.Grade)
		}
		return fmt.Sprintf("%s: %s set to %d", e.FullName, e.Subject, e.Grade)
	case shared.RosterImportedEvent:
		return fmt.Sprintf("roster %s imported: %d added, %d skipped, %d failed", e.Source, e.Added, e.Skipped, e.Failed)
	default:
		return string(event.EventType())
	}
}
