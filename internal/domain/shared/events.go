package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something that changed in the gradebook.
const (
	// Student events
	EventStudentEnrolled EventType = "student.enrolled"
	EventStudentRemoved  EventType = "student.removed"

	// Grade events
	EventGradeRecorded EventType = "grade.recorded"

	// System events
	EventRosterImported EventType = "system.roster_imported"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Student Events
// ═══════════════════════════════════════════════════════════════════════════

// StudentEnrolledEvent is emitted when a student is added to the gradebook.
type StudentEnrolledEvent struct {
	BaseEvent
	FullName   string `json:"full_name"`
	GradeCount int    `json:"grade_count"`
}

// Payload implements Event interface.
func (e StudentEnrolledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"full_name":   e.FullName,
		"grade_count": e.GradeCount,
	}
}

// NewStudentEnrolledEvent creates a new StudentEnrolledEvent.
func NewStudentEnrolledEvent(studentID, fullName string, gradeCount int) StudentEnrolledEvent {
	return StudentEnrolledEvent{
		BaseEvent:  NewBaseEvent(EventStudentEnrolled, studentID),
		FullName:   fullName,
		GradeCount: gradeCount,
	}
}

// StudentRemovedEvent is emitted when a student is removed from the gradebook.
type StudentRemovedEvent struct {
	BaseEvent
	FullName string  `json:"full_name"`
	Average  float64 `json:"average"`
}

// Payload implements Event interface.
func (e StudentRemovedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"full_name": e.FullName,
		"average":   e.Average,
	}
}

// NewStudentRemovedEvent creates a new StudentRemovedEvent.
func NewStudentRemovedEvent(studentID, fullName string, average float64) StudentRemovedEvent {
	return StudentRemovedEvent{
		BaseEvent: NewBaseEvent(EventStudentRemoved, studentID),
		FullName:  fullName,
		Average:   average,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Grade Events
// ═══════════════════════════════════════════════════════════════════════════

// GradeRecordedEvent is emitted when a grade is added or overwritten.
type GradeRecordedEvent struct {
	BaseEvent
	FullName string `json:"full_name"`
	Subject  string `json:"subject"`
	Grade    int    `json:"grade"`
	Previous *int   `json:"previous,omitempty"` // nil when the subject had no grade
}

// Payload implements Event interface.
func (e GradeRecordedEvent) Payload() map[string]interface{} {
	payload := map[string]interface{}{
		"full_name": e.FullName,
		"subject":   e.Subject,
		"grade":     e.Grade,
	}
	if e.Previous != nil {
		payload["previous"] = *e.Previous
	}
	return payload
}

// IsUpdate reports whether the grade replaced an existing one.
func (e GradeRecordedEvent) IsUpdate() bool {
	return e.Previous != nil
}

// NewGradeRecordedEvent creates a new GradeRecordedEvent.
func NewGradeRecordedEvent(studentID, fullName, subject string, grade int, previous *int) GradeRecordedEvent {
	return GradeRecordedEvent{
		BaseEvent: NewBaseEvent(EventGradeRecorded, studentID),
		FullName:  fullName,
		Subject:   subject,
		Grade:     grade,
		Previous:  previous,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// System Events
// ═══════════════════════════════════════════════════════════════════════════

// RosterImportedEvent is emitted after a roster file has been processed.
type RosterImportedEvent struct {
	BaseEvent
	Source  string `json:"source"`
	Added   int    `json:"added"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

// Payload implements Event interface.
func (e RosterImportedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"source":  e.Source,
		"added":   e.Added,
		"skipped": e.Skipped,
		"failed":  e.Failed,
	}
}

// NewRosterImportedEvent creates a new RosterImportedEvent.
func NewRosterImportedEvent(source string, added, skipped, failed int) RosterImportedEvent {
	return RosterImportedEvent{
		BaseEvent: NewBaseEvent(EventRosterImported, source),
		Source:    source,
		Added:     added,
		Skipped:   skipped,
		Failed:    failed,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Bus Contracts
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(Event) error { return nil }
