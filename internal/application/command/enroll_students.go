// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alem-hub/gradebook/internal/domain/gradebook"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
	"github.com/alem-hub/gradebook/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLL STUDENTS COMMAND
// Adds one or more students with their initial grades.
// Entries are processed in order; every entry that succeeds stays enrolled
// even if a later one fails.
// ══════════════════════════════════════════════════════════════════════════════

// EnrollEntry describes a single student to enroll.
type EnrollEntry struct {
	FirstName string
	Surname   string

	// Grades maps subject name to the raw grade text as typed by the operator
	// or read from a roster. Blank text means "no grade".
	Grades map[string]string

	// Origin locates the entry in its source, e.g. "row 4". Optional.
	Origin string
}

// EnrollStudentsCommand contains the data to enroll a batch of students.
type EnrollStudentsCommand struct {
	// Entries are processed in order.
	Entries []EnrollEntry

	// StopOnError stops at the first failed entry instead of continuing.
	// Entries after the failure are counted in EnrollStudentsResult.Pending.
	StopOnError bool

	// Source names where the batch came from (a roster path). When set, a
	// RosterImported event is emitted after the batch.
	Source string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c EnrollStudentsCommand) Validate() error {
	if len(c.Entries) == 0 {
		return errors.New("enroll_students: at least one entry is required")
	}
	return nil
}

// EnrollFailure reports why an entry was not enrolled.
type EnrollFailure struct {
	// Index is the 1-based position of the entry in the batch.
	Index int
	Entry EnrollEntry
	Err   error
}

// EnrollStudentsResult contains the result of a batch enrollment.
type EnrollStudentsResult struct {
	// Added are the enrolled students in batch order.
	Added []*student.Student

	// Skipped are the full names already present in the gradebook.
	Skipped []string

	// Failed are the entries rejected by validation.
	Failed []EnrollFailure

	// Pending is the number of entries left unprocessed after StopOnError.
	Pending int

	// Events contains domain events generated.
	Events []shared.Event

	// CompletedAt is when the batch finished.
	CompletedAt time.Time
}

// HasFailures reports whether any entry failed.
func (r *EnrollStudentsResult) HasFailures() bool {
	return len(r.Failed) > 0
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// EnrollStudentsHandler handles the EnrollStudentsCommand.
type EnrollStudentsHandler struct {
	book           *gradebook.Gradebook
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
}

// NewEnrollStudentsHandler creates a new EnrollStudentsHandler.
func NewEnrollStudentsHandler(
	book *gradebook.Gradebook,
	eventPublisher shared.EventPublisher,
	log *slog.Logger,
) *EnrollStudentsHandler {
	if eventPublisher == nil {
		eventPublisher = shared.NopPublisher{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &EnrollStudentsHandler{
		book:           book,
		eventPublisher: eventPublisher,
		logger:         log.With(logger.Component("enroll_students")),
	}
}

// Handle executes the enroll students command.
// The returned error is non-nil only for an invalid command or a cancelled
// context; per-entry problems are reported in the result.
func (h *EnrollStudentsHandler) Handle(ctx context.Context, cmd EnrollStudentsCommand) (*EnrollStudentsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("enroll_students: validation failed: %w", err)
	}

	result := &EnrollStudentsResult{
		Added:   make([]*student.Student, 0, len(cmd.Entries)),
		Skipped: make([]string, 0),
		Failed:  make([]EnrollFailure, 0),
		Events:  make([]shared.Event, 0),
	}

	for i, entry := range cmd.Entries {
		if err := ctx.Err(); err != nil {
			result.Pending = len(cmd.Entries) - i
			h.finish(cmd, result)
			return result, fmt.Errorf("enroll_students: %w", err)
		}

		if err := h.enrollOne(cmd, entry, result); err != nil {
			result.Failed = append(result.Failed, EnrollFailure{Index: i + 1, Entry: entry, Err: err})
			h.logger.Warn("entry rejected",
				slog.Int("index", i+1),
				slog.String("origin", entry.Origin),
				logger.Err(err),
			)
			if cmd.StopOnError {
				result.Pending = len(cmd.Entries) - i - 1
				break
			}
		}
	}

	h.finish(cmd, result)
	return result, nil
}

// enrollOne builds, grades and adds a single student. A name that is already
// enrolled is recorded as skipped and is not an error.
func (h *EnrollStudentsHandler) enrollOne(cmd EnrollStudentsCommand, entry EnrollEntry, result *EnrollStudentsResult) error {
	s, err := student.NewStudent(entry.FirstName, entry.Surname)
	if err != nil {
		return err
	}

	if h.book.Contains(s.FullName()) {
		h.skip(s, result)
		return nil
	}

	if err := h.applyGrades(s, entry.Grades); err != nil {
		return err
	}

	if err := h.book.AddStudent(s); err != nil {
		if errors.Is(err, shared.ErrStudentAlreadyExists) {
			h.skip(s, result)
			return nil
		}
		return err
	}

	result.Added = append(result.Added, s)
	h.logger.Info("student enrolled",
		logger.StudentID(s.ID),
		logger.StudentName(s.FullName()),
		slog.Int("grades", s.GradeCount()),
	)

	enrolled := shared.NewStudentEnrolledEvent(s.ID, s.FullName(), s.GradeCount())
	if cmd.CorrelationID != "" {
		enrolled.BaseEvent = enrolled.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	h.publish(enrolled, result)

	for _, subject := range s.GradedSubjects() {
		grade, _ := s.Grade(subject)
		recorded := shared.NewGradeRecordedEvent(s.ID, s.FullName(), subject, grade, nil)
		if cmd.CorrelationID != "" {
			recorded.BaseEvent = recorded.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		}
		h.publish(recorded, result)
	}

	return nil
}

// applyGrades validates every subject and grade of an entry before the
// student is added, so a rejected entry leaves no trace in the gradebook.
// Subjects are applied in gradebook order.
func (h *EnrollStudentsHandler) applyGrades(s *student.Student, grades map[string]string) error {
	for subject := range grades {
		if err := h.book.ValidateSubject(subject); err != nil {
			return err
		}
	}

	for _, subject := range h.book.Subjects() {
		raw, ok := grades[subject]
		if !ok || shared.IsBlank(raw) {
			continue
		}

		grade, err := student.ParseGrade(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", subject, err)
		}
		if err := s.AddGrade(subject, grade); err != nil {
			return fmt.Errorf("%s: %w", subject, err)
		}
	}
	return nil
}

func (h *EnrollStudentsHandler) skip(s *student.Student, result *EnrollStudentsResult) {
	result.Skipped = append(result.Skipped, s.FullName())
	h.logger.Debug("student already enrolled, skipping", logger.StudentName(s.FullName()))
}

func (h *EnrollStudentsHandler) finish(cmd EnrollStudentsCommand, result *EnrollStudentsResult) {
	result.CompletedAt = time.Now().UTC()

	if cmd.Source == "" {
		return
	}

	imported := shared.NewRosterImportedEvent(cmd.Source, len(result.Added), len(result.Skipped), len(result.Failed))
	if cmd.CorrelationID != "" {
		imported.BaseEvent = imported.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	h.publish(imported, result)

	h.logger.Info("roster imported",
		logger.Source(cmd.Source),
		logger.Count("added", len(result.Added)),
		logger.Count("skipped", len(result.Skipped)),
		logger.Count("failed", len(result.Failed)),
	)
}

func (h *EnrollStudentsHandler) publish(event shared.Event, result *EnrollStudentsResult) {
	result.Events = append(result.Events, event)
	if err := h.eventPublisher.Publish(event); err != nil {
		h.logger.Warn("failed to publish event",
			slog.String("event_type", string(event.EventType())),
			logger.Err(err),
		)
	}
}
