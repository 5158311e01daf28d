package command

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/alem-hub/gradebook/internal/domain/gradebook"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
	"github.com/alem-hub/gradebook/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE GRADES COMMAND
// Sets any subset of subjects for an enrolled student. Each subject is
// handled on its own: an invalid grade is reported while the valid ones
// are applied.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateGradesCommand contains the data to update a student's grades.
type UpdateGradesCommand struct {
	// FullName identifies the student, case-insensitively.
	FullName string

	// Grades maps subject to raw grade text. Blank text leaves the subject
	// unchanged.
	Grades map[string]string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c UpdateGradesCommand) Validate() error {
	if shared.IsBlank(c.FullName) {
		return shared.ErrEmptyName
	}
	return nil
}

// SubjectFailure reports why a subject was not updated.
type SubjectFailure struct {
	Subject string
	Raw     string
	Err     error
}

// UpdateGradesResult contains the result of updating grades.
type UpdateGradesResult struct {
	// StudentID is the ID of the updated student.
	StudentID string

	// FullName is the student's canonical full name.
	FullName string

	// Changes are the applied grades in subject order.
	Changes []gradebook.GradeChange

	// Failed are the subjects whose grade was rejected.
	Failed []SubjectFailure

	// Average is the student's average after the update.
	Average float64

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// UpdateGradesHandler handles the UpdateGradesCommand.
type UpdateGradesHandler struct {
	book           *gradebook.Gradebook
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
}

// NewUpdateGradesHandler creates a new UpdateGradesHandler.
func NewUpdateGradesHandler(
	book *gradebook.Gradebook,
	eventPublisher shared.EventPublisher,
	log *slog.Logger,
) *UpdateGradesHandler {
	if eventPublisher == nil {
		eventPublisher = shared.NopPublisher{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &UpdateGradesHandler{
		book:           book,
		eventPublisher: eventPublisher,
		logger:         log.With(logger.Component("update_grades")),
	}
}

// Handle executes the update grades command.
// It fails with ErrStudentNotFound when nobody matches FullName.
func (h *UpdateGradesHandler) Handle(ctx context.Context, cmd UpdateGradesCommand) (*UpdateGradesResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("update_grades: validation failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("update_grades: %w", err)
	}

	s, found, err := h.book.SearchStudent(cmd.FullName)
	if err != nil {
		return nil, fmt.Errorf("update_grades: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("update_grades: %q: %w", cmd.FullName, shared.ErrStudentNotFound)
	}

	result := &UpdateGradesResult{
		StudentID: s.ID,
		FullName:  s.FullName(),
		Changes:   make([]gradebook.GradeChange, 0, len(cmd.Grades)),
		Failed:    make([]SubjectFailure, 0),
		Events:    make([]shared.Event, 0),
	}

	unknown := make([]string, 0)
	for subject := range cmd.Grades {
		if !h.book.HasSubject(subject) {
			unknown = append(unknown, subject)
		}
	}
	sort.Strings(unknown)
	for _, subject := range unknown {
		result.Failed = append(result.Failed, SubjectFailure{
			Subject: subject,
			Raw:     cmd.Grades[subject],
			Err:     h.book.ValidateSubject(subject),
		})
	}

	for _, subject := range h.book.Subjects() {
		raw, ok := cmd.Grades[subject]
		if !ok || shared.IsBlank(raw) {
			continue
		}

		change, err := h.updateOne(s.FullName(), subject, raw)
		if err != nil {
			result.Failed = append(result.Failed, SubjectFailure{Subject: subject, Raw: raw, Err: err})
			h.logger.Warn("grade rejected",
				logger.StudentName(s.FullName()),
				logger.Subject(subject),
				logger.Err(err),
			)
			continue
		}

		result.Changes = append(result.Changes, change)
		h.logger.Info("grade recorded",
			logger.StudentID(change.StudentID),
			logger.StudentName(change.FullName),
			logger.Subject(change.Subject),
			logger.GradeValue(change.Grade),
			slog.Bool("replaced", change.Replaced),
		)

		event := shared.NewGradeRecordedEvent(change.StudentID, change.FullName, change.Subject, change.Grade, change.PreviousGrade())
		if cmd.CorrelationID != "" {
			event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		}
		result.Events = append(result.Events, event)
		if err := h.eventPublisher.Publish(event); err != nil {
			h.logger.Warn("failed to publish event", logger.Err(err))
		}
	}

	result.Average = s.Average()
	return result, nil
}

func (h *UpdateGradesHandler) updateOne(fullName, subject, raw string) (gradebook.GradeChange, error) {
	grade, err := student.ParseGrade(raw)
	if err != nil {
		return gradebook.GradeChange{}, err
	}

	return h.book.RecordGrade(fullName, subject, grade)
}
