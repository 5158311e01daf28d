package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alem-hub/gradebook/internal/domain/gradebook"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REMOVE STUDENT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// RemoveStudentCommand removes a student by full name.
type RemoveStudentCommand struct {
	FullName string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RemoveStudentCommand) Validate() error {
	if shared.IsBlank(c.FullName) {
		return shared.ErrEmptyName
	}
	return nil
}

// RemoveStudentResult contains the result of removing a student.
type RemoveStudentResult struct {
	StudentID string
	FullName  string

	// Average is the removed student's final average.
	Average float64

	// Events contains domain events generated.
	Events []shared.Event
}

// RemoveStudentHandler handles the RemoveStudentCommand.
type RemoveStudentHandler struct {
	book           *gradebook.Gradebook
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
}

// NewRemoveStudentHandler creates a new RemoveStudentHandler.
func NewRemoveStudentHandler(
	book *gradebook.Gradebook,
	eventPublisher shared.EventPublisher,
	log *slog.Logger,
) *RemoveStudentHandler {
	if eventPublisher == nil {
		eventPublisher = shared.NopPublisher{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &RemoveStudentHandler{
		book:           book,
		eventPublisher: eventPublisher,
		logger:         log.With(logger.Component("remove_student")),
	}
}

// Handle executes the remove student command.
// It fails with ErrStudentNotFound when nobody matches.
func (h *RemoveStudentHandler) Handle(ctx context.Context, cmd RemoveStudentCommand) (*RemoveStudentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("remove_student: validation failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("remove_student: %w", err)
	}

	removed, err := h.book.RemoveStudent(cmd.FullName)
	if err != nil {
		return nil, fmt.Errorf("remove_student: %w", err)
	}

	result := &RemoveStudentResult{
		StudentID: removed.ID,
		FullName:  removed.FullName(),
		Average:   removed.Average(),
	}

	h.logger.Info("student removed",
		logger.StudentID(result.StudentID),
		logger.StudentName(result.FullName),
	)

	event := shared.NewStudentRemovedEvent(result.StudentID, result.FullName, result.Average)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	result.Events = []shared.Event{event}
	if err := h.eventPublisher.Publish(event); err != nil {
		h.logger.Warn("failed to publish event", logger.Err(err))
	}

	return result, nil
}
