// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/alem-hub/gradebook/internal/domain/gradebook"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLASS REPORT QUERY
// Lists every student with grades, average, letter and result, in one of
// the gradebook's orderings.
// ══════════════════════════════════════════════════════════════════════════════

// Order selects how the report rows are ordered.
type Order string

const (
	// OrderEnrollment keeps insertion order.
	OrderEnrollment Order = "enrollment"
	// OrderAverage uses SortByAverage.
	OrderAverage Order = "average"
	// OrderName uses SortByName.
	OrderName Order = "name"
	// OrderSubject uses SortBySubject; requires Subject.
	OrderSubject Order = "subject"
)

// IsValid checks if the order is known.
func (o Order) IsValid() bool {
	switch o {
	case OrderEnrollment, OrderAverage, OrderName, OrderSubject:
		return true
	}
	return false
}

// ClassReportQuery contains the report parameters.
type ClassReportQuery struct {
	// Order defaults to OrderEnrollment.
	Order Order

	// Descending applies to OrderAverage only.
	Descending bool

	// Subject is required for OrderSubject.
	Subject string
}

// Validate checks the query parameters and fills defaults.
func (q *ClassReportQuery) Validate() error {
	if q.Order == "" {
		q.Order = OrderEnrollment
	}
	if !q.Order.IsValid() {
		return fmt.Errorf("unknown order %q", q.Order)
	}
	if q.Order == OrderSubject && shared.IsBlank(q.Subject) {
		return fmt.Errorf("%w: subject is required for subject order", shared.ErrInvalidSubject)
	}
	return nil
}

// GradeCellDTO is one subject column of a report row.
type GradeCellDTO struct {
	Subject string `json:"subject"`
	Score   int    `json:"score"`

	// Recorded is false when the student has no grade in the subject.
	Recorded bool `json:"recorded"`
}

// StudentReportDTO is one report row.
type StudentReportDTO struct {
	StudentID string         `json:"student_id"`
	FullName  string         `json:"full_name"`
	Grades    []GradeCellDTO `json:"grades"`
	Average   float64        `json:"average"`
	Letter    string         `json:"letter"`
	Result    string         `json:"result"`

	// Graded is false when the student has no grade at all.
	Graded bool `json:"graded"`
}

// ClassReport contains the result of the class report query.
type ClassReport struct {
	Students []StudentReportDTO `json:"students"`
	Subjects []string           `json:"subjects"`
	Summary  gradebook.Summary  `json:"summary"`

	Order       Order     `json:"order"`
	GeneratedAt time.Time `json:"generated_at"`
}

// IsEmpty reports whether the report has no rows.
func (r *ClassReport) IsEmpty() bool {
	return len(r.Students) == 0
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ClassReportHandler handles the ClassReportQuery.
type ClassReportHandler struct {
	book       *gradebook.Gradebook
	classifier student.Classifier
}

// NewClassReportHandler creates a new ClassReportHandler.
func NewClassReportHandler(book *gradebook.Gradebook, classifier student.Classifier) *ClassReportHandler {
	return &ClassReportHandler{
		book:       book,
		classifier: classifier,
	}
}

// Handle executes the class report query.
func (h *ClassReportHandler) Handle(ctx context.Context, query ClassReportQuery) (*ClassReport, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "ClassReport", shared.ErrInvalidInput, err.Error(), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	students, err := h.ordered(query)
	if err != nil {
		return nil, err
	}

	subjects := h.book.Subjects()
	rows := make([]StudentReportDTO, 0, len(students))
	for _, s := range students {
		rows = append(rows, h.toDTO(s, subjects))
	}

	return &ClassReport{
		Students:    rows,
		Subjects:    subjects,
		Summary:     h.book.Summary(h.classifier),
		Order:       query.Order,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (h *ClassReportHandler) ordered(query ClassReportQuery) ([]*student.Student, error) {
	switch query.Order {
	case OrderAverage:
		return h.book.SortByAverage(query.Descending), nil
	case OrderName:
		return h.book.SortByName(), nil
	case OrderSubject:
		return h.book.SortBySubject(query.Subject)
	default:
		return h.book.Students(), nil
	}
}

func (h *ClassReportHandler) toDTO(s *student.Student, subjects []string) StudentReportDTO {
	cells := make([]GradeCellDTO, 0, len(subjects))
	for _, subject := range subjects {
		score, ok := s.Grade(subject)
		cells = append(cells, GradeCellDTO{Subject: subject, Score: score, Recorded: ok})
	}

	avg := s.Average()
	return StudentReportDTO{
		StudentID: s.ID,
		FullName:  s.FullName(),
		Grades:    cells,
		Average:   avg,
		Letter:    string(student.LetterFor(avg)),
		Result:    string(h.classifier.Result(avg)),
		Graded:    s.HasGrades(),
	}
}
