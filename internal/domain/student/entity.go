package student

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student is a person enrolled in a gradebook together with their grades.
type Student struct {
	// ID is an internal identifier (UUID string) used in events and logs.
	ID string

	// FirstName is the trimmed first name.
	FirstName string

	// Surname is the trimmed surname.
	Surname string

	// CreatedAt is when the student was constructed.
	CreatedAt time.Time

	// UpdatedAt is when a grade was last recorded.
	UpdatedAt time.Time

	grades map[string]int
	// order keeps subjects in the order they were first graded.
	order []string
}

// NewStudent creates a student after validating both names.
// Names are stored trimmed; the grade map starts empty.
func NewStudent(firstName, surname string) (*Student, error) {
	firstName = strings.TrimSpace(firstName)
	surname = strings.TrimSpace(surname)

	if firstName == "" || surname == "" {
		return nil, shared.ErrEmptyName
	}

	now := time.Now().UTC()

	return &Student{
		ID:        uuid.NewString(),
		FirstName: firstName,
		Surname:   surname,
		CreatedAt: now,
		UpdatedAt: now,
		grades:    make(map[string]int),
		order:     make([]string, 0),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// FullName returns first name and surname joined by a single space.
func (s *Student) FullName() string {
	return s.FirstName + " " + s.Surname
}

// NormalizedName returns the case-insensitive lookup key of the full name.
func (s *Student) NormalizedName() string {
	return shared.NormalizeName(s.FullName())
}

// MatchesName reports whether name refers to this student,
// ignoring case and surrounding whitespace.
func (s *Student) MatchesName(name string) bool {
	return s.NormalizedName() == shared.NormalizeName(name)
}

// AddGrade records grade for subject, overwriting any previous value.
// The subject name is not validated here.
func (s *Student) AddGrade(subject string, grade int) error {
	if _, err := NewGrade(grade); err != nil {
		return err
	}

	if _, exists := s.grades[subject]; !exists {
		s.order = append(s.order, subject)
	}
	s.grades[subject] = grade
	s.UpdatedAt = time.Now().UTC()

	return nil
}

// Grade returns the grade for subject and whether one is recorded.
func (s *Student) Grade(subject string) (int, bool) {
	g, ok := s.grades[subject]
	return g, ok
}

// GradeOrZero returns the grade for subject, or 0 if none is recorded.
func (s *Student) GradeOrZero(subject string) int {
	return s.grades[subject]
}

// Grades returns a copy of all recorded grades.
func (s *Student) Grades() map[string]int {
	out := make(map[string]int, len(s.grades))
	for subject, g := range s.grades {
		out[subject] = g
	}
	return out
}

// GradedSubjects returns the graded subjects in the order they were first graded.
func (s *Student) GradedSubjects() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// GradeCount returns the number of recorded grades.
func (s *Student) GradeCount() int {
	return len(s.grades)
}

// HasGrades reports whether any grade is recorded.
func (s *Student) HasGrades() bool {
	return len(s.grades) > 0
}

// Average returns the arithmetic mean of all recorded grades, or 0 if none.
func (s *Student) Average() float64 {
	if len(s.grades) == 0 {
		return 0
	}

	total := 0
	for _, g := range s.grades {
		total += g
	}
	return float64(total) / float64(len(s.grades))
}

// Letter returns the letter band of the average.
func (s *Student) Letter() Letter {
	return LetterFor(s.Average())
}

// Result classifies the average with the default marks.
func (s *Student) Result() Result {
	return ResultFor(s.Average())
}

// String returns a string representation of the student for logging.
func (s *Student) String() string {
	return fmt.Sprintf(
		"Student{ID: %s, Name: %s, Grades: %d, Average: %.2f}",
		s.ID, s.FullName(), len(s.grades), s.Average(),
	)
}

// Clone returns a deep copy of the student.
func (s *Student) Clone() *Student {
	if s == nil {
		return nil
	}

	clone := *s
	clone.grades = s.Grades()
	clone.order = s.GradedSubjects()
	return &clone
}
