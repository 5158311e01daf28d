// Package gradebook contains the Gradebook aggregate: the ordered collection of
// students, the fixed list of subjects and every query over them.
//
// The aggregate never prints. Operations return structured values or typed
// errors from the shared package; formatting is left to the caller.
package gradebook

import (
	"fmt"
	"strings"
	"sync"

	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

// DefaultSubjects is the subject list used when none is configured.
var DefaultSubjects = []string{"Math", "English", "Science"}

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATE
// ══════════════════════════════════════════════════════════════════════════════

// Gradebook owns an ordered collection of students.
// Insertion order is the enrollment order and the base order for sorting.
//
// A single RWMutex guards the student sequence. Students returned by queries
// are the stored instances; callers mutate grades through RecordGrade.
type Gradebook struct {
	mu         sync.RWMutex
	subjects   []string
	subjectSet map[string]struct{}
	students   []*student.Student
}

// New creates an empty gradebook. Subjects are trimmed and de-duplicated
// ignoring case; with no usable subjects DefaultSubjects is used. The list
// never changes afterwards.
func New(subjects ...string) *Gradebook {
	gb := &Gradebook{
		subjects:   make([]string, 0, len(subjects)),
		subjectSet: make(map[string]struct{}, len(subjects)),
		students:   make([]*student.Student, 0),
	}

	for _, raw := range subjects {
		subject, err := shared.NewSubject(raw)
		if err != nil {
			continue
		}
		gb.addSubject(subject.String())
	}

	if len(gb.subjects) == 0 {
		for _, s := range DefaultSubjects {
			gb.addSubject(s)
		}
	}

	return gb
}

// addSubject keeps the first spelling of a subject; later entries that
// differ only in case are dropped.
func (g *Gradebook) addSubject(s string) {
	for _, existing := range g.subjects {
		if strings.EqualFold(existing, s) {
			return
		}
	}
	g.subjects = append(g.subjects, s)
	g.subjectSet[s] = struct{}{}
}

// Subjects returns a copy of the subject list in its configured order.
func (g *Gradebook) Subjects() []string {
	out := make([]string, len(g.subjects))
	copy(out, g.subjects)
	return out
}

// HasSubject reports whether subject is one of the configured subjects.
// The comparison is exact.
func (g *Gradebook) HasSubject(subject string) bool {
	_, ok := g.subjectSet[subject]
	return ok
}

// ValidateSubject returns ErrInvalidSubject for an unknown subject.
func (g *Gradebook) ValidateSubject(subject string) error {
	if !g.HasSubject(subject) {
		return fmt.Errorf("%w: %q (available: %s)", shared.ErrInvalidSubject, subject, strings.Join(g.subjects, ", "))
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STRUCTURAL OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// AddStudent appends s to the gradebook.
// It fails with ErrTypeMismatch for a nil student and with
// ErrStudentAlreadyExists when a student with the same normalized full name
// is already enrolled.
func (g *Gradebook) AddStudent(s *student.Student) error {
	if s == nil {
		return shared.ErrTypeMismatch
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.indexOfLocked(s.FullName()) >= 0 {
		return fmt.Errorf("add %q: %w", s.FullName(), shared.ErrStudentAlreadyExists)
	}

	g.students = append(g.students, s)
	return nil
}

// AddStudents adds the batch in order and stops at the first failure.
// Students added before the failure stay in the gradebook; the returned count
// says how many were added.
func (g *Gradebook) AddStudents(batch []*student.Student) (int, error) {
	added := 0
	for i, s := range batch {
		if err := g.AddStudent(s); err != nil {
			return added, fmt.Errorf("batch entry %d: %w", i+1, err)
		}
		added++
	}
	return added, nil
}

// RemoveStudent removes and returns the first student whose full name matches
// fullName case-insensitively. The relative order of the others is kept.
// Blank input fails with ErrEmptyName, no match with ErrStudentNotFound.
func (g *Gradebook) RemoveStudent(fullName string) (*student.Student, error) {
	if shared.IsBlank(fullName) {
		return nil, shared.ErrEmptyName
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	idx := g.indexOfLocked(fullName)
	if idx < 0 {
		return nil, fmt.Errorf("remove %q: %w", strings.TrimSpace(fullName), shared.ErrStudentNotFound)
	}

	removed := g.students[idx]
	g.students = append(g.students[:idx:idx], g.students[idx+1:]...)
	return removed, nil
}

// SearchStudent looks a student up by full name, ignoring case and
// surrounding whitespace. Absence is reported through the boolean, not an
// error; only blank input fails (ErrEmptyName). With several matches the
// earliest enrolled one is returned.
func (g *Gradebook) SearchStudent(fullName string) (*student.Student, bool, error) {
	if shared.IsBlank(fullName) {
		return nil, false, shared.ErrEmptyName
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	idx := g.indexOfLocked(fullName)
	if idx < 0 {
		return nil, false, nil
	}
	return g.students[idx], true, nil
}

// Contains reports whether a student with fullName is enrolled.
func (g *Gradebook) Contains(fullName string) bool {
	_, found, err := g.SearchStudent(fullName)
	return err == nil && found
}

// GradeChange describes a grade written by RecordGrade.
type GradeChange struct {
	StudentID string
	FullName  string
	Subject   string
	Grade     int
	Previous  int
	Replaced  bool
}

// PreviousGrade returns the replaced grade, or nil if the subject was ungraded.
func (c GradeChange) PreviousGrade() *int {
	if !c.Replaced {
		return nil
	}
	p := c.Previous
	return &p
}

// RecordGrade sets a grade for an enrolled student. The subject must be one of
// the configured subjects; the grade is validated by the student.
func (g *Gradebook) RecordGrade(fullName, subject string, grade int) (GradeChange, error) {
	if shared.IsBlank(fullName) {
		return GradeChange{}, shared.ErrEmptyName
	}
	if err := g.ValidateSubject(subject); err != nil {
		return GradeChange{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	idx := g.indexOfLocked(fullName)
	if idx < 0 {
		return GradeChange{}, fmt.Errorf("record grade for %q: %w", strings.TrimSpace(fullName), shared.ErrStudentNotFound)
	}

	s := g.students[idx]
	previous, replaced := s.Grade(subject)
	if err := s.AddGrade(subject, grade); err != nil {
		return GradeChange{}, err
	}

	return GradeChange{
		StudentID: s.ID,
		FullName:  s.FullName(),
		Subject:   subject,
		Grade:     grade,
		Previous:  previous,
		Replaced:  replaced,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ENUMERATION
// ══════════════════════════════════════════════════════════════════════════════

// Students returns the enrolled students in insertion order.
// The slice is a copy; an empty gradebook yields an empty slice.
func (g *Gradebook) Students() []*student.Student {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.snapshotLocked()
}

// Len returns the number of enrolled students.
func (g *Gradebook) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.students)
}

// IsEmpty reports whether no student is enrolled.
func (g *Gradebook) IsEmpty() bool {
	return g.Len() == 0
}

// SubjectGrade is one row of a subject listing.
type SubjectGrade struct {
	StudentID string
	FullName  string
	Score     int
	// Recorded is false when the student has no grade in the subject;
	// Score is then 0 and must not be shown as a real score.
	Recorded bool
}

// SubjectGrades lists every student's grade for subject in insertion order.
func (g *Gradebook) SubjectGrades(subject string) ([]SubjectGrade, error) {
	if err := g.ValidateSubject(subject); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	rows := make([]SubjectGrade, 0, len(g.students))
	for _, s := range g.students {
		score, recorded := s.Grade(subject)
		rows = append(rows, SubjectGrade{
			StudentID: s.ID,
			FullName:  s.FullName(),
			Score:     score,
			Recorded:  recorded,
		})
	}
	return rows, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// INTERNAL HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// indexOfLocked performs a linear scan for fullName. Caller holds mu.
func (g *Gradebook) indexOfLocked(fullName string) int {
	key := shared.NormalizeName(fullName)
	for i, s := range g.students {
		if s.NormalizedName() == key {
			return i
		}
	}
	return -1
}

// snapshotLocked copies the student sequence. Caller holds mu.
func (g *Gradebook) snapshotLocked() []*student.Student {
	out := make([]*student.Student, len(g.students))
	copy(out, g.students)
	return out
}
