package gradebook

import (
	"fmt"
	"math"
	"strings"

	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADVANCED SEARCH
// ══════════════════════════════════════════════════════════════════════════════

// FindExact returns the student with the given full name.
// Unlike SearchStudent, absence is reported as ErrStudentNotFound so the
// caller can surface it as a message.
func (g *Gradebook) FindExact(fullName string) (*student.Student, error) {
	s, found, err := g.SearchStudent(fullName)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("find %q: %w", strings.TrimSpace(fullName), shared.ErrStudentNotFound)
	}
	return s, nil
}

// FindPartial returns every student whose full name contains fragment,
// ignoring case, in insertion order. No match is an empty result.
func (g *Gradebook) FindPartial(fragment string) []*student.Student {
	needle := shared.NormalizeName(fragment)

	g.mu.RLock()
	defer g.mu.RUnlock()

	found := make([]*student.Student, 0)
	for _, s := range g.students {
		if strings.Contains(s.NormalizedName(), needle) {
			found = append(found, s)
		}
	}
	return found
}

// FindAboveThreshold returns every student whose average is at least
// threshold, in insertion order. The threshold must lie in [0, 100].
func (g *Gradebook) FindAboveThreshold(threshold float64) ([]*student.Student, error) {
	if math.IsNaN(threshold) || threshold < student.MinGrade || threshold > student.MaxGrade {
		return nil, fmt.Errorf("threshold %v: %w", threshold, shared.ErrInvalidThreshold)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	found := make([]*student.Student, 0)
	for _, s := range g.students {
		if s.Average() >= threshold {
			found = append(found, s)
		}
	}
	return found, nil
}
