package gradebook

import (
	"github.com/alem-hub/gradebook/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBJECT STATISTICS
// ══════════════════════════════════════════════════════════════════════════════

// SubjectStatistics aggregates the recorded grades of one subject.
// Students without a grade in the subject are not counted.
type SubjectStatistics struct {
	Subject string
	Count   int
	Highest int
	Lowest  int
	Average float64

	// TopStudents and BottomStudents hold the full names that share the
	// highest and lowest grade, in insertion order.
	TopStudents    []string
	BottomStudents []string
}

// HasGrades reports whether anybody has a grade in the subject.
func (s SubjectStatistics) HasGrades() bool {
	return s.Count > 0
}

// Spread returns the difference between highest and lowest grade.
func (s SubjectStatistics) Spread() int {
	return s.Highest - s.Lowest
}

// SubjectStatistics computes the statistics of one subject.
func (g *Gradebook) SubjectStatistics(subject string) (SubjectStatistics, error) {
	if err := g.ValidateSubject(subject); err != nil {
		return SubjectStatistics{}, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.subjectStatisticsLocked(subject), nil
}

// AllSubjectStatistics computes statistics for every subject in subject order.
func (g *Gradebook) AllSubjectStatistics() []SubjectStatistics {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]SubjectStatistics, 0, len(g.subjects))
	for _, subject := range g.subjects {
		out = append(out, g.subjectStatisticsLocked(subject))
	}
	return out
}

func (g *Gradebook) subjectStatisticsLocked(subject string) SubjectStatistics {
	stats := SubjectStatistics{
		Subject:        subject,
		TopStudents:    make([]string, 0),
		BottomStudents: make([]string, 0),
	}

	total := 0
	for _, s := range g.students {
		score, ok := s.Grade(subject)
		if !ok {
			continue
		}

		if stats.Count == 0 || score > stats.Highest {
			stats.Highest = score
			stats.TopStudents = stats.TopStudents[:0]
		}
		if score == stats.Highest {
			stats.TopStudents = append(stats.TopStudents, s.FullName())
		}

		if stats.Count == 0 || score < stats.Lowest {
			stats.Lowest = score
			stats.BottomStudents = stats.BottomStudents[:0]
		}
		if score == stats.Lowest {
			stats.BottomStudents = append(stats.BottomStudents, s.FullName())
		}

		total += score
		stats.Count++
	}

	if stats.Count > 0 {
		stats.Average = float64(total) / float64(stats.Count)
	}
	return stats
}

// ══════════════════════════════════════════════════════════════════════════════
// CLASS SUMMARY
// ══════════════════════════════════════════════════════════════════════════════

// Summary describes the class as a whole. Students without any grade are
// counted in Total and Ungraded only; pass/fail and the class average are
// computed over graded students.
type Summary struct {
	Total        int
	Ungraded     int
	Passed       int
	Failed       int
	Distinctions int
	ClassAverage float64
}

// Graded returns the number of students with at least one grade.
func (s Summary) Graded() int {
	return s.Total - s.Ungraded
}

// PassRate returns the share of graded students who passed, in percent.
func (s Summary) PassRate() float64 {
	if s.Graded() == 0 {
		return 0
	}
	return float64(s.Passed) * 100 / float64(s.Graded())
}

// Summary classifies every graded student's average with c.
func (g *Gradebook) Summary(c student.Classifier) Summary {
	g.mu.RLock()
	defer g.mu.RUnlock()

	summary := Summary{Total: len(g.students)}

	var total float64
	for _, s := range g.students {
		if !s.HasGrades() {
			summary.Ungraded++
			continue
		}

		avg := s.Average()
		total += avg

		switch c.Result(avg) {
		case student.ResultDistinction:
			summary.Distinctions++
			summary.Passed++
		case student.ResultPass:
			summary.Passed++
		default:
			summary.Failed++
		}
	}

	if graded := summary.Graded(); graded > 0 {
		summary.ClassAverage = total / float64(graded)
	}
	return summary
}
