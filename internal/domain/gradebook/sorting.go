package gradebook

import (
	"sort"
	"strings"

	"github.com/alem-hub/gradebook/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// SORTING
// Every sort works on a copy of the student sequence; the stored order is
// never changed. Equal keys keep their enrollment order. Sort keys are read
// under the read lock, so a concurrent RecordGrade never races a sort.
// ══════════════════════════════════════════════════════════════════════════════

// SortByAverage orders students by average grade with a bubble sort.
// Adjacent elements are swapped only on a strict comparison, so students with
// equal averages keep their relative order.
func (g *Gradebook) SortByAverage(descending bool) []*student.Student {
	sorted, _ := g.sortByAverage(descending)
	return sorted
}

// sortByAverage returns the sorted students with the averages they were
// sorted by.
func (g *Gradebook) sortByAverage(descending bool) ([]*student.Student, []float64) {
	g.mu.RLock()
	sorted := g.snapshotLocked()
	keys := make([]float64, len(sorted))
	for i, s := range sorted {
		keys[i] = s.Average()
	}
	g.mu.RUnlock()

	n := len(sorted)
	for i := 0; i < n; i++ {
		swapped := false
		for j := 0; j < n-i-1; j++ {
			var outOfOrder bool
			if descending {
				outOfOrder = keys[j] < keys[j+1]
			} else {
				outOfOrder = keys[j] > keys[j+1]
			}
			if outOfOrder {
				sorted[j], sorted[j+1] = sorted[j+1], sorted[j]
				keys[j], keys[j+1] = keys[j+1], keys[j]
				swapped = true
			}
		}
		if !swapped {
			break
		}
	}

	return sorted, keys
}

// SortByName orders students alphabetically by full name, ignoring case,
// with an insertion sort. Ascending only.
func (g *Gradebook) SortByName() []*student.Student {
	g.mu.RLock()
	sorted := g.snapshotLocked()
	keys := make([]string, len(sorted))
	for i, s := range sorted {
		keys[i] = strings.ToLower(s.FullName())
	}
	g.mu.RUnlock()

	for i := 1; i < len(sorted); i++ {
		current, key := sorted[i], keys[i]

		j := i - 1
		for j >= 0 && keys[j] > key {
			sorted[j+1], keys[j+1] = sorted[j], keys[j]
			j--
		}
		sorted[j+1], keys[j+1] = current, key
	}

	return sorted
}

// SortBySubject orders students by their grade in subject, highest first.
// A missing grade sorts as 0. Unknown subjects fail with ErrInvalidSubject.
func (g *Gradebook) SortBySubject(subject string) ([]*student.Student, error) {
	if err := g.ValidateSubject(subject); err != nil {
		return nil, err
	}

	g.mu.RLock()
	rows := make([]scoredStudent, len(g.students))
	for i, s := range g.students {
		rows[i] = scoredStudent{student: s, score: s.GradeOrZero(subject)}
	}
	g.mu.RUnlock()

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].score > rows[j].score
	})

	sorted := make([]*student.Student, len(rows))
	for i, row := range rows {
		sorted[i] = row.student
	}
	return sorted, nil
}

type scoredStudent struct {
	student *student.Student
	score   int
}
