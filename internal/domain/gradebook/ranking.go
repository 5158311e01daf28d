package gradebook

import (
	"fmt"

	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// RANKING
// ══════════════════════════════════════════════════════════════════════════════

// Rank is a 1-based position in a ranking.
type Rank int

// String returns the string representation of the rank.
func (r Rank) String() string {
	return fmt.Sprintf("#%d", r)
}

// RankingEntry is one ranked student.
type RankingEntry struct {
	Rank      Rank
	StudentID string
	FullName  string
	Average   float64
	Letter    student.Letter
}

// Ranking is the class ordered by average grade.
type Ranking struct {
	entries []RankingEntry
}

// Ranking builds a ranking on top of SortByAverage. Students with equal
// averages share a rank and the next rank skips accordingly (1, 1, 3).
func (g *Gradebook) Ranking(descending bool) *Ranking {
	sorted, averages := g.sortByAverage(descending)

	entries := make([]RankingEntry, 0, len(sorted))
	for i, s := range sorted {
		avg := averages[i]
		rank := Rank(i + 1)
		if i > 0 && avg == entries[i-1].Average {
			rank = entries[i-1].Rank
		}
		entries = append(entries, RankingEntry{
			Rank:      rank,
			StudentID: s.ID,
			FullName:  s.FullName(),
			Average:   avg,
			Letter:    student.LetterFor(avg),
		})
	}

	return &Ranking{entries: entries}
}

// All returns every entry.
func (r *Ranking) All() []RankingEntry {
	out := make([]RankingEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Top returns the first n entries.
func (r *Ranking) Top(n int) []RankingEntry {
	if n <= 0 {
		return nil
	}
	if n > len(r.entries) {
		n = len(r.entries)
	}
	out := make([]RankingEntry, n)
	copy(out, r.entries[:n])
	return out
}

// RankOf returns the entry of the named student, ignoring case.
func (r *Ranking) RankOf(fullName string) (RankingEntry, bool) {
	for _, e := range r.entries {
		if shared.NormalizeName(e.FullName) == shared.NormalizeName(fullName) {
			return e, true
		}
	}
	return RankingEntry{}, false
}

// Count returns the number of ranked students.
func (r *Ranking) Count() int {
	return len(r.entries)
}
