package query

import (
	"context"
	"errors"
	"time"

	"github.com/alem-hub/gradebook/internal/domain/gradebook"
	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RANKING QUERY
// Returns the top-N students by average, with shared ranks on ties.
// ══════════════════════════════════════════════════════════════════════════════

// MaxRankingLimit caps GetRankingQuery.Limit.
const MaxRankingLimit = 100

// GetRankingQuery contains the ranking parameters.
type GetRankingQuery struct {
	// Limit is the number of entries (default DefaultLimit, max 100).
	Limit int

	// DefaultLimit is used when Limit is 0. Falls back to 10.
	DefaultLimit int
}

// Validate checks the query and fills defaults.
func (q *GetRankingQuery) Validate() error {
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = q.DefaultLimit
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > MaxRankingLimit {
		q.Limit = MaxRankingLimit
	}
	return nil
}

// RankingEntryDTO is one ranked student.
type RankingEntryDTO struct {
	Rank      int     `json:"rank"`
	StudentID string  `json:"student_id"`
	FullName  string  `json:"full_name"`
	Average   float64 `json:"average"`
	Letter    string  `json:"letter"`
}

// GetRankingResult contains the ranking.
type GetRankingResult struct {
	Entries     []RankingEntryDTO `json:"entries"`
	TotalCount  int               `json:"total_count"`
	HasMore     bool              `json:"has_more"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// GetRankingHandler handles the GetRankingQuery.
type GetRankingHandler struct {
	book *gradebook.Gradebook
}

// NewGetRankingHandler creates a new GetRankingHandler.
func NewGetRankingHandler(book *gradebook.Gradebook) *GetRankingHandler {
	return &GetRankingHandler{book: book}
}

// Handle executes the ranking query.
func (h *GetRankingHandler) Handle(ctx context.Context, query GetRankingQuery) (*GetRankingResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetRanking", shared.ErrInvalidInput, err.Error(), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranking := h.book.Ranking(true)
	top := ranking.Top(query.Limit)

	entries := make([]RankingEntryDTO, 0, len(top))
	for _, e := range top {
		entries = append(entries, RankingEntryDTO{
			Rank:      int(e.Rank),
			StudentID: e.StudentID,
			FullName:  e.FullName,
			Average:   e.Average,
			Letter:    string(e.Letter),
		})
	}

	return &GetRankingResult{
		Entries:     entries,
		TotalCount:  ranking.Count(),
		HasMore:     ranking.Count() > len(entries),
		GeneratedAt: time.Now().UTC(),
	}, nil
}
