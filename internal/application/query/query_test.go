package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/gradebook/internal/domain/gradebook"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

func addStudent(t *testing.T, book *gradebook.Gradebook, first, surname string, grades map[string]int) {
	t.Helper()

	s, err := student.NewStudent(first, surname)
	require.NoError(t, err)
	for subject, g := range grades {
		require.NoError(t, s.AddGrade(subject, g))
	}
	require.NoError(t, book.AddStudent(s))
}

func classBook(t *testing.T) *gradebook.Gradebook {
	t.Helper()

	book := gradebook.New()
	addStudent(t, book, "Alan", "Turing", map[string]int{"Math": 70, "English": 60, "Science": 65})
	addStudent(t, book, "Ada", "Lovelace", map[string]int{"Math": 90, "English": 85, "Science": 95})
	addStudent(t, book, "Grace", "Hopper", map[string]int{"Math": 40})
	addStudent(t, book, "New", "Comer", nil)
	return book
}

func reportNames(r *ClassReport) []string {
	out := make([]string, 0, len(r.Students))
	for _, s := range r.Students {
		out = append(out, s.FullName)
	}
	return out
}

func TestClassReport_EnrollmentOrder(t *testing.T) {
	h := NewClassReportHandler(classBook(t), student.DefaultClassifier())

	report, err := h.Handle(context.Background(), ClassReportQuery{})
	require.NoError(t, err)

	assert.Equal(t, OrderEnrollment, report.Order)
	assert.Equal(t, []string{"Math", "English", "Science"}, report.Subjects)
	assert.Equal(t, []string{"Alan Turing", "Ada Lovelace", "Grace Hopper", "New Comer"}, reportNames(report))

	ada := report.Students[1]
	assert.InDelta(t, 90.0, ada.Average, 1e-9)
	assert.Equal(t, "A*", ada.Letter)
	assert.Equal(t, "Distinction", ada.Result)
	assert.True(t, ada.Graded)

	grace := report.Students[2]
	require.Len(t, grace.Grades, 3)
	assert.Equal(t, GradeCellDTO{Subject: "Math", Score: 40, Recorded: true}, grace.Grades[0])
	assert.False(t, grace.Grades[1].Recorded)
	assert.Equal(t, "Fail", grace.Result)

	assert.False(t, report.Students[3].Graded)
	assert.Equal(t, 4, report.Summary.Total)
	assert.Equal(t, 1, report.Summary.Ungraded)
}

func TestClassReport_Orders(t *testing.T) {
	h := NewClassReportHandler(classBook(t), student.DefaultClassifier())
	ctx := context.Background()

	byAverage, err := h.Handle(ctx, ClassReportQuery{Order: OrderAverage, Descending: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing", "Grace Hopper", "New Comer"}, reportNames(byAverage))

	byName, err := h.Handle(ctx, ClassReportQuery{Order: OrderName})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing", "Grace Hopper", "New Comer"}, reportNames(byName))

	bySubject, err := h.Handle(ctx, ClassReportQuery{Order: OrderSubject, Subject: "English"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing", "Grace Hopper", "New Comer"}, reportNames(bySubject))
}

func TestClassReport_Empty(t *testing.T) {
	h := NewClassReportHandler(gradebook.New(), student.DefaultClassifier())

	report, err := h.Handle(context.Background(), ClassReportQuery{})
	require.NoError(t, err)
	assert.True(t, report.IsEmpty())
}

func TestClassReport_InvalidQuery(t *testing.T) {
	h := NewClassReportHandler(classBook(t), student.DefaultClassifier())
	ctx := context.Background()

	_, err := h.Handle(ctx, ClassReportQuery{Order: "random"})
	assert.True(t, shared.IsValidation(err))

	_, err = h.Handle(ctx, ClassReportQuery{Order: OrderSubject})
	assert.True(t, errors.Is(err, shared.ErrInvalidSubject))

	_, err = h.Handle(ctx, ClassReportQuery{Order: OrderSubject, Subject: "Art"})
	assert.True(t, errors.Is(err, shared.ErrInvalidSubject))
}

func TestGetRanking(t *testing.T) {
	h := NewGetRankingHandler(classBook(t))

	result, err := h.Handle(context.Background(), GetRankingQuery{Limit: 2})
	require.NoError(t, err)

	require.Len(t, result.Entries, 2)
	assert.Equal(t, 1, result.Entries[0].Rank)
	assert.Equal(t, "Ada Lovelace", result.Entries[0].FullName)
	assert.Equal(t, "A*", result.Entries[0].Letter)
	assert.Equal(t, 4, result.TotalCount)
	assert.True(t, result.HasMore)
}

func TestGetRankingQuery_Validate(t *testing.T) {
	q := GetRankingQuery{}
	require.NoError(t, q.Validate())
	assert.Equal(t, 10, q.Limit)

	q = GetRankingQuery{DefaultLimit: 3}
	require.NoError(t, q.Validate())
	assert.Equal(t, 3, q.Limit)

	q = GetRankingQuery{Limit: 1000}
	require.NoError(t, q.Validate())
	assert.Equal(t, MaxRankingLimit, q.Limit)

	q = GetRankingQuery{Limit: -1}
	assert.Error(t, q.Validate())
}
