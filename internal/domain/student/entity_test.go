package student

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/gradebook/internal/domain/shared"
)

func TestNewStudent_TrimsNames(t *testing.T) {
	s, err := NewStudent("  Ada ", "\tLovelace  ")
	require.NoError(t, err)

	assert.Equal(t, "Ada", s.FirstName)
	assert.Equal(t, "Lovelace", s.Surname)
	assert.Equal(t, "Ada Lovelace", s.FullName())
	assert.Equal(t, "ada lovelace", s.NormalizedName())
	assert.NotEmpty(t, s.ID)
	assert.False(t, s.HasGrades())
}

func TestNewStudent_RejectsEmptyNames(t *testing.T) {
	cases := []struct {
		first, surname string
	}{
		{"", "Lovelace"},
		{"Ada", ""},
		{"   ", "Lovelace"},
		{"Ada", "\t\n"},
	}

	for _, tc := range cases {
		s, err := NewStudent(tc.first, tc.surname)
		assert.Nil(t, s)
		assert.True(t, errors.Is(err, shared.ErrEmptyName), "first=%q surname=%q", tc.first, tc.surname)
		assert.True(t, shared.IsValidation(err))
	}
}

func TestNewStudent_UniqueIDs(t *testing.T) {
	a, err := NewStudent("Ada", "Lovelace")
	require.NoError(t, err)
	b, err := NewStudent("Ada", "Lovelace")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestAddGrade_Boundaries(t *testing.T) {
	s, err := NewStudent("Alan", "Turing")
	require.NoError(t, err)

	assert.NoError(t, s.AddGrade("Math", 0))
	assert.NoError(t, s.AddGrade("English", 100))

	err = s.AddGrade("Science", -1)
	assert.True(t, errors.Is(err, shared.ErrInvalidGrade))

	err = s.AddGrade("Science", 101)
	assert.True(t, errors.Is(err, shared.ErrInvalidGrade))

	_, ok := s.Grade("Science")
	assert.False(t, ok, "rejected grade must not be stored")
	assert.Equal(t, 2, s.GradeCount())
}

func TestAddGrade_OverwritesAndIsIdempotent(t *testing.T) {
	s, err := NewStudent("Alan", "Turing")
	require.NoError(t, err)

	require.NoError(t, s.AddGrade("Math", 40))
	require.NoError(t, s.AddGrade("Math", 75))

	g, ok := s.Grade("Math")
	assert.True(t, ok)
	assert.Equal(t, 75, g)
	assert.Equal(t, 1, s.GradeCount())

	before := s.Grades()
	require.NoError(t, s.AddGrade("Math", 75))
	assert.Equal(t, before, s.Grades())
	assert.Equal(t, []string{"Math"}, s.GradedSubjects())
}

func TestAverage(t *testing.T) {
	s, err := NewStudent("Ada", "Lovelace")
	require.NoError(t, err)

	assert.Equal(t, 0.0, s.Average())

	require.NoError(t, s.AddGrade("Math", 90))
	require.NoError(t, s.AddGrade("English", 85))
	require.NoError(t, s.AddGrade("Science", 95))

	assert.Equal(t, 90.0, s.Average())

	require.NoError(t, s.AddGrade("English", 86))
	assert.InDelta(t, 271.0/3.0, s.Average(), 1e-9)
}

func TestGradeOrZero(t *testing.T) {
	s, err := NewStudent("Ada", "Lovelace")
	require.NoError(t, err)
	require.NoError(t, s.AddGrade("Math", 0))

	assert.Equal(t, 0, s.GradeOrZero("Math"))
	assert.Equal(t, 0, s.GradeOrZero("Science"))

	_, recorded := s.Grade("Math")
	assert.True(t, recorded)
	_, recorded = s.Grade("Science")
	assert.False(t, recorded)
}

func TestMatchesName(t *testing.T) {
	s, err := NewStudent("Ada", "Lovelace")
	require.NoError(t, err)

	assert.True(t, s.MatchesName("ada lovelace"))
	assert.True(t, s.MatchesName("  ADA LOVELACE "))
	assert.False(t, s.MatchesName("Ada  Lovelace"))
	assert.False(t, s.MatchesName("Ada"))
}

func TestGrades_ReturnsCopy(t *testing.T) {
	s, err := NewStudent("Ada", "Lovelace")
	require.NoError(t, err)
	require.NoError(t, s.AddGrade("Math", 90))

	grades := s.Grades()
	grades["Math"] = 1

	g, _ := s.Grade("Math")
	assert.Equal(t, 90, g)
}

func TestClone(t *testing.T) {
	s, err := NewStudent("Ada", "Lovelace")
	require.NoError(t, err)
	require.NoError(t, s.AddGrade("Math", 90))

	clone := s.Clone()
	require.NoError(t, clone.AddGrade("Math", 10))

	g, _ := s.Grade("Math")
	assert.Equal(t, 90, g)
	assert.Equal(t, s.ID, clone.ID)

	var nilStudent *Student
	assert.Nil(t, nilStudent.Clone())
}

func TestLetterAndResult(t *testing.T) {
	s, err := NewStudent("Alan", "Turing")
	require.NoError(t, err)

	require.NoError(t, s.AddGrade("Math", 70))
	require.NoError(t, s.AddGrade("English", 60))
	require.NoError(t, s.AddGrade("Science", 65))

	assert.Equal(t, LetterC, s.Letter())
	assert.Equal(t, ResultPass, s.Result())
}
