package student

import (
	"strconv"
	"strings"

	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRADE (Value Object)
// ══════════════════════════════════════════════════════════════════════════════

const (
	// MinGrade is the lowest accepted score.
	MinGrade = 0
	// MaxGrade is the highest accepted score.
	MaxGrade = 100
)

// Grade is a score in a single subject.
type Grade int

// IsValid reports whether the grade is within [MinGrade, MaxGrade].
func (g Grade) IsValid() bool {
	return g >= MinGrade && g <= MaxGrade
}

// Int returns the underlying int value.
func (g Grade) Int() int {
	return int(g)
}

// Letter returns the letter band of the grade.
func (g Grade) Letter() Letter {
	return LetterFor(float64(g))
}

// NewGrade validates v and returns it as a Grade.
func NewGrade(v int) (Grade, error) {
	g := Grade(v)
	if !g.IsValid() {
		return 0, shared.ErrInvalidGrade
	}
	return g, nil
}

// ParseGrade converts operator input into a grade.
// Non-integer text is rejected the same way as an out-of-range number.
func ParseGrade(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, shared.WrapError("student", "ParseGrade", shared.ErrInvalidFormat,
			"grade must be an integer between 0 and 100", shared.ErrInvalidGrade)
	}
	if _, err := NewGrade(v); err != nil {
		return 0, err
	}
	return v, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LETTER BANDS
// ══════════════════════════════════════════════════════════════════════════════

// Letter is the band a score falls into.
type Letter string

const (
	LetterAStar Letter = "A*"
	LetterA     Letter = "A"
	LetterB     Letter = "B"
	LetterC     Letter = "C"
	LetterD     Letter = "D"
	LetterE     Letter = "E"
	LetterU     Letter = "U"
)

// String returns the string representation of the letter.
func (l Letter) String() string {
	return string(l)
}

// IsFail reports whether the band is the ungraded one.
func (l Letter) IsFail() bool {
	return l == LetterU
}

// LetterFor maps a score (grade or average) to its letter band.
func LetterFor(score float64) Letter {
	switch {
	case score >= 90:
		return LetterAStar
	case score >= 80:
		return LetterA
	case score >= 70:
		return LetterB
	case score >= 60:
		return LetterC
	case score >= 50:
		return LetterD
	case score >= 40:
		return LetterE
	default:
		return LetterU
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RESULT CLASSIFICATION
// ══════════════════════════════════════════════════════════════════════════════

// Result is the overall outcome for a score.
type Result string

const (
	ResultDistinction Result = "Distinction"
	ResultPass        Result = "Pass"
	ResultFail        Result = "Fail"
)

// IsPassing reports whether the result counts as a pass.
func (r Result) IsPassing() bool {
	return r == ResultDistinction || r == ResultPass
}

// Classifier holds the marks that separate results.
type Classifier struct {
	PassMark        float64
	DistinctionMark float64
}

// DefaultClassifier returns the standard marks: pass at 50, distinction at 70.
func DefaultClassifier() Classifier {
	return Classifier{
		PassMark:        50,
		DistinctionMark: 70,
	}
}

// Result classifies a score.
func (c Classifier) Result(score float64) Result {
	switch {
	case score >= c.DistinctionMark:
		return ResultDistinction
	case score >= c.PassMark:
		return ResultPass
	default:
		return ResultFail
	}
}

// ResultFor classifies a score with the default marks.
func ResultFor(score float64) Result {
	return DefaultClassifier().Result(score)
}
