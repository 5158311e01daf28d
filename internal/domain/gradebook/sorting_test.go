package gradebook

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/gradebook/internal/domain/shared"
)

func TestScenario_SortByAverage(t *testing.T) {
	gb := scenarioBook(t)

	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, fullNames(gb.SortByAverage(true)))
	assert.Equal(t, []string{"Alan Turing", "Ada Lovelace"}, fullNames(gb.SortByAverage(false)))
}

func TestScenario_SortBySubject(t *testing.T) {
	gb := scenarioBook(t)

	sorted, err := gb.SortBySubject("English")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, fullNames(sorted))
}

func TestSortByAverage_OrderAndStability(t *testing.T) {
	gb := New()
	require.NoError(t, gb.AddStudent(newStudent(t, "Low", "One", map[string]int{"Math": 40})))
	require.NoError(t, gb.AddStudent(newStudent(t, "Tie", "First", map[string]int{"Math": 80})))
	require.NoError(t, gb.AddStudent(newStudent(t, "High", "One", map[string]int{"Math": 95})))
	require.NoError(t, gb.AddStudent(newStudent(t, "Tie", "Second", map[string]int{"Math": 80})))
	require.NoError(t, gb.AddStudent(newStudent(t, "No", "Grades", nil)))

	desc := gb.SortByAverage(true)
	for i := 0; i+1 < len(desc); i++ {
		assert.GreaterOrEqual(t, desc[i].Average(), desc[i+1].Average())
	}
	assert.Equal(t, []string{"High One", "Tie First", "Tie Second", "Low One", "No Grades"}, fullNames(desc))

	asc := gb.SortByAverage(false)
	assert.Equal(t, []string{"No Grades", "Low One", "Tie First", "Tie Second", "High One"}, fullNames(asc))
}

func TestSortByName(t *testing.T) {
	gb := New()
	for _, name := range [][2]string{{"charlie", "Brown"}, {"Alice", "Zed"}, {"bob", "Young"}, {"Alice", "adams"}} {
		require.NoError(t, gb.AddStudent(newStudent(t, name[0], name[1], nil)))
	}

	sorted := gb.SortByName()
	assert.Equal(t, []string{"Alice adams", "Alice Zed", "bob Young", "charlie Brown"}, fullNames(sorted))

	for i := 0; i+1 < len(sorted); i++ {
		assert.LessOrEqual(t, strings.ToLower(sorted[i].FullName()), strings.ToLower(sorted[i+1].FullName()))
	}
}

func TestSorts_DoNotMutateStoredOrder(t *testing.T) {
	gb := New()
	require.NoError(t, gb.AddStudent(newStudent(t, "Zed", "Last", map[string]int{"Math": 10})))
	require.NoError(t, gb.AddStudent(newStudent(t, "Amy", "First", map[string]int{"Math": 90})))
	require.NoError(t, gb.AddStudent(newStudent(t, "Mia", "Middle", map[string]int{"Math": 50})))

	before := gb.Students()

	gb.SortByAverage(true)
	gb.SortByAverage(false)
	gb.SortByName()
	_, err := gb.SortBySubject("Math")
	require.NoError(t, err)

	after := gb.Students()
	require.Len(t, after, len(before))
	for i := range before {
		assert.Same(t, before[i], after[i])
	}
}

func TestSortBySubject_MissingGradeSortsAsZero(t *testing.T) {
	gb := New()
	require.NoError(t, gb.AddStudent(newStudent(t, "No", "Science", map[string]int{"Math": 100})))
	require.NoError(t, gb.AddStudent(newStudent(t, "Zero", "Science", map[string]int{"Science": 0})))
	require.NoError(t, gb.AddStudent(newStudent(t, "Good", "Science", map[string]int{"Science": 75})))

	sorted, err := gb.SortBySubject("Science")
	require.NoError(t, err)
	assert.Equal(t, []string{"Good Science", "No Science", "Zero Science"}, fullNames(sorted))
}

func TestSortBySubject_InvalidSubject(t *testing.T) {
	gb := scenarioBook(t)

	sorted, err := gb.SortBySubject("Art")
	assert.Nil(t, sorted)
	assert.True(t, errors.Is(err, shared.ErrInvalidSubject))
}

func TestSorts_ConcurrentWithRecordGrade(t *testing.T) {
	gb := scenarioBook(t)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, err := gb.RecordGrade("Ada Lovelace", "Math", i%101)
			assert.NoError(t, err)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			assert.Len(t, gb.SortByAverage(i%2 == 0), 2)
			assert.Len(t, gb.SortByName(), 2)
			sorted, err := gb.SortBySubject("Math")
			assert.NoError(t, err)
			assert.Len(t, sorted, 2)
			assert.Len(t, gb.Ranking(true).All(), 2)
		}
	}()

	wg.Wait()

	grade, ok := gb.Students()[0].Grade("Math")
	require.True(t, ok)
	assert.Equal(t, 199%101, grade)
}
