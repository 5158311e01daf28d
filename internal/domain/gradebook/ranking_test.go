package gradebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/gradebook/internal/domain/student"
)

func TestRanking_SharedRanks(t *testing.T) {
	gb := New()
	require.NoError(t, gb.AddStudent(newStudent(t, "Tie", "One", map[string]int{"Math": 80})))
	require.NoError(t, gb.AddStudent(newStudent(t, "Best", "Student", map[string]int{"Math": 95})))
	require.NoError(t, gb.AddStudent(newStudent(t, "Tie", "Two", map[string]int{"Math": 80})))
	require.NoError(t, gb.AddStudent(newStudent(t, "Last", "Student", map[string]int{"Math": 40})))

	ranking := gb.Ranking(true)
	entries := ranking.All()
	require.Len(t, entries, 4)

	assert.Equal(t, Rank(1), entries[0].Rank)
	assert.Equal(t, "Best Student", entries[0].FullName)
	assert.Equal(t, student.LetterAStar, entries[0].Letter)

	assert.Equal(t, Rank(2), entries[1].Rank)
	assert.Equal(t, "Tie One", entries[1].FullName)
	assert.Equal(t, Rank(2), entries[2].Rank)
	assert.Equal(t, "Tie Two", entries[2].FullName)

	assert.Equal(t, Rank(4), entries[3].Rank)
	assert.Equal(t, "#4", entries[3].Rank.String())
	assert.Equal(t, student.LetterE, entries[3].Letter)
}

func TestRanking_TopAndRankOf(t *testing.T) {
	gb := scenarioBook(t)
	ranking := gb.Ranking(true)

	assert.Equal(t, 2, ranking.Count())
	assert.Nil(t, ranking.Top(0))

	top := ranking.Top(1)
	require.Len(t, top, 1)
	assert.Equal(t, "Ada Lovelace", top[0].FullName)
	assert.Len(t, ranking.Top(10), 2)

	entry, ok := ranking.RankOf("alan turing")
	require.True(t, ok)
	assert.Equal(t, Rank(2), entry.Rank)
	assert.InDelta(t, 65.0, entry.Average, 1e-9)

	_, ok = ranking.RankOf("Grace Hopper")
	assert.False(t, ok)
}

func TestRanking_Ascending(t *testing.T) {
	gb := scenarioBook(t)

	entries := gb.Ranking(false).All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Alan Turing", entries[0].FullName)
	assert.Equal(t, Rank(1), entries[0].Rank)
}

func TestRanking_AllReturnsCopy(t *testing.T) {
	ranking := scenarioBook(t).Ranking(true)

	entries := ranking.All()
	entries[0].FullName = "changed"
	assert.Equal(t, "Ada Lovelace", ranking.All()[0].FullName)
}
