package command

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/gradebook/internal/domain/gradebook"
	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
	err    error
}

func (p *recordingPublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []shared.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func entry(first, surname string, grades map[string]string) EnrollEntry {
	return EnrollEntry{FirstName: first, Surname: surname, Grades: grades}
}

// ══════════════════════════════════════════════════════════════════════════════
// ENROLL
// ══════════════════════════════════════════════════════════════════════════════

func TestEnrollStudents_Success(t *testing.T) {
	book := gradebook.New()
	pub := &recordingPublisher{}
	h := NewEnrollStudentsHandler(book, pub, nil)

	result, err := h.Handle(context.Background(), EnrollStudentsCommand{
		Entries: []EnrollEntry{
			entry("Ada", "Lovelace", map[string]string{"Math": "90", "English": " 85 ", "Science": "95"}),
			entry("Alan", "Turing", map[string]string{"Math": "70", "Science": ""}),
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Added, 2)
	assert.Empty(t, result.Skipped)
	assert.False(t, result.HasFailures())
	assert.Equal(t, 2, book.Len())

	ada := result.Added[0]
	assert.Equal(t, "Ada Lovelace", ada.FullName())
	assert.InDelta(t, 90.0, ada.Average(), 1e-9)

	alan := result.Added[1]
	assert.Equal(t, 1, alan.GradeCount(), "blank grade means no grade")

	assert.Equal(t, []shared.EventType{
		shared.EventStudentEnrolled,
		shared.EventGradeRecorded, shared.EventGradeRecorded, shared.EventGradeRecorded,
		shared.EventStudentEnrolled,
		shared.EventGradeRecorded,
	}, pub.types())
	assert.Len(t, result.Events, 6)
}

func TestEnrollStudents_SkipsDuplicates(t *testing.T) {
	book := gradebook.New()
	h := NewEnrollStudentsHandler(book, nil, nil)

	_, err := h.Handle(context.Background(), EnrollStudentsCommand{
		Entries: []EnrollEntry{entry("Ada", "Lovelace", nil)},
	})
	require.NoError(t, err)

	result, err := h.Handle(context.Background(), EnrollStudentsCommand{
		Entries: []EnrollEntry{
			entry("ada", "LOVELACE", map[string]string{"Math": "10"}),
			entry("Grace", "Hopper", nil),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ada LOVELACE"}, result.Skipped)
	require.Len(t, result.Added, 1)
	assert.Equal(t, "Grace Hopper", result.Added[0].FullName())
	assert.Equal(t, 2, book.Len())

	ada, _, _ := book.SearchStudent("Ada Lovelace")
	assert.False(t, ada.HasGrades(), "skipped entry must not touch the existing student")
}

func TestEnrollStudents_PartialCommit(t *testing.T) {
	book := gradebook.New()
	h := NewEnrollStudentsHandler(book, nil, nil)

	result, err := h.Handle(context.Background(), EnrollStudentsCommand{
		Entries: []EnrollEntry{
			entry("Ada", "Lovelace", map[string]string{"Math": "90"}),
			entry("", "Nameless", nil),
			entry("Bad", "Grade", map[string]string{"Math": "101"}),
			entry("Not", "Number", map[string]string{"English": "abc"}),
			entry("Wrong", "Subject", map[string]string{"History": "50"}),
			entry("Grace", "Hopper", nil),
		},
	})
	require.NoError(t, err)

	assert.Len(t, result.Added, 2)
	require.Len(t, result.Failed, 4)

	assert.Equal(t, 2, result.Failed[0].Index)
	assert.True(t, errors.Is(result.Failed[0].Err, shared.ErrEmptyName))
	assert.True(t, errors.Is(result.Failed[1].Err, shared.ErrInvalidGrade))
	assert.True(t, errors.Is(result.Failed[2].Err, shared.ErrInvalidGrade))
	assert.True(t, errors.Is(result.Failed[2].Err, shared.ErrInvalidFormat))
	assert.True(t, errors.Is(result.Failed[3].Err, shared.ErrInvalidSubject))

	assert.False(t, book.Contains("Bad Grade"), "rejected entry leaves no trace")
	assert.Equal(t, 2, book.Len())
}

func TestEnrollStudents_StopOnError(t *testing.T) {
	book := gradebook.New()
	h := NewEnrollStudentsHandler(book, nil, nil)

	result, err := h.Handle(context.Background(), EnrollStudentsCommand{
		Entries: []EnrollEntry{
			entry("Ada", "Lovelace", nil),
			entry("Bad", "Grade", map[string]string{"Math": "-1"}),
			entry("Grace", "Hopper", nil),
			entry("Alan", "Turing", nil),
		},
		StopOnError: true,
	})
	require.NoError(t, err)

	assert.Len(t, result.Added, 1)
	assert.Len(t, result.Failed, 1)
	assert.Equal(t, 2, result.Pending)
	assert.Equal(t, 1, book.Len())
}

func TestEnrollStudents_RosterSourceEmitsImportEvent(t *testing.T) {
	pub := &recordingPublisher{}
	h := NewEnrollStudentsHandler(gradebook.New(), pub, nil)

	result, err := h.Handle(context.Background(), EnrollStudentsCommand{
		Entries:       []EnrollEntry{entry("Ada", "Lovelace", nil), entry("", "", nil)},
		Source:        "roster.xlsx",
		CorrelationID: "corr-1",
	})
	require.NoError(t, err)

	last := result.Events[len(result.Events)-1]
	imported, ok := last.(shared.RosterImportedEvent)
	require.True(t, ok)
	assert.Equal(t, "roster.xlsx", imported.Source)
	assert.Equal(t, 1, imported.Added)
	assert.Equal(t, 1, imported.Failed)
	assert.Equal(t, "corr-1", imported.CorrelationID)
}

func TestEnrollStudents_PublishErrorDoesNotFail(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("bus down")}
	book := gradebook.New()
	h := NewEnrollStudentsHandler(book, pub, nil)

	result, err := h.Handle(context.Background(), EnrollStudentsCommand{
		Entries: []EnrollEntry{entry("Ada", "Lovelace", nil)},
	})
	require.NoError(t, err)
	assert.Len(t, result.Added, 1)
	assert.Equal(t, 1, book.Len())
}

func TestEnrollStudents_Validation(t *testing.T) {
	h := NewEnrollStudentsHandler(gradebook.New(), nil, nil)

	_, err := h.Handle(context.Background(), EnrollStudentsCommand{})
	assert.Error(t, err)
}

func TestEnrollStudents_CancelledContext(t *testing.T) {
	book := gradebook.New()
	h := NewEnrollStudentsHandler(book, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := h.Handle(ctx, EnrollStudentsCommand{
		Entries: []EnrollEntry{entry("Ada", "Lovelace", nil)},
	})
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Pending)
	assert.True(t, book.IsEmpty())
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE GRADES
// ══════════════════════════════════════════════════════════════════════════════

func seededBook(t *testing.T) *gradebook.Gradebook {
	t.Helper()

	book := gradebook.New()
	h := NewEnrollStudentsHandler(book, nil, nil)
	_, err := h.Handle(context.Background(), EnrollStudentsCommand{
		Entries: []EnrollEntry{
			entry("Ada", "Lovelace", map[string]string{"Math": "90", "English": "85", "Science": "95"}),
			entry("Alan", "Turing", map[string]string{"Math": "70", "English": "60", "Science": "65"}),
		},
	})
	require.NoError(t, err)
	return book
}

func TestUpdateGrades(t *testing.T) {
	book := seededBook(t)
	pub := &recordingPublisher{}
	h := NewUpdateGradesHandler(book, pub, nil)

	result, err := h.Handle(context.Background(), UpdateGradesCommand{
		FullName: "alan turing",
		Grades:   map[string]string{"Math": "100", "English": "", "Science": "110", "Art": "50"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Alan Turing", result.FullName)
	require.Len(t, result.Changes, 1)
	assert.Equal(t, "Math", result.Changes[0].Subject)
	assert.Equal(t, 70, result.Changes[0].Previous)
	assert.InDelta(t, (100.0+60.0+65.0)/3.0, result.Average, 1e-9)

	require.Len(t, result.Failed, 2)
	assert.Equal(t, "Art", result.Failed[0].Subject)
	assert.True(t, errors.Is(result.Failed[0].Err, shared.ErrInvalidSubject))
	assert.Equal(t, "Science", result.Failed[1].Subject)
	assert.True(t, errors.Is(result.Failed[1].Err, shared.ErrInvalidGrade))

	require.Len(t, pub.events, 1)
	recorded, ok := pub.events[0].(shared.GradeRecordedEvent)
	require.True(t, ok)
	assert.True(t, recorded.IsUpdate())
	assert.Equal(t, 100, recorded.Grade)

	alan, _, _ := book.SearchStudent("Alan Turing")
	science, _ := alan.Grade("Science")
	assert.Equal(t, 65, science, "rejected grade leaves the old value")
}

func TestUpdateGrades_UnknownStudent(t *testing.T) {
	h := NewUpdateGradesHandler(seededBook(t), nil, nil)

	_, err := h.Handle(context.Background(), UpdateGradesCommand{
		FullName: "Grace Hopper",
		Grades:   map[string]string{"Math": "80"},
	})
	assert.True(t, errors.Is(err, shared.ErrStudentNotFound))

	_, err = h.Handle(context.Background(), UpdateGradesCommand{FullName: " "})
	assert.True(t, errors.Is(err, shared.ErrEmptyName))
}

// ══════════════════════════════════════════════════════════════════════════════
// REMOVE
// ══════════════════════════════════════════════════════════════════════════════

func TestRemoveStudent(t *testing.T) {
	book := seededBook(t)
	pub := &recordingPublisher{}
	h := NewRemoveStudentHandler(book, pub, nil)

	result, err := h.Handle(context.Background(), RemoveStudentCommand{FullName: "ada lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", result.FullName)
	assert.InDelta(t, 90.0, result.Average, 1e-9)
	assert.Equal(t, []shared.EventType{shared.EventStudentRemoved}, pub.types())
	assert.Equal(t, 1, book.Len())

	_, err = h.Handle(context.Background(), RemoveStudentCommand{FullName: "ada lovelace"})
	assert.True(t, errors.Is(err, shared.ErrStudentNotFound))
}

func TestRemoveStudent_Validation(t *testing.T) {
	h := NewRemoveStudentHandler(seededBook(t), nil, nil)

	_, err := h.Handle(context.Background(), RemoveStudentCommand{})
	assert.True(t, errors.Is(err, shared.ErrEmptyName))
}
