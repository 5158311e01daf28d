package console

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alem-hub/gradebook/config"
	"github.com/alem-hub/gradebook/internal/application/command"
	"github.com/alem-hub/gradebook/internal/application/eventhandler"
	"github.com/alem-hub/gradebook/internal/application/query"
	"github.com/alem-hub/gradebook/internal/domain/gradebook"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
	"github.com/alem-hub/gradebook/internal/infrastructure/messaging"
	"github.com/alem-hub/gradebook/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PRESENTER
// Turns query results and command outcomes into console text.
// Every method returns the full block, newline-terminated.
// ══════════════════════════════════════════════════════════════════════════════

const (
	// NoGradeMarker is shown instead of a score for a missing grade.
	NoGradeMarker = "No grade"

	// EmptyMessage is shown when nobody is enrolled.
	EmptyMessage = "No students in the system."
)

// Presenter formats gradebook data for the console.
type Presenter struct{}

// NewPresenter creates a new Presenter.
func NewPresenter() *Presenter {
	return &Presenter{}
}

// ─────────────────────────────────────────────────────────────────────────────
// RECORDS
// ─────────────────────────────────────────────────────────────────────────────

// Records formats every student with all subject grades and the average.
func (p *Presenter) Records(report *query.ClassReport) string {
	if report.IsEmpty() {
		return EmptyMessage + "\n"
	}

	var sb strings.Builder
	sb.WriteString("\n--- All Student Records ---\n")
	for _, row := range report.Students {
		sb.WriteString(row.FullName)
		sb.WriteString("\n")
		for _, cell := range row.Grades {
			fmt.Fprintf(&sb, "  %s: %s\n", cell.Subject, formatCell(cell.Score, cell.Recorded))
		}
		fmt.Fprintf(&sb, "  Average: %.2f\n", row.Average)
		if row.Graded {
			fmt.Fprintf(&sb, "  Result: %s (%s)\n", row.Result, row.Letter)
		}
	}
	return sb.String()
}

// Student formats a single student.
func (p *Presenter) Student(s *student.Student, subjects []string) string {
	var sb strings.Builder
	sb.WriteString(s.FullName())
	sb.WriteString("\n")
	for _, subject := range subjects {
		score, ok := s.Grade(subject)
		fmt.Fprintf(&sb, "  %s: %s\n", subject, formatCell(score, ok))
	}
	fmt.Fprintf(&sb, "  Average: %.2f\n", s.Average())
	return sb.String()
}

// SubjectGrades formats one subject's grade for every student.
func (p *Presenter) SubjectGrades(subject string, rows []gradebook.SubjectGrade) string {
	if len(rows) == 0 {
		return EmptyMessage + "\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n--- %s Grades ---\n", subject)
	for _, row := range rows {
		fmt.Fprintf(&sb, "%s: %s\n", row.FullName, formatCell(row.Score, row.Recorded))
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// SEARCH
// ─────────────────────────────────────────────────────────────────────────────

// PartialMatches formats the result of a partial name search.
func (p *Presenter) PartialMatches(fragment string, found []*student.Student) string {
	if len(found) == 0 {
		return fmt.Sprintf("No students found matching '%s'.\n", fragment)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d student(s):\n", len(found))
	for _, s := range found {
		fmt.Fprintf(&sb, "  %s: %.2f\n", s.FullName(), s.Average())
	}
	return sb.String()
}

// ThresholdMatches formats the result of a threshold search.
func (p *Presenter) ThresholdMatches(threshold float64, found []*student.Student) string {
	if len(found) == 0 {
		return fmt.Sprintf("No students found with average ≥ %.2f\n", threshold)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d student(s) with average ≥ %.2f:\n", len(found), threshold)
	for _, s := range found {
		fmt.Fprintf(&sb, "  %s: %.2f\n", s.FullName(), s.Average())
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// SORTED VIEWS
// ─────────────────────────────────────────────────────────────────────────────

// SortedByAverage formats a report ordered by average.
func (p *Presenter) SortedByAverage(report *query.ClassReport, descending bool) string {
	if report.IsEmpty() {
		return EmptyMessage + "\n"
	}

	direction := "Lowest First"
	if descending {
		direction = "Highest First"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n--- Students Sorted by Average Grade (%s) ---\n", direction)
	writeAverages(&sb, report)
	return sb.String()
}

// SortedByName formats a report ordered by name.
func (p *Presenter) SortedByName(report *query.ClassReport) string {
	if report.IsEmpty() {
		return EmptyMessage + "\n"
	}

	var sb strings.Builder
	sb.WriteString("\n--- Students Sorted by Name (A-Z) ---\n")
	writeAverages(&sb, report)
	return sb.String()
}

// SortedBySubject formats a report ordered by one subject's grade.
func (p *Presenter) SortedBySubject(subject string, report *query.ClassReport) string {
	if report.IsEmpty() {
		return EmptyMessage + "\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n--- Students Sorted by %s Grade ---\n", subject)
	for _, row := range report.Students {
		score, recorded := 0, false
		for _, cell := range row.Grades {
			if cell.Subject == subject {
				score, recorded = cell.Score, cell.Recorded
				break
			}
		}
		fmt.Fprintf(&sb, "%s: %s\n", row.FullName, formatCell(score, recorded))
	}
	return sb.String()
}

func writeAverages(sb *strings.Builder, report *query.ClassReport) {
	for _, row := range report.Students {
		fmt.Fprintf(sb, "%s: %.2f\n", row.FullName, row.Average)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// STATISTICS & RANKING
// ─────────────────────────────────────────────────────────────────────────────

// Statistics formats per-subject statistics followed by the class summary.
func (p *Presenter) Statistics(stats []gradebook.SubjectStatistics, summary gradebook.Summary) string {
	if summary.Total == 0 {
		return EmptyMessage + "\n"
	}

	var sb strings.Builder
	sb.WriteString("\n--- Subject Statistics ---\n")
	for _, st := range stats {
		if !st.HasGrades() {
			fmt.Fprintf(&sb, "%s: no grades recorded\n", st.Subject)
			continue
		}
		fmt.Fprintf(&sb, "%s: %d grade(s), average %.2f\n", st.Subject, st.Count, st.Average)
		fmt.Fprintf(&sb, "  Highest: %d (%s)\n", st.Highest, strings.Join(st.TopStudents, ", "))
		fmt.Fprintf(&sb, "  Lowest: %d (%s)\n", st.Lowest, strings.Join(st.BottomStudents, ", "))
	}

	sb.WriteString("\n--- Class Summary ---\n")
	fmt.Fprintf(&sb, "Students: %d", summary.Total)
	if summary.Ungraded > 0 {
		fmt.Fprintf(&sb, " (%d without grades)", summary.Ungraded)
	}
	sb.WriteString("\n")
	if summary.Graded() > 0 {
		fmt.Fprintf(&sb, "Passed: %d, Failed: %d, Distinctions: %d\n", summary.Passed, summary.Failed, summary.Distinctions)
		fmt.Fprintf(&sb, "Pass rate: %.2f%%\n", summary.PassRate())
		fmt.Fprintf(&sb, "Class average: %.2f\n", summary.ClassAverage)
	}
	return sb.String()
}

// Ranking formats the class ranking.
func (p *Presenter) Ranking(result *query.GetRankingResult) string {
	if result.TotalCount == 0 {
		return EmptyMessage + "\n"
	}

	var sb strings.Builder
	sb.WriteString("\n--- Class Ranking ---\n")
	for _, e := range result.Entries {
		fmt.Fprintf(&sb, "#%d %s: %.2f (%s)\n", e.Rank, e.FullName, e.Average, e.Letter)
	}
	if result.HasMore {
		fmt.Fprintf(&sb, "... and %d more\n", result.TotalCount-len(result.Entries))
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// COMMAND OUTCOMES
// ─────────────────────────────────────────────────────────────────────────────

// EnrollResult formats the outcome of a batch enrollment.
func (p *Presenter) EnrollResult(result *command.EnrollStudentsResult) string {
	var sb strings.Builder
	for _, name := range result.Skipped {
		fmt.Fprintf(&sb, "Student %s already exists. Skipping...\n", name)
	}
	for _, f := range result.Failed {
		fmt.Fprintf(&sb, "Entry %d%s not added: %s\n", f.Index, formatOrigin(f.Entry.Origin), userMessage(f.Err))
	}
	if result.Pending > 0 {
		fmt.Fprintf(&sb, "%d entry(ies) not processed.\n", result.Pending)
	}
	fmt.Fprintf(&sb, "Successfully added %d student(s)\n", len(result.Added))
	return sb.String()
}

// UpdateResult formats the outcome of a grade update.
func (p *Presenter) UpdateResult(result *command.UpdateGradesResult) string {
	var sb strings.Builder
	for _, c := range result.Changes {
		if prev := c.PreviousGrade(); prev != nil {
			fmt.Fprintf(&sb, "  %s: %d -> %d\n", c.Subject, *prev, c.Grade)
		} else {
			fmt.Fprintf(&sb, "  %s: set to %d\n", c.Subject, c.Grade)
		}
	}
	for _, f := range result.Failed {
		fmt.Fprintf(&sb, "  %s: %s\n", f.Subject, userMessage(f.Err))
	}

	if len(result.Changes) == 0 {
		sb.WriteString("No changes made.\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Grades updated for %s. New average: %.2f\n", result.FullName, result.Average)
	return sb.String()
}

// Removed formats a successful removal.
func (p *Presenter) Removed(result *command.RemoveStudentResult) string {
	return fmt.Sprintf("Student %s removed successfully.\n", result.FullName)
}

// NotFound formats a missing student.
func (p *Presenter) NotFound(name string) string {
	return fmt.Sprintf("Student '%s' not found.\n", name)
}

// Error formats any error for the operator.
func (p *Presenter) Error(err error) string {
	return fmt.Sprintf("Error: %s\n", userMessage(err))
}

// ─────────────────────────────────────────────────────────────────────────────
// DIAGNOSTICS
// ─────────────────────────────────────────────────────────────────────────────

// Diagnostics formats event bus metrics, recent activity and feature flags.
func (p *Presenter) Diagnostics(
	metrics *messaging.EventBusMetricsSnapshot,
	activity []eventhandler.JournalEntry,
	features []config.Feature,
) string {
	var sb strings.Builder
	sb.WriteString("\n--- Diagnostics ---\n")

	if metrics != nil {
		fmt.Fprintf(&sb, "Events published: %d\n", metrics.TotalPublished)
		fmt.Fprintf(&sb, "Handler executions: %d (failures: %d, success rate: %.2f%%)\n",
			metrics.TotalHandlerExecs, metrics.HandlerFailures, metrics.HandlerSuccessRate)
		fmt.Fprintf(&sb, "Average handler duration: %s\n", metrics.AverageHandlerDuration)
	} else {
		sb.WriteString("Event metrics are disabled.\n")
	}

	sb.WriteString("\n--- Recent Activity ---\n")
	if len(activity) == 0 {
		sb.WriteString("No activity yet.\n")
	}
	for _, e := range activity {
		fmt.Fprintf(&sb, "%s (%s)  %s\n", timeutil.Clock(e.At), timeutil.FormatRelative(e.At), e.Description)
	}

	sb.WriteString("\n--- Feature Flags ---\n")
	for _, f := range features {
		state := "off"
		if f.Enabled {
			state = "on"
		}
		fmt.Fprintf(&sb, "%s: %s\n", f.Name, state)
	}
	return sb.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func formatCell(score int, recorded bool) string {
	if !recorded {
		return NoGradeMarker
	}
	return fmt.Sprintf("%d", score)
}

func formatOrigin(origin string) string {
	if origin == "" {
		return ""
	}
	return " (" + origin + ")"
}

// userMessage returns the operator-facing text of err: the message of the
// outermost DomainError, or the error text itself.
func userMessage(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
