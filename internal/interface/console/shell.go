// Package console implements the interactive menu shell of the gradebook.
// The shell owns all terminal input and output; the domain never prints.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alem-hub/gradebook/config"
	"github.com/alem-hub/gradebook/internal/application/command"
	"github.com/alem-hub/gradebook/internal/application/eventhandler"
	"github.com/alem-hub/gradebook/internal/application/query"
	"github.com/alem-hub/gradebook/internal/domain/gradebook"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/infrastructure/messaging"
	"github.com/alem-hub/gradebook/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// RosterImporter reads enrollment entries from a roster file.
type RosterImporter interface {
	ImportFile(ctx context.Context, path string) ([]command.EnrollEntry, error)
}

// FeatureGate decides which optional menu entries are shown.
type FeatureGate interface {
	IsEnabled(featureName string) bool
	GetAllFeatures() []config.Feature
}

// Dependencies contains everything the shell calls into.
type Dependencies struct {
	Book *gradebook.Gradebook

	Enroll *command.EnrollStudentsHandler
	Update *command.UpdateGradesHandler
	Remove *command.RemoveStudentHandler

	Report  *query.ClassReportHandler
	Ranking *query.GetRankingHandler

	// RankingTop is the number of ranking entries shown.
	RankingTop int

	// Roster is optional; without it the import entry is hidden.
	Roster RosterImporter

	// Journal and Metrics feed the diagnostics screen. Both are optional.
	Journal *eventhandler.ActivityJournal
	Metrics *messaging.EventBusMetrics

	// Features gates optional entries. Nil shows everything.
	Features FeatureGate

	Logger *slog.Logger
}

// ══════════════════════════════════════════════════════════════════════════════
// SHELL
// ══════════════════════════════════════════════════════════════════════════════

// menuItem is one menu entry. Items with a feature are hidden when it is off.
type menuItem struct {
	key     string
	label   string
	feature string
	action  func(ctx context.Context) error
}

// Shell is the menu loop.
type Shell struct {
	deps      Dependencies
	prompt    *Prompter
	out       io.Writer
	presenter *Presenter
	logger    *slog.Logger
	items     []menuItem
}

// errExit ends the loop.
var errExit = errors.New("exit")

// New creates a shell reading commands from in and writing to out.
func New(deps Dependencies, in io.Reader, out io.Writer) *Shell {
	log := deps.Logger
	if log == nil {
		log = logger.Discard()
	}
	if deps.RankingTop <= 0 {
		deps.RankingTop = 10
	}

	s := &Shell{
		deps:      deps,
		prompt:    NewPrompter(in, out),
		out:       out,
		presenter: NewPresenter(),
		logger:    log.With(logger.Component("console")),
	}
	s.items = s.buildMenu()
	return s
}

func (s *Shell) buildMenu() []menuItem {
	return []menuItem{
		{key: "1", label: "Add Student(s)", action: s.addStudents},
		{key: "2", label: "Update Student Grades", action: s.updateGrades},
		{key: "3", label: "Remove Student", action: s.removeStudent},
		{key: "4", label: "View All Students", action: s.viewAll},
		{key: "5", label: "View Subject Grades", action: s.viewSubjectGrades},
		{key: "6", label: "Advanced Search", action: s.advancedSearch},
		{key: "7", label: "Sort by Average Grade", action: s.sortByAverage},
		{key: "8", label: "Sort by Name", action: s.sortByName},
		{key: "9", label: "Sort by Subject Grade", action: s.sortBySubject},
		{key: "10", label: "Subject Statistics & Class Summary", feature: config.FeatureShellStatistics, action: s.statistics},
		{key: "11", label: "Class Ranking", feature: config.FeatureShellRanking, action: s.ranking},
		{key: "12", label: "Import Roster (.xlsx)", feature: config.FeatureShellRosterImport, action: s.importRoster},
		{key: "13", label: "Diagnostics", feature: config.FeatureShellDiagnostics, action: s.diagnostics},
		{key: "0", label: "Exit", action: func(context.Context) error { return errExit }},
	}
}

// visible reports whether the item is currently offered.
func (s *Shell) visible(item menuItem) bool {
	if item.feature == config.FeatureShellRosterImport && s.deps.Roster == nil {
		return false
	}
	if item.feature == "" || s.deps.Features == nil {
		return true
	}
	return s.deps.Features.IsEnabled(item.feature)
}

// Run shows the menu until the operator exits, the input ends or ctx is
// cancelled. Errors from individual actions are shown and the loop resumes.
func (s *Shell) Run(ctx context.Context) error {
	s.logger.Debug("shell started")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printMenu()
		choice, err := s.prompt.Ask("Enter your choice: ")
		if err != nil {
			return s.stop(err)
		}

		item, ok := s.lookup(choice)
		if !ok {
			s.println("Invalid choice. Please try again.")
			continue
		}

		s.logger.Debug("menu action", logger.Operation(item.label))
		if err := item.action(ctx); err != nil {
			if errors.Is(err, errExit) || errors.Is(err, io.EOF) {
				return s.stop(err)
			}
			if errors.Is(err, context.Canceled) {
				return err
			}
			s.logger.Debug("action failed", logger.Operation(item.label), logger.Err(err))
			s.print(s.presenter.Error(err))
		}
	}
}

// stop ends the loop. EOF and an explicit exit are clean.
func (s *Shell) stop(err error) error {
	if errors.Is(err, io.EOF) {
		s.println("")
	} else if !errors.Is(err, errExit) {
		return err
	}
	s.println("Exiting program. Goodbye!")
	s.logger.Debug("shell stopped")
	return nil
}

func (s *Shell) printMenu() {
	var sb strings.Builder
	sb.WriteString("\n===== Student Gradebook =====\n")
	for _, item := range s.items {
		if s.visible(item) {
			fmt.Fprintf(&sb, "%s. %s\n", item.key, item.label)
		}
	}
	s.print(sb.String())
}

func (s *Shell) lookup(choice string) (menuItem, bool) {
	for _, item := range s.items {
		if item.key == choice && s.visible(item) {
			return item, true
		}
	}
	return menuItem{}, false
}

func (s *Shell) print(text string) {
	fmt.Fprint(s.out, text)
}

func (s *Shell) println(text string) {
	fmt.Fprintln(s.out, text)
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT RECORDS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Shell) addStudents(ctx context.Context) error {
	count, err := s.prompt.AskPositiveInt("How many students would you like to add? ")
	if errors.Is(err, errNotPositive) {
		return nil
	}
	if err != nil {
		return err
	}

	entries := make([]command.EnrollEntry, 0, count)
	for i := 1; i <= count; i++ {
		fmt.Fprintf(s.out, "\nStudent %d of %d\n", i, count)
		first, err := s.prompt.Ask("First name: ")
		if err != nil {
			return err
		}
		surname, err := s.prompt.Ask("Surname: ")
		if err != nil {
			return err
		}

		if shared.IsBlank(first) || shared.IsBlank(surname) {
			s.print(s.presenter.Error(shared.ErrEmptyName))
			continue
		}
		fullName := first + " " + surname
		if s.deps.Book.Contains(fullName) {
			fmt.Fprintf(s.out, "Student %s already exists. Skipping...\n", fullName)
			continue
		}

		grades, err := s.askGrades(func(subject string) string {
			return fmt.Sprintf("Enter marks for %s (0-100, or press Enter to skip): ", subject)
		})
		if err != nil {
			return err
		}

		entries = append(entries, command.EnrollEntry{
			FirstName: first,
			Surname:   surname,
			Grades:    grades,
		})
	}

	if len(entries) == 0 {
		s.println("Successfully added 0 student(s)")
		return nil
	}

	result, err := s.deps.Enroll.Handle(ctx, command.EnrollStudentsCommand{Entries: entries})
	if result != nil {
		s.print(s.presenter.EnrollResult(result))
	}
	return err
}

func (s *Shell) updateGrades(ctx context.Context) error {
	name, err := s.prompt.Ask("Enter the full name of the student to update: ")
	if err != nil {
		return err
	}

	st, found, err := s.deps.Book.SearchStudent(name)
	if err != nil {
		return err
	}
	if !found {
		s.print(s.presenter.NotFound(name))
		return nil
	}

	grades, err := s.askGrades(func(subject string) string {
		current := NoGradeMarker
		if g, ok := st.Grade(subject); ok {
			current = fmt.Sprintf("%d", g)
		}
		return fmt.Sprintf("Enter new marks for %s (current: %s, press Enter to keep): ", subject, current)
	})
	if err != nil {
		return err
	}
	if len(grades) == 0 {
		s.println("No changes made.")
		return nil
	}

	result, err := s.deps.Update.Handle(ctx, command.UpdateGradesCommand{
		FullName: st.FullName(),
		Grades:   grades,
	})
	if err != nil {
		return err
	}
	s.print(s.presenter.UpdateResult(result))
	return nil
}

// askGrades asks one grade per subject; blank answers are left out.
func (s *Shell) askGrades(prompt func(subject string) string) (map[string]string, error) {
	grades := make(map[string]string)
	for _, subject := range s.deps.Book.Subjects() {
		raw, err := s.prompt.AskGrade(prompt(subject))
		if err != nil {
			return nil, err
		}
		if raw != "" {
			grades[subject] = raw
		}
	}
	return grades, nil
}

func (s *Shell) removeStudent(ctx context.Context) error {
	name, err := s.prompt.Ask("Enter the full name of the student to remove: ")
	if err != nil {
		return err
	}

	result, err := s.deps.Remove.Handle(ctx, command.RemoveStudentCommand{FullName: name})
	if err != nil {
		if shared.IsNotFound(err) {
			s.print(s.presenter.NotFound(name))
			return nil
		}
		return err
	}
	s.print(s.presenter.Removed(result))
	return nil
}

func (s *Shell) viewAll(ctx context.Context) error {
	report, err := s.deps.Report.Handle(ctx, query.ClassReportQuery{Order: query.OrderEnrollment})
	if err != nil {
		return err
	}
	s.print(s.presenter.Records(report))
	return nil
}

func (s *Shell) viewSubjectGrades(ctx context.Context) error {
	subject, err := s.askSubject()
	if err != nil {
		return err
	}

	rows, err := s.deps.Book.SubjectGrades(subject)
	if err != nil {
		return err
	}
	s.print(s.presenter.SubjectGrades(subject, rows))
	return nil
}

// askSubject asks for a subject and resolves it to the configured spelling.
func (s *Shell) askSubject() (string, error) {
	subjects := s.deps.Book.Subjects()
	answer, err := s.prompt.Ask(fmt.Sprintf("Enter subject (%s): ", strings.Join(subjects, ", ")))
	if err != nil {
		return "", err
	}
	for _, subject := range subjects {
		if strings.EqualFold(subject, answer) {
			return subject, nil
		}
	}
	return answer, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SEARCH & SORT
// ══════════════════════════════════════════════════════════════════════════════

func (s *Shell) advancedSearch(ctx context.Context) error {
	s.println("\nSearch by:\n1. Exact name\n2. Partial name\n3. Average above threshold")
	choice, err := s.prompt.Ask("Choose search type: ")
	if err != nil {
		return err
	}

	switch choice {
	case "1":
		name, err := s.prompt.Ask("Enter the full name: ")
		if err != nil {
			return err
		}
		st, err := s.deps.Book.FindExact(name)
		if err != nil {
			if shared.IsNotFound(err) {
				s.print(s.presenter.NotFound(name))
				return nil
			}
			return err
		}
		s.print(s.presenter.Student(st, s.deps.Book.Subjects()))

	case "2":
		fragment, err := s.prompt.Ask("Enter part of the name: ")
		if err != nil {
			return err
		}
		s.print(s.presenter.PartialMatches(fragment, s.deps.Book.FindPartial(fragment)))

	case "3":
		threshold, err := s.prompt.AskFloat("Enter minimum average (0-100): ")
		if err != nil {
			return err
		}
		found, err := s.deps.Book.FindAboveThreshold(threshold)
		if err != nil {
			return err
		}
		s.print(s.presenter.ThresholdMatches(threshold, found))

	default:
		s.println("Invalid choice. Please try again.")
	}
	return nil
}

func (s *Shell) sortByAverage(ctx context.Context) error {
	choice, err := s.prompt.Ask("Sort order (1: High to Low, 2: Low to High): ")
	if err != nil {
		return err
	}

	// Anything but "2" sorts highest first.
	descending := choice != "2"

	report, err := s.deps.Report.Handle(ctx, query.ClassReportQuery{Order: query.OrderAverage, Descending: descending})
	if err != nil {
		return err
	}
	s.print(s.presenter.SortedByAverage(report, descending))
	return nil
}

func (s *Shell) sortByName(ctx context.Context) error {
	report, err := s.deps.Report.Handle(ctx, query.ClassReportQuery{Order: query.OrderName})
	if err != nil {
		return err
	}
	s.print(s.presenter.SortedByName(report))
	return nil
}

func (s *Shell) sortBySubject(ctx context.Context) error {
	subject, err := s.askSubject()
	if err != nil {
		return err
	}

	report, err := s.deps.Report.Handle(ctx, query.ClassReportQuery{Order: query.OrderSubject, Subject: subject})
	if err != nil {
		return err
	}
	s.print(s.presenter.SortedBySubject(subject, report))
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// OPTIONAL SCREENS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Shell) statistics(ctx context.Context) error {
	report, err := s.deps.Report.Handle(ctx, query.ClassReportQuery{})
	if err != nil {
		return err
	}
	s.print(s.presenter.Statistics(s.deps.Book.AllSubjectStatistics(), report.Summary))
	return nil
}

func (s *Shell) ranking(ctx context.Context) error {
	result, err := s.deps.Ranking.Handle(ctx, query.GetRankingQuery{DefaultLimit: s.deps.RankingTop})
	if err != nil {
		return err
	}
	s.print(s.presenter.Ranking(result))
	return nil
}

func (s *Shell) importRoster(ctx context.Context) error {
	path, err := s.prompt.Ask("Path to the .xlsx roster: ")
	if err != nil {
		return err
	}
	if path == "" {
		s.println("No file given.")
		return nil
	}

	entries, err := s.deps.Roster.ImportFile(ctx, path)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		s.println("The roster has no students.")
		return nil
	}

	result, err := s.deps.Enroll.Handle(ctx, command.EnrollStudentsCommand{
		Entries: entries,
		Source:  path,
	})
	if result != nil {
		s.print(s.presenter.EnrollResult(result))
	}
	return err
}

func (s *Shell) diagnostics(context.Context) error {
	var snapshot *messaging.EventBusMetricsSnapshot
	if s.deps.Metrics != nil {
		snap := s.deps.Metrics.Snapshot()
		snapshot = &snap
	}

	var activity []eventhandler.JournalEntry
	if s.deps.Journal != nil {
		activity = s.deps.Journal.Recent(10)
	}

	var features []config.Feature
	if s.deps.Features != nil {
		features = s.deps.Features.GetAllFeatures()
	}

	s.print(s.presenter.Diagnostics(snapshot, activity, features))
	return nil
}
