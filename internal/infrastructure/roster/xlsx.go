// Package roster reads class rosters from Excel workbooks and turns them into
// enrollment entries. It only reads: the gradebook is never written back.
package roster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/alem-hub/gradebook/internal/application/command"
	"github.com/alem-hub/gradebook/pkg/logger"
)

var (
	// ErrNoSheets is returned for a workbook without sheets.
	ErrNoSheets = errors.New("roster: workbook does not contain any sheets")

	// ErrMissingColumn is returned when the header lacks a name column.
	ErrMissingColumn = errors.New("roster: missing required column")

	// ErrEmptyRoster is returned when the first sheet has no header row.
	ErrEmptyRoster = errors.New("roster: sheet is empty")
)

var (
	firstNameHeaders = []string{"first name", "firstname", "first"}
	surnameHeaders   = []string{"surname", "last name", "lastname"}
)

// Importer reads the first sheet of an .xlsx roster.
//
// The first row is the header. It must contain a first-name and a surname
// column; every other column whose header matches a gradebook subject
// (case-insensitively) is read as that subject's grade. Unknown columns are
// ignored.
type Importer struct {
	subjects []string
	logger   *slog.Logger
}

// NewImporter creates an importer for the given gradebook subjects.
func NewImporter(subjects []string, log *slog.Logger) *Importer {
	if log == nil {
		log = logger.Discard()
	}
	return &Importer{
		subjects: subjects,
		logger:   log.With(logger.Component("roster")),
	}
}

// columns maps header positions.
type columns struct {
	firstName int
	surname   int
	subjects  map[int]string
}

// ImportFile opens the workbook at path and reads it.
func (i *Importer) ImportFile(ctx context.Context, path string) ([]command.EnrollEntry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("roster: open %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			i.logger.Warn("failed to close workbook", logger.Source(path), logger.Err(err))
		}
	}()

	return i.read(ctx, f)
}

// Import reads a workbook from r.
func (i *Importer) Import(ctx context.Context, r io.Reader) ([]command.EnrollEntry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("roster: open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			i.logger.Warn("failed to close workbook", logger.Err(err))
		}
	}()

	return i.read(ctx, f)
}

func (i *Importer) read(ctx context.Context, f *excelize.File) ([]command.EnrollEntry, error) {
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("roster: read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyRoster
	}

	cols, err := i.mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	entries := make([]command.EnrollEntry, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rowNum := n + 2
		first := cell(row, cols.firstName)
		surname := cell(row, cols.surname)
		if first == "" && surname == "" {
			i.logger.Debug("skipping row without names", slog.Int("row", rowNum))
			continue
		}

		grades := make(map[string]string, len(cols.subjects))
		for idx, subject := range cols.subjects {
			if raw := cell(row, idx); raw != "" {
				grades[subject] = raw
			}
		}

		entries = append(entries, command.EnrollEntry{
			FirstName: first,
			Surname:   surname,
			Grades:    grades,
			Origin:    fmt.Sprintf("row %d", rowNum),
		})
	}

	i.logger.Debug("roster read",
		slog.String("sheet", sheet),
		logger.Count("entries", len(entries)),
		logger.Count("subject_columns", len(cols.subjects)),
	)
	return entries, nil
}

func (i *Importer) mapHeader(header []string) (columns, error) {
	cols := columns{firstName: -1, surname: -1, subjects: make(map[int]string)}

	for idx, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case name == "":
			continue
		case cols.firstName < 0 && contains(firstNameHeaders, name):
			cols.firstName = idx
		case cols.surname < 0 && contains(surnameHeaders, name):
			cols.surname = idx
		default:
			if subject, ok := i.subjectFor(name); ok {
				cols.subjects[idx] = subject
			} else {
				i.logger.Debug("ignoring column", slog.String("header", raw))
			}
		}
	}

	if cols.firstName < 0 {
		return cols, fmt.Errorf("%w: First Name", ErrMissingColumn)
	}
	if cols.surname < 0 {
		return cols, fmt.Errorf("%w: Surname", ErrMissingColumn)
	}
	return cols, nil
}

func (i *Importer) subjectFor(header string) (string, bool) {
	for _, s := range i.subjects {
		if strings.ToLower(s) == header {
			return s, true
		}
	}
	return "", false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
