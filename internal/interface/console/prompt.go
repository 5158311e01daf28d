package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alem-hub/gradebook/internal/domain/student"
)

// Prompter reads operator answers line by line.
// Every read returns io.EOF once the input is exhausted.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewPrompter creates a prompter reading from in and echoing prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// Ask prints prompt and returns the next line, trimmed.
func (p *Prompter) Ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)

	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// errNotPositive is returned by AskPositiveInt after it has told the
// operator the answer was rejected.
var errNotPositive = errors.New("not a positive number")

// AskPositiveInt asks once for a positive integer. Any other answer prints a
// notice and returns errNotPositive.
func (p *Prompter) AskPositiveInt(prompt string) (int, error) {
	answer, err := p.Ask(prompt)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n <= 0 {
		fmt.Fprintln(p.out, "Please enter a valid positive number.")
		return 0, errNotPositive
	}
	return n, nil
}

// AskFloat asks until the answer parses as a number.
func (p *Prompter) AskFloat(prompt string) (float64, error) {
	for {
		answer, err := p.Ask(prompt)
		if err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(answer, 64)
		if err == nil {
			return f, nil
		}
		fmt.Fprintln(p.out, "Please enter a number.")
	}
}

// AskGrade asks until the answer is blank or a valid grade. A blank answer
// returns "" so the caller can skip the subject; otherwise the raw text is
// returned for the command handlers to record.
func (p *Prompter) AskGrade(prompt string) (string, error) {
	for {
		answer, err := p.Ask(prompt)
		if err != nil {
			return "", err
		}
		if answer == "" {
			return "", nil
		}
		if _, err := student.ParseGrade(answer); err != nil {
			fmt.Fprintf(p.out, "Invalid grade: %s. Please try again.\n", userMessage(err))
			continue
		}
		return answer, nil
	}
}
