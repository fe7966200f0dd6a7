// Package pdf extracts PDF text page by page using poppler's pdftotext.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.PageExtractor = (*Extractor)(nil)

// toolName is the external binary used for extraction.
const toolName = "pdftotext"

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor extracts PDF pages through a CommandRunner.
type Extractor struct {
	runner    CommandRunner
	checkTool bool
}

// New creates an extractor that shells out to pdftotext.
func New() *Extractor {
	return &Extractor{runner: execRunner{}, checkTool: true}
}

// NewWithRunner creates an extractor with a custom runner.
// The PATH check is skipped since the runner decides what executes.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// CheckAvailable reports whether pdftotext can be found.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions explains how to install pdftotext.
func InstallInstructions() string {
	return `PDF extraction requires pdftotext from poppler:
  macOS:         brew install poppler
  Debian/Ubuntu: apt install poppler-utils
  Fedora:        dnf install poppler-utils`
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// ExtractPages returns the text of each page. pdftotext terminates every
// page with a form feed, so the output splits cleanly into pages.
func (e *Extractor) ExtractPages(ctx context.Context, path string) ([]string, error) {
	if e.checkTool {
		if err := CheckAvailable(); err != nil {
			return nil, err
		}
	}

	out, err := e.runner.Run(ctx, toolName, "-enc", "UTF-8", path, "-")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("pdftotext failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	return splitPages(string(out)), nil
}

// splitPages splits pdftotext output on form feeds. The terminator after
// the last page does not start a new page.
func splitPages(out string) []string {
	if out == "" {
		return nil
	}
	pages := strings.Split(out, "\f")
	if pages[len(pages)-1] == "" || strings.TrimSpace(pages[len(pages)-1]) == "" && len(pages) > 1 {
		pages = pages[:len(pages)-1]
	}
	return pages
}
