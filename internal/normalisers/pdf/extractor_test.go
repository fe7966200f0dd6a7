package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error

	name string
	args []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return m.output, m.err
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.PageExtractor = (*Extractor)(nil)
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".pdf"}, New().Extensions())
}

func TestNewWithRunner(t *testing.T) {
	runner := &mockRunner{}
	e := NewWithRunner(runner)
	require.NotNil(t, e)
	assert.Equal(t, runner, e.runner)
	assert.False(t, e.checkTool)
}

func TestExtractPages_SplitsOnFormFeed(t *testing.T) {
	runner := &mockRunner{output: []byte("Revenue was $10B in 2024.\n\fSecond page\n\f")}
	e := NewWithRunner(runner)

	pages, err := e.ExtractPages(context.Background(), "/docs/report.pdf")

	require.NoError(t, err)
	assert.Equal(t, []string{"Revenue was $10B in 2024.\n", "Second page\n"}, pages)
	assert.Equal(t, "pdftotext", runner.name)
	assert.Equal(t, []string{"-enc", "UTF-8", "/docs/report.pdf", "-"}, runner.args)
}

func TestExtractPages_KeepsEmptyPagesForNumbering(t *testing.T) {
	e := NewWithRunner(&mockRunner{output: []byte("one\f\fthree\f")})

	pages, err := e.ExtractPages(context.Background(), "x.pdf")

	require.NoError(t, err)
	assert.Equal(t, []string{"one", "", "three"}, pages)
}

func TestExtractPages_RunnerError(t *testing.T) {
	e := NewWithRunner(&mockRunner{err: errors.New("pdftotext crashed")})

	pages, err := e.ExtractPages(context.Background(), "broken.pdf")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext failed")
	assert.Nil(t, pages)
}

func TestSplitPages(t *testing.T) {
	assert.Nil(t, splitPages(""))
	assert.Equal(t, []string{"only page"}, splitPages("only page"))
	assert.Equal(t, []string{"a", "b"}, splitPages("a\fb\f\n"))
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}

// Integration test - only runs if pdftotext is available.
func TestExtractPages_Integration(t *testing.T) {
	if err := CheckAvailable(); err != nil {
		t.Skip("pdftotext not available, skipping integration test")
	}

	_, err := New().ExtractPages(context.Background(), t.TempDir()+"/missing.pdf")
	assert.Error(t, err)
}
