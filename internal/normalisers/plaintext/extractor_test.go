package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".txt", ".md"}, New().Extensions())
}

func TestExtractPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("Revenue was $10B in 2024."), 0o600))

	pages, err := New().ExtractPages(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, []string{"Revenue was $10B in 2024."}, pages)
}

func TestExtractPages_Missing(t *testing.T) {
	_, err := New().ExtractPages(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtractPages_InvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "binary.txt")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00}, 0o600))

	_, err := New().ExtractPages(context.Background(), path)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtractPages_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().ExtractPages(ctx, "whatever.txt")

	assert.ErrorIs(t, err, context.Canceled)
}
