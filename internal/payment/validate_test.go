package payment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o600))
	return path
}

func TestValidateFile(t *testing.T) {
	assert.NoError(t, ValidateFile(writeFile(t, "ok.JPG", 10), 0))
	assert.NoError(t, ValidateFile(writeFile(t, "ok.webp", 100), 100))

	assert.ErrorIs(t, ValidateFile(writeFile(t, "doc.pdf", 10), 0), ErrInvalidFileType)
	assert.ErrorIs(t, ValidateFile(writeFile(t, "big.png", 101), 100), ErrFileTooLarge)
}

func TestValidateFile_TypeCheckedFirst(t *testing.T) {
	// A missing file with a bad extension reports the type, not a stat error.
	err := ValidateFile(filepath.Join(t.TempDir(), "missing.exe"), 0)
	assert.ErrorIs(t, err, ErrInvalidFileType)

	err = ValidateFile(filepath.Join(t.TempDir(), "missing.png"), 0)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidFileType)
}
