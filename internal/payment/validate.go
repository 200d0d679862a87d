package payment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize is the default upload limit.
const MaxFileSize = 10 * 1024 * 1024

var (
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".webp": true,
}

// ValidateFile checks the extension first and then the size, so a file of
// the wrong type is refused without touching the disk.
func ValidateFile(path string, maxSize int64) error {
	if !allowedExtensions[strings.ToLower(filepath.Ext(path))] {
		return ErrInvalidFileType
	}
	if maxSize <= 0 {
		maxSize = MaxFileSize
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat upload: %w", err)
	}
	if info.Size() > maxSize {
		return ErrFileTooLarge
	}
	return nil
}
