package fs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	// TempFilePrefix is the prefix used for temporary atomic write files.
	TempFilePrefix = "gazelib-tmp-"
)

// writeFileAtomic streams write into a temp file next to filename, then
// renames it over filename. Readers never observe a partial file.
func writeFileAtomic(filename string, perm os.FileMode, write func(io.Writer) error) (err error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(filename), TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmpFile.Name()
	defer func() {
		if err != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriter(tmpFile)
	if err = write(buf); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err = buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush temp file: %w", err)
	}
	if err = tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err = os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", filename, err)
	}
	return nil
}
