package alertstore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/telhawk-systems/telhawk-copilot/internal/models"
)

// maxLineBytes bounds a single alert line. Wazuh alerts with full_log
// payloads routinely exceed bufio's 64KiB default.
const maxLineBytes = 4 << 20

// FileStore reads alerts from a local file on every call.
type FileStore struct {
	path string
}

// NewFileStore creates a store over path. The file need not exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Name returns the file's base name.
func (s *FileStore) Name() string {
	return filepath.Base(s.path)
}

// ReadAlerts implements Reader.
func (s *FileStore) ReadAlerts(ctx context.Context) ([]models.Alert, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", s.path, ErrNotFound)
		}
		return nil, fmt.Errorf("open alert file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	alerts := make([]models.Alert, 0, 64)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		alert, ok, err := decodeLine(scanner.Bytes())
		if err != nil {
			return nil, &MalformedError{Source: s.Name(), Line: lineNo, Err: err}
		}
		if ok {
			alerts = append(alerts, alert)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read alert file: %w", err)
	}

	return alerts, nil
}
