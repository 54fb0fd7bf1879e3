package logsource

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileSource scans a plain-text log file on every call.
type FileSource struct {
	path string
}

// NewFileSource creates a source over path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Related implements Source. With no usable keys it returns no lines
// without touching the file. Lines of any length are read. On a read error
// the lines matched so far are returned with the error.
func (s *FileSource) Related(ctx context.Context, keys []string) ([]string, error) {
	keys = usableKeys(keys)
	if len(keys) == 0 {
		return nil, nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)

	var related []string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, err := reader.ReadString('\n')
		if line != "" && matchesAny(line, keys) {
			related = append(related, strings.TrimSpace(line))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return related, fmt.Errorf("read log file: %w", err)
		}
	}
	return related, nil
}
