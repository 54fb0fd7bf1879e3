// Package alertstore reads the newline-delimited JSON alert feed.
//
// Each non-blank line is one alert. Lines are decoded independently and in
// order; a line that is not a JSON object aborts the whole read with a
// *MalformedError so that a damaged feed is never silently truncated.
package alertstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/telhawk-systems/telhawk-copilot/internal/models"
)

// ErrNotFound is returned when the backing file or key does not exist.
var ErrNotFound = errors.New("alert store not found")

// Reader produces the current alert snapshot in store order.
type Reader interface {
	ReadAlerts(ctx context.Context) ([]models.Alert, error)
	// Name identifies the store in error messages (file name or redis key).
	Name() string
}

// MalformedError reports the first line that failed to decode.
type MalformedError struct {
	Source string
	Line   int
	Err    error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s line %d: invalid JSON: %v", e.Source, e.Line, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// decodeLine parses one raw line. ok is false for blank lines.
func decodeLine(raw []byte) (alert models.Alert, ok bool, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&alert); err != nil {
		return nil, false, err
	}
	if dec.More() {
		return nil, false, errors.New("trailing data after object")
	}
	if alert == nil {
		return nil, false, errors.New("not a JSON object")
	}
	return alert, true, nil
}
