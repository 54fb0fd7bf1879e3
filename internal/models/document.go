package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrNotObject is returned by ParseDocument for JSON that is not an object.
var ErrNotObject = errors.New("alert must be a JSON object")

// Document is an alert together with its compact JSON text in the key order
// it was received in. Pattern scans and prompts read Text, so "first match"
// follows the sender's document rather than Go's sorted map encoding.
type Document struct {
	Alert Alert
	Text  string
}

// ParseDocument decodes data as a single alert object.
func ParseDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var alert Alert
	if err := dec.Decode(&alert); err != nil {
		return Document{}, fmt.Errorf("decode alert: %w", err)
	}
	if alert == nil {
		return Document{}, ErrNotObject
	}
	if _, err := dec.Token(); err != io.EOF {
		return Document{}, errors.New("decode alert: unexpected data after object")
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return Document{}, fmt.Errorf("decode alert: %w", err)
	}
	return Document{Alert: alert, Text: buf.String()}, nil
}

// DocumentOf wraps an alert that has no original text, such as one built in
// code. Its text is the sorted-key encoding.
func DocumentOf(a Alert) Document {
	return Document{Alert: a, Text: a.JSON()}
}

// JSON returns the document text.
func (d Document) JSON() string {
	if d.Text == "" {
		return d.Alert.JSON()
	}
	return d.Text
}
