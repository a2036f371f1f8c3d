// Package jsonl writes per-line debug records as JSON Lines.
package jsonl

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/fwojciec/logcolor"
)

// Writer encodes one DebugRecord per line. It is safe for concurrent use.
type Writer struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewWriter returns a Writer appending records to w.
func NewWriter(w io.Writer) *Writer {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Writer{enc: enc}
}

// Write encodes rec followed by a newline.
func (w *Writer) Write(rec logcolor.DebugRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("write debug record for line %d: %w", rec.LineNumber, err)
	}
	return nil
}
