package streaming

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// Decoder reads newline-delimited JSON objects (ClickHouse's JSONEachRow
// format) from r, one object per line. bufio.Scanner already returns a
// final token with no trailing newline once the reader hits EOF, so a
// trailing partial line is decoded rather than dropped.
type Decoder struct {
	scanner *bufio.Scanner
}

// NewDecoder wraps r. maxLineBytes bounds the largest single row line the
// scanner will buffer; pass 0 for the default of 10MB.
func NewDecoder(r io.Reader, maxLineBytes int) *Decoder {
	if maxLineBytes <= 0 {
		maxLineBytes = 10 << 20
	}
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Decoder{scanner: s}
}

// Next decodes the next non-blank line into a column-name-keyed row. ok is
// false once the underlying reader is exhausted.
func (d *Decoder) Next() (row map[string]any, ok bool, err error) {
	for d.scanner.Scan() {
		line := d.scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		var decoded map[string]any
		if err := json.Unmarshal([]byte(line), &decoded); err != nil {
			return nil, false, err
		}
		return decoded, true, nil
	}
	if err := d.scanner.Err(); err != nil {
		return nil, false, err
	}
	return nil, false, nil
}
