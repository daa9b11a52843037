package listener

import (
	"bytes"
	"strings"
)

// framer turns a byte stream into discrete records at newline boundaries.
// Bytes after the last newline stay buffered for the next push; already
// emitted records are never re-parsed.
type framer struct {
	buf []byte
}

// push appends a chunk and extracts every complete line, trimmed of
// surrounding whitespace. Lines that are empty after trimming are silently
// dropped.
func (f *framer) push(chunk []byte) []string {
	f.buf = append(f.buf, chunk...)

	var records []string
	for {
		idx := bytes.IndexByte(f.buf, '\n')
		if idx < 0 {
			break
		}

		line := strings.TrimSpace(string(f.buf[:idx]))
		f.buf = f.buf[idx+1:]

		if line == "" {
			continue
		}
		records = append(records, line)
	}

	return records
}

// pending reports the number of buffered bytes awaiting a newline.
func (f *framer) pending() int {
	return len(f.buf)
}

// discard drops any partial buffered line; called on connection teardown,
// where a trailing fragment is not a valid record.
func (f *framer) discard() {
	f.buf = nil
}
