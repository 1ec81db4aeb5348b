package decision

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Logger appends records to a JSONL sink. Writes are serialized by a mutex
// and each record is marshalled to a single line before the one Write call,
// so concurrent appends never interleave.
type Logger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLogger writes to any sink, which keeps tests off the filesystem.
func NewLogger(w io.Writer) *Logger {
	return &Logger{w: w}
}

// NewFileLogger opens the audit file in append-only mode, creating parent
// directories as needed. Existing history is never truncated or rewritten.
func NewFileLogger(path string) (*Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open decision log: %w", err)
	}

	return NewLogger(f), f.Close, nil
}

// Append writes one record as a single JSON line.
func (l *Logger) Append(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal decision record: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.w.Write(data); err != nil {
		return fmt.Errorf("append decision record: %w", err)
	}
	return nil
}

// ReadAll decodes a JSONL stream of records in write order. A torn final
// line, such as one left by a crash mid-write, is skipped rather than
// failing the whole read.
func ReadAll(r io.Reader) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan decision log: %w", err)
	}
	return records, nil
}

// ReadFile loads the full audit trail from disk. A missing file is an empty
// history, not an error.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("open decision log: %w", err)
	}
	defer f.Close()

	return ReadAll(f)
}
