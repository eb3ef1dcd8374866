// Package journal appends a human-readable record of every translation to a
// log file. Records are only ever appended.
//
// Record shape:
//
//	[2026-01-02 15:04:05.000000] English → Swahili | Tone: Neutral
//	Input: Hello
//	Output: Habari
//	<blank line>
package journal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// TimestampLayout is the layout of the bracketed timestamp.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// ErrClosed is returned by Record after Close.
var ErrClosed = errors.New("journal closed")

// Entry is one translation record.
type Entry struct {
	Timestamp time.Time
	Direction string
	Tone      string
	Input     string
	Output    string
}

// Format renders the entry in its on-disk form, trailing blank line included.
func (e Entry) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s | Tone: %s\n", e.Timestamp.Format(TimestampLayout), e.Direction, e.Tone)
	fmt.Fprintf(&sb, "Input: %s\n", e.Input)
	fmt.Fprintf(&sb, "Output: %s\n\n", e.Output)
	return sb.String()
}

// Recorder persists entries.
type Recorder interface {
	Record(e Entry) error
}

// Config configures a Journal.
type Config struct {
	Path string

	// MaxSizeMB, when positive, rolls the file over once it grows past this
	// size: the live file is renamed with a timestamp suffix and a new one
	// started. Rolled files are kept forever. Zero never rotates, so Path
	// always holds the full history.
	MaxSizeMB int
}

// Journal is a Recorder writing to a file through a single long-lived
// writer. It is safe for concurrent use.
type Journal struct {
	mu     sync.Mutex
	w      io.WriteCloser
	path   string
	closed bool
}

// Open prepares the journal file. The file itself is created on first write.
func Open(cfg Config) (*Journal, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	var w io.WriteCloser
	if cfg.MaxSizeMB > 0 {
		w = &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: 0,
			MaxAge:     0,
			LocalTime:  true,
		}
	} else {
		w = &appendFile{path: cfg.Path}
	}
	return &Journal{w: w, path: cfg.Path}, nil
}

// Path returns the journal file path.
func (j *Journal) Path() string { return j.path }

// Record appends e as one write.
func (j *Journal) Record(e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrClosed
	}
	if _, err := j.w.Write([]byte(e.Format())); err != nil {
		return fmt.Errorf("writing journal %s: %w", j.path, err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true
	return j.w.Close()
}

// appendFile opens path in append mode on first write and never rotates.
type appendFile struct {
	path string
	f    *os.File
}

func (a *appendFile) Write(p []byte) (int, error) {
	if a.f == nil {
		f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return 0, err
		}
		a.f = f
	}
	return a.f.Write(p)
}

func (a *appendFile) Close() error {
	if a.f == nil {
		return nil
	}
	err := a.f.Close()
	a.f = nil
	return err
}
