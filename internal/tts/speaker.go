package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// DefaultTimeout bounds a single synthesis call.
const DefaultTimeout = 30 * time.Second

// SpeakerConfig configures a Speaker.
type SpeakerConfig struct {
	// Dir receives the audio files. Empty means os.TempDir().
	Dir string

	Timeout time.Duration
}

// Speaker produces audio files from text and degrades to "no audio" on
// failure.
type Speaker struct {
	synth   Synthesizer
	dir     string
	timeout time.Duration
}

// NewSpeaker wraps synth.
func NewSpeaker(synth Synthesizer, cfg SpeakerConfig) *Speaker {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Speaker{synth: synth, dir: cfg.Dir, timeout: timeout}
}

// Backend returns the name of the underlying synthesizer.
func (s *Speaker) Backend() string { return s.synth.Name() }

// Synthesize runs the backend under the speaker timeout. A deadline hit is
// reported as ErrTimeout whatever the backend returned.
func (s *Speaker) Synthesize(ctx context.Context, text string, opts Options) (*Audio, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty text for synthesis")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.synth.Synthesize(ctx, text, opts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("%s returned no audio", s.synth.Name())
	}
	return out, nil
}

// Speak synthesizes text into a temporary .wav file and returns its path.
// ok is false when no audio could be produced; the cause is logged.
func (s *Speaker) Speak(ctx context.Context, text string, opts Options) (path string, ok bool) {
	out, err := s.Synthesize(ctx, text, opts)
	if err != nil {
		slog.Warn("speech synthesis unavailable",
			"backend", s.synth.Name(),
			"kind", Kind(err),
			"error", err,
		)
		return "", false
	}

	f, err := os.CreateTemp(s.dir, "eac-speech-*.wav")
	if err != nil {
		slog.Error("creating speech file", "dir", s.dir, "error", err)
		return "", false
	}
	if _, err := f.Write(out.Data); err != nil {
		f.Close()
		os.Remove(f.Name())
		slog.Error("writing speech file", "path", f.Name(), "error", err)
		return "", false
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		slog.Error("closing speech file", "path", f.Name(), "error", err)
		return "", false
	}

	slog.Debug("speech written", "path", f.Name(), "bytes", len(out.Data), "content_type", out.ContentType)
	return f.Name(), true
}

// Close releases the backend.
func (s *Speaker) Close() error { return s.synth.Close() }
