// Package voice turns a recorded utterance into a translation.
//
// Audio is checked before anything leaves the process: recordings whose PCM
// frame data is below a threshold are rejected as too short. Transcription
// problems become user-facing warning strings rather than errors; only
// failures inside the translation pipeline propagate.
package voice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-audio/wav"

	"github.com/qtrinova/eactranslator/internal/language"
	"github.com/qtrinova/eactranslator/internal/route"
	"github.com/qtrinova/eactranslator/internal/stt"
	"github.com/qtrinova/eactranslator/internal/tone"
	"github.com/qtrinova/eactranslator/internal/translator"
)

// DefaultMinFrameBytes is the smallest accepted amount of PCM frame data.
const DefaultMinFrameBytes = 10000

// TooShortMessage is shown for empty or too-short recordings.
const TooShortMessage = "⚠ Audio too short or empty. Please try again."

// Kind classifies a voice input failure.
type Kind int

const (
	TooShort Kind = iota + 1
	RecognitionFailed
	Other
)

func (k Kind) String() string {
	switch k {
	case TooShort:
		return "too_short"
	case RecognitionFailed:
		return "recognition_failed"
	case Other:
		return "other"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ErrUnsupportedFormat is wrapped in an Other error for non-WAV input.
var ErrUnsupportedFormat = errors.New("unsupported audio format, expected WAV")

// Error is a voice input failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage is the warning string shown in place of a translation.
func (e *Error) UserMessage() string {
	if e.Kind == TooShort {
		return TooShortMessage
	}
	detail := ""
	if e.Err != nil {
		detail = e.Err.Error()
	}
	return "⚠ Could not transcribe audio: " + detail
}

// Translator is the part of the translation pipeline the adapter needs.
type Translator interface {
	Translate(ctx context.Context, req translator.Request) (*translator.Result, error)
}

// Config tunes the adapter.
type Config struct {
	// MinFrameBytes defaults to DefaultMinFrameBytes.
	MinFrameBytes int64
}

// Adapter glues a Transcriber to the translation pipeline.
type Adapter struct {
	transcriber   stt.Transcriber
	translator    Translator
	minFrameBytes int64
}

// New creates an Adapter.
func New(transcriber stt.Transcriber, tr Translator, cfg Config) *Adapter {
	minBytes := cfg.MinFrameBytes
	if minBytes <= 0 {
		minBytes = DefaultMinFrameBytes
	}
	return &Adapter{transcriber: transcriber, translator: tr, minFrameBytes: minBytes}
}

// FrameDataLen returns the number of PCM frame bytes a WAV recording holds.
// A data chunk whose header claims more than the file contains counts only
// the bytes present.
func FrameDataLen(audio []byte) (int64, error) {
	if len(audio) < 12 || string(audio[0:4]) != "RIFF" || string(audio[8:12]) != "WAVE" {
		return 0, ErrUnsupportedFormat
	}
	r := bytes.NewReader(audio)
	d := wav.NewDecoder(r)
	if err := d.FwdToPCM(); err != nil {
		return 0, fmt.Errorf("reading wav: %w", err)
	}
	// The decoder stops at the start of the data chunk.
	return min(d.PCMLen(), int64(r.Len())), nil
}

// Transcribe checks and transcribes audio. Failures are *Error.
func (a *Adapter) Transcribe(ctx context.Context, audio []byte, contentType string, opts stt.Options) (string, error) {
	n, err := FrameDataLen(audio)
	if err != nil {
		return "", &Error{Kind: Other, Err: err}
	}
	if n < a.minFrameBytes {
		slog.Debug("audio rejected as too short", "frame_bytes", n, "min", a.minFrameBytes)
		return "", &Error{Kind: TooShort}
	}

	res, err := a.transcriber.Transcribe(ctx, audio, contentType, opts)
	if err != nil {
		return "", &Error{Kind: RecognitionFailed, Err: err}
	}
	text := strings.TrimSpace(res.Text)
	if text == "" {
		return "", &Error{Kind: RecognitionFailed, Err: errors.New("no speech recognized")}
	}
	return text, nil
}

// TranscribeFile reads a WAV file and transcribes it.
func (a *Adapter) TranscribeFile(ctx context.Context, path string, opts stt.Options) (string, error) {
	audio, err := os.ReadFile(path)
	if err != nil {
		return "", &Error{Kind: Other, Err: err}
	}
	return a.Transcribe(ctx, audio, "audio/wav", opts)
}

// TranscribeAndTranslate transcribes the recording at path and translates
// the transcript. Voice failures come back as a warning string with a nil
// error; translation failures are returned as errors.
func (a *Adapter) TranscribeAndTranslate(ctx context.Context, path string, d route.Direction, t tone.Tone) (string, error) {
	text, err := a.TranscribeFile(ctx, path, Hint(d))
	if err != nil {
		var verr *Error
		if errors.As(err, &verr) {
			slog.Warn("voice input rejected", "kind", verr.Kind.String(), "error", verr.Err)
			return verr.UserMessage(), nil
		}
		return "", err
	}

	res, err := a.translator.Translate(ctx, translator.Request{Text: text, Direction: d, Tone: t})
	if err != nil {
		return "", err
	}
	return res.Output(), nil
}

// Hint builds transcription options from the direction's source language.
func Hint(d route.Direction) stt.Options {
	code, ok := language.FromName(route.Source(d))
	if !ok {
		return stt.Options{}
	}
	return stt.Options{Language: string(code)}
}
