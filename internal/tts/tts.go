// Package tts turns translated text into speech.
//
// A Synthesizer talks to one backend (the hosted inference API or a local
// Piper server). The Speaker wraps a Synthesizer for callers that only want
// a playable file: any failure means "no audio" rather than an error.
package tts

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrCredentialAbsent is returned before any outbound call when the
	// backend needs a token and none is configured.
	ErrCredentialAbsent = errors.New("speech synthesis credential not configured")

	// ErrTimeout is returned when the backend does not answer in time.
	ErrTimeout = errors.New("speech synthesis timed out")
)

// StatusError is a non-success response from the synthesis service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("speech synthesis failed (status %d): %s", e.StatusCode, e.Body)
}

// Options controls voice selection.
type Options struct {
	// Language is the ISO-639-1 code of the text ("en", "fr", "sw").
	Language string

	// Voice overrides language-based voice selection.
	Voice string
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text string, opts Options) (*Audio, error)
	Close() error
}

// Audio is synthesized speech.
type Audio struct {
	Data        []byte
	ContentType string

	// SampleRate and Channels are zero when the backend does not report them.
	SampleRate int
	Channels   int
}

// Kind names the failure class of a synthesis error for logs and metrics.
func Kind(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCredentialAbsent):
		return "credential_absent"
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &se):
		return "status"
	default:
		return "other"
	}
}
