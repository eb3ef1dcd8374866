// Package message defines the envelope every transport hands to the
// dispatcher and the result it gets back.
package message

import (
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalid marks failures caused by the message itself (unknown
// direction or tone, nothing to translate). Transports map it to a
// client error.
var ErrInvalid = errors.New("invalid message")

// ResponseMode controls which outputs the caller wants back.
type ResponseMode string

const (
	// ResponseModeText returns the rendered translation only.
	ResponseModeText ResponseMode = "text"

	// ResponseModeAudio returns synthesized speech only.
	ResponseModeAudio ResponseMode = "audio"

	// ResponseModeTextAudio returns both.
	ResponseModeTextAudio ResponseMode = "text+audio"
)

// Message is an incoming translation request from any transport.
type Message struct {
	// ID is a unique identifier (UUID). Filled in by Normalize when empty.
	ID string `json:"id,omitempty"`

	// Source identifies the sender (e.g. "http", "ws", "cli").
	Source string `json:"source,omitempty"`

	// Text is the text to translate. Ignored when Audio is set.
	Text string `json:"text,omitempty"`

	// Audio is a WAV recording to transcribe first. Base64 in JSON.
	Audio []byte `json:"audio,omitempty"`

	// ContentType is the MIME type of Audio.
	ContentType string `json:"content_type,omitempty"`

	// Direction is a direction label, e.g. "English → Swahili".
	Direction string `json:"direction"`

	// Tone is a tone label. Empty means Neutral.
	Tone string `json:"tone,omitempty"`

	// ResponseMode defaults to "text+audio" when speech output is enabled
	// and "text" otherwise.
	ResponseMode ResponseMode `json:"response_mode,omitempty"`

	// Timestamp is when the message was received.
	Timestamp time.Time `json:"timestamp"`
}

// New creates a text message with a fresh ID.
func New(source, text, direction, tone string) *Message {
	m := &Message{Source: source, Text: text, Direction: direction, Tone: tone}
	m.Normalize()
	return m
}

// Normalize fills in the ID and timestamp when the sender left them out.
func (m *Message) Normalize() {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
}

// HasAudio reports whether the message carries a recording.
func (m *Message) HasAudio() bool {
	return len(m.Audio) > 0
}

// DispatchResult is the outcome of processing a message.
type DispatchResult struct {
	MessageID string `json:"message_id"`

	// Transcript is the recognized text (audio input only).
	Transcript string `json:"transcript,omitempty"`

	// Output is the user-facing string: the translation, or the warning and
	// the translation on two lines. For rejected audio it carries the
	// warning shown to the user. Omitted in audio-only mode.
	Output string `json:"output,omitempty"`

	Translation      string `json:"translation,omitempty"`
	Warning          string `json:"warning,omitempty"`
	DetectedLanguage string `json:"detected_language,omitempty"`

	// Intermediate is the English text on pivot routes.
	Intermediate string `json:"intermediate,omitempty"`

	// ResponseAudio is synthesized speech, base64-encoded.
	ResponseAudio string `json:"response_audio,omitempty"`

	// ResponseContentType is the MIME type of ResponseAudio.
	ResponseContentType string `json:"response_content_type,omitempty"`

	// Error is set when a stage failed softly (rejected audio, no input).
	Error string `json:"error,omitempty"`
}

// SetResponseAudioBytes base64-encodes raw audio into ResponseAudio.
func (r *DispatchResult) SetResponseAudioBytes(audio []byte) {
	if len(audio) > 0 {
		r.ResponseAudio = base64.StdEncoding.EncodeToString(audio)
	}
}

// ResponseAudioBytes decodes ResponseAudio.
func (r *DispatchResult) ResponseAudioBytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(r.ResponseAudio)
}
