// Package stt defines the interface for speech-to-text backends.
//
// A transcriber takes a recorded utterance and returns its text. The voice
// adapter wraps it with the input checks and the user-facing error strings.
package stt

import "context"

// Options controls transcription behavior.
type Options struct {
	// Language is an ISO-639-1 hint (e.g. "en", "fr", "sw").
	Language string
}

// Result holds a transcript.
type Result struct {
	Text string

	// Language is the language the backend reports, if any.
	Language string
}

// Transcriber converts audio bytes to text.
type Transcriber interface {
	// Name returns the backend identifier (e.g. "huggingface", "whisper").
	Name() string

	// Transcribe converts audio of the given MIME type to text.
	Transcribe(ctx context.Context, audio []byte, contentType string, opts Options) (*Result, error)
}
