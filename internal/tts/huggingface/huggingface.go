// Package huggingface synthesizes speech through the Hugging Face inference
// API.
package huggingface

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qtrinova/eactranslator/internal/audio"
	"github.com/qtrinova/eactranslator/internal/hf"
	"github.com/qtrinova/eactranslator/internal/tts"
)

// DefaultModel is the hosted text-to-speech model.
const DefaultModel = "microsoft/speecht5_tts"

// Synthesizer implements tts.Synthesizer. The inference API needs a bearer
// token for this model; without one no request is made.
type Synthesizer struct {
	client *hf.Client
	model  string
}

// New creates a synthesizer for model. Empty model means DefaultModel.
func New(client *hf.Client, model string) *Synthesizer {
	if model == "" {
		model = DefaultModel
	}
	return &Synthesizer{client: client, model: model}
}

// Name implements tts.Synthesizer.
func (s *Synthesizer) Name() string { return "huggingface" }

// Synthesize implements tts.Synthesizer. The model is language-agnostic, so
// opts is ignored.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, _ tts.Options) (*tts.Audio, error) {
	if !s.client.HasToken() {
		return nil, tts.ErrCredentialAbsent
	}

	slog.Debug("hf synthesize", "model", s.model, "text_length", len(text))

	body, contentType, err := s.client.InferJSON(ctx, s.model, map[string]any{"inputs": text})
	if err != nil {
		var se *hf.StatusError
		switch {
		case errors.Is(err, hf.ErrTimeout):
			return nil, fmt.Errorf("%w: %v", tts.ErrTimeout, err)
		case errors.As(err, &se):
			return nil, &tts.StatusError{StatusCode: se.StatusCode, Body: se.Body}
		default:
			return nil, fmt.Errorf("synthesizing with %s: %w", s.model, err)
		}
	}

	if strings.HasPrefix(contentType, "application/json") {
		return nil, fmt.Errorf("synthesizing with %s: expected audio, got %.200s", s.model, body)
	}
	if contentType == "" {
		contentType = audio.ContentTypeWAV
	}
	return &tts.Audio{Data: body, ContentType: contentType}, nil
}

// Close implements tts.Synthesizer.
func (s *Synthesizer) Close() error { return nil }
