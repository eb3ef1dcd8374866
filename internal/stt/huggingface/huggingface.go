// Package huggingface implements stt.Transcriber with a hosted
// speech-recognition model (Whisper by default) on the inference API.
package huggingface

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/qtrinova/eactranslator/internal/hf"
	"github.com/qtrinova/eactranslator/internal/stt"
)

// DefaultModel is the recognition model used when none is configured.
const DefaultModel = "openai/whisper-large-v3"

// Transcriber posts raw audio to the inference endpoint of a model.
type Transcriber struct {
	client *hf.Client
	model  string
}

// New creates a Transcriber. An empty model selects DefaultModel.
func New(client *hf.Client, model string) *Transcriber {
	if model == "" {
		model = DefaultModel
	}
	return &Transcriber{client: client, model: model}
}

// Name returns the backend identifier.
func (t *Transcriber) Name() string { return "huggingface" }

// Transcribe sends the audio and reads {"text": ...} from the response.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, contentType string, _ stt.Options) (*stt.Result, error) {
	if contentType == "" {
		contentType = "audio/wav"
	}

	body, _, err := t.client.InferBytes(ctx, t.model, audio, contentType)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}

	res := gjson.ParseBytes(body)
	if res.IsArray() {
		res = res.Get("0")
	}
	text := res.Get("text")
	if !text.Exists() {
		return nil, fmt.Errorf("unexpected transcription response: %.200s", body)
	}

	out := strings.TrimSpace(text.String())
	slog.Debug("transcription complete", "model", t.model, "text_length", len(out))
	return &stt.Result{Text: out}, nil
}
