// Package whisper implements stt.Transcriber against a self-hosted Whisper
// server.
//
// Two flavors are supported:
//   - "openai": OpenAI-compatible API (whisper.cpp server, faster-whisper),
//     multipart field "file".
//   - "asr": ahmetoner/whisper-asr-webservice, POST /asr with query params
//     and multipart field "audio_file".
package whisper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/qtrinova/eactranslator/internal/stt"
)

// Config configures the transcriber.
type Config struct {
	Endpoint string
	Flavor   string // "openai" (default) or "asr"
	Model    string
	Language string // default language hint
	Timeout  time.Duration
	Retries  int
}

// Transcriber talks to a Whisper-compatible endpoint.
type Transcriber struct {
	endpoint        string
	flavor          string
	model           string
	defaultLanguage string
	client          *resty.Client
}

// New creates a Transcriber from config.
func New(cfg Config) *Transcriber {
	flavor := cfg.Flavor
	if flavor == "" {
		flavor = "openai"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := resty.New().SetTimeout(timeout)
	if cfg.Retries > 0 {
		client.SetRetryCount(cfg.Retries)
	}
	return &Transcriber{
		endpoint:        cfg.Endpoint,
		flavor:          flavor,
		model:           cfg.Model,
		defaultLanguage: cfg.Language,
		client:          client,
	}
}

// Name returns the backend identifier.
func (t *Transcriber) Name() string { return "whisper" }

// Transcribe uploads the audio and returns the transcript.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, contentType string, opts stt.Options) (*stt.Result, error) {
	lang := opts.Language
	if lang == "" {
		lang = t.defaultLanguage
	}

	var result struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}

	req := t.client.R().SetContext(ctx).SetResult(&result)
	filename := "audio" + extFromContentType(contentType)

	switch t.flavor {
	case "asr":
		req.SetFileReader("audio_file", filename, bytes.NewReader(audio)).
			SetQueryParam("task", "transcribe").
			SetQueryParam("output", "json").
			SetQueryParam("encode", "true")
		if lang != "" {
			req.SetQueryParam("language", lang)
		}
	default:
		req.SetFileReader("file", filename, bytes.NewReader(audio)).
			SetFormData(map[string]string{"response_format": "verbose_json"})
		if t.model != "" {
			req.SetFormData(map[string]string{"model": t.model})
		}
		if lang != "" {
			req.SetFormData(map[string]string{"language": lang})
		}
	}

	resp, err := req.Post(t.endpoint)
	if err != nil {
		return nil, fmt.Errorf("whisper transcription request: %w", err)
	}
	if resp.IsError() {
		body := resp.String()
		if len(body) > 2048 {
			body = body[:2048]
		}
		return nil, fmt.Errorf("whisper transcription failed (status %d): %s", resp.StatusCode(), body)
	}

	slog.Debug("whisper transcription complete", "flavor", t.flavor, "text_length", len(result.Text), "language", result.Language)
	return &stt.Result{
		Text:     strings.TrimSpace(result.Text),
		Language: result.Language,
	}, nil
}

func extFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "wav"):
		return ".wav"
	case strings.Contains(ct, "ogg"):
		return ".ogg"
	case strings.Contains(ct, "mp3"), strings.Contains(ct, "mpeg"):
		return ".mp3"
	case strings.Contains(ct, "flac"):
		return ".flac"
	case strings.Contains(ct, "webm"):
		return ".webm"
	default:
		return ".wav"
	}
}
