// Package huggingface loads MarianMT translation models hosted on the
// Hugging Face hub and runs them through the inference API.
package huggingface

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/qtrinova/eactranslator/internal/hf"
	"github.com/qtrinova/eactranslator/internal/model"
)

const translationPipeline = "translation"

// NewLoader returns a model.Loader backed by client. Loading checks that
// the model exists on the hub and is a translation model.
func NewLoader(client *hf.Client) model.Loader {
	return func(ctx context.Context, modelID string) (model.Handle, error) {
		info, err := client.ModelInfo(ctx, modelID)
		if err != nil {
			return nil, err
		}
		if info.PipelineTag != "" && info.PipelineTag != translationPipeline {
			return nil, fmt.Errorf("model %s is a %q model, not %q", modelID, info.PipelineTag, translationPipeline)
		}
		slog.Debug("hub model resolved", "model", info.ID, "sha", info.SHA)
		return &Handle{id: modelID, revision: info.SHA, client: client}, nil
	}
}

// Handle runs one hosted translation model.
type Handle struct {
	id       string
	revision string
	client   *hf.Client
}

// ID returns the model id.
func (h *Handle) ID() string { return h.id }

// Revision returns the hub commit the handle was resolved against.
func (h *Handle) Revision() string { return h.revision }

// Translate runs a single inference call. Input longer than the model's
// window is truncated server-side, as the tokenizer would locally.
func (h *Handle) Translate(ctx context.Context, text string) (string, error) {
	payload := map[string]any{
		"inputs": text,
		"parameters": map[string]any{
			"truncation": "longest_first",
		},
		"options": map[string]any{
			"wait_for_model": true,
		},
	}

	body, _, err := h.client.InferJSON(ctx, h.id, payload)
	if err != nil {
		return "", err
	}

	out, err := decode(body)
	if err != nil {
		return "", fmt.Errorf("model %s: %w", h.id, err)
	}
	return out, nil
}

// decode reads the first generated sequence. The API answers with
// [{"translation_text": ...}], and some deployments with generated_text.
func decode(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("invalid inference response: %.200s", body)
	}
	res := gjson.ParseBytes(body)
	if res.IsArray() {
		res = res.Get("0")
	}
	for _, key := range []string{"translation_text", "generated_text"} {
		if v := res.Get(key); v.Exists() {
			return v.String(), nil
		}
	}
	return "", fmt.Errorf("no translation in inference response: %.200s", body)
}
