// Package hf is a small client for the Hugging Face hub and its hosted
// inference API.
//
// Translation models, speech recognition and speech synthesis all reach the
// same two endpoints: the hub API (model metadata) and the inference API
// (POST /models/{id}). The client owns auth, timeouts and retries so the
// callers only deal with payloads.
package hf

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const (
	DefaultHubURL       = "https://huggingface.co"
	DefaultInferenceURL = "https://api-inference.huggingface.co/models"
)

// ErrTimeout is returned when a call exceeds the client timeout or the
// context deadline.
var ErrTimeout = errors.New("hugging face request timed out")

// StatusError is a non-success HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hugging face: status %d: %s", e.StatusCode, e.Body)
}

// Config configures a Client.
type Config struct {
	HubURL       string
	InferenceURL string
	Token        string
	Timeout      time.Duration

	// Retries is the number of extra attempts on transport errors, 429 and
	// 5xx responses. Zero disables retries.
	Retries int
}

// Client talks to the hub and inference APIs.
type Client struct {
	http         *resty.Client
	hubURL       string
	inferenceURL string
	token        string
}

// New creates a client. Empty URLs fall back to the public endpoints.
func New(cfg Config) *Client {
	hub := cfg.HubURL
	if hub == "" {
		hub = DefaultHubURL
	}
	inf := cfg.InferenceURL
	if inf == "" {
		inf = DefaultInferenceURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	rc := resty.New().SetTimeout(timeout)
	if cfg.Retries > 0 {
		rc.SetRetryCount(cfg.Retries).
			SetRetryWaitTime(500 * time.Millisecond).
			SetRetryMaxWaitTime(5 * time.Second).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				if err != nil {
					return !errors.Is(err, context.Canceled)
				}
				return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
			})
	}

	return &Client{
		http:         rc,
		hubURL:       strings.TrimRight(hub, "/"),
		inferenceURL: strings.TrimRight(inf, "/"),
		token:        cfg.Token,
	}
}

// HasToken reports whether a bearer credential is configured.
func (c *Client) HasToken() bool { return c.token != "" }

// ModelInfo is the subset of hub metadata the loader checks.
type ModelInfo struct {
	ID          string
	PipelineTag string
	SHA         string
}

// ModelInfo fetches hub metadata for a model. It fails for unknown models.
func (c *Client) ModelInfo(ctx context.Context, modelID string) (*ModelInfo, error) {
	url := c.hubURL + "/api/models/" + modelID

	resp, err := c.request(ctx).Get(url)
	if err != nil {
		return nil, classify(fmt.Sprintf("GET %s", url), err)
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("model info %s: invalid json", modelID)
	}
	res := gjson.ParseBytes(body)
	info := &ModelInfo{
		ID:          res.Get("id").String(),
		PipelineTag: res.Get("pipeline_tag").String(),
		SHA:         res.Get("sha").String(),
	}
	if info.ID == "" {
		info.ID = modelID
	}
	return info, nil
}

// InferJSON posts a JSON payload to the inference endpoint of a model and
// returns the raw response body and its content type.
func (c *Client) InferJSON(ctx context.Context, modelID string, payload any) ([]byte, string, error) {
	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(c.ModelURL(modelID))
	if err != nil {
		return nil, "", classify("inference "+modelID, err)
	}
	if resp.IsError() {
		return nil, "", statusError(resp)
	}
	return resp.Body(), resp.Header().Get("Content-Type"), nil
}

// InferBytes posts a binary payload (e.g. audio) and returns the response
// body and its content type.
func (c *Client) InferBytes(ctx context.Context, modelID string, data []byte, contentType string) ([]byte, string, error) {
	resp, err := c.request(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("X-Wait-For-Model", "true").
		SetBody(data).
		Post(c.ModelURL(modelID))
	if err != nil {
		return nil, "", classify("inference "+modelID, err)
	}
	if resp.IsError() {
		return nil, "", statusError(resp)
	}
	return resp.Body(), resp.Header().Get("Content-Type"), nil
}

// ModelURL returns the inference endpoint for a model.
func (c *Client) ModelURL(modelID string) string {
	return c.inferenceURL + "/" + modelID
}

func (c *Client) request(ctx context.Context) *resty.Request {
	r := c.http.R().SetContext(ctx)
	if c.token != "" {
		r.SetAuthToken(c.token)
	}
	return r
}

func statusError(resp *resty.Response) error {
	body := resp.String()
	if len(body) > 512 {
		body = body[:512]
	}
	// The inference API reports failures as {"error": "..."}.
	if msg := gjson.Get(body, "error"); msg.Exists() && msg.Type == gjson.String {
		body = msg.String()
	}
	return &StatusError{StatusCode: resp.StatusCode(), Body: body}
}

func classify(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}
