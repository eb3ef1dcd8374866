// Package http implements the HTTP/WebSocket transport.
//
// It exposes a small REST API (translate, transcribe, speak, dispatch and
// the two lookup lists), a WebSocket endpoint that carries one dispatch
// per text frame, and the Swagger UI.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/qtrinova/eactranslator/docs"
	"github.com/qtrinova/eactranslator/internal/audio"
	"github.com/qtrinova/eactranslator/internal/language"
	"github.com/qtrinova/eactranslator/internal/message"
	"github.com/qtrinova/eactranslator/internal/route"
	"github.com/qtrinova/eactranslator/internal/tone"
	"github.com/qtrinova/eactranslator/internal/transport"
	"github.com/qtrinova/eactranslator/internal/tts"
)

// Request headers used with raw audio uploads.
const (
	HeaderDirection    = "X-EAC-Direction"
	HeaderTone         = "X-EAC-Tone"
	HeaderSource       = "X-EAC-Source"
	HeaderResponseMode = "X-EAC-Response-Mode"
)

const maxBodyBytes = 25 << 20

// Speech synthesizes audio for /speak. *tts.Speaker satisfies it.
type Speech interface {
	Synthesize(ctx context.Context, text string, opts tts.Options) (*tts.Audio, error)
}

// Options configures the transport.
type Options struct {
	Port int

	// Speech is nil when speech output is disabled; /speak then always
	// answers 204.
	Speech Speech
}

// Transport implements transport.Transport over HTTP and WebSocket.
type Transport struct {
	port     int
	speech   Speech
	upgrader websocket.Upgrader
	server   *http.Server
}

// New creates an HTTP transport.
func New(opts Options) *Transport {
	return &Transport{
		port:   opts.Port,
		speech: opts.Speech,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler builds the routing table around handler.
func (t *Transport) Handler(handler transport.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /translate", func(w http.ResponseWriter, r *http.Request) {
		t.handleTranslate(w, r, handler)
	})
	mux.HandleFunc("POST /transcribe", func(w http.ResponseWriter, r *http.Request) {
		t.handleTranscribe(w, r, handler)
	})
	mux.HandleFunc("POST /speak", t.handleSpeak)
	mux.HandleFunc("POST /dispatch", func(w http.ResponseWriter, r *http.Request) {
		t.handleDispatch(w, r, handler)
	})
	mux.HandleFunc("GET /directions", handleDirections)
	mux.HandleFunc("GET /tones", handleTones)
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		t.handleWebSocket(w, r, handler)
	})

	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return mux
}

// Listen starts the HTTP server and routes incoming requests to the handler.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           t.Handler(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

// TranslateRequest is the body of POST /translate.
type TranslateRequest struct {
	Text      string `json:"text" example:"Hello"`
	Direction string `json:"direction" example:"English → Swahili"`
	Tone      string `json:"tone,omitempty" example:"Neutral"`
}

// TranslateResponse is returned by /translate and /transcribe.
type TranslateResponse struct {
	// Output is what a user should see: the translation, optionally
	// preceded by a warning line. For rejected audio it is the warning.
	Output           string `json:"output"`
	Translation      string `json:"translation,omitempty"`
	Warning          string `json:"warning,omitempty"`
	DetectedLanguage string `json:"detected_language,omitempty"`
	Intermediate     string `json:"intermediate,omitempty"`
	Transcript       string `json:"transcript,omitempty"`
}

func newTranslateResponse(res *message.DispatchResult) TranslateResponse {
	return TranslateResponse{
		Output:           res.Output,
		Translation:      res.Translation,
		Warning:          res.Warning,
		DetectedLanguage: res.DetectedLanguage,
		Intermediate:     res.Intermediate,
		Transcript:       res.Transcript,
	}
}

// handleTranslate processes a POST /translate request.
//
// @Summary     Translate text
// @Description Translates text along one of the supported directions, optionally
// @Description prefixed with a tone instruction. A warning line is prepended to
// @Description the output when the detected language differs from the source.
// @Tags        translate
// @Accept      json
// @Produce     json
// @Param       request  body      TranslateRequest   true  "Text, direction label and tone label"
// @Success     200      {object}  TranslateResponse
// @Failure     400      {string}  string  "Unknown direction or tone"
// @Failure     500      {string}  string  "Model load or inference failure"
// @Router      /translate [post]
func (t *Transport) handleTranslate(w http.ResponseWriter, r *http.Request, handler transport.Handler) {
	var req TranslateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	msg := message.New("http", req.Text, req.Direction, req.Tone)
	msg.ResponseMode = message.ResponseModeText

	res, err := handler(r.Context(), msg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTranslateResponse(res))
}

// handleTranscribe processes a POST /transcribe request.
//
// @Summary     Transcribe and translate a recording
// @Description Accepts a WAV recording as the raw request body. Recordings that are
// @Description too short or cannot be recognized produce a warning in "output"
// @Description instead of an error.
// @Tags        translate
// @Accept      audio/wav
// @Produce     json
// @Param       X-EAC-Direction  header    string  true   "Direction label"
// @Param       X-EAC-Tone       header    string  false  "Tone label"
// @Success     200              {object}  TranslateResponse
// @Failure     400              {string}  string  "Unknown direction or tone, or speech input disabled"
// @Failure     500              {string}  string  "Model load or inference failure"
// @Router      /transcribe [post]
func (t *Transport) handleTranscribe(w http.ResponseWriter, r *http.Request, handler transport.Handler) {
	msg, ok := rawAudioMessage(w, r)
	if !ok {
		return
	}
	msg.ResponseMode = message.ResponseModeText

	res, err := handler(r.Context(), msg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTranslateResponse(res))
}

// SpeakRequest is the body of POST /speak.
type SpeakRequest struct {
	Text string `json:"text" example:"Habari"`

	// Language selects the voice on backends that have one per language.
	Language string `json:"language,omitempty" example:"sw"`

	// Direction, when Language is empty, selects the voice of its target.
	Direction string `json:"direction,omitempty" example:"English → Swahili"`
}

// handleSpeak processes a POST /speak request.
//
// @Summary     Synthesize speech
// @Description Returns the synthesized audio. Any synthesis failure, including a
// @Description missing credential, yields 204 with no body.
// @Tags        speech
// @Accept      json
// @Produce     audio/wav
// @Param       request  body  SpeakRequest  true  "Text to speak"
// @Success     200  {file}    binary
// @Success     204  {string}  string  "No audio available"
// @Failure     400  {string}  string  "Invalid request body"
// @Router      /speak [post]
func (t *Transport) handleSpeak(w http.ResponseWriter, r *http.Request) {
	var req SpeakRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if t.speech == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	lang := req.Language
	if lang == "" {
		lang = languageOf(req.Direction)
	}
	out, err := t.speech.Synthesize(r.Context(), req.Text, tts.Options{Language: lang})
	if err != nil {
		slog.Warn("speak: no audio", "kind", tts.Kind(err), "error", err)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ct := out.ContentType
	if ct == "" {
		ct = audio.ContentTypeWAV
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Data)
}

// handleDispatch processes a POST /dispatch request.
//
// @Summary     Dispatch a text or voice message
// @Description Accepts a JSON message (text, or base64 audio) or raw WAV bytes with the
// @Description X-EAC-* headers. The message is transcribed when it carries audio,
// @Description translated, and spoken when the response mode asks for audio.
// @Tags        dispatch
// @Accept      json
// @Accept      audio/wav
// @Produce     json
// @Param       message              body      message.Message  true   "Dispatch request (JSON). For raw audio, POST the bytes directly."
// @Param       X-EAC-Direction      header    string           false  "Direction label (raw audio uploads)"
// @Param       X-EAC-Tone           header    string           false  "Tone label (raw audio uploads)"
// @Param       X-EAC-Source         header    string           false  "Sender identifier (raw audio uploads)"
// @Param       X-EAC-Response-Mode  header    string           false  "text, audio or text+audio (raw audio uploads)"
// @Success     200  {object}  message.DispatchResult
// @Failure     400  {string}  string  "Invalid request"
// @Failure     500  {string}  string  "Internal processing error"
// @Router      /dispatch [post]
func (t *Transport) handleDispatch(w http.ResponseWriter, r *http.Request, handler transport.Handler) {
	var msg *message.Message

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		msg = &message.Message{}
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(msg); err != nil {
			http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if msg.Source == "" {
			msg.Source = "http"
		}
	} else {
		var ok bool
		if msg, ok = rawAudioMessage(w, r); !ok {
			return
		}
		msg.ResponseMode = message.ResponseMode(r.Header.Get(HeaderResponseMode))
	}

	result, err := handler(r.Context(), msg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DirectionInfo describes one supported direction.
type DirectionInfo struct {
	Label  string   `json:"label"`
	Route  string   `json:"route"`
	Models []string `json:"models"`
}

// handleDirections lists the supported directions.
//
// @Summary  List translation directions
// @Tags     lookup
// @Produce  json
// @Success  200  {array}  DirectionInfo
// @Router   /directions [get]
func handleDirections(w http.ResponseWriter, _ *http.Request) {
	out := make([]DirectionInfo, 0, len(route.Directions()))
	for _, d := range route.Directions() {
		rt := route.Resolve(d)
		out = append(out, DirectionInfo{Label: string(d), Route: rt.Kind.String(), Models: rt.Models})
	}
	writeJSON(w, http.StatusOK, out)
}

// ToneInfo describes one tone.
type ToneInfo struct {
	Label  string `json:"label"`
	Prefix string `json:"prefix"`
}

// handleTones lists the tones and their prompt prefixes.
//
// @Summary  List tones
// @Tags     lookup
// @Produce  json
// @Success  200  {array}  ToneInfo
// @Router   /tones [get]
func handleTones(w http.ResponseWriter, _ *http.Request) {
	out := make([]ToneInfo, 0, len(tone.Tones()))
	for _, tn := range tone.Tones() {
		out = append(out, ToneInfo{Label: string(tn), Prefix: tone.Prefix(tn)})
	}
	writeJSON(w, http.StatusOK, out)
}

// rawAudioMessage reads the body as audio and takes the direction and tone
// from headers, falling back to query parameters.
func rawAudioMessage(w http.ResponseWriter, r *http.Request) (*message.Message, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "reading audio: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}

	ct := r.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = audio.ContentTypeWAV
	}
	source := r.Header.Get(HeaderSource)
	if source == "" {
		source = "http"
	}

	msg := &message.Message{
		Source:      source,
		Audio:       data,
		ContentType: ct,
		Direction:   headerOrQuery(r, HeaderDirection, "direction"),
		Tone:        headerOrQuery(r, HeaderTone, "tone"),
	}
	if len(data) == 0 {
		// An empty recording is a too-short recording, not a missing one.
		msg.Audio = audio.Silence(0)
	}
	return msg, true
}

func headerOrQuery(r *http.Request, header, param string) string {
	if v := r.Header.Get(header); v != "" {
		return v
	}
	return r.URL.Query().Get(param)
}

func writeError(w http.ResponseWriter, err error) {
	if transport.IsInvalid(err) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	slog.Error("request failed", "error", err)
	http.Error(w, "internal error: "+err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// languageOf maps a direction's target to a voice language, "" when unknown.
func languageOf(d string) string {
	dir, err := route.Parse(d)
	if err != nil {
		return ""
	}
	code, _ := language.FromName(route.Target(dir))
	return string(code)
}
