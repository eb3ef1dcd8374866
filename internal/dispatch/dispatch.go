// Package dispatch runs one message through the whole pipeline:
// transcribe (audio only) → translate → synthesize (when asked).
//
// Transports call Handle for every message. Bad input and translation
// failures are returned as errors; problems the user can fix by trying
// again (short recording, nothing recognized) and synthesis failures are
// reported on the result.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/qtrinova/eactranslator/internal/language"
	"github.com/qtrinova/eactranslator/internal/message"
	"github.com/qtrinova/eactranslator/internal/route"
	"github.com/qtrinova/eactranslator/internal/stt"
	"github.com/qtrinova/eactranslator/internal/tone"
	"github.com/qtrinova/eactranslator/internal/translator"
	"github.com/qtrinova/eactranslator/internal/tts"
	"github.com/qtrinova/eactranslator/internal/voice"
)

// Translator runs translations. *translator.Translator satisfies it.
type Translator interface {
	Translate(ctx context.Context, req translator.Request) (*translator.Result, error)
}

// Transcriber turns a recording into text. *voice.Adapter satisfies it.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string, opts stt.Options) (string, error)
}

// Synthesizer produces speech. *tts.Speaker satisfies it.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, opts tts.Options) (*tts.Audio, error)
}

// Dispatcher is the request pipeline shared by all transports.
type Dispatcher struct {
	translator  Translator
	transcriber Transcriber // nil if speech input is disabled
	synthesizer Synthesizer // nil if speech output is disabled
}

// New creates a Dispatcher. transcriber and synthesizer may be nil.
func New(tr Translator, transcriber Transcriber, synthesizer Synthesizer) *Dispatcher {
	return &Dispatcher{translator: tr, transcriber: transcriber, synthesizer: synthesizer}
}

// SpeechOutput reports whether a synthesizer is configured.
func (d *Dispatcher) SpeechOutput() bool { return d.synthesizer != nil }

func (d *Dispatcher) resolveResponseMode(mode message.ResponseMode) message.ResponseMode {
	switch mode {
	case message.ResponseModeText, message.ResponseModeAudio, message.ResponseModeTextAudio:
		return mode
	default:
		if d.synthesizer != nil {
			return message.ResponseModeTextAudio
		}
		return message.ResponseModeText
	}
}

func wantText(mode message.ResponseMode) bool {
	return mode == message.ResponseModeText || mode == message.ResponseModeTextAudio
}

func wantAudio(mode message.ResponseMode) bool {
	return mode == message.ResponseModeAudio || mode == message.ResponseModeTextAudio
}

// Handle processes a single message. It is the transport.Handler every
// transport is given.
func (d *Dispatcher) Handle(ctx context.Context, msg *message.Message) (*message.DispatchResult, error) {
	start := time.Now()
	msg.Normalize()
	logger := slog.With("message_id", msg.ID, "source", msg.Source)

	dir, err := route.Parse(msg.Direction)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", message.ErrInvalid, err)
	}
	tn, err := tone.Parse(msg.Tone)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", message.ErrInvalid, err)
	}

	mode := d.resolveResponseMode(msg.ResponseMode)
	logger.Info("dispatch started", "direction", string(dir), "tone", string(tn), "response_mode", mode)

	result := &message.DispatchResult{MessageID: msg.ID}

	// Step 1: pick the text to translate.
	var text string
	switch {
	case msg.HasAudio():
		if d.transcriber == nil {
			return nil, fmt.Errorf("%w: speech input is disabled", message.ErrInvalid)
		}
		logger.Debug("transcribing audio", "content_type", msg.ContentType, "bytes", len(msg.Audio))
		text, err = d.transcriber.Transcribe(ctx, msg.Audio, msg.ContentType, voice.Hint(dir))
		if err != nil {
			var verr *voice.Error
			if !errors.As(err, &verr) {
				return nil, fmt.Errorf("transcribing: %w", err)
			}
			logger.Warn("voice input rejected", "kind", verr.Kind.String(), "error", verr.Err)
			result.Output = verr.UserMessage()
			result.Error = verr.Error()
			return result, nil
		}
		result.Transcript = text
		logger.Info("transcription complete", "text_length", len(text))
	case msg.Text != "":
		text = msg.Text
	default:
		return nil, fmt.Errorf("%w: message has no audio and no text", message.ErrInvalid)
	}

	// Step 2: translate.
	res, err := d.translator.Translate(ctx, translator.Request{Text: text, Direction: dir, Tone: tn})
	if err != nil {
		logger.Error("translation failed", "error", err)
		return nil, err
	}
	result.Translation = res.Translation
	result.Warning = res.Warning
	result.DetectedLanguage = string(res.DetectedLanguage)
	result.Intermediate = res.Intermediate
	if wantText(mode) {
		result.Output = res.Output()
	}

	// Step 3: speak the translation.
	if wantAudio(mode) && d.synthesizer != nil && res.Translation != "" {
		opts := tts.Options{}
		if code, ok := language.FromName(route.Target(dir)); ok {
			opts.Language = string(code)
		}
		out, err := d.synthesizer.Synthesize(ctx, res.Translation, opts)
		if err != nil {
			logger.Warn("speech synthesis failed, continuing without audio", "kind", tts.Kind(err), "error", err)
		} else {
			result.SetResponseAudioBytes(out.Data)
			result.ResponseContentType = out.ContentType
			logger.Debug("speech synthesis complete", "audio_bytes", len(out.Data))
		}
	}

	logger.Info("dispatch complete", "duration", time.Since(start))
	return result, nil
}
