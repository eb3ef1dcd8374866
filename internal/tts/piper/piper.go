// Package piper implements tts.Synthesizer against a Piper server speaking
// the Wyoming protocol (e.g. the rhasspy/wyoming-piper container on TCP
// port 10200). It needs no credential.
package piper

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/qtrinova/eactranslator/internal/audio"
	"github.com/qtrinova/eactranslator/internal/tts"
)

// DefaultVoices maps language codes to Piper voice names.
var DefaultVoices = map[string]string{
	"en": "en_US-lessac-medium",
	"fr": "fr_FR-siwis-medium",
	"sw": "sw_CD-lanfrica-medium",
}

// Config configures a Synthesizer.
type Config struct {
	// Endpoint is host:port of the Wyoming server. tcp:// is accepted.
	Endpoint string

	// Voices overrides entries of DefaultVoices.
	Voices map[string]string

	DialTimeout time.Duration
}

// Synthesizer implements tts.Synthesizer. Every call opens its own
// connection.
type Synthesizer struct {
	endpoint    string
	voices      map[string]string
	dialTimeout time.Duration
}

// New creates a Piper synthesizer.
func New(cfg Config) *Synthesizer {
	voices := make(map[string]string, len(DefaultVoices)+len(cfg.Voices))
	for k, v := range DefaultVoices {
		voices[k] = v
	}
	for k, v := range cfg.Voices {
		voices[strings.ToLower(k)] = v
	}

	dt := cfg.DialTimeout
	if dt <= 0 {
		dt = 10 * time.Second
	}

	return &Synthesizer{
		endpoint:    strings.TrimPrefix(cfg.Endpoint, "tcp://"),
		voices:      voices,
		dialTimeout: dt,
	}
}

// Name implements tts.Synthesizer.
func (s *Synthesizer) Name() string { return "piper" }

// Voice returns the voice used for a language, falling back to English.
func (s *Synthesizer) Voice(lang string) string {
	if v := s.voices[lang]; v != "" {
		return v
	}
	return s.voices["en"]
}

// Synthesize implements tts.Synthesizer. The PCM stream is returned wrapped
// in a WAV container.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.Options) (*tts.Audio, error) {
	if s.endpoint == "" {
		return nil, errors.New("no piper endpoint configured")
	}
	voice := opts.Voice
	if voice == "" {
		voice = s.Voice(opts.Language)
	}

	dialer := net.Dialer{Timeout: s.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.endpoint)
	if err != nil {
		return nil, classify(fmt.Errorf("connecting to piper: %w", err))
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	// Unblock reads when the caller goes away.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	slog.Debug("piper synthesize", "endpoint", s.endpoint, "voice", voice, "text_length", len(text))

	req := event{
		Type: "synthesize",
		Data: map[string]any{
			"text":  text,
			"voice": map[string]any{"name": voice},
		},
	}
	if err := writeEvent(conn, req); err != nil {
		return nil, classify(fmt.Errorf("sending synthesize event: %w", err))
	}

	var (
		r   = bufio.NewReader(conn)
		pcm bytes.Buffer
		f   = audio.DefaultFormat
	)
	for {
		evt, err := readEvent(r)
		if err != nil {
			return nil, classify(fmt.Errorf("reading piper response: %w", err))
		}

		switch evt.Type {
		case "audio-start":
			f = audio.Format{
				SampleRate:     intField(evt.Data, "rate", f.SampleRate),
				Channels:       intField(evt.Data, "channels", f.Channels),
				BytesPerSample: intField(evt.Data, "width", f.BytesPerSample),
			}
		case "audio-chunk":
			pcm.Write(evt.Payload)
		case "audio-stop":
			return &tts.Audio{
				Data:        audio.PCMToWAV(pcm.Bytes(), f),
				ContentType: audio.ContentTypeWAV,
				SampleRate:  f.SampleRate,
				Channels:    f.Channels,
			}, nil
		case "error":
			msg, _ := evt.Data["text"].(string)
			if msg == "" {
				msg = "unknown error"
			}
			return nil, fmt.Errorf("piper: %s", msg)
		default:
			slog.Debug("piper event ignored", "type", evt.Type)
		}
	}
}

// Close implements tts.Synthesizer.
func (s *Synthesizer) Close() error { return nil }

func classify(err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%w: %v", tts.ErrTimeout, err)
	}
	return err
}
