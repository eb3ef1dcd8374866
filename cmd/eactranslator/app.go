package main

import (
	"fmt"
	"log/slog"

	"github.com/qtrinova/eactranslator/internal/config"
	"github.com/qtrinova/eactranslator/internal/hf"
	"github.com/qtrinova/eactranslator/internal/journal"
	"github.com/qtrinova/eactranslator/internal/language"
	"github.com/qtrinova/eactranslator/internal/model"
	hfmodel "github.com/qtrinova/eactranslator/internal/model/huggingface"
	"github.com/qtrinova/eactranslator/internal/stt"
	hfstt "github.com/qtrinova/eactranslator/internal/stt/huggingface"
	"github.com/qtrinova/eactranslator/internal/stt/whisper"
	"github.com/qtrinova/eactranslator/internal/translator"
	"github.com/qtrinova/eactranslator/internal/tts"
	hftts "github.com/qtrinova/eactranslator/internal/tts/huggingface"
	"github.com/qtrinova/eactranslator/internal/tts/piper"
	"github.com/qtrinova/eactranslator/internal/voice"
)

// app holds the components built from one configuration. voice and
// speaker are nil when the matching speech adapter is disabled.
type app struct {
	cfg        *config.Config
	cache      *model.Cache
	journal    *journal.Journal
	translator *translator.Translator
	voice      *voice.Adapter
	speaker    *tts.Speaker
}

func newApp(cfg *config.Config) (*app, error) {
	policy, err := translator.ParseJournalPolicy(cfg.Journal.OnError)
	if err != nil {
		return nil, err
	}

	j, err := journal.Open(journal.Config{Path: cfg.Journal.Path, MaxSizeMB: cfg.Journal.MaxSizeMB})
	if err != nil {
		return nil, err
	}

	models := hf.New(hf.Config{
		HubURL:       cfg.Models.HubURL,
		InferenceURL: cfg.Models.InferenceURL,
		Token:        cfg.Models.Token,
		Timeout:      cfg.Models.Timeout,
	})
	if !models.HasToken() {
		slog.Warn("no Hugging Face token configured, hub requests are anonymous")
	}
	cache := model.NewCache(hfmodel.NewLoader(models))

	a := &app{
		cfg:     cfg,
		cache:   cache,
		journal: j,
		translator: translator.New(translator.Deps{
			Models:   cache,
			Detector: language.NewDetector(),
			Journal:  j,
			Policy:   policy,
		}),
	}

	if in := cfg.Speech.Input; in.Enabled {
		tr, err := newTranscriber(cfg)
		if err != nil {
			_ = j.Close()
			return nil, err
		}
		a.voice = voice.New(tr, a.translator, voice.Config{MinFrameBytes: in.MinFrameBytes})
		slog.Info("speech input enabled", "backend", tr.Name())
	}

	if out := cfg.Speech.Output; out.Enabled {
		synth, err := newSynthesizer(cfg)
		if err != nil {
			_ = j.Close()
			return nil, err
		}
		a.speaker = tts.NewSpeaker(synth, tts.SpeakerConfig{Dir: out.OutputDir, Timeout: out.Timeout})
		slog.Info("speech output enabled", "backend", synth.Name())
	}

	return a, nil
}

func newTranscriber(cfg *config.Config) (stt.Transcriber, error) {
	in := cfg.Speech.Input
	switch in.Backend {
	case "huggingface":
		client := hf.New(hf.Config{
			HubURL:       cfg.Models.HubURL,
			InferenceURL: cfg.Models.InferenceURL,
			Token:        cfg.Models.Token,
			Timeout:      in.Timeout,
			Retries:      in.Retries,
		})
		return hfstt.New(client, in.Model), nil
	case "whisper":
		return whisper.New(whisper.Config{
			Endpoint: in.Endpoint,
			Flavor:   in.Flavor,
			Model:    in.Model,
			Language: in.Language,
			Timeout:  in.Timeout,
			Retries:  in.Retries,
		}), nil
	default:
		return nil, fmt.Errorf("unknown speech input backend %q", in.Backend)
	}
}

func newSynthesizer(cfg *config.Config) (tts.Synthesizer, error) {
	out := cfg.Speech.Output
	switch out.Backend {
	case "huggingface":
		client := hf.New(hf.Config{
			HubURL:       cfg.Models.HubURL,
			InferenceURL: cfg.Models.InferenceURL,
			Token:        out.Token,
			Timeout:      out.Timeout,
			Retries:      out.Retries,
		})
		return hftts.New(client, out.Model), nil
	case "piper":
		return piper.New(piper.Config{
			Endpoint: out.Piper.Endpoint,
			Voices:   out.Piper.Voices,
		}), nil
	default:
		return nil, fmt.Errorf("unknown speech output backend %q", out.Backend)
	}
}

func (a *app) Close() {
	if a.speaker != nil {
		if err := a.speaker.Close(); err != nil {
			slog.Error("closing speech output", "error", err)
		}
	}
	if err := a.journal.Close(); err != nil {
		slog.Error("closing journal", "error", err)
	}
}
