package dispatch

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qtrinova/eactranslator/internal/language"
	"github.com/qtrinova/eactranslator/internal/message"
	"github.com/qtrinova/eactranslator/internal/route"
	"github.com/qtrinova/eactranslator/internal/stt"
	"github.com/qtrinova/eactranslator/internal/tone"
	"github.com/qtrinova/eactranslator/internal/translator"
	"github.com/qtrinova/eactranslator/internal/tts"
	"github.com/qtrinova/eactranslator/internal/voice"
)

type fakeTranslator struct {
	res  *translator.Result
	err  error
	reqs []translator.Request
}

func (f *fakeTranslator) Translate(_ context.Context, req translator.Request) (*translator.Result, error) {
	f.reqs = append(f.reqs, req)
	return f.res, f.err
}

type fakeTranscriber struct {
	text string
	err  error
	opts stt.Options
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, _ string, opts stt.Options) (string, error) {
	f.opts = opts
	return f.text, f.err
}

type fakeSynth struct {
	err  error
	opts tts.Options
	text string
}

func (f *fakeSynth) Synthesize(_ context.Context, text string, opts tts.Options) (*tts.Audio, error) {
	f.text, f.opts = text, opts
	if f.err != nil {
		return nil, f.err
	}
	return &tts.Audio{Data: []byte("RIFF"), ContentType: "audio/wav"}, nil
}

func habari() *fakeTranslator {
	return &fakeTranslator{res: &translator.Result{Translation: "Habari", DetectedLanguage: language.English}}
}

func TestHandle_Text(t *testing.T) {
	tr := habari()
	d := New(tr, nil, nil)

	res, err := d.Handle(context.Background(), &message.Message{Text: "Hello", Direction: string(route.EnglishToSwahili)})
	require.NoError(t, err)

	assert.NotEmpty(t, res.MessageID)
	assert.Equal(t, "Habari", res.Output)
	assert.Equal(t, "Habari", res.Translation)
	assert.Equal(t, "en", res.DetectedLanguage)
	assert.Empty(t, res.ResponseAudio, "no synthesizer configured")

	require.Len(t, tr.reqs, 1)
	assert.Equal(t, translator.Request{Text: "Hello", Direction: route.EnglishToSwahili, Tone: tone.Neutral}, tr.reqs[0])
}

func TestHandle_WarningInOutput(t *testing.T) {
	tr := &fakeTranslator{res: &translator.Result{Translation: "Habari", Warning: "⚠ mismatch"}}
	res, err := New(tr, nil, nil).Handle(context.Background(), &message.Message{Text: "Bonjour", Direction: string(route.EnglishToSwahili)})
	require.NoError(t, err)
	assert.Equal(t, "⚠ mismatch\nHabari", res.Output)
}

func TestHandle_AudioInTextAudioOut(t *testing.T) {
	tr := habari()
	tx := &fakeTranscriber{text: "Hello"}
	sy := &fakeSynth{}
	d := New(tr, tx, sy)

	res, err := d.Handle(context.Background(), &message.Message{
		Audio:     []byte("wav"),
		Direction: string(route.EnglishToSwahili),
		Tone:      string(tone.Casual),
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello", res.Transcript)
	assert.Equal(t, "Habari", res.Output)
	assert.Equal(t, "en", tx.opts.Language)
	assert.Equal(t, "sw", sy.opts.Language)
	assert.Equal(t, "Habari", sy.text)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("RIFF")), res.ResponseAudio)
	assert.Equal(t, "audio/wav", res.ResponseContentType)
	assert.Equal(t, tone.Casual, tr.reqs[0].Tone)
}

func TestHandle_AudioOnlyOmitsOutput(t *testing.T) {
	res, err := New(habari(), nil, &fakeSynth{}).Handle(context.Background(), &message.Message{
		Text:         "Hello",
		Direction:    string(route.EnglishToSwahili),
		ResponseMode: message.ResponseModeAudio,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Output)
	assert.NotEmpty(t, res.ResponseAudio)
}

func TestHandle_TextModeSkipsSynthesis(t *testing.T) {
	sy := &fakeSynth{}
	res, err := New(habari(), nil, sy).Handle(context.Background(), &message.Message{
		Text:         "Hello",
		Direction:    string(route.EnglishToSwahili),
		ResponseMode: message.ResponseModeText,
	})
	require.NoError(t, err)
	assert.Empty(t, res.ResponseAudio)
	assert.Empty(t, sy.text)
}

func TestHandle_SynthesisFailureIsSoft(t *testing.T) {
	res, err := New(habari(), nil, &fakeSynth{err: tts.ErrCredentialAbsent}).Handle(context.Background(), &message.Message{
		Text:      "Hello",
		Direction: string(route.EnglishToSwahili),
	})
	require.NoError(t, err)
	assert.Equal(t, "Habari", res.Output)
	assert.Empty(t, res.ResponseAudio)
}

func TestHandle_RejectedAudioIsSoft(t *testing.T) {
	tr := habari()
	d := New(tr, &fakeTranscriber{err: &voice.Error{Kind: voice.TooShort}}, nil)

	res, err := d.Handle(context.Background(), &message.Message{Audio: []byte("x"), Direction: string(route.FrenchToEnglish)})
	require.NoError(t, err)
	assert.Equal(t, voice.TooShortMessage, res.Output)
	assert.Equal(t, "too_short", res.Error)
	assert.Empty(t, tr.reqs)
}

func TestHandle_InvalidInput(t *testing.T) {
	d := New(habari(), nil, nil)

	_, err := d.Handle(context.Background(), &message.Message{Text: "x", Direction: "German → English"})
	assert.ErrorIs(t, err, message.ErrInvalid)
	assert.ErrorIs(t, err, route.ErrUnknownDirection)

	_, err = d.Handle(context.Background(), &message.Message{Text: "x", Direction: string(route.EnglishToFrench), Tone: "Sarcastic"})
	assert.ErrorIs(t, err, tone.ErrUnknownTone)

	_, err = d.Handle(context.Background(), &message.Message{Direction: string(route.EnglishToFrench)})
	assert.ErrorIs(t, err, message.ErrInvalid)

	_, err = d.Handle(context.Background(), &message.Message{Audio: []byte("x"), Direction: string(route.EnglishToFrench)})
	assert.ErrorIs(t, err, message.ErrInvalid, "speech input disabled")
}

func TestHandle_TranslationErrorPropagates(t *testing.T) {
	boom := errors.New("loading model: 404")
	_, err := New(&fakeTranslator{err: boom}, nil, nil).Handle(context.Background(), &message.Message{
		Text:      "Hello",
		Direction: string(route.EnglishToSwahili),
	})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, message.ErrInvalid)
}
