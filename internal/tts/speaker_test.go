package tts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSynth struct {
	audio *Audio
	err   error
	wait  bool
	calls int
}

func (f *fakeSynth) Name() string { return "fake" }

func (f *fakeSynth) Synthesize(ctx context.Context, _ string, _ Options) (*Audio, error) {
	f.calls++
	if f.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.audio, f.err
}

func (f *fakeSynth) Close() error { return nil }

func TestSpeak_WritesWAVFile(t *testing.T) {
	dir := t.TempDir()
	s := NewSpeaker(&fakeSynth{audio: &Audio{Data: []byte("RIFFdata"), ContentType: "audio/wav"}}, SpeakerConfig{Dir: dir})

	path, ok := s.Speak(context.Background(), "Habari", Options{Language: "sw"})
	require.True(t, ok)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, ".wav", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFFdata"), data)
}

func TestSpeak_AbsentOnFailure(t *testing.T) {
	cases := map[string]error{
		"credential": ErrCredentialAbsent,
		"status":     &StatusError{StatusCode: 503, Body: "loading"},
		"other":      errors.New("boom"),
	}
	for name, err := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			s := NewSpeaker(&fakeSynth{err: err}, SpeakerConfig{Dir: dir})

			path, ok := s.Speak(context.Background(), "Habari", Options{})
			assert.False(t, ok)
			assert.Empty(t, path)

			entries, rerr := os.ReadDir(dir)
			require.NoError(t, rerr)
			assert.Empty(t, entries, "no file on failure")
		})
	}
}

func TestSpeak_EmptyTextSkipsBackend(t *testing.T) {
	f := &fakeSynth{audio: &Audio{Data: []byte("x")}}
	s := NewSpeaker(f, SpeakerConfig{Dir: t.TempDir()})

	_, ok := s.Speak(context.Background(), "   ", Options{})
	assert.False(t, ok)
	assert.Zero(t, f.calls)
}

func TestSynthesize_TimeoutKind(t *testing.T) {
	s := NewSpeaker(&fakeSynth{wait: true}, SpeakerConfig{Timeout: 20 * time.Millisecond})

	_, err := s.Synthesize(context.Background(), "Habari", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, "timeout", Kind(err))
}

func TestSynthesize_EmptyAudioIsError(t *testing.T) {
	s := NewSpeaker(&fakeSynth{audio: &Audio{}}, SpeakerConfig{})

	_, err := s.Synthesize(context.Background(), "Habari", Options{})
	assert.Error(t, err)
}

func TestKind(t *testing.T) {
	assert.Equal(t, "", Kind(nil))
	assert.Equal(t, "credential_absent", Kind(ErrCredentialAbsent))
	assert.Equal(t, "status", Kind(&StatusError{StatusCode: 500}))
	assert.Equal(t, "other", Kind(errors.New("x")))
}
