package translator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qtrinova/eactranslator/internal/journal"
	"github.com/qtrinova/eactranslator/internal/language"
	"github.com/qtrinova/eactranslator/internal/model"
	"github.com/qtrinova/eactranslator/internal/route"
	"github.com/qtrinova/eactranslator/internal/tone"
)

// fakeHandle records every input it is asked to translate.
type fakeHandle struct {
	id     string
	output func(in string) string
	inputs *[]call
	mu     *sync.Mutex
}

type call struct {
	model string
	input string
}

func (h *fakeHandle) ID() string { return h.id }

func (h *fakeHandle) Translate(_ context.Context, text string) (string, error) {
	h.mu.Lock()
	*h.inputs = append(*h.inputs, call{model: h.id, input: text})
	h.mu.Unlock()
	return h.output(text), nil
}

type fakeModels struct {
	mu      sync.Mutex
	calls   []call
	loads   []string
	outputs map[string]func(string) string
	fail    map[string]error
}

func newFakeModels() *fakeModels {
	return &fakeModels{
		outputs: map[string]func(string) string{
			route.ModelEnSw: func(string) string { return "Habari" },
			route.ModelEnFr: func(string) string { return "Bonjour" },
			route.ModelFrEn: func(in string) string { return "Good morning (" + in + ")" },
		},
		fail: map[string]error{},
	}
}

func (f *fakeModels) Get(_ context.Context, id string) (model.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, id)
	if err := f.fail[id]; err != nil {
		return nil, err
	}
	return &fakeHandle{id: id, output: f.outputs[id], inputs: &f.calls, mu: &f.mu}, nil
}

type fixedDetector language.Code

func (d fixedDetector) Detect(string) language.Code { return language.Code(d) }

type memJournal struct {
	entries []journal.Entry
	err     error
}

func (m *memJournal) Record(e journal.Entry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func newTranslator(models Models, det language.Detector, j journal.Recorder, policy JournalPolicy) *Translator {
	return New(Deps{
		Models:   models,
		Detector: det,
		Journal:  j,
		Policy:   policy,
		Now:      func() time.Time { return fixedNow },
	})
}

func TestTranslate_DirectNeutral(t *testing.T) {
	models := newFakeModels()
	j := &memJournal{}
	tr := newTranslator(models, fixedDetector(language.English), j, JournalWarn)

	res, err := tr.Translate(context.Background(), Request{Text: "Hello", Direction: route.EnglishToSwahili, Tone: tone.Neutral})
	require.NoError(t, err)

	assert.Equal(t, []string{"Helsinki-NLP/opus-mt-en-sw"}, models.loads)
	require.Len(t, models.calls, 1)
	assert.Equal(t, "Hello", models.calls[0].input)

	assert.Equal(t, "Habari", res.Translation)
	assert.Empty(t, res.Warning)
	assert.Equal(t, "Habari", res.Output())

	require.Len(t, j.entries, 1)
	assert.Equal(t, "Hello", j.entries[0].Input)
	assert.Equal(t, "Habari", j.entries[0].Output)
	assert.Equal(t, "English → Swahili", j.entries[0].Direction)
	assert.Equal(t, "Neutral", j.entries[0].Tone)
	assert.Equal(t, fixedNow, j.entries[0].Timestamp)
	assert.Contains(t, j.entries[0].Format(), "Input: Hello\n")
}

func TestTranslate_PivotFormal(t *testing.T) {
	models := newFakeModels()
	j := &memJournal{}
	tr := newTranslator(models, fixedDetector(language.French), j, JournalWarn)

	res, err := tr.Translate(context.Background(), Request{Text: "Bonjour", Direction: route.FrenchToSwahili, Tone: tone.Formal})
	require.NoError(t, err)

	assert.Equal(t, []string{route.ModelFrEn, route.ModelEnSw}, models.loads)
	require.Len(t, models.calls, 2)
	assert.Equal(t, "Translate this in a formal tone: Bonjour", models.calls[0].input)
	// Second hop gets the first hop's output verbatim, no tone.
	assert.Equal(t, "Good morning (Translate this in a formal tone: Bonjour)", models.calls[1].input)
	assert.Equal(t, models.calls[1].input, res.Intermediate)
	assert.Equal(t, "Habari", res.Translation)
	assert.Empty(t, res.Warning)

	require.Len(t, j.entries, 1)
	assert.Equal(t, "Bonjour", j.entries[0].Input)
	assert.Equal(t, "French → Swahili (via English)", j.entries[0].Direction)
}

func TestTranslate_MismatchWarning(t *testing.T) {
	tr := newTranslator(newFakeModels(), fixedDetector(language.French), &memJournal{}, JournalWarn)

	res, err := tr.Translate(context.Background(), Request{Text: "Bonjour", Direction: route.EnglishToSwahili, Tone: tone.Neutral})
	require.NoError(t, err)

	assert.Equal(t, "⚠ Detected language is 'fr', but you selected English as source.", res.Warning)
	assert.Contains(t, res.Warning, "fr")
	assert.Contains(t, res.Warning, "English")
	assert.Equal(t, res.Warning+"\nHabari", res.Output())
}

func TestTranslate_UnknownDetectionWarns(t *testing.T) {
	tr := newTranslator(newFakeModels(), fixedDetector(language.Unknown), &memJournal{}, JournalWarn)

	res, err := tr.Translate(context.Background(), Request{Text: "", Direction: route.FrenchToEnglish, Tone: tone.Neutral})
	require.NoError(t, err)
	assert.Equal(t, "⚠ Detected language is 'unknown', but you selected French as source.", res.Warning)
}

func TestProperty_WarningIffMismatch(t *testing.T) {
	properties := gopter.NewProperties(nil)
	directions := route.Directions()
	codes := []language.Code{language.English, language.French, language.Swahili, language.Unknown}

	properties.Property("warning present exactly when detection disagrees with source", prop.ForAll(
		func(di, ci int) bool {
			d := directions[di]
			detected := codes[ci]
			tr := newTranslator(newFakeModels(), fixedDetector(detected), &memJournal{}, JournalWarn)
			res, err := tr.Translate(context.Background(), Request{Text: "x", Direction: d, Tone: tone.Neutral})
			if err != nil {
				return false
			}
			expected, _ := language.FromName(route.Source(d))
			mismatch := detected != expected
			return (res.Warning != "") == mismatch &&
				(!mismatch || strings.Contains(res.Warning, string(detected)) && strings.Contains(res.Warning, route.Source(d)))
		},
		gen.IntRange(0, len(directions)-1),
		gen.IntRange(0, len(codes)-1),
	))

	properties.TestingRun(t)
}

func TestTranslate_ModelLoadFailurePropagates(t *testing.T) {
	models := newFakeModels()
	boom := errors.New("model not found")
	models.fail[route.ModelEnSw] = boom
	j := &memJournal{}
	tr := newTranslator(models, fixedDetector(language.French), j, JournalWarn)

	res, err := tr.Translate(context.Background(), Request{Text: "Bonjour", Direction: route.FrenchToSwahili, Tone: tone.Neutral})
	require.ErrorIs(t, err, boom)
	assert.Nil(t, res)
	assert.Empty(t, j.entries, "no journal entry for failed requests")
	// First hop ran, second never did.
	assert.Len(t, models.calls, 1)
}

func TestTranslate_JournalWarnPolicy(t *testing.T) {
	diskFull := errors.New("no space left on device")
	tr := newTranslator(newFakeModels(), fixedDetector(language.English), &memJournal{err: diskFull}, JournalWarn)

	res, err := tr.Translate(context.Background(), Request{Text: "Hello", Direction: route.EnglishToFrench, Tone: tone.Casual})
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", res.Translation)
	assert.ErrorIs(t, res.JournalError, diskFull)
}

func TestTranslate_JournalFailPolicy(t *testing.T) {
	diskFull := errors.New("no space left on device")
	tr := newTranslator(newFakeModels(), fixedDetector(language.English), &memJournal{err: diskFull}, JournalFail)

	_, err := tr.Translate(context.Background(), Request{Text: "Hello", Direction: route.EnglishToFrench, Tone: tone.Casual})
	assert.ErrorIs(t, err, diskFull)
}

func TestTranslate_RejectsUnknownLabels(t *testing.T) {
	tr := newTranslator(newFakeModels(), fixedDetector(language.English), &memJournal{}, JournalWarn)

	_, err := tr.Translate(context.Background(), Request{Text: "x", Direction: "English → German", Tone: tone.Neutral})
	assert.ErrorIs(t, err, route.ErrUnknownDirection)

	_, err = tr.Translate(context.Background(), Request{Text: "x", Direction: route.EnglishToFrench, Tone: "Angry"})
	assert.ErrorIs(t, err, tone.ErrUnknownTone)
}

func TestParseJournalPolicy(t *testing.T) {
	p, err := ParseJournalPolicy("")
	require.NoError(t, err)
	assert.Equal(t, JournalWarn, p)

	p, err = ParseJournalPolicy("fail")
	require.NoError(t, err)
	assert.Equal(t, JournalFail, p)

	_, err = ParseJournalPolicy("ignore")
	assert.Error(t, err)
}

func TestTranslate_WithRealCacheLoadsOnce(t *testing.T) {
	models := newFakeModels()
	loads := 0
	cache := model.NewCache(func(ctx context.Context, id string) (model.Handle, error) {
		loads++
		return models.Get(ctx, id)
	})
	tr := newTranslator(cache, fixedDetector(language.English), &memJournal{}, JournalWarn)

	for i := 0; i < 3; i++ {
		_, err := tr.Translate(context.Background(), Request{Text: "Hello", Direction: route.EnglishToSwahili, Tone: tone.Neutral})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, loads)
}
