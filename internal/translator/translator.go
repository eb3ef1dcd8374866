// Package translator runs one translation request end to end: language
// check, tone prefix, one or two model hops, and the journal record.
package translator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/qtrinova/eactranslator/internal/journal"
	"github.com/qtrinova/eactranslator/internal/language"
	"github.com/qtrinova/eactranslator/internal/model"
	"github.com/qtrinova/eactranslator/internal/route"
	"github.com/qtrinova/eactranslator/internal/tone"
)

// JournalPolicy decides what a failed journal write does to the request.
type JournalPolicy string

const (
	// JournalWarn logs the failure and reports it on Result.JournalError.
	JournalWarn JournalPolicy = "warn"

	// JournalFail fails the request.
	JournalFail JournalPolicy = "fail"
)

// ParseJournalPolicy maps a config value to a policy. Empty means warn.
func ParseJournalPolicy(s string) (JournalPolicy, error) {
	switch JournalPolicy(s) {
	case "", JournalWarn:
		return JournalWarn, nil
	case JournalFail:
		return JournalFail, nil
	default:
		return "", fmt.Errorf("unknown journal policy %q (want %q or %q)", s, JournalWarn, JournalFail)
	}
}

// Models hands out loaded model handles. *model.Cache satisfies it.
type Models interface {
	Get(ctx context.Context, modelID string) (model.Handle, error)
}

// Request is one translation call.
type Request struct {
	Text      string
	Direction route.Direction
	Tone      tone.Tone
}

// Result is the outcome of a translation.
type Result struct {
	Translation      string
	Warning          string
	DetectedLanguage language.Code

	// Intermediate is the first hop's output on pivot routes.
	Intermediate string

	// Models lists the models run, in order.
	Models []string

	// JournalError is set when the journal write failed under JournalWarn.
	JournalError error
}

// Output renders the user-facing string: the translation, preceded by the
// warning and a line break when there is one.
func (r *Result) Output() string {
	if r.Warning != "" {
		return r.Warning + "\n" + r.Translation
	}
	return r.Translation
}

// Deps wires a Translator.
type Deps struct {
	Models   Models
	Detector language.Detector
	Journal  journal.Recorder
	Policy   JournalPolicy

	// Now defaults to time.Now.
	Now func() time.Time
}

// Translator is the translation pipeline. It holds no per-request state and
// is safe for concurrent use when its dependencies are.
type Translator struct {
	models   Models
	detector language.Detector
	journal  journal.Recorder
	policy   JournalPolicy
	now      func() time.Time
}

// New creates a Translator.
func New(d Deps) *Translator {
	policy := d.Policy
	if policy == "" {
		policy = JournalWarn
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Translator{
		models:   d.Models,
		detector: d.Detector,
		journal:  d.Journal,
		policy:   policy,
		now:      now,
	}
}

// Translate runs req through its route. Model load and inference errors
// fail the request; detection never does.
func (t *Translator) Translate(ctx context.Context, req Request) (*Result, error) {
	if _, err := route.Parse(string(req.Direction)); err != nil {
		return nil, err
	}
	tn, err := tone.Parse(string(req.Tone))
	if err != nil {
		return nil, err
	}

	logger := slog.With("direction", string(req.Direction), "tone", string(tn))

	detected := t.detector.Detect(req.Text)
	result := &Result{
		DetectedLanguage: detected,
		Warning:          mismatchWarning(req.Direction, detected),
	}
	if result.Warning != "" {
		logger.Debug("source language mismatch", "detected", detected)
	}

	prompt := tone.Apply(tn, req.Text)
	rt := route.Resolve(req.Direction)
	result.Models = rt.Models

	switch rt.Kind {
	case route.Direct:
		result.Translation, err = t.hop(ctx, rt.Models[0], prompt)
		if err != nil {
			return nil, err
		}
	case route.Pivot:
		result.Intermediate, err = t.hop(ctx, rt.Models[0], prompt)
		if err != nil {
			return nil, err
		}
		result.Translation, err = t.hop(ctx, rt.Models[1], result.Intermediate)
		if err != nil {
			return nil, err
		}
	default:
		panic(fmt.Sprintf("translator: unhandled route kind %v", rt.Kind))
	}

	entry := journal.Entry{
		Timestamp: t.now(),
		Direction: string(req.Direction),
		Tone:      string(tn),
		Input:     req.Text,
		Output:    result.Translation,
	}
	if err := t.journal.Record(entry); err != nil {
		if t.policy == JournalFail {
			return nil, fmt.Errorf("recording translation: %w", err)
		}
		logger.Error("failed to record translation", "error", err)
		result.JournalError = err
	}

	logger.Info("translation complete", "route", rt.Kind.String(), "detected", detected, "output_length", len(result.Translation))
	return result, nil
}

func (t *Translator) hop(ctx context.Context, modelID, text string) (string, error) {
	h, err := t.models.Get(ctx, modelID)
	if err != nil {
		return "", err
	}
	out, err := h.Translate(ctx, text)
	if err != nil {
		return "", fmt.Errorf("translating with %s: %w", modelID, err)
	}
	return out, nil
}

// mismatchWarning compares the detected code with the direction's source
// language. Unknown detections count as a mismatch.
func mismatchWarning(d route.Direction, detected language.Code) string {
	src := route.Source(d)
	expected, ok := language.FromName(src)
	if !ok || detected == expected {
		return ""
	}
	return fmt.Sprintf("⚠ Detected language is '%s', but you selected %s as source.", detected, src)
}
