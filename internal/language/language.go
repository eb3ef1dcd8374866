// Package language classifies text into one of the supported languages.
//
// Detection is advisory. It never fails: anything it cannot place in the
// closed set {en, fr, sw} comes back as Unknown.
package language

import (
	"log/slog"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Code is an ISO-639-1 language code, or Unknown.
type Code string

const (
	English Code = "en"
	French  Code = "fr"
	Swahili Code = "sw"
	Unknown Code = "unknown"
)

// names maps lowercase language names, as they appear in direction labels,
// to codes.
var names = map[string]Code{
	"english": English,
	"french":  French,
	"swahili": Swahili,
}

// FromName maps a language name such as "English" to its code. The match
// is a case-insensitive prefix match, so "english (uk)" still maps to en.
func FromName(name string) (Code, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for prefix, code := range names {
		if strings.HasPrefix(n, prefix) {
			return code, true
		}
	}
	return "", false
}

// Detector classifies text.
type Detector interface {
	Detect(text string) Code
}

// LinguaDetector is a Detector restricted to English, French and Swahili.
// It is safe for concurrent use.
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

// NewDetector builds the detector. Building loads language models lazily,
// so construct one and share it.
func NewDetector() *LinguaDetector {
	d := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.English, lingua.French, lingua.Swahili).
		Build()
	return &LinguaDetector{detector: d}
}

// Detect returns the language of text, or Unknown.
func (d *LinguaDetector) Detect(text string) (code Code) {
	if strings.TrimSpace(text) == "" {
		return Unknown
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Warn("language detection failed", "panic", r)
			code = Unknown
		}
	}()

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return Unknown
	}

	switch lang {
	case lingua.English:
		return English
	case lingua.French:
		return French
	case lingua.Swahili:
		return Swahili
	default:
		return Unknown
	}
}
