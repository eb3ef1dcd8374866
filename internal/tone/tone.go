// Package tone defines the tone profiles a user can pick and the literal
// prefix each one prepends to the text before translation.
package tone

import (
	"errors"
	"fmt"
)

// Tone is a user-facing tone label.
type Tone string

const (
	Neutral  Tone = "Neutral"
	Romantic Tone = "Romantic"
	Formal   Tone = "Formal"
	Casual   Tone = "Casual"
)

// ErrUnknownTone is returned by Parse for labels outside the table.
var ErrUnknownTone = errors.New("unknown tone")

var prefixes = map[Tone]string{
	Neutral:  "",
	Romantic: "Express this romantically: ",
	Formal:   "Translate this in a formal tone: ",
	Casual:   "Make this sound casual: ",
}

// Tones returns all tones in display order.
func Tones() []Tone {
	return []Tone{Neutral, Romantic, Formal, Casual}
}

// Parse validates a tone label. An empty label means Neutral.
func Parse(label string) (Tone, error) {
	if label == "" {
		return Neutral, nil
	}
	t := Tone(label)
	if _, ok := prefixes[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTone, label)
	}
	return t, nil
}

// Prefix returns the literal prefix for t. Neutral and unknown tones
// return "".
func Prefix(t Tone) string {
	return prefixes[t]
}

// Apply prepends the tone prefix to text exactly once.
func Apply(t Tone, text string) string {
	return Prefix(t) + text
}
