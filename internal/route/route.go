// Package route maps a translation direction to the model (or chain of
// models) that serves it.
//
// Only four directions exist. Three are served by a single MarianMT model;
// French → Swahili has no direct model and pivots through English.
package route

import (
	"errors"
	"fmt"
	"strings"
)

// Direction is a user-facing source→target label. The label doubles as the
// routing key, so its exact text matters.
type Direction string

const (
	EnglishToSwahili Direction = "English → Swahili"
	EnglishToFrench  Direction = "English → French"
	FrenchToEnglish  Direction = "French → English"
	FrenchToSwahili  Direction = "French → Swahili (via English)"
)

// Model identifiers on the Hugging Face hub.
const (
	ModelEnSw = "Helsinki-NLP/opus-mt-en-sw"
	ModelEnFr = "Helsinki-NLP/opus-mt-en-fr"
	ModelFrEn = "Helsinki-NLP/opus-mt-fr-en"
)

// ErrUnknownDirection is returned by Parse for labels outside the table.
var ErrUnknownDirection = errors.New("unknown translation direction")

// Kind tags a Route as direct or pivot.
type Kind int

const (
	Direct Kind = iota + 1
	Pivot
)

func (k Kind) String() string {
	switch k {
	case Direct:
		return "direct"
	case Pivot:
		return "pivot"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Route is the ordered list of models a direction runs through.
// A Direct route has one model, a Pivot route has two.
type Route struct {
	Kind   Kind
	Models []string
}

// NewDirect builds a single-model route.
func NewDirect(model string) Route {
	return Route{Kind: Direct, Models: []string{model}}
}

// NewPivot builds a two-hop route: first translates into the pivot
// language, second translates out of it.
func NewPivot(first, second string) Route {
	return Route{Kind: Pivot, Models: []string{first, second}}
}

var table = map[Direction]Route{
	EnglishToSwahili: NewDirect(ModelEnSw),
	EnglishToFrench:  NewDirect(ModelEnFr),
	FrenchToEnglish:  NewDirect(ModelFrEn),
	FrenchToSwahili:  NewPivot(ModelFrEn, ModelEnSw),
}

// Directions returns all supported directions in display order.
func Directions() []Direction {
	return []Direction{EnglishToSwahili, EnglishToFrench, FrenchToEnglish, FrenchToSwahili}
}

// Parse validates a direction label.
func Parse(label string) (Direction, error) {
	d := Direction(label)
	if _, ok := table[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDirection, label)
	}
	return d, nil
}

// Resolve returns the route for d. Callers must pass a direction obtained
// from Parse or one of the constants; anything else panics.
func Resolve(d Direction) Route {
	r, ok := table[d]
	if !ok {
		panic(fmt.Sprintf("route: unmapped direction %q", string(d)))
	}
	// Hand out a copy so the table stays immutable.
	models := make([]string, len(r.Models))
	copy(models, r.Models)
	return Route{Kind: r.Kind, Models: models}
}

// Source returns the source-language half of the label, e.g. "French" for
// "French → Swahili (via English)".
func Source(d Direction) string {
	src, _, _ := strings.Cut(string(d), " → ")
	return strings.TrimSpace(src)
}

// Target returns the target-language half of the label without any pivot
// note, e.g. "Swahili" for "French → Swahili (via English)".
func Target(d Direction) string {
	_, dst, _ := strings.Cut(string(d), " → ")
	dst, _, _ = strings.Cut(dst, " (")
	return strings.TrimSpace(dst)
}

// Models returns every distinct model id referenced by the table.
func Models() []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range Directions() {
		for _, m := range table[d].Models {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out
}
