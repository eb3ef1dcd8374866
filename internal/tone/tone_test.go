package tone

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefix_Literals(t *testing.T) {
	assert.Equal(t, "", Prefix(Neutral))
	assert.Equal(t, "Express this romantically: ", Prefix(Romantic))
	assert.Equal(t, "Translate this in a formal tone: ", Prefix(Formal))
	assert.Equal(t, "Make this sound casual: ", Prefix(Casual))
}

func TestParse(t *testing.T) {
	got, err := Parse("Formal")
	require.NoError(t, err)
	assert.Equal(t, Formal, got)

	got, err = Parse("")
	require.NoError(t, err)
	assert.Equal(t, Neutral, got)

	_, err = Parse("Sarcastic")
	assert.ErrorIs(t, err, ErrUnknownTone)
}

func TestProperty_NeutralIsIdentity(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("neutral tone leaves text byte-identical", prop.ForAll(
		func(text string) bool {
			return Apply(Neutral, text) == text
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestProperty_PrefixAppliedOnce(t *testing.T) {
	properties := gopter.NewProperties(nil)
	tones := Tones()

	properties.Property("prompt is prefix followed by the raw text", prop.ForAll(
		func(idx int, text string) bool {
			tn := tones[idx]
			out := Apply(tn, text)
			if !strings.HasPrefix(out, Prefix(tn)) {
				return false
			}
			return strings.TrimPrefix(out, Prefix(tn)) == text && len(out) == len(Prefix(tn))+len(text)
		},
		gen.IntRange(0, len(tones)-1),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
