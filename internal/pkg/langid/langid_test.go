package langid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectSupportedLanguages(t *testing.T) {
	d := New([]string{"fr", "en", "ar"})

	cases := []struct {
		text string
		want string
	}{
		{"Bonjour, comment allez-vous aujourd'hui ? J'espère que tout va bien.", "fr"},
		{"Hello, how are you doing today? I hope everything is going well.", "en"},
		{"مرحبا كيف حالك اليوم؟ أتمنى أن يكون كل شيء على ما يرام", "ar"},
	}
	for _, c := range cases {
		got, ok := d.Detect(c.text)
		assert.True(t, ok, c.text)
		assert.Equal(t, c.want, got, c.text)
	}
}

func TestDecoyLanguagesAbsorbNeighbors(t *testing.T) {
	// With es/de in the candidate set, neighboring-language texts land
	// on the decoy instead of being forced onto a supported language.
	d := New([]string{"es", "de", "fr", "en", "ar"})

	got, ok := d.Detect("Hola, ¿cómo estás hoy? Espero que todo vaya muy bien en tu ciudad.")
	assert.True(t, ok)
	assert.Equal(t, "es", got)

	got, ok = d.Detect("Guten Morgen, wie geht es dir heute? Ich hoffe, alles ist in Ordnung.")
	assert.True(t, ok)
	assert.Equal(t, "de", got)
}

func TestDetectEmptyText(t *testing.T) {
	d := New([]string{"fr", "en", "ar"})

	_, ok := d.Detect("")
	assert.False(t, ok)
	_, ok = d.Detect("   \n ")
	assert.False(t, ok)
}

func TestNewIgnoresUnknownCodes(t *testing.T) {
	d := New([]string{"fr", "en", "zz"})
	got, ok := d.Detect("The quick brown fox jumps over the lazy dog near the river bank.")
	assert.True(t, ok)
	assert.Equal(t, "en", got)
}

func TestNewEmptyFallsBackToDefaults(t *testing.T) {
	d := New(nil)
	got, ok := d.Detect("Ceci est une phrase écrite en français pour le test de détection.")
	assert.True(t, ok)
	assert.Equal(t, "fr", got)
}
