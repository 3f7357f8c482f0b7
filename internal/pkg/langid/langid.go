// Package langid detects the language of a text among the languages the
// service supports.
package langid

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Detector identifies the language of a text. It is safe for concurrent
// use.
type Detector struct {
	detector lingua.LanguageDetector
	sample   int
}

// New builds a detector restricted to the given ISO 639-1 codes.
// Unknown codes are ignored; with fewer than two usable languages the
// detector still works but always reports the single candidate.
func New(codes []string) *Detector {
	var langs []lingua.Language
	for _, c := range codes {
		switch strings.ToLower(c) {
		case "fr":
			langs = append(langs, lingua.French)
		case "en":
			langs = append(langs, lingua.English)
		case "ar":
			langs = append(langs, lingua.Arabic)
		case "es":
			langs = append(langs, lingua.Spanish)
		case "de":
			langs = append(langs, lingua.German)
		}
	}
	if len(langs) == 0 {
		langs = []lingua.Language{lingua.French, lingua.English, lingua.Arabic}
	}
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().FromLanguages(langs...).Build(),
		sample:   500,
	}
}

// Detect returns the ISO 639-1 code of the detected language. Only the
// first 500 runes are examined; longer texts gain no accuracy worth the
// extra work. ok is false when no language could be determined.
func (d *Detector) Detect(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	runes := []rune(text)
	if len(runes) > d.sample {
		text = string(runes[:d.sample])
	}

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
