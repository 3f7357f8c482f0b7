// Package speech defines adapter interfaces over the speech capabilities:
// transcription, audio emotion classification and synthesis. Each adapter
// wraps one external model service; none of them contain pipeline policy.
package speech

import "context"

// Transcriber converts an audio file into text.
type Transcriber interface {
	// Transcribe returns the transcript and the detected language code
	// (ISO 639-1, possibly empty when the backend does not report one).
	Transcribe(ctx context.Context, audioPath string) (text string, lang string, err error)

	// Name returns the adapter identifier.
	Name() string
}

// Classifier assigns a discrete emotion label to an audio file.
type Classifier interface {
	// Classify returns the top emotion label and its confidence.
	Classify(ctx context.Context, audioPath string) (label string, confidence float64, err error)

	// Name returns the adapter identifier.
	Name() string
}

// Synthesizer renders text into an audio artifact.
type Synthesizer interface {
	// Synthesize writes a new audio file under outDir and returns its path.
	Synthesize(ctx context.Context, text string, lang string, outDir string) (path string, err error)

	// Name returns the adapter identifier.
	Name() string
}
