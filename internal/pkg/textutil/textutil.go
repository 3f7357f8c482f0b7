// Package textutil provides small text helpers shared by the ingestion
// and translation paths.
package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// SplitChunks splits text into word-safe chunks of at most budget bytes.
// Words are never broken; a single word longer than the budget becomes a
// chunk of its own. Whitespace runs collapse to single spaces, so joining
// the chunks with " " yields the normalized text.
func SplitChunks(text string, budget int) []string {
	if budget <= 0 {
		budget = 500
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var (
		chunks []string
		cur    strings.Builder
	)
	for _, w := range words {
		add := len(w)
		if cur.Len() > 0 {
			add++
		}
		if cur.Len() > 0 && cur.Len()+add > budget {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// HashString returns the hex-encoded sha256 of s.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// TruncateString shortens s to at most n runes, appending an ellipsis
// when anything was cut.
func TruncateString(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
