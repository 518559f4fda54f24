// Package dedupe collapses extraction candidates that overlapping chunks
// produced more than once.
package dedupe

import (
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
)

// normalizedLength is the number of UTF-16 code units of normalized content that take part in the hash
const normalizedLength = 100

// Normalize strips all whitespace, lowercases and truncates content to its
// first 100 UTF-16 code units.
func Normalize(content string) []uint16 {
	var b strings.Builder
	b.Grow(len(content))
	for _, r := range content {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	units := utf16.Encode([]rune(b.String()))
	if len(units) > normalizedLength {
		units = units[:normalizedLength]
	}
	return units
}

// Hash is the 32-bit polynomial string hash (h = h*31 + unit) over the
// normalized content, wrapping on signed overflow.
func Hash(content string) int32 {
	var h int32
	for _, u := range Normalize(content) {
		h = h*31 + int32(u)
	}
	return h
}

// Candidates returns one candidate per content hash. Among colliding
// candidates the one with the higher confidence wins and ties keep the
// first seen. The survivor takes the position of the first occurrence.
func Candidates(candidates []entities.Candidate) []entities.Candidate {
	if len(candidates) == 0 {
		return nil
	}

	slots := make(map[int32]int, len(candidates))
	unique := make([]entities.Candidate, 0, len(candidates))
	for _, c := range candidates {
		h := Hash(c.Content)
		idx, seen := slots[h]
		if !seen {
			slots[h] = len(unique)
			unique = append(unique, c)
			continue
		}
		if c.Confidence > unique[idx].Confidence {
			unique[idx] = c
		}
	}
	return unique
}
