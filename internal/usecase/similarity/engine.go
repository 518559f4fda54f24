// Package similarity scores pairs of thoughts with a lexical TF-IDF cosine,
// blended with an embedding cosine when both sides carry a vector.
package similarity

import (
	"maps"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
)

// Blend weights applied when both thoughts have embeddings
const (
	LexicalWeight  = 0.4
	SemanticWeight = 0.6
)

// DefaultThreshold is the minimum final score for a candidate to be kept
const DefaultThreshold = 0.5

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Engine finds near-duplicate thoughts. It holds no mutable state.
type Engine struct {
	threshold float64
	topK      int
}

// NewEngine creates an engine. A single threshold gates the final score,
// whether blended or lexical only. topK is capped at MaxSimilarThoughts.
func NewEngine(threshold float64, topK int) *Engine {
	if topK <= 0 || topK > entities.MaxSimilarThoughts {
		topK = entities.MaxSimilarThoughts
	}
	return &Engine{threshold: threshold, topK: topK}
}

// Threshold returns the acceptance bar for FindSimilar
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Score returns the similarity of two thoughts in [0, 1]
func (e *Engine) Score(a, b *entities.Thought) float64 {
	lexical := Lexical(a.Content, b.Content)
	semantic, ok := Cosine(a.Embedding, b.Embedding)
	if !ok {
		return lexical
	}
	return clamp(LexicalWeight*lexical + SemanticWeight*semantic)
}

// FindSimilar scores target against corpus and returns the best matches at or
// above the threshold, highest first, all with pending status. The target
// itself and merged thoughts are never returned.
func (e *Engine) FindSimilar(target *entities.Thought, corpus []*entities.Thought) []entities.SimilarThought {
	matches := make([]entities.SimilarThought, 0)
	if target == nil {
		return matches
	}

	seen := make(map[string]struct{}, len(corpus))
	for _, other := range corpus {
		if other == nil || other.ID == target.ID || other.IsMerged {
			continue
		}
		key := other.ID.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		score := e.Score(target, other)
		if score < e.threshold {
			continue
		}
		matches = append(matches, entities.SimilarThought{
			ThoughtID:  other.ID,
			Similarity: score,
			Status:     entities.SimilarStatusPending,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > e.topK {
		matches = matches[:e.topK]
	}
	return matches
}

// Lexical builds a TF-IDF model over the two-document corpus {a, b} and
// returns the cosine of the two weight vectors. Returns 0 when either text
// has no tokens.
func Lexical(a, b string) float64 {
	tfA := termFrequencies(a)
	tfB := termFrequencies(b)
	if len(tfA) == 0 || len(tfB) == 0 {
		return 0
	}

	if maps.Equal(tfA, tfB) {
		return 1
	}

	terms := make([]string, 0, len(tfA)+len(tfB))
	for term := range tfA {
		terms = append(terms, term)
	}
	for term := range tfB {
		if _, shared := tfA[term]; !shared {
			terms = append(terms, term)
		}
	}
	// Fixed summation order keeps the score stable and symmetric
	sort.Strings(terms)

	const docs = 2.0
	var dot, normA, normB float64
	for _, term := range terms {
		ca, cb := tfA[term], tfB[term]
		df := 0.0
		if ca > 0 {
			df++
		}
		if cb > 0 {
			df++
		}
		// Smoothed IDF keeps terms shared by both documents above zero
		idf := math.Log((1+docs)/(1+df)) + 1.0
		wa := float64(ca) * idf
		wb := float64(cb) * idf
		dot += wa * wb
		normA += wa * wa
		normB += wb * wb
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return clamp(dot / math.Sqrt(normA*normB))
}

// Cosine returns the cosine similarity of two vectors clamped to [0, 1].
// ok is false when either vector is empty or their lengths differ.
func Cosine(a, b []float64) (float64, bool) {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, true
	}
	return clamp(dot / math.Sqrt(normA*normB)), true
}

func termFrequencies(text string) map[string]int {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return nil
	}
	tf := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}
	return tf
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
