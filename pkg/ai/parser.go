package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
)

var candidateValidator = validator.New()

// ExtractionResult is the typed outcome of decoding one extractor response.
// A failed decode carries Error and no candidates; a successful decode of an
// empty or absent list carries an empty, non-nil slice.
type ExtractionResult struct {
	Success    bool
	Candidates []entities.Candidate
	// Dropped counts entries that decoded but failed validation
	Dropped      int
	Error        string
	OriginalText string
}

// wireCandidate accepts the field spellings seen from different models
type wireCandidate struct {
	Content         string   `json:"content"`
	OriginalSegment string   `json:"original_segment"`
	OriginalQuote   string   `json:"original_quote"`
	OriginalCamel   string   `json:"originalSegment"`
	Tags            []string `json:"tags"`
	Confidence      *float64 `json:"confidence"`
	IsImportant     bool     `json:"is_important"`
	IsImportantAlt  bool     `json:"isImportant"`
	ContentType     string   `json:"content_type"`
	ContentTypeAlt  string   `json:"contentType"`
	Speaker         string   `json:"speaker"`
	Context         string   `json:"context"`
}

type wireEnvelope struct {
	Thoughts []wireCandidate `json:"thoughts"`
}

// DecodeExtraction decodes an extractor response into candidates for the
// given schema version. The response may be an object with a "thoughts" array
// or a bare array, optionally wrapped in markdown code fences.
func DecodeExtraction(text string, version int) ExtractionResult {
	result := ExtractionResult{OriginalText: text, Candidates: []entities.Candidate{}}

	payload := extractJSON(text)
	if payload == "" || payload == "null" {
		result.Success = true
		return result
	}

	var wire []wireCandidate
	switch payload[0] {
	case '{':
		var env wireEnvelope
		if err := json.Unmarshal([]byte(payload), &env); err != nil {
			result.Error = fmt.Sprintf("malformed extraction object: %v", err)
			return result
		}
		wire = env.Thoughts
	case '[':
		if err := json.Unmarshal([]byte(payload), &wire); err != nil {
			result.Error = fmt.Sprintf("malformed extraction array: %v", err)
			return result
		}
	default:
		result.Error = "extraction response contains no JSON"
		return result
	}

	for _, w := range wire {
		c := w.toCandidate(version)
		if err := candidateValidator.Struct(c); err != nil {
			result.Dropped++
			continue
		}
		result.Candidates = append(result.Candidates, c)
	}
	result.Success = true
	return result
}

func (w wireCandidate) toCandidate(version int) entities.Candidate {
	c := entities.Candidate{
		Content:         strings.TrimSpace(w.Content),
		OriginalSegment: firstNonEmpty(w.OriginalSegment, w.OriginalQuote, w.OriginalCamel),
		Tags:            w.Tags,
		Confidence:      0.5,
		IsImportant:     w.IsImportant || w.IsImportantAlt,
	}
	if w.Confidence != nil {
		c.Confidence = *w.Confidence
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if version >= entities.ExtractionVersionV2 {
		c.ContentType = firstNonEmpty(w.ContentType, w.ContentTypeAlt)
		c.Speaker = strings.TrimSpace(w.Speaker)
		c.Context = strings.TrimSpace(w.Context)
	}
	return c
}

// extractJSON strips markdown fences and any prose around the outermost JSON value
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Check if wrapped in markdown code block
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}
	content = strings.TrimSpace(content)
	if content == "" || content[0] == '{' || content[0] == '[' {
		return content
	}

	start := strings.IndexAny(content, "{[")
	if start == -1 {
		return content
	}
	closer := "}"
	if content[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(content, closer)
	if end <= start {
		return content
	}
	return content[start : end+1]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
