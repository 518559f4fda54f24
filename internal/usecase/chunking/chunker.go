// Package chunking splits long transcripts into bounded segments for extraction.
//
// Two policies share one Chunker:
//   - PolicyBoundary cuts windows of at most MaxSize characters with Overlap
//     characters carried into the next window, preferring paragraph breaks and
//     then sentence terminators in the last 30% of the window.
//   - PolicySentence packs whole sentences into buckets of at most MaxSize
//     characters without overlap.
//
// All sizes and offsets are counted in characters (runes), not bytes.
package chunking

import (
	"errors"
	"fmt"
	"strings"
)

// Policy selects the chunk boundary strategy
type Policy string

const (
	PolicyBoundary Policy = "boundary"
	PolicySentence Policy = "sentence"
)

// minFillRatio is the share of MaxSize a chunk must reach before a soft boundary is accepted
const minFillRatio = 0.7

var (
	ErrInvalidOptions = errors.New("invalid chunking options")
	ErrNoProgress     = errors.New("chunk cursor did not advance")
)

// Options configures a Chunker
type Options struct {
	Policy  Policy
	MaxSize int
	Overlap int
}

// Span is a half-open [Start, End) rune range of the source text
type Span struct {
	Start int
	End   int
}

// Chunker splits text according to its Options. It is stateless and safe for concurrent use.
type Chunker struct {
	opts Options
}

// New validates opts and returns a Chunker
func New(opts Options) (*Chunker, error) {
	if opts.Policy == "" {
		opts.Policy = PolicyBoundary
	}
	if opts.MaxSize <= 0 {
		return nil, fmt.Errorf("%w: max size must be positive, got %d", ErrInvalidOptions, opts.MaxSize)
	}
	switch opts.Policy {
	case PolicyBoundary:
		if opts.Overlap < 0 || opts.Overlap >= opts.MaxSize {
			return nil, fmt.Errorf("%w: overlap must be in [0, %d), got %d", ErrInvalidOptions, opts.MaxSize, opts.Overlap)
		}
	case PolicySentence:
		opts.Overlap = 0
	default:
		return nil, fmt.Errorf("%w: unknown policy %q", ErrInvalidOptions, opts.Policy)
	}
	return &Chunker{opts: opts}, nil
}

// Options returns the effective options
func (c *Chunker) Options() Options {
	return c.opts
}

// Chunk returns the non-empty trimmed segments of text
func (c *Chunker) Chunk(text string) ([]string, error) {
	runes := []rune(text)
	spans, err := c.spans(runes)
	if err != nil {
		return nil, err
	}
	chunks := make([]string, 0, len(spans))
	for _, sp := range spans {
		seg := strings.TrimSpace(string(runes[sp.Start:sp.End]))
		if seg == "" {
			continue
		}
		chunks = append(chunks, seg)
	}
	return chunks, nil
}

// Spans returns the untrimmed rune ranges Chunk would cut, including ranges
// that trim down to nothing.
func (c *Chunker) Spans(text string) ([]Span, error) {
	return c.spans([]rune(text))
}

func (c *Chunker) spans(runes []rune) ([]Span, error) {
	if len(runes) == 0 {
		return nil, nil
	}
	if c.opts.Policy == PolicySentence {
		return sentenceSpans(runes, c.opts.MaxSize), nil
	}
	return boundarySpans(runes, c.opts.MaxSize, c.opts.Overlap)
}

func boundarySpans(runes []rune, maxSize, overlap int) ([]Span, error) {
	var spans []Span
	n := len(runes)
	minFill := int(float64(maxSize) * minFillRatio)
	cursor, lastEnd := 0, 0

	for cursor < n {
		end := cursor + maxSize
		if end < n {
			// soft cuts must also move past the previous end, otherwise a large
			// overlap finds the same boundary again
			if cut := lastParagraphBreak(runes, cursor, end); cut > cursor+minFill && cut > lastEnd {
				end = cut
			} else if cut := lastSentenceEnd(runes[cursor:end]); cut > minFill && cursor+cut+1 > lastEnd {
				end = cursor + cut + 1
			}
		} else {
			end = n
		}
		if end <= cursor || end <= lastEnd {
			return nil, fmt.Errorf("%w: cursor %d, end %d", ErrNoProgress, cursor, end)
		}

		spans = append(spans, Span{Start: cursor, End: end})
		lastEnd = end
		if end == n {
			break
		}

		next := end - overlap
		if next < 0 {
			next = 0
		}
		// A soft cut close to the cursor plus a large overlap would revisit the
		// same window forever; drop the overlap for this step instead.
		if next <= cursor {
			next = end
		}
		cursor = next
	}
	return spans, nil
}

// lastParagraphBreak returns the start of the last "\n\n" at or before end,
// not earlier than cursor, or -1.
func lastParagraphBreak(runes []rune, cursor, end int) int {
	i := end
	if i > len(runes)-2 {
		i = len(runes) - 2
	}
	for ; i >= cursor; i-- {
		if runes[i] == '\n' && runes[i+1] == '\n' {
			return i
		}
	}
	return -1
}

// lastSentenceEnd returns the index within window of the last sentence
// terminator, or -1. Trailing whitespace after the terminator is allowed.
func lastSentenceEnd(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if isSentenceTerminal(window[i]) {
			return i
		}
	}
	return -1
}

func isSentenceTerminal(r rune) bool {
	switch r {
	case '。', '！', '？', '.', '!', '?':
		return true
	}
	return false
}

func isSentenceDelimiter(r rune) bool {
	switch r {
	case '。', '！', '？', '；', '\n':
		return true
	}
	return false
}

// sentenceSpans packs whole sentences into buckets no longer than maxSize.
// A bucket is closed before the sentence that would overflow it, so only a
// single sentence longer than maxSize produces an oversized bucket.
func sentenceSpans(runes []rune, maxSize int) []Span {
	var sentences []Span
	start := 0
	for i, r := range runes {
		if isSentenceDelimiter(r) {
			sentences = append(sentences, Span{Start: start, End: i + 1})
			start = i + 1
		}
	}
	if start < len(runes) {
		sentences = append(sentences, Span{Start: start, End: len(runes)})
	}

	var spans []Span
	var current *Span
	for _, s := range sentences {
		if current != nil && s.End-current.Start > maxSize {
			spans = append(spans, *current)
			current = nil
		}
		if current == nil {
			c := s
			current = &c
			continue
		}
		current.End = s.End
	}
	if current != nil {
		spans = append(spans, *current)
	}
	return spans
}
