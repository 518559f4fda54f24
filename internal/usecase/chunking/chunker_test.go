package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoundary(t *testing.T, maxSize, overlap int) *Chunker {
	t.Helper()
	c, err := New(Options{Policy: PolicyBoundary, MaxSize: maxSize, Overlap: overlap})
	require.NoError(t, err)
	return c
}

// reconstruct rebuilds the source from overlapping spans by appending only
// the part of each span past the previous end.
func reconstruct(runes []rune, spans []Span) string {
	var b strings.Builder
	prevEnd := 0
	for _, sp := range spans {
		from := sp.Start
		if from < prevEnd {
			from = prevEnd
		}
		b.WriteString(string(runes[from:sp.End]))
		prevEnd = sp.End
	}
	return b.String()
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"zero max", Options{Policy: PolicyBoundary, MaxSize: 0}},
		{"negative overlap", Options{Policy: PolicyBoundary, MaxSize: 10, Overlap: -1}},
		{"overlap equals max", Options{Policy: PolicyBoundary, MaxSize: 10, Overlap: 10}},
		{"unknown policy", Options{Policy: "paragraph", MaxSize: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestChunk_Empty(t *testing.T) {
	c := newBoundary(t, 100, 20)
	chunks, err := c.Chunk("")
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = c.Chunk("   \n\n  ")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunk_ShortTextIsSingleChunk(t *testing.T) {
	c := newBoundary(t, 100, 20)
	chunks, err := c.Chunk("  We agreed to ship on Friday.  ")
	require.NoError(t, err)
	assert.Equal(t, []string{"We agreed to ship on Friday."}, chunks)
}

func TestSpans_ParagraphBreakScenario(t *testing.T) {
	text := strings.Repeat("a", 90) + "\n\n" + strings.Repeat("b", 158)
	require.Len(t, []rune(text), 250)

	c := newBoundary(t, 100, 20)
	spans, err := c.Spans(text)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(spans), 2)

	assert.Equal(t, 90, spans[0].End)
	assert.Equal(t, 70, spans[1].Start)

	chunks, err := c.Chunk(text)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 90), chunks[0])
	assert.True(t, strings.HasPrefix(chunks[1], strings.Repeat("a", 20)+"\n\n"))
}

func TestSpans_EarlyParagraphBreakIgnored(t *testing.T) {
	// break at 30 is below the 70% fill mark, so the hard cut applies
	text := strings.Repeat("a", 30) + "\n\n" + strings.Repeat("b", 200)
	spans, err := newBoundary(t, 100, 0).Spans(text)
	require.NoError(t, err)
	assert.Equal(t, Span{Start: 0, End: 100}, spans[0])
}

func TestSpans_SentenceTerminator(t *testing.T) {
	text := strings.Repeat("a", 80) + ". " + strings.Repeat("b", 100)
	spans, err := newBoundary(t, 100, 10).Spans(text)
	require.NoError(t, err)
	assert.Equal(t, 81, spans[0].End, "cut one past the terminator")
	assert.Equal(t, 71, spans[1].Start)
}

func TestSpans_CJKTerminatorCountsRunes(t *testing.T) {
	text := strings.Repeat("会", 75) + "。" + strings.Repeat("议", 50)
	spans, err := newBoundary(t, 100, 0).Spans(text)
	require.NoError(t, err)
	assert.Equal(t, 76, spans[0].End)
	assert.Equal(t, 76, spans[1].Start)
}

func TestSpans_Properties(t *testing.T) {
	texts := []string{
		strings.Repeat("The quick brown fox jumps. ", 40),
		strings.Repeat("word ", 300),
		strings.Repeat("短句。", 120) + "\n\n" + strings.Repeat("Long paragraph without stops ", 20),
		strings.Repeat("x", 1000),
		"Para one.\n\nPara two is here!\n\n" + strings.Repeat("Is it? Yes. ", 50),
	}
	configs := []struct{ max, overlap int }{
		{100, 20}, {50, 0}, {64, 63}, {10, 9}, {200, 50},
	}

	for _, text := range texts {
		runes := []rune(text)
		for _, cfg := range configs {
			c := newBoundary(t, cfg.max, cfg.overlap)
			spans, err := c.Spans(text)
			require.NoError(t, err)
			require.NotEmpty(t, spans)

			assert.Equal(t, text, reconstruct(runes, spans), "max=%d overlap=%d", cfg.max, cfg.overlap)
			assert.Equal(t, 0, spans[0].Start)
			assert.Equal(t, len(runes), spans[len(spans)-1].End)
			for i, sp := range spans {
				assert.LessOrEqual(t, sp.End-sp.Start, cfg.max)
				if i > 0 {
					assert.Greater(t, sp.Start, spans[i-1].Start, "cursor must advance")
					assert.Greater(t, sp.End, spans[i-1].End)
					assert.LessOrEqual(t, sp.Start, spans[i-1].End)
				}
			}
		}
	}
}

func TestChunk_NoEmptyOrUntrimmedChunks(t *testing.T) {
	text := strings.Repeat("Line of talk.\n\n\n\n", 30)
	chunks, err := newBoundary(t, 40, 5).Chunk(text)
	require.NoError(t, err)
	for _, ch := range chunks {
		assert.NotEmpty(t, ch)
		assert.Equal(t, strings.TrimSpace(ch), ch)
	}
}

func TestSentencePolicy_Buckets(t *testing.T) {
	c, err := New(Options{Policy: PolicySentence, MaxSize: 8})
	require.NoError(t, err)

	chunks, err := c.Chunk("第一句。第二句。第三句。")
	require.NoError(t, err)
	assert.Equal(t, []string{"第一句。第二句。", "第三句。"}, chunks)
}

func TestSentencePolicy_OversizedSentenceKeptWhole(t *testing.T) {
	c, err := New(Options{Policy: PolicySentence, MaxSize: 3})
	require.NoError(t, err)

	chunks, err := c.Chunk("第一句。第二句；last line")
	require.NoError(t, err)
	assert.Equal(t, []string{"第一句。", "第二句；", "last line"}, chunks)
}

func TestSentencePolicy_ReconstructsWithoutOverlap(t *testing.T) {
	text := strings.Repeat("我们讨论了预算。", 10) + "\n" + strings.Repeat("下一步？", 7)
	c, err := New(Options{Policy: PolicySentence, MaxSize: 20, Overlap: 5})
	require.NoError(t, err)
	assert.Zero(t, c.Options().Overlap)

	spans, err := c.Spans(text)
	require.NoError(t, err)
	assert.Equal(t, text, reconstruct([]rune(text), spans))
	for i := 1; i < len(spans); i++ {
		assert.Equal(t, spans[i-1].End, spans[i].Start)
	}
	for _, sp := range spans {
		assert.LessOrEqual(t, sp.End-sp.Start, 20)
	}
}
