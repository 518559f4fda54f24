package ai

import (
	"fmt"
	"strings"

	"github.com/johnquangdev/meeting-thoughts/internal/domain/entities"
)

const extractionSystemPromptV1 = `You extract atomic thoughts from meeting transcripts.
A thought is one self-contained insight, decision, idea, question or commitment.
Rewrite each thought as a short normalized statement and quote the transcript excerpt it came from.
Only use tag names from the provided vocabulary. Never invent new tags.
Respond with JSON only, no prose, in this shape:
{"thoughts":[{"content":"...","original_segment":"...","tags":["..."],"confidence":0.0,"is_important":false}]}
confidence is a number between 0 and 1. Return {"thoughts":[]} when nothing is worth keeping.`

const extractionSystemPromptV2 = `You extract atomic thoughts from meeting transcripts.
A thought is one self-contained insight, decision, idea, question or commitment.
Rewrite each thought as a short normalized statement and quote the transcript excerpt it came from.
Only use tag names from the provided vocabulary. Never invent new tags.
Also classify each thought and record who said it and the surrounding discussion.
Respond with JSON only, no prose, in this shape:
{"thoughts":[{"content":"...","original_segment":"...","tags":["..."],"confidence":0.0,"is_important":false,
"content_type":"decision|idea|question|action|insight|concern","speaker":"...","context":"..."}]}
confidence is a number between 0 and 1. Leave speaker empty when unknown.
Return {"thoughts":[]} when nothing is worth keeping.`

// BuildExtractionPrompt returns the system and user prompts for one chunk
func BuildExtractionPrompt(chunk string, vocabulary []string, version int) (string, string) {
	system := extractionSystemPromptV1
	if version >= entities.ExtractionVersionV2 {
		system = extractionSystemPromptV2
	}

	var b strings.Builder
	b.WriteString("Tag vocabulary: ")
	if len(vocabulary) == 0 {
		b.WriteString("(none, leave tags empty)")
	} else {
		b.WriteString(strings.Join(vocabulary, ", "))
	}
	b.WriteString("\n\nTranscript excerpt:\n")
	b.WriteString(chunk)

	return system, fmt.Sprintf("%s\n", b.String())
}
