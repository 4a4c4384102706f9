package scanning

import (
	"errors"
	"strings"
)

// ErrEmptyTranscript is returned when a model answers without any receipt text
var ErrEmptyTranscript = errors.New("empty transcript")

// transcriptPrompt is the shared prompt used by all LLM providers. The models act
// as an OCR engine only; field extraction happens on the returned text.
const transcriptPrompt = `You are an OCR engine reading a retail receipt or invoice. Transcribe every line of printed text exactly as it appears, top to bottom.

Rules:
- One receipt line per output line; keep the columns of a line on the same line separated by spaces
- Keep numbers exactly as printed, including "." and "," separators and currency marks such as "đ" or "VND"
- Keep Vietnamese diacritics
- Do not summarize, translate, correct or reorder anything
- Do not add any text before or after the transcription
- Do not use markdown code blocks`

// cleanTranscript strips markdown fences a model may wrap around the text
func cleanTranscript(text string) (string, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		// Drop the opening fence together with an optional language tag
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			text = text[nl+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	text = strings.TrimSpace(text)

	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}
