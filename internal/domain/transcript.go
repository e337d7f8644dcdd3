package domain

import "strings"

type Segment struct {
	Text   string
	Tokens []int
}

// Transcript is what the speech-to-text collaborator returns for one utterance.
type Transcript struct {
	Segments []Segment
	Language string
}

// TextTranscript wraps already-recognised text as a single segment.
func TextTranscript(text string) Transcript {
	return Transcript{Segments: []Segment{{Text: text}}}
}

// Text joins the trimmed segment texts with single spaces.
func (t Transcript) Text() string {
	parts := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		if txt := strings.TrimSpace(s.Text); txt != "" {
			parts = append(parts, txt)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func (t Transcript) TokenCount() int {
	n := 0
	for _, s := range t.Segments {
		n += len(s.Tokens)
	}
	return n
}
