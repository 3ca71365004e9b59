// Package runs splits note text into plain and bold spans using the "**"
// marker convention of the note template.
package runs

import "strings"

// Delimiter toggles between plain and bold text. There is no escape form:
// a literal "**" in body text always toggles.
const Delimiter = "**"

// Run is a contiguous span rendered with a single style.
type Run struct {
	Text string `json:"text"`
	Bold bool   `json:"bold"`
}

// Parse splits text on Delimiter. Pieces at even positions are plain and
// pieces at odd positions are bold. Empty pieces are kept so positions stay
// meaningful, and an unclosed trailing bold span is left as the alternation
// produces it.
func Parse(text string) []Run {
	parts := strings.Split(text, Delimiter)
	out := make([]Run, len(parts))
	for i, p := range parts {
		out[i] = Run{Text: p, Bold: i%2 == 1}
	}
	return out
}

// Plain concatenates the run texts, dropping all styling.
func Plain(rs []Run) string {
	var sb strings.Builder
	for _, r := range rs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}
