package note

import (
	"time"

	"github.com/google/uuid"

	"github.com/ehr/soapnote/internal/platform/runs"
	"github.com/ehr/soapnote/internal/platform/sanitize"
)

// GeneratedNote is the result of one successful completion. RawText is the
// model output as received; SanitizedText and Runs are what gets rendered.
type GeneratedNote struct {
	ID            uuid.UUID  `json:"id"`
	RawText       string     `json:"raw_text"`
	SanitizedText string     `json:"sanitized_text"`
	DisplayText   string     `json:"display_text"`
	Runs          []runs.Run `json:"runs"`
	PromptVersion string     `json:"prompt_version"`
	Model         string     `json:"model,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func NewGeneratedNote(raw, promptVersion, model string) *GeneratedNote {
	clean := sanitize.Text(raw)
	rs := runs.Parse(clean)
	return &GeneratedNote{
		ID:            uuid.New(),
		RawText:       raw,
		SanitizedText: clean,
		DisplayText:   runs.Plain(rs),
		Runs:          rs,
		PromptVersion: promptVersion,
		Model:         model,
		CreatedAt:     time.Now().UTC(),
	}
}
