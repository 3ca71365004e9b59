// Package wizard models the four-step note form as explicit state passed by
// value through a pure transition function. Nothing is kept server side; the
// client holds the state and sends it back with each event.
package wizard

import (
	"errors"
	"fmt"

	"github.com/ehr/soapnote/internal/domain/record"
)

type Step string

const (
	StepDetails Step = "details"
	StepReview  Step = "review"
	StepCodes   Step = "codes"
	StepExport  Step = "export"
)

type EventType string

const (
	EventSubmitDetails    EventType = "submit_details"
	EventNoteGenerated    EventType = "note_generated"
	EventGenerationFailed EventType = "generation_failed"
	EventEditCodes        EventType = "edit_codes"
	EventConfirmCodes     EventType = "confirm_codes"
	EventBack             EventType = "back"
	EventReset            EventType = "reset"
)

var ErrInvalidTransition = errors.New("invalid wizard transition")

// State is the full wizard state. Pending is true between submit_details
// and the generation outcome.
type State struct {
	Step     Step             `json:"step"`
	Form     record.FormInput `json:"form"`
	Pending  bool             `json:"pending"`
	NoteText string           `json:"note_text"`
	CodeText string           `json:"code_text"`
	Error    string           `json:"error,omitempty"`
}

// Event drives a transition. Form is read by submit_details; Text carries
// the generated note, the failure message or the edited codes depending on
// Type.
type Event struct {
	Type EventType         `json:"type"`
	Form *record.FormInput `json:"form,omitempty"`
	Text string            `json:"text,omitempty"`
}

// Initial returns the starting state for form.
func Initial(form record.FormInput, codeText string) State {
	return State{Step: StepDetails, Form: form, CodeText: codeText}
}

// Transition applies e to s and returns the next state. s is never
// modified. Events not allowed in the current step return
// ErrInvalidTransition and s unchanged.
func Transition(s State, e Event) (State, error) {
	next := s
	switch e.Type {
	case EventReset:
		return Initial(s.Form, ""), nil

	case EventSubmitDetails:
		if s.Step != StepDetails || s.Pending {
			return s, invalid(s, e)
		}
		if e.Form != nil {
			next.Form = *e.Form
		}
		next.Pending = true
		next.Error = ""
		return next, nil

	case EventNoteGenerated:
		if s.Step != StepDetails || !s.Pending {
			return s, invalid(s, e)
		}
		next.Step = StepReview
		next.Pending = false
		next.NoteText = e.Text
		next.Error = ""
		return next, nil

	case EventGenerationFailed:
		if s.Step != StepDetails || !s.Pending {
			return s, invalid(s, e)
		}
		next.Pending = false
		next.Error = e.Text
		return next, nil

	case EventEditCodes:
		if s.Step != StepReview && s.Step != StepCodes {
			return s, invalid(s, e)
		}
		next.Step = StepCodes
		next.CodeText = e.Text
		return next, nil

	case EventConfirmCodes:
		if s.Step != StepCodes {
			return s, invalid(s, e)
		}
		next.Step = StepExport
		return next, nil

	case EventBack:
		prev, ok := previous[s.Step]
		if !ok || s.Pending {
			return s, invalid(s, e)
		}
		next.Step = prev
		next.Error = ""
		return next, nil
	}
	return s, invalid(s, e)
}

var previous = map[Step]Step{
	StepReview: StepDetails,
	StepCodes:  StepReview,
	StepExport: StepCodes,
}

func invalid(s State, e Event) error {
	return fmt.Errorf("%w: %q in step %q", ErrInvalidTransition, e.Type, s.Step)
}
