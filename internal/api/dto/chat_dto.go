// Package dto defines the JSON shapes exchanged with clients.
package dto

import (
	"github.com/spec-kit/support-desk/internal/conversation"
)

// ChatRequest is one inbound conversation turn.
type ChatRequest struct {
	Action          string   `json:"action"`
	Value           string   `json:"value,omitempty"`
	Message         string   `json:"message,omitempty"`
	SessionID       string   `json:"session_id"`
	UserID          string   `json:"user_id"`
	UserName        string   `json:"user_name,omitempty"`
	UserEmail       string   `json:"user_email,omitempty"`
	AttachmentURLs  []string `json:"attachment_urls,omitempty"`
	SelectedOptions []string `json:"selected_options,omitempty"`
}

// ChatButton is one selectable option in a reply.
type ChatButton struct {
	Label  string `json:"label"`
	Action string `json:"action"`
	Value  string `json:"value,omitempty"`
}

// ChatResponse is the engine's reply to one turn.
type ChatResponse struct {
	Response       string       `json:"response"`
	Buttons        []ChatButton `json:"buttons"`
	ShowTextInput  bool         `json:"show_text_input"`
	ShowStarRating bool         `json:"show_star_rating"`
	ShowCheckboxes bool         `json:"show_checkboxes"`
	Checkboxes     []string     `json:"checkboxes,omitempty"`
	State          string       `json:"state"`
	TicketID       string       `json:"ticket_id,omitempty"`
}

// ResetRequest identifies the session to discard.
type ResetRequest struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

// ChatResponseFromTurn converts an engine turn into the wire shape.
func ChatResponseFromTurn(turn *conversation.TurnResponse) ChatResponse {
	buttons := make([]ChatButton, 0, len(turn.Buttons))
	for _, button := range turn.Buttons {
		buttons = append(buttons, ChatButton{Label: button.Label, Action: button.Action, Value: button.Value})
	}
	return ChatResponse{
		Response:       turn.Response,
		Buttons:        buttons,
		ShowTextInput:  turn.ShowTextInput,
		ShowStarRating: turn.ShowStarRating,
		ShowCheckboxes: turn.ShowCheckboxes,
		Checkboxes:     turn.Checkboxes,
		State:          turn.State,
		TicketID:       turn.TicketID,
	}
}
