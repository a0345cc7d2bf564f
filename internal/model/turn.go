package model

// TurnRequest is one inbound conversational turn from the chat-platform
// webhook. Type carries the platform's non-conversational sentinels
// (settings/health probes); regular turns leave it empty.
type TurnRequest struct {
	Type           string `json:"type,omitempty"`
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
}

// TurnResponse is the single-field reply the webhook caller renders to
// the end user. Failures travel in Text too, never as HTTP error codes.
type TurnResponse struct {
	Text string `json:"text"`
}

// TurnLog is the analytics record persisted for one handled turn.
type TurnLog struct {
	TurnID         string
	ConversationID string
	UserID         string
	Query          string
	Prefs          *Preferences
	Filters        map[string]any
	ResultCount    int
	ReplyChars     int
	ResponseTimeMs int
}
