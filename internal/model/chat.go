package model

// ConversationTurn is one prior exchange supplied by the caller. The server
// keeps no cross-request session state; the full history arrives with every
// request.
type ConversationTurn struct {
	Role string `json:"role"` // "user" or "bot"
	Text string `json:"text"`
}

// ChatRequest is the body of /bot_call, /bot_call_stream, and of each
// websocket message.
type ChatRequest struct {
	CurrentRequest  string             `json:"current_request" binding:"required"`
	PreviousContext []ConversationTurn `json:"previous_context"`
}

// ChatResponse is the non-streaming reply shape.
type ChatResponse struct {
	Response string `json:"response"`
}

// StreamEvent is one line of the NDJSON stream and one websocket frame.
// Exactly one field is set per event.
type StreamEvent struct {
	Chunk    string `json:"chunk,omitempty"`
	Error    string `json:"error,omitempty"`
	Complete bool   `json:"complete,omitempty"`
}
