package models

// Conversation is one debate thread as listed by the backend. The client
// only displays it.
type Conversation struct {
	ID           ConversationID `json:"id"`
	Topic        string         `json:"topic"`
	CreatedAt    Timestamp      `json:"created_at"`
	MessageCount int            `json:"message_count"`
	LastActivity Timestamp      `json:"last_activity"`
	Side         Side           `json:"side"`
}

// Message is a UI-side history entry. ID is a 1-based position in the
// screen's list, not a backend identifier.
type Message struct {
	ID             int            `json:"id"`
	Content        string         `json:"content"`
	Side           Side           `json:"side"`
	Timestamp      Timestamp      `json:"timestamp"`
	ConversationID ConversationID `json:"conversation_id"`
}

type APIMessage struct {
	Role    Role   `json:"role"`
	Message string `json:"message"`
}

// ConversationDetailResponse is the wire shape of GET /conversations/{id}.
type ConversationDetailResponse struct {
	ConversationID ConversationID `json:"conversation_id"`
	Message        []APIMessage   `json:"message"`
	Side           Side           `json:"side"`
	Topic          string         `json:"topic"`
	CreatedAt      Timestamp      `json:"created_at"`
	LastActivity   *Timestamp     `json:"last_activity"`
	MessageCount   *int           `json:"message_count"`
}

// Meta holds the summary fields of a loaded conversation that later local
// messages are built from.
type Meta struct {
	ConversationID ConversationID `json:"conversation_id"`
	Topic          string         `json:"topic"`
	CreatedAt      Timestamp      `json:"created_at"`
	Side           Side           `json:"side"`
}

type MessagePayload struct {
	Message string `json:"message"`
}

type NewConversationPayload struct {
	Topic string `json:"topic"`
	Side  Side   `json:"side"`
}
