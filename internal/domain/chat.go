package domain

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the two stored roles.
func (r Role) Valid() bool { return r == RoleUser || r == RoleAssistant }

// Conversation groups the messages of one chat thread.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a stored chat message.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id,omitempty"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	AudioURL       string    `json:"audio_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Delivery tracks a locally appended message until the server has it.
type Delivery string

const (
	DeliveryPending   Delivery = "pending"
	DeliveryConfirmed Delivery = "confirmed"
	DeliveryFailed    Delivery = "failed"
)

// ChatMessage is a transcript entry on the device.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	AudioURL  string    `json:"audioUrl,omitempty"`
	Delivery  Delivery  `json:"delivery"`
}

// ChatMessageFromStored converts a server message into a confirmed transcript entry.
func ChatMessageFromStored(m Message) ChatMessage {
	return ChatMessage{
		ID:        m.ID,
		Role:      m.Role,
		Content:   m.Content,
		Timestamp: m.CreatedAt,
		AudioURL:  m.AudioURL,
		Delivery:  DeliveryConfirmed,
	}
}
