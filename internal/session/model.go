package session

import "time"

// Sender is the denormalized author profile the server attaches to each
// message so clients can render without a user lookup.
type Sender struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Nickname  string `json:"nickname,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	ChatColor string `json:"chat_color,omitempty"`
	Number    int    `json:"number,omitempty"`
}

// Message is one inbound chat frame. Messages are immutable once
// received: they are only ever inserted into a conversation, never
// updated in place.
type Message struct {
	ID          int       `json:"id"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type"`
	UserID      int       `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	IsRead      bool      `json:"is_read,omitempty"`
	// ToUserID is nil for lobby messages and set for direct messages.
	ToUserID *int    `json:"to_user_id,omitempty"`
	Sender   *Sender `json:"sender,omitempty"`
}

// Outbound is the frame a client writes to the server.
type Outbound struct {
	Content  string `json:"content"`
	Type     string `json:"type"`
	ToUserID *int   `json:"to_user_id,omitempty"`
}

// ConvKind discriminates the two conversation shapes. It is computed
// once when a frame is ingested and carried alongside the message, so
// read sites never re-derive it from the raw fields.
type ConvKind int

const (
	ConvLobby ConvKind = iota
	ConvPrivate
)

func (k ConvKind) String() string {
	if k == ConvPrivate {
		return "private"
	}
	return "lobby"
}

// Envelope is a message tagged with its classification. Counterpart is
// the other party's id for private messages and 0 for the lobby.
type Envelope struct {
	Msg         Message
	Kind        ConvKind
	Counterpart int
}
