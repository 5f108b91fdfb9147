package chat

import (
	"encoding/json"
	"time"
)

// Sender is the denormalized author profile attached to every outbound
// message so clients render without extra lookups.
type Sender struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Nickname  string `json:"nickname,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	ChatColor string `json:"chat_color,omitempty"`
	Number    int    `json:"number,omitempty"`
}

// Message is the wire shape clients receive, both live and from the
// history endpoints. A nil ToUserID marks lobby traffic.
type Message struct {
	ID          int       `json:"id"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type"`
	UserID      int       `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	IsRead      bool      `json:"is_read,omitempty"`
	ToUserID    *int      `json:"to_user_id,omitempty"`
	Sender      *Sender   `json:"sender,omitempty"`
}

// WSMessage is the simplified JSON a client sends us. The server fills
// in id, author, and timestamp.
type WSMessage struct {
	Content  string `json:"content"`
	Type     string `json:"type"`
	ToUserID *int   `json:"to_user_id,omitempty"`
}

// IncomingMessage pipes a client frame into the hub together with the
// authenticated author.
type IncomingMessage struct {
	Author Sender
	Frame  WSMessage
}

// Envelope is what travels over Redis between instances. TargetID 0
// means everyone; otherwise delivery goes to the target and, as echo,
// back to the sender.
type Envelope struct {
	TargetID int             `json:"target_id"`
	SenderID int             `json:"sender_id"`
	Payload  json.RawMessage `json:"payload"`
}
