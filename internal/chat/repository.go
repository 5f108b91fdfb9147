package chat

import (
	"context"
	"database/sql"
	"time"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SaveMessage persists one message and returns its id and server-side
// timestamp.
func (r *Repository) SaveMessage(ctx context.Context, userID int, toUserID *int, msgType, content string) (int, time.Time, error) {
	var (
		id        int
		createdAt time.Time
	)
	query := `INSERT INTO messages (user_id, to_user_id, message_type, content)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, userID, toUserID, msgType, content).Scan(&id, &createdAt)
	return id, createdAt, err
}

// GetSender loads the denormalized author profile for one user.
func (r *Repository) GetSender(ctx context.Context, userID int) (Sender, error) {
	var s Sender
	query := `SELECT id, username, nickname, avatar, chat_color, number FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&s.ID, &s.Username, &s.Nickname, &s.Avatar, &s.ChatColor, &s.Number)
	return s, err
}

// LobbyHistory returns one page of lobby messages. The page is fetched
// newest-first so skip/limit walk backwards in time, then reversed so
// callers receive it oldest-first.
func (r *Repository) LobbyHistory(ctx context.Context, skip, limit int) ([]Message, error) {
	query := `
		SELECT m.id, m.content, m.message_type, m.user_id, m.created_at,
		       u.id, u.username, u.nickname, u.avatar, u.chat_color, u.number
		FROM messages m
		JOIN users u ON m.user_id = u.id
		WHERE m.to_user_id IS NULL
		ORDER BY m.id DESC
		OFFSET $1 LIMIT $2
	`
	return r.queryPage(ctx, query, skip, limit)
}

// PrivateHistory returns one page of the two-party conversation
// between userID and friendID, oldest-first within the window.
func (r *Repository) PrivateHistory(ctx context.Context, userID, friendID, skip, limit int) ([]Message, error) {
	query := `
		SELECT m.id, m.content, m.message_type, m.user_id, m.created_at,
		       u.id, u.username, u.nickname, u.avatar, u.chat_color, u.number
		FROM messages m
		JOIN users u ON m.user_id = u.id
		WHERE (m.user_id = $1 AND m.to_user_id = $2)
		   OR (m.user_id = $2 AND m.to_user_id = $1)
		ORDER BY m.id DESC
		OFFSET $3 LIMIT $4
	`
	return r.queryPage(ctx, query, userID, friendID, skip, limit)
}

func (r *Repository) queryPage(ctx context.Context, query string, args ...any) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var page []Message
	for rows.Next() {
		var (
			m Message
			s Sender
		)
		err := rows.Scan(&m.ID, &m.Content, &m.MessageType, &m.UserID, &m.CreatedAt,
			&s.ID, &s.Username, &s.Nickname, &s.Avatar, &s.ChatColor, &s.Number)
		if err != nil {
			return nil, err
		}
		m.Sender = &s
		page = append(page, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
		page[i], page[j] = page[j], page[i]
	}
	return page, nil
}

// UnreadCounts returns, per sender, how many direct messages to userID
// are still unread.
func (r *Repository) UnreadCounts(ctx context.Context, userID int) (map[int]int, error) {
	query := `
		SELECT user_id, COUNT(*)
		FROM messages
		WHERE to_user_id = $1 AND NOT is_read
		GROUP BY user_id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var sender, n int
		if err := rows.Scan(&sender, &n); err != nil {
			return nil, err
		}
		counts[sender] = n
	}
	return counts, rows.Err()
}

// MarkRead flips every unread message from friendID to userID.
func (r *Repository) MarkRead(ctx context.Context, userID, friendID int) error {
	query := `UPDATE messages SET is_read = TRUE
	          WHERE to_user_id = $1 AND user_id = $2 AND NOT is_read`
	_, err := r.db.ExecContext(ctx, query, userID, friendID)
	return err
}
