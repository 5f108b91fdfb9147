package user

import (
	"context"
	"database/sql"
	"errors"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateUser(ctx context.Context, user *User) (*User, error) {
	var id int
	query := `INSERT INTO users (username, password, nickname, chat_color)
	          VALUES ($1, $2, $3, $4) RETURNING id`

	err := r.db.QueryRowContext(ctx, query, user.Username, user.Password, user.Nickname, user.ChatColor).Scan(&id)
	if err != nil {
		return nil, err
	}

	// The numeric handle doubles as a short public identifier.
	if _, err := r.db.ExecContext(ctx, "UPDATE users SET number = id WHERE id = $1", id); err != nil {
		return nil, err
	}

	user.ID = id
	user.Number = id
	return user, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	u := &User{}
	query := `SELECT id, username, password, nickname, avatar, chat_color, number
	          FROM users WHERE username = $1`

	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&u.ID, &u.Username, &u.Password, &u.Nickname, &u.Avatar, &u.ChatColor, &u.Number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}

	return u, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int) (*User, error) {
	u := &User{}
	query := `SELECT id, username, nickname, avatar, chat_color, number
	          FROM users WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&u.ID, &u.Username, &u.Nickname, &u.Avatar, &u.ChatColor, &u.Number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}

	return u, nil
}

func (r *Repository) SearchUsers(ctx context.Context, query string) ([]User, error) {
	// Limit to 10 to keep it fast
	q := `SELECT id, username, nickname, chat_color, number
	      FROM users WHERE username ILIKE $1 LIMIT 10`
	rows, err := r.db.QueryContext(ctx, q, "%"+query+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Nickname, &u.ChatColor, &u.Number); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
