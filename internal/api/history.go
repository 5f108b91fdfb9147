package api

import (
	"context"
	"fmt"

	"lobbychat/internal/session"
)

// LobbyHistory fetches one page of lobby messages, oldest first within
// the window.
func (c *Client) LobbyHistory(ctx context.Context, skip, limit int) ([]session.Message, error) {
	var page []session.Message
	path := fmt.Sprintf("/api/chat/history?skip=%d&limit=%d", skip, limit)
	if err := c.getJSON(ctx, path, &page); err != nil {
		return nil, fmt.Errorf("lobby history: %w", err)
	}
	return page, nil
}

// PrivateHistory fetches one page of the conversation with friendID,
// oldest first within the window.
func (c *Client) PrivateHistory(ctx context.Context, friendID, skip, limit int) ([]session.Message, error) {
	var page []session.Message
	path := fmt.Sprintf("/api/chat/private/history?friend_id=%d&skip=%d&limit=%d", friendID, skip, limit)
	if err := c.getJSON(ctx, path, &page); err != nil {
		return nil, fmt.Errorf("private history: %w", err)
	}
	return page, nil
}
