package api

import (
	"context"
	"fmt"
	"strconv"
)

// UnreadCounts fetches the server's per-counterpart unread counters.
func (c *Client) UnreadCounts(ctx context.Context) (map[int]int, error) {
	// JSON object keys are strings even when they are numeric ids.
	var raw map[string]int
	if err := c.getJSON(ctx, "/api/chat/unread", &raw); err != nil {
		return nil, fmt.Errorf("unread counts: %w", err)
	}
	counts := make(map[int]int, len(raw))
	for key, n := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("unread counts: bad counterpart key %q", key)
		}
		counts[id] = n
	}
	return counts, nil
}

// MarkRead tells the server every message from friendID has been read.
func (c *Client) MarkRead(ctx context.Context, friendID int) error {
	body := map[string]int{"friend_id": friendID}
	if err := c.postJSON(ctx, "/api/chat/private/read", body, nil); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}
