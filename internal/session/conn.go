package session

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultReconnectDelay = 3 * time.Second
	writeWait             = 10 * time.Second // per-frame write deadline
)

var dialer = &websocket.Dialer{HandshakeTimeout: 10 * time.Second}

// wsURL appends the session credential to the configured endpoint.
func wsURL(base, token string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// dial runs off the event loop; the result re-enters as an event so
// the loop never blocks on the handshake.
func (s *Session) dial(endpoint string) {
	ws, _, err := dialer.Dial(endpoint, nil)
	s.events <- evtDialResult{ws: ws, err: err}
}

// readPump pumps frames from the websocket into the event loop. It is
// tied to one connection; a stale pump's close event is recognized by
// the conn it carries and ignored by the loop.
func (s *Session) readPump(ws *websocket.Conn) {
	defer ws.Close()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn().Err(err).Msg("chat transport closed")
			}
			s.events <- evtClosed{ws: ws}
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			// Undecodable payloads are dropped; the connection stays up.
			s.log.Warn().Err(err).Msg("malformed frame discarded")
			continue
		}
		s.events <- evtFrame{msg: msg}
	}
}
