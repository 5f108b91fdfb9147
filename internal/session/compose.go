package session

// Send publishes a text message to the lobby. It fails with
// ErrNotConnected unless the transport is up; nothing is queued.
func (s *Session) Send(content string) error {
	return s.sendFrame(Outbound{Content: content, Type: "text"})
}

// SendTo publishes a text message to one counterpart.
func (s *Session) SendTo(counterpart int, content string) error {
	to := counterpart
	return s.sendFrame(Outbound{Content: content, Type: "text", ToUserID: &to})
}

// SendKind publishes a message with an explicit kind, e.g. "image"
// carrying an uploaded file's URL. counterpart 0 targets the lobby.
func (s *Session) SendKind(counterpart int, content, kind string) error {
	out := Outbound{Content: content, Type: kind}
	if counterpart != 0 {
		to := counterpart
		out.ToUserID = &to
	}
	return s.sendFrame(out)
}

func (s *Session) sendFrame(out Outbound) error {
	errc := make(chan error, 1)
	s.events <- evtSend{out: out, errc: errc}
	return <-errc
}
