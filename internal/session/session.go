package session

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// ErrNotConnected is returned when a send is attempted while the
// transport is anything other than connected. Sends are never queued.
var ErrNotConnected = errors.New("chat service not connected")

// CredentialSource supplies the token used to open the transport.
// ok is false when no usable credential exists (logged out or the
// token expired), in which case connection attempts are no-ops.
type CredentialSource interface {
	Token() (token string, ok bool)
}

// HistoryFetcher is the paginated history collaborator. Pages are
// ordered oldest to newest within the requested window.
type HistoryFetcher interface {
	LobbyHistory(ctx context.Context, skip, limit int) ([]Message, error)
	PrivateHistory(ctx context.Context, friendID, skip, limit int) ([]Message, error)
}

// UnreadService is the server-truth side of unread accounting.
type UnreadService interface {
	UnreadCounts(ctx context.Context) (map[int]int, error)
	MarkRead(ctx context.Context, friendID int) error
}

// Config holds session wiring. Only WSURL is required.
type Config struct {
	WSURL          string
	ReconnectDelay time.Duration
	Logger         zerolog.Logger
}

// Session owns one user's live chat state: the websocket connection
// and its reconnect timer, the conversation buffers, and the unread
// ledger. A single goroutine (Run loop) performs every mutation, so
// the parts it owns need no locks of their own.
type Session struct {
	cfg     Config
	log     zerolog.Logger
	selfID  int
	creds   CredentialSource
	history HistoryFetcher
	unread  UnreadService

	store  *Store
	ledger *UnreadLedger
	router *Router

	state   ConnState
	ws      *websocket.Conn
	timer   *time.Timer // pending reconnect, nil when none
	events  chan event
	done    chan struct{}
	inbound chan Envelope // delivered copies for the UI, best-effort
}

type event interface{ isEvent() }

type evtConnect struct{}
type evtDialResult struct {
	ws  *websocket.Conn
	err error
}
type evtFrame struct{ msg Message }
type evtClosed struct{ ws *websocket.Conn }
type evtTimer struct{}
type evtDisconnect struct{ done chan struct{} }
type evtSend struct {
	out  Outbound
	errc chan error
}
type evtSetActive struct {
	counterpart int
	done        chan struct{}
}
type evtCounts struct{ counts map[int]int }
type evtMerge struct {
	counterpart int // 0 = lobby
	page        []Message
	done        chan struct{}
}
type evtInspect struct {
	fn   func()
	done chan struct{}
}

func (evtConnect) isEvent()    {}
func (evtDialResult) isEvent() {}
func (evtFrame) isEvent()      {}
func (evtClosed) isEvent()     {}
func (evtTimer) isEvent()      {}
func (evtDisconnect) isEvent() {}
func (evtSend) isEvent()       {}
func (evtSetActive) isEvent()  {}
func (evtCounts) isEvent()     {}
func (evtMerge) isEvent()      {}
func (evtInspect) isEvent()    {}

// New builds a session for one authenticated user and starts its event
// loop. selfID is the local user's id, used to classify echoes of the
// user's own messages.
func New(cfg Config, selfID int, creds CredentialSource, history HistoryFetcher, unread UnreadService) *Session {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
	s := &Session{
		cfg:     cfg,
		log:     cfg.Logger.With().Str("component", "session").Logger(),
		selfID:  selfID,
		creds:   creds,
		history: history,
		unread:  unread,
		store:   NewStore(),
		ledger:  NewUnreadLedger(),
		events:  make(chan event, 64),
		done:    make(chan struct{}),
		inbound: make(chan Envelope, 256),
	}
	s.router = NewRouter(selfID, s.store, s.ledger, s.log)
	go s.run()
	return s
}

// Inbound exposes delivered messages to the surrounding application.
// Delivery is best-effort: a slow consumer loses notifications, never
// state — the store and ledger are already updated when an envelope is
// offered here.
func (s *Session) Inbound() <-chan Envelope { return s.inbound }

// Connect asks for a connection. No-op while connecting or connected,
// and while no valid credential is available.
func (s *Session) Connect() { s.events <- evtConnect{} }

// Disconnect tears the transport down and cancels any pending
// reconnect. Unlike a network drop it does not auto-reconnect; call
// Connect again to resume.
func (s *Session) Disconnect() {
	done := make(chan struct{})
	s.events <- evtDisconnect{done: done}
	<-done
}

// Close stops the event loop for good. The session is unusable after.
func (s *Session) Close() {
	s.Disconnect()
	close(s.done)
}

// SetActive records the private conversation on screen (0 for none or
// lobby). Entering a conversation zeroes its unread counter at once
// and acknowledges the read to the server in the background; a failed
// acknowledgement is logged and the local reset stands.
func (s *Session) SetActive(counterpart int) {
	done := make(chan struct{})
	s.events <- evtSetActive{counterpart: counterpart, done: done}
	<-done
}

// State reports the connection lifecycle state.
func (s *Session) State() ConnState {
	var st ConnState
	s.inspect(func() { st = s.state })
	return st
}

// Lobby returns a copy of the buffered lobby conversation.
func (s *Session) Lobby() []Message {
	var out []Message
	s.inspect(func() { out = s.store.Lobby() })
	return out
}

// Private returns a copy of the buffered conversation with one
// counterpart.
func (s *Session) Private(counterpart int) []Message {
	var out []Message
	s.inspect(func() { out = s.store.Private(counterpart) })
	return out
}

// UnreadCounts returns a copy of the per-counterpart unread counters.
func (s *Session) UnreadCounts() map[int]int {
	var out map[int]int
	s.inspect(func() { out = s.ledger.Snapshot() })
	return out
}

// TotalUnread sums unread counters across all counterparts.
func (s *Session) TotalUnread() int {
	var n int
	s.inspect(func() { n = s.ledger.Total() })
	return n
}

// LoadOlderLobby fetches an older lobby history page and merges it in
// front of the buffered messages.
func (s *Session) LoadOlderLobby(ctx context.Context, skip, limit int) error {
	page, err := s.history.LobbyHistory(ctx, skip, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("lobby history fetch failed")
		return err
	}
	s.merge(0, page)
	return nil
}

// LoadOlderPrivate fetches an older page of one private conversation
// and merges it in front of the buffered messages.
func (s *Session) LoadOlderPrivate(ctx context.Context, counterpart, skip, limit int) error {
	page, err := s.history.PrivateHistory(ctx, counterpart, skip, limit)
	if err != nil {
		s.log.Error().Err(err).Int("counterpart", counterpart).Msg("private history fetch failed")
		return err
	}
	s.merge(counterpart, page)
	return nil
}

func (s *Session) merge(counterpart int, page []Message) {
	done := make(chan struct{})
	s.events <- evtMerge{counterpart: counterpart, page: page, done: done}
	<-done
}

func (s *Session) inspect(fn func()) {
	done := make(chan struct{})
	s.events <- evtInspect{fn: fn, done: done}
	<-done
}

// run is the single mutation path for everything the session owns.
func (s *Session) run() {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			s.dispatch(ev)
		}
	}
}

func (s *Session) dispatch(ev event) {
	switch ev := ev.(type) {
	case evtConnect:
		s.startConnect(evConnect)

	case evtTimer:
		s.timer = nil
		s.startConnect(evTimerFired)

	case evtDialResult:
		if ev.err != nil {
			if next, ok := transition(s.state, evDialFail); ok {
				s.state = next
				s.log.Warn().Err(ev.err).Msg("chat dial failed")
				s.scheduleReconnect()
			}
			return
		}
		next, ok := transition(s.state, evOpen)
		if !ok {
			// Disconnected while the handshake was in flight.
			ev.ws.Close()
			return
		}
		s.state = next
		s.ws = ev.ws
		s.clearTimer()
		s.log.Info().Msg("connected to chat server")
		go s.readPump(ev.ws)
		go s.resyncUnread()

	case evtFrame:
		env, stored := s.router.Route(ev.msg)
		if stored {
			select {
			case s.inbound <- env:
			default:
			}
		}

	case evtClosed:
		if ev.ws != s.ws {
			return // stale pump from a connection already replaced
		}
		if next, ok := transition(s.state, evClose); ok {
			s.state = next
			s.ws = nil
			s.log.Info().Msg("disconnected from chat server")
			s.scheduleReconnect()
		}

	case evtDisconnect:
		if s.ws != nil {
			s.ws.Close()
			s.ws = nil
		}
		s.clearTimer()
		s.state, _ = transition(s.state, evUserDisconnect)
		close(ev.done)

	case evtSend:
		if s.state != StateConnected || s.ws == nil {
			ev.errc <- ErrNotConnected
			return
		}
		s.ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.ws.WriteJSON(ev.out); err != nil {
			// A failed write means the transport is gone; closing it
			// routes recovery through the usual close path.
			s.ws.Close()
			ev.errc <- err
			return
		}
		ev.errc <- nil

	case evtSetActive:
		s.ledger.SetActive(ev.counterpart)
		if ev.counterpart != 0 {
			go s.ackRead(ev.counterpart)
		}
		close(ev.done)

	case evtCounts:
		s.ledger.ReplaceAll(ev.counts)

	case evtMerge:
		if ev.counterpart == 0 {
			s.store.PrependLobby(ev.page)
		} else {
			s.store.PrependPrivate(ev.counterpart, ev.page)
		}
		close(ev.done)

	case evtInspect:
		ev.fn()
		close(ev.done)
	}
}

// startConnect handles both user-initiated and timer-initiated
// connection requests.
func (s *Session) startConnect(trigger connEvent) {
	token, ok := s.creds.Token()
	if !ok {
		s.log.Debug().Msg("connect skipped, no valid credential")
		return
	}
	next, ok := transition(s.state, trigger)
	if !ok {
		return
	}
	s.state = next
	go s.dial(wsURL(s.cfg.WSURL, token))
}

// scheduleReconnect arms the reconnect timer unless one is already
// pending. Retries continue with a fixed delay until a connect
// succeeds or the user disconnects; there is no retry cap.
func (s *Session) scheduleReconnect() {
	if s.timer != nil {
		return
	}
	s.timer = time.AfterFunc(s.cfg.ReconnectDelay, func() {
		select {
		case s.events <- evtTimer{}:
		case <-s.done:
		}
	})
}

func (s *Session) clearTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// resyncUnread replaces local counters with server truth after a fresh
// connection. A fetch failure leaves the local counters untouched.
func (s *Session) resyncUnread() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	counts, err := s.unread.UnreadCounts(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("unread resync failed")
		return
	}
	select {
	case s.events <- evtCounts{counts: counts}:
	case <-s.done:
	}
}

// ackRead tells the server a conversation was read. Best-effort: the
// optimistic local reset already happened and is not rolled back.
func (s *Session) ackRead(counterpart int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.unread.MarkRead(ctx, counterpart); err != nil {
		s.log.Warn().Err(err).Int("counterpart", counterpart).Msg("mark-read failed")
	}
}
