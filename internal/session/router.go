package session

import "github.com/rs/zerolog"

// Router classifies inbound frames into the lobby or exactly one
// private conversation, drops redeliveries, and tells the unread
// ledger about messages the user has not seen. It runs entirely on the
// session event loop.
type Router struct {
	selfID int
	store  *Store
	unread *UnreadLedger
	log    zerolog.Logger
}

func NewRouter(selfID int, store *Store, unread *UnreadLedger, log zerolog.Logger) *Router {
	return &Router{selfID: selfID, store: store, unread: unread, log: log}
}

// Classify tags a message with its conversation. A message with a
// recipient id is private; the conversation key is always the other
// party relative to the local user, so both sides of a 1:1 thread file
// it under the same id. Everything else is lobby traffic.
func (r *Router) Classify(msg Message) Envelope {
	if msg.ToUserID == nil {
		return Envelope{Msg: msg, Kind: ConvLobby}
	}
	counterpart := msg.UserID
	if msg.UserID == r.selfID {
		counterpart = *msg.ToUserID
	}
	return Envelope{Msg: msg, Kind: ConvPrivate, Counterpart: counterpart}
}

// Route classifies and stores one message, returning the envelope and
// whether it was actually inserted (false means a dropped redelivery).
//
// A private message from someone else bumps that counterpart's unread
// counter unless the conversation is on screen. Self-authored echoes
// never count as unread, and lobby traffic carries no unread notion.
func (r *Router) Route(msg Message) (Envelope, bool) {
	env := r.Classify(msg)
	if !r.store.Append(env) {
		r.log.Debug().Int("id", msg.ID).Str("conv", env.Kind.String()).Msg("duplicate frame dropped")
		return env, false
	}
	if env.Kind == ConvPrivate && msg.UserID != r.selfID && env.Counterpart != r.unread.Active() {
		r.unread.Increment(env.Counterpart)
	}
	return env, true
}
