package chat

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// redisChannel carries every message between instances; the envelope's
// target decides local delivery.
const redisChannel = "lobby-chat"

type Hub struct {
	clients map[*Client]bool
	byUser  map[int]map[*Client]bool // one user may hold several connections

	Register   chan *Client
	Unregister chan *Client
	Publish    chan *IncomingMessage
	broadcast  chan Envelope // decoded envelopes from Redis

	redis *redis.Client
	repo  *Repository
	log   zerolog.Logger
}

func NewHub(redisClient *redis.Client, repo *Repository, log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		byUser:     make(map[int]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Publish:    make(chan *IncomingMessage),
		broadcast:  make(chan Envelope),
		redis:      redisClient,
		repo:       repo,
		log:        log.With().Str("component", "hub").Logger(),
	}
}

// Run owns the client registries; nothing else touches them.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			if h.byUser[client.UserID] == nil {
				h.byUser[client.UserID] = make(map[*Client]bool)
			}
			h.byUser[client.UserID][client] = true

		case client := <-h.Unregister:
			h.drop(client)

		case msg := <-h.Publish:
			h.publish(msg)

		case env := <-h.broadcast:
			h.deliver(env)
		}
	}
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	if conns := h.byUser[client.UserID]; conns != nil {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.byUser, client.UserID)
		}
	}
}

// publish persists a client frame and pushes the full message to Redis
// so every instance, this one included, can deliver it.
func (h *Hub) publish(msg *IncomingMessage) {
	ctx := context.Background()

	msgType := msg.Frame.Type
	if msgType == "" {
		msgType = "text"
	}

	id, createdAt, err := h.repo.SaveMessage(ctx, msg.Author.ID, msg.Frame.ToUserID, msgType, msg.Frame.Content)
	if err != nil {
		h.log.Error().Err(err).Msg("message persist failed")
		return
	}

	author := msg.Author
	full := Message{
		ID:          id,
		Content:     msg.Frame.Content,
		MessageType: msgType,
		UserID:      author.ID,
		CreatedAt:   createdAt,
		ToUserID:    msg.Frame.ToUserID,
		Sender:      &author,
	}
	payload, err := json.Marshal(full)
	if err != nil {
		h.log.Error().Err(err).Msg("message marshal failed")
		return
	}

	env := Envelope{SenderID: author.ID, Payload: payload}
	if msg.Frame.ToUserID != nil {
		env.TargetID = *msg.Frame.ToUserID
	}
	raw, _ := json.Marshal(env)

	if err := h.redis.Publish(ctx, redisChannel, raw).Err(); err != nil {
		h.log.Error().Err(err).Msg("redis publish failed")
	}
}

// deliver fans an envelope out to local connections: everyone for the
// lobby, otherwise the target's connections plus the sender's own (the
// echo that lets the sender's other devices stay in sync).
func (h *Hub) deliver(env Envelope) {
	if env.TargetID == 0 {
		for client := range h.clients {
			h.offer(client, env.Payload)
		}
		return
	}
	for client := range h.byUser[env.TargetID] {
		h.offer(client, env.Payload)
	}
	if env.SenderID != env.TargetID {
		for client := range h.byUser[env.SenderID] {
			h.offer(client, env.Payload)
		}
	}
}

func (h *Hub) offer(client *Client, payload []byte) {
	select {
	case client.Send <- payload:
	default:
		// Slow consumer; drop the connection rather than block the hub.
		h.drop(client)
	}
}

// SubscribeToRedis feeds envelopes from other instances into the
// delivery loop.
func (h *Hub) SubscribeToRedis() {
	pubsub := h.redis.Subscribe(context.Background(), redisChannel)
	ch := pubsub.Channel()

	for msg := range ch {
		var env Envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			h.log.Warn().Err(err).Msg("bad envelope on redis channel")
			continue
		}
		h.broadcast <- env
	}
}
