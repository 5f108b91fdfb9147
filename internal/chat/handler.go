package chat

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"lobbychat/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // tighten this when a real origin list exists
	},
}

type Handler struct {
	hub  *Hub
	repo *Repository
	log  zerolog.Logger
}

func NewHandler(hub *Hub, repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{hub: hub, repo: repo, log: log.With().Str("component", "chat").Logger()}
}

// ServeWs upgrades an authenticated request and attaches the
// connection to the hub.
func (h *Handler) ServeWs(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserKey).(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	author, err := h.repo.GetSender(r.Context(), userID)
	if err != nil {
		http.Error(w, "Unknown user", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	connID := uuid.NewString()
	client := &Client{
		ID:     connID,
		UserID: userID,
		Author: author,
		hub:    h.hub,
		conn:   conn,
		Send:   make(chan []byte, 256),
		log:    h.log.With().Str("conn", connID).Int("user", userID).Logger(),
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

// GetLobbyHistory serves GET /api/chat/history?skip&limit.
func (h *Handler) GetLobbyHistory(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)
	page, err := h.repo.LobbyHistory(r.Context(), skip, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("lobby history query failed")
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	if page == nil {
		page = []Message{}
	}
	writeJSON(w, page)
}

// GetPrivateHistory serves GET /api/chat/private/history?friend_id&skip&limit.
func (h *Handler) GetPrivateHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(middleware.UserKey).(int)
	friendID, err := strconv.Atoi(r.URL.Query().Get("friend_id"))
	if err != nil || friendID <= 0 {
		http.Error(w, "friend_id required", http.StatusBadRequest)
		return
	}
	skip, limit := pagination(r)
	page, err := h.repo.PrivateHistory(r.Context(), userID, friendID, skip, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("private history query failed")
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	if page == nil {
		page = []Message{}
	}
	writeJSON(w, page)
}

// GetUnread serves GET /api/chat/unread.
func (h *Handler) GetUnread(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(middleware.UserKey).(int)
	counts, err := h.repo.UnreadCounts(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("unread query failed")
		http.Error(w, "unread counts unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, counts)
}

// MarkRead serves POST /api/chat/private/read with body {friend_id}.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(middleware.UserKey).(int)
	var req struct {
		FriendID int `json:"friend_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FriendID <= 0 {
		http.Error(w, "friend_id required", http.StatusBadRequest)
		return
	}
	if err := h.repo.MarkRead(r.Context(), userID, req.FriendID); err != nil {
		h.log.Error().Err(err).Msg("mark read failed")
		http.Error(w, "mark read failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"message": "ok"})
}

func pagination(r *http.Request) (skip, limit int) {
	skip, _ = strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return skip, limit
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
