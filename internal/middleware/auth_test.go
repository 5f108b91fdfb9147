package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (int, string, error) {
	if token != "good" {
		return 0, "", errors.New("bad token")
	}
	return 7, "alice", nil
}

func protected(t *testing.T) (http.Handler, *int) {
	t.Helper()
	var seenID int
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := r.Context().Value(UserKey).(int)
		seenID = id
		w.WriteHeader(http.StatusOK)
	})
	return NewAuthMiddleware(stubValidator{}).Handle(next), &seenID
}

func TestBearerHeaderAccepted(t *testing.T) {
	h, seenID := protected(t)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/unread", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *seenID != 7 {
		t.Fatalf("user id in context = %d, want 7", *seenID)
	}
}

func TestQueryTokenAcceptedForWebsockets(t *testing.T) {
	h, seenID := protected(t)

	req := httptest.NewRequest(http.MethodGet, "/ws?token=good", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || *seenID != 7 {
		t.Fatalf("status = %d, id = %d; want 200, 7", rec.Code, *seenID)
	}
}

func TestMissingTokenRejected(t *testing.T) {
	h, _ := protected(t)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	h, _ := protected(t)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "Bearer evil")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
