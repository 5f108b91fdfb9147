package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-chi/chi/v5"
)

type staticToken string

func (s staticToken) Token() (string, bool) { return string(s), s != "" }

func TestLobbyHistory(t *testing.T) {
	var gotAuth, gotQuery string
	r := chi.NewRouter()
	r.Get("/api/chat/history", func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		gotQuery = req.URL.RawQuery
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": 3, "content": "old", "user_id": 2},
			{"id": 4, "content": "older", "user_id": 5},
		})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok"))
	page, err := c.LobbyHistory(context.Background(), 10, 50)
	if err != nil {
		t.Fatal(err)
	}

	if gotAuth != "Bearer tok" {
		t.Fatalf("Authorization = %q, want Bearer tok", gotAuth)
	}
	if gotQuery != "skip=10&limit=50" {
		t.Fatalf("query = %q", gotQuery)
	}
	if len(page) != 2 || page[0].ID != 3 || page[1].ID != 4 {
		t.Fatalf("page = %+v", page)
	}
}

func TestPrivateHistory(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/chat/private/history", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("friend_id") != "7" {
			http.Error(w, "wrong friend", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{{"id": 9, "user_id": 7, "to_user_id": 1}})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok"))
	page, err := c.PrivateHistory(context.Background(), 7, 0, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 1 || page[0].ID != 9 || page[0].ToUserID == nil || *page[0].ToUserID != 1 {
		t.Fatalf("page = %+v", page)
	}
}

func TestUnreadCountsParsesNumericKeys(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/chat/unread", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"2": 3, "15": 1}`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok"))
	counts, err := c.UnreadCounts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(counts, map[int]int{2: 3, 15: 1}) {
		t.Fatalf("counts = %v", counts)
	}
}

func TestUnreadCountsRejectsBadKeys(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/chat/unread", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"nope": 3}`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok"))
	if _, err := c.UnreadCounts(context.Background()); err == nil {
		t.Fatal("expected error for non-numeric key")
	}
}

func TestMarkRead(t *testing.T) {
	var got struct {
		FriendID int `json:"friend_id"`
	}
	r := chi.NewRouter()
	r.Post("/api/chat/private/read", func(w http.ResponseWriter, req *http.Request) {
		json.NewDecoder(req.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok"))
	if err := c.MarkRead(context.Background(), 7); err != nil {
		t.Fatal(err)
	}
	if got.FriendID != 7 {
		t.Fatalf("friend_id = %d, want 7", got.FriendID)
	}
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/chat/unread", func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok"))
	_, err := c.UnreadCounts(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
}
