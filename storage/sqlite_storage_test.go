package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/calchat/calchat/conversation"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ts := time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC)

	userTurn := conversation.Turn{
		Role:            conversation.RoleUser,
		Content:         "3:00 PM",
		Timestamp:       ts,
		IsTimeSelection: true,
	}
	assistantTurn := conversation.Turn{
		Role:      conversation.RoleAssistant,
		Content:   "Booked it.",
		Timestamp: ts.Add(2 * time.Second),
		Booking: &conversation.BookingData{
			ID:        "evt123",
			Title:     "Team sync",
			StartTime: "2026-08-31T15:00:00+05:30",
			Status:    "confirmed",
			HTMLLink:  "https://calendar.example/evt123",
		},
		SuggestedTimes: []string{"3:00 PM", "4:00 PM"},
	}
	if err := store.AppendTurn("sess-1", userTurn); err != nil {
		t.Fatalf("append user turn: %v", err)
	}
	if err := store.AppendTurn("sess-1", assistantTurn); err != nil {
		t.Fatalf("append assistant turn: %v", err)
	}

	turns, err := store.LoadSession("sess-1")
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != conversation.RoleUser || turns[0].Content != "3:00 PM" || !turns[0].IsTimeSelection {
		t.Fatalf("user turn mangled: %+v", turns[0])
	}
	if !turns[0].Timestamp.Equal(ts) {
		t.Fatalf("timestamp mangled: got %v want %v", turns[0].Timestamp, ts)
	}
	got := turns[1]
	if got.Booking == nil || got.Booking.ID != "evt123" || got.Booking.Title != "Team sync" {
		t.Fatalf("booking mangled: %+v", got.Booking)
	}
	if got.Booking.HTMLLink != "https://calendar.example/evt123" {
		t.Fatalf("link mangled: %q", got.Booking.HTMLLink)
	}
	if len(got.SuggestedTimes) != 2 || got.SuggestedTimes[0] != "3:00 PM" {
		t.Fatalf("suggestions mangled: %v", got.SuggestedTimes)
	}
}

func TestLoadSessionIsolatesSessions(t *testing.T) {
	store := newTestStore(t)
	if err := store.AppendTurn("a", conversation.Turn{Role: conversation.RoleUser, Content: "hi", Timestamp: time.Now()}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.AppendTurn("b", conversation.Turn{Role: conversation.RoleUser, Content: "yo", Timestamp: time.Now()}); err != nil {
		t.Fatalf("append: %v", err)
	}

	turns, err := store.LoadSession("a")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(turns) != 1 || turns[0].Content != "hi" {
		t.Fatalf("expected only session a's turn, got %+v", turns)
	}
}

func TestClearSession(t *testing.T) {
	store := newTestStore(t)
	if err := store.AppendTurn("a", conversation.Turn{Role: conversation.RoleUser, Content: "hi", Timestamp: time.Now()}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.AppendTurn("b", conversation.Turn{Role: conversation.RoleUser, Content: "yo", Timestamp: time.Now()}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.ClearSession("a"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	turns, err := store.LoadSession("a")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected empty transcript, got %d turns", len(turns))
	}
	other, err := store.LoadSession("b")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(other) != 1 {
		t.Fatalf("clearing one session must not touch another")
	}
}

func TestLoadEmptySession(t *testing.T) {
	store := newTestStore(t)
	turns, err := store.LoadSession("nobody")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected no turns, got %d", len(turns))
	}
}

func TestStartupNoticeFlagSurvivesRoundTrip(t *testing.T) {
	store := newTestStore(t)
	turn := conversation.Turn{
		Role:            conversation.RoleAssistant,
		Content:         "warming up",
		Timestamp:       time.Now(),
		IsStartupNotice: true,
	}
	if err := store.AppendTurn("s", turn); err != nil {
		t.Fatalf("append: %v", err)
	}
	turns, err := store.LoadSession("s")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(turns) != 1 || !turns[0].IsStartupNotice {
		t.Fatalf("startup flag lost: %+v", turns)
	}
}
