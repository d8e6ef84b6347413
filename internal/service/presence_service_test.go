package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cwrk-planet/presence-service/internal/domain"
	"github.com/cwrk-planet/presence-service/internal/registry"
)

func newSvc(t *testing.T) *PresenceService {
	t.Helper()
	return NewPresenceService(registry.NewRegistry(30*time.Second), "page")
}

func TestListUsers_MissingRoomID(t *testing.T) {
	svc := newSvc(t)
	_, _, err := svc.ListUsers(context.Background(), "page", "")
	if !errors.Is(err, domain.ErrMissingRoomID) {
		t.Fatalf("expected ErrMissingRoomID, got %v", err)
	}
}

func TestJoinRoom_DefaultsRoomType(t *testing.T) {
	svc := newSvc(t)
	ctx := context.Background()

	_, err := svc.JoinRoom(ctx, "", "42", domain.User{ID: "u1"}, "c1", nil)
	if err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}

	// пустой type на чтении резолвится в тот же неймспейс
	users, count, err := svc.ListUsers(ctx, "", "42")
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if count != 1 || len(users) != 1 {
		t.Fatalf("read with defaulted type must see the write, got count=%d", count)
	}

	users, _, _ = svc.ListUsers(ctx, "page", "42")
	if len(users) != 1 {
		t.Fatalf("explicit default type must see the same room")
	}
}

func TestJoinRoom_AssignsConnectionAndColor(t *testing.T) {
	svc := newSvc(t)

	p, err := svc.JoinRoom(context.Background(), "page", "42", domain.User{ID: "u1"}, "", nil)
	if err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}
	if p.ConnectionID == "" {
		t.Fatalf("server must assign a connection id when the client sent none")
	}
	if p.User.Color != domain.ColorFor("u1") {
		t.Fatalf("expected palette color %s, got %s", domain.ColorFor("u1"), p.User.Color)
	}
	if p.User.Name != "u1" {
		t.Fatalf("missing name must default to id, got %q", p.User.Name)
	}

	// явный цвет от resolver'а не переопределяем
	p2, _ := svc.JoinRoom(context.Background(), "page", "42", domain.User{ID: "u2", Color: "#ff0000"}, "c2", nil)
	if p2.User.Color != "#ff0000" {
		t.Fatalf("resolver-supplied color must win, got %s", p2.User.Color)
	}
}

func TestCountInvariant(t *testing.T) {
	svc := newSvc(t)
	ctx := context.Background()

	for i, uid := range []string{"a", "b", "c"} {
		if _, err := svc.JoinRoom(ctx, "page", "42", domain.User{ID: uid}, "c1", nil); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
		users, count, err := svc.ListUsers(ctx, "page", "42")
		if err != nil {
			t.Fatalf("list %d: %v", i, err)
		}
		if count != len(users) {
			t.Fatalf("count=%d != len(users)=%d", count, len(users))
		}
	}
}

func TestUpdatePresence_Miss(t *testing.T) {
	svc := newSvc(t)
	ctx := context.Background()

	active, err := svc.UpdatePresence(ctx, "page", "42", "u1", "c1", nil)
	if err != nil {
		t.Fatalf("UpdatePresence: %v", err)
	}
	if active {
		t.Fatalf("heartbeat before join must report inactive")
	}

	if _, err := svc.JoinRoom(ctx, "page", "42", domain.User{ID: "u1"}, "c1", nil); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}
	active, err = svc.UpdatePresence(ctx, "page", "42", "u1", "c1", json.RawMessage(`{"caret":7}`))
	if err != nil || !active {
		t.Fatalf("heartbeat after join must be active, got active=%v err=%v", active, err)
	}

	users, _, _ := svc.ListUsers(ctx, "page", "42")
	if string(users[0].Cursor) != `{"caret":7}` {
		t.Fatalf("cursor must be stored verbatim, got %s", users[0].Cursor)
	}
}

func TestLeaveRoom(t *testing.T) {
	svc := newSvc(t)
	ctx := context.Background()

	if _, err := svc.JoinRoom(ctx, "page", "42", domain.User{ID: "u1"}, "c1", nil); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}
	left, err := svc.LeaveRoom(ctx, "page", "42", "u1", "c1")
	if err != nil || !left {
		t.Fatalf("expected clean leave, got left=%v err=%v", left, err)
	}

	_, count, _ := svc.ListUsers(ctx, "page", "42")
	if count != 0 {
		t.Fatalf("expected count 0 after leave, got %d", count)
	}

	left, err = svc.LeaveRoom(ctx, "page", "42", "u1", "c1")
	if err != nil {
		t.Fatalf("repeated leave must not error: %v", err)
	}
	if left {
		t.Fatalf("repeated leave must report false")
	}
}
