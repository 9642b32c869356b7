package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/foliohq/folio-server/internal/domain"
	"github.com/foliohq/folio-server/internal/store"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &domain.User{Entity: domain.Entity{ID: "user-1"}, Name: "Ada", Email: "  Ada@Example.com", PasswordHash: "hash"}
	u.InitTimestamps()
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := s.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Name != "Ada" || got.Email != "ada@example.com" || got.PasswordHash != "hash" {
		t.Errorf("unexpected user: %+v", got)
	}
	if got.CreatedAt.Unix() != u.CreatedAt.Unix() {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, u.CreatedAt)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetUser(context.Background(), "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetUserByEmail_CaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	insertTestUser(t, s, "user-1")

	got, err := s.GetUserByEmail(context.Background(), "USER-1@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != "user-1" {
		t.Errorf("got %q", got.ID)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	insertTestUser(t, s, "user-1")

	dup := &domain.User{Entity: domain.Entity{ID: "user-2"}, Name: "Other", Email: "User-1@example.com", PasswordHash: "h"}
	dup.InitTimestamps()

	if err := s.CreateUser(context.Background(), dup); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetUsersByIDs(t *testing.T) {
	s := newTestStore(t)
	insertTestUser(t, s, "user-1")
	insertTestUser(t, s, "user-2")
	insertTestUser(t, s, "user-3")

	users, err := s.GetUsersByIDs(context.Background(), []string{"user-1", "user-3", "missing"})
	if err != nil {
		t.Fatalf("GetUsersByIDs: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}

	empty, err := s.GetUsersByIDs(context.Background(), nil)
	if err != nil || empty != nil {
		t.Errorf("empty ids: got %v, %v", empty, err)
	}
}
