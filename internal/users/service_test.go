package users

import (
	"context"
	"testing"
)

func TestUpsertFromAuthRequiresIdentity(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if err := svc.UpsertFromAuth(context.Background(), User{ID: "u-1"}); err == nil {
		t.Fatalf("expected error for missing email")
	}
	if err := svc.UpsertFromAuth(context.Background(), User{Email: "a@b.c"}); err == nil {
		t.Fatalf("expected error for missing id")
	}
}

func TestUpsertPreservesCreatedAt(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.UpsertFromAuth(ctx, User{ID: "u-1", Email: "a@b.c", Name: "First"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	first, err := svc.GetByID(ctx, "u-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if err := svc.UpsertFromAuth(ctx, User{ID: "u-1", Email: "a@b.c", Name: "Second"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	second, err := svc.GetByID(ctx, "u-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("expected createdAt preserved, got %v then %v", first.CreatedAt, second.CreatedAt)
	}
	if second.Name != "Second" {
		t.Fatalf("expected name updated, got %q", second.Name)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if _, err := svc.GetByID(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
