package auth

import (
	"context"
	"testing"
)

func TestPrincipalContext(t *testing.T) {
	if _, ok := PrincipalFromContext(context.Background()); ok {
		t.Fatalf("expected no principal in empty context")
	}
	p := NewPrincipal(3, "demo@shop.test", "hash", []string{" ROLE_EMPLOYEE ", "ROLE_EMPLOYEE", ""})
	ctx := ContextWithPrincipal(context.Background(), p)
	got, ok := PrincipalFromContext(ctx)
	if !ok || got != p {
		t.Fatalf("principal not found in context")
	}
	if roles := got.Roles(); len(roles) != 1 || roles[0] != "ROLE_EMPLOYEE" {
		t.Fatalf("roles not normalized: %v", roles)
	}
	got.Roles()[0] = "ROLE_ROOT"
	if got.HasRole("ROLE_ROOT") {
		t.Fatalf("Roles must return a copy")
	}
	if ContextWithPrincipal(ctx, nil) != ctx {
		t.Fatalf("nil principal should leave context untouched")
	}
}

func TestDecodePrincipalRejectsIncompleteRecord(t *testing.T) {
	if _, err := decodePrincipal([]byte(`{"id":0,"username":""}`)); err == nil {
		t.Fatalf("expected error for incomplete record")
	}
	raw, err := encodePrincipal(NewPrincipal(9, "a@b.test", "h", []string{"ROLE_EMPLOYEE"}))
	if err != nil {
		t.Fatalf("encodePrincipal: %v", err)
	}
	p, err := decodePrincipal(raw)
	if err != nil || p.ID() != 9 || p.Username() != "a@b.test" || p.PasswordHash() != "h" {
		t.Fatalf("decodePrincipal: %v %#v", err, p)
	}
}
