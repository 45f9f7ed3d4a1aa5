package authz

import (
	"context"
	"testing"

	"github.com/angelmondragon/catalog-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
)

func access(admin, fresh bool) *auth.Claims {
	return &auth.Claims{UserID: 1, IsAdmin: admin, Fresh: fresh, Type: auth.TokenTypeAccess}
}

func refreshClaims() *auth.Claims {
	return &auth.Claims{UserID: 1, Type: auth.TokenTypeRefresh}
}

func codeOf(err error) pkgerrors.Code {
	if err == nil {
		return ""
	}
	return pkgerrors.As(err).Code()
}

func TestDefaultPolicy(t *testing.T) {
	policy := DefaultPolicy()
	tests := []struct {
		name   string
		op     Op
		claims *auth.Claims
		want   pkgerrors.Code
	}{
		{"public store create", OpStoreCreate, nil, ""},
		{"public tag delete", OpTagDelete, nil, ""},
		{"item list needs token", OpItemList, nil, pkgerrors.CodeUnauthorized},
		{"item list with token", OpItemList, access(false, false), ""},
		{"item create needs fresh", OpItemCreate, access(true, false), pkgerrors.CodeFreshTokenRequired},
		{"item create fresh", OpItemCreate, access(false, true), ""},
		{"item delete needs admin", OpItemDelete, access(false, true), pkgerrors.CodeAdminRequired},
		{"item delete admin stale", OpItemDelete, access(true, false), ""},
		{"refresh token on item op", OpItemGet, refreshClaims(), pkgerrors.CodeTokenInvalid},
		{"access token on refresh", OpRefresh, access(false, true), pkgerrors.CodeTokenInvalid},
		{"refresh with refresh token", OpRefresh, refreshClaims(), ""},
		{"user delete non admin", OpUserDel, access(false, true), pkgerrors.CodeAdminRequired},
		{"unknown op requires auth", Op("mystery"), nil, pkgerrors.CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := codeOf(policy.Authorize(tt.claims, tt.op))
			if got != tt.want {
				t.Fatalf("expected %q got %q", tt.want, got)
			}
		})
	}
}

func TestCheckPriorityAdminBeforeFresh(t *testing.T) {
	req := Requirement{Authenticated: true, Admin: true, Fresh: true}
	if got := codeOf(Check(access(false, false), req)); got != pkgerrors.CodeAdminRequired {
		t.Fatalf("expected admin failure first, got %q", got)
	}
	if got := codeOf(Check(nil, req)); got != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected authentication failure first, got %q", got)
	}
	if got := codeOf(Check(access(true, false), req)); got != pkgerrors.CodeFreshTokenRequired {
		t.Fatalf("expected fresh failure, got %q", got)
	}
	if err := Check(access(true, true), req); err != nil {
		t.Fatalf("expected allow, got %v", err)
	}
}

func TestStrictPolicy(t *testing.T) {
	policy := PolicyFor(true)
	if got := codeOf(policy.Authorize(nil, OpStoreCreate)); got != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected strict store create to need auth, got %q", got)
	}
	if got := codeOf(policy.Authorize(access(false, true), OpStoreDelete)); got != pkgerrors.CodeAdminRequired {
		t.Fatalf("expected strict store delete to need admin, got %q", got)
	}
	if got := codeOf(policy.Authorize(access(false, false), OpTagLink)); got != "" {
		t.Fatalf("expected strict tag link to allow any access token, got %q", got)
	}
	if err := policy.Authorize(nil, OpRegister); err != nil {
		t.Fatalf("registration stays public, got %v", err)
	}
}

func TestRequireFresh(t *testing.T) {
	if RequireFresh(access(false, true)) != nil {
		t.Fatal("fresh token should pass")
	}
	if codeOf(RequireFresh(access(false, false))) != pkgerrors.CodeFreshTokenRequired {
		t.Fatal("stale token should fail")
	}
	if codeOf(RequireFresh(nil)) != pkgerrors.CodeFreshTokenRequired {
		t.Fatal("nil claims should fail")
	}
}

func TestExplainSurfacesRefusedToken(t *testing.T) {
	policy := DefaultPolicy()
	revoked := pkgerrors.New(pkgerrors.CodeTokenRevoked, "The token has been revoked.")
	ctx := auth.WithRejection(context.Background(), revoked)

	if err := Explain(ctx, policy.Authorize(nil, OpItemGet)); !pkgerrors.HasCode(err, pkgerrors.CodeTokenRevoked) {
		t.Fatalf("expected refused token to surface, got %v", err)
	}
	if err := Explain(ctx, policy.Authorize(nil, OpStoreCreate)); err != nil {
		t.Fatalf("public op should ignore refused token, got %v", err)
	}
	if err := Explain(context.Background(), policy.Authorize(nil, OpItemGet)); !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected authentication required without a refused token, got %v", err)
	}
	admin := policy.Authorize(access(false, true), OpItemDelete)
	if err := Explain(ctx, admin); !pkgerrors.HasCode(err, pkgerrors.CodeAdminRequired) {
		t.Fatalf("expected other errors to pass through, got %v", err)
	}
}
