package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgAuth "github.com/angelmondragon/catalog-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
)

type stubValidator struct {
	claims *pkgAuth.Claims
	err    error
	seen   string
}

func (s *stubValidator) Validate(_ context.Context, token string) (*pkgAuth.Claims, error) {
	s.seen = token
	return s.claims, s.err
}

func TestAuthenticatePassesAnonymousRequests(t *testing.T) {
	validator := &stubValidator{}
	var claims *pkgAuth.Claims
	called := false
	handler := Authenticate(validator, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		claims = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/store", nil))
	if resp.Code != http.StatusOK || !called {
		t.Fatalf("expected anonymous request to pass, got %d", resp.Code)
	}
	if claims != nil {
		t.Fatalf("expected no claims, got %+v", claims)
	}
	if validator.seen != "" {
		t.Fatal("validator should not run without a header")
	}
}

func TestAuthenticateRecordsRefusedToken(t *testing.T) {
	validator := &stubValidator{err: pkgerrors.New(pkgerrors.CodeTokenExpired, "The token has expired.")}
	var claims *pkgAuth.Claims
	var rejected error
	handler := Authenticate(validator, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims = ClaimsFromContext(r.Context())
		rejected = pkgAuth.RejectionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/item", nil)
	req.Header.Set("Authorization", "Bearer stale")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected request to continue, got %d", resp.Code)
	}
	if validator.seen != "stale" {
		t.Fatalf("expected bearer prefix stripped, got %q", validator.seen)
	}
	if claims != nil {
		t.Fatalf("expected no claims, got %+v", claims)
	}
	if !pkgerrors.HasCode(rejected, pkgerrors.CodeTokenExpired) {
		t.Fatalf("expected recorded expiry, got %v", rejected)
	}
}

func TestAuthenticateRecordsEmptyBearer(t *testing.T) {
	var rejected error
	handler := Authenticate(&stubValidator{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rejected = pkgAuth.RejectionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/item", nil)
	req.Header.Set("Authorization", "Bearer ")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected request to continue, got %d", resp.Code)
	}
	if !pkgerrors.HasCode(rejected, pkgerrors.CodeTokenInvalid) {
		t.Fatalf("expected recorded invalid token, got %v", rejected)
	}
}

func TestAuthenticateSeedsClaims(t *testing.T) {
	want := &pkgAuth.Claims{UserID: 7, IsAdmin: true, Type: pkgAuth.TokenTypeAccess}
	handler := Authenticate(&stubValidator{claims: want}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := ClaimsFromContext(r.Context()); got != want {
			t.Fatalf("unexpected claims %+v", got)
		}
		if got := UserIDFromContext(r.Context()); got != "7" {
			t.Fatalf("unexpected user id %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/item", nil)
	req.Header.Set("Authorization", "Bearer good")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
