package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestMiddlewareWithNoopVerifier(t *testing.T) {
	verifier, err := NewVerifier(Config{Mode: ModeNoop})
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}

	var seen string
	h := Middleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFromContext(r.Context())
		seen = user.UserID
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{name: "bearer", header: "Bearer user_123", want: http.StatusNoContent},
		{name: "lowercase scheme", header: "bearer user_123", want: http.StatusNoContent},
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "basic", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer   ", want: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
			if tc.want == http.StatusNoContent && seen != "user_123" {
				t.Fatalf("expected user_123 on context, got %q", seen)
			}
		})
	}
}

func TestNewVerifierRejectsUnknownMode(t *testing.T) {
	if _, err := NewVerifier(Config{Mode: "saml"}); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	if _, err := NewVerifier(Config{Mode: ModeClerk}); err == nil {
		t.Fatalf("expected error for clerk without JWKS URL")
	}
}

func TestUserFromClaims(t *testing.T) {
	exp := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user_123",
		"sid": "sess_1",
		"exp": float64(exp.Unix()),
	})
	user, err := userFromClaims(tok, "raw")
	if err != nil {
		t.Fatalf("claims: %v", err)
	}
	if user.UserID != "user_123" || user.SessionID != "sess_1" || user.ExpiresAt != exp.Unix() || user.Token != "raw" {
		t.Fatalf("unexpected user %+v", user)
	}

	tok = jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sid": "sess_1"})
	if _, err := userFromClaims(tok, "raw"); err != errMissingSubject {
		t.Fatalf("expected errMissingSubject, got %v", err)
	}
}
