//go:build !integration

package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAuthManager(t *testing.T) {
	t.Run("should accept a freshly minted bearer token", func(t *testing.T) {
		// --- Arrange ---
		a := NewAuthManager("admin-secret", time.Minute)
		tok, err := a.Mint("ops@wathaci")
		if err != nil {
			t.Fatalf("mint: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)

		// --- Act ---
		claims, err := a.ParseFromRequest(req)

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected valid token, got %v", err)
		}
		if claims.Subject != "ops@wathaci" || claims.Role != roleAdmin {
			t.Errorf("unexpected claims %+v", claims)
		}
	})

	t.Run("should reject missing, foreign and expired tokens", func(t *testing.T) {
		// --- Arrange ---
		a := NewAuthManager("admin-secret", time.Minute)
		other := NewAuthManager("other-secret", time.Minute)
		foreign, _ := other.Mint("x")

		expired := NewAuthManager("admin-secret", time.Minute)
		expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
		stale, _ := expired.Mint("x")

		none := jwt.NewWithClaims(jwt.SigningMethodNone, AdminClaims{Role: roleAdmin})
		unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

		cases := map[string]string{
			"missing":  "",
			"scheme":   "Basic abc",
			"foreign":  "Bearer " + foreign,
			"expired":  "Bearer " + stale,
			"alg none": "Bearer " + unsigned,
		}
		for name, hdr := range cases {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if hdr != "" {
				req.Header.Set("Authorization", hdr)
			}

			// --- Act ---
			_, err := a.ParseFromRequest(req)

			// --- Assert ---
			if err == nil {
				t.Errorf("%s: expected rejection", name)
			}
		}
	})

	t.Run("should refuse to mint without a secret", func(t *testing.T) {
		if _, err := NewAuthManager("", time.Minute).Mint("x"); err == nil {
			t.Error("expected error")
		}
	})
}
