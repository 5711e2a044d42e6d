package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

var testSecret = []byte("test-secret")

func TestIssueAndParseToken(t *testing.T) {
	signed, err := IssueToken(testSecret, time.Hour, "user-1", "triyaj", "Nurse Ayse", "nurse")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	claims, err := ParseToken(testSecret, signed)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("expected subject user-1, got %s", claims.Subject)
	}
	if claims.Role != "nurse" {
		t.Errorf("expected role nurse, got %s", claims.Role)
	}
	if claims.Username != "triyaj" {
		t.Errorf("expected username triyaj, got %s", claims.Username)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	signed, _ := IssueToken(testSecret, time.Hour, "user-1", "doctor", "Dr. Mehmet", "doctor")
	if _, err := ParseToken([]byte("other-secret"), signed); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	signed, _ := IssueToken(testSecret, -time.Minute, "user-1", "doctor", "Dr. Mehmet", "doctor")
	if _, err := ParseToken(testSecret, signed); err == nil {
		t.Error("expected error for expired token")
	}
}

func newAuthedContext(t *testing.T, role string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	signed, err := IssueToken(testSecret, time.Hour, "user-1", "u", "U", role)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestJWTMiddleware_SetsContext(t *testing.T) {
	c, _ := newAuthedContext(t, "nurse")

	h := JWTMiddleware(testSecret)(func(c echo.Context) error {
		if UserIDFromContext(c.Request().Context()) != "user-1" {
			t.Error("expected user id on context")
		}
		roles := RolesFromContext(c.Request().Context())
		if len(roles) != 1 || roles[0] != "nurse" {
			t.Errorf("expected [nurse], got %v", roles)
		}
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTMiddleware(testSecret)(func(c echo.Context) error { return nil })
	err := h(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		role    string
		allowed bool
	}{
		{"nurse", true},
		{"doctor", false},
		{"admin", true},
	}
	for _, tc := range cases {
		c, _ := newAuthedContext(t, tc.role)
		chain := JWTMiddleware(testSecret)(RequireRole("nurse")(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		}))
		err := chain(c)
		if tc.allowed && err != nil {
			t.Errorf("role %s: unexpected error: %v", tc.role, err)
		}
		if !tc.allowed {
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusForbidden {
				t.Errorf("role %s: expected 403, got %v", tc.role, err)
			}
		}
	}
}

func TestDevAuthMiddleware_GrantsAdmin(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := DevAuthMiddleware()(RequireRole("doctor")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))
	if err := h(c); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
