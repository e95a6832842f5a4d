package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func requestWithRole(t *testing.T, role string, required ...string) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ctx := ContextWithSession(req.Context(), Session{UserID: "u1", Role: role, IsActive: true})
	c.SetRequest(req.WithContext(ctx))

	handler := RequireRole(required...)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return handler(c)
}

func TestRequireRole_Matches(t *testing.T) {
	if err := requestWithRole(t, RoleDoctor, RoleDoctor); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRequireRole_AdminBypass(t *testing.T) {
	if err := requestWithRole(t, RoleAdmin, RoleDoctor); err != nil {
		t.Errorf("expected admin to pass doctor check, got %v", err)
	}
}

func TestRequireRole_Denied(t *testing.T) {
	err := requestWithRole(t, RoleDispenser, RoleDoctor)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestRequireRole_AnyOf(t *testing.T) {
	if err := requestWithRole(t, RoleDispenser, RoleAdmin, RoleDispenser); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
