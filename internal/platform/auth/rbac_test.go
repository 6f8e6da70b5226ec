package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func contextWithActor(e *echo.Echo, actor Actor) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithActor(req.Context(), actor))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequireRole_Allowed(t *testing.T) {
	e := echo.New()
	c, rec := contextWithActor(e, Actor{ID: "u1", Role: RoleOperator, OrganizationID: uuid.New()})

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	h := RequireRole(RoleOperator)(handler)
	if err := h(c); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_SuperadminBypass(t *testing.T) {
	e := echo.New()
	c, _ := contextWithActor(e, Actor{ID: "admin", Role: RoleSuperadmin})

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	h := RequireRole(RoleOperator)(handler)
	if err := h(c); err != nil {
		t.Errorf("expected superadmin to pass, got %v", err)
	}
}

func TestRequireElevated_DeniesOperator(t *testing.T) {
	e := echo.New()
	c, _ := contextWithActor(e, Actor{ID: "u1", Role: RoleOperator, OrganizationID: uuid.New()})

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	h := RequireElevated()(handler)
	err := h(c)
	if err == nil {
		t.Fatal("expected error for operator on elevated route")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
}

func TestRequireRole_NoActor(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	err := RequireRole(RoleOperator)(handler)(c)
	if err == nil {
		t.Fatal("expected error when no actor on context")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", httpErr.Code)
	}
}
