package patient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/auth"
)

func setupHandler() (*echo.Echo, *mockRepo) {
	e := echo.New()
	repo := newMockRepo()
	h := NewHandler(NewService(repo))
	api := e.Group("/api/v1")
	api.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := auth.ContextWithSession(c.Request().Context(), auth.Session{
				UserID: "test-user", Role: auth.RoleDoctor, IsActive: true,
			})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	h.RegisterRoutes(api)
	return e, repo
}

func TestHandlerRegisterPatient(t *testing.T) {
	e, _ := setupHandler()

	body := `{"firstName":"Asha","lastName":"Verma","contactNumber":"9876543210",
		"age":34,"gender":"female","address":"12 MG Road","allergies":["penicillin"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Message string  `json:"message"`
		Patient Patient `json:"patient"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Patient.FirstName != "Asha" {
		t.Errorf("firstName = %q", resp.Patient.FirstName)
	}
}

func TestHandlerRegisterPatientInvalid(t *testing.T) {
	e, _ := setupHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients",
		strings.NewReader(`{"firstName":"Asha"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerListWithQuery(t *testing.T) {
	e, repo := setupHandler()
	repo.Create(context.Background(), &Patient{
		FirstName: "Asha", LastName: "Verma", ContactNumber: "9876543210"})
	repo.Create(context.Background(), &Patient{
		FirstName: "Ravi", LastName: "Sharma", ContactNumber: "9123456780"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients?query=verma", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var items []Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 1 || items[0].LastName != "Verma" {
		t.Errorf("items = %+v", items)
	}
}

func TestHandlerListPaginated(t *testing.T) {
	e, repo := setupHandler()
	repo.Create(context.Background(), &Patient{
		FirstName: "Asha", LastName: "Verma", ContactNumber: "1"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Total   int  `json:"total"`
		HasMore bool `json:"hasMore"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("total = %d, want 1", resp.Total)
	}
}

func TestHandlerGetPatientNotFound(t *testing.T) {
	e, _ := setupHandler()

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/patients/6a5c5054-9a25-45c2-8e5e-0c4b5a9f0e11", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
