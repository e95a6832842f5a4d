package prescription

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor, auth.RoleDispenser))
	readGroup.GET("/prescriptions/:id", h.Get)
	readGroup.GET("/prescriptions/frequencies", h.Frequencies)

	writeGroup := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor))
	writeGroup.POST("/prescriptions", h.Create)
}

func (h *Handler) Create(c echo.Context) error {
	var p Prescription
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &p); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) || errors.Is(err, ErrEmptyPrescription) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":      "Prescription saved successfully",
		"prescription": p,
	})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "prescription not found")
	}
	return c.JSON(http.StatusOK, p)
}

// Frequencies serves the dosing schedule options the form offers.
func (h *Handler) Frequencies(c echo.Context) error {
	type option struct {
		Code  Frequency `json:"code"`
		Label string    `json:"label"`
	}
	opts := make([]option, 0, len(Frequencies))
	for _, f := range Frequencies {
		opts = append(opts, option{Code: f, Label: f.Label()})
	}
	return c.JSON(http.StatusOK, opts)
}
