package patient

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/chartgate/chartgate/internal/domain/editrequest"
	"github.com/chartgate/chartgate/internal/platform/auth"
	"github.com/chartgate/chartgate/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	scoped := api.Group("", auth.RequireRole(auth.RoleOperator))
	scoped.POST("/patients", h.Create)
	scoped.GET("/patients", h.List)
	scoped.GET("/patients/:id", h.Get)

	elevated := api.Group("", auth.RequireElevated())
	elevated.PATCH("/patients/:id", h.Update)
	elevated.DELETE("/patients/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no authenticated actor")
	}
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), actor, &p); err != nil {
		return toHTTPError(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	actor, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return toHTTPError(err, http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no authenticated actor")
	}
	p := pagination.FromContext(c)
	patients, total, err := h.svc.List(c.Request().Context(), actor, p.Limit, p.Offset)
	if err != nil {
		return toHTTPError(err, http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, p.Limit, p.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	actor, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}
	var changes editrequest.Changes
	if err := (&echo.DefaultBinder{}).BindBody(c, &changes); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Update(c.Request().Context(), actor, id, changes)
	if err != nil {
		return toHTTPError(err, http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	actor, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), actor, id); err != nil {
		return toHTTPError(err, http.StatusInternalServerError)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) actorAndID(c echo.Context) (auth.Actor, uuid.UUID, error) {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return auth.Actor{}, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "no authenticated actor")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return auth.Actor{}, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return actor, id, nil
}

func toHTTPError(err error, fallback int) error {
	var de *editrequest.Error
	if errors.As(err, &de) {
		return echo.NewHTTPError(de.Status, de.Message)
	}
	return echo.NewHTTPError(fallback, err.Error())
}
