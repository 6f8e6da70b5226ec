package editrequest

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

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
	// Submission – scoped actors for their own organization's records;
	// the service re-checks ownership.
	api.POST("/edit-requests", h.Submit, auth.RequireRole(auth.RoleOperator))

	// Review surface – superadmin only. The service re-checks, the
	// middleware just fails early.
	review := api.Group("/edit-requests", auth.RequireElevated())
	review.GET("", h.ListPending)
	review.GET("/count", h.CountPending)
	review.GET("/:id", h.Get)
	review.GET("/:id/diff", h.Diff)
	review.POST("/:id/approve", h.Approve)
	review.POST("/:id/reject", h.Reject)
}

type submitRequest struct {
	TargetRecordID  uuid.UUID `json:"target_record_id"`
	ProposedChanges Changes   `json:"proposed_changes"`
}

func (h *Handler) Submit(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no authenticated actor")
	}
	var body submitRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.TargetRecordID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "target_record_id is required")
	}
	req, err := h.svc.Submit(c.Request().Context(), actor, body.TargetRecordID, body.ProposedChanges)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, req)
}

func (h *Handler) ListPending(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no authenticated actor")
	}
	p := pagination.FromContext(c)
	reqs, total, err := h.svc.ListPending(c.Request().Context(), actor, p.Limit, p.Offset)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(reqs, total, p.Limit, p.Offset))
}

func (h *Handler) CountPending(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no authenticated actor")
	}
	count, err := h.svc.CountPending(c.Request().Context(), actor)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"pending": count})
}

func (h *Handler) Get(c echo.Context) error {
	actor, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}
	req, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) Diff(c echo.Context) error {
	actor, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}
	changes, err := h.svc.Diff(c.Request().Context(), actor, id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"changes": changes})
}

func (h *Handler) Approve(c echo.Context) error {
	return h.resolve(c, DecisionApprove)
}

func (h *Handler) Reject(c echo.Context) error {
	return h.resolve(c, DecisionReject)
}

func (h *Handler) resolve(c echo.Context, decision Decision) error {
	actor, id, err := h.actorAndID(c)
	if err != nil {
		return err
	}
	req, err := h.svc.Resolve(c.Request().Context(), actor, id, decision)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, req)
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

// toHTTPError maps domain error kinds onto HTTP statuses.
func toHTTPError(err error) error {
	var de *Error
	if errors.As(err, &de) {
		return echo.NewHTTPError(de.Status, de.Message)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
