package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/safecity/incident-dashboard/internal/core/domain"
	"github.com/safecity/incident-dashboard/internal/core/ports"
)

// IncidentHandler handles HTTP requests for incident operations.
type IncidentHandler struct {
	service ports.IncidentService
}

func NewIncidentHandler(service ports.IncidentService) *IncidentHandler {
	return &IncidentHandler{service: service}
}

type incidentRequest struct {
	CategoryID  int64   `json:"category_id" validate:"required,gt=0"`
	Description string  `json:"description" validate:"required,max=2000"`
	Location    geoJSON `json:"location"    validate:"required"`
	Status      string  `json:"status"      validate:"omitempty,oneof=reported in_progress resolved"`
}

// toIncidentInput maps the HTTP request to the service DTO.
func toIncidentInput(r incidentRequest) (ports.IncidentInput, error) {
	lng, lat := r.Location.Coordinates[0], r.Location.Coordinates[1]
	if lng < -180 || lng > 180 || lat < -90 || lat > 90 {
		return ports.IncidentInput{}, FieldErrors{
			"location.coordinates": {"The location.coordinates field must be [lng, lat] within WGS84 bounds."},
		}
	}
	return ports.IncidentInput{
		CategoryID:  r.CategoryID,
		Description: r.Description,
		Location:    domain.GeoPoint{Lng: lng, Lat: lat},
		Status:      domain.IncidentStatus(r.Status),
	}, nil
}

func (h *IncidentHandler) bind(c echo.Context) (ports.IncidentInput, error) {
	var req incidentRequest
	if err := c.Bind(&req); err != nil {
		return ports.IncidentInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return ports.IncidentInput{}, err
	}
	return toIncidentInput(req)
}

// ListAll handles GET /incidents. Admin only.
//
// @Summary      List every incident
// @Tags         incidents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  document
// @Failure      403  {object}  ErrorResponse
// @Router       /incidents [get]
func (h *IncidentHandler) ListAll(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	items, err := h.service.ListAll(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toIncidentCollection(items))
}

// ListByUser handles GET /users/:id/incidents.
//
// @Summary      List the incidents reported by a user
// @Tags         incidents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  document
// @Failure      403  {object}  ErrorResponse
// @Router       /users/{id}/incidents [get]
func (h *IncidentHandler) ListByUser(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	userID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.service.ListByReporter(c.Request().Context(), actor, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toIncidentCollection(items))
}

// Get handles GET /incidents/:id.
//
// @Summary      Get an incident
// @Tags         incidents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Incident id"
// @Success      200  {object}  document
// @Failure      404  {object}  ErrorResponse
// @Router       /incidents/{id} [get]
func (h *IncidentHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.service.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, document{Data: toIncidentResource(*detail)})
}

// Create handles POST /incidents.
//
// @Summary      Report an incident
// @Tags         incidents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      incidentRequest  true  "Incident"
// @Success      201   {object}  document
// @Failure      404   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /incidents [post]
func (h *IncidentHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	in, err := h.bind(c)
	if err != nil {
		return err
	}

	detail, err := h.service.Create(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, document{Data: toIncidentResource(*detail)})
}

// Update handles PUT /incidents/:id.
//
// @Summary      Update an incident
// @Description  Replaces category, description and location. Admins may also move the status forward.
// @Tags         incidents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int              true  "Incident id"
// @Param        body  body      incidentRequest  true  "Incident"
// @Success      200   {object}  document
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /incidents/{id} [put]
func (h *IncidentHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	in, err := h.bind(c)
	if err != nil {
		return err
	}

	detail, err := h.service.Update(c.Request().Context(), actor, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, document{Data: toIncidentResource(*detail)})
}

// Delete handles DELETE /incidents/:id.
//
// @Summary      Delete an incident
// @Tags         incidents
// @Security     BearerAuth
// @Param        id   path  int  true  "Incident id"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /incidents/{id} [delete]
func (h *IncidentHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
