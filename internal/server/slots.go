package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aquastaff/pool-reservation/internal/model"
)

type slotResponse struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	TotalSlots     int    `json:"total_slots"`
	AvailableSlots int    `json:"available_slots"`
	Status         string `json:"status"`
	Reason         string `json:"reason,omitempty"`
}

func toSlotResponse(slot *model.DailySlot) slotResponse {
	return slotResponse{
		ID:             slot.ID.String(),
		Date:           time.Time(slot.Date).Format("2006-01-02"),
		TotalSlots:     slot.TotalSlots,
		AvailableSlots: slot.AvailableSlots,
		Status:         string(slot.Status),
		Reason:         slot.Reason,
	}
}

func (s *Server) listSlots(c echo.Context) error {
	slots, err := s.slots.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	resp := make([]slotResponse, 0, len(slots))
	for i := range slots {
		resp = append(resp, toSlotResponse(&slots[i]))
	}
	return writePage(c, resp)
}

type createSlotRequest struct {
	Date     string `json:"date" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,gt=0"`
}

func (s *Server) createSlot(c echo.Context) error {
	var req createSlotRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date and positive capacity are required"})
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be in YYYY-MM-DD format"})
	}

	slot, err := s.slots.Create(c.Request().Context(), staffFromContext(c), date, req.Capacity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toSlotResponse(slot))
}

type closeSlotRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) closeSlot(c echo.Context) error {
	var req closeSlotRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request"})
	}

	if err := s.slots.Close(c.Request().Context(), staffFromContext(c), c.Param("id"), req.Reason); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) deleteSlot(c echo.Context) error {
	if err := s.slots.Delete(c.Request().Context(), staffFromContext(c), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) bootstrapSlots(c echo.Context) error {
	// Досоздание дней делает та же роль, что управляет слотами.
	staff := staffFromContext(c)
	if staff == nil || staff.Role == nil || !staff.Role.CanManageSlots {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	created, err := s.slots.EnsureUpcomingSlots(c.Request().Context(), s.bootstrap.Days, s.bootstrap.Capacity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"created": created})
}
