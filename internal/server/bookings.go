package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/aquastaff/pool-reservation/internal/model"
)

type bookingResponse struct {
	ID         string `json:"id"`
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name,omitempty"`
	SlotID     string `json:"slot_id"`
	SlotDate   string `json:"slot_date,omitempty"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

func toBookingResponse(b *model.Booking) bookingResponse {
	resp := bookingResponse{
		ID:        b.ID.String(),
		ClientID:  b.ClientID.String(),
		SlotID:    b.SlotID.String(),
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if b.Client != nil {
		resp.ClientName = b.Client.Name
	}
	if b.Slot != nil {
		resp.SlotDate = time.Time(b.Slot.Date).Format("2006-01-02")
	}
	return resp
}

func (s *Server) listBookings(c echo.Context) error {
	bookings, err := s.bookings.ListActive(c.Request().Context(), staffFromContext(c))
	if err != nil {
		return writeError(c, err)
	}

	resp := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, toBookingResponse(&bookings[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

type createBookingRequest struct {
	ClientID string `json:"client_id" validate:"required,uuid4"`
	SlotID   string `json:"slot_id" validate:"required,uuid4"`
}

// createBooking создаёт бронирование от имени клиента (запись по телефону).
func (s *Server) createBooking(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_id and slot_id must be valid ids"})
	}

	staff := staffFromContext(c)
	if staff == nil || staff.Role == nil || !staff.Role.CanConfirmVisits {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	clientID, _ := uuid.Parse(req.ClientID)
	slotID, _ := uuid.Parse(req.SlotID)

	booking, err := s.bookings.Create(c.Request().Context(), clientID, slotID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingResponse(booking))
}

func (s *Server) confirmBooking(c echo.Context) error {
	if err := s.bookings.Confirm(c.Request().Context(), staffFromContext(c), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) cancelBooking(c echo.Context) error {
	if err := s.bookings.CancelByStaff(c.Request().Context(), staffFromContext(c), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) completeVisit(c echo.Context) error {
	visit, err := s.bookings.CompleteVisit(c.Request().Context(), staffFromContext(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"visit_id":   visit.ID.String(),
		"visited_at": visit.VisitedAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) cancelVisit(c echo.Context) error {
	if err := s.bookings.CancelVisit(c.Request().Context(), staffFromContext(c), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
