package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/aquastaff/pool-reservation/internal/model"
	"github.com/aquastaff/pool-reservation/internal/service"
)

type clientResponse struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Phone               string `json:"phone"`
	TelegramID          *int64 `json:"telegram_id,omitempty"`
	SubscriptionBalance int    `json:"subscription_balance"`
	RegisteredAt        string `json:"registered_at"`
}

func toClientResponse(cl *model.Client) clientResponse {
	return clientResponse{
		ID:                  cl.ID.String(),
		Name:                cl.Name,
		Phone:               cl.Phone,
		TelegramID:          cl.TelegramID,
		SubscriptionBalance: cl.SubscriptionBalance,
		RegisteredAt:        cl.RegisteredAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) listClients(c echo.Context) error {
	clients, err := s.identity.ListClients(c.Request().Context(), staffFromContext(c))
	if err != nil {
		return writeError(c, err)
	}

	resp := make([]clientResponse, 0, len(clients))
	for i := range clients {
		resp = append(resp, toClientResponse(&clients[i]))
	}
	return writePage(c, resp)
}

type registerClientRequest struct {
	Name           string `json:"name" validate:"required"`
	Phone          string `json:"phone"`
	InitialBalance int    `json:"initial_balance" validate:"gte=0"`
}

func (s *Server) registerClient(c echo.Context) error {
	var req registerClientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	// Ручное заведение клиента доступно тем же, кто управляет абонементами.
	if staff := staffFromContext(c); staff == nil || staff.Role == nil || !staff.Role.CanManageUsers {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	client, err := s.identity.RegisterClient(c.Request().Context(), service.RegisterClientInput{
		Name:           req.Name,
		Phone:          req.Phone,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toClientResponse(client))
}

func clientIDParam(c echo.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

type subscriptionLogResponse struct {
	Action    string  `json:"action"`
	Amount    int     `json:"amount"`
	StaffID   *string `json:"staff_id,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func (s *Server) subscriptionHistory(c echo.Context) error {
	clientID, ok := clientIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}

	logs, err := s.subscriptions.History(c.Request().Context(), staffFromContext(c), clientID, 0)
	if err != nil {
		return writeError(c, err)
	}

	resp := make([]subscriptionLogResponse, 0, len(logs))
	for _, l := range logs {
		entry := subscriptionLogResponse{
			Action:    string(l.Action),
			Amount:    l.Amount,
			CreatedAt: l.CreatedAt.UTC().Format(time.RFC3339),
		}
		if l.StaffID != nil {
			id := l.StaffID.String()
			entry.StaffID = &id
		}
		resp = append(resp, entry)
	}
	return c.JSON(http.StatusOK, resp)
}

type subscriptionChangeRequest struct {
	Amount int `json:"amount" validate:"required,gt=0"`
}

func (s *Server) subscriptionAdd(c echo.Context) error {
	return s.subscriptionChange(c, s.subscriptions.Add)
}

func (s *Server) subscriptionSubtract(c echo.Context) error {
	return s.subscriptionChange(c, s.subscriptions.Subtract)
}

func (s *Server) subscriptionChange(
	c echo.Context,
	apply func(ctx context.Context, staff *model.StaffUser, clientID uuid.UUID, amount int) error,
) error {
	clientID, ok := clientIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}

	var req subscriptionChangeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be a positive integer"})
	}

	if err := apply(c.Request().Context(), staffFromContext(c), clientID, req.Amount); err != nil {
		return writeError(c, err)
	}

	client, err := s.identity.GetClient(c.Request().Context(), clientID.String())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toClientResponse(client))
}

type visitResponse struct {
	ID        string  `json:"id"`
	BookingID *string `json:"booking_id,omitempty"`
	VisitedAt string  `json:"visited_at"`
}

func (s *Server) listVisits(c echo.Context) error {
	clientID, ok := clientIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}

	visits, err := s.bookings.ListVisits(c.Request().Context(), staffFromContext(c), clientID, 0)
	if err != nil {
		return writeError(c, err)
	}

	resp := make([]visitResponse, 0, len(visits))
	for _, v := range visits {
		entry := visitResponse{
			ID:        v.ID.String(),
			VisitedAt: v.VisitedAt.UTC().Format(time.RFC3339),
		}
		if v.BookingID != nil {
			id := v.BookingID.String()
			entry.BookingID = &id
		}
		resp = append(resp, entry)
	}
	return c.JSON(http.StatusOK, resp)
}
