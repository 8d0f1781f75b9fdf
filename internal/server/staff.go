package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aquastaff/pool-reservation/internal/model"
	"github.com/aquastaff/pool-reservation/internal/service"
)

type staffResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

func toStaffResponse(u *model.StaffUser) staffResponse {
	resp := staffResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		IsActive: u.IsActive,
	}
	if u.Role != nil {
		resp.Role = u.Role.Name
	}
	return resp
}

func (s *Server) listStaff(c echo.Context) error {
	users, err := s.identity.ListStaff(c.Request().Context(), staffFromContext(c))
	if err != nil {
		return writeError(c, err)
	}

	resp := make([]staffResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toStaffResponse(&users[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

type createStaffRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name"`
	RoleID   int64  `json:"role_id" validate:"required"`
}

func (s *Server) createStaff(c echo.Context) error {
	var req createStaffRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	staff, err := s.identity.CreateStaff(c.Request().Context(), staffFromContext(c), service.CreateStaffInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		RoleID:   req.RoleID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toStaffResponse(staff))
}

func (s *Server) deactivateStaff(c echo.Context) error {
	if err := s.identity.DeactivateStaff(c.Request().Context(), staffFromContext(c), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type roleResponse struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	CanManageUsers   bool   `json:"can_manage_users"`
	CanManageSlots   bool   `json:"can_manage_slots"`
	CanConfirmVisits bool   `json:"can_confirm_visits"`
}

func (s *Server) listRoles(c echo.Context) error {
	roles, err := s.identity.ListRoles(c.Request().Context(), staffFromContext(c))
	if err != nil {
		return writeError(c, err)
	}

	resp := make([]roleResponse, 0, len(roles))
	for _, r := range roles {
		resp = append(resp, roleResponse{
			ID:               r.ID,
			Name:             r.Name,
			Description:      r.Description,
			CanManageUsers:   r.CanManageUsers,
			CanManageSlots:   r.CanManageSlots,
			CanConfirmVisits: r.CanConfirmVisits,
		})
	}
	return c.JSON(http.StatusOK, resp)
}
