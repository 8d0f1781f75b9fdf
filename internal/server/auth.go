package server

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token    string `json:"token"`
	StaffID  string `json:"staff_id"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	staff, err := s.identity.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   staff.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, loginResponse{
		Token:    token,
		StaffID:  staff.ID.String(),
		FullName: staff.FullName,
		Role:     staff.Role.Name,
	})
}
