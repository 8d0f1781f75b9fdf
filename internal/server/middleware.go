package server

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/aquastaff/pool-reservation/internal/model"
)

const staffContextKey = "staff"

// jwtAuth проверяет Bearer-токен и кладёт сотрудника вместе с ролью
// в контекст запроса под ключом staff.
func (s *Server) jwtAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
		}
		raw := strings.TrimPrefix(auth, "Bearer ")

		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, echo.ErrUnauthorized
			}
			return []byte(s.jwtSecret), nil
		})
		if err != nil || !tok.Valid {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
		}
		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
		}

		staff, err := s.identity.GetStaff(c.Request().Context(), sub)
		if err != nil || !staff.IsActive {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown or inactive account"})
		}

		c.Set(staffContextKey, staff)
		return next(c)
	}
}

func staffFromContext(c echo.Context) *model.StaffUser {
	staff, _ := c.Get(staffContextKey).(*model.StaffUser)
	return staff
}
