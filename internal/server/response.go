package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aquastaff/pool-reservation/internal/paging"
	"github.com/aquastaff/pool-reservation/internal/service"
)

// writeError транслирует класс бизнес-ошибки в HTTP-код.
// Непредвиденные ошибки наружу не детализируются.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrStateConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

type pageResponse[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Total    int  `json:"total"`
	HasNext  bool `json:"has_next"`
	HasPrev  bool `json:"has_prev"`
}

// writePage отдаёт список постранично. Номер и размер страницы берутся из
// query-параметров page и page_size; без них отдаётся первая страница
// с размером по умолчанию.
func writePage[T any](c echo.Context, items []T) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("page_size"))

	p := paging.Paginate(items, page, size)
	return c.JSON(http.StatusOK, pageResponse[T]{
		Items:    p.Items,
		Page:     p.Page,
		PageSize: p.PageSize,
		Total:    p.Total,
		HasNext:  p.HasNext,
		HasPrev:  p.HasPrev,
	})
}
