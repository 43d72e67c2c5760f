package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/uniteach/monitoria/core/period"
)

type periodAPI struct {
	service *period.Service
}

func RegisterPeriodAPI(g *echo.Group, service *period.Service) {
	a := periodAPI{service: service}

	pg := g.Group("/periods")
	pg.POST("", a.periodCreate)
	pg.GET("", a.periodQuery)
}

func (api *periodAPI) periodCreate(c echo.Context) error {
	data := new(period.NewPeriod)
	if err := c.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	per, err := api.service.Create(c.Request().Context(), *data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, per)
}

func (api *periodAPI) periodQuery(c echo.Context) error {
	var year int
	if y := c.QueryParam("year"); y != "" {
		var err error
		if year, err = strconv.Atoi(y); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid year")
		}
	}

	periods, err := api.service.Query(c.Request().Context(), year)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, periods)
}
