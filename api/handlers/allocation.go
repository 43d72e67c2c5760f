package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/allocation"
	"github.com/uniteach/monitoria/core/period"
)

type allocationAPI struct {
	service *allocation.Service
}

func RegisterAllocationAPI(g *echo.Group, service *allocation.Service) {
	a := allocationAPI{service: service}

	ag := g.Group("/allocations")
	ag.GET("/summary", a.allocationSummary)
	ag.GET("/projects", a.allocationProjects)
	ag.PUT("", a.allocationBulkUpdate)

	g.PUT("/periods/ceiling", a.ceilingUpdate)
	g.GET("/periods/ceiling", a.ceilingRetrieve)
	g.PUT("/projects/:id/allocation", a.allocationUpdate)
}

// periodParams parses the year and half query parameters common to the
// allocation screens.
func periodParams(c echo.Context) (int, period.Half, error) {
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return 0, "", echo.NewHTTPError(http.StatusBadRequest, "invalid year")
	}
	half := period.Half(c.QueryParam("half"))
	if !half.Valid() {
		return 0, "", echo.NewHTTPError(http.StatusBadRequest, "invalid half")
	}
	return year, half, nil
}

func (api *allocationAPI) allocationSummary(c echo.Context) error {
	year, half, err := periodParams(c)
	if err != nil {
		return err
	}
	summary, err := api.service.Summary(c.Request().Context(), year, half)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

func (api *allocationAPI) allocationProjects(c echo.Context) error {
	year, half, err := periodParams(c)
	if err != nil {
		return err
	}
	projects, err := api.service.ApprovedProjects(c.Request().Context(), year, half)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projects)
}

type allocationUpdateRequest struct {
	Value *int `json:"value" validate:"required,min=0"`
}

func (r *allocationUpdateRequest) Validate() error { return core.Validate.Struct(r) }

func (api *allocationAPI) allocationUpdate(c echo.Context) error {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid project id")
	}

	data := new(allocationUpdateRequest)
	if err := c.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.service.UpdateSingle(c.Request().Context(), projectID, *data.Value); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (api *allocationAPI) allocationBulkUpdate(c echo.Context) error {
	data := new(allocation.BulkUpdate)
	if err := c.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.service.UpdateBulk(c.Request().Context(), data.Values); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type ceilingUpdateRequest struct {
	Year    int         `json:"year" validate:"required,min=2000"`
	Half    period.Half `json:"half" validate:"required,half"`
	Ceiling int         `json:"ceiling" validate:"min=0"`
}

func (r *ceilingUpdateRequest) Validate() error { return core.Validate.Struct(r) }

func (api *allocationAPI) ceilingUpdate(c echo.Context) error {
	data := new(ceilingUpdateRequest)
	if err := c.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.service.SetCeiling(c.Request().Context(), data.Year, data.Half, data.Ceiling); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (api *allocationAPI) ceilingRetrieve(c echo.Context) error {
	year, half, err := periodParams(c)
	if err != nil {
		return err
	}
	ceiling, err := api.service.GetCeiling(c.Request().Context(), year, half)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"year": year, "half": half, "ceiling": ceiling})
}
