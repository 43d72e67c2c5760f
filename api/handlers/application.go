package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/application"
	"github.com/uniteach/monitoria/core/position"
)

type applicationAPI struct {
	service *application.Service
	issuer  *position.Issuer
}

func RegisterApplicationAPI(g *echo.Group, service *application.Service, issuer *position.Issuer) {
	a := applicationAPI{service: service, issuer: issuer}

	ag := g.Group("/applications")
	ag.POST("", a.applicationApply)
	ag.PUT("/:id/grade", a.applicationGrade)
	ag.PUT("/:id/select", a.applicationSelect)
	ag.POST("/:id/accept", a.applicationAccept)
	ag.POST("/:id/reject", a.applicationReject)

	g.GET("/projects/:id/candidates", a.projectCandidates)
	g.PUT("/positions/:id/finalize", a.positionFinalize)
}

func pathID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (api *applicationAPI) applicationApply(c echo.Context) error {
	data := new(application.NewApplication)
	if err := c.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	app, err := api.service.Apply(c.Request().Context(), *data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, app)
}

func (api *applicationAPI) applicationGrade(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	data := new(application.GradeInput)
	if err := c.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	app, err := api.service.Grade(c.Request().Context(), id, *data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, app)
}

type selectRequest struct {
	Kind application.Kind `json:"kind" validate:"required,oneof=SCHOLARSHIP VOLUNTEER"`
}

func (r *selectRequest) Validate() error { return core.Validate.Struct(r) }

func (api *applicationAPI) applicationSelect(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	data := new(selectRequest)
	if err := c.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	app, err := api.service.Select(c.Request().Context(), id, data.Kind)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, app)
}

type decisionRequest struct {
	StudentID int    `json:"student_id" validate:"required"`
	Reason    string `json:"reason"`
}

func (r *decisionRequest) Validate() error { return core.Validate.Struct(r) }

func (api *applicationAPI) applicationAccept(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	data := new(decisionRequest)
	if err := c.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	pos, err := api.issuer.Accept(c.Request().Context(), id, data.StudentID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, pos)
}

func (api *applicationAPI) applicationReject(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	data := new(decisionRequest)
	if err := c.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.issuer.Reject(c.Request().Context(), id, data.StudentID, data.Reason); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (api *applicationAPI) projectCandidates(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	candidates, err := api.service.Candidates(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, candidates)
}

type finalizeRequest struct {
	EndDate time.Time `json:"end_date" validate:"required"`
}

func (r *finalizeRequest) Validate() error { return core.Validate.Struct(r) }

func (api *applicationAPI) positionFinalize(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	data := new(finalizeRequest)
	if err := c.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	pos, err := api.issuer.Finalize(c.Request().Context(), id, data.EndDate)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pos)
}
