package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/uniteach/monitoria/core/application"
	"github.com/uniteach/monitoria/core/position"
	"github.com/uniteach/monitoria/core/student"
)

type studentAPI struct {
	service      *student.Service
	applications *application.Service
	positions    *position.Issuer
}

func RegisterStudentAPI(g *echo.Group, service *student.Service, applications *application.Service, positions *position.Issuer) {
	a := studentAPI{service: service, applications: applications, positions: positions}

	sg := g.Group("/students/:id")
	sg.GET("", a.studentRetrieve)
	sg.PUT("/banking", a.studentUpdateBanking)
	sg.GET("/applications", a.studentApplications)
	sg.GET("/positions", a.studentPositions)
}

func (api *studentAPI) studentRetrieve(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	stu, err := api.service.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stu)
}

func (api *studentAPI) studentUpdateBanking(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	data := new(student.BankingDetails)
	if err := c.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	stu, err := api.service.UpdateBankingDetails(c.Request().Context(), id, *data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stu)
}

func (api *studentAPI) studentApplications(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	apps, err := api.applications.ByStudent(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apps)
}

func (api *studentAPI) studentPositions(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	positions, err := api.positions.ByStudent(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, positions)
}
