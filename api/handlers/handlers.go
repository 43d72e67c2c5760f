package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/uniteach/monitoria/api/helpers"
	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/allocation"
	"github.com/uniteach/monitoria/core/application"
	"github.com/uniteach/monitoria/core/period"
	"github.com/uniteach/monitoria/core/position"
	"github.com/uniteach/monitoria/core/student"
)

type appValidator struct {
	validate *validator.Validate
}

func (v appValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// Services groups the domain services the API depends on.
type Services struct {
	Period      *period.Service
	Student     *student.Service
	Application *application.Service
	Allocation  *allocation.Service
	Position    *position.Issuer
	Logger      core.Logger
}

func API(e *echo.Echo, svcs Services, disableReqLogs bool, signalShutdown func()) {
	e.Pre(middleware.RemoveTrailingSlash())
	if !disableReqLogs {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))

	e.Validator = &appValidator{validate: core.Validate}
	e.HTTPErrorHandler = helpers.NewHTTPErrorHandler(svcs.Logger, signalShutdown)

	e.GET("/", home)

	v1 := e.Group("/v1")
	RegisterPeriodAPI(v1, svcs.Period)
	RegisterAllocationAPI(v1, svcs.Allocation)
	RegisterApplicationAPI(v1, svcs.Application, svcs.Position)
	RegisterStudentAPI(v1, svcs.Student, svcs.Application, svcs.Position)
}

func home(c echo.Context) error {
	return c.String(http.StatusOK, "Welcome to the Monitoria API!")
}
