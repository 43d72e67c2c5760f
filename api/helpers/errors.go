package helpers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	pkgerrors "github.com/pkg/errors"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/allocation"
	"github.com/uniteach/monitoria/core/application"
	"github.com/uniteach/monitoria/core/period"
	"github.com/uniteach/monitoria/core/position"
	"github.com/uniteach/monitoria/core/project"
	"github.com/uniteach/monitoria/core/student"
)

var (
	ForbiddenHTTPErr = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	NotFoundHTTPErr  = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// NewHTTPErrorHandler translates domain errors to HTTP responses so handlers
// can return service errors as-is. signalShutdown is called when an error
// indicates the service can no longer run with integrity.
func NewHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var code int
		var message interface{}

		switch cause := pkgerrors.Cause(err).(type) {
		case *echo.HTTPError:
			if cause.Internal != nil {
				if herr, ok := cause.Internal.(*echo.HTTPError); ok {
					cause = herr
				}
			}
			code = cause.Code
			message = cause.Message

		case validator.ValidationErrors:
			fldErrs := make(map[string]string)
			for _, vErr := range cause {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs

		case *core.ValidationError:
			if len(cause.Fields) > 0 {
				fldErrs := make(map[string]string)
				for _, fErr := range cause.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = cause.Error()
			}
			code = http.StatusBadRequest

		case *application.StateError:
			code = http.StatusConflict
			message = cause.Error()

		case *position.ScholarshipHeldError:
			code = http.StatusConflict
			message = cause.Error()

		case *allocation.QuotaError:
			code = http.StatusUnprocessableEntity
			message = echo.Map{"error": cause.Error(), "excess": cause.Excess}

		case *allocation.MissingPeriodError, *allocation.MissingCeilingError:
			code = http.StatusUnprocessableEntity
			message = cause.Error()

		default:
			code, message = mapSentinel(pkgerrors.Cause(err))
			if code == http.StatusInternalServerError {
				message = http.StatusText(code)
				logger.Error("server error", err, "path", c.Path())

				// shutting down...
				if core.IsShutdown(err) && signalShutdown != nil {
					signalShutdown()
				}
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead { // Issue #608
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, message)
			}
			if err != nil {
				logger.Error("writing error response", err)
			}
		}
	}
}

func mapSentinel(err error) (int, interface{}) {
	switch err {
	case period.ErrNotFound, project.ErrNotFound, student.ErrNotFound,
		application.ErrNotFound, position.ErrNotFound, allocation.ErrProjectsNotFound:
		return http.StatusNotFound, err.Error()
	case position.ErrNotOwner:
		return http.StatusForbidden, err.Error()
	case period.ErrExists, application.ErrDuplicate,
		position.ErrAlreadyAccepted, position.ErrAlreadyFinalized:
		return http.StatusConflict, err.Error()
	case application.ErrPeriodClosed, application.ErrNoScholarshipOpenings,
		application.ErrNoVolunteerOpenings, allocation.ErrMissingValue:
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, nil
}
