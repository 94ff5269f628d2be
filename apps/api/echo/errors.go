package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/juku/core"
	"github.com/trezcool/juku/core/school"
	"github.com/trezcool/juku/core/student"
	"github.com/trezcool/juku/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// errorPayload is the error response body: {errors: [{code, field?, message}]}
type errorPayload struct {
	Errors []core.FieldError `json:"errors"`
}

func newErrorPayload(errs []core.FieldError) errorPayload {
	return errorPayload{Errors: errs}
}

// newAppHTTPErrorHandler returns an echo.HTTPErrorHandler that maps the
// app's error kinds to statuses: InvalidInput 400, NotFound 404, Conflict
// 409, Validation 422. Anything unclassified is an opaque 500.
// signalShutdown is called to bring the server down when a core.Shutdown
// error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = echo.Map{"error": origErr.Message}
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = echo.Map{"error": origErr.Message}
		case core.InvalidInputError:
			code = http.StatusBadRequest
			message = newErrorPayload(origErr.Errors)
		case core.NotFoundError:
			code = http.StatusNotFound
			message = newErrorPayload(origErr.Errors)
		case core.ConflictError:
			code = http.StatusConflict
			message = newErrorPayload(origErr.Errors)
		case core.ValidationError:
			code = http.StatusUnprocessableEntity
			message = newErrorPayload(origErr.Errors)
		case core.ForbiddenError:
			code = http.StatusForbidden
			message = echo.Map{"error": origErr.Message}
		case validator.ValidationErrors:
			verr := core.TranslateValidatorErrors(origErr)
			if vErr, ok := core.IsValidationError(verr); ok {
				code = http.StatusUnprocessableEntity
				message = newErrorPayload(vErr.Errors)
				break
			}
			code = http.StatusBadRequest
			message = echo.Map{"error": origErr.Error()}
		default:
			switch origErr {
			case user.ErrNotFound, student.ErrNotFound, school.ErrNotFound,
				student.ErrTraitNotFound, student.ErrNoteNotFound:
				code = http.StatusNotFound
				message = echo.Map{"error": origErr.Error()}
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = echo.Map{"error": msg}

				var usr user.User
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					usr.ID = claims.Subject
					usr.Name = claims.Name
					usr.Email = claims.Email
				}
				logger.Error(msg, errors.Wrap(err, msg), usr)

				// shutting down...
				if core.IsShutdownError(err) {
					signalShutdown()
				}
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead {
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
