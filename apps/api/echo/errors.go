package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

var errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

// clientError maps the errors caused by a request to a status code and a response message.
// ok is false for any other error.
func clientError(err error, translator ut.Translator) (code int, message interface{}, ok bool) {
	switch origErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		fldErrs := make(map[string]string, len(origErr))
		for _, vErr := range origErr {
			fldErrs[vErr.Field()] = vErr.Translate(translator)
		}
		return http.StatusBadRequest, fldErrs, true
	case *core.ValidationError:
		if origErr.Fields != nil {
			fldErrs := make(map[string]string, len(origErr.Fields))
			for _, fErr := range origErr.Fields {
				fldErrs[fErr.Field] = fErr.Error
			}
			return http.StatusBadRequest, fldErrs, true
		}
		return http.StatusBadRequest, origErr.Error(), true
	case *core.NotFoundError:
		return http.StatusNotFound, origErr.Error(), true
	case *core.DuplicateKeyError:
		return http.StatusConflict, map[string]string{origErr.Field: origErr.Error()}, true
	case *core.ForeignKeyError:
		// an unresolved reference is a bad field, a blocked delete is a conflict
		if origErr.Field != "" {
			return http.StatusBadRequest, map[string]string{origErr.Field: origErr.Error()}, true
		}
		return http.StatusConflict, origErr.Error(), true
	}
	return 0, nil, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		if herr, ok := errors.Cause(err).(*echo.HTTPError); ok {
			if herr.Internal != nil {
				if internal, ok := herr.Internal.(*echo.HTTPError); ok {
					herr = internal
				}
			}
			code = herr.Code
			message = herr.Message
		} else if c, m, ok := clientError(err, translator); ok {
			code, message = c, m
		} else { // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			logger.Error(msg, errors.Wrap(err, msg), map[string]interface{}{
				"request_id": ctx.Response().Header().Get(echo.HeaderXRequestID),
				"path":       ctx.Path(),
			})

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
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
