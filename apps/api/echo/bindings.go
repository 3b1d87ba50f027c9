package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

// pathID reads the `:id` path parameter. An ID that is not a number matches nothing.
func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, errors.Wrap(errHttpNotFound, "parsing id")
	}
	return id, nil
}

// queryID reads an optional integer query parameter. ok is false if it is absent.
func queryID(ctx echo.Context, name string) (id int, ok bool, err error) {
	val := core.CleanString(ctx.QueryParam(name))
	if val == "" {
		return 0, false, nil
	}
	id, err = strconv.Atoi(val)
	if err != nil {
		return 0, false, core.NewValidationError(err, core.FieldError{Field: name, Error: name + " must be an integer"})
	}
	return id, true, nil
}
