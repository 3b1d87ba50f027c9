package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/school"
	"github.com/trezcool/gradebook/services/metrics"
	"github.com/trezcool/gradebook/services/spreadsheet"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type testAPI struct {
	svc *school.TestService
}

func registerTestAPI(g *echo.Group, svc *school.TestService) {
	api := testAPI{svc: svc}

	tg := g.Group("/tests")
	tg.GET("", api.query)
	tg.POST("", api.create)
	tg.GET("/statistics", api.statistics)
	tg.GET("/passed-count", api.passedCount)
	tg.GET("/excellent-count", api.excellentCount)
	tg.GET("/export", api.export)
	tg.GET("/:id", api.retrieve)
	tg.PATCH("/:id", api.update)
	tg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *testAPI) create(ctx echo.Context) error {
	var data school.NewTest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTest")
	}

	tst, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating test")
	}
	metrics.ObserveTest(tst)
	return ctx.JSON(http.StatusCreated, tst)
}

// query filters by student when the studentId query param is given.
func (api *testAPI) query(ctx echo.Context) error {
	studentID, filter, err := queryID(ctx, "studentId")
	if err != nil {
		return err
	}

	var tests []school.Test
	if filter {
		tests, err = api.svc.QueryByStudent(ctx.Request().Context(), studentID)
	} else {
		tests, err = api.svc.QueryAll(ctx.Request().Context())
	}
	if err != nil {
		return errors.Wrap(err, "querying tests")
	}
	return ctx.JSON(http.StatusOK, tests)
}

func (api *testAPI) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	tst, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting test")
	}
	return ctx.JSON(http.StatusOK, tst)
}

func (api *testAPI) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.UpdateTest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTest")
	}

	tst, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating test")
	}
	return ctx.JSON(http.StatusOK, tst)
}

func (api *testAPI) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting test")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *testAPI) statistics(ctx echo.Context) error {
	stats, err := api.svc.Statistics(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing statistics")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *testAPI) passedCount(ctx echo.Context) error {
	count, err := api.svc.PassedCount(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "counting passed tests")
	}
	return ctx.JSON(http.StatusOK, count)
}

func (api *testAPI) excellentCount(ctx echo.Context) error {
	count, err := api.svc.ExcellentCount(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "counting excellent tests")
	}
	return ctx.JSON(http.StatusOK, count)
}

func (api *testAPI) export(ctx echo.Context) error {
	tests, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying tests")
	}

	var buf bytes.Buffer
	if err = spreadsheet.WriteTests(&buf, tests); err != nil {
		return errors.Wrap(err, "exporting tests")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="tests.xlsx"`)
	return ctx.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
}
