package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/school"
	"github.com/trezcool/gradebook/services/metrics"
	"github.com/trezcool/gradebook/services/spreadsheet"
)

type (
	studentAPI struct {
		svc        *school.StudentService
		translator ut.Translator
	}

	importFailure struct {
		Row         int         `json:"row"`
		StudentCode string      `json:"student_code"`
		Errors      interface{} `json:"errors"`
	}

	importResponse struct {
		Created []school.Student `json:"created"`
		Failed  []importFailure  `json:"failed"`
	}
)

func registerStudentAPI(g *echo.Group, svc *school.StudentService, translator ut.Translator) {
	api := studentAPI{svc: svc, translator: translator}

	sg := g.Group("/students")
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.POST("/import", api.importFile)
	sg.GET("/:id", api.retrieve)
	sg.PATCH("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *studentAPI) create(ctx echo.Context) error {
	var data school.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	std, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

// query filters by class when the classId query param is given.
func (api *studentAPI) query(ctx echo.Context) error {
	classID, filter, err := queryID(ctx, "classId")
	if err != nil {
		return err
	}

	var students []school.Student
	if filter {
		students, err = api.svc.QueryByClass(ctx.Request().Context(), classID)
	} else {
		students, err = api.svc.QueryAll(ctx.Request().Context())
	}
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentAPI) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	std, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentAPI) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}

	std, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentAPI) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// importFile creates the students listed in the uploaded xlsx `file`.
func (api *studentAPI) importFile(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "file", Error: "an xlsx file is required"})
	}
	file, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = file.Close() }()

	records, err := spreadsheet.ReadStudents(file)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "file", Error: err.Error()})
	}

	res, err := api.svc.Import(ctx.Request().Context(), records)
	if err != nil {
		return errors.Wrap(err, "importing students")
	}
	metrics.ObserveImport(res)

	resp := importResponse{
		Created: res.Created,
		Failed:  make([]importFailure, 0, len(res.Failed)),
	}
	for _, f := range res.Failed {
		_, msg, _ := clientError(f.Err, api.translator)
		resp.Failed = append(resp.Failed, importFailure{Row: f.Row, StudentCode: f.Student.StudentCode, Errors: msg})
	}
	return ctx.JSON(http.StatusOK, resp)
}
