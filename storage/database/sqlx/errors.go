package sqlxrepos

import (
	"database/sql"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/school"
)

// Postgres error codes
const (
	foreignKeyViolation = pq.ErrorCode("23503")
	uniqueViolation     = pq.ErrorCode("23505")
	checkViolation      = pq.ErrorCode("23514")
)

type constraint struct {
	resource string
	field    string
}

// constraints maps the constraint names of the migrations to the API fields they guard.
var constraints = map[string]constraint{
	"classes_name_key":          {school.ResourceClass, "name"},
	"students_student_code_key": {school.ResourceStudent, "student_code"},
	"students_class_id_fkey":    {school.ResourceStudent, "class_id"},
	"tests_student_id_fkey":     {school.ResourceTest, "student_id"},
	"tests_score_check":         {school.ResourceTest, "score"},
}

// translateError turns constraint violations into core errors and wraps anything else with msg.
// A foreign key violation raised by a delete means the row is still referenced.
func translateError(err error, msg string, deleting bool) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return errors.Wrap(err, msg)
	}

	cons := constraints[pqErr.Constraint]
	switch pqErr.Code {
	case uniqueViolation:
		return core.NewDuplicateKeyError(cons.resource, fieldOr(cons.field, pqErr.Column), "")
	case foreignKeyViolation:
		if deleting {
			return core.NewForeignKeyError("", errors.New(pqErr.Message))
		}
		return core.NewForeignKeyError(fieldOr(cons.field, pqErr.Column), errors.New(pqErr.Message))
	case checkViolation:
		field := fieldOr(cons.field, pqErr.Column)
		return core.NewValidationError(nil, core.FieldError{Field: field, Error: strings.TrimSpace(pqErr.Message)})
	}
	return errors.Wrap(err, msg)
}

func fieldOr(field, fallback string) string {
	if field != "" {
		return field
	}
	return fallback
}

// checkAffected returns a *core.NotFoundError if the statement did not touch any row.
func checkAffected(res sql.Result, resource string, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading affected rows")
	}
	if n == 0 {
		return core.NewNotFoundError(resource, id)
	}
	return nil
}

// notFoundOr maps sql.ErrNoRows to a *core.NotFoundError.
func notFoundOr(err error, resource string, id int, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.NewNotFoundError(resource, id)
	}
	return errors.Wrap(err, msg)
}
