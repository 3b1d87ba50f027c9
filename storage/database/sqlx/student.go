package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/school"
)

const (
	studentColumns = `s.id, s.student_code, s.name, s.class_id, s.created_at, s.updated_at`

	studentWithClassColumns = studentColumns + `,
		c.id AS "class.id", c.name AS "class.name", c.created_at AS "class.created_at", c.updated_at AS "class.updated_at"`

	selectStudentsWithClass = `SELECT ` + studentWithClassColumns + `
		FROM students s JOIN classes c ON c.id = s.class_id`
)

type studentRow struct {
	ID          int       `db:"id"`
	StudentCode string    `db:"student_code"`
	Name        string    `db:"name"`
	ClassID     int       `db:"class_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	Class       classRow  `db:"class"`
}

func (row studentRow) toDomain() school.Student {
	std := school.Student{
		ID:          row.ID,
		StudentCode: row.StudentCode,
		Name:        row.Name,
		ClassID:     row.ClassID,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	if row.Class.ID != 0 {
		cls := row.Class.toDomain()
		std.Class = &cls
	}
	return std
}

type studentRepository struct {
	db core.DBExecutor
}

var _ school.StudentRepository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db core.DBExecutor) school.StudentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std school.Student) (school.Student, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO students (student_code, name, class_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		std.StudentCode, std.Name, std.ClassID, std.CreatedAt, std.UpdatedAt,
	).Scan(&std.ID)
	if err != nil {
		return school.Student{}, translateError(err, "inserting student", false)
	}
	return std, nil
}

// testsByStudent loads the tests of the given students, grouped by student ID.
func (repo *studentRepository) testsByStudent(ctx context.Context, studentIDs ...int) (map[int][]school.Test, error) {
	grouped := make(map[int][]school.Test, len(studentIDs))
	if len(studentIDs) == 0 {
		return grouped, nil
	}

	query, args, err := sqlx.In(`SELECT `+testColumns+` FROM tests t WHERE t.student_id IN (?) ORDER BY t.id`, studentIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building tests query")
	}
	var rows []testRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "selecting tests")
	}
	for _, row := range rows {
		grouped[row.StudentID] = append(grouped[row.StudentID], row.toDomain())
	}
	return grouped, nil
}

func (repo *studentRepository) query(ctx context.Context, where string, args ...interface{}) ([]school.Student, error) {
	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, selectStudentsWithClass+where+` ORDER BY s.id`, args...); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}

	ids := make([]int, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	tests, err := repo.testsByStudent(ctx, ids...)
	if err != nil {
		return nil, err
	}

	students := make([]school.Student, 0, len(rows))
	for _, row := range rows {
		std := row.toDomain()
		std.Tests = tests[std.ID]
		students = append(students, std)
	}
	return students, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]school.Student, error) {
	return repo.query(ctx, "")
}

func (repo *studentRepository) QueryStudentsByClass(ctx context.Context, classID int) ([]school.Student, error) {
	return repo.query(ctx, ` WHERE s.class_id = $1`, classID)
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (school.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, selectStudentsWithClass+` WHERE s.id = $1`, id); err != nil {
		return school.Student{}, notFoundOr(err, school.ResourceStudent, id, "selecting student")
	}

	tests, err := repo.testsByStudent(ctx, id)
	if err != nil {
		return school.Student{}, err
	}
	std := row.toDomain()
	std.Tests = tests[id]
	return std, nil
}

func (repo *studentRepository) StudentExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM students WHERE id = $1)`, id)
	return exists, errors.Wrap(err, "checking student")
}

func (repo *studentRepository) StudentCodeExists(ctx context.Context, code string, excludeID int) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM students WHERE student_code = $1 AND id <> $2)`, code, excludeID)
	return exists, errors.Wrap(err, "checking student code")
}

func (repo *studentRepository) CountStudentTests(ctx context.Context, id int) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `SELECT count(*) FROM tests WHERE student_id = $1`, id)
	return count, errors.Wrap(err, "counting student tests")
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std school.Student) (school.Student, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE students SET student_code = $1, name = $2, class_id = $3, updated_at = $4 WHERE id = $5`,
		std.StudentCode, std.Name, std.ClassID, std.UpdatedAt, std.ID,
	)
	if err != nil {
		return school.Student{}, translateError(err, "updating student", false)
	}
	if err = checkAffected(res, school.ResourceStudent, std.ID); err != nil {
		return school.Student{}, err
	}
	return std, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return translateError(err, "deleting student", true)
	}
	return checkAffected(res, school.ResourceStudent, id)
}
