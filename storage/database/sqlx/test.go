package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/school"
)

const (
	testColumns = `t.id, t.student_id, t.score, t.test_name, t.test_date, t.created_at, t.updated_at`

	// is_passed is generated by the store and never read back: Test.IsPassed derives it.
	selectTestsWithStudent = `SELECT ` + testColumns + `,
		s.id AS "student.id", s.student_code AS "student.student_code", s.name AS "student.name",
		s.class_id AS "student.class_id", s.created_at AS "student.created_at", s.updated_at AS "student.updated_at",
		c.id AS "student.class.id", c.name AS "student.class.name",
		c.created_at AS "student.class.created_at", c.updated_at AS "student.class.updated_at"
		FROM tests t
		JOIN students s ON s.id = t.student_id
		JOIN classes c ON c.id = s.class_id`
)

type testRow struct {
	ID        int        `db:"id"`
	StudentID int        `db:"student_id"`
	Score     float64    `db:"score"`
	TestName  string     `db:"test_name"`
	TestDate  core.Date  `db:"test_date"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	Student   studentRow `db:"student"`
}

func (row testRow) toDomain() school.Test {
	tst := school.Test{
		ID:        row.ID,
		StudentID: row.StudentID,
		Score:     row.Score,
		TestName:  row.TestName,
		TestDate:  row.TestDate,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if row.Student.ID != 0 {
		std := row.Student.toDomain()
		tst.Student = &std
	}
	return tst
}

type testRepository struct {
	db core.DBExecutor
}

var _ school.TestRepository = (*testRepository)(nil) // interface compliance check

func NewTestRepository(db core.DBExecutor) school.TestRepository {
	return &testRepository{db: db}
}

func (repo *testRepository) CreateTest(ctx context.Context, tst school.Test) (school.Test, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO tests (student_id, score, test_name, test_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		tst.StudentID, tst.Score, tst.TestName, tst.TestDate, tst.CreatedAt, tst.UpdatedAt,
	).Scan(&tst.ID)
	if err != nil {
		return school.Test{}, translateError(err, "inserting test", false)
	}
	return tst, nil
}

func (repo *testRepository) query(ctx context.Context, where string, args ...interface{}) ([]school.Test, error) {
	var rows []testRow
	if err := repo.db.SelectContext(ctx, &rows, selectTestsWithStudent+where+` ORDER BY t.id`, args...); err != nil {
		return nil, errors.Wrap(err, "selecting tests")
	}

	tests := make([]school.Test, 0, len(rows))
	for _, row := range rows {
		tests = append(tests, row.toDomain())
	}
	return tests, nil
}

func (repo *testRepository) QueryAllTests(ctx context.Context) ([]school.Test, error) {
	return repo.query(ctx, "")
}

func (repo *testRepository) QueryTestsByStudent(ctx context.Context, studentID int) ([]school.Test, error) {
	return repo.query(ctx, ` WHERE t.student_id = $1`, studentID)
}

func (repo *testRepository) GetTestByID(ctx context.Context, id int) (school.Test, error) {
	var row testRow
	if err := repo.db.GetContext(ctx, &row, selectTestsWithStudent+` WHERE t.id = $1`, id); err != nil {
		return school.Test{}, notFoundOr(err, school.ResourceTest, id, "selecting test")
	}
	return row.toDomain(), nil
}

func (repo *testRepository) UpdateTest(ctx context.Context, tst school.Test) (school.Test, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE tests SET student_id = $1, score = $2, test_name = $3, test_date = $4, updated_at = $5 WHERE id = $6`,
		tst.StudentID, tst.Score, tst.TestName, tst.TestDate, tst.UpdatedAt, tst.ID,
	)
	if err != nil {
		return school.Test{}, translateError(err, "updating test", false)
	}
	if err = checkAffected(res, school.ResourceTest, tst.ID); err != nil {
		return school.Test{}, err
	}
	return tst, nil
}

func (repo *testRepository) DeleteTest(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM tests WHERE id = $1`, id)
	if err != nil {
		return translateError(err, "deleting test", true)
	}
	return checkAffected(res, school.ResourceTest, id)
}

func (repo *testRepository) CountTestsWithMinScore(ctx context.Context, minScore float64) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `SELECT count(*) FROM tests WHERE score >= $1`, minScore)
	return count, errors.Wrap(err, "counting tests")
}

func (repo *testRepository) CountTests(ctx context.Context) (school.TestCounts, error) {
	var counts school.TestCounts
	err := repo.db.GetContext(ctx, &counts,
		`SELECT count(*) AS total,
			count(*) FILTER (WHERE is_passed) AS passed,
			count(*) FILTER (WHERE score >= $1) AS excellent
		FROM tests`,
		school.ExcellentScore,
	)
	return counts, errors.Wrap(err, "counting tests")
}
