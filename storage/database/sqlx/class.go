package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/school"
)

const classColumns = `c.id, c.name, c.created_at, c.updated_at`

type classRow struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row classRow) toDomain() school.Class {
	return school.Class{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type classRepository struct {
	db core.DBExecutor
}

var _ school.ClassRepository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db core.DBExecutor) school.ClassRepository {
	return &classRepository{db: db}
}

func (repo *classRepository) CreateClass(ctx context.Context, cls school.Class) (school.Class, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO classes (name, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id`,
		cls.Name, cls.CreatedAt, cls.UpdatedAt,
	).Scan(&cls.ID)
	if err != nil {
		return school.Class{}, translateError(err, "inserting class", false)
	}
	return cls, nil
}

// studentsByClass loads the students of the given classes, grouped by class ID.
func (repo *classRepository) studentsByClass(ctx context.Context, classIDs ...int) (map[int][]school.Student, error) {
	grouped := make(map[int][]school.Student, len(classIDs))
	if len(classIDs) == 0 {
		return grouped, nil
	}

	query, args, err := sqlx.In(`SELECT `+studentColumns+` FROM students s WHERE s.class_id IN (?) ORDER BY s.id`, classIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building students query")
	}
	var rows []studentRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	for _, row := range rows {
		grouped[row.ClassID] = append(grouped[row.ClassID], row.toDomain())
	}
	return grouped, nil
}

func (repo *classRepository) QueryAllClasses(ctx context.Context) ([]school.Class, error) {
	var rows []classRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+classColumns+` FROM classes c ORDER BY c.id`); err != nil {
		return nil, errors.Wrap(err, "selecting classes")
	}

	ids := make([]int, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	students, err := repo.studentsByClass(ctx, ids...)
	if err != nil {
		return nil, err
	}

	classes := make([]school.Class, 0, len(rows))
	for _, row := range rows {
		cls := row.toDomain()
		cls.Students = students[cls.ID]
		classes = append(classes, cls)
	}
	return classes, nil
}

func (repo *classRepository) GetClassByID(ctx context.Context, id int) (school.Class, error) {
	var row classRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+classColumns+` FROM classes c WHERE c.id = $1`, id); err != nil {
		return school.Class{}, notFoundOr(err, school.ResourceClass, id, "selecting class")
	}

	students, err := repo.studentsByClass(ctx, id)
	if err != nil {
		return school.Class{}, err
	}
	cls := row.toDomain()
	cls.Students = students[id]
	return cls, nil
}

func (repo *classRepository) ClassExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM classes WHERE id = $1)`, id)
	return exists, errors.Wrap(err, "checking class")
}

func (repo *classRepository) ClassNameExists(ctx context.Context, name string, excludeID int) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM classes WHERE name = $1 AND id <> $2)`, name, excludeID)
	return exists, errors.Wrap(err, "checking class name")
}

func (repo *classRepository) CountClassStudents(ctx context.Context, id int) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `SELECT count(*) FROM students WHERE class_id = $1`, id)
	return count, errors.Wrap(err, "counting class students")
}

func (repo *classRepository) UpdateClass(ctx context.Context, cls school.Class) (school.Class, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE classes SET name = $1, updated_at = $2 WHERE id = $3`,
		cls.Name, cls.UpdatedAt, cls.ID,
	)
	if err != nil {
		return school.Class{}, translateError(err, "updating class", false)
	}
	if err = checkAffected(res, school.ResourceClass, cls.ID); err != nil {
		return school.Class{}, err
	}
	return cls, nil
}

func (repo *classRepository) DeleteClass(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return translateError(err, "deleting class", true)
	}
	return checkAffected(res, school.ResourceClass, id)
}
