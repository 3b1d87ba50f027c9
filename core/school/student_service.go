package school

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

type StudentService struct {
	repo     StudentRepository
	classes  ClassRepository
	validate *validator.Validate
}

func NewStudentService(repo StudentRepository, classes ClassRepository, validate *validator.Validate) *StudentService {
	return &StudentService{repo: repo, classes: classes, validate: validate}
}

func (svc *StudentService) check(ctx context.Context, ns NewStudent, excludeID int) error {
	if err := svc.validate.StructCtx(ctx, ns); err != nil {
		return err
	}

	exists, err := svc.repo.StudentCodeExists(ctx, ns.StudentCode, excludeID)
	if err != nil {
		return errors.Wrap(err, "checking student code")
	}
	if exists {
		return core.NewDuplicateKeyError(ResourceStudent, "student_code", ns.StudentCode)
	}

	exists, err = svc.classes.ClassExists(ctx, ns.ClassID)
	if err != nil {
		return errors.Wrap(err, "checking class")
	}
	if !exists {
		return core.NewForeignKeyError("class_id", core.NewNotFoundError(ResourceClass, ns.ClassID))
	}
	return nil
}

func (svc *StudentService) Create(ctx context.Context, ns NewStudent) (Student, error) {
	ns.Clean()
	if err := svc.check(ctx, ns, 0); err != nil {
		return Student{}, err
	}

	now := time.Now().UTC()
	std, err := svc.repo.CreateStudent(ctx, Student{
		StudentCode: ns.StudentCode,
		Name:        ns.Name,
		ClassID:     ns.ClassID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return Student{}, errors.Wrap(err, "creating student")
	}
	return svc.GetByID(ctx, std.ID)
}

func (svc *StudentService) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

// QueryByClass returns an empty list when nothing matches, even if the class does not exist.
func (svc *StudentService) QueryByClass(ctx context.Context, classID int) ([]Student, error) {
	return svc.repo.QueryStudentsByClass(ctx, classID)
}

func (svc *StudentService) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *StudentService) Update(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}

	ns := us.merge(std)
	if err = svc.check(ctx, ns, id); err != nil {
		return Student{}, err
	}

	std.StudentCode = ns.StudentCode
	std.Name = ns.Name
	std.ClassID = ns.ClassID
	std.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateStudent(ctx, std); err != nil {
		return Student{}, errors.Wrap(err, "updating student")
	}
	return svc.GetByID(ctx, id)
}

// Delete refuses to delete a student that still has tests.
func (svc *StudentService) Delete(ctx context.Context, id int) error {
	exists, err := svc.repo.StudentExists(ctx, id)
	if err != nil {
		return errors.Wrap(err, "checking student")
	}
	if !exists {
		return core.NewNotFoundError(ResourceStudent, id)
	}

	count, err := svc.repo.CountStudentTests(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting student tests")
	}
	if count > 0 {
		return core.NewForeignKeyError("", errors.Errorf("student %d still has %d test(s)", id, count))
	}
	return svc.repo.DeleteStudent(ctx, id)
}

type (
	ImportFailure struct {
		Row     int // 1-based position in the imported records
		Student NewStudent
		Err     error
	}

	ImportResult struct {
		Created []Student
		Failed  []ImportFailure
	}
)

// IsRejection reports whether err is a client error (invalid input or a broken constraint),
// as opposed to a failure of the store.
func IsRejection(err error) bool {
	switch errors.Cause(err).(type) {
	case validator.ValidationErrors, *core.ValidationError, *core.NotFoundError,
		*core.DuplicateKeyError, *core.ForeignKeyError:
		return true
	}
	return false
}

// Import creates the students in order. Rejected records are skipped and reported,
// any other failure stops the import.
func (svc *StudentService) Import(ctx context.Context, records []NewStudent) (ImportResult, error) {
	res := ImportResult{
		Created: make([]Student, 0, len(records)),
	}
	for i, ns := range records {
		std, err := svc.Create(ctx, ns)
		if err != nil {
			if !IsRejection(err) {
				return res, errors.Wrapf(err, "importing student %d", i+1)
			}
			res.Failed = append(res.Failed, ImportFailure{Row: i + 1, Student: ns, Err: err})
			continue
		}
		res.Created = append(res.Created, std)
	}
	return res, nil
}
