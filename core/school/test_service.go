package school

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

type TestService struct {
	repo     TestRepository
	students StudentRepository
	validate *validator.Validate
}

func NewTestService(repo TestRepository, students StudentRepository, validate *validator.Validate) *TestService {
	return &TestService{repo: repo, students: students, validate: validate}
}

// check validates nt and returns its parsed date.
func (svc *TestService) check(ctx context.Context, nt NewTest) (core.Date, error) {
	if err := svc.validate.StructCtx(ctx, nt); err != nil {
		return core.Date{}, err
	}
	date, err := core.ParseDate(nt.TestDate)
	if err != nil {
		return core.Date{}, core.NewValidationError(err, core.FieldError{Field: "test_date", Error: err.Error()})
	}

	exists, err := svc.students.StudentExists(ctx, nt.StudentID)
	if err != nil {
		return core.Date{}, errors.Wrap(err, "checking student")
	}
	if !exists {
		return core.Date{}, core.NewForeignKeyError("student_id", core.NewNotFoundError(ResourceStudent, nt.StudentID))
	}
	return date, nil
}

func (svc *TestService) Create(ctx context.Context, nt NewTest) (Test, error) {
	nt.Clean()
	date, err := svc.check(ctx, nt)
	if err != nil {
		return Test{}, err
	}

	now := time.Now().UTC()
	tst, err := svc.repo.CreateTest(ctx, Test{
		StudentID: nt.StudentID,
		Score:     *nt.Score,
		TestName:  nt.TestName,
		TestDate:  date,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Test{}, errors.Wrap(err, "creating test")
	}
	return svc.GetByID(ctx, tst.ID)
}

func (svc *TestService) QueryAll(ctx context.Context) ([]Test, error) {
	return svc.repo.QueryAllTests(ctx)
}

func (svc *TestService) QueryByStudent(ctx context.Context, studentID int) ([]Test, error) {
	return svc.repo.QueryTestsByStudent(ctx, studentID)
}

func (svc *TestService) GetByID(ctx context.Context, id int) (Test, error) {
	return svc.repo.GetTestByID(ctx, id)
}

func (svc *TestService) Update(ctx context.Context, id int, ut UpdateTest) (Test, error) {
	tst, err := svc.repo.GetTestByID(ctx, id)
	if err != nil {
		return Test{}, err
	}

	nt := ut.merge(tst)
	date, err := svc.check(ctx, nt)
	if err != nil {
		return Test{}, err
	}

	tst.StudentID = nt.StudentID
	tst.Score = *nt.Score
	tst.TestName = nt.TestName
	tst.TestDate = date
	tst.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateTest(ctx, tst); err != nil {
		return Test{}, errors.Wrap(err, "updating test")
	}
	return svc.GetByID(ctx, id)
}

func (svc *TestService) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetTestByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteTest(ctx, id)
}

// PassedCount counts the tests scoring at least PassScore.
func (svc *TestService) PassedCount(ctx context.Context) (int, error) {
	return svc.repo.CountTestsWithMinScore(ctx, PassScore)
}

// ExcellentCount counts the tests scoring at least ExcellentScore.
func (svc *TestService) ExcellentCount(ctx context.Context) (int, error) {
	return svc.repo.CountTestsWithMinScore(ctx, ExcellentScore)
}

func (svc *TestService) Statistics(ctx context.Context) (Statistics, error) {
	counts, err := svc.repo.CountTests(ctx)
	if err != nil {
		return Statistics{}, errors.Wrap(err, "counting tests")
	}
	return ComputeStatistics(counts), nil
}
