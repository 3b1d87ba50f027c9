package dummydb

import (
	"context"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/school"
)

type testRepository struct {
	db *DB
}

var _ school.TestRepository = (*testRepository)(nil) // interface compliance check

func NewTestRepository(db *DB) school.TestRepository {
	return &testRepository{db: db}
}

func (repo *testRepository) checkConstraints(tst school.Test) error {
	if _, ok := repo.db.students[tst.StudentID]; !ok {
		return core.NewForeignKeyError("student_id", core.NewNotFoundError(school.ResourceStudent, tst.StudentID))
	}
	if tst.Score < school.MinScore || tst.Score > school.MaxScore {
		return core.NewValidationError(nil, core.FieldError{Field: "score", Error: "score must be between 0 and 10"})
	}
	return nil
}

func (repo *testRepository) CreateTest(_ context.Context, tst school.Test) (school.Test, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if err := repo.checkConstraints(tst); err != nil {
		return school.Test{}, err
	}
	tst.ID = repo.db.nextPK("tests")
	tst.Score = school.RoundScore(tst.Score)
	tst.Student = nil
	repo.db.tests[tst.ID] = &tst
	return tst, nil
}

func (repo *testRepository) query(match func(school.Test) bool) []school.Test {
	tests := repo.db.testRows(match)
	for i := range tests {
		tests[i] = repo.db.withStudent(tests[i])
	}
	return tests
}

func (repo *testRepository) QueryAllTests(context.Context) ([]school.Test, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(school.Test) bool { return true }), nil
}

func (repo *testRepository) QueryTestsByStudent(_ context.Context, studentID int) ([]school.Test, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(tst school.Test) bool { return tst.StudentID == studentID }), nil
}

func (repo *testRepository) GetTestByID(_ context.Context, id int) (school.Test, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tst, ok := repo.db.tests[id]; ok {
		return repo.db.withStudent(*tst), nil
	}
	return school.Test{}, core.NewNotFoundError(school.ResourceTest, id)
}

func (repo *testRepository) UpdateTest(_ context.Context, tst school.Test) (school.Test, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.tests[tst.ID]
	if !ok {
		return school.Test{}, core.NewNotFoundError(school.ResourceTest, tst.ID)
	}
	if err := repo.checkConstraints(tst); err != nil {
		return school.Test{}, err
	}
	stored.StudentID = tst.StudentID
	stored.Score = school.RoundScore(tst.Score)
	stored.TestName = tst.TestName
	stored.TestDate = tst.TestDate
	stored.UpdatedAt = tst.UpdatedAt
	return *stored, nil
}

func (repo *testRepository) DeleteTest(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.tests[id]; !ok {
		return core.NewNotFoundError(school.ResourceTest, id)
	}
	delete(repo.db.tests, id)
	return nil
}

func (repo *testRepository) CountTestsWithMinScore(_ context.Context, minScore float64) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, tst := range repo.db.tests {
		if tst.Score >= minScore {
			count++
		}
	}
	return count, nil
}

func (repo *testRepository) CountTests(context.Context) (school.TestCounts, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var counts school.TestCounts
	for _, tst := range repo.db.tests {
		counts.Total++
		if tst.IsPassed() {
			counts.Passed++
		}
		if tst.IsExcellent() {
			counts.Excellent++
		}
	}
	return counts, nil
}
