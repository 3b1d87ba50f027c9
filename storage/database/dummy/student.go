package dummydb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/school"
)

type studentRepository struct {
	db *DB
}

var _ school.StudentRepository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) school.StudentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) codeTaken(code string, excludeID int) bool {
	for _, std := range repo.db.students {
		if std.StudentCode == code && std.ID != excludeID {
			return true
		}
	}
	return false
}

// checkConstraints mimics the unique and foreign key constraints of the students table.
func (repo *studentRepository) checkConstraints(std school.Student) error {
	if repo.codeTaken(std.StudentCode, std.ID) {
		return core.NewDuplicateKeyError(school.ResourceStudent, "student_code", std.StudentCode)
	}
	if _, ok := repo.db.classes[std.ClassID]; !ok {
		return core.NewForeignKeyError("class_id", core.NewNotFoundError(school.ResourceClass, std.ClassID))
	}
	return nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, std school.Student) (school.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	std.ID = 0
	if err := repo.checkConstraints(std); err != nil {
		return school.Student{}, err
	}
	std.ID = repo.db.nextPK("students")
	std.Class, std.Tests = nil, nil
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) query(match func(school.Student) bool) []school.Student {
	students := repo.db.studentRows(match)
	for i := range students {
		students[i] = repo.db.withClassAndTests(students[i])
	}
	return students
}

func (repo *studentRepository) QueryAllStudents(context.Context) ([]school.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(school.Student) bool { return true }), nil
}

func (repo *studentRepository) QueryStudentsByClass(_ context.Context, classID int) ([]school.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(std school.Student) bool { return std.ClassID == classID }), nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id int) (school.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return repo.db.withClassAndTests(*std), nil
	}
	return school.Student{}, core.NewNotFoundError(school.ResourceStudent, id)
}

func (repo *studentRepository) StudentExists(_ context.Context, id int) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	_, ok := repo.db.students[id]
	return ok, nil
}

func (repo *studentRepository) StudentCodeExists(_ context.Context, code string, excludeID int) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.codeTaken(code, excludeID), nil
}

func (repo *studentRepository) CountStudentTests(_ context.Context, id int) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, tst := range repo.db.tests {
		if tst.StudentID == id {
			count++
		}
	}
	return count, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, std school.Student) (school.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.students[std.ID]
	if !ok {
		return school.Student{}, core.NewNotFoundError(school.ResourceStudent, std.ID)
	}
	if err := repo.checkConstraints(std); err != nil {
		return school.Student{}, err
	}
	stored.StudentCode = std.StudentCode
	stored.Name = std.Name
	stored.ClassID = std.ClassID
	stored.UpdatedAt = std.UpdatedAt
	return *stored, nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.students[id]; !ok {
		return core.NewNotFoundError(school.ResourceStudent, id)
	}
	for _, tst := range repo.db.tests {
		if tst.StudentID == id {
			return core.NewForeignKeyError("", errors.Errorf("student %d is still referenced by tests", id))
		}
	}
	delete(repo.db.students, id)
	return nil
}
