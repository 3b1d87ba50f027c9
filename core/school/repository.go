package school

import (
	"context"
)

type (
	ClassRepository interface {
		CreateClass(ctx context.Context, cls Class) (Class, error)
		// QueryAllClasses returns all classes ordered by ID, with their students.
		QueryAllClasses(ctx context.Context) ([]Class, error)
		// GetClassByID returns a *core.NotFoundError if no class has this ID.
		GetClassByID(ctx context.Context, id int) (Class, error)
		ClassExists(ctx context.Context, id int) (bool, error)
		// ClassNameExists ignores the class with ID excludeID (0 ignores none).
		ClassNameExists(ctx context.Context, name string, excludeID int) (bool, error)
		CountClassStudents(ctx context.Context, id int) (int, error)
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		DeleteClass(ctx context.Context, id int) error
	}

	StudentRepository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		// QueryAllStudents returns all students ordered by ID, with their class and tests.
		QueryAllStudents(ctx context.Context) ([]Student, error)
		QueryStudentsByClass(ctx context.Context, classID int) ([]Student, error)
		// GetStudentByID returns a *core.NotFoundError if no student has this ID.
		GetStudentByID(ctx context.Context, id int) (Student, error)
		StudentExists(ctx context.Context, id int) (bool, error)
		// StudentCodeExists ignores the student with ID excludeID (0 ignores none).
		StudentCodeExists(ctx context.Context, code string, excludeID int) (bool, error)
		CountStudentTests(ctx context.Context, id int) (int, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		DeleteStudent(ctx context.Context, id int) error
	}

	TestRepository interface {
		CreateTest(ctx context.Context, tst Test) (Test, error)
		// QueryAllTests returns all tests ordered by ID, with their student and the student's class.
		QueryAllTests(ctx context.Context) ([]Test, error)
		QueryTestsByStudent(ctx context.Context, studentID int) ([]Test, error)
		// GetTestByID returns a *core.NotFoundError if no test has this ID.
		GetTestByID(ctx context.Context, id int) (Test, error)
		UpdateTest(ctx context.Context, tst Test) (Test, error)
		DeleteTest(ctx context.Context, id int) error
		// CountTestsWithMinScore counts tests scoring at least minScore.
		CountTestsWithMinScore(ctx context.Context, minScore float64) (int, error)
		// CountTests reads all counts needed by Statistics at once.
		CountTests(ctx context.Context) (TestCounts, error)
	}
)
