package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/school"
	dummydb "github.com/trezcool/gradebook/storage/database/dummy"
)

// Store bundles in-memory repositories sharing one database.
type Store struct {
	DB       *dummydb.DB
	Classes  school.ClassRepository
	Students school.StudentRepository
	Tests    school.TestRepository
}

func NewStore(t *testing.T) *Store {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	return &Store{
		DB:       db,
		Classes:  dummydb.NewClassRepository(db),
		Students: dummydb.NewStudentRepository(db),
		Tests:    dummydb.NewTestRepository(db),
	}
}

// Services bundles the domain services over a Store.
type Services struct {
	Classes  *school.ClassService
	Students *school.StudentService
	Tests    *school.TestService
}

func NewServices(store *Store, validate *validator.Validate) *Services {
	return &Services{
		Classes:  school.NewClassService(store.Classes, validate),
		Students: school.NewStudentService(store.Students, store.Classes, validate),
		Tests:    school.NewTestService(store.Tests, store.Students, validate),
	}
}

func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate, translator
}

func NewConfig() *core.Config {
	return &core.Config{
		AppName:  "Gradebook",
		Env:      "TEST",
		Build:    "test",
		TestMode: true,
		Server: core.ServerConfig{
			Address:         ":0",
			Host:            "localhost",
			ShutdownTimeout: time.Second,
			DisableReqLogs:  true,
		},
		Database: core.DatabaseConfig{Engine: core.EngineMemory},
	}
}

func CreateClass(t *testing.T, repo school.ClassRepository, name string) school.Class {
	t.Helper()
	now := time.Now().UTC()
	cls, err := repo.CreateClass(context.Background(), school.Class{Name: name, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("createClass() failed: %v", err)
	}
	cls, err = repo.GetClassByID(context.Background(), cls.ID)
	if err != nil {
		t.Fatalf("createClass() failed: %v", err)
	}
	return cls
}

func CreateStudent(t *testing.T, repo school.StudentRepository, code, name string, classID int) school.Student {
	t.Helper()
	now := time.Now().UTC()
	std, err := repo.CreateStudent(context.Background(), school.Student{
		StudentCode: code,
		Name:        name,
		ClassID:     classID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	std, err = repo.GetStudentByID(context.Background(), std.ID)
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return std
}

func CreateTest(t *testing.T, repo school.TestRepository, studentID int, score float64, name string, date core.Date) school.Test {
	t.Helper()
	now := time.Now().UTC()
	tst, err := repo.CreateTest(context.Background(), school.Test{
		StudentID: studentID,
		Score:     score,
		TestName:  name,
		TestDate:  date,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createTest() failed: %v", err)
	}
	tst, err = repo.GetTestByID(context.Background(), tst.ID)
	if err != nil {
		t.Fatalf("createTest() failed: %v", err)
	}
	return tst
}
