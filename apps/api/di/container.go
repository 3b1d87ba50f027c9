package di

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/gradebook/apps/api/echo"
	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/school"
	logsvc "github.com/trezcool/gradebook/services/logger"
	"github.com/trezcool/gradebook/storage/database"
	dummydb "github.com/trezcool/gradebook/storage/database/dummy"
	sqlxrepos "github.com/trezcool/gradebook/storage/database/sqlx"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Repositories are backed by Postgres, or by memory when conf.Database.Engine is "memory".
	// DB is nil in the latter case.
	Repositories struct {
		dig.Out
		DB       *sqlx.DB
		Classes  school.ClassRepository
		Students school.StudentRepository
		Tests    school.TestRepository
	}

	ServerParams struct {
		dig.In
		Conf       *core.Config
		Logger     core.Logger
		ClassSvc   *school.ClassService
		StudentSvc *school.StudentService
		TestSvc    *school.TestService
		Translator ut.Translator
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

// SetUpDB creates the database if needed, then opens and migrates it.
func SetUpDB(ctx context.Context, conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newRepositories(conf *core.Config, loggerParam DBLoggerParam) Repositories {
	if conf.Database.Engine == core.EngineMemory {
		mem, _ := dummydb.Open()
		loggerParam.Logger.Info("using the in-memory store, data will not be persisted")
		return Repositories{
			Classes:  dummydb.NewClassRepository(mem),
			Students: dummydb.NewStudentRepository(mem),
			Tests:    dummydb.NewTestRepository(mem),
		}
	}

	db, err := SetUpDB(context.Background(), conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return Repositories{
		DB:       db,
		Classes:  sqlxrepos.NewClassRepository(db),
		Students: sqlxrepos.NewStudentRepository(db),
		Tests:    sqlxrepos.NewTestRepository(db),
	}
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		ClassSvc:   p.ClassSvc,
		StudentSvc: p.StudentSvc,
		TestSvc:    p.TestSvc,
		Translator: p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(newTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(school.NewClassService))
	must(c.Provide(school.NewStudentService))
	must(c.Provide(school.NewTestService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
