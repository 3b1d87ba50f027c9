package school

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

type ClassService struct {
	repo     ClassRepository
	validate *validator.Validate
}

func NewClassService(repo ClassRepository, validate *validator.Validate) *ClassService {
	return &ClassService{repo: repo, validate: validate}
}

func (svc *ClassService) checkUniqueness(ctx context.Context, name string, excludeID int) error {
	exists, err := svc.repo.ClassNameExists(ctx, name, excludeID)
	if err != nil {
		return errors.Wrap(err, "checking class name")
	}
	if exists {
		return core.NewDuplicateKeyError(ResourceClass, "name", name)
	}
	return nil
}

func (svc *ClassService) Create(ctx context.Context, nc NewClass) (Class, error) {
	nc.Clean()
	if err := svc.validate.StructCtx(ctx, nc); err != nil {
		return Class{}, err
	}
	if err := svc.checkUniqueness(ctx, nc.Name, 0); err != nil {
		return Class{}, err
	}

	now := time.Now().UTC()
	cls, err := svc.repo.CreateClass(ctx, Class{
		Name:      nc.Name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Class{}, errors.Wrap(err, "creating class")
	}
	return svc.GetByID(ctx, cls.ID)
}

func (svc *ClassService) QueryAll(ctx context.Context) ([]Class, error) {
	return svc.repo.QueryAllClasses(ctx)
}

func (svc *ClassService) GetByID(ctx context.Context, id int) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *ClassService) Update(ctx context.Context, id int, uc UpdateClass) (Class, error) {
	cls, err := svc.repo.GetClassByID(ctx, id)
	if err != nil {
		return Class{}, err
	}

	nc := uc.merge(cls)
	if err = svc.validate.StructCtx(ctx, nc); err != nil {
		return Class{}, err
	}
	if err = svc.checkUniqueness(ctx, nc.Name, id); err != nil {
		return Class{}, err
	}

	cls.Name = nc.Name
	cls.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateClass(ctx, cls); err != nil {
		return Class{}, errors.Wrap(err, "updating class")
	}
	return svc.GetByID(ctx, id)
}

// Delete refuses to delete a class that still has students.
func (svc *ClassService) Delete(ctx context.Context, id int) error {
	exists, err := svc.repo.ClassExists(ctx, id)
	if err != nil {
		return errors.Wrap(err, "checking class")
	}
	if !exists {
		return core.NewNotFoundError(ResourceClass, id)
	}

	count, err := svc.repo.CountClassStudents(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting class students")
	}
	if count > 0 {
		return core.NewForeignKeyError("", errors.Errorf("class %d still has %d student(s)", id, count))
	}
	return svc.repo.DeleteClass(ctx, id)
}
