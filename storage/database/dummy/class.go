package dummydb

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/school"
)

type classRepository struct {
	db *DB
}

var _ school.ClassRepository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) school.ClassRepository {
	return &classRepository{db: db}
}

func (repo *classRepository) nameTaken(name string, excludeID int) bool {
	for _, cls := range repo.db.classes {
		if cls.Name == name && cls.ID != excludeID {
			return true
		}
	}
	return false
}

func (repo *classRepository) CreateClass(_ context.Context, cls school.Class) (school.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.nameTaken(cls.Name, 0) {
		return school.Class{}, core.NewDuplicateKeyError(school.ResourceClass, "name", cls.Name)
	}
	cls.ID = repo.db.nextPK("classes")
	cls.Students = nil
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *classRepository) QueryAllClasses(context.Context) ([]school.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]school.Class, 0, len(repo.db.classes))
	for _, cls := range repo.db.classes {
		classes = append(classes, repo.db.withStudents(*cls))
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

func (repo *classRepository) GetClassByID(_ context.Context, id int) (school.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cls, ok := repo.db.classRow(id); ok {
		return repo.db.withStudents(cls), nil
	}
	return school.Class{}, core.NewNotFoundError(school.ResourceClass, id)
}

func (repo *classRepository) ClassExists(_ context.Context, id int) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	_, ok := repo.db.classes[id]
	return ok, nil
}

func (repo *classRepository) ClassNameExists(_ context.Context, name string, excludeID int) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.nameTaken(name, excludeID), nil
}

func (repo *classRepository) CountClassStudents(_ context.Context, id int) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, std := range repo.db.students {
		if std.ClassID == id {
			count++
		}
	}
	return count, nil
}

func (repo *classRepository) UpdateClass(_ context.Context, cls school.Class) (school.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.classes[cls.ID]
	if !ok {
		return school.Class{}, core.NewNotFoundError(school.ResourceClass, cls.ID)
	}
	if repo.nameTaken(cls.Name, cls.ID) {
		return school.Class{}, core.NewDuplicateKeyError(school.ResourceClass, "name", cls.Name)
	}
	stored.Name = cls.Name
	stored.UpdatedAt = cls.UpdatedAt
	return *stored, nil
}

func (repo *classRepository) DeleteClass(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.classes[id]; !ok {
		return core.NewNotFoundError(school.ResourceClass, id)
	}
	for _, std := range repo.db.students {
		if std.ClassID == id {
			return core.NewForeignKeyError("", errors.Errorf("class %d is still referenced by students", id))
		}
	}
	delete(repo.db.classes, id)
	return nil
}
