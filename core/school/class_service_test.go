package school_test

import (
	"context"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/school"
	"github.com/trezcool/gradebook/testutil"
)

func setup(t *testing.T) (*testutil.Store, *testutil.Services) {
	store := testutil.NewStore(t)
	validate, _ := testutil.NewValidator()
	return store, testutil.NewServices(store, validate)
}

func TestClassService_Create(t *testing.T) {
	store, svcs := setup(t)
	ctx := context.Background()
	testutil.CreateClass(t, store.Classes, "10A1")

	t.Run("valid", func(t *testing.T) {
		cls, err := svcs.Classes.Create(ctx, school.NewClass{Name: "  10A2 "})
		require.NoError(t, err)
		assert.NotZero(t, cls.ID)
		assert.Equal(t, "10A2", cls.Name)
		assert.False(t, cls.CreatedAt.IsZero())

		got, err := svcs.Classes.GetByID(ctx, cls.ID)
		require.NoError(t, err)
		assert.Equal(t, cls, got)
	})

	tests := []struct {
		name      string
		data      school.NewClass
		wantField string
	}{
		{name: "blank name", data: school.NewClass{Name: "   "}, wantField: "name"},
		{name: "name too long", data: school.NewClass{Name: strings.Repeat("a", 101)}, wantField: "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svcs.Classes.Create(ctx, tt.data)
			var vErrs validator.ValidationErrors
			require.True(t, errors.As(err, &vErrs), "got %v", err)
			assert.Equal(t, tt.wantField, vErrs[0].Field())
		})
	}

	t.Run("duplicate name", func(t *testing.T) {
		_, err := svcs.Classes.Create(ctx, school.NewClass{Name: " 10A1"})
		dupErr, ok := errors.Cause(err).(*core.DuplicateKeyError)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, "name", dupErr.Field)
	})
}

func TestClassService_QueryAll(t *testing.T) {
	store, svcs := setup(t)
	ctx := context.Background()

	classes, err := svcs.Classes.QueryAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, classes)

	cls1 := testutil.CreateClass(t, store.Classes, "10A1")
	cls2 := testutil.CreateClass(t, store.Classes, "10A2")
	std := testutil.CreateStudent(t, store.Students, "HS001", "Nguyen Van A", cls2.ID)

	classes, err = svcs.Classes.QueryAll(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, cls1.ID, classes[0].ID)
	assert.Empty(t, classes[0].Students)
	require.Len(t, classes[1].Students, 1)
	assert.Equal(t, std.ID, classes[1].Students[0].ID)
}

func TestClassService_Update(t *testing.T) {
	store, svcs := setup(t)
	ctx := context.Background()
	cls := testutil.CreateClass(t, store.Classes, "10A1")
	testutil.CreateClass(t, store.Classes, "10A2")

	t.Run("no fields", func(t *testing.T) {
		got, err := svcs.Classes.Update(ctx, cls.ID, school.UpdateClass{})
		require.NoError(t, err)
		assert.Equal(t, "10A1", got.Name)
	})

	t.Run("same name", func(t *testing.T) {
		_, err := svcs.Classes.Update(ctx, cls.ID, school.UpdateClass{Name: null.StringFrom("10A1")})
		assert.NoError(t, err)
	})

	t.Run("rename", func(t *testing.T) {
		got, err := svcs.Classes.Update(ctx, cls.ID, school.UpdateClass{Name: null.StringFrom("11B1")})
		require.NoError(t, err)
		assert.Equal(t, "11B1", got.Name)
		assert.True(t, !got.UpdatedAt.Before(cls.UpdatedAt))
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := svcs.Classes.Update(ctx, cls.ID, school.UpdateClass{Name: null.StringFrom("")})
		assert.IsType(t, validator.ValidationErrors{}, errors.Cause(err))
	})

	t.Run("taken name", func(t *testing.T) {
		_, err := svcs.Classes.Update(ctx, cls.ID, school.UpdateClass{Name: null.StringFrom("10A2")})
		assert.IsType(t, &core.DuplicateKeyError{}, errors.Cause(err))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svcs.Classes.Update(ctx, 999, school.UpdateClass{Name: null.StringFrom("X")})
		assert.True(t, core.IsNotFound(err))
	})
}

func TestClassService_Delete(t *testing.T) {
	store, svcs := setup(t)
	ctx := context.Background()
	empty := testutil.CreateClass(t, store.Classes, "10A1")
	full := testutil.CreateClass(t, store.Classes, "10A2")
	testutil.CreateStudent(t, store.Students, "HS001", "Nguyen Van A", full.ID)

	t.Run("not found", func(t *testing.T) {
		err := svcs.Classes.Delete(ctx, 999)
		assert.True(t, core.IsNotFound(err))
	})

	t.Run("with students is rejected", func(t *testing.T) {
		err := svcs.Classes.Delete(ctx, full.ID)
		fkErr, ok := errors.Cause(err).(*core.ForeignKeyError)
		require.True(t, ok, "got %v", err)
		assert.Empty(t, fkErr.Field)

		// consistently
		err = svcs.Classes.Delete(ctx, full.ID)
		assert.IsType(t, &core.ForeignKeyError{}, errors.Cause(err))
		_, err = svcs.Classes.GetByID(ctx, full.ID)
		assert.NoError(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		require.NoError(t, svcs.Classes.Delete(ctx, empty.ID))
		_, err := svcs.Classes.GetByID(ctx, empty.ID)
		assert.True(t, core.IsNotFound(err))
	})
}
