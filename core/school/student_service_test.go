package school_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/school"
	"github.com/trezcool/gradebook/testutil"
)

func TestStudentService_Create(t *testing.T) {
	store, svcs := setup(t)
	ctx := context.Background()
	cls := testutil.CreateClass(t, store.Classes, "10A1")
	testutil.CreateStudent(t, store.Students, "HS001", "Nguyen Van A", cls.ID)

	t.Run("valid", func(t *testing.T) {
		std, err := svcs.Students.Create(ctx, school.NewStudent{StudentCode: " HS002 ", Name: "Tran Thi B", ClassID: cls.ID})
		require.NoError(t, err)
		assert.Equal(t, "HS002", std.StudentCode)
		require.NotNil(t, std.Class)
		assert.Equal(t, cls.Name, std.Class.Name)
		assert.Empty(t, std.Tests)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := svcs.Students.Create(ctx, school.NewStudent{StudentCode: "HS0000000000000000003", Name: "", ClassID: 0})
		var vErrs validator.ValidationErrors
		require.True(t, errors.As(err, &vErrs), "got %v", err)

		fields := make([]string, 0, len(vErrs))
		for _, vErr := range vErrs {
			fields = append(fields, vErr.Field())
		}
		assert.ElementsMatch(t, []string{"student_code", "name", "class_id"}, fields)
	})

	t.Run("duplicate code", func(t *testing.T) {
		_, err := svcs.Students.Create(ctx, school.NewStudent{StudentCode: "HS001", Name: "Other", ClassID: cls.ID})
		dupErr, ok := errors.Cause(err).(*core.DuplicateKeyError)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, "student_code", dupErr.Field)
	})

	t.Run("missing class", func(t *testing.T) {
		_, err := svcs.Students.Create(ctx, school.NewStudent{StudentCode: "HS009", Name: "Le Van C", ClassID: 999})
		fkErr, ok := errors.Cause(err).(*core.ForeignKeyError)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, "class_id", fkErr.Field)
	})
}

func TestStudentService_Update(t *testing.T) {
	store, svcs := setup(t)
	ctx := context.Background()
	cls1 := testutil.CreateClass(t, store.Classes, "10A1")
	cls2 := testutil.CreateClass(t, store.Classes, "10A2")
	std := testutil.CreateStudent(t, store.Students, "HS001", "Nguyen Van A", cls1.ID)
	testutil.CreateStudent(t, store.Students, "HS002", "Tran Thi B", cls1.ID)

	t.Run("move to missing class", func(t *testing.T) {
		_, err := svcs.Students.Update(ctx, std.ID, school.UpdateStudent{ClassID: null.IntFrom(999)})
		fkErr, ok := errors.Cause(err).(*core.ForeignKeyError)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, "class_id", fkErr.Field)

		// not written
		got, err := svcs.Students.GetByID(ctx, std.ID)
		require.NoError(t, err)
		assert.Equal(t, cls1.ID, got.ClassID)
	})

	t.Run("taken code", func(t *testing.T) {
		_, err := svcs.Students.Update(ctx, std.ID, school.UpdateStudent{StudentCode: null.StringFrom("HS002")})
		assert.IsType(t, &core.DuplicateKeyError{}, errors.Cause(err))
	})

	t.Run("partial", func(t *testing.T) {
		got, err := svcs.Students.Update(ctx, std.ID, school.UpdateStudent{ClassID: null.IntFrom(cls2.ID)})
		require.NoError(t, err)
		assert.Equal(t, "HS001", got.StudentCode)
		assert.Equal(t, "Nguyen Van A", got.Name)
		assert.Equal(t, cls2.ID, got.ClassID)
		require.NotNil(t, got.Class)
		assert.Equal(t, "10A2", got.Class.Name)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svcs.Students.Update(ctx, 999, school.UpdateStudent{})
		assert.True(t, core.IsNotFound(err))
	})
}

func TestStudentService_QueryByClass(t *testing.T) {
	store, svcs := setup(t)
	ctx := context.Background()
	cls1 := testutil.CreateClass(t, store.Classes, "10A1")
	cls2 := testutil.CreateClass(t, store.Classes, "10A2")
	std1 := testutil.CreateStudent(t, store.Students, "HS001", "Nguyen Van A", cls1.ID)
	testutil.CreateStudent(t, store.Students, "HS002", "Tran Thi B", cls2.ID)
	std3 := testutil.CreateStudent(t, store.Students, "HS003", "Le Van C", cls1.ID)

	tests := []struct {
		name    string
		classID int
		wantIDs []int
	}{
		{name: "matching", classID: cls1.ID, wantIDs: []int{std1.ID, std3.ID}},
		{name: "unknown class", classID: 999, wantIDs: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			students, err := svcs.Students.QueryByClass(ctx, tt.classID)
			require.NoError(t, err)
			require.NotNil(t, students)

			ids := make([]int, 0, len(students))
			for _, std := range students {
				assert.Equal(t, tt.classID, std.ClassID)
				ids = append(ids, std.ID)
			}
			assert.ElementsMatch(t, tt.wantIDs, ids)
		})
	}
}

func TestStudentService_Delete(t *testing.T) {
	store, svcs := setup(t)
	ctx := context.Background()
	cls := testutil.CreateClass(t, store.Classes, "10A1")
	std := testutil.CreateStudent(t, store.Students, "HS001", "Nguyen Van A", cls.ID)
	tst := testutil.CreateTest(t, store.Tests, std.ID, 6, "Midterm", core.NewDate(2024, time.March, 15))

	err := svcs.Students.Delete(ctx, std.ID)
	assert.IsType(t, &core.ForeignKeyError{}, errors.Cause(err))

	require.NoError(t, svcs.Tests.Delete(ctx, tst.ID))
	require.NoError(t, svcs.Students.Delete(ctx, std.ID))

	err = svcs.Students.Delete(ctx, std.ID)
	assert.True(t, core.IsNotFound(err))
}

func TestStudentService_Import(t *testing.T) {
	store, svcs := setup(t)
	ctx := context.Background()
	cls := testutil.CreateClass(t, store.Classes, "10A1")
	testutil.CreateStudent(t, store.Students, "HS001", "Nguyen Van A", cls.ID)

	res, err := svcs.Students.Import(ctx, []school.NewStudent{
		{StudentCode: "HS002", Name: "Tran Thi B", ClassID: cls.ID},
		{StudentCode: "HS001", Name: "Duplicate", ClassID: cls.ID},
		{StudentCode: "HS003", Name: "", ClassID: cls.ID},
		{StudentCode: "HS004", Name: "No Class", ClassID: 999},
		{StudentCode: "HS005", Name: "Le Van C", ClassID: cls.ID},
	})
	require.NoError(t, err)

	require.Len(t, res.Created, 2)
	assert.Equal(t, "HS002", res.Created[0].StudentCode)
	assert.Equal(t, "HS005", res.Created[1].StudentCode)

	require.Len(t, res.Failed, 3)
	assert.Equal(t, 2, res.Failed[0].Row)
	assert.IsType(t, &core.DuplicateKeyError{}, errors.Cause(res.Failed[0].Err))
	assert.Equal(t, 3, res.Failed[1].Row)
	assert.IsType(t, validator.ValidationErrors{}, errors.Cause(res.Failed[1].Err))
	assert.Equal(t, 4, res.Failed[2].Row)
	assert.IsType(t, &core.ForeignKeyError{}, errors.Cause(res.Failed[2].Err))
}
