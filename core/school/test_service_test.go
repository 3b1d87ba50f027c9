package school_test

import (
	"context"
	"encoding/json"
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

func score(f float64) *float64 { return &f }

func TestTestService_Create(t *testing.T) {
	store, svcs := setup(t)
	ctx := context.Background()
	cls := testutil.CreateClass(t, store.Classes, "10A1")
	std := testutil.CreateStudent(t, store.Students, "HS001", "Nguyen Van A", cls.ID)

	t.Run("passed flag", func(t *testing.T) {
		tests := []struct {
			score      float64
			wantPassed bool
		}{
			{score: 7.5, wantPassed: true},
			{score: 4.99, wantPassed: false},
			{score: 5.00, wantPassed: true},
			{score: 0, wantPassed: false},
			{score: 10, wantPassed: true},
		}
		for _, tt := range tests {
			tst, err := svcs.Tests.Create(ctx, school.NewTest{
				StudentID: std.ID, Score: score(tt.score), TestName: "Quiz", TestDate: "2024-03-15",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantPassed, tst.IsPassed(), "score %v", tt.score)

			got, err := svcs.Tests.GetByID(ctx, tst.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.score, got.Score)

			data, err := json.Marshal(got)
			require.NoError(t, err)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &body))
			assert.Equal(t, tt.wantPassed, body["is_passed"])
			assert.Equal(t, "2024-03-15", body["test_date"])
		}
	})

	t.Run("eager student and class", func(t *testing.T) {
		tst, err := svcs.Tests.Create(ctx, school.NewTest{
			StudentID: std.ID, Score: score(8), TestName: "Final", TestDate: "2024-06-01T10:00:00+07:00",
		})
		require.NoError(t, err)
		assert.Equal(t, "2024-06-01", tst.TestDate.String())
		require.NotNil(t, tst.Student)
		assert.Equal(t, std.StudentCode, tst.Student.StudentCode)
		require.NotNil(t, tst.Student.Class)
		assert.Equal(t, cls.Name, tst.Student.Class.Name)
	})

	t.Run("score rounded to 2 decimals", func(t *testing.T) {
		tst, err := svcs.Tests.Create(ctx, school.NewTest{
			StudentID: std.ID, Score: score(4.996), TestName: "Quiz", TestDate: "2024-03-15",
		})
		require.NoError(t, err)
		assert.Equal(t, 5.0, tst.Score)
		assert.True(t, tst.IsPassed())
	})

	invalid := []struct {
		name      string
		data      school.NewTest
		wantField string
	}{
		{name: "score above 10", data: school.NewTest{StudentID: std.ID, Score: score(10.01), TestName: "Q", TestDate: "2024-03-15"}, wantField: "score"},
		{name: "negative score", data: school.NewTest{StudentID: std.ID, Score: score(-1), TestName: "Q", TestDate: "2024-03-15"}, wantField: "score"},
		{name: "missing score", data: school.NewTest{StudentID: std.ID, TestName: "Q", TestDate: "2024-03-15"}, wantField: "score"},
		{name: "blank name", data: school.NewTest{StudentID: std.ID, Score: score(5), TestName: " ", TestDate: "2024-03-15"}, wantField: "test_name"},
		{name: "bad date", data: school.NewTest{StudentID: std.ID, Score: score(5), TestName: "Q", TestDate: "15/03/2024"}, wantField: "test_date"},
		{name: "missing student", data: school.NewTest{Score: score(5), TestName: "Q", TestDate: "2024-03-15"}, wantField: "student_id"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svcs.Tests.Create(ctx, tt.data)
			var vErrs validator.ValidationErrors
			require.True(t, errors.As(err, &vErrs), "got %v", err)
			assert.Equal(t, tt.wantField, vErrs[0].Field())
		})
	}

	t.Run("unknown student", func(t *testing.T) {
		_, err := svcs.Tests.Create(ctx, school.NewTest{StudentID: 999, Score: score(5), TestName: "Q", TestDate: "2024-03-15"})
		fkErr, ok := errors.Cause(err).(*core.ForeignKeyError)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, "student_id", fkErr.Field)
	})
}

func TestTestService_Update(t *testing.T) {
	store, svcs := setup(t)
	ctx := context.Background()
	cls := testutil.CreateClass(t, store.Classes, "10A1")
	std := testutil.CreateStudent(t, store.Students, "HS001", "Nguyen Van A", cls.ID)
	tst := testutil.CreateTest(t, store.Tests, std.ID, 4, "Midterm", core.NewDate(2024, time.March, 15))
	require.False(t, tst.IsPassed())

	t.Run("passed flag follows score", func(t *testing.T) {
		got, err := svcs.Tests.Update(ctx, tst.ID, school.UpdateTest{Score: null.Float64From(6.5)})
		require.NoError(t, err)
		assert.True(t, got.IsPassed())
		assert.Equal(t, "Midterm", got.TestName)
		assert.Equal(t, "2024-03-15", got.TestDate.String())
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := svcs.Tests.Update(ctx, tst.ID, school.UpdateTest{Score: null.Float64From(11)})
		assert.IsType(t, validator.ValidationErrors{}, errors.Cause(err))
	})

	t.Run("unknown student", func(t *testing.T) {
		_, err := svcs.Tests.Update(ctx, tst.ID, school.UpdateTest{StudentID: null.IntFrom(999)})
		assert.IsType(t, &core.ForeignKeyError{}, errors.Cause(err))
	})

	t.Run("date", func(t *testing.T) {
		got, err := svcs.Tests.Update(ctx, tst.ID, school.UpdateTest{TestDate: null.StringFrom("2024-04-01")})
		require.NoError(t, err)
		assert.Equal(t, "2024-04-01", got.TestDate.String())
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svcs.Tests.Update(ctx, 999, school.UpdateTest{})
		assert.True(t, core.IsNotFound(err))
	})
}

func TestTestService_QueryByStudent(t *testing.T) {
	store, svcs := setup(t)
	ctx := context.Background()
	cls := testutil.CreateClass(t, store.Classes, "10A1")
	std1 := testutil.CreateStudent(t, store.Students, "HS001", "Nguyen Van A", cls.ID)
	std2 := testutil.CreateStudent(t, store.Students, "HS002", "Tran Thi B", cls.ID)
	date := core.NewDate(2024, time.March, 15)
	tst1 := testutil.CreateTest(t, store.Tests, std1.ID, 6, "Midterm", date)
	testutil.CreateTest(t, store.Tests, std2.ID, 7, "Midterm", date)

	tests, err := svcs.Tests.QueryByStudent(ctx, std1.ID)
	require.NoError(t, err)
	require.Len(t, tests, 1)
	assert.Equal(t, tst1.ID, tests[0].ID)

	all, err := svcs.Tests.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTestService_Statistics(t *testing.T) {
	store, svcs := setup(t)
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		stats, err := svcs.Tests.Statistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, school.Statistics{}, stats)

		data, err := json.Marshal(stats)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"totalTests": 0, "passedCount": 0, "excellentCount": 0, "failedCount": 0,
			"passRate": 0, "excellentRate": 0
		}`, string(data))
	})

	cls := testutil.CreateClass(t, store.Classes, "10A1")
	std := testutil.CreateStudent(t, store.Students, "HS001", "Nguyen Van A", cls.ID)
	date := core.NewDate(2024, time.March, 15)
	for _, s := range []float64{4.99, 5, 7.5, 8, 9.25, 2} {
		testutil.CreateTest(t, store.Tests, std.ID, s, "Quiz", date)
	}

	t.Run("counts", func(t *testing.T) {
		stats, err := svcs.Tests.Statistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, 6, stats.TotalTests)
		assert.Equal(t, 4, stats.PassedCount)
		assert.Equal(t, 2, stats.ExcellentCount)
		assert.Equal(t, 2, stats.FailedCount)
		assert.LessOrEqual(t, stats.ExcellentCount, stats.PassedCount)
		assert.Equal(t, stats.TotalTests, stats.PassedCount+stats.FailedCount)

		data, err := json.Marshal(stats)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"totalTests": 6, "passedCount": 4, "excellentCount": 2, "failedCount": 2,
			"passRate": "66.67", "excellentRate": "33.33"
		}`, string(data))
	})

	t.Run("single counts", func(t *testing.T) {
		passed, err := svcs.Tests.PassedCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, passed)

		excellent, err := svcs.Tests.ExcellentCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, excellent)
	})
}

func TestComputeStatistics(t *testing.T) {
	tests := []struct {
		name   string
		counts school.TestCounts
	}{
		{name: "empty"},
		{name: "all passed", counts: school.TestCounts{Total: 3, Passed: 3, Excellent: 1}},
		{name: "none passed", counts: school.TestCounts{Total: 3}},
		{name: "mixed", counts: school.TestCounts{Total: 7, Passed: 5, Excellent: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := school.ComputeStatistics(tt.counts)
			assert.Equal(t, stats.TotalTests, stats.PassedCount+stats.FailedCount)
			assert.LessOrEqual(t, stats.ExcellentCount, stats.PassedCount)
			if tt.counts.Total == 0 {
				assert.Equal(t, "0", stats.PassRate.String())
			} else {
				assert.InDelta(t, float64(tt.counts.Passed)/float64(tt.counts.Total)*100, stats.PassRate.Percent(), 1e-9)
			}
		})
	}
}

func TestRate_JSON(t *testing.T) {
	tests := []struct {
		name string
		rate school.Rate
		want string
	}{
		{name: "undefined", rate: school.NewRate(0, 0), want: `0`},
		{name: "zero", rate: school.NewRate(0, 4), want: `"0.00"`},
		{name: "full", rate: school.NewRate(4, 4), want: `"100.00"`},
		{name: "rounded", rate: school.NewRate(2, 3), want: `"66.67"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.rate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			var got school.Rate
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.rate.String(), got.String())
		})
	}
}
