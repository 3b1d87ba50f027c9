package school

import (
	"encoding/json"
	"math"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/gradebook/core"
)

// Score thresholds (inclusive)
const (
	PassScore      = 5.0
	ExcellentScore = 8.0

	MinScore = 0.0
	MaxScore = 10.0
)

// Resource names
const (
	ResourceClass   = "class"
	ResourceStudent = "student"
	ResourceTest    = "test"
)

type Class struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
	Students  []Student `json:"students,omitempty"`
}

type Student struct {
	ID          int       `json:"id"`
	StudentCode string    `json:"student_code"`
	Name        string    `json:"name"`
	ClassID     int       `json:"class_id"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
	Class       *Class    `json:"class,omitempty"`
	Tests       []Test    `json:"tests,omitempty"`
}

// Test is a scored assessment of one Student.
// Whether it is passed is always derived from Score, see IsPassed.
type Test struct {
	ID        int       `json:"id"`
	StudentID int       `json:"student_id"`
	Score     float64   `json:"score"`
	TestName  string    `json:"test_name"`
	TestDate  core.Date `json:"test_date"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
	Student   *Student  `json:"student,omitempty"`
}

func (t Test) IsPassed() bool {
	return IsPassingScore(t.Score)
}

func (t Test) IsExcellent() bool {
	return IsExcellentScore(t.Score)
}

func (t Test) MarshalJSON() ([]byte, error) {
	type test Test
	return json.Marshal(struct {
		test
		IsPassed bool `json:"is_passed"`
	}{test: test(t), IsPassed: t.IsPassed()})
}

func IsPassingScore(score float64) bool {
	return score >= PassScore
}

func IsExcellentScore(score float64) bool {
	return score >= ExcellentScore
}

// RoundScore rounds score half away from zero to 2 decimals, the precision scores are stored with.
func RoundScore(score float64) float64 {
	return math.Round(score*100) / 100
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

func (nc *NewClass) Clean() {
	nc.Name = core.CleanString(nc.Name)
}

// UpdateClass defines what information may be provided to modify an existing Class.
type UpdateClass struct {
	Name null.String `json:"name"`
}

// merge applies the provided fields onto cls.
func (uc UpdateClass) merge(cls Class) NewClass {
	nc := NewClass{Name: cls.Name}
	if uc.Name.Valid {
		nc.Name = uc.Name.String
	}
	nc.Clean()
	return nc
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	StudentCode string `json:"student_code" validate:"notblank,max=20"`
	Name        string `json:"name" validate:"notblank,max=100"`
	ClassID     int    `json:"class_id" validate:"required,gt=0"`
}

func (ns *NewStudent) Clean() {
	ns.StudentCode = core.CleanString(ns.StudentCode)
	ns.Name = core.CleanString(ns.Name)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	StudentCode null.String `json:"student_code"`
	Name        null.String `json:"name"`
	ClassID     null.Int    `json:"class_id"`
}

func (us UpdateStudent) merge(std Student) NewStudent {
	ns := NewStudent{StudentCode: std.StudentCode, Name: std.Name, ClassID: std.ClassID}
	if us.StudentCode.Valid {
		ns.StudentCode = us.StudentCode.String
	}
	if us.Name.Valid {
		ns.Name = us.Name.String
	}
	if us.ClassID.Valid {
		ns.ClassID = us.ClassID.Int
	}
	ns.Clean()
	return ns
}

// NewTest contains information needed to record a new Test.
// There is no passed flag: it follows the score.
type NewTest struct {
	StudentID int      `json:"student_id" validate:"required,gt=0"`
	Score     *float64 `json:"score" validate:"required,min=0,max=10"`
	TestName  string   `json:"test_name" validate:"notblank,max=100"`
	TestDate  string   `json:"test_date" validate:"required,isodate"`
}

func (nt *NewTest) Clean() {
	if nt.Score != nil {
		score := RoundScore(*nt.Score)
		nt.Score = &score
	}
	nt.TestName = core.CleanString(nt.TestName)
	nt.TestDate = core.CleanString(nt.TestDate)
}

// UpdateTest defines what information may be provided to modify an existing Test.
type UpdateTest struct {
	StudentID null.Int     `json:"student_id"`
	Score     null.Float64 `json:"score"`
	TestName  null.String  `json:"test_name"`
	TestDate  null.String  `json:"test_date"`
}

func (ut UpdateTest) merge(tst Test) NewTest {
	score := tst.Score
	nt := NewTest{
		StudentID: tst.StudentID,
		Score:     &score,
		TestName:  tst.TestName,
		TestDate:  tst.TestDate.String(),
	}
	if ut.StudentID.Valid {
		nt.StudentID = ut.StudentID.Int
	}
	if ut.Score.Valid {
		score = ut.Score.Float64
	}
	if ut.TestName.Valid {
		nt.TestName = ut.TestName.String
	}
	if ut.TestDate.Valid {
		nt.TestDate = ut.TestDate.String
	}
	nt.Clean()
	return nt
}
