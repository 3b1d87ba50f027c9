// Package spreadsheet reads and writes the xlsx files used to import students and export tests.
package spreadsheet

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/gradebook/core/school"
)

const (
	colStudentCode = "student_code"
	colName        = "name"
	colClassID     = "class_id"

	testsSheet = "Sheet1"
)

var testsHeader = []interface{}{
	"id", "student_code", "student_name", "class", "test_name", "test_date", "score", "is_passed",
}

// ReadStudents reads the students listed in the first sheet.
// The first row is a header naming the student_code, name and class_id columns, in any order.
// Blank rows are skipped. A class_id that is not a number is read as 0 and fails validation on import.
func ReadStudents(r io.Reader) ([]school.NewStudent, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening spreadsheet")
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("spreadsheet does not contain any sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "reading rows of sheet %q", sheet)
	}
	if len(rows) == 0 {
		return []school.NewStudent{}, nil
	}

	cols := make(map[string]int, 3)
	for i, cell := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(cell))] = i
	}
	for _, name := range []string{colStudentCode, colName, colClassID} {
		if _, ok := cols[name]; !ok {
			return nil, errors.Errorf("missing %q column", name)
		}
	}

	cell := func(row []string, col string) string {
		if idx := cols[col]; idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	students := make([]school.NewStudent, 0, len(rows)-1)
	for _, row := range rows[1:] {
		code, name, classID := cell(row, colStudentCode), cell(row, colName), cell(row, colClassID)
		if code == "" && name == "" && classID == "" {
			continue
		}
		id, _ := strconv.Atoi(classID)
		students = append(students, school.NewStudent{StudentCode: code, Name: name, ClassID: id})
	}
	return students, nil
}

// WriteTests writes one row per test, after a header row.
// Tests are expected to carry their student and the student's class.
func WriteTests(w io.Writer, tests []school.Test) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetRow(testsSheet, "A1", &testsHeader); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for i, tst := range tests {
		var code, name, class string
		if tst.Student != nil {
			code, name = tst.Student.StudentCode, tst.Student.Name
			if tst.Student.Class != nil {
				class = tst.Student.Class.Name
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "computing cell name")
		}
		row := []interface{}{
			tst.ID, code, name, class, tst.TestName, tst.TestDate.String(), tst.Score, tst.IsPassed(),
		}
		if err = f.SetSheetRow(testsSheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing test %d", tst.ID)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing spreadsheet")
	}
	return nil
}
