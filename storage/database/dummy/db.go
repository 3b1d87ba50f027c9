package dummydb

import (
	"sort"
	"sync"

	"github.com/trezcool/gradebook/core/school"
)

// DB is an in-memory store enforcing the same constraints as the SQL schema
// (unique names and codes, foreign keys with RESTRICT on delete).
// A single lock guards all tables so that cross-table checks are atomic.
type DB struct {
	sync.RWMutex
	classes  map[int]*school.Class
	students map[int]*school.Student
	tests    map[int]*school.Test
	lastPK   map[string]int
}

func Open() (*DB, error) {
	db := &DB{
		classes:  make(map[int]*school.Class),
		students: make(map[int]*school.Student),
		tests:    make(map[int]*school.Test),
		lastPK:   make(map[string]int),
	}
	return db, nil
}

func (db *DB) nextPK(table string) int {
	db.lastPK[table]++
	return db.lastPK[table]
}

// Truncate empties all tables and resets the primary keys.
func (db *DB) Truncate() {
	db.Lock()
	defer db.Unlock()

	db.classes = make(map[int]*school.Class)
	db.students = make(map[int]*school.Student)
	db.tests = make(map[int]*school.Test)
	db.lastPK = make(map[string]int)
}

// the helpers below expect the caller to hold the lock

func (db *DB) classRow(id int) (school.Class, bool) {
	if cls, ok := db.classes[id]; ok {
		return *cls, true
	}
	return school.Class{}, false
}

func (db *DB) studentRows(match func(school.Student) bool) []school.Student {
	students := make([]school.Student, 0)
	for _, std := range db.students {
		if match(*std) {
			students = append(students, *std)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students
}

func (db *DB) testRows(match func(school.Test) bool) []school.Test {
	tests := make([]school.Test, 0)
	for _, tst := range db.tests {
		if match(*tst) {
			tests = append(tests, *tst)
		}
	}
	sort.Slice(tests, func(i, j int) bool { return tests[i].ID < tests[j].ID })
	return tests
}

// withStudents attaches the class' students.
func (db *DB) withStudents(cls school.Class) school.Class {
	cls.Students = db.studentRows(func(std school.Student) bool { return std.ClassID == cls.ID })
	return cls
}

// withClassAndTests attaches the student's class and tests.
func (db *DB) withClassAndTests(std school.Student) school.Student {
	if cls, ok := db.classRow(std.ClassID); ok {
		std.Class = &cls
	}
	std.Tests = db.testRows(func(tst school.Test) bool { return tst.StudentID == std.ID })
	return std
}

// withStudent attaches the test's student and the student's class.
func (db *DB) withStudent(tst school.Test) school.Test {
	if std, ok := db.students[tst.StudentID]; ok {
		s := *std
		if cls, ok := db.classRow(s.ClassID); ok {
			s.Class = &cls
		}
		tst.Student = &s
	}
	return tst
}
