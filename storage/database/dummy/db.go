package dummydb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/uniteach/monitoria/core"
	"github.com/uniteach/monitoria/core/application"
	"github.com/uniteach/monitoria/core/period"
	"github.com/uniteach/monitoria/core/position"
	"github.com/uniteach/monitoria/core/project"
	"github.com/uniteach/monitoria/core/student"
)

// dummydb is an in-memory stand-in for the postgres store, used by tests.
// Tables are mutex-guarded maps that mirror the schema's unique constraints;
// per-period allocation locks behave like transaction-scoped advisory locks.

type (
	DB struct {
		periods      *periodTable
		departments  *departmentTable
		projects     *projectTable
		students     *studentTable
		applications *applicationTable
		positions    *positionTable

		locksMu    sync.Mutex
		allocLocks map[[2]int]*sync.Mutex
	}

	periodTable struct {
		sync.RWMutex
		seq  int
		rows map[int]*period.Period
	}
	departmentTable struct {
		sync.RWMutex
		seq  int
		rows map[int]*project.Department
	}
	projectTable struct {
		sync.RWMutex
		seq  int
		rows map[int]*project.Project
	}
	studentTable struct {
		sync.RWMutex
		seq  int
		rows map[int]*student.Student
	}
	applicationTable struct {
		sync.RWMutex
		seq  int
		rows map[int]*application.Application
	}
	positionTable struct {
		sync.RWMutex
		seq  int
		rows map[int]*position.Position
	}
)

func Open() (*DB, error) {
	db := &DB{
		periods:      &periodTable{rows: make(map[int]*period.Period)},
		departments:  &departmentTable{rows: make(map[int]*project.Department)},
		projects:     &projectTable{rows: make(map[int]*project.Project)},
		students:     &studentTable{rows: make(map[int]*student.Student)},
		applications: &applicationTable{rows: make(map[int]*application.Application)},
		positions:    &positionTable{rows: make(map[int]*position.Position)},
		allocLocks:   make(map[[2]int]*sync.Mutex),
	}
	return db, nil
}

var _ core.DB = (*DB)(nil) // interface compliance check

func (db *DB) BeginTxx(ctx context.Context, opts *sql.TxOptions) (core.DBTransactor, error) {
	return &Tx{db: db}, nil
}

// Tx is a no-op transactor; rollback cannot undo writes, so repositories must
// keep the validate-then-write ordering the services rely on. It does release
// any allocation locks taken during the "transaction".
type Tx struct {
	db   *DB
	mu   sync.Mutex
	held []*sync.Mutex
}

var _ core.DBTransactor = (*Tx)(nil)

func (tx *Tx) lockAllocations(year, halfOrd int) {
	key := [2]int{year, halfOrd}

	tx.db.locksMu.Lock()
	l, ok := tx.db.allocLocks[key]
	if !ok {
		l = new(sync.Mutex)
		tx.db.allocLocks[key] = l
	}
	tx.db.locksMu.Unlock()

	l.Lock()
	tx.mu.Lock()
	tx.held = append(tx.held, l)
	tx.mu.Unlock()
}

func (tx *Tx) release() {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	for i := len(tx.held) - 1; i >= 0; i-- {
		tx.held[i].Unlock()
	}
	tx.held = nil
}

func (tx *Tx) Commit() error   { tx.release(); return nil }
func (tx *Tx) Rollback() error { tx.release(); return nil }

// core.DBExecutor stubs; the dummy repositories never run SQL.

var errNoSQL = errors.New("dummydb does not execute SQL")

func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, errNoSQL
}
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, errNoSQL
}
func (db *DB) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	return nil, errNoSQL
}
func (db *DB) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	return nil
}

func (tx *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, errNoSQL
}
func (tx *Tx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, errNoSQL
}
func (tx *Tx) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	return nil, errNoSQL
}
func (tx *Tx) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	return nil
}

// Seed helpers for tests and local development.

func (db *DB) AddDepartment(dep project.Department) project.Department {
	db.departments.Lock()
	defer db.departments.Unlock()
	db.departments.seq++
	dep.ID = db.departments.seq
	db.departments.rows[dep.ID] = &dep
	return dep
}

func (db *DB) AddProject(proj project.Project) project.Project {
	db.projects.Lock()
	defer db.projects.Unlock()
	db.projects.seq++
	proj.ID = db.projects.seq
	db.projects.rows[proj.ID] = &proj
	return proj
}

func (db *DB) AddStudent(stu student.Student) student.Student {
	db.students.Lock()
	defer db.students.Unlock()
	db.students.seq++
	stu.ID = db.students.seq
	db.students.rows[stu.ID] = &stu
	return stu
}
