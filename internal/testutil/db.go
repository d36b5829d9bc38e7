package testutil

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

const employeesDDL = `
CREATE TABLE employees (
	id           INTEGER PRIMARY KEY,
	first_name   TEXT NOT NULL,
	last_name    TEXT,
	salary       NUMERIC NOT NULL,
	bonus        NUMERIC,
	is_active    BOOLEAN NOT NULL,
	created_date DATE NOT NULL
)`

// Employee rows. Weekdays are given for the date-part tests.
//
//	1 John  Doe   80000  5000  active   2023-03-15 (Wed)
//	2 Jane  Doe   65000  12000 active   2024-01-09 (Tue)
//	3 Alice Smith 72000  -     inactive 2023-12-25 (Mon)
//	4 Bob   Stone 50000  15000 active   2024-01-10 (Wed)
//	5 Carol -     90000  2000  inactive 2022-07-04 (Mon)
const employeesRows = `
INSERT INTO employees (id, first_name, last_name, salary, bonus, is_active, created_date) VALUES
	(1, 'John',  'Doe',   80000, 5000,  1, '2023-03-15'),
	(2, 'Jane',  'Doe',   65000, 12000, 1, '2024-01-09'),
	(3, 'Alice', 'Smith', 72000, NULL,  0, '2023-12-25'),
	(4, 'Bob',   'Stone', 50000, 15000, 1, '2024-01-10'),
	(5, 'Carol', NULL,    90000, 2000,  0, '2022-07-04')`

// EmployeesDB opens an in-memory SQLite database holding the employees
// table. The database is closed when the test ends.
func EmployeesDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	db.MustExec(employeesDDL)
	db.MustExec(employeesRows)
	return db
}

// SelectIDs runs "SELECT id FROM employees WHERE <where>" and returns the
// matching ids in ascending order.
func SelectIDs(t *testing.T, db *sqlx.DB, where string, args ...any) []int {
	t.Helper()

	ids := []int{}
	err := db.Select(&ids, "SELECT id FROM employees WHERE "+where+" ORDER BY id", args...)
	require.NoError(t, err, "where: %s", where)
	return ids
}
