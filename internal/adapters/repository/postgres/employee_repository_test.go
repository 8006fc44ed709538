package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/employee-registry/internal/core/employee"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
)

var employeeRowColumns = []string{
	"id", "first_name", "last_name", "email", "phone", "department", "title",
	"salary", "date_hired", "is_active", "created_at", "updated_at",
}

type stubRow struct {
	scanFn func(dest ...any) error
}

func (s stubRow) Scan(dest ...any) error {
	return s.scanFn(dest...)
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestScanEmployee_Success(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	hired := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)

	row := stubRow{scanFn: func(dest ...any) error {
		if len(dest) != 12 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*int64)) = 7
		*(dest[1].(*string)) = "Ann"
		*(dest[2].(*string)) = "Lee"
		*(dest[3].(*string)) = "ann@x.io"
		*(dest[4].(*sql.NullString)) = sql.NullString{}
		*(dest[5].(*sql.NullString)) = sql.NullString{String: "Eng", Valid: true}
		*(dest[6].(*sql.NullString)) = sql.NullString{}
		*(dest[7].(*decimal.NullDecimal)) = decimal.NullDecimal{Decimal: decimal.RequireFromString("85000.00"), Valid: true}
		*(dest[8].(*sql.NullTime)) = sql.NullTime{Time: hired, Valid: true}
		*(dest[9].(*int16)) = 1
		*(dest[10].(*time.Time)) = createdAt
		*(dest[11].(*time.Time)) = createdAt
		return nil
	}}

	emp, err := scanEmployee(row)
	if err != nil {
		t.Fatalf("scanEmployee returned error: %v", err)
	}

	if emp.ID != 7 || emp.Email != "ann@x.io" || !emp.IsActive {
		t.Fatalf("unexpected employee %+v", emp)
	}
	if emp.Phone != nil || emp.Title != nil {
		t.Fatalf("expected nil phone and title")
	}
	if emp.Department == nil || *emp.Department != "Eng" {
		t.Fatalf("unexpected department %v", emp.Department)
	}
	if emp.Salary == nil || emp.Salary.StringFixed(2) != "85000.00" {
		t.Fatalf("unexpected salary %v", emp.Salary)
	}
	if emp.DateHired == nil || !emp.DateHired.Equal(hired) {
		t.Fatalf("unexpected date_hired %v", emp.DateHired)
	}
}

func TestScanEmployee_NoRows(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...any) error {
		return pgx.ErrNoRows
	}}

	if _, err := scanEmployee(row); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestTranslateEmployeePgError(t *testing.T) {
	t.Parallel()

	if !errors.Is(translateEmployeePgError(&pgconn.PgError{Code: uniqueViolationCode}), employee.ErrEmailAlreadyExists) {
		t.Fatalf("expected unique violation to map to ErrEmailAlreadyExists")
	}

	if !errors.Is(translateEmployeePgError(pgx.ErrNoRows), employee.ErrEmployeeNotFound) {
		t.Fatalf("expected no rows to map to ErrEmployeeNotFound")
	}

	otherErr := errors.New("connection reset")
	translated := translateEmployeePgError(otherErr)
	if !errors.Is(translated, employee.ErrStorage) || !errors.Is(translated, otherErr) {
		t.Fatalf("expected storage error wrapping the cause, got %v", translated)
	}

	if translateEmployeePgError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestOrderByClause(t *testing.T) {
	t.Parallel()

	cases := []struct {
		order employee.Order
		want  string
	}{
		{employee.DefaultOrder, "id ASC"},
		{employee.Order{Column: employee.SortByID, Descending: true}, "id DESC"},
		{employee.Order{Column: employee.SortByLastName}, "last_name ASC, id ASC"},
		{employee.Order{Column: employee.SortBySalary, Descending: true}, "salary DESC, id ASC"},
		{employee.Order{Column: employee.SortColumn("password")}, "id ASC"},
	}

	for _, tc := range cases {
		if got := orderByClause(tc.order); got != tc.want {
			t.Errorf("orderByClause(%+v) = %q, want %q", tc.order, got, tc.want)
		}
	}
}

func TestEmployeeRepository_Create(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewEmployeeRepository(mock)

	now := time.Now().UTC()
	dept := "Eng"
	salary := decimal.RequireFromString("85000.00")

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO employees (first_name, last_name, email, phone, department, title, salary, date_hired, is_active)`)).
		WithArgs("Ann", "Lee", "ann@x.io", nil, "Eng", nil, "85000", nil, int16(1)).
		WillReturnRows(pgxmock.NewRows(employeeRowColumns).
			AddRow(int64(1), "Ann", "Lee", "ann@x.io", nil, "Eng", nil, "85000.00", nil, int16(1), now, now))

	created, err := repo.Create(context.Background(), employee.CreateEmployeeInput{
		FirstName:  "Ann",
		LastName:   "Lee",
		Email:      "ann@x.io",
		Department: &dept,
		Salary:     &salary,
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if created.ID != 1 || created.FullName() != "Ann Lee" {
		t.Fatalf("unexpected employee %+v", created)
	}
	if created.Salary == nil || created.Salary.StringFixed(2) != "85000.00" {
		t.Fatalf("unexpected salary %v", created.Salary)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_Create_DuplicateEmail(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewEmployeeRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO employees`)).
		WithArgs("Ann", "Lee", "ann@x.io", nil, nil, nil, nil, nil, int16(1)).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "employees_email_key"})

	_, err := repo.Create(context.Background(), employee.CreateEmployeeInput{
		FirstName: "Ann",
		LastName:  "Lee",
		Email:     "ann@x.io",
		IsActive:  true,
	})
	if !errors.Is(err, employee.ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestEmployeeRepository_FindByID_NotFound(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewEmployeeRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM employees`)).
		WithArgs(int64(999)).
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.FindByID(context.Background(), 999); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_List_WithFilters(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewEmployeeRepository(mock)

	dept := "Eng"
	active := true
	now := time.Now().UTC()

	where := ` WHERE (first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1) AND department = $2 AND is_active = $3`

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM employees` + where)).
		WithArgs(`%50\%%`, "Eng", int16(1)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(5)))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM employees` + where + ` ORDER BY last_name DESC, id ASC LIMIT $4 OFFSET $5`)).
		WithArgs(`%50\%%`, "Eng", int16(1), 2, 2).
		WillReturnRows(pgxmock.NewRows(employeeRowColumns).
			AddRow(int64(3), "C", "Three", "c@x.io", nil, "Eng", nil, nil, nil, int16(1), now, now).
			AddRow(int64(4), "D", "Four", "d@x.io", nil, "Eng", nil, nil, nil, int16(1), now, now))

	employees, total, err := repo.List(context.Background(), employee.ListEmployeesFilter{
		Query:      "50%",
		Department: &dept,
		IsActive:   &active,
		Limit:      2,
		Offset:     2,
		Order:      employee.Order{Column: employee.SortByLastName, Descending: true},
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if len(employees) != 2 || employees[0].ID != 3 || employees[1].ID != 4 {
		t.Fatalf("unexpected employees %+v", employees)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_List_OffsetBeyondTotal(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewEmployeeRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM employees`)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	employees, total, err := repo.List(context.Background(), employee.ListEmployeesFilter{
		Limit:  50,
		Offset: 10,
		Order:  employee.DefaultOrder,
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if employees == nil || len(employees) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", employees)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_List_InvalidArguments(t *testing.T) {
	t.Parallel()

	repo := NewEmployeeRepository(newMockPool(t))

	if _, _, err := repo.List(context.Background(), employee.ListEmployeesFilter{Limit: 0}); err == nil {
		t.Fatal("expected error for zero limit")
	}
	if _, _, err := repo.List(context.Background(), employee.ListEmployeesFilter{Limit: 1, Offset: -1}); err == nil {
		t.Fatal("expected error for negative offset")
	}
}

func TestEmployeeRepository_Update_SetsOnlyPatchedColumns(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewEmployeeRepository(mock)

	now := time.Now().UTC()
	title := "Staff"
	inactive := false

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE employees SET title = $1, salary = $2, is_active = $3, updated_at = now() WHERE id = $4 RETURNING`)).
		WithArgs("Staff", nil, int16(0), int64(1)).
		WillReturnRows(pgxmock.NewRows(employeeRowColumns).
			AddRow(int64(1), "Ann", "Lee", "ann@x.io", nil, nil, "Staff", nil, nil, int16(0), now, now))

	updated, err := repo.Update(context.Background(), 1, employee.Patch{
		Title:     &title,
		TitleSet:  true,
		SalarySet: true,
		IsActive:  &inactive,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if updated.IsActive || updated.Salary != nil {
		t.Fatalf("unexpected employee %+v", updated)
	}
	if updated.Title == nil || *updated.Title != "Staff" {
		t.Fatalf("unexpected title %v", updated.Title)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_Update_EmptyPatchReadsCurrent(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewEmployeeRepository(mock)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(employeeRowColumns).
			AddRow(int64(1), "Ann", "Lee", "ann@x.io", nil, nil, nil, nil, nil, int16(1), now, now))

	if _, err := repo.Update(context.Background(), 1, employee.Patch{}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_Delete(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewEmployeeRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM employees WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM employees WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	deleted, err := repo.Delete(context.Background(), 1)
	if err != nil || !deleted {
		t.Fatalf("expected first delete to succeed, got %v %v", deleted, err)
	}

	deleted, err = repo.Delete(context.Background(), 1)
	if err != nil || deleted {
		t.Fatalf("expected second delete to report false, got %v %v", deleted, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
