package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/employee-registry/internal/core/employee"
	pgdb "github.com/ogurasousui/employee-registry/internal/platform/db/postgres"
	"github.com/shopspring/decimal"
)

const (
	uniqueViolationCode = "23505"

	employeeColumns = `id, first_name, last_name, email, phone, department, title, salary, date_hired, is_active, created_at, updated_at`
)

// 並び替えに使う ORDER BY 句の断片です。呼び出し側の文字列を SQL に埋め込まないための許可リストです。
var orderColumns = map[employee.SortColumn]string{
	employee.SortByID:         "id",
	employee.SortByFirstName:  "first_name",
	employee.SortByLastName:   "last_name",
	employee.SortByEmail:      "email",
	employee.SortByDepartment: "department",
	employee.SortByTitle:      "title",
	employee.SortBySalary:     "salary",
	employee.SortByDateHired:  "date_hired",
	employee.SortByIsActive:   "is_active",
	employee.SortByCreatedAt:  "created_at",
	employee.SortByUpdatedAt:  "updated_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。メールアドレスの重複は ErrEmailAlreadyExists になります。
func (r *EmployeeRepository) Create(ctx context.Context, in employee.CreateEmployeeInput) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (first_name, last_name, email, phone, department, title, salary, date_hired, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING `+employeeColumns,
		in.FirstName,
		in.LastName,
		in.Email,
		nullableString(in.Phone),
		nullableString(in.Department),
		nullableString(in.Title),
		nullableDecimal(in.Salary),
		nullableDate(in.DateHired),
		activeFlag(in.IsActive),
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE id = $1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// List は条件に合う社員の総件数と、ページング済みの社員を返します。
// 同じスナップショットを参照させるため、呼び出し側で読み取りトランザクションを張ってください。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, int, error) {
	if filter.Limit <= 0 {
		return nil, 0, fmt.Errorf("postgres: list limit must be positive, got %d", filter.Limit)
	}
	if filter.Offset < 0 {
		return nil, 0, fmt.Errorf("postgres: list offset must not be negative, got %d", filter.Offset)
	}

	args := make([]any, 0, 5)
	conditions := make([]string, 0, 3)

	if filter.Query != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "(first_name ILIKE "+placeholder+" OR last_name ILIKE "+placeholder+" OR email ILIKE "+placeholder+")")
		args = append(args, "%"+likeEscaper.Replace(filter.Query)+"%")
	}

	if filter.Department != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "department = "+placeholder)
		args = append(args, *filter.Department)
	}

	if filter.IsActive != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "is_active = "+placeholder)
		args = append(args, activeFlag(*filter.IsActive))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var total int64
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM employees`+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, translateEmployeePgError(err)
	}

	if total == 0 || int64(filter.Offset) >= total {
		return []*employee.Employee{}, int(total), nil
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Limit)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `SELECT ` + employeeColumns + ` FROM employees` + whereClause +
		` ORDER BY ` + orderByClause(filter.Order) +
		` LIMIT ` + limitPlaceholder + ` OFFSET ` + offsetPlaceholder

	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0, filter.Limit)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, translateEmployeePgError(err)
	}

	return employees, int(total), nil
}

// Update は Patch に含まれる列だけを更新します。空の Patch は現在の社員を返します。
func (r *EmployeeRepository) Update(ctx context.Context, id int64, patch employee.Patch) (*employee.Employee, error) {
	args := make([]any, 0, 10)
	assignments := make([]string, 0, 10)
	assign := func(column string, value any) {
		args = append(args, value)
		assignments = append(assignments, column+" = $"+strconv.Itoa(len(args)))
	}

	if patch.FirstName != nil {
		assign("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		assign("last_name", *patch.LastName)
	}
	if patch.Email != nil {
		assign("email", *patch.Email)
	}
	if patch.PhoneSet {
		assign("phone", nullableString(patch.Phone))
	}
	if patch.DepartmentSet {
		assign("department", nullableString(patch.Department))
	}
	if patch.TitleSet {
		assign("title", nullableString(patch.Title))
	}
	if patch.SalarySet {
		assign("salary", nullableDecimal(patch.Salary))
	}
	if patch.DateHiredSet {
		assign("date_hired", nullableDate(patch.DateHired))
	}
	if patch.IsActive != nil {
		assign("is_active", activeFlag(*patch.IsActive))
	}

	if len(assignments) == 0 {
		return r.FindByID(ctx, id)
	}

	assignments = append(assignments, "updated_at = now()")
	args = append(args, id)

	query := `UPDATE employees SET ` + strings.Join(assignments, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) +
		` RETURNING ` + employeeColumns

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	updated, err := scanEmployee(exec.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// Delete は社員を物理削除し、行が削除されたかを返します。
func (r *EmployeeRepository) Delete(ctx context.Context, id int64) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return false, translateEmployeePgError(err)
	}
	return tag.RowsAffected() > 0, nil
}

func orderByClause(order employee.Order) string {
	column, ok := orderColumns[order.Column]
	if !ok {
		return "id ASC"
	}

	direction := " ASC"
	if order.Descending {
		direction = " DESC"
	}

	if column == "id" {
		return column + direction
	}
	return column + direction + ", id ASC"
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id         int64
		firstName  string
		lastName   string
		email      string
		phone      sql.NullString
		department sql.NullString
		title      sql.NullString
		salary     decimal.NullDecimal
		dateHired  sql.NullTime
		isActive   int16
		createdAt  time.Time
		updatedAt  time.Time
	)

	if err := row.Scan(
		&id,
		&firstName,
		&lastName,
		&email,
		&phone,
		&department,
		&title,
		&salary,
		&dateHired,
		&isActive,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	emp := &employee.Employee{
		ID:         id,
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Phone:      stringPtr(phone),
		Department: stringPtr(department),
		Title:      stringPtr(title),
		IsActive:   isActive == 1,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}

	if salary.Valid {
		value := salary.Decimal
		emp.Salary = &value
	}

	if dateHired.Valid {
		t := dateHired.Time.UTC()
		date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		emp.DateHired = &date
	}

	return emp, nil
}

// translateEmployeePgError は一意制約違反を Conflict、行なしを NotFound に変換し、それ以外を ErrStorage で包みます。
func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, employee.ErrEmployeeNotFound) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return employee.ErrEmailAlreadyExists
	}

	return fmt.Errorf("%w: %w", employee.ErrStorage, err)
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableDecimal(value *decimal.Decimal) any {
	if value == nil {
		return nil
	}
	return value.String()
}

func nullableDate(value *time.Time) any {
	if value == nil {
		return nil
	}
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}

func activeFlag(active bool) int16 {
	if active {
		return 1
	}
	return 0
}
