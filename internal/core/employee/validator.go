package employee

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	FieldFirstName  = "first_name"
	FieldLastName   = "last_name"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldDepartment = "department"
	FieldTitle      = "title"
	FieldSalary     = "salary"
	FieldDateHired  = "date_hired"
	FieldIsActive   = "is_active"
)

const (
	maxNameLength  = 100
	maxEmailLength = 255
	maxPhoneLength = 20
	salaryScale    = 2

	dateLayout = "2006-01-02"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	// salary 列は NUMERIC(12,2) です。
	salaryUpperBound = decimal.New(1, 10)
	one              = decimal.NewFromInt(1)
)

// Input は検証前の入力です。JSON オブジェクトを json.Decoder.UseNumber でデコードした値を想定します。
type Input map[string]any

// CreateEmployeeInput は検証・正規化済みの社員作成入力です。
type CreateEmployeeInput struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      *string
	Department *string
	Title      *string
	Salary     *decimal.Decimal
	DateHired  *time.Time
	IsActive   bool
}

// Patch は社員の部分更新です。nil を取り得る列は *Set が true のときだけ上書きされ、
// その際の nil は NULL の設定を意味します。
type Patch struct {
	FirstName     *string
	LastName      *string
	Email         *string
	Phone         *string
	PhoneSet      bool
	Department    *string
	DepartmentSet bool
	Title         *string
	TitleSet      bool
	Salary        *decimal.Decimal
	SalarySet     bool
	DateHired     *time.Time
	DateHiredSet  bool
	IsActive      *bool
}

// IsEmpty は更新対象のフィールドが一つもないかを返します。
func (p Patch) IsEmpty() bool {
	return p.FirstName == nil &&
		p.LastName == nil &&
		p.Email == nil &&
		!p.PhoneSet &&
		!p.DepartmentSet &&
		!p.TitleSet &&
		!p.SalarySet &&
		!p.DateHiredSet &&
		p.IsActive == nil
}

// ValidateCreate は作成用の入力を検証し正規化します。
func ValidateCreate(in Input) (CreateEmployeeInput, error) {
	for _, field := range []string{FieldFirstName, FieldLastName, FieldEmail} {
		if isBlank(in[field]) {
			return CreateEmployeeInput{}, invalidField(field, "is required")
		}
	}

	email, err := normalizeEmail(in[FieldEmail], "is required")
	if err != nil {
		return CreateEmployeeInput{}, err
	}

	firstName, err := normalizeName(FieldFirstName, in[FieldFirstName], "is required")
	if err != nil {
		return CreateEmployeeInput{}, err
	}

	lastName, err := normalizeName(FieldLastName, in[FieldLastName], "is required")
	if err != nil {
		return CreateEmployeeInput{}, err
	}

	phone, err := normalizeOptionalText(FieldPhone, in[FieldPhone], maxPhoneLength)
	if err != nil {
		return CreateEmployeeInput{}, err
	}

	department, err := normalizeOptionalText(FieldDepartment, in[FieldDepartment], 0)
	if err != nil {
		return CreateEmployeeInput{}, err
	}

	title, err := normalizeOptionalText(FieldTitle, in[FieldTitle], 0)
	if err != nil {
		return CreateEmployeeInput{}, err
	}

	salary, err := parseSalary(in[FieldSalary])
	if err != nil {
		return CreateEmployeeInput{}, err
	}

	dateHired, err := parseDateHired(in[FieldDateHired])
	if err != nil {
		return CreateEmployeeInput{}, err
	}

	isActive := true
	if raw, ok := in[FieldIsActive]; ok && raw != nil {
		isActive = parseActive(raw)
	}

	return CreateEmployeeInput{
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Phone:      phone,
		Department: department,
		Title:      title,
		Salary:     salary,
		DateHired:  dateHired,
		IsActive:   isActive,
	}, nil
}

// ValidateUpdate は更新用の入力を検証し、入力に含まれるキーだけを Patch に写します。
// 未知のキーは無視されるため Patch に入ることはありません。
func ValidateUpdate(in Input) (Patch, error) {
	var patch Patch

	if raw, ok := in[FieldFirstName]; ok {
		name, err := normalizeName(FieldFirstName, raw, "cannot be empty")
		if err != nil {
			return Patch{}, err
		}
		patch.FirstName = &name
	}

	if raw, ok := in[FieldLastName]; ok {
		name, err := normalizeName(FieldLastName, raw, "cannot be empty")
		if err != nil {
			return Patch{}, err
		}
		patch.LastName = &name
	}

	if raw, ok := in[FieldEmail]; ok {
		email, err := normalizeEmail(raw, "cannot be empty")
		if err != nil {
			return Patch{}, err
		}
		patch.Email = &email
	}

	if raw, ok := in[FieldPhone]; ok {
		phone, err := normalizeOptionalText(FieldPhone, raw, maxPhoneLength)
		if err != nil {
			return Patch{}, err
		}
		patch.Phone, patch.PhoneSet = phone, true
	}

	if raw, ok := in[FieldDepartment]; ok {
		department, err := normalizeOptionalText(FieldDepartment, raw, 0)
		if err != nil {
			return Patch{}, err
		}
		patch.Department, patch.DepartmentSet = department, true
	}

	if raw, ok := in[FieldTitle]; ok {
		title, err := normalizeOptionalText(FieldTitle, raw, 0)
		if err != nil {
			return Patch{}, err
		}
		patch.Title, patch.TitleSet = title, true
	}

	if raw, ok := in[FieldSalary]; ok {
		salary, err := parseSalary(raw)
		if err != nil {
			return Patch{}, err
		}
		patch.Salary, patch.SalarySet = salary, true
	}

	if raw, ok := in[FieldDateHired]; ok {
		dateHired, err := parseDateHired(raw)
		if err != nil {
			return Patch{}, err
		}
		patch.DateHired, patch.DateHiredSet = dateHired, true
	}

	if raw, ok := in[FieldIsActive]; ok {
		if raw == nil {
			return Patch{}, invalidField(FieldIsActive, "cannot be null")
		}
		active := parseActive(raw)
		patch.IsActive = &active
	}

	return patch, nil
}

func isBlank(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

func normalizeName(field string, raw any, emptyReason string) (string, error) {
	if raw == nil {
		return "", invalidField(field, emptyReason)
	}
	s, ok := raw.(string)
	if !ok {
		return "", invalidField(field, "must be a string")
	}

	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", invalidField(field, emptyReason)
	}
	if utf8.RuneCountInString(trimmed) > maxNameLength {
		return "", invalidField(field, "too long")
	}
	return trimmed, nil
}

func normalizeEmail(raw any, emptyReason string) (string, error) {
	if raw == nil {
		return "", invalidField(FieldEmail, emptyReason)
	}
	s, ok := raw.(string)
	if !ok {
		return "", invalidField(FieldEmail, "must be a string")
	}

	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", invalidField(FieldEmail, emptyReason)
	}
	if utf8.RuneCountInString(trimmed) > maxEmailLength {
		return "", invalidField(FieldEmail, "too long")
	}
	if !emailPattern.MatchString(trimmed) {
		return "", invalidField(FieldEmail, "is invalid")
	}
	return strings.ToLower(trimmed), nil
}

// normalizeOptionalText は空文字列を NULL として扱います。maxLen が 0 の場合は長さを検査しません。
func normalizeOptionalText(field string, raw any, maxLen int) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, invalidField(field, "must be a string")
	}

	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, nil
	}
	if maxLen > 0 && utf8.RuneCountInString(trimmed) > maxLen {
		return nil, invalidField(field, "too long")
	}
	return &trimmed, nil
}

func parseSalary(raw any) (*decimal.Decimal, error) {
	var (
		value decimal.Decimal
		err   error
	)

	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, nil
		}
		value, err = decimal.NewFromString(trimmed)
	case json.Number:
		value, err = decimal.NewFromString(v.String())
	case float64:
		value = decimal.NewFromFloat(v)
	case int:
		value = decimal.NewFromInt(int64(v))
	case int64:
		value = decimal.NewFromInt(v)
	default:
		return nil, invalidField(FieldSalary, "must be a number")
	}
	if err != nil {
		return nil, invalidField(FieldSalary, "must be a number")
	}

	if value.IsNegative() {
		return nil, invalidField(FieldSalary, "must be >= 0")
	}
	// NUMERIC(12,2) の精度を超える値は受け付けません。
	if !value.Equal(value.Round(salaryScale)) {
		return nil, invalidField(FieldSalary, "must have at most 2 decimal places")
	}
	if value.GreaterThanOrEqual(salaryUpperBound) {
		return nil, invalidField(FieldSalary, "is out of range")
	}
	return &value, nil
}

func parseDateHired(raw any) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, invalidField(FieldDateHired, "must be an ISO date (YYYY-MM-DD)")
	}

	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, nil
	}

	parsed, err := time.Parse(dateLayout, trimmed)
	if err != nil {
		return nil, invalidField(FieldDateHired, "must be an ISO date (YYYY-MM-DD)")
	}
	return &parsed, nil
}

// parseActive は bool、"1"/"true"/"yes"/"on" (大文字小文字を区別しない)、または数値 1 を true とみなします。
func parseActive(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true
		}
		return false
	case json.Number:
		n, err := decimal.NewFromString(v.String())
		return err == nil && n.Equal(one)
	case float64:
		return v == 1
	case int:
		return v == 1
	case int64:
		return v == 1
	default:
		return false
	}
}
