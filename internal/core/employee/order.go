package employee

import (
	"fmt"
	"strings"
)

// SortColumn は一覧で並び替えに使える列です。
type SortColumn string

const (
	SortByID         SortColumn = "id"
	SortByFirstName  SortColumn = "first_name"
	SortByLastName   SortColumn = "last_name"
	SortByEmail      SortColumn = "email"
	SortByDepartment SortColumn = "department"
	SortByTitle      SortColumn = "title"
	SortBySalary     SortColumn = "salary"
	SortByDateHired  SortColumn = "date_hired"
	SortByIsActive   SortColumn = "is_active"
	SortByCreatedAt  SortColumn = "created_at"
	SortByUpdatedAt  SortColumn = "updated_at"
)

var sortableColumns = map[string]SortColumn{
	string(SortByID):         SortByID,
	string(SortByFirstName):  SortByFirstName,
	string(SortByLastName):   SortByLastName,
	string(SortByEmail):      SortByEmail,
	string(SortByDepartment): SortByDepartment,
	string(SortByTitle):      SortByTitle,
	string(SortBySalary):     SortBySalary,
	string(SortByDateHired):  SortByDateHired,
	string(SortByIsActive):   SortByIsActive,
	string(SortByCreatedAt):  SortByCreatedAt,
	string(SortByUpdatedAt):  SortByUpdatedAt,
}

// Order は一覧の並び順です。
type Order struct {
	Column     SortColumn
	Descending bool
}

// DefaultOrder は id の昇順です。
var DefaultOrder = Order{Column: SortByID}

// ParseOrder は "last_name DESC" 形式のトークンを許可リストに照らして解釈します。
// 空文字列は DefaultOrder になります。
func ParseOrder(raw string) (Order, error) {
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		return DefaultOrder, nil
	}
	if len(parts) > 2 {
		return Order{}, fmt.Errorf("%q: %w", raw, ErrInvalidOrder)
	}

	column, ok := sortableColumns[strings.ToLower(parts[0])]
	if !ok {
		return Order{}, fmt.Errorf("column %q: %w", parts[0], ErrInvalidOrder)
	}

	order := Order{Column: column}
	if len(parts) == 2 {
		switch strings.ToUpper(parts[1]) {
		case "ASC":
		case "DESC":
			order.Descending = true
		default:
			return Order{}, fmt.Errorf("direction %q: %w", parts[1], ErrInvalidOrder)
		}
	}

	return order, nil
}

// IsSortable は column が許可リストに含まれるかを返します。
func IsSortable(column SortColumn) bool {
	_, ok := sortableColumns[string(column)]
	return ok
}

func (o Order) String() string {
	if o.Descending {
		return string(o.Column) + " DESC"
	}
	return string(o.Column) + " ASC"
}
