package employee

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Employee は社員エンティティです。
type Employee struct {
	ID         int64
	FirstName  string
	LastName   string
	Email      string
	Phone      *string
	Department *string
	Title      *string
	Salary     *decimal.Decimal
	DateHired  *time.Time
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullName は姓名を連結した表示名を返します。保存はされません。
func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}
