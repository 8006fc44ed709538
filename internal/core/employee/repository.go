package employee

import "context"

// Repository は社員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	FindByID(ctx context.Context, id int64) (*Employee, error)
	List(ctx context.Context, filter ListEmployeesFilter) ([]*Employee, int, error)
	Update(ctx context.Context, id int64, patch Patch) (*Employee, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// ListEmployeesFilter は一覧取得用フィルタです。
// Query は氏名・メールアドレスの部分一致 (大文字小文字を区別しない) に使われます。
type ListEmployeesFilter struct {
	Query      string
	Department *string
	IsActive   *bool
	Limit      int
	Offset     int
	Order      Order
}
