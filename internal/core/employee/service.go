package employee

import (
	"context"
	"strings"
)

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Service は社員に関するユースケースをまとめます。
// 各操作は一つのトランザクション (= プールから取得した一つのコネクション) の中で完結します。
type Service struct {
	repo Repository
	tx   TransactionManager
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) (bool, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, tx TransactionManager) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, tx: tx}
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID int64
}

// UpdateEmployeeInput は社員更新時の入力です。
type UpdateEmployeeInput struct {
	ID    int64
	Patch Patch
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	ID int64
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	Query      string
	Department *string
	IsActive   *bool
	Limit      int
	Offset     int
	Order      Order
}

// ListEmployeesResult は一覧取得結果を表します。Total はページングを無視した件数です。
type ListEmployeesResult struct {
	Employees []*Employee
	Total     int
	Limit     int
	Offset    int
}

// CreateEmployee は新しい社員を作成します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.repo.Create(txCtx, in)
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	if in.ID <= 0 {
		return nil, ErrEmployeeNotFound
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は社員の一覧を取得します。件数取得とデータ取得は同じスナップショットを参照します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	filter := ListEmployeesFilter{
		Query:      strings.TrimSpace(in.Query),
		Department: normalizeDepartmentFilter(in.Department),
		IsActive:   in.IsActive,
		Limit:      normalizeLimit(in.Limit),
		Offset:     normalizeOffset(in.Offset),
		Order:      normalizeOrder(in.Order),
	}

	var (
		employees []*Employee
		total     int
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, count, err := s.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		employees = found
		total = count
		return nil
	}); err != nil {
		return nil, err
	}

	if employees == nil {
		employees = []*Employee{}
	}

	return &ListEmployeesResult{
		Employees: employees,
		Total:     total,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	}, nil
}

// UpdateEmployee は Patch に含まれるフィールドだけを更新します。
// 空の Patch は存在確認のみを行い現在の社員を返します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	if in.ID <= 0 {
		return nil, ErrEmployeeNotFound
	}

	if in.Patch.IsEmpty() {
		return s.GetEmployee(ctx, GetEmployeeInput{ID: in.ID})
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.repo.Update(txCtx, in.ID, in.Patch)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteEmployee は社員を物理削除し、実際に削除したかを返します。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) (bool, error) {
	if in.ID <= 0 {
		return false, nil
	}

	var deleted bool
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		ok, err := s.repo.Delete(txCtx, in.ID)
		if err != nil {
			return err
		}
		deleted = ok
		return nil
	}); err != nil {
		return false, err
	}

	return deleted, nil
}

func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func normalizeOrder(order Order) Order {
	if !IsSortable(order.Column) {
		return DefaultOrder
	}
	return order
}

func normalizeDepartmentFilter(department *string) *string {
	if department == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*department)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
