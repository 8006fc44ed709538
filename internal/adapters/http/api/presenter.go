package api

import (
	"encoding/json"

	"github.com/ogurasousui/employee-registry/internal/core/employee"
)

const dateLayout = "2006-01-02"

type employeeResponse struct {
	ID         int64        `json:"id"`
	FirstName  string       `json:"first_name"`
	LastName   string       `json:"last_name"`
	Email      string       `json:"email"`
	Phone      *string      `json:"phone"`
	Department *string      `json:"department"`
	Title      *string      `json:"title"`
	Salary     *json.Number `json:"salary"`
	DateHired  *string      `json:"date_hired"`
	IsActive   bool         `json:"is_active"`
	FullName   string       `json:"full_name"`
}

type listResponse struct {
	Data   []employeeResponse `json:"data"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

func toEmployeeResponse(e *employee.Employee) employeeResponse {
	resp := employeeResponse{
		ID:         e.ID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Email:      e.Email,
		Phone:      e.Phone,
		Department: e.Department,
		Title:      e.Title,
		IsActive:   e.IsActive,
		FullName:   e.FullName(),
	}

	if e.Salary != nil {
		n := json.Number(e.Salary.StringFixed(2))
		resp.Salary = &n
	}

	if e.DateHired != nil {
		d := e.DateHired.Format(dateLayout)
		resp.DateHired = &d
	}

	return resp
}

func toListResponse(result *employee.ListEmployeesResult) listResponse {
	data := make([]employeeResponse, 0, len(result.Employees))
	for _, e := range result.Employees {
		data = append(data, toEmployeeResponse(e))
	}

	return listResponse{
		Data:   data,
		Total:  result.Total,
		Limit:  result.Limit,
		Offset: result.Offset,
	}
}
