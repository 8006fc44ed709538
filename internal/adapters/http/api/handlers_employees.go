package api

import (
	"context"

	"github.com/ogurasousui/employee-registry/internal/core/employee"
	"github.com/valyala/fasthttp"
)

// listEmployees は GET /employees です。
func (s *Service) listEmployees(ctx *fasthttp.RequestCtx) {
	result, err := s.employees.ListEmployees(detach(ctx), parseListParams(ctx.QueryArgs()))
	if err != nil {
		s.writeServiceError(ctx, "ListEmployees", err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, toListResponse(result))
}

// getEmployee は GET /employees/{id} です。
func (s *Service) getEmployee(ctx *fasthttp.RequestCtx) {
	id, ok := parseID(ctx)
	if !ok {
		writeError(ctx, fasthttp.StatusNotFound, codeNotFound, msgNotFound)
		return
	}

	found, err := s.employees.GetEmployee(detach(ctx), employee.GetEmployeeInput{ID: id})
	if err != nil {
		s.writeServiceError(ctx, "GetEmployee", err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, toEmployeeResponse(found))
}

// createEmployee は POST /employees です。
func (s *Service) createEmployee(ctx *fasthttp.RequestCtx) {
	body, err := decodeObject(ctx.PostBody())
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, codeValidation, msgBodyNotObject)
		return
	}

	in, err := employee.ValidateCreate(body)
	if err != nil {
		s.writeServiceError(ctx, "ValidateCreate", err)
		return
	}

	created, err := s.employees.CreateEmployee(detach(ctx), in)
	if err != nil {
		s.writeServiceError(ctx, "CreateEmployee", err)
		return
	}

	writeJSON(ctx, fasthttp.StatusCreated, toEmployeeResponse(created))
}

// updateEmployee は PUT /employees/{id} です。ボディに含まれるフィールドだけを更新します。
func (s *Service) updateEmployee(ctx *fasthttp.RequestCtx) {
	id, ok := parseID(ctx)
	if !ok {
		writeError(ctx, fasthttp.StatusNotFound, codeNotFound, msgNotFound)
		return
	}

	body, err := decodeObject(ctx.PostBody())
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, codeValidation, msgBodyNotObject)
		return
	}

	patch, err := employee.ValidateUpdate(body)
	if err != nil {
		s.writeServiceError(ctx, "ValidateUpdate", err)
		return
	}

	updated, err := s.employees.UpdateEmployee(detach(ctx), employee.UpdateEmployeeInput{ID: id, Patch: patch})
	if err != nil {
		s.writeServiceError(ctx, "UpdateEmployee", err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, toEmployeeResponse(updated))
}

// deleteEmployee は DELETE /employees/{id} です。
func (s *Service) deleteEmployee(ctx *fasthttp.RequestCtx) {
	id, ok := parseID(ctx)
	if !ok {
		writeError(ctx, fasthttp.StatusNotFound, codeNotFound, msgNotFound)
		return
	}

	deleted, err := s.employees.DeleteEmployee(detach(ctx), employee.DeleteEmployeeInput{ID: id})
	if err != nil {
		s.writeServiceError(ctx, "DeleteEmployee", err)
		return
	}
	if !deleted {
		writeError(ctx, fasthttp.StatusNotFound, codeNotFound, msgNotFound)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, deleteResponse{Deleted: true})
}

// detach はサーバー停止で RequestCtx が完了しても、実行中のユースケースを打ち切らないようにします。
// リクエストスコープの値は引き継がれます。
func detach(ctx *fasthttp.RequestCtx) context.Context {
	return context.WithoutCancel(ctx)
}
