package api

import (
	"encoding/json"
	"errors"

	"github.com/ogurasousui/employee-registry/internal/core/employee"
	"github.com/valyala/fasthttp"
)

const (
	codeValidation = "validation_error"
	codeConflict   = "conflict"
	codeNotFound   = "not_found"
	codeInternal   = "internal_error"

	msgEmailExists = "Email already exists"
	msgNotFound    = "Employee not found"
	msgInternal    = "Internal server error"
)

type errorResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

func writeJSON(ctx *fasthttp.RequestCtx, statusCode int, body any) {
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.SetStatusCode(statusCode)

	_ = json.NewEncoder(ctx).Encode(body)
}

func writeError(ctx *fasthttp.RequestCtx, httpStatus int, code, detail string) {
	writeJSON(ctx, httpStatus, errorResponse{Code: code, Detail: detail})
}

// toHTTPError はユースケースのエラーを HTTP ステータスとレスポンスに変換します。
// 分類できないエラーの詳細はクライアントへ返しません。
func toHTTPError(err error) (int, errorResponse) {
	var validationErr *employee.ValidationError

	switch {
	case errors.As(err, &validationErr):
		return fasthttp.StatusBadRequest, errorResponse{Code: codeValidation, Detail: validationErr.Error()}
	case errors.Is(err, employee.ErrEmailAlreadyExists):
		return fasthttp.StatusBadRequest, errorResponse{Code: codeConflict, Detail: msgEmailExists}
	case errors.Is(err, employee.ErrEmployeeNotFound):
		return fasthttp.StatusNotFound, errorResponse{Code: codeNotFound, Detail: msgNotFound}
	default:
		return fasthttp.StatusInternalServerError, errorResponse{Code: codeInternal, Detail: msgInternal}
	}
}

func (s *Service) writeServiceError(ctx *fasthttp.RequestCtx, op string, err error) {
	status, body := toHTTPError(err)
	if status == fasthttp.StatusInternalServerError {
		s.logger.Error().
			Err(err).
			Str("request_id", requestID(ctx)).
			Str("op", op).
			Msg("employee operation failed")
	}
	writeJSON(ctx, status, body)
}
