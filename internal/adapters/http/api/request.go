package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/ogurasousui/employee-registry/internal/core/employee"
	"github.com/valyala/fasthttp"
)

const msgBodyNotObject = "request body must be a JSON object"

var errBodyNotObject = errors.New(msgBodyNotObject)

// decodeObject はリクエストボディを JSON オブジェクトとしてデコードします。
// 数値は json.Number のまま保持し、salary の精度を落としません。
func decodeObject(body []byte) (employee.Input, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var in map[string]any
	if err := dec.Decode(&in); err != nil || in == nil {
		return nil, errBodyNotObject
	}

	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errBodyNotObject
	}

	return employee.Input(in), nil
}

// parseID はパスの {id} を解釈します。数値でなければ false を返します。
func parseID(ctx *fasthttp.RequestCtx) (int64, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseListParams は一覧取得のクエリを解釈します。不正な値はエラーにせず既定値または範囲内に丸めます。
func parseListParams(args *fasthttp.Args) employee.ListEmployeesInput {
	in := employee.ListEmployeesInput{
		Query:  string(args.Peek("q")),
		Limit:  employee.DefaultListLimit,
		Offset: 0,
		Order:  employee.DefaultOrder,
	}

	if args.Has("department") {
		department := string(args.Peek("department"))
		in.Department = &department
	}

	in.IsActive = parseBoolParam(string(args.Peek("is_active")))

	if raw := strings.TrimSpace(string(args.Peek("limit"))); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			in.Limit = min(max(limit, 1), employee.MaxListLimit)
		}
	}

	if raw := strings.TrimSpace(string(args.Peek("offset"))); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil {
			in.Offset = max(offset, 0)
		}
	}

	if order, err := employee.ParseOrder(string(args.Peek("order_by"))); err == nil {
		in.Order = order
	}

	return in
}

func parseBoolParam(raw string) *bool {
	var v bool
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		v = true
	case "0", "false", "no", "off":
		v = false
	default:
		return nil
	}
	return &v
}
