package web

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/ogurasousui/employee-registry/assets"
	"github.com/ogurasousui/employee-registry/internal/core/employee"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const (
	pageSize     = 25
	templateName = "employees.html"
	dateLayout   = "2006-01-02"
)

// Handler は社員一覧画面を描画します。データは API と同じユースケースから取得します。
type Handler struct {
	employees     employee.UseCase
	tmpl          *template.Template
	logger        zerolog.Logger
	staticEnabled bool
}

// NewHandler は埋め込みテンプレートを読み込んだ Handler を生成します。
func NewHandler(uc employee.UseCase, logger zerolog.Logger, staticEnabled bool) (*Handler, error) {
	tmpl, err := template.ParseFS(assets.Templates, "templates/"+templateName)
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}

	return &Handler{
		employees:     uc,
		tmpl:          tmpl,
		logger:        logger,
		staticEnabled: staticEnabled,
	}, nil
}

type row struct {
	ID         int64
	FullName   string
	Email      string
	Phone      string
	Department string
	Title      string
	Salary     string
	DateHired  string
	IsActive   bool
}

type pageData struct {
	Query         string
	Department    string
	Rows          []row
	Total         int
	Page          int
	Pages         int
	PrevURL       string
	NextURL       string
	StaticEnabled bool
}

// Index は GET / です。q, department, page クエリを受け付けます。
func (h *Handler) Index(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	query := strings.TrimSpace(string(args.Peek("q")))
	department := strings.TrimSpace(string(args.Peek("department")))

	page, err := strconv.Atoi(string(args.Peek("page")))
	if err != nil || page < 1 {
		page = 1
	}

	in := employee.ListEmployeesInput{
		Query:  query,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
		Order:  employee.DefaultOrder,
	}
	if department != "" {
		in.Department = &department
	}

	// サーバー停止中でも描画途中の一覧取得は完了させます。
	result, err := h.employees.ListEmployees(context.WithoutCancel(ctx), in)
	if err != nil {
		h.logger.Error().Err(err).Msg("render employee page")
		ctx.Error("Internal Server Error", fasthttp.StatusInternalServerError)
		return
	}

	data := pageData{
		Query:         query,
		Department:    department,
		Rows:          make([]row, 0, len(result.Employees)),
		Total:         result.Total,
		Page:          page,
		Pages:         max(1, (result.Total+pageSize-1)/pageSize),
		StaticEnabled: h.staticEnabled,
	}

	for _, e := range result.Employees {
		data.Rows = append(data.Rows, toRow(e))
	}

	if page > 1 {
		data.PrevURL = pageURL(query, department, page-1)
	}
	if page*pageSize < result.Total {
		data.NextURL = pageURL(query, department, page+1)
	}

	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, templateName, data); err != nil {
		h.logger.Error().Err(err).Msg("execute employee template")
		ctx.Error("Internal Server Error", fasthttp.StatusInternalServerError)
		return
	}

	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(buf.Bytes())
}

func toRow(e *employee.Employee) row {
	r := row{
		ID:       e.ID,
		FullName: e.FullName(),
		Email:    e.Email,
		IsActive: e.IsActive,
	}
	if e.Phone != nil {
		r.Phone = *e.Phone
	}
	if e.Department != nil {
		r.Department = *e.Department
	}
	if e.Title != nil {
		r.Title = *e.Title
	}
	if e.Salary != nil {
		r.Salary = e.Salary.StringFixed(2)
	}
	if e.DateHired != nil {
		r.DateHired = e.DateHired.Format(dateLayout)
	}
	return r
}

func pageURL(query, department string, page int) string {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	if department != "" {
		v.Set("department", department)
	}
	v.Set("page", strconv.Itoa(page))
	return "/?" + v.Encode()
}
