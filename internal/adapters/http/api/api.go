package api

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/ogurasousui/employee-registry/internal/core/employee"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// Pinger はデータベース疎通確認の抽象化です。*pgxpool.Pool が満たします。
type Pinger interface {
	Ping(ctx context.Context) error
}

// PageRenderer はサーバーサイドで描画する画面です。
type PageRenderer interface {
	Index(ctx *fasthttp.RequestCtx)
}

// ServiceDeps は HTTP サービスの依存関係です。Pinger, Pages, StaticDir は省略できます。
type ServiceDeps struct {
	Employees   employee.UseCase
	Pinger      Pinger
	Pages       PageRenderer
	Logger      zerolog.Logger
	CORSOrigins []string
	StaticDir   string
}

// Service は社員 API のルーティングとハンドラを保持します。
type Service struct {
	r *router.Router

	employees   employee.UseCase
	pinger      Pinger
	pages       PageRenderer
	logger      zerolog.Logger
	corsOrigins []string
	staticDir   string
}

// NewService はルートを登録した Service を生成します。
func NewService(d ServiceDeps) *Service {
	s := &Service{
		r:           router.New(),
		employees:   d.Employees,
		pinger:      d.Pinger,
		pages:       d.Pages,
		logger:      d.Logger,
		corsOrigins: d.CORSOrigins,
		staticDir:   d.StaticDir,
	}

	s.mountRoutes()

	return s
}

// Handler はミドルウェアを適用したリクエストハンドラを返します。
func (s *Service) Handler() fasthttp.RequestHandler {
	return RecoveryMiddleware(s.logger, LoggingMiddleware(s.logger, CORS(s.corsOrigins, s.r.Handler)))
}

func (s *Service) mountRoutes() {
	// 旧フロントエンドは /api 配下を参照します。
	for _, prefix := range []string{"", "/api"} {
		s.mountEmployeeRoutes(prefix)
	}

	s.r.GET("/healthz", s.healthHandler)
	s.r.GET("/readyz", s.readyHandler)

	if s.pages != nil {
		s.r.GET("/", s.pages.Index)
	}

	if s.staticDir != "" {
		s.r.ServeFiles("/static/{filepath:*}", s.staticDir)
	}
}

func (s *Service) mountEmployeeRoutes(prefix string) {
	s.r.GET(prefix+"/employees", s.listEmployees)
	s.r.POST(prefix+"/employees", s.createEmployee)
	s.r.GET(prefix+"/employees/{id}", s.getEmployee)
	s.r.PUT(prefix+"/employees/{id}", s.updateEmployee)
	s.r.DELETE(prefix+"/employees/{id}", s.deleteEmployee)
}
