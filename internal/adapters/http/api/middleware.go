package api

import (
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request-id"
)

// RecoveryMiddleware は panic を 500 に変換し、スタックトレースを記録します。
func RecoveryMiddleware(logger zerolog.Logger, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		defer func() {
			if rvr := recover(); rvr != nil {
				logger.Error().
					Interface("panic", rvr).
					Str("request_id", requestID(ctx)).
					Bytes("method", ctx.Method()).
					Str("url", ctx.URI().String()).
					Str("remote_addr", ctx.RemoteAddr().String()).
					Str("stack_trace", string(debug.Stack())).
					Msg("recovered from panic")

				ctx.ResetBody()
				writeError(ctx, fasthttp.StatusInternalServerError, codeInternal, msgInternal)
			}
		}()

		next(ctx)
	}
}

// LoggingMiddleware はリクエストごとに request_id を払い出し、完了時に 1 行記録します。
// X-Request-ID ヘッダが送られてきた場合はその値を引き継ぎます。
func LoggingMiddleware(logger zerolog.Logger, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id := strings.TrimSpace(string(ctx.Request.Header.Peek(requestIDHeader)))
		if id == "" {
			id = uuid.New().String()
		}
		ctx.SetUserValue(requestIDKey, id)
		ctx.Response.Header.Set(requestIDHeader, id)

		begin := time.Now()
		next(ctx)

		logger.Info().
			Str("request_id", id).
			Bytes("method", ctx.Method()).
			Bytes("path", ctx.Path()).
			Int("status", ctx.Response.StatusCode()).
			Dur("latency", time.Since(begin)).
			Msg("completed request")
	}
}

// CORS は許可されたオリジンにだけ CORS ヘッダを付与します。"*" は全オリジンを許可しますが、
// Access-Control-Allow-Credentials は明示的に列挙されたオリジンにだけ返します。
// プリフライトの OPTIONS には 204 を返します。
func CORS(allowedOrigins []string, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
			continue
		}
		allowed[o] = struct{}{}
	}

	return func(ctx *fasthttp.RequestCtx) {
		origin := string(ctx.Request.Header.Peek("Origin"))
		if origin != "" {
			_, listed := allowed[origin]
			if listed || allowAll {
				ctx.Response.Header.Set("Access-Control-Allow-Origin", origin)
				// "*" による許可では資格情報付きリクエストを認めません。
				if listed {
					ctx.Response.Header.Set("Access-Control-Allow-Credentials", "true")
				}
				ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
				ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
				ctx.Response.Header.Add("Vary", "Origin")
			}
		}

		if ctx.IsOptions() {
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}

		next(ctx)
	}
}

func requestID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue(requestIDKey).(string)
	return id
}
