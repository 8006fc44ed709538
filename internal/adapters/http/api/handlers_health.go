package api

import (
	"context"
	"time"

	"github.com/valyala/fasthttp"
)

const readinessTimeout = 2 * time.Second

// healthHandler はプロセスの生存確認です。データベースには触れません。
func (s *Service) healthHandler(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, statusResponse{Status: "ok"})
}

// readyHandler はデータベースへ疎通できるかを返します。
func (s *Service) readyHandler(ctx *fasthttp.RequestCtx) {
	if s.pinger == nil {
		writeJSON(ctx, fasthttp.StatusOK, statusResponse{Status: "ok"})
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	if err := s.pinger.Ping(pingCtx); err != nil {
		s.logger.Warn().Err(err).Str("request_id", requestID(ctx)).Msg("readiness check failed")
		writeJSON(ctx, fasthttp.StatusServiceUnavailable, statusResponse{Status: "unavailable"})
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, statusResponse{Status: "ok"})
}
