package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Health はDB接続を確認し、結果をプレーンテキストで返す。
// GET /health
func Health(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := checker.PingContext(ctx); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("unavailable\n"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	}
}
