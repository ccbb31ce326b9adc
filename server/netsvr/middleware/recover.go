package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/zintix-labs/casinolab/errs"
	"github.com/zintix-labs/casinolab/server/httperr"
)

// Recover 攔截 handler panic，記錄 stack 後回 500 JSON。
// 結算中的 panic 已由機台池處理，這裡只兜住邊界層自己的錯誤。
func Recover(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rv := recover()
				if rv == nil {
					return
				}
				if rv == http.ErrAbortHandler {
					panic(rv)
				}
				if log != nil {
					log.Error("http.panic",
						slog.Any("panic", rv),
						slog.String("path", r.URL.Path),
						slog.String("req_id", GetReqId(r)),
						slog.String("stack", string(debug.Stack())),
					)
				}
				httperr.Errs(w, errs.NewFatal("internal error"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
