package middleware

import (
	"net/http"
	"strings"

	chimid "github.com/go-chi/chi/v5/middleware"
)

// RequestID 產生(或沿用上游的) request id，並回寫到回應 header 方便對 log
func RequestID(next http.Handler) http.Handler {
	return chimid.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(chimid.RequestIDHeader, GetReqId(r))
		next.ServeHTTP(w, r)
	}))
}

// RealIP 以 X-Forwarded-For / X-Real-IP 改寫 RemoteAddr，限流與 access log 都依賴它
func RealIP(next http.Handler) http.Handler {
	return chimid.RealIP(next)
}

func GetReqId(r *http.Request) string {
	return chimid.GetReqID(r.Context())
}

func GetReqIdNumPart(r *http.Request) string {
	str := chimid.GetReqID(r.Context())
	if len(str) == 0 {
		return ""
	}
	i := strings.LastIndex(str, "-")
	if i < 0 || i+1 >= len(str) {
		return str
	}
	return str[i+1:]
}
