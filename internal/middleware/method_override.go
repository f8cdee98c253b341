package middleware

import (
	"net/http"
	"strings"
)

// MethodOverrideParam はHTMLフォームから実メソッドを指定するクエリパラメータ名。
const MethodOverrideParam = "_method"

// NewMethodOverrideMiddleware はPOSTリクエストの ?_method=PUT|DELETE を
// 実際のHTTPメソッドとして扱うミドルウェアを返す。
// ルーティングより前に適用する必要がある。
func NewMethodOverrideMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				switch m := strings.ToUpper(r.URL.Query().Get(MethodOverrideParam)); m {
				case http.MethodPut, http.MethodDelete:
					r.Method = m
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
