// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"
)

// SessionCookieName はセッショントークンを保持するCookie名。
const SessionCookieName = "authToken"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	usernameContextKey = contextKey("username")
	tokenContextKey    = contextKey("session_token")
)

// CookieVerifier は署名付きCookie値を検証し、元の値を取り出す。
// security.CookieSignerが実装する。
type CookieVerifier interface {
	Verify(signed string) (string, error)
}

// SessionResolver はセッショントークンからユーザー名を解決する。
// auth.Serviceが実装する。
type SessionResolver interface {
	CurrentUser(ctx context.Context, token string) (string, bool, error)
}

// NewSessionMiddleware はauthToken Cookieを検証し、セッションが有効であれば
// ユーザー名とトークンをリクエストコンテキストに注入するミドルウェアを返す。
// 未認証リクエストはそのまま通過させる。拒否はRequireAPI/RequirePageが行う。
func NewSessionMiddleware(verifier CookieVerifier, resolver SessionResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, err := verifier.Verify(cookie.Value)
			if err != nil {
				slog.Warn("rejected session cookie",
					slog.String("request_id", RequestIDFromContext(r.Context())),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			username, found, err := resolver.CurrentUser(r.Context(), token)
			if err != nil {
				slog.Error("failed to resolve session",
					slog.String("request_id", RequestIDFromContext(r.Context())),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), tokenContextKey, token)
			if found {
				ctx = context.WithValue(ctx, usernameContextKey, username)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAPI は未認証リクエストに401 JSONを返すミドルウェア。
// /api/* の変更系ルートで使用する。
func RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UsernameFromContext(r.Context()); !ok {
			WriteUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePage は未認証リクエストをloginPathへ303でリダイレクトするミドルウェアを返す。
// HTMLページのルートで使用する。
func RequirePage(loginPath string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UsernameFromContext(r.Context()); !ok {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UsernameFromContext は認証済みユーザー名を取得する。
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameContextKey).(string)
	return username, ok && username != ""
}

// SessionTokenFromContext は検証済みのセッショントークンを取得する。
// セッションが既に破棄されていてもCookieの署名が正しければ返す。
func SessionTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// ContextWithUsername はコンテキストにユーザー名を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameContextKey, username)
}
