package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/storelist/internal/middleware"
	"github.com/hitoshi/storelist/internal/model"
)

// maxLoginBodyBytes はログインフォームのボディ上限。
const maxLoginBodyBytes = 64 << 10

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Login(ctx context.Context, username, password string) (*model.Session, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (string, bool, error)
}

// CookieSigner はセッショントークンのCookie値への署名と検証を行う。security.CookieSignerが実装する。
type CookieSigner interface {
	Sign(value string) string
	Verify(signed string) (string, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieSecure bool
}

// AuthHandler はログイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	signer   CookieSigner
	renderer PageRenderer
	config   AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, signer CookieSigner, renderer PageRenderer, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		signer:   signer,
		renderer: renderer,
		config:   config,
	}
}

// LoginPage はログインフォームを返す。
// GET /login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, r, http.StatusOK, func(w io.Writer) error {
		return h.renderer.Login(w, "", "")
	})
}

// Login は資格情報を検証し、成功すれば署名付きセッションCookieを設定してトップページへリダイレクトする。
// 失敗時は401でエラーメッセージ付きのログインフォームを返す。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLoginBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeHTML(w, r, http.StatusBadRequest, func(w io.Writer) error {
			return h.renderer.Login(w, "Malformed login request.", "")
		})
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	session, err := h.service.Login(r.Context(), username, password)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeInvalidCredentials {
			writeHTML(w, r, http.StatusUnauthorized, func(w io.Writer) error {
				return h.renderer.Login(w, apiErr.Message, username)
			})
			return
		}

		slog.Error("login failed",
			slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
			slog.String("error", err.Error()),
		)
		writeHTML(w, r, http.StatusInternalServerError, func(w io.Writer) error {
			return h.renderer.Login(w, "Login is temporarily unavailable. Please try again later.", username)
		})
		return
	}

	http.SetCookie(w, h.sessionCookie(h.signer.Sign(session.Token), 0))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout はセッションを破棄してCookieをクリアし、トップページへリダイレクトする。
// セッションがなくても同じ応答を返す。
// GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionTokenFromContext(r.Context()); token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			// 破棄に失敗してもCookieはクリアする
			slog.Error("failed to logout",
				slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
				slog.String("error", err.Error()),
			)
		}
	}

	http.SetCookie(w, h.sessionCookie("", -1))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// sessionCookie はauthToken Cookieを生成する。maxAgeが0の場合はブラウザセッションCookieになる。
func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
