package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/storelist/internal/database"
	"github.com/hitoshi/storelist/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// 横断的関心事
	Logger            *slog.Logger
	StatusRecorder    middleware.HTTPStatusRecorder // nilの場合は記録しない
	MetricsHandler    http.Handler                  // nilの場合は/metricsを公開しない
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	DB                database.Pinger

	// 認証
	AuthService  AuthServiceInterface
	CookieSigner CookieSigner
	AuthConfig   AuthHandlerConfig

	// 店舗
	StoreService StoreServiceInterface

	// ページ
	Renderer     PageRenderer
	StaticAssets http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Session → Logging → Recovery → SecurityHeaders → CORS → MethodOverride → RateLimit(General)
//
// 変更系API（POST/PUT/DELETE /api/stores）には RequireAPI → RateLimit(Write) を追加し、
// 認証が必要なページ（/add, /edit/{id}）には RequirePage を追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewSessionMiddleware(deps.CookieSigner, deps.AuthService))
	r.Use(middleware.NewLoggingMiddleware(logger, deps.StatusRecorder))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewMethodOverrideMiddleware())
	r.Use(deps.RateLimiter.GeneralMiddleware())

	storeHandler := NewStoreHandler(deps.StoreService)
	pageHandler := NewPageHandler(deps.Renderer, deps.StoreService)
	authHandler := NewAuthHandler(deps.AuthService, deps.CookieSigner, deps.Renderer, deps.AuthConfig)

	// --- 認証不要のルート ---
	r.Get("/", pageHandler.Home)
	r.Get("/health", HealthHandler(deps.DB))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
	if deps.StaticAssets != nil {
		r.Method(http.MethodGet, "/styles.css", deps.StaticAssets)
		r.Method(http.MethodGet, "/script.js", deps.StaticAssets)
	}

	r.Get("/login", authHandler.LoginPage)
	r.Post("/login", authHandler.Login)
	r.Get("/logout", authHandler.Logout)

	// 店舗API
	r.Route("/api/stores", func(r chi.Router) {
		r.Get("/", storeHandler.ListStores)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAPI)
			r.Use(deps.RateLimiter.WriteMiddleware())

			r.Post("/", storeHandler.CreateStore)
			r.Put("/{id}", storeHandler.UpdateStore)
			r.Delete("/{id}", storeHandler.DeleteStore)
		})
	})

	// --- 認証が必要なページ ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePage("/login"))

		r.Get("/add", pageHandler.AddForm)
		r.Get("/edit/{id}", pageHandler.EditForm)
	})

	r.NotFound(pageHandler.NotFound)

	return r
}
