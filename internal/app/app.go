package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/text/language"

	"github.com/hitoshi/storelist/internal/auth"
	"github.com/hitoshi/storelist/internal/config"
	"github.com/hitoshi/storelist/internal/database"
	"github.com/hitoshi/storelist/internal/handler"
	"github.com/hitoshi/storelist/internal/importer"
	"github.com/hitoshi/storelist/internal/logger"
	"github.com/hitoshi/storelist/internal/metrics"
	"github.com/hitoshi/storelist/internal/middleware"
	"github.com/hitoshi/storelist/internal/repository"
	"github.com/hitoshi/storelist/internal/security"
	"github.com/hitoshi/storelist/internal/session"
	"github.com/hitoshi/storelist/internal/store"
	"github.com/hitoshi/storelist/internal/web"
)

const (
	startupPingTimeout = 5 * time.Second
	shutdownTimeout    = 30 * time.Second
)

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップしてから環境変数のConfigを読み込み、LOG_LEVELを反映する。
// wが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 設定読み込み前にログを使えるようにする
	logger.SetupDefault(w, slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.SetupDefault(w, level)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "3001"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandImport:
		path := commandArg(args, 0)
		if path == "" {
			path = cfg.ImportFile
		}
		return runImport(ctx, cfg, path)
	default:
		return runServe(ctx, cfg)
	}
}

// openDatabase はDB接続を開き、疎通を確認する。
func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database %s: %w", maskDatabaseURL(cfg.DatabaseURL), err)
	}

	slog.Info("database connection established")
	return db, nil
}

// newSessionStore はSESSION_BACKENDに応じたセッションストアを生成する。
// 返されるclose関数はバックエンドの接続を解放する。
func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, func() error, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		client, err := session.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}

		pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		slog.Info("session store ready", slog.String("backend", config.SessionBackendRedis))
		return session.NewRedisStore(client, ""), client.Close, nil
	default:
		slog.Info("session store ready", slog.String("backend", config.SessionBackendMemory))
		return session.NewMemoryStore(), func() error { return nil }, nil
	}
}

// newMetricsRegistry はアプリケーションとランタイムのメトリクスを登録したレジストリを返す。
func newMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// buildHandler は全依存関係をワイヤリングしてルーターを返す。
// 返されるstop関数はレートリミッターのバックグラウンド処理を止める。
func buildHandler(cfg *config.Config, db *sql.DB, sessions session.Store, reg *prometheus.Registry) (http.Handler, func(), error) {
	locale, err := language.Parse(cfg.SortLocale)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid SORT_LOCALE %q: %w", cfg.SortLocale, err)
	}

	signer, err := security.NewCookieSigner(cfg.CookieSecret)
	if err != nil {
		return nil, nil, err
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, nil, err
	}

	collector := metrics.NewCollector(reg)

	storeService := store.NewService(
		repository.NewPostgresStoreRepo(db),
		store.NewSorter(locale),
		collector,
	)
	authService := auth.NewService(
		auth.Credentials{Username: cfg.AdminUsername, Password: cfg.AdminPassword},
		sessions,
		collector,
	)

	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitWrite),
	)

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		StatusRecorder:    collector,
		MetricsHandler:    metrics.Handler(reg),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		DB:                db,

		AuthService:  authService,
		CookieSigner: signer,
		AuthConfig:   handler.AuthHandlerConfig{CookieSecure: cfg.CookieSecure},

		StoreService: storeService,

		Renderer:     renderer,
		StaticAssets: web.StaticHandler(),
	})

	return router, rateLimiter.Stop, nil
}

// runServe はHTTPサーバーモードで起動する。
// ctxがキャンセルされる（SIGINT/SIGTERM）とグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	sessions, closeSessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	router, stopRouter, err := buildHandler(cfg, db, sessions, newMetricsRegistry())
	if err != nil {
		return err
	}
	defer stopRouter()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("HTTP server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrationsWithVersion(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully", slog.Uint64("version", uint64(version)))
	return nil
}

// runImport はpathのJSONファイルから店舗データを投入する。
// 既存の店舗はすべて削除される。
func runImport(ctx context.Context, cfg *config.Config, path string) error {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("importing stores", slog.String("path", path))

	res, err := importer.New(repository.NewPostgresStoreRepo(db), nil).ImportFile(ctx, path)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	if res.Inserted == 0 && res.Total > 0 {
		return fmt.Errorf("import failed: none of %d stores could be inserted", res.Total)
	}
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	target := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
// URLとして解釈できない場合は全体を伏せる。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
