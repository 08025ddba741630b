package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/muebles/internal/auth"
	"github.com/hitoshi/muebles/internal/catalog"
	"github.com/hitoshi/muebles/internal/config"
	"github.com/hitoshi/muebles/internal/credential"
	"github.com/hitoshi/muebles/internal/database"
	"github.com/hitoshi/muebles/internal/handler"
	"github.com/hitoshi/muebles/internal/logger"
	"github.com/hitoshi/muebles/internal/metrics"
	"github.com/hitoshi/muebles/internal/middleware"
	"github.com/hitoshi/muebles/internal/repository"
	"github.com/hitoshi/muebles/internal/security"
	"github.com/hitoshi/muebles/internal/session"
	"github.com/hitoshi/muebles/internal/user"
	"github.com/hitoshi/muebles/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再設定
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

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
			port = "5000"
		}
		return runHealthcheck(context.Background(), fmt.Sprintf("http://localhost:%s", port))
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
		slog.Bool("oauth_enabled", cfg.OAuthEnabled()),
	)

	switch cmd {
	case CommandInitDB:
		return runInitDB(cfg)
	default:
		return runServe(cfg)
	}
}

// application は起動に必要な構成済みの依存関係を保持する。
type application struct {
	db      *sql.DB
	handler http.Handler
	cleanup *cleanup.CleanupJob
}

// openDatabase はDBを開き、スキーマと初期データを用意する。
func openDatabase(ctx context.Context, cfg *config.Config, hasher *credential.Hasher) (*sql.DB, error) {
	db, err := database.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.Bootstrap(ctx, db, hasher); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("database ready", slog.String("path", cfg.DatabasePath))
	return db, nil
}

// newApplication はDB接続を開き、全依存関係をワイヤリングする。
func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	hasher := credential.NewHasher(bcrypt.DefaultCost)

	// 1. DB接続とスキーマ初期化
	db, err := openDatabase(ctx, cfg, hasher)
	if err != nil {
		return nil, err
	}

	// 2. リポジトリの初期化
	userRepo := repository.NewSQLiteUserRepo(db)
	productRepo := repository.NewSQLiteProductRepo(db)
	sessionRepo := repository.NewSQLiteSessionRepo(db)

	// 3. ドメインサービスの初期化
	userService := user.NewService(userRepo, hasher)
	catalogService := catalog.NewService(productRepo, security.NewDescriptionSanitizer())

	var provider auth.IdentityProvider
	if cfg.OAuthEnabled() {
		provider = auth.NewGoogleProvider(auth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			HTTPClient:   security.NewOutboundClient(10 * time.Second),
		})
	} else {
		slog.Warn("GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET is not set, Google login is disabled")
	}
	authService := auth.NewService(provider)

	// 4. セッション管理
	sessions := session.NewManager(sessionRepo, session.Config{
		Secret:       cfg.SessionSecret,
		MaxAge:       time.Duration(cfg.SessionMaxAge) * time.Second,
		CookieSecure: cfg.CookieSecure,
	})

	// 5. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 6. ルーターの構築
	router, err := handler.NewRouter(&handler.RouterDeps{
		Sessions: sessions,
		CSRF:     middleware.CSRFConfig{CookieSecure: cfg.CookieSecure},
		Logger:   slog.Default(),

		UserService:    userService,
		CatalogService: catalogService,
		AuthService:    authService,

		Metrics:        collector,
		MetricsHandler: metrics.Handler(registry),
		HealthChecker:  db,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &application{
		db:      db,
		handler: router,
		cleanup: cleanup.NewCleanupJob(sessionRepo, slog.Default()),
	}, nil
}

// runServe はWebサーバーモードで起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.db.Close()

	// 期限切れセッションの削除をバックグラウンドで実行
	go app.cleanup.Start(ctx)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("web server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down web server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("web server stopped gracefully")
	return nil
}

// runInitDB はスキーマ作成と初期データ投入のみを行う。
func runInitDB(cfg *config.Config) error {
	db, err := openDatabase(context.Background(), cfg, credential.NewHasher(bcrypt.DefaultCost))
	if err != nil {
		return err
	}
	return db.Close()
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(ctx context.Context, baseURL string) error {
	resp, err := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5 * time.Second).
		R().
		SetContext(ctx).
		Get("/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode())
	}

	return nil
}
