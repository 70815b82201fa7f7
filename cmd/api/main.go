package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-marketplace/internal/api"
	"github.com/sanosuguru/go-ticket-marketplace/internal/api/handler"
	"github.com/sanosuguru/go-ticket-marketplace/internal/api/middleware"
	"github.com/sanosuguru/go-ticket-marketplace/internal/application"
	"github.com/sanosuguru/go-ticket-marketplace/internal/config"
	"github.com/sanosuguru/go-ticket-marketplace/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-ticket-marketplace/internal/infrastructure/redis"
	"github.com/sanosuguru/go-ticket-marketplace/internal/ledger"
	"github.com/sanosuguru/go-ticket-marketplace/internal/pkg/logger"
	"github.com/sanosuguru/go-ticket-marketplace/internal/pkg/metrics"
	"github.com/sanosuguru/go-ticket-marketplace/internal/worker"
)

func main() {
	cfg := config.Load()

	logger.Set(logger.NewLogger(cfg.Env))
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	m := metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ジャーナル（任意）。有効なら起動時に全件を再生してから受け付ける
	var ledgerOpts []ledger.Option
	var db *sqlx.DB
	if cfg.Database.Enabled {
		var err error
		db, err = postgres.NewConnection(&cfg.Database)
		if err != nil {
			log.Fatal("データベース接続に失敗", zap.Error(err))
		}
		defer db.Close()

		if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
			log.Fatal("マイグレーションに失敗", zap.Error(err))
		}
		ledgerOpts = append(ledgerOpts, ledger.WithJournal(postgres.NewJournalRepository(db)))
	}

	l := ledger.New(ledgerOpts...)
	if db != nil {
		if err := restoreLedger(ctx, l, postgres.NewJournalRepository(db)); err != nil {
			log.Fatal("ジャーナルの再生に失敗", zap.Error(err))
		}
	}

	// Redis（任意）。イベントキャッシュとスイープ用ロックに使う
	var (
		cache  application.EventCache
		locker worker.Locker
	)
	if cfg.Redis.Enabled {
		client, err := redisinfra.NewClient(&cfg.Redis)
		if err != nil {
			log.Fatal("Redis接続に失敗", zap.Error(err))
		}
		defer func(c *goredis.Client) { _ = c.Close() }(client)

		cache = redisinfra.NewEventCache(client)
		locker = redisinfra.NewLockManager(client, m)
	}

	// サービス
	eventService := application.NewEventService(l, cache, cfg.Redis.EventCacheTTL, m)
	ticketService := application.NewTicketService(l, cache, m)
	resaleService := application.NewResaleService(l, m)
	refundService := application.NewRefundService(l, m)

	// Echo インスタンス作成
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	middleware.SetupMiddleware(e, cfg.Server)
	handler.RegisterRoutes(e, handler.Handlers{
		Event:     handler.NewEventHandler(eventService, refundService),
		Ticket:    handler.NewTicketHandler(ticketService),
		Resale:    handler.NewResaleHandler(resaleService),
		Principal: handler.NewPrincipalHandler(ticketService),
		Health:    handler.NewHealthHandler(l),
	}, handler.RouteOptions{
		Metrics:     m,
		MetricsAuth: cfg.Metrics,
	})

	// 返金スイーパー
	var sweeper *worker.RefundSweeper
	if cfg.Ledger.RefundSweepInterval > 0 {
		sweeper = worker.NewRefundSweeper(refundService, locker, cfg.Ledger.RefundSweepInterval, cfg.Ledger.RefundSweepLockTTL)
		go sweeper.Start(ctx)
	}

	// サーバー起動
	go func() {
		log.Info("サーバー起動", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Env))
		if err := e.Start(fmt.Sprintf(":%s", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("サーバー起動エラー", zap.Error(err))
			stop()
		}
	}()

	// シグナル待機
	<-ctx.Done()
	log.Info("サーバーをシャットダウンしています...")

	if sweeper != nil {
		sweeper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("サーバーシャットダウンエラー", zap.Error(err))
		os.Exit(1)
	}

	log.Info("サーバーが正常にシャットダウンしました", zap.Uint64("ledger_version", l.Version()))
}

// restoreLedger はジャーナルを読み込み、台帳を再構築する
func restoreLedger(ctx context.Context, l *ledger.Ledger, journal *postgres.JournalRepository) error {
	entries, err := journal.Load(ctx)
	if err != nil {
		return err
	}
	if err := l.Restore(ctx, entries); err != nil {
		return err
	}
	logger.Info("ジャーナルを再生しました",
		zap.Int("entries", len(entries)),
		zap.Uint64("events", l.EventCount()),
		zap.Uint64("tickets", l.TotalSupply()),
	)
	return nil
}
