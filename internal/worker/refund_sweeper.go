package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-marketplace/internal/application"
	redisinfra "github.com/sanosuguru/go-ticket-marketplace/internal/infrastructure/redis"
	"github.com/sanosuguru/go-ticket-marketplace/internal/pkg/logger"
)

const refundSweepLockKey = "refund-sweep"

// RefundSweepRunner は中止イベントの返金をまとめて進めるインターフェース
type RefundSweepRunner interface {
	SweepRefundable(ctx context.Context, keepAlive application.KeepAliveFunc) application.SweepResult
}

// Locker は複数インスタンス間でスイープを1つに絞るロック
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (*redisinfra.DistributedLock, error)
}

// RefundSweeper は中止イベントの返金を定期的に再実行するワーカー。
// 残高不足でスキップされたチケットは次回以降に再試行される
type RefundSweeper struct {
	refundService RefundSweepRunner
	locker        Locker
	interval      time.Duration
	lockTTL       time.Duration
	stopCh        chan struct{}
	doneCh        chan struct{}
}

// NewRefundSweeper は新しいスイーパーを作成。locker が nil ならロックなしで実行する
func NewRefundSweeper(
	rs RefundSweepRunner,
	locker Locker,
	interval time.Duration,
	lockTTL time.Duration,
) *RefundSweeper {
	return &RefundSweeper{
		refundService: rs,
		locker:        locker,
		interval:      interval,
		lockTTL:       lockTTL,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start はスイーパーを開始
func (s *RefundSweeper) Start(ctx context.Context) {
	logger.Info("返金スイーパー開始",
		zap.Duration("interval", s.interval),
		zap.Bool("distributed_lock", s.locker != nil),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("返金スイーパー停止（コンテキストキャンセル）")
			return
		case <-s.stopCh:
			logger.Info("返金スイーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop はスイーパーを停止
func (s *RefundSweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// sweep は1回分の返金を行う。ロックを取れなければ何もしない。
// ロックはイベントごとに延長し、失ったらその時点で止める
func (s *RefundSweeper) sweep(ctx context.Context) {
	log := logger.Get()

	var keepAlive application.KeepAliveFunc
	if s.locker != nil {
		lock, err := s.locker.AcquireLock(ctx, refundSweepLockKey, s.lockTTL)
		if errors.Is(err, redisinfra.ErrLockNotAcquired) {
			log.Debug("他のインスタンスがスイープ中")
			return
		}
		if err != nil {
			log.Error("スイープ用ロックの取得失敗", zap.Error(err))
			return
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				log.Warn("スイープ用ロックの解放失敗", zap.Error(err))
			}
		}()
		keepAlive = func(ctx context.Context) error {
			return lock.Extend(ctx, s.lockTTL)
		}
	}

	result := s.refundService.SweepRefundable(ctx, keepAlive)
	if result.Interrupted != nil {
		log.Warn("スイープ用ロックを失ったため中断", zap.Error(result.Interrupted))
	}
	if len(result.Reports) == 0 && result.Failed == 0 {
		log.Debug("返金対象のイベントなし")
		return
	}

	refunded := 0
	for _, r := range result.Reports {
		refunded += r.RefundedCount
	}
	log.Info("返金スイープ完了",
		zap.Int("events", len(result.Reports)),
		zap.Int("refunded", refunded),
		zap.Int("failed", result.Failed),
	)
}
