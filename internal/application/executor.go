package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/failure"
	"github.com/sanosuguru/go-ticket-marketplace/internal/ledger"
	"github.com/sanosuguru/go-ticket-marketplace/internal/pkg/logger"
	"github.com/sanosuguru/go-ticket-marketplace/internal/pkg/metrics"
)

const resultCommitted = "committed"

// executor は台帳への操作送信を計測・ログ付きで行う
type executor struct {
	ledger  Ledger
	metrics *metrics.Metrics
}

// submit は操作を台帳に送る。dryRun なら検証だけ行い、ok=false を返す
func (x executor) submit(ctx context.Context, op ledger.Operation, dryRun bool) (res ledger.Result, ok bool, err error) {
	log := logger.FromContext(ctx).With(
		zap.String("operation", string(op.Kind())),
		zap.String("caller", op.CallerID().String()),
	)

	if dryRun {
		if err := x.ledger.Preflight(ctx, op); err != nil {
			log.Debug("事前検証で却下", zap.Error(err))
			return ledger.Result{}, false, err
		}
		return ledger.Result{}, false, nil
	}

	start := time.Now()
	res, err = x.ledger.Submit(ctx, op)
	elapsed := time.Since(start)
	if err != nil {
		x.metrics.ObserveOperation(string(op.Kind()), failure.KindName(err), elapsed)
		if failure.KindOf(err) == nil {
			log.Error("台帳操作に失敗", zap.Error(err))
		} else {
			log.Warn("台帳操作を却下", zap.String("kind", failure.KindName(err)), zap.Error(err))
		}
		return ledger.Result{}, false, err
	}

	x.metrics.ObserveOperation(string(op.Kind()), resultCommitted, elapsed)
	log.Info("台帳操作をコミット",
		zap.Uint64("seq", res.Seq),
		zap.Uint64("event_id", res.EventID),
		zap.Uint64("token_id", res.TokenID),
		zap.Duration("elapsed", elapsed),
	)
	return res, true, nil
}

// recordEscrow はエスクロー残高のゲージを更新する
func (x executor) recordEscrow(eventID uint64) {
	if x.metrics == nil {
		return
	}
	account, err := x.ledger.EscrowAccount(eventID)
	if err != nil {
		return
	}
	x.metrics.SetEscrowBalance(eventID, account.Balance.InexactFloat64())
}
