package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
	"github.com/sanosuguru/go-ticket-marketplace/internal/ledger"
	"github.com/sanosuguru/go-ticket-marketplace/internal/pkg/logger"
	"github.com/sanosuguru/go-ticket-marketplace/internal/pkg/metrics"
)

type RefundService struct {
	executor
}

func NewRefundService(l Ledger, m *metrics.Metrics) *RefundService {
	return &RefundService{executor: executor{ledger: l, metrics: m}}
}

// RefundEvent は中止イベントの払い戻しを1回実行する。DryRun なら nil, nil
func (s *RefundService) RefundEvent(ctx context.Context, caller principal.ID, eventID uint64, dryRun bool) (*ledger.RefundReport, error) {
	res, ok, err := s.submit(ctx, ledger.RefundEvent{Caller: caller, EventID: eventID}, dryRun)
	if err != nil || !ok {
		return nil, err
	}
	s.recordReport(res.Refund)
	return res.Refund, nil
}

// SweepResult はスイープ1回分の結果
type SweepResult struct {
	Reports []ledger.RefundReport
	Failed  int
	// Interrupted は keepAlive が失敗して残りを処理しなかった理由
	Interrupted error
}

// KeepAliveFunc は各イベントの処理前に呼ばれる。エラーならスイープを打ち切る
type KeepAliveFunc func(ctx context.Context) error

// SweepRefundable は払い戻せるチケットが残る中止イベントを主催者として順に処理する。
// 1イベントの失敗で残りを止めない。keepAlive は nil でもよい
func (s *RefundService) SweepRefundable(ctx context.Context, keepAlive KeepAliveFunc) SweepResult {
	var result SweepResult
	for i, c := range s.ledger.RefundableEvents() {
		if ctx.Err() != nil {
			break
		}
		if keepAlive != nil && i > 0 {
			if err := keepAlive(ctx); err != nil {
				result.Interrupted = err
				break
			}
		}
		report, err := s.RefundEvent(ctx, c.Organizer, c.EventID, false)
		if err != nil {
			result.Failed++
			logger.Warn("返金スイープでイベントの処理に失敗",
				zap.Uint64("event_id", c.EventID),
				zap.Error(err),
			)
			continue
		}
		result.Reports = append(result.Reports, *report)
	}
	return result
}

func (s *RefundService) recordReport(report *ledger.RefundReport) {
	if report == nil {
		return
	}
	counts := map[ledger.RefundOutcome]int{}
	for _, r := range report.Results {
		counts[r.Outcome]++
	}
	for outcome, n := range counts {
		s.metrics.AddRefundOutcome(string(outcome), n)
	}
	s.recordEscrow(report.EventID)

	logger.Info("返金処理完了",
		zap.Uint64("event_id", report.EventID),
		zap.String("status", string(report.Status)),
		zap.Int("refunded", report.RefundedCount),
		zap.Int("skipped_funds", report.SkippedFunds),
		zap.String("refunded_total", report.RefundedTotal.String()),
	)
}
