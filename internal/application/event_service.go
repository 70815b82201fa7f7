package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/escrow"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/event"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
	redisinfra "github.com/sanosuguru/go-ticket-marketplace/internal/infrastructure/redis"
	"github.com/sanosuguru/go-ticket-marketplace/internal/ledger"
	"github.com/sanosuguru/go-ticket-marketplace/internal/pkg/logger"
	"github.com/sanosuguru/go-ticket-marketplace/internal/pkg/metrics"
)

const defaultEventCacheTTL = 30 * time.Second

type EventService struct {
	executor
	cache    EventCache
	cacheTTL time.Duration
}

// NewEventService は EventService を作る。cache は nil でもよい
func NewEventService(l Ledger, cache EventCache, cacheTTL time.Duration, m *metrics.Metrics) *EventService {
	if cacheTTL <= 0 {
		cacheTTL = defaultEventCacheTTL
	}
	return &EventService{executor: executor{ledger: l, metrics: m}, cache: cache, cacheTTL: cacheTTL}
}

type CreateEventInput struct {
	Caller      principal.ID
	Name        string
	Date        time.Time
	TicketPrice decimal.Decimal
	MaxSupply   uint32
	DryRun      bool
}

// CreateEvent はイベントを作成する。DryRun なら nil, nil を返す
func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*event.Event, error) {
	res, ok, err := s.submit(ctx, ledger.CreateEvent{
		Caller:      input.Caller,
		Name:        input.Name,
		Date:        input.Date,
		TicketPrice: input.TicketPrice,
		MaxSupply:   input.MaxSupply,
	}, input.DryRun)
	if err != nil || !ok {
		return nil, err
	}
	s.recordEscrow(res.EventID)
	return s.committedEvent(res.EventID)
}

// CancelEvent はイベントを中止する
func (s *EventService) CancelEvent(ctx context.Context, caller principal.ID, eventID uint64, dryRun bool) (*event.Event, error) {
	res, ok, err := s.submit(ctx, ledger.CancelEvent{Caller: caller, EventID: eventID}, dryRun)
	if err != nil || !ok {
		return nil, err
	}
	s.InvalidateCache(ctx, res.EventID)
	return s.committedEvent(res.EventID)
}

// GetEvent はイベントとエスクロー口座を同じコミット時点で返す。
// キャッシュの値は版数が台帳と一致するときだけ使う
func (s *EventService) GetEvent(ctx context.Context, id uint64) (*ledger.EventSnapshot, error) {
	if s.cache != nil {
		snap, err := s.cache.Get(ctx, id)
		switch {
		case err == nil && snap.Version == s.ledger.EventVersion(id):
			logger.Debug("キャッシュヒット", zap.Uint64("event_id", id))
			return &snap, nil
		case err == nil:
			logger.Debug("古いキャッシュを破棄", zap.Uint64("event_id", id), zap.Uint64("cached_version", snap.Version))
		case !errors.Is(err, redisinfra.ErrCacheMiss):
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	snap, err := s.ledger.EventSnapshot(id)
	if err != nil {
		return nil, err
	}

	// 読み取り後にコミットがあれば保存しない
	if s.cache != nil && s.ledger.EventVersion(id) == snap.Version {
		if cacheErr := s.cache.Set(ctx, snap, s.cacheTTL); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}
	return &snap, nil
}

// ListEvents は全イベントとイベント数を返す
func (s *EventService) ListEvents(ctx context.Context) ([]event.Event, uint64) {
	return s.ledger.Events(), s.ledger.EventCount()
}

// Escrow はイベントのエスクロー口座を返す
func (s *EventService) Escrow(ctx context.Context, eventID uint64) (*escrow.Account, error) {
	account, err := s.ledger.EscrowAccount(eventID)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// InvalidateCache はイベントのキャッシュを無効化する
func (s *EventService) InvalidateCache(ctx context.Context, eventID uint64) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, eventID); err != nil {
			logger.Warn("キャッシュ無効化エラー", zap.Error(err))
		}
	}
}

func (s *EventService) committedEvent(id uint64) (*event.Event, error) {
	e, err := s.ledger.GetEvent(id)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
