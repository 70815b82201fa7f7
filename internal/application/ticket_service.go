package application

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-marketplace/internal/ledger"
	"github.com/sanosuguru/go-ticket-marketplace/internal/pkg/logger"
	"github.com/sanosuguru/go-ticket-marketplace/internal/pkg/metrics"
)

type TicketService struct {
	executor
	cache EventCache
}

func NewTicketService(l Ledger, cache EventCache, m *metrics.Metrics) *TicketService {
	return &TicketService{executor: executor{ledger: l, metrics: m}, cache: cache}
}

type MintTicketInput struct {
	Caller         principal.ID
	EventID        uint64
	To             principal.ID
	AttachedAmount decimal.Decimal
	DryRun         bool
}

// MintTicket は一次販売または主催者の無償発行
func (s *TicketService) MintTicket(ctx context.Context, input MintTicketInput) (*ticket.Ticket, error) {
	res, ok, err := s.submit(ctx, ledger.MintTicket{
		Caller:         input.Caller,
		EventID:        input.EventID,
		To:             input.To,
		AttachedAmount: input.AttachedAmount,
	}, input.DryRun)
	if err != nil || !ok {
		return nil, err
	}

	// 販売数が変わるのでイベントのキャッシュを捨てる
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, res.EventID); err != nil {
			logger.Warn("キャッシュ無効化エラー", zap.Error(err))
		}
	}
	s.recordEscrow(res.EventID)
	return s.GetTicket(ctx, res.TokenID)
}

// ValidateTicket は入場処理
func (s *TicketService) ValidateTicket(ctx context.Context, caller principal.ID, tokenID uint64, dryRun bool) (*ticket.Ticket, error) {
	res, ok, err := s.submit(ctx, ledger.ValidateTicket{Caller: caller, TokenID: tokenID}, dryRun)
	if err != nil || !ok {
		return nil, err
	}
	return s.GetTicket(ctx, res.TokenID)
}

func (s *TicketService) GetTicket(ctx context.Context, tokenID uint64) (*ticket.Ticket, error) {
	t, err := s.ledger.Ticket(tokenID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TicketService) TicketsOf(ctx context.Context, owner principal.ID) []ledger.OwnedTicket {
	return s.ledger.TicketsOf(owner)
}

// BalanceOf は台帳から principal への累計支払額
func (s *TicketService) BalanceOf(ctx context.Context, p principal.ID) decimal.Decimal {
	return s.ledger.BalanceOf(p)
}

func (s *TicketService) TotalSupply(ctx context.Context) uint64 {
	return s.ledger.TotalSupply()
}
