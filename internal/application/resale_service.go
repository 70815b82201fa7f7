package application

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/listing"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-marketplace/internal/ledger"
	"github.com/sanosuguru/go-ticket-marketplace/internal/pkg/metrics"
)

type ResaleService struct {
	executor
}

func NewResaleService(l Ledger, m *metrics.Metrics) *ResaleService {
	return &ResaleService{executor: executor{ledger: l, metrics: m}}
}

type ResellTicketInput struct {
	Caller  principal.ID
	TokenID uint64
	Price   decimal.Decimal
	DryRun  bool
}

// ResellTicket は上限価格以内で出品する
func (s *ResaleService) ResellTicket(ctx context.Context, input ResellTicketInput) (*listing.Listing, error) {
	res, ok, err := s.submit(ctx, ledger.ResellTicket{
		Caller:  input.Caller,
		TokenID: input.TokenID,
		Price:   input.Price,
	}, input.DryRun)
	if err != nil || !ok {
		return nil, err
	}
	return s.committedListing(res.TokenID)
}

// CancelResale は出品を取り消す
func (s *ResaleService) CancelResale(ctx context.Context, caller principal.ID, tokenID uint64, dryRun bool) (*listing.Listing, error) {
	res, ok, err := s.submit(ctx, ledger.CancelResale{Caller: caller, TokenID: tokenID}, dryRun)
	if err != nil || !ok {
		return nil, err
	}
	return s.committedListing(res.TokenID)
}

type BuyResaleInput struct {
	Caller         principal.ID
	TokenID        uint64
	AttachedAmount decimal.Decimal
	DryRun         bool
}

// BuyResale は出品価格ちょうどで購入する。購入後のチケットを返す
func (s *ResaleService) BuyResale(ctx context.Context, input BuyResaleInput) (*ticket.Ticket, error) {
	res, ok, err := s.submit(ctx, ledger.BuyResale{
		Caller:         input.Caller,
		TokenID:        input.TokenID,
		AttachedAmount: input.AttachedAmount,
	}, input.DryRun)
	if err != nil || !ok {
		return nil, err
	}
	t, err := s.ledger.Ticket(res.TokenID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ResaleCap は現在の転売上限価格
func (s *ResaleService) ResaleCap(ctx context.Context, tokenID uint64) (decimal.Decimal, error) {
	return s.ledger.ResaleCapFor(tokenID)
}

// Listing は直近の出品。一度も出品されていなければ nil, nil
func (s *ResaleService) Listing(ctx context.Context, tokenID uint64) (*listing.Listing, error) {
	lst, found, err := s.ledger.Listing(tokenID)
	if err != nil || !found {
		return nil, err
	}
	return &lst, nil
}

func (s *ResaleService) ActiveListings(ctx context.Context) []ledger.ActiveListing {
	return s.ledger.ActiveListings()
}

func (s *ResaleService) committedListing(tokenID uint64) (*listing.Listing, error) {
	lst, _, err := s.ledger.Listing(tokenID)
	if err != nil {
		return nil, err
	}
	return &lst, nil
}
