package ledger

import (
	"time"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/event"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/listing"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/ticket"
)

// planResellTicket は所有者による定額出品。価格は最終支払額の110%まで
func (s *state) planResellTicket(op ResellTicket, now time.Time) (commitFunc, error) {
	t, err := s.ticket(op.TokenID)
	if err != nil {
		return nil, err
	}
	if !t.IsOwnedBy(op.Caller) {
		return nil, ticket.ErrNotOwner
	}
	if err := t.EnsureActive(); err != nil {
		return nil, err
	}
	e, err := s.event(t.EventID)
	if err != nil {
		return nil, err
	}
	if e.Canceled {
		return nil, event.ErrEventCanceled
	}
	if s.activeListing(t.TokenID) != nil {
		return nil, listing.ErrAlreadyListed
	}
	if err := listing.ValidatePrice(op.Price, t.ResaleCap()); err != nil {
		return nil, err
	}

	return func() Result {
		s.listings[t.TokenID] = listing.NewListing(t.TokenID, op.Caller, op.Price, now)
		return Result{EventID: e.ID, TokenID: t.TokenID}
	}, nil
}

// planCancelResale は出品者による取り消し。資金は動かない
func (s *state) planCancelResale(op CancelResale, now time.Time) (commitFunc, error) {
	t, err := s.ticket(op.TokenID)
	if err != nil {
		return nil, err
	}
	l := s.activeListing(t.TokenID)
	if l == nil {
		return nil, listing.ErrListingNotFound
	}
	if !l.IsSeller(op.Caller) {
		return nil, listing.ErrNotSeller
	}

	return func() Result {
		l.Close(listing.OutcomeCanceled, now)
		return Result{EventID: t.EventID, TokenID: t.TokenID}
	}, nil
}

// planBuyResale は出品価格ちょうどの支払いで所有者を移す。
// 代金は出品者に直接支払われ、エスクローは経由しない
func (s *state) planBuyResale(op BuyResale, now time.Time) (commitFunc, error) {
	t, err := s.ticket(op.TokenID)
	if err != nil {
		return nil, err
	}
	l := s.activeListing(t.TokenID)
	if l == nil {
		return nil, listing.ErrListingNotFound
	}
	if err := t.EnsureActive(); err != nil {
		return nil, err
	}
	e, err := s.event(t.EventID)
	if err != nil {
		return nil, err
	}
	if e.Canceled {
		return nil, event.ErrEventCanceled
	}
	if !t.IsOwnedBy(l.Seller) {
		return nil, listing.ErrListingNotFound
	}
	if l.IsSeller(op.Caller) {
		return nil, listing.ErrSellerCannotPurchase
	}
	if !op.AttachedAmount.Equal(l.Price) {
		return nil, listing.ErrPriceMismatch
	}

	return func() Result {
		l.Close(listing.OutcomeSold, now)
		t.TransferTo(op.Caller, op.AttachedAmount)
		s.credit(l.Seller, op.AttachedAmount)
		return Result{EventID: e.ID, TokenID: t.TokenID}
	}, nil
}
