package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/escrow"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/event"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/listing"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/ticket"
)

// state は台帳の全エンティティ。Ledger のロック下でのみ触る
type state struct {
	events       map[uint64]*event.Event
	tickets      map[uint64]*ticket.Ticket
	listings     map[uint64]*listing.Listing
	escrow       map[uint64]*escrow.Account
	balances     map[principal.ID]decimal.Decimal
	eventTickets map[uint64][]uint64

	// eventSeq はイベントに最後に触れた操作の連番
	eventSeq map[uint64]uint64

	lastEventID uint64
	lastTokenID uint64
	seq         uint64
}

func newState() *state {
	return &state{
		events:       make(map[uint64]*event.Event),
		tickets:      make(map[uint64]*ticket.Ticket),
		listings:     make(map[uint64]*listing.Listing),
		escrow:       make(map[uint64]*escrow.Account),
		balances:     make(map[principal.ID]decimal.Decimal),
		eventTickets: make(map[uint64][]uint64),
		eventSeq:     make(map[uint64]uint64),
	}
}

// commitFunc は検証済みの遷移を適用する。失敗しない
type commitFunc func() Result

// plan は操作を検証し、適用関数を返す。state は変更しない
func (s *state) plan(op Operation, now time.Time) (commitFunc, error) {
	if op.CallerID().IsZero() {
		return nil, ErrCallerRequired
	}
	switch op := op.(type) {
	case CreateEvent:
		return s.planCreateEvent(op, now)
	case CancelEvent:
		return s.planCancelEvent(op, now)
	case MintTicket:
		return s.planMintTicket(op, now)
	case ValidateTicket:
		return s.planValidateTicket(op, now)
	case ResellTicket:
		return s.planResellTicket(op, now)
	case CancelResale:
		return s.planCancelResale(op, now)
	case BuyResale:
		return s.planBuyResale(op, now)
	case RefundEvent:
		return s.planRefundEvent(op, now)
	default:
		return nil, fmt.Errorf("未対応の操作です: %T", op)
	}
}

func (s *state) event(id uint64) (*event.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, event.ErrEventNotFound
	}
	return e, nil
}

func (s *state) ticket(id uint64) (*ticket.Ticket, error) {
	t, ok := s.tickets[id]
	if !ok {
		return nil, ticket.ErrTicketNotFound
	}
	return t, nil
}

func (s *state) account(eventID uint64) (*escrow.Account, error) {
	a, ok := s.escrow[eventID]
	if !ok {
		return nil, escrow.ErrAccountNotFound
	}
	return a, nil
}

// activeListing は有効な出品を返す。なければ nil
func (s *state) activeListing(tokenID uint64) *listing.Listing {
	if l, ok := s.listings[tokenID]; ok && l.Active {
		return l
	}
	return nil
}

// withdrawListing は有効な出品があれば取り下げる
func (s *state) withdrawListing(tokenID uint64, now time.Time) {
	if l := s.activeListing(tokenID); l != nil {
		l.Close(listing.OutcomeWithdrawn, now)
	}
}

// credit は台帳から principal への支払いを記録する
func (s *state) credit(p principal.ID, amount decimal.Decimal) {
	s.balances[p] = s.balances[p].Add(amount)
}
