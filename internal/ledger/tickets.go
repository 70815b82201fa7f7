package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/ticket"
)

// planMintTicket はチケットを発行する。
// 主催者は無償で発行でき、それ以外はチケット価格ちょうどを支払いエスクローに預ける
func (s *state) planMintTicket(op MintTicket, now time.Time) (commitFunc, error) {
	e, err := s.event(op.EventID)
	if err != nil {
		return nil, err
	}
	if err := e.EnsureMintable(); err != nil {
		return nil, err
	}
	if op.To.IsZero() {
		return nil, ticket.ErrRecipientRequired
	}
	if op.AttachedAmount.IsNegative() {
		return nil, ticket.ErrNegativeAmount
	}

	var paid *decimal.Decimal
	if e.IsOrganizer(op.Caller) {
		if !op.AttachedAmount.IsZero() {
			return nil, ticket.ErrOrganizerAmountNotZero
		}
	} else {
		if !op.AttachedAmount.Equal(e.TicketPrice) {
			return nil, ticket.ErrInvalidAttachedAmount
		}
		amount := op.AttachedAmount
		paid = &amount
	}

	account, err := s.account(e.ID)
	if err != nil {
		return nil, err
	}

	return func() Result {
		s.lastTokenID++
		t := ticket.NewTicket(s.lastTokenID, e.ID, op.To, paid, now)
		s.tickets[t.TokenID] = t
		s.eventTickets[e.ID] = append(s.eventTickets[e.ID], t.TokenID)
		e.RecordSale()
		if paid != nil {
			account.Deposit(*paid)
		}
		return Result{EventID: e.ID, TokenID: t.TokenID}
	}, nil
}
