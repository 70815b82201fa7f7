package ledger

import (
	"time"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/escrow"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/event"
)

// planCreateEvent はイベントを登録し、残高0のエスクロー口座を開く
func (s *state) planCreateEvent(op CreateEvent, now time.Time) (commitFunc, error) {
	e := event.NewEvent(op.Name, op.Date, op.Caller, op.TicketPrice, op.MaxSupply, now)
	if err := e.Validate(now); err != nil {
		return nil, err
	}

	return func() Result {
		s.lastEventID++
		e.ID = s.lastEventID
		s.events[e.ID] = e
		s.escrow[e.ID] = escrow.NewAccount(e.ID)
		return Result{EventID: e.ID}
	}, nil
}

// planCancelEvent はイベントを中止する。資金は動かさず、返金は RefundEvent で行う
func (s *state) planCancelEvent(op CancelEvent, now time.Time) (commitFunc, error) {
	e, err := s.event(op.EventID)
	if err != nil {
		return nil, err
	}
	if !e.IsOrganizer(op.Caller) {
		return nil, event.ErrNotOrganizer
	}
	if err := e.EnsureCancelable(); err != nil {
		return nil, err
	}

	return func() Result {
		e.Cancel()
		// 中止イベントのチケットは出品できない
		for _, tokenID := range s.eventTickets[e.ID] {
			s.withdrawListing(tokenID, now)
		}
		return Result{EventID: e.ID}
	}, nil
}
