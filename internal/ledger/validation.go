package ledger

import (
	"time"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/event"
)

// planValidateTicket は入場済みにする。取り消しはできない
func (s *state) planValidateTicket(op ValidateTicket, now time.Time) (commitFunc, error) {
	t, err := s.ticket(op.TokenID)
	if err != nil {
		return nil, err
	}
	if err := t.EnsureActive(); err != nil {
		return nil, err
	}
	e, err := s.event(t.EventID)
	if err != nil {
		return nil, err
	}
	if !e.IsOrganizer(op.Caller) {
		return nil, event.ErrNotOrganizer
	}
	if e.Canceled {
		return nil, event.ErrEventCanceled
	}

	return func() Result {
		t.MarkUsed()
		s.withdrawListing(t.TokenID, now)
		return Result{EventID: e.ID, TokenID: t.TokenID}
	}, nil
}
