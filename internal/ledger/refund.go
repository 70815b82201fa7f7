package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/escrow"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/event"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
)

// RefundOutcome はチケット1枚ごとの返金結果
type RefundOutcome string

const (
	RefundOutcomeRefunded                 RefundOutcome = "refunded"
	RefundOutcomeSkippedInsufficientFunds RefundOutcome = "skipped_insufficient_funds"
	RefundOutcomeSkippedIneligible        RefundOutcome = "skipped_ineligible"
)

// RefundStatus は返金処理全体の要約
type RefundStatus string

const (
	RefundStatusCompleted       RefundStatus = "completed"
	RefundStatusPartial         RefundStatus = "partial"
	RefundStatusNoneRefunded    RefundStatus = "none_refunded"
	RefundStatusNothingToRefund RefundStatus = "nothing_to_refund"
)

// RefundResult はチケット1枚分の結果
type RefundResult struct {
	TokenID uint64
	Owner   principal.ID
	Amount  decimal.Decimal
	Outcome RefundOutcome
	Reason  string
}

// RefundReport は RefundEvent の結果
type RefundReport struct {
	EventID       uint64
	Results       []RefundResult
	RefundedCount int
	RefundedTotal decimal.Decimal
	SkippedFunds  int
	Status        RefundStatus
}

func (r *RefundReport) summarize() {
	r.RefundedTotal = decimal.Zero
	for _, res := range r.Results {
		switch res.Outcome {
		case RefundOutcomeRefunded:
			r.RefundedCount++
			r.RefundedTotal = r.RefundedTotal.Add(res.Amount)
		case RefundOutcomeSkippedInsufficientFunds:
			r.SkippedFunds++
		}
	}
	switch {
	case r.SkippedFunds == 0 && r.RefundedCount == 0:
		r.Status = RefundStatusNothingToRefund
	case r.SkippedFunds == 0:
		r.Status = RefundStatusCompleted
	case r.RefundedCount == 0:
		r.Status = RefundStatusNoneRefunded
	default:
		r.Status = RefundStatusPartial
	}
}

// planRefundEvent は中止イベントの未使用・未返金・有償チケットをエスクローから払い戻す。
// チケットごとに判定し、残高が足りない1枚は飛ばして次へ進む
func (s *state) planRefundEvent(op RefundEvent, now time.Time) (commitFunc, error) {
	e, err := s.event(op.EventID)
	if err != nil {
		return nil, err
	}
	if !e.IsOrganizer(op.Caller) {
		return nil, event.ErrNotOrganizer
	}
	if !e.Canceled {
		return nil, event.ErrEventNotCanceled
	}
	account, err := s.account(e.ID)
	if err != nil {
		return nil, err
	}

	report := &RefundReport{EventID: e.ID}
	remaining := escrow.Account{Balance: account.Balance}
	for _, tokenID := range s.eventTickets[e.ID] {
		t := s.tickets[tokenID]
		res := RefundResult{TokenID: t.TokenID, Owner: t.Owner, Amount: t.LastPaidPrice()}

		if err := t.RefundEligibility(); err != nil {
			res.Outcome = RefundOutcomeSkippedIneligible
			res.Reason = err.Error()
		} else if err := remaining.EnsureCovers(res.Amount); err != nil {
			res.Outcome = RefundOutcomeSkippedInsufficientFunds
			res.Reason = err.Error()
		} else {
			remaining.Withdraw(res.Amount)
			res.Outcome = RefundOutcomeRefunded
		}
		report.Results = append(report.Results, res)
	}
	report.summarize()

	return func() Result {
		for _, res := range report.Results {
			if res.Outcome != RefundOutcomeRefunded {
				continue
			}
			t := s.tickets[res.TokenID]
			account.Withdraw(res.Amount)
			t.MarkRefunded()
			s.credit(res.Owner, res.Amount)
		}
		return Result{EventID: e.ID, Refund: report}
	}, nil
}

// refundable は返金処理で1枚以上払い戻せる状態かを返す
func (s *state) refundable(e *event.Event) bool {
	if !e.Canceled {
		return false
	}
	account, ok := s.escrow[e.ID]
	if !ok {
		return false
	}
	for _, tokenID := range s.eventTickets[e.ID] {
		t := s.tickets[tokenID]
		if t.RefundEligibility() == nil && account.EnsureCovers(t.LastPaidPrice()) == nil {
			return true
		}
	}
	return false
}
