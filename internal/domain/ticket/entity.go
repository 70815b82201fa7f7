package ticket

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
)

// resaleCapPercent は最終支払額に対する転売上限の割合
const resaleCapPercent = 110

// ResaleCapMultiplier は転売上限の倍率（1.10）
func ResaleCapMultiplier() decimal.Decimal {
	return decimal.New(resaleCapPercent, -2)
}

// Ticket はチケットエンティティを表す
type Ticket struct {
	TokenID uint64
	EventID uint64
	Owner   principal.ID
	// PaidAmount は発行時または直近の転売成立時の支払額。主催者の無償発行では nil
	PaidAmount *decimal.Decimal
	Used       bool
	Refunded   bool
	MintedAt   time.Time
}

// NewTicket は新しいチケットを作成する
func NewTicket(tokenID, eventID uint64, owner principal.ID, paid *decimal.Decimal, now time.Time) *Ticket {
	return &Ticket{
		TokenID:    tokenID,
		EventID:    eventID,
		Owner:      owner,
		PaidAmount: clone(paid),
		MintedAt:   now,
	}
}

// IsTerminal は使用済みまたは返金済みかを返す
func (t *Ticket) IsTerminal() bool {
	return t.Used || t.Refunded
}

// EnsureActive は終端状態でないことを検証する
func (t *Ticket) EnsureActive() error {
	if t.Used {
		return ErrTicketUsed
	}
	if t.Refunded {
		return ErrTicketRefunded
	}
	return nil
}

// IsOwnedBy は p が現在の所有者かを返す
func (t *Ticket) IsOwnedBy(p principal.ID) bool {
	return !p.IsZero() && t.Owner == p
}

// IsPaid はエスクローまたは出品者に資金が移動した支払いを伴うかを返す
func (t *Ticket) IsPaid() bool {
	return t.PaidAmount != nil
}

// LastPaidPrice は最終支払額。無償発行なら0
func (t *Ticket) LastPaidPrice() decimal.Decimal {
	if t.PaidAmount == nil {
		return decimal.Zero
	}
	return *t.PaidAmount
}

// ResaleCap は転売価格の上限
func (t *Ticket) ResaleCap() decimal.Decimal {
	return t.LastPaidPrice().Mul(ResaleCapMultiplier())
}

// RefundEligibility は返金対象かを検証する。対象外なら理由を返す
func (t *Ticket) RefundEligibility() error {
	if t.Used {
		return ErrTicketUsed
	}
	if t.Refunded {
		return ErrTicketRefunded
	}
	if !t.IsPaid() {
		return ErrTicketNotPaid
	}
	return nil
}

// TransferTo は転売成立による所有者移転。支払額が次回の上限計算の基準になる
func (t *Ticket) TransferTo(owner principal.ID, price decimal.Decimal) {
	t.Owner = owner
	t.PaidAmount = &price
}

// MarkUsed は入場済みにする
func (t *Ticket) MarkUsed() {
	t.Used = true
}

// MarkRefunded は返金済みにする
func (t *Ticket) MarkRefunded() {
	t.Refunded = true
}

// Clone は独立したコピーを返す
func (t *Ticket) Clone() *Ticket {
	c := *t
	c.PaidAmount = clone(t.PaidAmount)
	return &c
}

func clone(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
