package listing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
)

// Listing は二次流通の出品を表す。チケットごとに直近の1件を保持する
type Listing struct {
	TokenID  uint64
	Seller   principal.ID
	Price    decimal.Decimal
	Active   bool
	ListedAt time.Time
	ClosedAt *time.Time
	Outcome  Outcome
}

// Outcome は出品が終了した理由
type Outcome string

const (
	OutcomeOpen      Outcome = "open"
	OutcomeSold      Outcome = "sold"
	OutcomeCanceled  Outcome = "canceled"
	OutcomeWithdrawn Outcome = "withdrawn" // 入場済み・イベント中止で自動的に取り下げ
)

// NewListing は有効な出品を作成する
func NewListing(tokenID uint64, seller principal.ID, price decimal.Decimal, now time.Time) *Listing {
	return &Listing{
		TokenID:  tokenID,
		Seller:   seller,
		Price:    price,
		Active:   true,
		ListedAt: now,
		Outcome:  OutcomeOpen,
	}
}

// ValidatePrice は上限 limit に対して価格を検証する
func ValidatePrice(price, limit decimal.Decimal) error {
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	if price.GreaterThan(limit) {
		return ErrPriceAboveCap
	}
	return nil
}

// IsSeller は p が出品者かを返す
func (l *Listing) IsSeller(p principal.ID) bool {
	return !p.IsZero() && l.Seller == p
}

// Close は出品を終了する
func (l *Listing) Close(outcome Outcome, now time.Time) {
	l.Active = false
	l.Outcome = outcome
	l.ClosedAt = &now
}

// Clone は独立したコピーを返す
func (l *Listing) Clone() *Listing {
	c := *l
	if l.ClosedAt != nil {
		at := *l.ClosedAt
		c.ClosedAt = &at
	}
	return &c
}
