package event

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
)

// Event はイベントエンティティを表す
type Event struct {
	ID          uint64
	Name        string
	Date        time.Time
	Organizer   principal.ID
	TicketPrice decimal.Decimal
	MaxSupply   uint32
	TicketsSold uint32
	Canceled    bool
	CreatedAt   time.Time
}

// NewEvent は新しいイベントを作成する。ID は台帳が採番する
func NewEvent(name string, date time.Time, organizer principal.ID, ticketPrice decimal.Decimal, maxSupply uint32, now time.Time) *Event {
	return &Event{
		Name:        strings.TrimSpace(name),
		Date:        date,
		Organizer:   organizer,
		TicketPrice: ticketPrice,
		MaxSupply:   maxSupply,
		CreatedAt:   now,
	}
}

// Validate は作成時点 now に対するイベントの検証を行う
func (e *Event) Validate(now time.Time) error {
	if e.Name == "" {
		return ErrEventNameRequired
	}
	if !e.Date.After(now) {
		return ErrEventDateNotFuture
	}
	if !e.TicketPrice.IsPositive() {
		return ErrInvalidTicketPrice
	}
	if e.MaxSupply == 0 {
		return ErrInvalidMaxSupply
	}
	return nil
}

// IsOrganizer は p が主催者かを返す
func (e *Event) IsOrganizer(p principal.ID) bool {
	return !p.IsZero() && e.Organizer == p
}

// SoldOut は販売上限に達しているかを返す
func (e *Event) SoldOut() bool {
	return e.TicketsSold >= e.MaxSupply
}

// Remaining は残り発行可能枚数
func (e *Event) Remaining() uint32 {
	if e.SoldOut() {
		return 0
	}
	return e.MaxSupply - e.TicketsSold
}

// EnsureCancelable はキャンセル可能かを検証する
func (e *Event) EnsureCancelable() error {
	if e.Canceled {
		return ErrEventAlreadyCanceled
	}
	return nil
}

// EnsureMintable は発行可能かを検証する
func (e *Event) EnsureMintable() error {
	if e.Canceled {
		return ErrEventCanceled
	}
	if e.SoldOut() {
		return ErrEventSoldOut
	}
	return nil
}

// Cancel はキャンセル状態にする。一度立てたフラグは戻らない
func (e *Event) Cancel() {
	e.Canceled = true
}

// RecordSale は発行枚数を1つ増やす
func (e *Event) RecordSale() {
	e.TicketsSold++
}
