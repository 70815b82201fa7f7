package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/escrow"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/event"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/listing"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-marketplace/internal/ledger"
)

// Ledger はサービスが使う台帳の操作。*ledger.Ledger が実装する
type Ledger interface {
	Submit(ctx context.Context, op ledger.Operation) (ledger.Result, error)
	Preflight(ctx context.Context, op ledger.Operation) error

	EventCount() uint64
	GetEvent(id uint64) (event.Event, error)
	EventSnapshot(eventID uint64) (ledger.EventSnapshot, error)
	EventVersion(eventID uint64) uint64
	Events() []event.Event
	Ticket(tokenID uint64) (ticket.Ticket, error)
	Listing(tokenID uint64) (listing.Listing, bool, error)
	ResaleCapFor(tokenID uint64) (decimal.Decimal, error)
	TotalSupply() uint64
	EscrowAccount(eventID uint64) (escrow.Account, error)
	BalanceOf(p principal.ID) decimal.Decimal
	TicketsOf(p principal.ID) []ledger.OwnedTicket
	ActiveListings() []ledger.ActiveListing
	RefundableEvents() []ledger.RefundCandidate
	Version() uint64
}

// EventCache はイベント詳細の読み取りキャッシュ
type EventCache interface {
	Get(ctx context.Context, eventID uint64) (ledger.EventSnapshot, error)
	Set(ctx context.Context, snap ledger.EventSnapshot, ttl time.Duration) error
	Invalidate(ctx context.Context, eventID uint64) error
}

var _ Ledger = (*ledger.Ledger)(nil)
