package handler

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-ticket-marketplace/internal/application"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/escrow"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/event"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/listing"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-marketplace/internal/ledger"
)

// EventServiceInterface はイベントサービスのインターフェース
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error)
	CancelEvent(ctx context.Context, caller principal.ID, eventID uint64, dryRun bool) (*event.Event, error)
	GetEvent(ctx context.Context, id uint64) (*ledger.EventSnapshot, error)
	ListEvents(ctx context.Context) ([]event.Event, uint64)
	Escrow(ctx context.Context, eventID uint64) (*escrow.Account, error)
}

// TicketServiceInterface はチケットサービスのインターフェース
type TicketServiceInterface interface {
	MintTicket(ctx context.Context, input application.MintTicketInput) (*ticket.Ticket, error)
	ValidateTicket(ctx context.Context, caller principal.ID, tokenID uint64, dryRun bool) (*ticket.Ticket, error)
	GetTicket(ctx context.Context, tokenID uint64) (*ticket.Ticket, error)
	TicketsOf(ctx context.Context, owner principal.ID) []ledger.OwnedTicket
	BalanceOf(ctx context.Context, p principal.ID) decimal.Decimal
	TotalSupply(ctx context.Context) uint64
}

// ResaleServiceInterface は転売サービスのインターフェース
type ResaleServiceInterface interface {
	ResellTicket(ctx context.Context, input application.ResellTicketInput) (*listing.Listing, error)
	CancelResale(ctx context.Context, caller principal.ID, tokenID uint64, dryRun bool) (*listing.Listing, error)
	BuyResale(ctx context.Context, input application.BuyResaleInput) (*ticket.Ticket, error)
	ResaleCap(ctx context.Context, tokenID uint64) (decimal.Decimal, error)
	Listing(ctx context.Context, tokenID uint64) (*listing.Listing, error)
	ActiveListings(ctx context.Context) []ledger.ActiveListing
}

// RefundServiceInterface は返金サービスのインターフェース
type RefundServiceInterface interface {
	RefundEvent(ctx context.Context, caller principal.ID, eventID uint64, dryRun bool) (*ledger.RefundReport, error)
}

// VersionReader は台帳のコミット済みバージョンを返す
type VersionReader interface {
	Version() uint64
}

var (
	_ EventServiceInterface  = (*application.EventService)(nil)
	_ TicketServiceInterface = (*application.TicketService)(nil)
	_ ResaleServiceInterface = (*application.ResaleService)(nil)
	_ RefundServiceInterface = (*application.RefundService)(nil)
	_ VersionReader          = (*ledger.Ledger)(nil)
)
