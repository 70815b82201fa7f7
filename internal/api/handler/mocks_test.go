package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-ticket-marketplace/internal/api/middleware"
	"github.com/sanosuguru/go-ticket-marketplace/internal/application"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/escrow"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/event"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/listing"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-marketplace/internal/ledger"
)

// MockEventService はEventServiceInterfaceのモック
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) CancelEvent(ctx context.Context, caller principal.ID, eventID uint64, dryRun bool) (*event.Event, error) {
	args := m.Called(ctx, caller, eventID, dryRun)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) GetEvent(ctx context.Context, id uint64) (*ledger.EventSnapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.EventSnapshot), args.Error(1)
}

func (m *MockEventService) ListEvents(ctx context.Context) ([]event.Event, uint64) {
	args := m.Called(ctx)
	return args.Get(0).([]event.Event), args.Get(1).(uint64)
}

func (m *MockEventService) Escrow(ctx context.Context, eventID uint64) (*escrow.Account, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*escrow.Account), args.Error(1)
}

// MockTicketService はTicketServiceInterfaceのモック
type MockTicketService struct {
	mock.Mock
}

func (m *MockTicketService) MintTicket(ctx context.Context, input application.MintTicketInput) (*ticket.Ticket, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Ticket), args.Error(1)
}

func (m *MockTicketService) ValidateTicket(ctx context.Context, caller principal.ID, tokenID uint64, dryRun bool) (*ticket.Ticket, error) {
	args := m.Called(ctx, caller, tokenID, dryRun)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Ticket), args.Error(1)
}

func (m *MockTicketService) GetTicket(ctx context.Context, tokenID uint64) (*ticket.Ticket, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Ticket), args.Error(1)
}

func (m *MockTicketService) TicketsOf(ctx context.Context, owner principal.ID) []ledger.OwnedTicket {
	args := m.Called(ctx, owner)
	return args.Get(0).([]ledger.OwnedTicket)
}

func (m *MockTicketService) BalanceOf(ctx context.Context, p principal.ID) decimal.Decimal {
	args := m.Called(ctx, p)
	return args.Get(0).(decimal.Decimal)
}

func (m *MockTicketService) TotalSupply(ctx context.Context) uint64 {
	args := m.Called(ctx)
	return args.Get(0).(uint64)
}

// MockResaleService はResaleServiceInterfaceのモック
type MockResaleService struct {
	mock.Mock
}

func (m *MockResaleService) ResellTicket(ctx context.Context, input application.ResellTicketInput) (*listing.Listing, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Listing), args.Error(1)
}

func (m *MockResaleService) CancelResale(ctx context.Context, caller principal.ID, tokenID uint64, dryRun bool) (*listing.Listing, error) {
	args := m.Called(ctx, caller, tokenID, dryRun)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Listing), args.Error(1)
}

func (m *MockResaleService) BuyResale(ctx context.Context, input application.BuyResaleInput) (*ticket.Ticket, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Ticket), args.Error(1)
}

func (m *MockResaleService) ResaleCap(ctx context.Context, tokenID uint64) (decimal.Decimal, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockResaleService) Listing(ctx context.Context, tokenID uint64) (*listing.Listing, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Listing), args.Error(1)
}

func (m *MockResaleService) ActiveListings(ctx context.Context) []ledger.ActiveListing {
	args := m.Called(ctx)
	return args.Get(0).([]ledger.ActiveListing)
}

// MockRefundService はRefundServiceInterfaceのモック
type MockRefundService struct {
	mock.Mock
}

func (m *MockRefundService) RefundEvent(ctx context.Context, caller principal.ID, eventID uint64, dryRun bool) (*ledger.RefundReport, error) {
	args := m.Called(ctx, caller, eventID, dryRun)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.RefundReport), args.Error(1)
}

type mocks struct {
	event  *MockEventService
	ticket *MockTicketService
	resale *MockResaleService
	refund *MockRefundService
}

// newMockRouter はモックのサービスでルートを登録した Echo を返す
func newMockRouter() (*echo.Echo, *mocks) {
	m := &mocks{
		event:  new(MockEventService),
		ticket: new(MockTicketService),
		resale: new(MockResaleService),
		refund: new(MockRefundService),
	}
	e := NewTestEcho()
	RegisterRoutes(e, Handlers{
		Event:     NewEventHandler(m.event, m.refund),
		Ticket:    NewTicketHandler(m.ticket),
		Resale:    NewResaleHandler(m.resale),
		Principal: NewPrincipalHandler(m.ticket),
		Health:    NewHealthHandler(nil),
	}, RouteOptions{})
	return e, m
}

// serve はリクエストを1件処理する。caller が空なら X-Caller-ID を付けない
func serve(e *echo.Echo, method, path, body, caller string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if caller != "" {
		req.Header.Set(middleware.HeaderCallerID, caller)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var fixedTime = time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)

func sampleEvent() *event.Event {
	return &event.Event{
		ID:          1,
		Name:        "Go Conference",
		Date:        fixedTime.Add(30 * 24 * time.Hour),
		Organizer:   "alice",
		TicketPrice: dec("1.0"),
		MaxSupply:   3,
		TicketsSold: 1,
		CreatedAt:   fixedTime,
	}
}

func sampleTicket() *ticket.Ticket {
	paid := dec("1.0")
	return ticket.NewTicket(1, 1, "bob", &paid, fixedTime)
}

func sampleListing() *listing.Listing {
	return listing.NewListing(1, "bob", dec("1.05"), fixedTime)
}
