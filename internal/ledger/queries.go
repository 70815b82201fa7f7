package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/escrow"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/event"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/listing"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/ticket"
)

// 読み取りはすべて共有ロック下で行い、内部状態のコピーを返す

// OwnedTicket は所有チケットの一覧表示用
type OwnedTicket struct {
	Ticket        ticket.Ticket
	EventName     string
	EventCanceled bool
	Listed        bool
}

// ActiveListing は出品一覧の1件
type ActiveListing struct {
	Listing listing.Listing
	EventID uint64
}

// EventSnapshot はイベントとエスクロー口座を同じコミット時点で読んだもの
type EventSnapshot struct {
	Event  event.Event
	Escrow escrow.Account
	// Version はこのイベントに最後に触れた操作の連番
	Version uint64
}

// RefundCandidate は返金処理を進められる中止イベント
type RefundCandidate struct {
	EventID   uint64
	Organizer principal.ID
}

// EventCount は作成済みイベント数（最新のイベントID）
func (l *Ledger) EventCount() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.lastEventID
}

// GetEvent はイベントを返す
func (l *Ledger) GetEvent(id uint64) (event.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, err := l.state.event(id)
	if err != nil {
		return event.Event{}, err
	}
	return *e, nil
}

// Events は全イベントを ID 昇順で返す
func (l *Ledger) Events() []event.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	events := make([]event.Event, 0, len(l.state.events))
	for id := uint64(1); id <= l.state.lastEventID; id++ {
		if e, ok := l.state.events[id]; ok {
			events = append(events, *e)
		}
	}
	return events
}

// Ticket はチケットを返す
func (l *Ledger) Ticket(tokenID uint64) (ticket.Ticket, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, err := l.state.ticket(tokenID)
	if err != nil {
		return ticket.Ticket{}, err
	}
	return *t.Clone(), nil
}

// OwnerOf はチケットの現在の所有者
func (l *Ledger) OwnerOf(tokenID uint64) (principal.ID, error) {
	t, err := l.Ticket(tokenID)
	if err != nil {
		return "", err
	}
	return t.Owner, nil
}

// TicketToEvent はチケットが属するイベントID
func (l *Ledger) TicketToEvent(tokenID uint64) (uint64, error) {
	t, err := l.Ticket(tokenID)
	if err != nil {
		return 0, err
	}
	return t.EventID, nil
}

// Used は入場済みかを返す
func (l *Ledger) Used(tokenID uint64) (bool, error) {
	t, err := l.Ticket(tokenID)
	if err != nil {
		return false, err
	}
	return t.Used, nil
}

// Refunded は返金済みかを返す
func (l *Ledger) Refunded(tokenID uint64) (bool, error) {
	t, err := l.Ticket(tokenID)
	if err != nil {
		return false, err
	}
	return t.Refunded, nil
}

// Listing はチケットの直近の出品を返す。一度も出品されていなければ found=false
func (l *Ledger) Listing(tokenID uint64) (lst listing.Listing, found bool, err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if _, err := l.state.ticket(tokenID); err != nil {
		return listing.Listing{}, false, err
	}
	stored, ok := l.state.listings[tokenID]
	if !ok {
		return listing.Listing{}, false, nil
	}
	return *stored.Clone(), true, nil
}

// ResaleCapFor は転売価格の上限（最終支払額の110%）
func (l *Ledger) ResaleCapFor(tokenID uint64) (decimal.Decimal, error) {
	t, err := l.Ticket(tokenID)
	if err != nil {
		return decimal.Zero, err
	}
	return t.ResaleCap(), nil
}

// TotalSupply は発行済みチケット数（最新のトークンID）
func (l *Ledger) TotalSupply() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.lastTokenID
}

// Escrow はイベントのエスクロー残高
func (l *Ledger) Escrow(eventID uint64) (decimal.Decimal, error) {
	a, err := l.EscrowAccount(eventID)
	if err != nil {
		return decimal.Zero, err
	}
	return a.Balance, nil
}

// EscrowAccount はイベントのエスクロー口座
func (l *Ledger) EscrowAccount(eventID uint64) (escrow.Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if _, err := l.state.event(eventID); err != nil {
		return escrow.Account{}, err
	}
	a, err := l.state.account(eventID)
	if err != nil {
		return escrow.Account{}, err
	}
	return *a, nil
}

// EventSnapshot はイベントと口座を1回の共有ロックで読む
func (l *Ledger) EventSnapshot(eventID uint64) (EventSnapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, err := l.state.event(eventID)
	if err != nil {
		return EventSnapshot{}, err
	}
	a, err := l.state.account(eventID)
	if err != nil {
		return EventSnapshot{}, err
	}
	return EventSnapshot{Event: *e, Escrow: *a, Version: l.state.eventSeq[eventID]}, nil
}

// EventVersion はイベントに最後に触れた操作の連番。存在しなければ0
func (l *Ledger) EventVersion(eventID uint64) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.eventSeq[eventID]
}

// BalanceOf は台帳が principal に支払った累計額（返金・転売代金）
func (l *Ledger) BalanceOf(p principal.ID) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.balances[p]
}

// TicketsOf は principal が現在所有するチケットをトークンID昇順で返す
func (l *Ledger) TicketsOf(p principal.ID) []OwnedTicket {
	l.mu.RLock()
	defer l.mu.RUnlock()
	owned := []OwnedTicket{}
	for tokenID := uint64(1); tokenID <= l.state.lastTokenID; tokenID++ {
		t, ok := l.state.tickets[tokenID]
		if !ok || t.Owner != p {
			continue
		}
		e := l.state.events[t.EventID]
		owned = append(owned, OwnedTicket{
			Ticket:        *t.Clone(),
			EventName:     e.Name,
			EventCanceled: e.Canceled,
			Listed:        l.state.activeListing(tokenID) != nil,
		})
	}
	return owned
}

// ActiveListings は有効な出品をトークンID昇順で返す
func (l *Ledger) ActiveListings() []ActiveListing {
	l.mu.RLock()
	defer l.mu.RUnlock()
	active := []ActiveListing{}
	for tokenID, lst := range l.state.listings {
		if !lst.Active {
			continue
		}
		active = append(active, ActiveListing{
			Listing: *lst.Clone(),
			EventID: l.state.tickets[tokenID].EventID,
		})
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].Listing.TokenID < active[j].Listing.TokenID
	})
	return active
}

// RefundableEvents は返金処理で払い戻せるチケットが残っている中止イベント
func (l *Ledger) RefundableEvents() []RefundCandidate {
	l.mu.RLock()
	defer l.mu.RUnlock()
	candidates := []RefundCandidate{}
	for id := uint64(1); id <= l.state.lastEventID; id++ {
		e, ok := l.state.events[id]
		if !ok || !l.state.refundable(e) {
			continue
		}
		candidates = append(candidates, RefundCandidate{EventID: e.ID, Organizer: e.Organizer})
	}
	return candidates
}
