package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/escrow"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/event"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
	"github.com/sanosuguru/go-ticket-marketplace/internal/ledger"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// cachedEvent はキャッシュに保存する形式
type cachedEvent struct {
	ID          uint64          `json:"id"`
	Name        string          `json:"name"`
	Date        time.Time       `json:"date"`
	Organizer   string          `json:"organizer"`
	TicketPrice decimal.Decimal `json:"ticket_price"`
	MaxSupply   uint32          `json:"max_supply"`
	TicketsSold uint32          `json:"tickets_sold"`
	Canceled    bool            `json:"canceled"`
	CreatedAt   time.Time       `json:"created_at"`

	Escrow  cachedEscrow `json:"escrow"`
	Version uint64       `json:"version"`
}

type cachedEscrow struct {
	Balance   decimal.Decimal `json:"balance"`
	Deposited decimal.Decimal `json:"deposited"`
	Refunded  decimal.Decimal `json:"refunded"`
}

func toCachedEvent(snap ledger.EventSnapshot) cachedEvent {
	e := snap.Event
	return cachedEvent{
		ID:          e.ID,
		Name:        e.Name,
		Date:        e.Date,
		Organizer:   e.Organizer.String(),
		TicketPrice: e.TicketPrice,
		MaxSupply:   e.MaxSupply,
		TicketsSold: e.TicketsSold,
		Canceled:    e.Canceled,
		CreatedAt:   e.CreatedAt,
		Escrow: cachedEscrow{
			Balance:   snap.Escrow.Balance,
			Deposited: snap.Escrow.Deposited,
			Refunded:  snap.Escrow.Refunded,
		},
		Version: snap.Version,
	}
}

func (v cachedEvent) toSnapshot() ledger.EventSnapshot {
	return ledger.EventSnapshot{
		Event: event.Event{
			ID:          v.ID,
			Name:        v.Name,
			Date:        v.Date,
			Organizer:   principal.ID(v.Organizer),
			TicketPrice: v.TicketPrice,
			MaxSupply:   v.MaxSupply,
			TicketsSold: v.TicketsSold,
			Canceled:    v.Canceled,
			CreatedAt:   v.CreatedAt,
		},
		Escrow: escrow.Account{
			EventID:   v.ID,
			Balance:   v.Escrow.Balance,
			Deposited: v.Escrow.Deposited,
			Refunded:  v.Escrow.Refunded,
		},
		Version: v.Version,
	}
}

// EventCache はイベント詳細の読み取りキャッシュ。状態の正は常に台帳にあり、
// 値には読み取り時点のイベント版数を載せる
type EventCache struct {
	client *redis.Client
}

// NewEventCache は新しいEventCacheインスタンスを作成する
func NewEventCache(client *redis.Client) *EventCache {
	return &EventCache{client: client}
}

// Get はイベントのスナップショットをキャッシュから取得する
func (c *EventCache) Get(ctx context.Context, eventID uint64) (ledger.EventSnapshot, error) {
	raw, err := c.client.Get(ctx, c.key(eventID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ledger.EventSnapshot{}, ErrCacheMiss
		}
		return ledger.EventSnapshot{}, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	var v cachedEvent
	if err := json.Unmarshal(raw, &v); err != nil {
		return ledger.EventSnapshot{}, fmt.Errorf("キャッシュの復号に失敗: %w", err)
	}
	return v.toSnapshot(), nil
}

// Set はスナップショットをキャッシュに保存する
func (c *EventCache) Set(ctx context.Context, snap ledger.EventSnapshot, ttl time.Duration) error {
	raw, err := json.Marshal(toCachedEvent(snap))
	if err != nil {
		return fmt.Errorf("キャッシュの符号化に失敗: %w", err)
	}
	if err := c.client.Set(ctx, c.key(snap.Event.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はイベントのキャッシュを無効化する
func (c *EventCache) Invalidate(ctx context.Context, eventID uint64) error {
	if err := c.client.Del(ctx, c.key(eventID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *EventCache) key(eventID uint64) string {
	return fmt.Sprintf("event:summary:%d", eventID)
}
