package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
	redisinfra "github.com/sanosuguru/go-ticket-marketplace/internal/infrastructure/redis"
	"github.com/sanosuguru/go-ticket-marketplace/internal/ledger"
	"github.com/sanosuguru/go-ticket-marketplace/internal/pkg/metrics"
)

const (
	organizer principal.ID = "organizer"
	buyer     principal.ID = "buyer"
	reseller  principal.ID = "reseller"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// MockEventCache はEventCacheのモック
type MockEventCache struct {
	mock.Mock
}

func (m *MockEventCache) Get(ctx context.Context, eventID uint64) (ledger.EventSnapshot, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(ledger.EventSnapshot), args.Error(1)
}

func (m *MockEventCache) Set(ctx context.Context, snap ledger.EventSnapshot, ttl time.Duration) error {
	args := m.Called(ctx, snap, ttl)
	return args.Error(0)
}

func (m *MockEventCache) Invalidate(ctx context.Context, eventID uint64) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// memEventCache は並行テスト用の素朴なキャッシュ
type memEventCache struct {
	mu    sync.Mutex
	items map[uint64]ledger.EventSnapshot
}

func newMemEventCache() *memEventCache {
	return &memEventCache{items: make(map[uint64]ledger.EventSnapshot)}
}

func (c *memEventCache) Get(_ context.Context, eventID uint64) (ledger.EventSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.items[eventID]
	if !ok {
		return ledger.EventSnapshot{}, redisinfra.ErrCacheMiss
	}
	return snap, nil
}

func (c *memEventCache) Set(_ context.Context, snap ledger.EventSnapshot, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[snap.Event.ID] = snap
	return nil
}

func (c *memEventCache) Invalidate(_ context.Context, eventID uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, eventID)
	return nil
}

func newTestLedger() *ledger.Ledger {
	return ledger.New(ledger.WithClock(func() time.Time { return testNow }))
}

func newTestMetrics() *metrics.Metrics {
	return metrics.NewWithRegistry(prometheus.NewRegistry())
}

// seedEvent は価格 1.0 のイベントを台帳に直接作る
func seedEvent(t *testing.T, l *ledger.Ledger, maxSupply uint32) uint64 {
	t.Helper()
	res, err := l.Submit(context.Background(), ledger.CreateEvent{
		Caller:      organizer,
		Name:        "Conf",
		Date:        testNow.Add(30 * 24 * time.Hour),
		TicketPrice: dec("1.0"),
		MaxSupply:   maxSupply,
	})
	require.NoError(t, err)
	return res.EventID
}

func seedTicket(t *testing.T, l *ledger.Ledger, eventID uint64, owner principal.ID) uint64 {
	t.Helper()
	res, err := l.Submit(context.Background(), ledger.MintTicket{Caller: owner, EventID: eventID, To: owner, AttachedAmount: dec("1.0")})
	require.NoError(t, err)
	return res.TokenID
}
