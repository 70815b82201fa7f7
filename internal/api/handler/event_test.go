package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-ticket-marketplace/internal/api"
	"github.com/sanosuguru/go-ticket-marketplace/internal/application"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/escrow"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/event"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
	"github.com/sanosuguru/go-ticket-marketplace/internal/ledger"
)

const createBody = `{
	"name": "Go Conference",
	"date": "2026-12-31T18:00:00+09:00",
	"ticket_price": "1.0",
	"max_supply": 3
}`

func decodeError(t *testing.T, body []byte) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestEventHandler_Create(t *testing.T) {
	t.Run("正常にイベントを作成できる", func(t *testing.T) {
		e, m := newMockRouter()
		wantDate := time.Date(2026, 12, 31, 9, 0, 0, 0, time.UTC)
		m.event.On("CreateEvent", mock.Anything, mock.MatchedBy(func(in application.CreateEventInput) bool {
			return in.Caller == "alice" &&
				in.Name == "Go Conference" &&
				in.Date.Equal(wantDate) &&
				in.TicketPrice.Equal(dec("1.0")) &&
				in.MaxSupply == 3 &&
				!in.DryRun
		})).Return(sampleEvent(), nil)

		rec := serve(e, http.MethodPost, "/api/v1/events", createBody, "alice")

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp EventResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, uint64(1), resp.ID)
		assert.Equal(t, "alice", resp.Organizer)
		assert.Equal(t, "1", resp.TicketPrice)
		assert.Equal(t, uint32(2), resp.Remaining)
		m.event.AssertExpectations(t)
	})

	t.Run("preflight は検証だけ行う", func(t *testing.T) {
		e, m := newMockRouter()
		m.event.On("CreateEvent", mock.Anything, mock.MatchedBy(func(in application.CreateEventInput) bool {
			return in.DryRun
		})).Return(nil, nil)

		rec := serve(e, http.MethodPost, "/api/v1/events?preflight=true", createBody, "alice")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
		m.event.AssertExpectations(t)
	})

	t.Run("X-Caller-ID がなければ401", func(t *testing.T) {
		e, m := newMockRouter()
		rec := serve(e, http.MethodPost, "/api/v1/events", createBody, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		m.event.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
	})

	tests := []struct {
		name string
		body string
	}{
		{name: "不正なJSON", body: "invalid json"},
		{name: "名前なし", body: `{"date":"2026-12-31T18:00:00Z","ticket_price":"1","max_supply":1}`},
		{name: "日時の形式が不正", body: `{"name":"x","date":"31/12/2026","ticket_price":"1","max_supply":1}`},
		{name: "価格が数値でない", body: `{"name":"x","date":"2026-12-31T18:00:00Z","ticket_price":"abc","max_supply":1}`},
		{name: "販売上限が0", body: `{"name":"x","date":"2026-12-31T18:00:00Z","ticket_price":"1","max_supply":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, m := newMockRouter()
			rec := serve(e, http.MethodPost, "/api/v1/events", tt.body, "alice")

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "validation", decodeError(t, rec.Body.Bytes()).Kind)
			m.event.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
		})
	}

	t.Run("ドメインの検証エラーは400と種別", func(t *testing.T) {
		e, m := newMockRouter()
		m.event.On("CreateEvent", mock.Anything, mock.Anything).Return(nil, event.ErrEventDateNotFuture)

		rec := serve(e, http.MethodPost, "/api/v1/events", createBody, "alice")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec.Body.Bytes())
		assert.Equal(t, "validation", resp.Kind)
		assert.Equal(t, event.ErrEventDateNotFuture.Error(), resp.Error)
	})
}

func TestEventHandler_GetByID(t *testing.T) {
	t.Run("エスクロー残高を含めて返す", func(t *testing.T) {
		e, m := newMockRouter()
		account := escrow.NewAccount(1)
		account.Deposit(dec("1.0"))
		snap := &ledger.EventSnapshot{Event: *sampleEvent(), Escrow: *account, Version: 2}
		m.event.On("GetEvent", mock.Anything, uint64(1)).Return(snap, nil)

		rec := serve(e, http.MethodGet, "/api/v1/events/1", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp EventResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Escrow)
		assert.Equal(t, "1", resp.Escrow.Balance)
		assert.Equal(t, "0", resp.Escrow.Refunded)
		m.event.AssertNotCalled(t, "Escrow", mock.Anything, mock.Anything)
	})

	t.Run("存在しないイベントは409", func(t *testing.T) {
		e, m := newMockRouter()
		m.event.On("GetEvent", mock.Anything, uint64(99)).Return(nil, event.ErrEventNotFound)

		rec := serve(e, http.MethodGet, "/api/v1/events/99", "", "")

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "state", decodeError(t, rec.Body.Bytes()).Kind)
	})

	t.Run("IDが数値でなければ400", func(t *testing.T) {
		e, _ := newMockRouter()
		rec := serve(e, http.MethodGet, "/api/v1/events/abc", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("想定外のエラーは500で詳細を隠す", func(t *testing.T) {
		e, m := newMockRouter()
		m.event.On("GetEvent", mock.Anything, uint64(1)).Return(nil, errors.New("db exploded"))

		rec := serve(e, http.MethodGet, "/api/v1/events/1", "", "")

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "db exploded")
	})
}

func TestEventHandler_List(t *testing.T) {
	e, m := newMockRouter()
	m.event.On("ListEvents", mock.Anything).Return([]event.Event{*sampleEvent()}, uint64(1))

	rec := serve(e, http.MethodGet, "/api/v1/events", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp EventListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(1), resp.Count)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "Go Conference", resp.Events[0].Name)
}

func TestEventHandler_Cancel(t *testing.T) {
	t.Run("主催者は中止できる", func(t *testing.T) {
		e, m := newMockRouter()
		canceled := sampleEvent()
		canceled.Cancel()
		m.event.On("CancelEvent", mock.Anything, principal.ID("alice"), uint64(1), false).Return(canceled, nil)

		rec := serve(e, http.MethodPost, "/api/v1/events/1/cancel", "", "alice")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp EventResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Canceled)
	})

	t.Run("主催者以外は403", func(t *testing.T) {
		e, m := newMockRouter()
		m.event.On("CancelEvent", mock.Anything, principal.ID("bob"), uint64(1), false).Return(nil, event.ErrNotOrganizer)

		rec := serve(e, http.MethodPost, "/api/v1/events/1/cancel", "", "bob")

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "authorization", decodeError(t, rec.Body.Bytes()).Kind)
	})

	t.Run("preflight", func(t *testing.T) {
		e, m := newMockRouter()
		m.event.On("CancelEvent", mock.Anything, principal.ID("alice"), uint64(1), true).Return(nil, nil)

		rec := serve(e, http.MethodPost, "/api/v1/events/1/cancel?preflight=true", "", "alice")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	})
}

func TestEventHandler_Refund(t *testing.T) {
	t.Run("返金レポートを返す", func(t *testing.T) {
		e, m := newMockRouter()
		report := &ledger.RefundReport{
			EventID: 1,
			Results: []ledger.RefundResult{
				{TokenID: 1, Owner: "carol", Amount: dec("1.10"), Outcome: ledger.RefundOutcomeRefunded},
				{TokenID: 2, Owner: "dave", Amount: dec("1.0"), Outcome: ledger.RefundOutcomeSkippedInsufficientFunds, Reason: "残高不足"},
			},
			RefundedCount: 1,
			RefundedTotal: dec("1.10"),
			SkippedFunds:  1,
			Status:        ledger.RefundStatusPartial,
		}
		m.refund.On("RefundEvent", mock.Anything, principal.ID("alice"), uint64(1), false).Return(report, nil)

		rec := serve(e, http.MethodPost, "/api/v1/events/1/refund", "", "alice")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp RefundReportResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "partial", resp.Status)
		assert.Equal(t, "1.1", resp.RefundedTotal)
		assert.Equal(t, 1, resp.SkippedFunds)
		require.Len(t, resp.Results, 2)
		assert.Equal(t, "skipped_insufficient_funds", resp.Results[1].Outcome)
	})

	t.Run("中止されていなければ409", func(t *testing.T) {
		e, m := newMockRouter()
		m.refund.On("RefundEvent", mock.Anything, principal.ID("alice"), uint64(1), false).Return(nil, event.ErrEventNotCanceled)

		rec := serve(e, http.MethodPost, "/api/v1/events/1/refund", "", "alice")

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestEventHandler_Escrow(t *testing.T) {
	e, m := newMockRouter()
	account := escrow.NewAccount(1)
	account.Deposit(dec("2"))
	account.Withdraw(dec("0.5"))
	m.event.On("Escrow", mock.Anything, uint64(1)).Return(account, nil)

	rec := serve(e, http.MethodGet, "/api/v1/events/1/escrow", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp EscrowResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1.5", resp.Balance)
	assert.Equal(t, "2", resp.Deposited)
	assert.Equal(t, "0.5", resp.Refunded)
}
