package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
)

// Kind は操作の種別タグ。ジャーナルとメトリクスのラベルに使う
type Kind string

const (
	KindCreateEvent    Kind = "create_event"
	KindCancelEvent    Kind = "cancel_event"
	KindMintTicket     Kind = "mint_ticket"
	KindValidateTicket Kind = "validate_ticket"
	KindResellTicket   Kind = "resell_ticket"
	KindCancelResale   Kind = "cancel_resale"
	KindBuyResale      Kind = "buy_resale"
	KindRefundEvent    Kind = "refund_event"
)

// Operation は台帳に対する変更操作。このパッケージの型だけが実装できる
type Operation interface {
	Kind() Kind
	CallerID() principal.ID
	isOperation()
}

// CreateEvent はイベント作成
type CreateEvent struct {
	Caller      principal.ID    `json:"caller"`
	Name        string          `json:"name"`
	Date        time.Time       `json:"date"`
	TicketPrice decimal.Decimal `json:"ticket_price"`
	MaxSupply   uint32          `json:"max_supply"`
}

// CancelEvent はイベント中止
type CancelEvent struct {
	Caller  principal.ID `json:"caller"`
	EventID uint64       `json:"event_id"`
}

// MintTicket はチケット発行（主催者の無償発行または一次購入）
type MintTicket struct {
	Caller         principal.ID    `json:"caller"`
	EventID        uint64          `json:"event_id"`
	To             principal.ID    `json:"to"`
	AttachedAmount decimal.Decimal `json:"attached_amount"`
}

// ValidateTicket は入場処理
type ValidateTicket struct {
	Caller  principal.ID `json:"caller"`
	TokenID uint64       `json:"token_id"`
}

// ResellTicket は転売出品
type ResellTicket struct {
	Caller  principal.ID    `json:"caller"`
	TokenID uint64          `json:"token_id"`
	Price   decimal.Decimal `json:"price"`
}

// CancelResale は出品取り消し
type CancelResale struct {
	Caller  principal.ID `json:"caller"`
	TokenID uint64       `json:"token_id"`
}

// BuyResale は出品中チケットの購入
type BuyResale struct {
	Caller         principal.ID    `json:"caller"`
	TokenID        uint64          `json:"token_id"`
	AttachedAmount decimal.Decimal `json:"attached_amount"`
}

// RefundEvent は中止イベントの返金処理
type RefundEvent struct {
	Caller  principal.ID `json:"caller"`
	EventID uint64       `json:"event_id"`
}

func (CreateEvent) Kind() Kind    { return KindCreateEvent }
func (CancelEvent) Kind() Kind    { return KindCancelEvent }
func (MintTicket) Kind() Kind     { return KindMintTicket }
func (ValidateTicket) Kind() Kind { return KindValidateTicket }
func (ResellTicket) Kind() Kind   { return KindResellTicket }
func (CancelResale) Kind() Kind   { return KindCancelResale }
func (BuyResale) Kind() Kind      { return KindBuyResale }
func (RefundEvent) Kind() Kind    { return KindRefundEvent }

func (o CreateEvent) CallerID() principal.ID    { return o.Caller }
func (o CancelEvent) CallerID() principal.ID    { return o.Caller }
func (o MintTicket) CallerID() principal.ID     { return o.Caller }
func (o ValidateTicket) CallerID() principal.ID { return o.Caller }
func (o ResellTicket) CallerID() principal.ID   { return o.Caller }
func (o CancelResale) CallerID() principal.ID   { return o.Caller }
func (o BuyResale) CallerID() principal.ID      { return o.Caller }
func (o RefundEvent) CallerID() principal.ID    { return o.Caller }

func (CreateEvent) isOperation()    {}
func (CancelEvent) isOperation()    {}
func (MintTicket) isOperation()     {}
func (ValidateTicket) isOperation() {}
func (ResellTicket) isOperation()   {}
func (CancelResale) isOperation()   {}
func (BuyResale) isOperation()      {}
func (RefundEvent) isOperation()    {}

// EncodeOperation は操作をジャーナル用の JSON にする
func EncodeOperation(op Operation) ([]byte, error) {
	payload, err := json.Marshal(op)
	if err != nil {
		return nil, fmt.Errorf("操作のエンコードに失敗: %w", err)
	}
	return payload, nil
}

// DecodeOperation は種別タグと JSON から操作を復元する
func DecodeOperation(kind Kind, payload []byte) (Operation, error) {
	var (
		op  Operation
		err error
	)
	switch kind {
	case KindCreateEvent:
		op, err = decode[CreateEvent](payload)
	case KindCancelEvent:
		op, err = decode[CancelEvent](payload)
	case KindMintTicket:
		op, err = decode[MintTicket](payload)
	case KindValidateTicket:
		op, err = decode[ValidateTicket](payload)
	case KindResellTicket:
		op, err = decode[ResellTicket](payload)
	case KindCancelResale:
		op, err = decode[CancelResale](payload)
	case KindBuyResale:
		op, err = decode[BuyResale](payload)
	case KindRefundEvent:
		op, err = decode[RefundEvent](payload)
	default:
		return nil, fmt.Errorf("未知の操作種別です: %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("操作のデコードに失敗 (%s): %w", kind, err)
	}
	return op, nil
}

func decode[T Operation](payload []byte) (Operation, error) {
	var op T
	if err := json.Unmarshal(payload, &op); err != nil {
		return nil, err
	}
	return op, nil
}
