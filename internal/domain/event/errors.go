package event

import "github.com/sanosuguru/go-ticket-marketplace/internal/domain/failure"

// Event ドメインのエラー定義
var (
	ErrEventNotFound        = failure.State("イベントが見つかりません")
	ErrEventNameRequired    = failure.Validation("イベント名は必須です")
	ErrEventDateNotFuture   = failure.Validation("開催日時は現在より後である必要があります")
	ErrInvalidTicketPrice   = failure.Validation("チケット価格は0より大きい必要があります")
	ErrInvalidMaxSupply     = failure.Validation("販売上限は1以上である必要があります")
	ErrNotOrganizer         = failure.Authorization("イベントの主催者ではありません")
	ErrEventAlreadyCanceled = failure.State("イベントは既にキャンセルされています")
	ErrEventCanceled        = failure.State("イベントはキャンセルされています")
	ErrEventNotCanceled     = failure.State("イベントはキャンセルされていません")
	ErrEventSoldOut         = failure.State("チケットは完売しています")
)
