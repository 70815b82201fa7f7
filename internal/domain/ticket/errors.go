package ticket

import "github.com/sanosuguru/go-ticket-marketplace/internal/domain/failure"

// Ticket ドメインのエラー定義
var (
	ErrTicketNotFound         = failure.State("チケットが見つかりません")
	ErrTicketUsed             = failure.State("チケットは使用済みです")
	ErrTicketRefunded         = failure.State("チケットは返金済みです")
	ErrTicketNotPaid          = failure.State("無償発行のチケットは返金対象外です")
	ErrNotOwner               = failure.Authorization("チケットの所有者ではありません")
	ErrRecipientRequired      = failure.Validation("受取人は必須です")
	ErrInvalidAttachedAmount  = failure.Validation("支払額がチケット価格と一致しません")
	ErrOrganizerAmountNotZero = failure.Validation("主催者による発行では支払額は0である必要があります")
	ErrNegativeAmount         = failure.Validation("支払額は0以上である必要があります")
)
