package listing

import "github.com/sanosuguru/go-ticket-marketplace/internal/domain/failure"

// Listing ドメインのエラー定義
var (
	ErrListingNotFound      = failure.State("有効な出品がありません")
	ErrAlreadyListed        = failure.State("チケットは既に出品されています")
	ErrNotSeller            = failure.Authorization("出品者ではありません")
	ErrInvalidPrice         = failure.Validation("出品価格は0より大きい必要があります")
	ErrPriceAboveCap        = failure.Validation("出品価格が転売上限を超えています")
	ErrPriceMismatch        = failure.Validation("支払額が出品価格と一致しません")
	ErrSellerCannotPurchase = failure.Validation("出品者は自分の出品を購入できません")
)
