package escrow

import "github.com/sanosuguru/go-ticket-marketplace/internal/domain/failure"

// Escrow ドメインのエラー定義
var (
	ErrAccountNotFound     = failure.State("エスクロー口座が見つかりません")
	ErrInsufficientBalance = failure.InsufficientFunds("エスクロー残高が返金額に足りません")
)
