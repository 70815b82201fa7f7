package escrow

import "github.com/shopspring/decimal"

// Account はイベントごとの預かり金口座。一次販売の代金だけを保持する
type Account struct {
	EventID   uint64
	Balance   decimal.Decimal
	Deposited decimal.Decimal
	Refunded  decimal.Decimal
}

// NewAccount は残高0の口座を作成する
func NewAccount(eventID uint64) *Account {
	return &Account{
		EventID:   eventID,
		Balance:   decimal.Zero,
		Deposited: decimal.Zero,
		Refunded:  decimal.Zero,
	}
}

// Deposit は一次販売の代金を預け入れる
func (a *Account) Deposit(amount decimal.Decimal) {
	a.Balance = a.Balance.Add(amount)
	a.Deposited = a.Deposited.Add(amount)
}

// EnsureCovers は残高が amount 以上かを検証する
func (a *Account) EnsureCovers(amount decimal.Decimal) error {
	if a.Balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	return nil
}

// Withdraw は返金のために残高を減らす。EnsureCovers を通過した額だけ渡すこと
func (a *Account) Withdraw(amount decimal.Decimal) {
	a.Balance = a.Balance.Sub(amount)
	a.Refunded = a.Refunded.Add(amount)
}
