package principal

import "strings"

// ID は認証済みの呼び出し元・所有者を表す識別子
type ID string

// Parse は前後の空白を除去して ID を作る
func Parse(s string) ID {
	return ID(strings.TrimSpace(s))
}

// IsZero は ID が空かを返す
func (id ID) IsZero() bool {
	return id == ""
}

func (id ID) String() string {
	return string(id)
}
