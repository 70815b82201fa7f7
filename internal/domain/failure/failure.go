package failure

import "errors"

// エラー種別。ドメインエラーは必ずいずれかを Unwrap で返す
var (
	ErrValidation        = errors.New("validation")
	ErrAuthorization     = errors.New("authorization")
	ErrState             = errors.New("state")
	ErrInsufficientFunds = errors.New("insufficient_funds")
)

// Error は種別と理由を持つドメインエラー
type Error struct {
	kind   error
	reason string
}

func (e *Error) Error() string { return e.reason }

// Unwrap は種別の sentinel を返す
func (e *Error) Unwrap() error { return e.kind }

// Reason は利用者に返す理由文字列
func (e *Error) Reason() string { return e.reason }

func Validation(reason string) *Error        { return &Error{kind: ErrValidation, reason: reason} }
func Authorization(reason string) *Error     { return &Error{kind: ErrAuthorization, reason: reason} }
func State(reason string) *Error             { return &Error{kind: ErrState, reason: reason} }
func InsufficientFunds(reason string) *Error { return &Error{kind: ErrInsufficientFunds, reason: reason} }

// KindOf はエラーの種別を返す。ドメインエラーでなければ nil
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrAuthorization, ErrState, ErrInsufficientFunds} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// KindName はメトリクスやレスポンスで使う種別名を返す
func KindName(err error) string {
	if kind := KindOf(err); kind != nil {
		return kind.Error()
	}
	return "error"
}
