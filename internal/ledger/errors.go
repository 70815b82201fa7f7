package ledger

import (
	"errors"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/failure"
)

var (
	ErrCallerRequired  = failure.Authorization("呼び出し元が特定できません")
	ErrJournalConflict = errors.New("ジャーナルの連番が競合しました")
	ErrJournalGap      = errors.New("ジャーナルの連番が連続していません")

	// ErrJournalUnresolved は直前の追記の成否がまだ確定していないことを表す
	ErrJournalUnresolved = errors.New("直前のジャーナル追記の成否が未確定です")
	// ErrLedgerHalted はジャーナルと台帳が食い違い、変更操作を止めたことを表す
	ErrLedgerHalted = errors.New("ジャーナルと台帳が一致しないため変更を停止しました")
)
