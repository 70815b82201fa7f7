package ledger

import (
	"context"
	"time"
)

// Entry はコミット済み操作1件分のジャーナル行
type Entry struct {
	Seq         uint64
	Operation   Kind
	Payload     []byte
	CommittedAt time.Time
}

// Journal はコミット済み操作の追記専用ストア
type Journal interface {
	// Append は1件追記する。失敗したら操作はコミットされない
	Append(ctx context.Context, entry Entry) error
	// Load は全件を Seq 昇順で返す
	Load(ctx context.Context) ([]Entry, error)
	// Last は最大 Seq の行を返す。空なら found=false
	Last(ctx context.Context) (entry Entry, found bool, err error)
}

// NewEntry は操作からジャーナル行を作る
func NewEntry(seq uint64, op Operation, committedAt time.Time) (Entry, error) {
	payload, err := EncodeOperation(op)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Seq:         seq,
		Operation:   op.Kind(),
		Payload:     payload,
		CommittedAt: committedAt,
	}, nil
}
