package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Result はコミットされた操作の結果
type Result struct {
	Seq         uint64
	Operation   Kind
	EventID     uint64
	TokenID     uint64
	Refund      *RefundReport
	CommittedAt time.Time
}

// Ledger はイベント・チケット・出品・エスクローを所有する唯一の状態機械。
// 変更操作は書き込みロック下で1件ずつ直列に適用され、読み取りは常にコミット済みの状態を見る
type Ledger struct {
	mu      sync.RWMutex
	state   *state
	journal Journal
	now     func() time.Time

	// pending は追記の成否が確定していない直前の操作。確定するまで次の変更を受け付けない
	pending *pendingCommit
	halted  error
}

type pendingCommit struct {
	entry  Entry
	commit commitFunc
}

// Option は Ledger の設定
type Option func(*Ledger)

// WithJournal はコミット前に追記するジャーナルを設定する
func WithJournal(j Journal) Option {
	return func(l *Ledger) { l.journal = j }
}

// WithClock は時刻取得関数を差し替える
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New は空の台帳を作成する
func New(opts ...Option) *Ledger {
	l := &Ledger{
		state: newState(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Submit は操作を検証し、すべての効果を一度に適用する。
// エラー時は状態を一切変更しない
func (l *Ledger) Submit(ctx context.Context, op Operation) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("操作は実行されませんでした: %w", err)
	}
	if err := l.settlePending(ctx); err != nil {
		return Result{}, err
	}

	now := l.clock()
	commit, err := l.state.plan(op, now)
	if err != nil {
		return Result{}, err
	}

	seq := l.state.seq + 1
	if l.journal != nil {
		entry, err := NewEntry(seq, op, now)
		if err != nil {
			return Result{}, err
		}
		// 追記の成否は呼び出し元の打ち切りと切り離して確定させる
		jctx := context.WithoutCancel(ctx)
		if err := l.journal.Append(jctx, entry); err != nil {
			written, rerr := l.reconcile(jctx, entry)
			if rerr != nil {
				l.pending = &pendingCommit{entry: entry, commit: commit}
				return Result{}, fmt.Errorf("ジャーナル書き込みの成否が不明: %w", errors.Join(err, rerr))
			}
			if !written {
				return Result{}, fmt.Errorf("ジャーナル書き込みに失敗: %w", err)
			}
		}
	}

	return l.apply(commit, seq, op.Kind(), now), nil
}

// apply はコミット関数を実行し、連番を進める
func (l *Ledger) apply(commit commitFunc, seq uint64, kind Kind, now time.Time) Result {
	res := commit()
	l.state.seq = seq
	if res.EventID != 0 {
		l.state.eventSeq[res.EventID] = seq
	}
	res.Seq = seq
	res.Operation = kind
	res.CommittedAt = now
	return res
}

// reconcile は追記失敗後にジャーナル末尾を読み、行が書かれていたかを返す。
// 末尾が台帳と食い違う場合は以後の変更操作を止める
func (l *Ledger) reconcile(ctx context.Context, entry Entry) (bool, error) {
	last, found, err := l.journal.Last(ctx)
	if err != nil {
		return false, fmt.Errorf("ジャーナル末尾の確認に失敗: %w", err)
	}
	switch {
	case found && last.Seq == entry.Seq && last.Operation == entry.Operation:
		return true, nil
	case !found && entry.Seq == 1, found && last.Seq+1 == entry.Seq:
		return false, nil
	default:
		var lastSeq uint64
		if found {
			lastSeq = last.Seq
		}
		l.halted = fmt.Errorf("台帳 seq=%d に対しジャーナル末尾 seq=%d: %w", entry.Seq-1, lastSeq, ErrLedgerHalted)
		return false, l.halted
	}
}

// settlePending は成否不明の操作をジャーナルに照らして確定させる
func (l *Ledger) settlePending(ctx context.Context) error {
	if l.halted != nil {
		return l.halted
	}
	if l.pending == nil {
		return nil
	}
	p := l.pending
	written, err := l.reconcile(context.WithoutCancel(ctx), p.entry)
	if err != nil {
		return fmt.Errorf("seq=%d: %w", p.entry.Seq, errors.Join(ErrJournalUnresolved, err))
	}
	l.pending = nil
	if written {
		l.apply(p.commit, p.entry.Seq, p.entry.Operation, p.entry.CommittedAt)
	}
	return nil
}

// Preflight は操作を適用せずに検証だけ行う
func (l *Ledger) Preflight(ctx context.Context, op Operation) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := l.state.plan(op, l.clock())
	return err
}

// Restore はジャーナルを先頭から再生して状態を復元する。起動時、公開前に呼ぶ
func (l *Ledger) Restore(ctx context.Context, entries []Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.Seq != l.state.seq+1 {
			return fmt.Errorf("seq=%d (期待値 %d): %w", entry.Seq, l.state.seq+1, ErrJournalGap)
		}
		op, err := DecodeOperation(entry.Operation, entry.Payload)
		if err != nil {
			return fmt.Errorf("seq=%d: %w", entry.Seq, err)
		}
		commit, err := l.state.plan(op, entry.CommittedAt)
		if err != nil {
			return fmt.Errorf("ジャーナル再生に失敗 seq=%d: %w", entry.Seq, err)
		}
		l.apply(commit, entry.Seq, entry.Operation, entry.CommittedAt)
	}
	return nil
}

// Version は最後にコミットされた操作の連番
func (l *Ledger) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.seq
}

// clock は永続化で丸められない精度の時刻を返す
func (l *Ledger) clock() time.Time {
	return l.now().UTC().Truncate(time.Microsecond)
}
