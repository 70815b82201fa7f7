package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-ticket-marketplace/internal/ledger"
)

const uniqueViolation = "23505"

// journalRow はDBの行を表す構造体
type journalRow struct {
	Seq         int64     `db:"seq"`
	Operation   string    `db:"operation"`
	Payload     []byte    `db:"payload"`
	CommittedAt time.Time `db:"committed_at"`
}

func (r *journalRow) toEntry() ledger.Entry {
	return ledger.Entry{
		Seq:         uint64(r.Seq),
		Operation:   ledger.Kind(r.Operation),
		Payload:     r.Payload,
		CommittedAt: r.CommittedAt.UTC(),
	}
}

// JournalRepository は台帳ジャーナルのPostgreSQL実装
type JournalRepository struct {
	db *sqlx.DB
}

// NewJournalRepository はJournalRepositoryを作成する
func NewJournalRepository(db *sqlx.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// Append は1件追記する。同じ seq が既にあれば ErrJournalConflict
func (r *JournalRepository) Append(ctx context.Context, entry ledger.Entry) error {
	query := `
		INSERT INTO ledger_journal (seq, operation, payload, committed_at)
		VALUES (:seq, :operation, :payload, :committed_at)
	`
	row := journalRow{
		Seq:         int64(entry.Seq),
		Operation:   string(entry.Operation),
		Payload:     entry.Payload,
		CommittedAt: entry.CommittedAt,
	}
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("seq=%d: %w", entry.Seq, ledger.ErrJournalConflict)
		}
		return fmt.Errorf("ジャーナル追記に失敗しました: %w", err)
	}
	return nil
}

// Load は全件を seq 昇順で返す
func (r *JournalRepository) Load(ctx context.Context) ([]ledger.Entry, error) {
	query := `SELECT seq, operation, payload, committed_at FROM ledger_journal ORDER BY seq ASC`

	var rows []journalRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("ジャーナル読み込みに失敗しました: %w", err)
	}

	entries := make([]ledger.Entry, len(rows))
	for i := range rows {
		entries[i] = rows[i].toEntry()
	}
	return entries, nil
}

// Last は最大 seq の行を返す。空なら found=false
func (r *JournalRepository) Last(ctx context.Context) (ledger.Entry, bool, error) {
	query := `SELECT seq, operation, payload, committed_at FROM ledger_journal ORDER BY seq DESC LIMIT 1`

	var row journalRow
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Entry{}, false, nil
		}
		return ledger.Entry{}, false, fmt.Errorf("ジャーナル末尾の読み込みに失敗しました: %w", err)
	}
	return row.toEntry(), true, nil
}

// Count は保存済みの件数
func (r *JournalRepository) Count(ctx context.Context) (uint64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM ledger_journal`); err != nil {
		return 0, fmt.Errorf("ジャーナル件数取得に失敗しました: %w", err)
	}
	return uint64(n), nil
}

// インターフェースを満たしているか確認
var _ ledger.Journal = (*JournalRepository)(nil)
