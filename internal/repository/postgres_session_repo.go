package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/paylink/internal/model"
)

// PostgresSessionRepo はPostgreSQLを使用した認証セッションリポジトリ。
// サーバーを複数プロセスで動かす構成ではインメモリストアの代わりにこれを使う。
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

// Get は電話番号に対応するセッションを返す。期限切れの場合はnilを返す。
func (r *PostgresSessionRepo) Get(ctx context.Context, phone string) (*model.VerificationSession, error) {
	session := &model.VerificationSession{}
	err := r.db.QueryRowContext(ctx,
		`SELECT phone, code, expires_at
		 FROM verification_sessions
		 WHERE phone = $1 AND expires_at > now()`,
		phone,
	).Scan(&session.Phone, &session.Code, &session.ExpiresAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find verification session: %w", err)
	}

	return session, nil
}

// Set はセッションを保存する。同じ電話番号の既存セッションは上書きされる。
func (r *PostgresSessionRepo) Set(ctx context.Context, session *model.VerificationSession) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO verification_sessions (phone, code, expires_at, created_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (phone)
		 DO UPDATE SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at, created_at = now()`,
		session.Phone, session.Code, session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert verification session: %w", err)
	}
	return nil
}

// Delete はセッションを削除する。
func (r *PostgresSessionRepo) Delete(ctx context.Context, phone string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_sessions WHERE phone = $1`,
		phone,
	)
	if err != nil {
		return fmt.Errorf("failed to delete verification session: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れセッションを一括削除し、削除件数を返す。
// クリーンアップジョブから定期的に呼び出される。冪等。
func (r *PostgresSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_sessions WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// compile-time interface check
var _ VerificationSessionRepository = (*PostgresSessionRepo)(nil)
