package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"

	"github.com/hitoshi/paylink/internal/model"
)

// PostgresPaymentRepo はPostgreSQLを使用した支払い履歴リポジトリ。
// インデクサーワーカーが書き込み、取引履歴APIが読み出す。
type PostgresPaymentRepo struct {
	db *sql.DB
}

// NewPostgresPaymentRepo はPostgresPaymentRepoを生成する。
func NewPostgresPaymentRepo(db *sql.DB) *PostgresPaymentRepo {
	return &PostgresPaymentRepo{db: db}
}

// UpsertBatch は支払い履歴を冪等にUPSERTする。
// IDはインデクサーがログ位置から決定的に生成するため、
// 同じログを再処理しても行は重複しない。
func (r *PostgresPaymentRepo) UpsertBatch(ctx context.Context, payments []model.IndexedPayment) error {
	if len(payments) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO payments (id, wallet_address, direction, amount, token, identifier, from_address, to_address, tx_hash, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
		   wallet_address = EXCLUDED.wallet_address,
		   direction = EXCLUDED.direction,
		   amount = EXCLUDED.amount,
		   token = EXCLUDED.token,
		   identifier = EXCLUDED.identifier,
		   from_address = EXCLUDED.from_address,
		   to_address = EXCLUDED.to_address,
		   occurred_at = EXCLUDED.occurred_at`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range payments {
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.Wallet, string(p.Direction), p.Amount.String(), p.Token,
			p.Identifier, p.From, p.To, p.TxHash, p.Timestamp,
		); err != nil {
			return fmt.Errorf("failed to upsert payment %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payments: %w", err)
	}
	return nil
}

// ListByWallet はスマートウォレットの支払い履歴を新しい順で返す。
// 送金イベントのfrom_addressはオーナーEOAのため、照合はwallet_addressで行う。
// limitが0以下の場合は100件を上限とする。
func (r *PostgresPaymentRepo) ListByWallet(ctx context.Context, wallet string, limit int) ([]model.IndexedPayment, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, wallet_address, direction, amount, token, identifier, from_address, to_address, tx_hash, occurred_at
		 FROM payments
		 WHERE wallet_address = $1
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT $2`,
		wallet, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []model.IndexedPayment
	for rows.Next() {
		var p model.IndexedPayment
		var direction, amount string
		if err := rows.Scan(
			&p.ID, &p.Wallet, &direction, &amount, &p.Token,
			&p.Identifier, &p.From, &p.To, &p.TxHash, &p.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}

		p.Direction = model.PaymentDirection(direction)
		value, ok := new(big.Int).SetString(amount, 10)
		if !ok {
			return nil, fmt.Errorf("invalid amount stored for payment %s: %s", p.ID, amount)
		}
		p.Amount = value
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}

// compile-time interface check
var _ PaymentRepository = (*PostgresPaymentRepo)(nil)
