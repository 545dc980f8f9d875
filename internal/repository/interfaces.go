// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/paylink/internal/model"
)

// PaymentRepository はインデックス済み支払い履歴の永続化インターフェース。
type PaymentRepository interface {
	// UpsertBatch は支払い履歴を冪等にUPSERTする。
	// 同一トランザクションハッシュかつ同一ログ位置の行は上書きされる。
	UpsertBatch(ctx context.Context, payments []model.IndexedPayment) error

	// ListByWallet はウォレットアドレスに関係する支払い履歴を
	// タイムスタンプ降順（新しい順）で返す。
	ListByWallet(ctx context.Context, wallet string, limit int) ([]model.IndexedPayment, error)
}

// VerificationSessionRepository は認証セッションの永続化インターフェース。
// verify.SessionStoreを満たし、複数プロセスでセッションを共有する場合に
// インメモリ実装の代わりに使用する。
type VerificationSessionRepository interface {
	// Get は電話番号に対応するセッションを返す。存在しないか期限切れの場合はnilを返す。
	Get(ctx context.Context, phone string) (*model.VerificationSession, error)
	// Set はセッションを保存する。同じ電話番号の既存セッションは上書きされる。
	Set(ctx context.Context, session *model.VerificationSession) error
	// Delete はセッションを削除する。存在しない場合もエラーにならない。
	Delete(ctx context.Context, phone string) error
	// DeleteExpired は期限切れセッションを一括削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}
