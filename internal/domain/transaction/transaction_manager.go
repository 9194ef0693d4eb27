package transaction

import (
	"context"
	"database/sql"
)

// TransactionManager トランザクション管理インターフェース
type TransactionManager interface {
	// WithTransaction トランザクション内で関数を実行
	WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error

	// WithSerializableTransaction Serializable分離レベルのトランザクション内で関数を実行
	// 同一ページへの配置割り当てなど、読み取り結果に基づく書き込みの直列化が必要な場合に使用
	WithSerializableTransaction(ctx context.Context, fn func(*sql.Tx) error) error
}
