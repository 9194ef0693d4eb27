package placement

import (
	"context"
	"database/sql"
)

// PlacementRepository 配置リポジトリインターフェース
type PlacementRepository interface {
	// FindByID IDで配置を取得
	FindByID(ctx context.Context, id string) (*AdPlacement, error)

	// FindByPageID ページ上の全配置を取得
	FindByPageID(ctx context.Context, pageID string) ([]*AdPlacement, error)

	// FindByPageIDForUpdate ページ上の全配置を行ロック付きで取得
	// アロケーターの判定と書き込みを同一トランザクション内で直列化するために使用
	FindByPageIDForUpdate(ctx context.Context, tx *sql.Tx, pageID string) ([]*AdPlacement, error)

	// Create 配置を作成
	Create(ctx context.Context, tx *sql.Tx, p *AdPlacement) error

	// Update 配置を更新
	Update(ctx context.Context, tx *sql.Tx, p *AdPlacement) error

	// Delete 配置を削除
	Delete(ctx context.Context, tx *sql.Tx, id string) error
}
