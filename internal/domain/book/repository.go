package book

import (
	"context"
)

// BookRepository クーポンブックリポジトリインターフェース
type BookRepository interface {
	// FindByID IDでブックを取得（ページ・配置込み）
	FindByID(ctx context.Context, id string) (*VoucherBook, error)

	// FindAll ブックの一覧を取得
	FindAll(ctx context.Context, limit, offset int) ([]*VoucherBook, int, error)

	// FindPageByID ページIDでページを取得
	FindPageByID(ctx context.Context, pageID string) (*VoucherBookPage, error)

	// Create ブックを作成
	Create(ctx context.Context, b *VoucherBook) error

	// CreatePage ページを作成
	CreatePage(ctx context.Context, p *VoucherBookPage) error

	// UpdateStatus ブックの状態とPDF情報を更新
	UpdateStatus(ctx context.Context, b *VoucherBook) error

	// Delete ブックを削除（ページ・配置もカスケード削除）
	Delete(ctx context.Context, id string) error
}
