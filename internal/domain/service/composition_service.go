package service

import (
	"context"

	"voucher-book-server/internal/domain/book"
)

// CompositionService ブック構成に関するドメインサービス
// ページ充填状態の集計と公開可否の判定を提供する
type CompositionService struct {
	bookRepo book.BookRepository
}

// NewCompositionService 新しいCompositionServiceを作成
func NewCompositionService(bookRepo book.BookRepository) *CompositionService {
	return &CompositionService{
		bookRepo: bookRepo,
	}
}

// UnfilledPages ブックの未充填ページ番号を返す
func (s *CompositionService) UnfilledPages(ctx context.Context, bookID string) ([]int, error) {
	b, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return book.UnfilledPages(b.Pages()), nil
}

// CanPublish ブックが公開可能か検証する
// 部分充填ページの許可は呼び出し側が明示的に指定する
func (s *CompositionService) CanPublish(ctx context.Context, bookID string, allowPartialPages bool) error {
	b, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return err
	}
	return b.CanPublish(allowPartialPages)
}
