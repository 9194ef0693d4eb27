package book

import (
	"errors"
	"fmt"
)

var (
	// ErrBookNotFound クーポンブックが見つからないエラー
	ErrBookNotFound = errors.New("voucher book not found")
	// ErrBookAlreadyExists クーポンブックが既に存在するエラー
	ErrBookAlreadyExists = errors.New("voucher book already exists")
	// ErrPageNotFound ページが見つからないエラー
	ErrPageNotFound = errors.New("page not found")
	// ErrDuplicatePageNumber ページ番号がブック内で重複しているエラー
	ErrDuplicatePageNumber = errors.New("duplicate page number")
	// ErrBookNotDeletable 公開後のブックを削除しようとしたエラー
	ErrBookNotDeletable = errors.New("voucher book not deletable")
)

// UnfilledPagesError 未充填ページが残っているため公開できないエラー
// 未充填ページの番号一覧を保持する
type UnfilledPagesError struct {
	PageNumbers []int
}

// Error エラーメッセージを返す
func (e *UnfilledPagesError) Error() string {
	return fmt.Sprintf("voucher book has %d unfilled page(s): %v", len(e.PageNumbers), e.PageNumbers)
}
