package book

import (
	"time"

	"voucher-book-server/internal/domain/book"
)

// CreateBookRequest クーポンブック作成リクエスト
type CreateBookRequest struct {
	Title      string
	BookType   string
	Month      int // 0 = 月指定なし
	Year       int
	TotalPages int
}

// AddPageRequest ページ追加リクエスト
type AddPageRequest struct {
	BookID     string
	PageNumber int
	LayoutType string
}

// PublishBookRequest ブック公開リクエスト
// 部分充填ページの許可は呼び出し側が明示的に指定する
type PublishBookRequest struct {
	BookID            string
	AllowPartialPages bool
}

// CanPublishRequest 公開可否確認リクエスト
type CanPublishRequest struct {
	BookID            string
	AllowPartialPages bool
}

// CanPublishResponse 公開可否確認レスポンス
type CanPublishResponse struct {
	BookID        string
	Allowed       bool
	Reason        string
	UnfilledPages []int
}

// MarkReadyForPrintRequest 印刷準備完了リクエスト
type MarkReadyForPrintRequest struct {
	BookID string
	PDFURL string
}

// PageResponse ページレスポンス
type PageResponse struct {
	ID              string
	BookID          string
	PageNumber      int
	LayoutType      string
	SpacesUsed      int
	SpacesAvailable int
	IsComplete      bool
	PlacementCount  int
}

// BookResponse クーポンブックレスポンス
type BookResponse struct {
	ID             string
	Title          string
	BookType       string
	Month          int
	Year           int
	Status         string
	TotalPages     int
	PDFURL         string
	PDFGeneratedAt *time.Time
	Pages          []*PageResponse
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ListBooksRequest ブック一覧取得リクエスト
type ListBooksRequest struct {
	Limit  int
	Offset int
}

// ListBooksResponse ブック一覧取得レスポンス
type ListBooksResponse struct {
	Books  []*BookResponse
	Total  int
	Limit  int
	Offset int
}

// toPageResponse ページエンティティをレスポンスDTOに変換
func toPageResponse(p *book.VoucherBookPage) *PageResponse {
	return &PageResponse{
		ID:              p.ID(),
		BookID:          p.BookID(),
		PageNumber:      p.PageNumber(),
		LayoutType:      p.LayoutType(),
		SpacesUsed:      p.SpacesUsed(),
		SpacesAvailable: p.SpacesAvailable(),
		IsComplete:      p.IsComplete(),
		PlacementCount:  len(p.Placements()),
	}
}

// toBookResponse ブックエンティティをレスポンスDTOに変換
func toBookResponse(b *book.VoucherBook) *BookResponse {
	pages := make([]*PageResponse, 0, len(b.Pages()))
	for _, p := range b.Pages() {
		pages = append(pages, toPageResponse(p))
	}
	return &BookResponse{
		ID:             b.ID(),
		Title:          b.Title(),
		BookType:       b.BookType(),
		Month:          b.Month(),
		Year:           b.Year(),
		Status:         b.Status().String(),
		TotalPages:     b.TotalPages(),
		PDFURL:         b.PDFURL(),
		PDFGeneratedAt: b.PDFGeneratedAt(),
		Pages:          pages,
		CreatedAt:      b.CreatedAt(),
		UpdatedAt:      b.UpdatedAt(),
	}
}
