package handler

import "time"

// CreateBookRequest ブック作成リクエスト
// @Description ブック作成リクエスト
type CreateBookRequest struct {
	Title      string `json:"title" example:"2026年3月号"`
	BookType   string `json:"book_type" example:"monthly" enums:"monthly,special"`
	Month      int    `json:"month,omitempty" example:"3"`
	Year       int    `json:"year" example:"2026"`
	TotalPages int    `json:"total_pages" example:"24"`
}

// AddPageRequest ページ追加リクエスト
// @Description ページ追加リクエスト
type AddPageRequest struct {
	PageNumber int    `json:"page_number" example:"1" minimum:"1"`
	LayoutType string `json:"layout_type" example:"standard"`
}

// PublishBookRequest ブック公開リクエスト
// @Description ブック公開リクエスト
type PublishBookRequest struct {
	AllowPartialPages bool `json:"allow_partial_pages" example:"false"`
}

// CanPublishResponse 公開可否確認レスポンス
// @Description 公開可否確認レスポンス
type CanPublishResponse struct {
	BookID        string `json:"book_id" example:"bk_123"`
	Allowed       bool   `json:"allowed" example:"false"`
	Reason        string `json:"reason,omitempty" example:"voucher book has 1 unfilled page(s): [2]"`
	UnfilledPages []int  `json:"unfilled_pages,omitempty"`
}

// MarkReadyForPrintRequest 印刷準備完了リクエスト
// @Description 印刷準備完了リクエスト
type MarkReadyForPrintRequest struct {
	PDFURL string `json:"pdf_url" example:"https://cdn.example.com/books/bk_123.pdf"`
}

// PageResponse ページレスポンス
// @Description ページレスポンス
type PageResponse struct {
	ID              string `json:"id" example:"pg_123"`
	BookID          string `json:"book_id" example:"bk_123"`
	PageNumber      int    `json:"page_number" example:"1"`
	LayoutType      string `json:"layout_type" example:"standard"`
	SpacesUsed      int    `json:"spaces_used" example:"6"`
	SpacesAvailable int    `json:"spaces_available" example:"2"`
	IsComplete      bool   `json:"is_complete" example:"false"`
	PlacementCount  int    `json:"placement_count" example:"3"`
}

// BookResponse クーポンブックレスポンス
// @Description クーポンブックレスポンス
type BookResponse struct {
	ID             string         `json:"id" example:"bk_123"`
	Title          string         `json:"title" example:"2026年3月号"`
	BookType       string         `json:"book_type" example:"monthly"`
	Month          int            `json:"month,omitempty" example:"3"`
	Year           int            `json:"year" example:"2026"`
	Status         string         `json:"status" example:"draft" enums:"draft,published,ready_for_print"`
	TotalPages     int            `json:"total_pages" example:"24"`
	PDFURL         string         `json:"pdf_url,omitempty"`
	PDFGeneratedAt *time.Time     `json:"pdf_generated_at,omitempty"`
	Pages          []PageResponse `json:"pages"`
}

// ListBooksResponse ブック一覧レスポンス
// @Description ブック一覧レスポンス
type ListBooksResponse struct {
	Books  []BookResponse `json:"books"`
	Total  int            `json:"total" example:"12"`
	Limit  int            `json:"limit" example:"20"`
	Offset int            `json:"offset" example:"0"`
}
