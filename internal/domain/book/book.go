package book

import (
	"errors"
	"time"
)

// VoucherBook クーポンブックエンティティ
// ページと配置はブックに所有され、ブックの外に独立したライフサイクルを持たない
type VoucherBook struct {
	id             string
	title          string
	bookType       string
	month          int // 0 = 月指定なし
	year           int
	status         BookStatus
	totalPages     int
	pdfURL         string
	pdfGeneratedAt *time.Time
	pages          []*VoucherBookPage
	createdAt      time.Time
	updatedAt      time.Time
}

// NewVoucherBook 新しいVoucherBookエンティティを作成（初期状態はdraft）
func NewVoucherBook(id, title, bookType string, month, year, totalPages int) (*VoucherBook, error) {
	if id == "" {
		return nil, errors.New("invalid book id")
	}
	if title == "" {
		return nil, errors.New("invalid book title")
	}
	if year < 2000 {
		return nil, errors.New("invalid year")
	}
	if month < 0 || month > 12 {
		return nil, errors.New("invalid month")
	}
	if totalPages < 1 {
		return nil, errors.New("invalid total pages")
	}

	now := time.Now()
	return &VoucherBook{
		id:         id,
		title:      title,
		bookType:   bookType,
		month:      month,
		year:       year,
		status:     BookStatusDraft,
		totalPages: totalPages,
		pages:      make([]*VoucherBookPage, 0),
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ID ブックIDを返す
func (b *VoucherBook) ID() string {
	return b.id
}

// Title タイトルを返す
func (b *VoucherBook) Title() string {
	return b.title
}

// BookType ブック種別を返す
func (b *VoucherBook) BookType() string {
	return b.bookType
}

// Month 対象月を返す（0 = 月指定なし）
func (b *VoucherBook) Month() int {
	return b.month
}

// Year 対象年を返す
func (b *VoucherBook) Year() int {
	return b.year
}

// Status 現在の状態を返す
func (b *VoucherBook) Status() BookStatus {
	return b.status
}

// TotalPages 総ページ数を返す
func (b *VoucherBook) TotalPages() int {
	return b.totalPages
}

// PDFURL 生成済みPDFのURLを返す
func (b *VoucherBook) PDFURL() string {
	return b.pdfURL
}

// PDFGeneratedAt PDF生成日時を返す
func (b *VoucherBook) PDFGeneratedAt() *time.Time {
	return b.pdfGeneratedAt
}

// Pages ページ一覧を返す
func (b *VoucherBook) Pages() []*VoucherBookPage {
	return b.pages
}

// CreatedAt 作成日時を返す
func (b *VoucherBook) CreatedAt() time.Time {
	return b.createdAt
}

// UpdatedAt 更新日時を返す
func (b *VoucherBook) UpdatedAt() time.Time {
	return b.updatedAt
}

// AddPage ページを追加する（ページ番号はブック内で一意）
func (b *VoucherBook) AddPage(page *VoucherBookPage) error {
	for _, p := range b.pages {
		if p.PageNumber() == page.PageNumber() {
			return ErrDuplicatePageNumber
		}
	}
	b.pages = append(b.pages, page)
	b.updatedAt = time.Now()
	return nil
}

// TransitionTo 指定状態へ遷移する（前進のみ、スキップ不可）
// 同一状態への遷移は冪等な成功として何もしない
func (b *VoucherBook) TransitionTo(target BookStatus, now time.Time) error {
	if b.status == target {
		return nil
	}
	if !b.status.CanTransitionTo(target) {
		return &IllegalStatusTransitionError{
			From:    b.status,
			To:      target,
			Allowed: b.status.AllowedTransitions(),
		}
	}
	b.status = target
	b.updatedAt = now
	return nil
}

// CanPublish 公開可能か検証し、公開を妨げる未充填ページの番号を返す
// 部分充填ページを許可するかは呼び出し側が明示的に指定する（暗黙のデフォルトは持たない）
func (b *VoucherBook) CanPublish(allowPartialPages bool) error {
	if !b.status.CanTransitionTo(BookStatusPublished) {
		return &IllegalStatusTransitionError{
			From:    b.status,
			To:      BookStatusPublished,
			Allowed: b.status.AllowedTransitions(),
		}
	}
	if allowPartialPages {
		return nil
	}
	if unfilled := UnfilledPages(b.pages); len(unfilled) > 0 {
		return &UnfilledPagesError{PageNumbers: unfilled}
	}
	return nil
}

// Publish ブックを公開する
func (b *VoucherBook) Publish(allowPartialPages bool, now time.Time) error {
	if b.status == BookStatusPublished {
		return nil
	}
	if err := b.CanPublish(allowPartialPages); err != nil {
		return err
	}
	return b.TransitionTo(BookStatusPublished, now)
}

// MarkReadyForPrint ブックを印刷可能にする（PDF生成結果を記録）
func (b *VoucherBook) MarkReadyForPrint(pdfURL string, now time.Time) error {
	if err := b.TransitionTo(BookStatusReadyForPrint, now); err != nil {
		return err
	}
	b.pdfURL = pdfURL
	b.pdfGeneratedAt = &now
	return nil
}

// CanDelete 削除可能かどうかを検証する
// 公開後のブックは削除不可
func (b *VoucherBook) CanDelete() error {
	if !b.status.IsDraft() {
		return ErrBookNotDeletable
	}
	return nil
}

// SetStatus 状態を設定（リポジトリから読み込んだ際に使用）
func (b *VoucherBook) SetStatus(status BookStatus) {
	b.status = status
}

// SetPages ページ一覧を設定（リポジトリから読み込んだ際に使用）
func (b *VoucherBook) SetPages(pages []*VoucherBookPage) {
	b.pages = pages
}

// SetPDF PDF情報を設定（リポジトリから読み込んだ際に使用）
func (b *VoucherBook) SetPDF(pdfURL string, generatedAt *time.Time) {
	b.pdfURL = pdfURL
	b.pdfGeneratedAt = generatedAt
}

// SetTimestamps 作成・更新日時を設定（リポジトリから読み込んだ際に使用）
func (b *VoucherBook) SetTimestamps(createdAt, updatedAt time.Time) {
	b.createdAt = createdAt
	b.updatedAt = updatedAt
}

// MustNewVoucherBook テスト用ヘルパー: NewVoucherBookを呼び出し、エラーが発生した場合はpanicする
func MustNewVoucherBook(id, title, bookType string, month, year, totalPages int) *VoucherBook {
	b, err := NewVoucherBook(id, title, bookType, month, year, totalPages)
	if err != nil {
		panic(err)
	}
	return b
}
