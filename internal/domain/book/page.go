package book

import (
	"errors"
	"time"

	"voucher-book-server/internal/domain/placement"
)

// VoucherBookPage クーポンブックのページエンティティ
// スペース使用量・空き・充填状態は保存せず、配置集合から都度導出する
type VoucherBookPage struct {
	id         string
	bookID     string
	pageNumber int // ブック内で一意（1始まり）
	layoutType string
	placements []*placement.AdPlacement
	createdAt  time.Time
	updatedAt  time.Time
}

// NewVoucherBookPage 新しいVoucherBookPageエンティティを作成
func NewVoucherBookPage(id, bookID string, pageNumber int, layoutType string) (*VoucherBookPage, error) {
	if id == "" {
		return nil, errors.New("invalid page id")
	}
	if bookID == "" {
		return nil, errors.New("invalid book id")
	}
	if pageNumber < 1 {
		return nil, errors.New("invalid page number")
	}

	now := time.Now()
	return &VoucherBookPage{
		id:         id,
		bookID:     bookID,
		pageNumber: pageNumber,
		layoutType: layoutType,
		placements: make([]*placement.AdPlacement, 0),
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ID ページIDを返す
func (p *VoucherBookPage) ID() string {
	return p.id
}

// BookID 所属ブックIDを返す
func (p *VoucherBookPage) BookID() string {
	return p.bookID
}

// PageNumber ページ番号を返す
func (p *VoucherBookPage) PageNumber() int {
	return p.pageNumber
}

// LayoutType レイアウト種別を返す
func (p *VoucherBookPage) LayoutType() string {
	return p.layoutType
}

// Placements ページ上の配置を位置昇順で返す
func (p *VoucherBookPage) Placements() []*placement.AdPlacement {
	return SortByPosition(p.placements)
}

// SpacesUsed ページ上の配置が消費するスペース数の合計を返す
func (p *VoucherBookPage) SpacesUsed() int {
	return placement.PageSpaceUsage(p.placements)
}

// SpacesAvailable ページの残りスペース数を返す
func (p *VoucherBookPage) SpacesAvailable() int {
	return placement.AvailableSpaces(p.placements)
}

// IsComplete ページが満杯（8スペース使用）かどうかを返す
func (p *VoucherBookPage) IsComplete() bool {
	return placement.IsPageFull(p.placements)
}

// CreatedAt 作成日時を返す
func (p *VoucherBookPage) CreatedAt() time.Time {
	return p.createdAt
}

// UpdatedAt 更新日時を返す
func (p *VoucherBookPage) UpdatedAt() time.Time {
	return p.updatedAt
}

// SetPlacements 配置集合を設定（リポジトリから読み込んだ際に使用）
func (p *VoucherBookPage) SetPlacements(placements []*placement.AdPlacement) {
	p.placements = placements
}

// SetTimestamps 作成・更新日時を設定（リポジトリから読み込んだ際に使用）
func (p *VoucherBookPage) SetTimestamps(createdAt, updatedAt time.Time) {
	p.createdAt = createdAt
	p.updatedAt = updatedAt
}

// MustNewVoucherBookPage テスト用ヘルパー: NewVoucherBookPageを呼び出し、エラーが発生した場合はpanicする
func MustNewVoucherBookPage(id, bookID string, pageNumber int, layoutType string) *VoucherBookPage {
	p, err := NewVoucherBookPage(id, bookID, pageNumber, layoutType)
	if err != nil {
		panic(err)
	}
	return p
}
