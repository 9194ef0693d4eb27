package placement

import (
	"errors"
	"time"
)

// AdPlacement 広告・クーポン配置エンティティ
// 1ページ（8スペース）上の連続したスペース範囲を占有する
type AdPlacement struct {
	id            string
	pageID        string
	contentType   ContentType
	position      int // 占有する最初のスペース（1〜8）
	size          PlacementSize
	spacesUsed    int // sizeから導出
	imageURL      string
	title         string
	description   string
	qrCodePayload string // contentType=voucherの場合は必須
	shortCode     string // contentType=voucherの場合は必須
	metadata      map[string]interface{}
	active        bool
	createdAt     time.Time
	updatedAt     time.Time
}

// NewAdPlacement 新しいAdPlacementエンティティを作成
// 位置・衝突・必須フィールドの検証はアロケーター（ValidatePlacement）側で行う
func NewAdPlacement(
	id string,
	pageID string,
	contentType ContentType,
	position int,
	size PlacementSize,
	metadata map[string]interface{},
) (*AdPlacement, error) {
	if id == "" {
		return nil, errors.New("invalid placement id")
	}
	if pageID == "" {
		return nil, errors.New("invalid page id")
	}

	now := time.Now()
	return &AdPlacement{
		id:          id,
		pageID:      pageID,
		contentType: contentType,
		position:    position,
		size:        size,
		spacesUsed:  size.SpaceCost(),
		metadata:    metadata,
		active:      true,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ID 配置IDを返す
func (p *AdPlacement) ID() string {
	return p.id
}

// PageID 所属ページIDを返す
func (p *AdPlacement) PageID() string {
	return p.pageID
}

// ContentType コンテンツ種別を返す
func (p *AdPlacement) ContentType() ContentType {
	return p.contentType
}

// Position 開始位置を返す
func (p *AdPlacement) Position() int {
	return p.position
}

// Size 配置サイズを返す
func (p *AdPlacement) Size() PlacementSize {
	return p.size
}

// SpacesUsed 占有スペース数を返す
func (p *AdPlacement) SpacesUsed() int {
	return p.spacesUsed
}

// EndPosition 占有する最後のスペースを返す
func (p *AdPlacement) EndPosition() int {
	return EndPosition(p.position, p.size)
}

// ImageURL 画像URLを返す
func (p *AdPlacement) ImageURL() string {
	return p.imageURL
}

// Title タイトルを返す
func (p *AdPlacement) Title() string {
	return p.title
}

// Description 説明文を返す
func (p *AdPlacement) Description() string {
	return p.description
}

// QRCodePayload QRコードペイロードを返す
func (p *AdPlacement) QRCodePayload() string {
	return p.qrCodePayload
}

// ShortCode ショートコードを返す
func (p *AdPlacement) ShortCode() string {
	return p.shortCode
}

// Metadata メタデータを返す
func (p *AdPlacement) Metadata() map[string]interface{} {
	return p.metadata
}

// Active 有効状態かどうかを返す
func (p *AdPlacement) Active() bool {
	return p.active
}

// CreatedAt 作成日時を返す
func (p *AdPlacement) CreatedAt() time.Time {
	return p.createdAt
}

// UpdatedAt 更新日時を返す
func (p *AdPlacement) UpdatedAt() time.Time {
	return p.updatedAt
}

// SetContent 表示コンテンツを設定
func (p *AdPlacement) SetContent(imageURL, title, description string) {
	p.imageURL = imageURL
	p.title = title
	p.description = description
	p.updatedAt = time.Now()
}

// SetVoucherFields クーポン配置の必須フィールドを設定
func (p *AdPlacement) SetVoucherFields(qrCodePayload, shortCode string) {
	p.qrCodePayload = qrCodePayload
	p.shortCode = shortCode
	p.updatedAt = time.Now()
}

// MoveTo 位置とサイズを変更（spacesUsedを再計算）
// 境界・衝突の再検証はアロケーター（ValidateMove）側で行う
func (p *AdPlacement) MoveTo(position int, size PlacementSize) {
	p.position = position
	p.size = size
	p.spacesUsed = size.SpaceCost()
	p.updatedAt = time.Now()
}

// Activate 配置を有効化
func (p *AdPlacement) Activate() {
	p.active = true
	p.updatedAt = time.Now()
}

// Deactivate 配置を無効化
func (p *AdPlacement) Deactivate() {
	p.active = false
	p.updatedAt = time.Now()
}

// SetActive 有効状態を設定（リポジトリから読み込んだ際に使用）
func (p *AdPlacement) SetActive(active bool) {
	p.active = active
}

// SetTimestamps 作成・更新日時を設定（リポジトリから読み込んだ際に使用）
func (p *AdPlacement) SetTimestamps(createdAt, updatedAt time.Time) {
	p.createdAt = createdAt
	p.updatedAt = updatedAt
}

// MustNewAdPlacement テスト用ヘルパー: NewAdPlacementを呼び出し、エラーが発生した場合はpanicする
func MustNewAdPlacement(
	id string,
	pageID string,
	contentType ContentType,
	position int,
	size PlacementSize,
	metadata map[string]interface{},
) *AdPlacement {
	p, err := NewAdPlacement(id, pageID, contentType, position, size, metadata)
	if err != nil {
		panic(err)
	}
	return p
}
