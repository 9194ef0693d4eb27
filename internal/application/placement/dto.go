package placement

import (
	"time"
)

// ProposePlacementRequest 配置提案リクエスト
type ProposePlacementRequest struct {
	PageID        string
	ContentType   string
	Position      int
	Size          string
	ImageURL      string
	Title         string
	Description   string
	QRCodePayload string
	ShortCode     string
	Metadata      map[string]interface{}
}

// MovePlacementRequest 配置移動リクエスト
type MovePlacementRequest struct {
	PlacementID string
	Position    int
	Size        string
}

// UpdatePlacementContentRequest 配置コンテンツ更新リクエスト
type UpdatePlacementContentRequest struct {
	PlacementID   string
	ImageURL      string
	Title         string
	Description   string
	QRCodePayload string
	ShortCode     string
}

// DeletePlacementRequest 配置削除リクエスト
type DeletePlacementRequest struct {
	PlacementID string
}

// PlacementResponse 配置レスポンス
type PlacementResponse struct {
	ID            string
	PageID        string
	ContentType   string
	Position      int
	EndPosition   int
	Size          string
	SpacesUsed    int
	ImageURL      string
	Title         string
	Description   string
	QRCodePayload string
	ShortCode     string
	Metadata      map[string]interface{}
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PageUtilizationResponse ページ使用状況レスポンス
type PageUtilizationResponse struct {
	PageID          string
	BookID          string
	PageNumber      int
	LayoutType      string
	SpacesUsed      int
	SpacesAvailable int
	IsComplete      bool
	Placements      []*PlacementResponse
}

// BulkOperationItem 一括操作の1項目
type BulkOperationItem struct {
	PlacementID string
	Action      string // "activate" | "deactivate" | "delete" | "move"
	Position    int    // Action=moveの場合に使用
	Size        string // Action=moveの場合に使用
}

// BulkOperationRequest 一括操作リクエスト
type BulkOperationRequest struct {
	Operations []BulkOperationItem
}

// BulkOperationFailure 一括操作の失敗項目
type BulkOperationFailure struct {
	PlacementID string
	Action      string
	Error       string
}

// BulkOperationResponse 一括操作レスポンス
// 項目単位で成否を返し、一部の失敗が他の項目を妨げない
type BulkOperationResponse struct {
	Successful []string
	Failed     []BulkOperationFailure
}
