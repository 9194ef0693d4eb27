package handler

// ProposePlacementRequest 配置提案リクエスト
// @Description 配置提案リクエスト
type ProposePlacementRequest struct {
	ContentType   string                 `json:"content_type" example:"voucher" enums:"ad,voucher"`
	Position      int                    `json:"position" example:"1" minimum:"1" maximum:"8"`
	Size          string                 `json:"size" example:"half" enums:"single,quarter,half,full"`
	ImageURL      string                 `json:"image_url" example:"https://cdn.example.com/ad.png"`
	Title         string                 `json:"title" example:"春のキャンペーン"`
	Description   string                 `json:"description" example:"期間限定の割引クーポン"`
	QRCodePayload string                 `json:"qr_code_payload" example:"https://example.com/v/abc123"`
	ShortCode     string                 `json:"short_code" example:"SPRING24"`
	Metadata      map[string]interface{} `json:"metadata"`
}

// MovePlacementRequest 配置移動リクエスト
// @Description 配置移動リクエスト
type MovePlacementRequest struct {
	Position int    `json:"position" example:"5" minimum:"1" maximum:"8"`
	Size     string `json:"size" example:"half" enums:"single,quarter,half,full"`
}

// UpdatePlacementContentRequest 配置コンテンツ更新リクエスト
// @Description 配置コンテンツ更新リクエスト
type UpdatePlacementContentRequest struct {
	ImageURL      string `json:"image_url" example:"https://cdn.example.com/ad_v2.png"`
	Title         string `json:"title" example:"春のキャンペーン（改）"`
	Description   string `json:"description" example:"期間限定の割引クーポン"`
	QRCodePayload string `json:"qr_code_payload" example:"https://example.com/v/abc123"`
	ShortCode     string `json:"short_code" example:"SPRING24"`
}

// PlacementResponse 配置レスポンス
// @Description 配置レスポンス
type PlacementResponse struct {
	ID            string                 `json:"id" example:"plc_123"`
	PageID        string                 `json:"page_id" example:"pg_123"`
	ContentType   string                 `json:"content_type" example:"voucher"`
	Position      int                    `json:"position" example:"1"`
	EndPosition   int                    `json:"end_position" example:"4"`
	Size          string                 `json:"size" example:"half"`
	SpacesUsed    int                    `json:"spaces_used" example:"4"`
	ImageURL      string                 `json:"image_url,omitempty" example:"https://cdn.example.com/ad.png"`
	Title         string                 `json:"title,omitempty" example:"春のキャンペーン"`
	Description   string                 `json:"description,omitempty"`
	QRCodePayload string                 `json:"qr_code_payload,omitempty"`
	ShortCode     string                 `json:"short_code,omitempty" example:"SPRING24"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	Active        bool                   `json:"active" example:"true"`
}

// PageUtilizationResponse ページ使用状況レスポンス
// @Description ページ使用状況レスポンス
type PageUtilizationResponse struct {
	PageID          string              `json:"page_id" example:"pg_123"`
	BookID          string              `json:"book_id" example:"bk_123"`
	PageNumber      int                 `json:"page_number" example:"1"`
	LayoutType      string              `json:"layout_type" example:"standard"`
	SpacesUsed      int                 `json:"spaces_used" example:"6"`
	SpacesAvailable int                 `json:"spaces_available" example:"2"`
	IsComplete      bool                `json:"is_complete" example:"false"`
	Placements      []PlacementResponse `json:"placements"`
}

// BulkOperationItemRequest 一括操作の1項目
// @Description 一括操作の1項目
type BulkOperationItemRequest struct {
	PlacementID string `json:"placement_id" example:"plc_123"`
	Action      string `json:"action" example:"deactivate" enums:"activate,deactivate,delete,move"`
	Position    int    `json:"position,omitempty" example:"5"`
	Size        string `json:"size,omitempty" example:"half"`
}

// BulkOperationRequest 一括操作リクエスト
// @Description 一括操作リクエスト
type BulkOperationRequest struct {
	Operations []BulkOperationItemRequest `json:"operations"`
}

// BulkOperationFailure 一括操作の失敗項目
// @Description 一括操作の失敗項目
type BulkOperationFailure struct {
	PlacementID string `json:"placement_id" example:"plc_456"`
	Action      string `json:"action" example:"move"`
	Error       string `json:"error" example:"placement not found"`
}

// BulkOperationResponse 一括操作レスポンス
// @Description 一括操作レスポンス
type BulkOperationResponse struct {
	Successful []string               `json:"successful"`
	Failed     []BulkOperationFailure `json:"failed"`
}
