package voucher

import (
	"time"

	"voucher-book-server/internal/domain/voucher"
)

// CreateVoucherRequest クーポン作成リクエスト
type CreateVoucherRequest struct {
	BusinessID     string
	CategoryID     string
	ValidFrom      *time.Time
	ValidUntil     *time.Time
	MaxRedemptions int
	DiscountType   string
	DiscountValue  int64
	Metadata       map[string]interface{}
}

// UpdateVoucherRequest クーポン更新リクエスト
type UpdateVoucherRequest struct {
	VoucherID      string
	CategoryID     string
	ValidFrom      *time.Time
	ValidUntil     *time.Time
	MaxRedemptions int
	DiscountType   string
	DiscountValue  int64
	Metadata       map[string]interface{}
}

// ClaimVoucherRequest クーポン取得リクエスト
type ClaimVoucherRequest struct {
	VoucherID string
	UserID    string
}

// ClaimVoucherResponse クーポン取得レスポンス
type ClaimVoucherResponse struct {
	ClaimID   string
	VoucherID string
	UserID    string
	State     string
	ClaimedAt time.Time
}

// RedeemVoucherRequest クーポン使用リクエスト
type RedeemVoucherRequest struct {
	VoucherID string
	UserID    string
}

// RedeemVoucherResponse クーポン使用レスポンス
type RedeemVoucherResponse struct {
	VoucherID          string
	UserID             string
	State              string
	CurrentRedemptions int
	RedeemedAt         time.Time
}

// CanTransitionRequest 遷移可否確認リクエスト
type CanTransitionRequest struct {
	VoucherID string
	Target    string
}

// CanTransitionResponse 遷移可否確認レスポンス
// 状態は変更せず、遷移テーブルとガード条件の評価結果のみを返す
type CanTransitionResponse struct {
	VoucherID          string
	CurrentState       string
	Target             string
	Allowed            bool
	Reason             string
	AllowedTransitions []string
}

// VoucherResponse クーポンレスポンス
type VoucherResponse struct {
	ID                 string
	BusinessID         string
	CategoryID         string
	State              string
	ValidFrom          *time.Time
	ValidUntil         *time.Time
	MaxRedemptions     int
	CurrentRedemptions int
	DiscountType       string
	DiscountValue      int64
	Metadata           map[string]interface{}
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ListVouchersRequest クーポン一覧取得リクエスト
type ListVouchersRequest struct {
	Limit  int
	Offset int
}

// ListVouchersResponse クーポン一覧取得レスポンス
type ListVouchersResponse struct {
	Vouchers []*VoucherResponse
	Total    int
	Limit    int
	Offset   int
}

// toVoucherResponse エンティティをレスポンスDTOに変換
func toVoucherResponse(v *voucher.Voucher) *VoucherResponse {
	return &VoucherResponse{
		ID:                 v.ID(),
		BusinessID:         v.BusinessID(),
		CategoryID:         v.CategoryID(),
		State:              v.State().String(),
		ValidFrom:          v.ValidFrom(),
		ValidUntil:         v.ValidUntil(),
		MaxRedemptions:     v.MaxRedemptions(),
		CurrentRedemptions: v.CurrentRedemptions(),
		DiscountType:       v.DiscountType(),
		DiscountValue:      v.DiscountValue(),
		Metadata:           v.Metadata(),
		CreatedAt:          v.CreatedAt(),
		UpdatedAt:          v.UpdatedAt(),
	}
}
