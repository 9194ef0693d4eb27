package handler

import "time"

// CreateVoucherRequest クーポン作成リクエスト
// @Description クーポン作成リクエスト
type CreateVoucherRequest struct {
	BusinessID     string                 `json:"business_id" example:"biz_123"`
	CategoryID     string                 `json:"category_id,omitempty" example:"cat_food"`
	ValidFrom      *time.Time             `json:"valid_from,omitempty"`
	ValidUntil     *time.Time             `json:"valid_until,omitempty"`
	MaxRedemptions int                    `json:"max_redemptions" example:"100"`
	DiscountType   string                 `json:"discount_type" example:"percentage" enums:"percentage,fixed"`
	DiscountValue  int64                  `json:"discount_value" example:"20"`
	Metadata       map[string]interface{} `json:"metadata"`
}

// UpdateVoucherRequest クーポン更新リクエスト
// @Description クーポン更新リクエスト
type UpdateVoucherRequest struct {
	CategoryID     string                 `json:"category_id,omitempty" example:"cat_food"`
	ValidFrom      *time.Time             `json:"valid_from,omitempty"`
	ValidUntil     *time.Time             `json:"valid_until,omitempty"`
	MaxRedemptions int                    `json:"max_redemptions" example:"100"`
	DiscountType   string                 `json:"discount_type" example:"percentage" enums:"percentage,fixed"`
	DiscountValue  int64                  `json:"discount_value" example:"30"`
	Metadata       map[string]interface{} `json:"metadata"`
}

// VoucherResponse クーポンレスポンス
// @Description クーポンレスポンス
type VoucherResponse struct {
	ID                 string                 `json:"id" example:"vch_123"`
	BusinessID         string                 `json:"business_id" example:"biz_123"`
	CategoryID         string                 `json:"category_id,omitempty" example:"cat_food"`
	State              string                 `json:"state" example:"published" enums:"draft,published,claimed,redeemed,expired,suspended"`
	ValidFrom          *time.Time             `json:"valid_from,omitempty"`
	ValidUntil         *time.Time             `json:"valid_until,omitempty"`
	MaxRedemptions     int                    `json:"max_redemptions" example:"100"`
	CurrentRedemptions int                    `json:"current_redemptions" example:"42"`
	DiscountType       string                 `json:"discount_type" example:"percentage"`
	DiscountValue      int64                  `json:"discount_value" example:"20"`
	Metadata           map[string]interface{} `json:"metadata,omitempty"`
}

// ClaimVoucherResponse クーポン取得レスポンス
// @Description クーポン取得レスポンス
type ClaimVoucherResponse struct {
	ClaimID   string    `json:"claim_id" example:"clm_123"`
	VoucherID string    `json:"voucher_id" example:"vch_123"`
	UserID    string    `json:"user_id" example:"user123"`
	State     string    `json:"state" example:"claimed"`
	ClaimedAt time.Time `json:"claimed_at"`
}

// RedeemVoucherResponse クーポン使用レスポンス
// @Description クーポン使用レスポンス
type RedeemVoucherResponse struct {
	VoucherID          string    `json:"voucher_id" example:"vch_123"`
	UserID             string    `json:"user_id" example:"user123"`
	State              string    `json:"state" example:"redeemed"`
	CurrentRedemptions int       `json:"current_redemptions" example:"43"`
	RedeemedAt         time.Time `json:"redeemed_at"`
}

// CanTransitionResponse 遷移可否確認レスポンス
// @Description 遷移可否確認レスポンス
type CanTransitionResponse struct {
	VoucherID          string   `json:"voucher_id" example:"vch_123"`
	CurrentState       string   `json:"current_state" example:"draft"`
	Target             string   `json:"target" example:"published"`
	Allowed            bool     `json:"allowed" example:"true"`
	Reason             string   `json:"reason,omitempty"`
	AllowedTransitions []string `json:"allowed_transitions"`
}

// ListVouchersResponse クーポン一覧レスポンス
// @Description クーポン一覧レスポンス
type ListVouchersResponse struct {
	Vouchers []VoucherResponse `json:"vouchers"`
	Total    int               `json:"total" example:"120"`
	Limit    int               `json:"limit" example:"20"`
	Offset   int               `json:"offset" example:"0"`
}
