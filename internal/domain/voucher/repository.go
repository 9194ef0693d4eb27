package voucher

import (
	"context"
	"time"
)

// VoucherClaim ユーザーによるクーポン取得記録エンティティ
// 使用時の猶予期間判定は取得記録のclaimedAtを基準にする
type VoucherClaim struct {
	claimID   string
	voucherID string
	userID    string
	claimedAt time.Time
}

// NewVoucherClaim 新しいVoucherClaimエンティティを作成
func NewVoucherClaim(claimID, voucherID, userID string, claimedAt time.Time) *VoucherClaim {
	return &VoucherClaim{
		claimID:   claimID,
		voucherID: voucherID,
		userID:    userID,
		claimedAt: claimedAt,
	}
}

// ClaimID 取得記録IDを返す
func (c *VoucherClaim) ClaimID() string {
	return c.claimID
}

// VoucherID クーポンIDを返す
func (c *VoucherClaim) VoucherID() string {
	return c.voucherID
}

// UserID ユーザーIDを返す
func (c *VoucherClaim) UserID() string {
	return c.userID
}

// ClaimedAt 取得日時を返す
func (c *VoucherClaim) ClaimedAt() time.Time {
	return c.claimedAt
}

// VoucherRepository クーポンリポジトリインターフェース
type VoucherRepository interface {
	// FindByID IDでクーポンを取得
	FindByID(ctx context.Context, id string) (*Voucher, error)

	// FindAll クーポンの一覧を取得
	FindAll(ctx context.Context, limit, offset int) ([]*Voucher, int, error)

	// Create クーポンを作成
	Create(ctx context.Context, v *Voucher) error

	// Update クーポンを更新
	Update(ctx context.Context, v *Voucher) error

	// Delete クーポンを削除
	Delete(ctx context.Context, id string) error

	// FindClaim クーポンとユーザーの取得記録を取得
	FindClaim(ctx context.Context, voucherID, userID string) (*VoucherClaim, error)

	// SaveClaim 取得記録を保存
	SaveClaim(ctx context.Context, claim *VoucherClaim) error
}
