package voucher

import (
	"errors"
	"time"
)

// RedemptionGracePeriod クーポン取得後に使用が許される猶予期間
// クーポン自体の有効期限とは独立して適用される
const RedemptionGracePeriod = 30 * 24 * time.Hour

// Voucher クーポンエンティティ
type Voucher struct {
	id                 string
	businessID         string
	categoryID         string
	state              VoucherState
	validFrom          *time.Time // nil = 開始日時の制約なし
	validUntil         *time.Time // nil = 有効期限の制約なし
	maxRedemptions     int        // 0 = 無制限
	currentRedemptions int
	discountType       string // "percentage" | "fixed"
	discountValue      int64
	metadata           map[string]interface{}
	createdAt          time.Time
	updatedAt          time.Time
}

// NewVoucher 新しいVoucherエンティティを作成（初期状態はdraft）
func NewVoucher(
	id string,
	businessID string,
	categoryID string,
	validFrom *time.Time,
	validUntil *time.Time,
	maxRedemptions int,
	discountType string,
	discountValue int64,
	metadata map[string]interface{},
) (*Voucher, error) {
	if id == "" {
		return nil, errors.New("invalid voucher id")
	}
	if businessID == "" {
		return nil, errors.New("invalid business id")
	}
	if maxRedemptions < 0 {
		return nil, errors.New("invalid max redemptions")
	}
	if validFrom != nil && validUntil != nil && validUntil.Before(*validFrom) {
		return nil, errors.New("valid_until must be after valid_from")
	}

	now := time.Now()
	return &Voucher{
		id:             id,
		businessID:     businessID,
		categoryID:     categoryID,
		state:          VoucherStateDraft,
		validFrom:      validFrom,
		validUntil:     validUntil,
		maxRedemptions: maxRedemptions,
		discountType:   discountType,
		discountValue:  discountValue,
		metadata:       metadata,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ID クーポンIDを返す
func (v *Voucher) ID() string {
	return v.id
}

// BusinessID 事業者IDを返す
func (v *Voucher) BusinessID() string {
	return v.businessID
}

// CategoryID カテゴリIDを返す
func (v *Voucher) CategoryID() string {
	return v.categoryID
}

// State 現在の状態を返す
func (v *Voucher) State() VoucherState {
	return v.state
}

// ValidFrom 有効開始日時を返す
func (v *Voucher) ValidFrom() *time.Time {
	return v.validFrom
}

// ValidUntil 有効期限を返す
func (v *Voucher) ValidUntil() *time.Time {
	return v.validUntil
}

// MaxRedemptions 最大使用回数を返す（0 = 無制限）
func (v *Voucher) MaxRedemptions() int {
	return v.maxRedemptions
}

// CurrentRedemptions 現在の使用回数を返す
func (v *Voucher) CurrentRedemptions() int {
	return v.currentRedemptions
}

// DiscountType 割引種別を返す
func (v *Voucher) DiscountType() string {
	return v.discountType
}

// DiscountValue 割引値を返す
func (v *Voucher) DiscountValue() int64 {
	return v.discountValue
}

// Metadata メタデータを返す
func (v *Voucher) Metadata() map[string]interface{} {
	return v.metadata
}

// CreatedAt 作成日時を返す
func (v *Voucher) CreatedAt() time.Time {
	return v.createdAt
}

// UpdatedAt 更新日時を返す
func (v *Voucher) UpdatedAt() time.Time {
	return v.updatedAt
}

// CanTransitionTo 指定状態への遷移が可能か検証する（状態は変更しない）
// 遷移テーブルの判定に加えて、対象状態ごとのガード条件を評価する
// 停止は遷移テーブル外の管理操作のため、Suspendと同じ条件で判定する
func (v *Voucher) CanTransitionTo(target VoucherState, now time.Time) error {
	if v.state == target {
		return nil
	}
	if target == VoucherStateSuspended {
		if v.state == VoucherStatePublished {
			return nil
		}
		return &IllegalTransitionError{
			From:    v.state,
			To:      target,
			Allowed: v.state.AllowedTransitions(),
		}
	}
	if !v.state.CanTransitionTo(target) {
		return &IllegalTransitionError{
			From:    v.state,
			To:      target,
			Allowed: v.state.AllowedTransitions(),
		}
	}

	switch target {
	case VoucherStatePublished:
		return v.checkPublishGuard(now)
	case VoucherStateClaimed:
		return v.checkClaimGuard(now)
	case VoucherStateRedeemed:
		return v.checkRedeemGuard(now, nil)
	}
	return nil
}

// TransitionTo 指定状態へ遷移する
// 同一状態への遷移は冪等な成功として何もしない
func (v *Voucher) TransitionTo(target VoucherState, now time.Time) error {
	if v.state == target {
		return nil
	}
	if err := v.CanTransitionTo(target, now); err != nil {
		return err
	}
	v.state = target
	v.updatedAt = now
	return nil
}

// Publish クーポンを公開する
func (v *Voucher) Publish(now time.Time) error {
	return v.TransitionTo(VoucherStatePublished, now)
}

// Claim クーポンを取得する
func (v *Voucher) Claim(now time.Time) error {
	return v.TransitionTo(VoucherStateClaimed, now)
}

// Redeem クーポンを使用する
// claimedAtが指定された場合、取得から30日の猶予期間内であることを要求する
func (v *Voucher) Redeem(now time.Time, claimedAt *time.Time) error {
	if v.state != VoucherStateClaimed && v.state != VoucherStatePublished {
		return &IllegalTransitionError{
			From:    v.state,
			To:      VoucherStateRedeemed,
			Allowed: v.state.AllowedTransitions(),
		}
	}
	if err := v.checkRedeemGuard(now, claimedAt); err != nil {
		return err
	}
	v.state = VoucherStateRedeemed
	v.currentRedemptions++
	v.updatedAt = now
	return nil
}

// Expire クーポンを期限切れにする
func (v *Voucher) Expire(now time.Time) error {
	return v.TransitionTo(VoucherStateExpired, now)
}

// Suspend クーポンを停止する
// 停止は公開中のクーポンに対する管理操作として扱う
func (v *Voucher) Suspend(now time.Time) error {
	if v.state == VoucherStateSuspended {
		return nil
	}
	if v.state != VoucherStatePublished {
		return &IllegalTransitionError{
			From:    v.state,
			To:      VoucherStateSuspended,
			Allowed: v.state.AllowedTransitions(),
		}
	}
	v.state = VoucherStateSuspended
	v.updatedAt = now
	return nil
}

// CanUpdate 更新可能かどうかを検証する
// expired/redeemedは編集に対する終端状態として扱う
func (v *Voucher) CanUpdate() error {
	if v.state == VoucherStateExpired || v.state == VoucherStateRedeemed {
		return ErrVoucherNotEditable
	}
	return nil
}

// CanDelete 削除可能かどうかを検証する
// 公開中のクーポンは削除不可（先に期限切れにする必要がある）
func (v *Voucher) CanDelete() error {
	if v.state == VoucherStatePublished {
		return ErrVoucherNotDeletable
	}
	return nil
}

// checkPublishGuard 公開ガード: 現在時刻が有効期間内であること
func (v *Voucher) checkPublishGuard(now time.Time) error {
	if v.validFrom != nil && now.Before(*v.validFrom) {
		return newGuardViolation("publish_window", "voucher is not yet valid", map[string]interface{}{
			"now":        formatTime(now),
			"valid_from": formatTime(*v.validFrom),
		})
	}
	if v.validUntil != nil && now.After(*v.validUntil) {
		return newGuardViolation("publish_window", "voucher validity window has passed", map[string]interface{}{
			"now":         formatTime(now),
			"valid_until": formatTime(*v.validUntil),
		})
	}
	return nil
}

// checkClaimGuard 取得ガード: 公開中・有効期間内・使用上限未到達であること
func (v *Voucher) checkClaimGuard(now time.Time) error {
	if !v.state.IsPublished() {
		return newGuardViolation("claim_state", "voucher must be published to be claimed", map[string]interface{}{
			"state": v.state.String(),
		})
	}
	if v.validFrom != nil && now.Before(*v.validFrom) {
		return newGuardViolation("claim_window", "voucher is not yet valid", map[string]interface{}{
			"now":        formatTime(now),
			"valid_from": formatTime(*v.validFrom),
		})
	}
	if v.validUntil != nil && now.After(*v.validUntil) {
		return newGuardViolation("claim_window", "voucher validity window has passed", map[string]interface{}{
			"now":         formatTime(now),
			"valid_until": formatTime(*v.validUntil),
		})
	}
	if v.maxRedemptions > 0 && v.currentRedemptions >= v.maxRedemptions {
		return newGuardViolation("redemption_limit", "voucher redemption limit reached", map[string]interface{}{
			"max_redemptions":     v.maxRedemptions,
			"current_redemptions": v.currentRedemptions,
		})
	}
	return nil
}

// checkRedeemGuard 使用ガード: 有効期限内かつ取得から30日の猶予期間内であること
func (v *Voucher) checkRedeemGuard(now time.Time, claimedAt *time.Time) error {
	if v.validUntil != nil && now.After(*v.validUntil) {
		return newGuardViolation("redeem_window", "voucher validity window has passed", map[string]interface{}{
			"now":         formatTime(now),
			"valid_until": formatTime(*v.validUntil),
		})
	}
	if claimedAt != nil {
		deadline := claimedAt.Add(RedemptionGracePeriod)
		if now.After(deadline) {
			return newGuardViolation("grace_period", "redemption grace period has passed", map[string]interface{}{
				"claimed_at":     formatTime(*claimedAt),
				"grace_deadline": formatTime(deadline),
				"now":            formatTime(now),
			})
		}
	}
	return nil
}

// SetState 状態を設定（リポジトリから読み込んだ際に使用）
func (v *Voucher) SetState(state VoucherState) {
	v.state = state
}

// SetCurrentRedemptions 現在の使用回数を設定（リポジトリから読み込んだ際に使用）
func (v *Voucher) SetCurrentRedemptions(n int) {
	v.currentRedemptions = n
}

// SetTimestamps 作成・更新日時を設定（リポジトリから読み込んだ際に使用）
func (v *Voucher) SetTimestamps(createdAt, updatedAt time.Time) {
	v.createdAt = createdAt
	v.updatedAt = updatedAt
}

// MustNewVoucher テスト用ヘルパー: NewVoucherを呼び出し、エラーが発生した場合はpanicする
func MustNewVoucher(
	id string,
	businessID string,
	categoryID string,
	validFrom *time.Time,
	validUntil *time.Time,
	maxRedemptions int,
	discountType string,
	discountValue int64,
	metadata map[string]interface{},
) *Voucher {
	v, err := NewVoucher(id, businessID, categoryID, validFrom, validUntil, maxRedemptions, discountType, discountValue, metadata)
	if err != nil {
		panic(err)
	}
	return v
}
