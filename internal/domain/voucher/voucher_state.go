package voucher

import (
	"fmt"
)

// VoucherState クーポンの状態を表す値オブジェクト
type VoucherState string

const (
	VoucherStateDraft     VoucherState = "draft"     // 下書き
	VoucherStatePublished VoucherState = "published" // 公開中
	VoucherStateClaimed   VoucherState = "claimed"   // 取得済み
	VoucherStateRedeemed  VoucherState = "redeemed"  // 使用済み
	VoucherStateExpired   VoucherState = "expired"   // 期限切れ（終端状態）
	VoucherStateSuspended VoucherState = "suspended" // 停止中
)

// voucherTransitions 状態遷移テーブル
// ここに含まれない遷移は全て不正（同一状態への遷移は常に許可）
var voucherTransitions = map[VoucherState][]VoucherState{
	VoucherStateDraft:     {VoucherStatePublished},
	VoucherStatePublished: {VoucherStateClaimed, VoucherStateExpired},
	VoucherStateClaimed:   {VoucherStateRedeemed, VoucherStateExpired},
	VoucherStateRedeemed:  {VoucherStateExpired},
	VoucherStateExpired:   {},
	VoucherStateSuspended: {VoucherStatePublished, VoucherStateExpired},
}

// NewVoucherState 新しいVoucherStateを作成
func NewVoucherState(s string) (VoucherState, error) {
	switch s {
	case "draft", "published", "claimed", "redeemed", "expired", "suspended":
		return VoucherState(s), nil
	default:
		return "", fmt.Errorf("invalid voucher state: %s", s)
	}
}

// String 文字列表現を返す
func (vs VoucherState) String() string {
	return string(vs)
}

// Valid 有効なクーポン状態かどうかを返す
func (vs VoucherState) Valid() bool {
	switch vs {
	case VoucherStateDraft, VoucherStatePublished, VoucherStateClaimed,
		VoucherStateRedeemed, VoucherStateExpired, VoucherStateSuspended:
		return true
	default:
		return false
	}
}

// CanTransitionTo 遷移テーブル上で指定状態へ遷移可能かどうかを返す
// 同一状態への遷移は冪等な成功として常に許可する
func (vs VoucherState) CanTransitionTo(target VoucherState) bool {
	if vs == target {
		return true
	}
	for _, allowed := range voucherTransitions[vs] {
		if allowed == target {
			return true
		}
	}
	return false
}

// AllowedTransitions 現在の状態から遷移可能な状態の一覧を返す
func (vs VoucherState) AllowedTransitions() []VoucherState {
	allowed := voucherTransitions[vs]
	result := make([]VoucherState, len(allowed))
	copy(result, allowed)
	return result
}

// IsTerminal 終端状態かどうかを返す
func (vs VoucherState) IsTerminal() bool {
	return len(voucherTransitions[vs]) == 0
}

// IsPublished 公開中かどうかを返す
func (vs VoucherState) IsPublished() bool {
	return vs == VoucherStatePublished
}
