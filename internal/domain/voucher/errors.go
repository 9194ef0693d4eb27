package voucher

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrVoucherNotFound クーポンが見つからないエラー
	ErrVoucherNotFound = errors.New("voucher not found")
	// ErrVoucherAlreadyExists クーポンが既に存在するエラー
	ErrVoucherAlreadyExists = errors.New("voucher already exists")
	// ErrClaimNotFound クーポン取得記録が見つからないエラー
	ErrClaimNotFound = errors.New("claim not found")
	// ErrVoucherNotEditable 編集不可の状態のクーポンを更新しようとしたエラー
	ErrVoucherNotEditable = errors.New("voucher not editable")
	// ErrVoucherNotDeletable 公開中のクーポンを削除しようとしたエラー
	ErrVoucherNotDeletable = errors.New("voucher not deletable")
)

// IllegalTransitionError 遷移テーブルにない状態遷移エラー
// 現在の状態から遷移可能な状態の一覧を保持する
type IllegalTransitionError struct {
	From    VoucherState
	To      VoucherState
	Allowed []VoucherState
}

// Error エラーメッセージを返す
func (e *IllegalTransitionError) Error() string {
	allowed := make([]string, 0, len(e.Allowed))
	for _, s := range e.Allowed {
		allowed = append(allowed, s.String())
	}
	if len(allowed) == 0 {
		return fmt.Sprintf("illegal transition from %s to %s: %s is a terminal state", e.From, e.To, e.From)
	}
	return fmt.Sprintf("illegal transition from %s to %s: allowed targets are [%s]",
		e.From, e.To, strings.Join(allowed, ", "))
}

// GuardViolationError 遷移テーブル上は合法だがガード条件で拒否された遷移エラー
// どのガードが失敗したかと、関連するタイムスタンプ・上限値を保持する
type GuardViolationError struct {
	Guard   string
	Message string
	Details map[string]interface{}
}

// Error エラーメッセージを返す
func (e *GuardViolationError) Error() string {
	return fmt.Sprintf("guard %s violated: %s", e.Guard, e.Message)
}

// newGuardViolation ガード違反エラーを作成
func newGuardViolation(guard, message string, details map[string]interface{}) *GuardViolationError {
	return &GuardViolationError{
		Guard:   guard,
		Message: message,
		Details: details,
	}
}

// formatTime ガード違反詳細用にタイムスタンプを整形
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
