package placement

import (
	"fmt"
	"strings"
)

// ViolationKind 配置バリデーション違反の種別
type ViolationKind string

const (
	ViolationPositionOutOfRange   ViolationKind = "position_out_of_range"  // 開始位置が1〜8の範囲外
	ViolationBoundaryExceeded     ViolationKind = "boundary_exceeded"      // 終了位置がページ境界を超過
	ViolationMissingRequiredField ViolationKind = "missing_required_field" // クーポン配置の必須フィールド欠落
	ViolationPlacementConflict    ViolationKind = "placement_conflict"     // 既存配置との範囲重複
)

// Violation 配置バリデーション違反
type Violation struct {
	Kind        ViolationKind
	Field       string   // missing_required_fieldの場合のフィールド名
	Message     string
	ConflictIDs []string // placement_conflictの場合の衝突先配置ID
}

// ValidationError 配置バリデーションエラー
// 全ての違反をまとめて保持する（最初の違反で打ち切らない）
type ValidationError struct {
	Violations []Violation
}

// Error エラーメッセージを返す
func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		messages = append(messages, v.Message)
	}
	return fmt.Sprintf("placement validation failed: %s", strings.Join(messages, "; "))
}

// HasKind 指定した種別の違反が含まれるかどうかを返す
func (e *ValidationError) HasKind(kind ViolationKind) bool {
	for _, v := range e.Violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

// NewValidationError 違反リストからValidationErrorを作成（違反がなければnil）
func NewValidationError(violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}
