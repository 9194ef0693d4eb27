package book

import (
	"fmt"
	"strings"
)

// BookStatus クーポンブックの状態を表す値オブジェクト
type BookStatus string

const (
	BookStatusDraft         BookStatus = "draft"           // 下書き
	BookStatusPublished     BookStatus = "published"       // 公開中
	BookStatusReadyForPrint BookStatus = "ready_for_print" // 印刷可能
)

// bookTransitions 状態遷移テーブル（前進のみ、スキップ不可）
var bookTransitions = map[BookStatus][]BookStatus{
	BookStatusDraft:         {BookStatusPublished},
	BookStatusPublished:     {BookStatusReadyForPrint},
	BookStatusReadyForPrint: {},
}

// NewBookStatus 新しいBookStatusを作成
func NewBookStatus(s string) (BookStatus, error) {
	switch s {
	case "draft", "published", "ready_for_print":
		return BookStatus(s), nil
	default:
		return "", fmt.Errorf("invalid book status: %s", s)
	}
}

// String 文字列表現を返す
func (bs BookStatus) String() string {
	return string(bs)
}

// Valid 有効なブック状態かどうかを返す
func (bs BookStatus) Valid() bool {
	switch bs {
	case BookStatusDraft, BookStatusPublished, BookStatusReadyForPrint:
		return true
	default:
		return false
	}
}

// CanTransitionTo 遷移テーブル上で指定状態へ遷移可能かどうかを返す
// 同一状態への遷移は冪等な成功として常に許可する
func (bs BookStatus) CanTransitionTo(target BookStatus) bool {
	if bs == target {
		return true
	}
	for _, allowed := range bookTransitions[bs] {
		if allowed == target {
			return true
		}
	}
	return false
}

// AllowedTransitions 現在の状態から遷移可能な状態の一覧を返す
func (bs BookStatus) AllowedTransitions() []BookStatus {
	allowed := bookTransitions[bs]
	result := make([]BookStatus, len(allowed))
	copy(result, allowed)
	return result
}

// IsDraft 下書き状態かどうかを返す
func (bs BookStatus) IsDraft() bool {
	return bs == BookStatusDraft
}

// IllegalStatusTransitionError 遷移テーブルにないブック状態遷移エラー
type IllegalStatusTransitionError struct {
	From    BookStatus
	To      BookStatus
	Allowed []BookStatus
}

// Error エラーメッセージを返す
func (e *IllegalStatusTransitionError) Error() string {
	allowed := make([]string, 0, len(e.Allowed))
	for _, s := range e.Allowed {
		allowed = append(allowed, s.String())
	}
	if len(allowed) == 0 {
		return fmt.Sprintf("illegal book status transition from %s to %s: %s is a terminal status", e.From, e.To, e.From)
	}
	return fmt.Sprintf("illegal book status transition from %s to %s: allowed targets are [%s]",
		e.From, e.To, strings.Join(allowed, ", "))
}
