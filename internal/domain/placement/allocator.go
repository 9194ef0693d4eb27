package placement

import (
	"fmt"
)

// アロケーターはページ上の配置集合に対する純粋関数群。
// 状態を持たないため、楽観的リトライのたびに最新の配置集合で再実行できる。

// ValidatePosition 開始位置がページグリッド内（1〜8）かどうかを返す
func ValidatePosition(position int) bool {
	return position >= 1 && position <= PageCapacity
}

// EndPosition 配置が占有する最後のスペースを返す
func EndPosition(position int, size PlacementSize) int {
	return position + size.SpaceCost() - 1
}

// Overlaps 既存配置と提案範囲（両端を含む）が重複するかどうかを返す
func Overlaps(existing *AdPlacement, proposedStart, proposedEnd int) bool {
	return !(proposedEnd < existing.Position() || proposedStart > existing.EndPosition())
}

// FindConflicts 提案位置・サイズと重複する既存配置を返す
func FindConflicts(existing []*AdPlacement, position int, size PlacementSize) []*AdPlacement {
	proposedEnd := EndPosition(position, size)
	conflicts := make([]*AdPlacement, 0)
	for _, p := range existing {
		if Overlaps(p, position, proposedEnd) {
			conflicts = append(conflicts, p)
		}
	}
	return conflicts
}

// PageSpaceUsage ページ上の全配置が消費するスペース数の合計を返す
func PageSpaceUsage(placements []*AdPlacement) int {
	total := 0
	for _, p := range placements {
		total += p.SpacesUsed()
	}
	return total
}

// IsPageFull ページが満杯かどうかを返す
func IsPageFull(placements []*AdPlacement) bool {
	return PageSpaceUsage(placements) >= PageCapacity
}

// AvailableSpaces ページの残りスペース数を返す
func AvailableSpaces(placements []*AdPlacement) int {
	remaining := PageCapacity - PageSpaceUsage(placements)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ValidatePlacement 配置作成の検証を行い、全ての違反を収集して返す
// 4つの検証（位置・境界・必須フィールド・衝突）は独立しており、
// 最初の違反で打ち切らず全てを報告する。違反がなければnilを返す。
func ValidatePlacement(existing []*AdPlacement, candidate *AdPlacement) error {
	if candidate == nil {
		return ErrNilPlacement
	}
	violations := collectViolations(
		existing,
		candidate.Position(),
		candidate.Size(),
		candidate.ContentType(),
		candidate.QRCodePayload(),
		candidate.ShortCode(),
	)
	return NewValidationError(violations)
}

// ValidateMove 配置の移動・サイズ変更の検証を行う
// 衝突判定は自分自身を除いた同一ページ上の配置に対して再実行する
func ValidateMove(existing []*AdPlacement, self *AdPlacement, newPosition int, newSize PlacementSize) error {
	if self == nil {
		return ErrNilPlacement
	}
	others := make([]*AdPlacement, 0, len(existing))
	for _, p := range existing {
		if p.ID() == self.ID() {
			continue
		}
		others = append(others, p)
	}
	violations := collectViolations(
		others,
		newPosition,
		newSize,
		self.ContentType(),
		self.QRCodePayload(),
		self.ShortCode(),
	)
	return NewValidationError(violations)
}

// collectViolations 位置・境界・必須フィールド・衝突の4検証を全て実行する
func collectViolations(
	existing []*AdPlacement,
	position int,
	size PlacementSize,
	contentType ContentType,
	qrCodePayload string,
	shortCode string,
) []Violation {
	violations := make([]Violation, 0)

	if !ValidatePosition(position) {
		violations = append(violations, Violation{
			Kind:    ViolationPositionOutOfRange,
			Message: fmt.Sprintf("position %d is out of range (1-%d)", position, PageCapacity),
		})
	}

	if EndPosition(position, size) > PageCapacity {
		violations = append(violations, Violation{
			Kind: ViolationBoundaryExceeded,
			Message: fmt.Sprintf("placement exceeds page boundaries: position %d with size %s ends at %d",
				position, size, EndPosition(position, size)),
		})
	}

	if contentType.IsVoucher() {
		if qrCodePayload == "" {
			violations = append(violations, Violation{
				Kind:    ViolationMissingRequiredField,
				Field:   "qr_code_payload",
				Message: "voucher placement requires qr_code_payload",
			})
		}
		if shortCode == "" {
			violations = append(violations, Violation{
				Kind:    ViolationMissingRequiredField,
				Field:   "short_code",
				Message: "voucher placement requires short_code",
			})
		}
	}

	if conflicts := FindConflicts(existing, position, size); len(conflicts) > 0 {
		ids := make([]string, 0, len(conflicts))
		for _, c := range conflicts {
			ids = append(ids, c.ID())
		}
		violations = append(violations, Violation{
			Kind:        ViolationPlacementConflict,
			Message:     fmt.Sprintf("placement conflicts with %d existing placement(s)", len(conflicts)),
			ConflictIDs: ids,
		})
	}

	return violations
}
