package placement

import (
	"fmt"
)

// PageCapacity 1ページあたりの固定スペース数
const PageCapacity = 8

// PlacementSize 配置サイズを表す値オブジェクト
type PlacementSize string

const (
	PlacementSizeSingle  PlacementSize = "single"  // 1スペース
	PlacementSizeQuarter PlacementSize = "quarter" // 2スペース
	PlacementSizeHalf    PlacementSize = "half"    // 4スペース
	PlacementSizeFull    PlacementSize = "full"    // 8スペース（全面）
)

// NewPlacementSize 新しいPlacementSizeを作成
func NewPlacementSize(s string) (PlacementSize, error) {
	switch s {
	case "single", "quarter", "half", "full":
		return PlacementSize(s), nil
	default:
		return "", fmt.Errorf("invalid placement size: %s", s)
	}
}

// String 文字列表現を返す
func (ps PlacementSize) String() string {
	return string(ps)
}

// Valid 有効な配置サイズかどうかを返す
func (ps PlacementSize) Valid() bool {
	switch ps {
	case PlacementSizeSingle, PlacementSizeQuarter, PlacementSizeHalf, PlacementSizeFull:
		return true
	default:
		return false
	}
}

// SpaceCost サイズが消費するスペース数を返す
// 不明なサイズは1スペースとして扱う
func (ps PlacementSize) SpaceCost() int {
	switch ps {
	case PlacementSizeSingle:
		return 1
	case PlacementSizeQuarter:
		return 2
	case PlacementSizeHalf:
		return 4
	case PlacementSizeFull:
		return 8
	default:
		return 1
	}
}
