package book

import (
	"sort"

	"voucher-book-server/internal/domain/placement"
)

// GroupByPage ページ番号ごとに配置を位置昇順でまとめる
// レンダリング順と充填チェックの両方がこの並びを使う。位置以外のキーでは並べ替えない
func GroupByPage(pages []*VoucherBookPage) map[int][]*placement.AdPlacement {
	grouped := make(map[int][]*placement.AdPlacement, len(pages))
	for _, page := range pages {
		grouped[page.PageNumber()] = SortByPosition(page.placements)
	}
	return grouped
}

// SortByPosition 配置を位置昇順に並べ替えた新しいスライスを返す
func SortByPosition(placements []*placement.AdPlacement) []*placement.AdPlacement {
	sorted := make([]*placement.AdPlacement, len(placements))
	copy(sorted, placements)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position() < sorted[j].Position()
	})
	return sorted
}

// UnfilledPages 満杯でないページのページ番号を昇順で返す
func UnfilledPages(pages []*VoucherBookPage) []int {
	unfilled := make([]int, 0)
	for _, page := range pages {
		if !page.IsComplete() {
			unfilled = append(unfilled, page.PageNumber())
		}
	}
	sort.Ints(unfilled)
	return unfilled
}
