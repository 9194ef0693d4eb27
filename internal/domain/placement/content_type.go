package placement

import (
	"fmt"
)

// ContentType 配置コンテンツの種別を表す値オブジェクト
type ContentType string

const (
	ContentTypeAd      ContentType = "ad"      // 広告
	ContentTypeVoucher ContentType = "voucher" // クーポン
)

// NewContentType 新しいContentTypeを作成
func NewContentType(s string) (ContentType, error) {
	switch s {
	case "ad", "voucher":
		return ContentType(s), nil
	default:
		return "", fmt.Errorf("invalid content type: %s", s)
	}
}

// String 文字列表現を返す
func (ct ContentType) String() string {
	return string(ct)
}

// Valid 有効なコンテンツ種別かどうかを返す
func (ct ContentType) Valid() bool {
	switch ct {
	case ContentTypeAd, ContentTypeVoucher:
		return true
	default:
		return false
	}
}

// IsVoucher クーポン配置かどうかを返す
func (ct ContentType) IsVoucher() bool {
	return ct == ContentTypeVoucher
}
