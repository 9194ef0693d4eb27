package placement

import "errors"

var (
	// ErrPlacementNotFound 配置が見つからないエラー
	ErrPlacementNotFound = errors.New("placement not found")
	// ErrPlacementAlreadyExists 配置が既に存在するエラー
	ErrPlacementAlreadyExists = errors.New("placement already exists")
	// ErrPageNotFound 対象ページが見つからないエラー
	ErrPageNotFound = errors.New("page not found")
	// ErrNilPlacement nilの配置が渡されたエラー（呼び出し側の契約違反）
	ErrNilPlacement = errors.New("nil placement")
)
