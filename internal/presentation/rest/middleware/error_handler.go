package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	otelinfra "voucher-book-server/internal/infrastructure/observability/otel"

	"voucher-book-server/internal/domain/book"
	"voucher-book-server/internal/domain/placement"
	"voucher-book-server/internal/domain/voucher"
)

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ViolationItem バリデーション違反アイテム
type ViolationItem struct {
	Kind    string `json:"kind"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationErrorResponse バリデーションエラーレスポンス
// 違反は網羅的に収集されるため、複数の違反を同時に返す
type ValidationErrorResponse struct {
	Error      string          `json:"error"`
	Message    string          `json:"message"`
	Violations []ViolationItem `json:"violations"`
}

// ErrorHandlerMiddleware エラーハンドリングミドルウェア
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			// エラーハンドリング
			return handleError(c, err, logger)
		}
	}
}

// handleError エラーを処理して適切なHTTPレスポンスを返す
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	// 配置バリデーションエラー（違反の一覧を返す）
	// 競合違反を含む場合は409、それ以外は422
	var verr *placement.ValidationError
	if errors.As(err, &verr) {
		status := http.StatusUnprocessableEntity
		errorCode := "placement_validation_failed"
		if verr.HasKind(placement.ViolationPlacementConflict) {
			status = http.StatusConflict
			errorCode = "placement_conflict"
		}
		logger.Warn(ctx, "Placement validation failed", map[string]interface{}{
			"error":      err.Error(),
			"violations": len(verr.Violations),
		})
		violations := make([]ViolationItem, len(verr.Violations))
		for i, v := range verr.Violations {
			violations[i] = ViolationItem{
				Kind:    string(v.Kind),
				Field:   v.Field,
				Message: v.Message,
			}
		}
		return c.JSON(status, ValidationErrorResponse{
			Error:      errorCode,
			Message:    err.Error(),
			Violations: violations,
		})
	}

	// クーポンの状態遷移エラー
	var terr *voucher.IllegalTransitionError
	if errors.As(err, &terr) {
		logger.Warn(ctx, "Illegal voucher transition", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "illegal_transition",
			Message: err.Error(),
		})
	}

	// クーポンのガード条件違反
	var gerr *voucher.GuardViolationError
	if errors.As(err, &gerr) {
		logger.Warn(ctx, "Voucher guard violation", map[string]interface{}{
			"error": err.Error(),
			"guard": gerr.Guard,
		})
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "guard_violation",
			Message: err.Error(),
			Code:    gerr.Guard,
		})
	}

	// ブックの状態遷移エラー
	var serr *book.IllegalStatusTransitionError
	if errors.As(err, &serr) {
		logger.Warn(ctx, "Illegal book status transition", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "illegal_status_transition",
			Message: err.Error(),
		})
	}

	// 未充填ページによる公開拒否
	var uerr *book.UnfilledPagesError
	if errors.As(err, &uerr) {
		logger.Warn(ctx, "Book has unfilled pages", map[string]interface{}{
			"error": err.Error(),
			"pages": uerr.PageNumbers,
		})
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "unfilled_pages",
			Message: err.Error(),
		})
	}

	// NotFound系のエラー
	switch {
	case errors.Is(err, placement.ErrPlacementNotFound):
		return domainError(c, logger, http.StatusNotFound, "placement_not_found", err)
	case errors.Is(err, placement.ErrPageNotFound):
		return domainError(c, logger, http.StatusNotFound, "page_not_found", err)
	case errors.Is(err, voucher.ErrVoucherNotFound):
		return domainError(c, logger, http.StatusNotFound, "voucher_not_found", err)
	case errors.Is(err, voucher.ErrClaimNotFound):
		return domainError(c, logger, http.StatusNotFound, "claim_not_found", err)
	case errors.Is(err, book.ErrBookNotFound):
		return domainError(c, logger, http.StatusNotFound, "book_not_found", err)
	case errors.Is(err, book.ErrPageNotFound):
		return domainError(c, logger, http.StatusNotFound, "page_not_found", err)
	}

	// 競合系のエラー
	switch {
	case errors.Is(err, book.ErrDuplicatePageNumber):
		return domainError(c, logger, http.StatusConflict, "duplicate_page_number", err)
	case errors.Is(err, voucher.ErrVoucherNotEditable):
		return domainError(c, logger, http.StatusConflict, "voucher_not_editable", err)
	case errors.Is(err, voucher.ErrVoucherNotDeletable):
		return domainError(c, logger, http.StatusConflict, "voucher_not_deletable", err)
	case errors.Is(err, book.ErrBookNotDeletable):
		return domainError(c, logger, http.StatusConflict, "book_not_deletable", err)
	case errors.Is(err, placement.ErrPlacementAlreadyExists):
		return domainError(c, logger, http.StatusConflict, "placement_already_exists", err)
	case errors.Is(err, voucher.ErrVoucherAlreadyExists):
		return domainError(c, logger, http.StatusConflict, "voucher_already_exists", err)
	case errors.Is(err, book.ErrBookAlreadyExists):
		return domainError(c, logger, http.StatusConflict, "book_already_exists", err)
	}

	// EchoのHTTPエラー
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     httpErr.Message,
		})
		message := ""
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(httpErr.Code)
		}
		return c.JSON(httpErr.Code, ErrorResponse{
			Error:   http.StatusText(httpErr.Code),
			Message: message,
		})
	}

	// 予期しないエラー
	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_server_error",
		Message: "An unexpected error occurred",
	})
}

// domainError ドメインエラーを指定ステータスで返す
func domainError(c echo.Context, logger *otelinfra.Logger, status int, code string, err error) error {
	logger.Warn(c.Request().Context(), "Domain error", map[string]interface{}{
		"error": err.Error(),
		"code":  code,
	})
	return c.JSON(status, ErrorResponse{
		Error:   code,
		Message: err.Error(),
	})
}
