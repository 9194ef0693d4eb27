package handler

import (
	"net/http"
	"strconv"

	bookapp "voucher-book-server/internal/application/book"

	"github.com/labstack/echo/v4"
)

// BookHandler クーポンブック関連ハンドラー
type BookHandler struct {
	bookService *bookapp.BookApplicationService
}

// NewBookHandler 新しいBookHandlerを作成
func NewBookHandler(bookService *bookapp.BookApplicationService) *BookHandler {
	return &BookHandler{
		bookService: bookService,
	}
}

// CreateBook ブック作成ハンドラー
// @Summary クーポンブックを作成
// @Description 新しいクーポンブックをdraft状態で作成します
// @Tags book
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body CreateBookRequest true "ブック作成リクエスト"
// @Success 201 {object} BookResponse "ブック作成成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Router /books [post]
func (h *BookHandler) CreateBook(c echo.Context) error {
	var reqBody CreateBookRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req := &bookapp.CreateBookRequest{
		Title:      reqBody.Title,
		BookType:   reqBody.BookType,
		Month:      reqBody.Month,
		Year:       reqBody.Year,
		TotalPages: reqBody.TotalPages,
	}

	resp, err := h.bookService.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toBookResponseModel(resp))
}

// GetBook ブック取得ハンドラー
// @Summary クーポンブックを取得
// @Description 指定されたブックの詳細をページ・配置込みで取得します
// @Tags book
// @Accept json
// @Produce json
// @Security Bearer
// @Param book_id path string true "ブックID" example(bk_123)
// @Success 200 {object} BookResponse "ブック取得成功"
// @Failure 404 {object} ErrorResponse "ブックが見つからない"
// @Router /books/{book_id} [get]
func (h *BookHandler) GetBook(c echo.Context) error {
	bookID := c.Param("book_id")
	if bookID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "book_id is required")
	}

	resp, err := h.bookService.Get(c.Request().Context(), bookID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toBookResponseModel(resp))
}

// ListBooks ブック一覧取得ハンドラー
// @Summary クーポンブック一覧を取得
// @Description ブックの一覧をページネーション付きで取得します
// @Tags book
// @Accept json
// @Produce json
// @Security Bearer
// @Param limit query int false "取得件数（デフォルト20、最大100）" example(20)
// @Param offset query int false "オフセット" example(0)
// @Success 200 {object} ListBooksResponse "一覧取得成功"
// @Router /books [get]
func (h *BookHandler) ListBooks(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	resp, err := h.bookService.List(c.Request().Context(), &bookapp.ListBooksRequest{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return err
	}

	books := make([]BookResponse, len(resp.Books))
	for i, b := range resp.Books {
		books[i] = toBookResponseModel(b)
	}

	return c.JSON(http.StatusOK, ListBooksResponse{
		Books:  books,
		Total:  resp.Total,
		Limit:  resp.Limit,
		Offset: resp.Offset,
	})
}

// AddPage ページ追加ハンドラー
// @Summary ブックにページを追加
// @Description ブックに新しいページを追加します。ページ番号はブック内で一意である必要があります
// @Tags book
// @Accept json
// @Produce json
// @Security Bearer
// @Param book_id path string true "ブックID" example(bk_123)
// @Param request body AddPageRequest true "ページ追加リクエスト"
// @Success 201 {object} PageResponse "ページ追加成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 404 {object} ErrorResponse "ブックが見つからない"
// @Failure 409 {object} ErrorResponse "ページ番号の重複"
// @Router /books/{book_id}/pages [post]
func (h *BookHandler) AddPage(c echo.Context) error {
	bookID := c.Param("book_id")
	if bookID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "book_id is required")
	}

	var reqBody AddPageRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req := &bookapp.AddPageRequest{
		BookID:     bookID,
		PageNumber: reqBody.PageNumber,
		LayoutType: reqBody.LayoutType,
	}

	resp, err := h.bookService.AddPage(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toPageResponseModel(resp))
}

// CanPublishBook 公開可否確認ハンドラー
// @Summary ブックの公開可否を確認
// @Description ブックの状態を変更せずに公開可否を確認します。未充填ページの一覧も返します
// @Tags book
// @Accept json
// @Produce json
// @Security Bearer
// @Param book_id path string true "ブックID" example(bk_123)
// @Param allow_partial_pages query bool false "部分充填ページを許可するか" example(false)
// @Success 200 {object} CanPublishResponse "公開可否確認成功"
// @Failure 404 {object} ErrorResponse "ブックが見つからない"
// @Router /books/{book_id}/can-publish [get]
func (h *BookHandler) CanPublishBook(c echo.Context) error {
	bookID := c.Param("book_id")
	if bookID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "book_id is required")
	}

	allowPartial, _ := strconv.ParseBool(c.QueryParam("allow_partial_pages"))

	resp, err := h.bookService.CanPublish(c.Request().Context(), &bookapp.CanPublishRequest{
		BookID:            bookID,
		AllowPartialPages: allowPartial,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, CanPublishResponse{
		BookID:        resp.BookID,
		Allowed:       resp.Allowed,
		Reason:        resp.Reason,
		UnfilledPages: resp.UnfilledPages,
	})
}

// PublishBook ブック公開ハンドラー
// @Summary クーポンブックを公開
// @Description draft状態のブックを公開します。未充填ページがある場合、allow_partial_pagesを明示しない限り拒否されます
// @Tags book
// @Accept json
// @Produce json
// @Security Bearer
// @Param book_id path string true "ブックID" example(bk_123)
// @Param request body PublishBookRequest true "ブック公開リクエスト"
// @Success 200 {object} BookResponse "公開成功"
// @Failure 404 {object} ErrorResponse "ブックが見つからない"
// @Failure 409 {object} ErrorResponse "遷移不可の状態"
// @Failure 422 {object} ErrorResponse "未充填ページあり"
// @Router /books/{book_id}/publish [post]
func (h *BookHandler) PublishBook(c echo.Context) error {
	bookID := c.Param("book_id")
	if bookID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "book_id is required")
	}

	var reqBody PublishBookRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.bookService.Publish(c.Request().Context(), &bookapp.PublishBookRequest{
		BookID:            bookID,
		AllowPartialPages: reqBody.AllowPartialPages,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toBookResponseModel(resp))
}

// MarkReadyForPrint 印刷準備完了ハンドラー（管理API用）
// @Summary ブックを印刷可能にする（管理API）
// @Description 公開済みのブックを印刷可能状態に遷移させ、生成されたPDFのURLを記録します
// @Tags admin
// @Accept json
// @Produce json
// @Param book_id path string true "ブックID" example(bk_123)
// @Param X-API-Key header string true "APIキー"
// @Param request body MarkReadyForPrintRequest true "印刷準備完了リクエスト"
// @Success 200 {object} BookResponse "遷移成功"
// @Failure 404 {object} ErrorResponse "ブックが見つからない"
// @Failure 409 {object} ErrorResponse "遷移不可の状態"
// @Router /admin/books/{book_id}/ready-for-print [post]
func (h *BookHandler) MarkReadyForPrint(c echo.Context) error {
	bookID := c.Param("book_id")
	if bookID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "book_id is required")
	}

	var reqBody MarkReadyForPrintRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.bookService.MarkReadyForPrint(c.Request().Context(), &bookapp.MarkReadyForPrintRequest{
		BookID: bookID,
		PDFURL: reqBody.PDFURL,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toBookResponseModel(resp))
}

// DeleteBook ブック削除ハンドラー
// @Summary クーポンブックを削除
// @Description ブックを削除します。配置・ページもまとめて削除されます。公開後のブックは削除できません
// @Tags book
// @Accept json
// @Produce json
// @Security Bearer
// @Param book_id path string true "ブックID" example(bk_123)
// @Success 204 "削除成功"
// @Failure 404 {object} ErrorResponse "ブックが見つからない"
// @Failure 409 {object} ErrorResponse "削除不可の状態"
// @Router /books/{book_id} [delete]
func (h *BookHandler) DeleteBook(c echo.Context) error {
	bookID := c.Param("book_id")
	if bookID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "book_id is required")
	}

	if err := h.bookService.Delete(c.Request().Context(), bookID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// toPageResponseModel アプリケーション層のページレスポンスをAPIモデルに変換
func toPageResponseModel(resp *bookapp.PageResponse) PageResponse {
	return PageResponse{
		ID:              resp.ID,
		BookID:          resp.BookID,
		PageNumber:      resp.PageNumber,
		LayoutType:      resp.LayoutType,
		SpacesUsed:      resp.SpacesUsed,
		SpacesAvailable: resp.SpacesAvailable,
		IsComplete:      resp.IsComplete,
		PlacementCount:  resp.PlacementCount,
	}
}

// toBookResponseModel アプリケーション層のブックレスポンスをAPIモデルに変換
func toBookResponseModel(resp *bookapp.BookResponse) BookResponse {
	pages := make([]PageResponse, len(resp.Pages))
	for i, p := range resp.Pages {
		pages[i] = toPageResponseModel(p)
	}
	return BookResponse{
		ID:             resp.ID,
		Title:          resp.Title,
		BookType:       resp.BookType,
		Month:          resp.Month,
		Year:           resp.Year,
		Status:         resp.Status,
		TotalPages:     resp.TotalPages,
		PDFURL:         resp.PDFURL,
		PDFGeneratedAt: resp.PDFGeneratedAt,
		Pages:          pages,
	}
}
