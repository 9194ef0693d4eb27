package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	bookapp "voucher-book-server/internal/application/book"
	"voucher-book-server/internal/domain/book"
	"voucher-book-server/internal/domain/placement"
	"voucher-book-server/internal/domain/service"
	otelinfra "voucher-book-server/internal/infrastructure/observability/otel"
	restmiddleware "voucher-book-server/internal/presentation/rest/middleware"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newBookHandler(t *testing.T, bookRepo *MockBookRepository) (*BookHandler, *otelinfra.Logger) {
	t.Helper()
	tracer := noop.NewTracerProvider().Tracer("test")
	logger := otelinfra.NewLogger(tracer)
	metrics, err := otelinfra.NewMetrics("test")
	require.NoError(t, err)

	appService := bookapp.NewBookApplicationService(
		bookRepo,
		service.NewCompositionService(bookRepo),
		logger,
		metrics,
	)
	return NewBookHandler(appService), logger
}

func filledTestPage(id string, pageNumber int) *book.VoucherBookPage {
	p := book.MustNewVoucherBookPage(id, "bk_1", pageNumber, "standard")
	p.SetPlacements([]*placement.AdPlacement{
		placement.MustNewAdPlacement("pl-"+id, id, placement.ContentTypeAd, 1, placement.PlacementSizeFull, nil),
	})
	return p
}

func TestBookHandler_CreateBook(t *testing.T) {
	e := echo.New()
	mockBookRepo := new(MockBookRepository)
	mockBookRepo.On("Create", mock.Anything, mock.AnythingOfType("*book.VoucherBook")).Return(nil)

	handler, logger := newBookHandler(t, mockBookRepo)

	body := map[string]interface{}{
		"title":       "2026年3月号",
		"book_type":   "monthly",
		"month":       3,
		"year":        2026,
		"total_pages": 24,
	}
	bodyBytes, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/books", bytes.NewReader(bodyBytes))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	middlewareFunc := restmiddleware.ErrorHandlerMiddleware(logger)
	handlerFunc := middlewareFunc(func(c echo.Context) error {
		return handler.CreateBook(c)
	})
	err = handlerFunc(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "draft", response["status"])
	assert.Equal(t, float64(24), response["total_pages"])
}

func TestBookHandler_AddPage(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]interface{}
		setupMock      func(*MockBookRepository)
		expectedStatus int
	}{
		{
			name: "正常系: ページ追加成功",
			body: map[string]interface{}{
				"page_number": 1,
				"layout_type": "standard",
			},
			setupMock: func(mbr *MockBookRepository) {
				b := book.MustNewVoucherBook("bk_1", "2026年3月号", "monthly", 3, 2026, 24)
				mbr.On("FindByID", mock.Anything, "bk_1").Return(b, nil)
				mbr.On("CreatePage", mock.Anything, mock.AnythingOfType("*book.VoucherBookPage")).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "異常系: ページ番号の重複は409",
			body: map[string]interface{}{
				"page_number": 1,
				"layout_type": "standard",
			},
			setupMock: func(mbr *MockBookRepository) {
				b := book.MustNewVoucherBook("bk_1", "2026年3月号", "monthly", 3, 2026, 24)
				_ = b.AddPage(book.MustNewVoucherBookPage("pg_1", "bk_1", 1, "standard"))
				mbr.On("FindByID", mock.Anything, "bk_1").Return(b, nil)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "異常系: ブックが見つからない",
			body: map[string]interface{}{
				"page_number": 1,
				"layout_type": "standard",
			},
			setupMock: func(mbr *MockBookRepository) {
				mbr.On("FindByID", mock.Anything, "bk_1").Return(nil, book.ErrBookNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			mockBookRepo := new(MockBookRepository)
			tt.setupMock(mockBookRepo)

			handler, logger := newBookHandler(t, mockBookRepo)

			bodyBytes, err := json.Marshal(tt.body)
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodPost, "/books/bk_1/pages", bytes.NewReader(bodyBytes))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("book_id")
			c.SetParamValues("bk_1")

			middlewareFunc := restmiddleware.ErrorHandlerMiddleware(logger)
			handlerFunc := middlewareFunc(func(c echo.Context) error {
				return handler.AddPage(c)
			})
			err = handlerFunc(c)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestBookHandler_PublishBook(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]interface{}
		setupMock      func(*MockBookRepository)
		expectedStatus int
	}{
		{
			name: "正常系: 全ページ充填済みのブックを公開",
			body: map[string]interface{}{},
			setupMock: func(mbr *MockBookRepository) {
				b := book.MustNewVoucherBook("bk_1", "2026年3月号", "monthly", 3, 2026, 1)
				b.SetPages([]*book.VoucherBookPage{filledTestPage("pg_1", 1)})
				mbr.On("FindByID", mock.Anything, "bk_1").Return(b, nil)
				mbr.On("UpdateStatus", mock.Anything, mock.AnythingOfType("*book.VoucherBook")).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "異常系: 未充填ページがあると422",
			body: map[string]interface{}{},
			setupMock: func(mbr *MockBookRepository) {
				b := book.MustNewVoucherBook("bk_1", "2026年3月号", "monthly", 3, 2026, 2)
				b.SetPages([]*book.VoucherBookPage{filledTestPage("pg_1", 1), book.MustNewVoucherBookPage("pg_2", "bk_1", 2, "standard")})
				mbr.On("FindByID", mock.Anything, "bk_1").Return(b, nil)
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "正常系: 部分充填許可フラグで公開",
			body: map[string]interface{}{"allow_partial_pages": true},
			setupMock: func(mbr *MockBookRepository) {
				b := book.MustNewVoucherBook("bk_1", "2026年3月号", "monthly", 3, 2026, 1)
				b.SetPages([]*book.VoucherBookPage{book.MustNewVoucherBookPage("pg_1", "bk_1", 1, "standard")})
				mbr.On("FindByID", mock.Anything, "bk_1").Return(b, nil)
				mbr.On("UpdateStatus", mock.Anything, mock.AnythingOfType("*book.VoucherBook")).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "異常系: ready_for_printからの公開は409",
			body: map[string]interface{}{},
			setupMock: func(mbr *MockBookRepository) {
				b := book.MustNewVoucherBook("bk_1", "2026年3月号", "monthly", 3, 2026, 1)
				b.SetStatus(book.BookStatusReadyForPrint)
				mbr.On("FindByID", mock.Anything, "bk_1").Return(b, nil)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			mockBookRepo := new(MockBookRepository)
			tt.setupMock(mockBookRepo)

			handler, logger := newBookHandler(t, mockBookRepo)

			bodyBytes, err := json.Marshal(tt.body)
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodPost, "/books/bk_1/publish", bytes.NewReader(bodyBytes))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("book_id")
			c.SetParamValues("bk_1")

			middlewareFunc := restmiddleware.ErrorHandlerMiddleware(logger)
			handlerFunc := middlewareFunc(func(c echo.Context) error {
				return handler.PublishBook(c)
			})
			err = handlerFunc(c)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusOK {
				var response map[string]interface{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
				assert.Equal(t, "published", response["status"])
			}
		})
	}
}

func TestBookHandler_CanPublishBook(t *testing.T) {
	e := echo.New()
	mockBookRepo := new(MockBookRepository)
	b := book.MustNewVoucherBook("bk_1", "2026年3月号", "monthly", 3, 2026, 2)
	b.SetPages([]*book.VoucherBookPage{filledTestPage("pg_1", 1), book.MustNewVoucherBookPage("pg_2", "bk_1", 2, "standard")})
	mockBookRepo.On("FindByID", mock.Anything, "bk_1").Return(b, nil)

	handler, logger := newBookHandler(t, mockBookRepo)

	req := httptest.NewRequest(http.MethodGet, "/books/bk_1/can-publish", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("book_id")
	c.SetParamValues("bk_1")

	middlewareFunc := restmiddleware.ErrorHandlerMiddleware(logger)
	handlerFunc := middlewareFunc(func(c echo.Context) error {
		return handler.CanPublishBook(c)
	})
	err := handlerFunc(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var response CanPublishResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.False(t, response.Allowed)
	assert.Equal(t, []int{2}, response.UnfilledPages)
}

func TestBookHandler_DeleteBook(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockBookRepository)
		expectedStatus int
	}{
		{
			name: "正常系: draftのブックを削除",
			setupMock: func(mbr *MockBookRepository) {
				b := book.MustNewVoucherBook("bk_1", "2026年3月号", "monthly", 3, 2026, 1)
				mbr.On("FindByID", mock.Anything, "bk_1").Return(b, nil)
				mbr.On("Delete", mock.Anything, "bk_1").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "異常系: 公開後のブックの削除は409",
			setupMock: func(mbr *MockBookRepository) {
				b := book.MustNewVoucherBook("bk_1", "2026年3月号", "monthly", 3, 2026, 1)
				b.SetStatus(book.BookStatusPublished)
				mbr.On("FindByID", mock.Anything, "bk_1").Return(b, nil)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			mockBookRepo := new(MockBookRepository)
			tt.setupMock(mockBookRepo)

			handler, logger := newBookHandler(t, mockBookRepo)

			req := httptest.NewRequest(http.MethodDelete, "/books/bk_1", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("book_id")
			c.SetParamValues("bk_1")

			middlewareFunc := restmiddleware.ErrorHandlerMiddleware(logger)
			handlerFunc := middlewareFunc(func(c echo.Context) error {
				return handler.DeleteBook(c)
			})
			err := handlerFunc(c)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}
