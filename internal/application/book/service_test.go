package book

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"voucher-book-server/internal/domain/book"
	"voucher-book-server/internal/domain/placement"
	"voucher-book-server/internal/domain/service"
	otelinfra "voucher-book-server/internal/infrastructure/observability/otel"
)

// MockBookRepository モッククーポンブックリポジトリ
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) FindByID(ctx context.Context, id string) (*book.VoucherBook, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*book.VoucherBook), args.Error(1)
}

func (m *MockBookRepository) FindAll(ctx context.Context, limit, offset int) ([]*book.VoucherBook, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*book.VoucherBook), args.Int(1), args.Error(2)
}

func (m *MockBookRepository) FindPageByID(ctx context.Context, pageID string) (*book.VoucherBookPage, error) {
	args := m.Called(ctx, pageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*book.VoucherBookPage), args.Error(1)
}

func (m *MockBookRepository) Create(ctx context.Context, b *book.VoucherBook) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookRepository) CreatePage(ctx context.Context, p *book.VoucherBookPage) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockBookRepository) UpdateStatus(ctx context.Context, b *book.VoucherBook) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestService(repo *MockBookRepository) *BookApplicationService {
	tracer := otel.Tracer("test")
	logger := otelinfra.NewLogger(tracer)
	metrics, _ := otelinfra.NewMetrics("test")
	return NewBookApplicationService(repo, service.NewCompositionService(repo), logger, metrics)
}

func fullPage(id string, pageNumber int) *book.VoucherBookPage {
	p := book.MustNewVoucherBookPage(id, "book1", pageNumber, "standard")
	p.SetPlacements([]*placement.AdPlacement{
		placement.MustNewAdPlacement("pl-"+id, id, placement.ContentTypeAd, 1, placement.PlacementSizeFull, nil),
	})
	return p
}

func partialPage(id string, pageNumber int) *book.VoucherBookPage {
	p := book.MustNewVoucherBookPage(id, "book1", pageNumber, "standard")
	p.SetPlacements([]*placement.AdPlacement{
		placement.MustNewAdPlacement("pl-"+id, id, placement.ContentTypeAd, 1, placement.PlacementSizeHalf, nil),
	})
	return p
}

func TestBookApplicationService_Create(t *testing.T) {
	t.Run("正常系: ブックを作成", func(t *testing.T) {
		repo := new(MockBookRepository)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*book.VoucherBook")).Return(nil)

		svc := newTestService(repo)
		resp, err := svc.Create(context.Background(), &CreateBookRequest{
			Title:      "2026年3月号",
			BookType:   "monthly",
			Month:      3,
			Year:       2026,
			TotalPages: 24,
		})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, "draft", resp.Status)
		assert.Equal(t, 24, resp.TotalPages)
		repo.AssertExpectations(t)
	})

	t.Run("異常系: 総ページ数が不正", func(t *testing.T) {
		repo := new(MockBookRepository)

		svc := newTestService(repo)
		_, err := svc.Create(context.Background(), &CreateBookRequest{
			Title:      "2026年3月号",
			Year:       2026,
			TotalPages: 0,
		})

		assert.Error(t, err)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestBookApplicationService_AddPage(t *testing.T) {
	t.Run("正常系: ページを追加", func(t *testing.T) {
		repo := new(MockBookRepository)
		b := book.MustNewVoucherBook("book1", "2026年3月号", "monthly", 3, 2026, 24)
		repo.On("FindByID", mock.Anything, "book1").Return(b, nil)
		repo.On("CreatePage", mock.Anything, mock.AnythingOfType("*book.VoucherBookPage")).Return(nil)

		svc := newTestService(repo)
		resp, err := svc.AddPage(context.Background(), &AddPageRequest{
			BookID:     "book1",
			PageNumber: 1,
			LayoutType: "standard",
		})

		require.NoError(t, err)
		assert.Equal(t, 1, resp.PageNumber)
		assert.Equal(t, 8, resp.SpacesAvailable)
		assert.False(t, resp.IsComplete)
	})

	t.Run("異常系: ページ番号の重複", func(t *testing.T) {
		repo := new(MockBookRepository)
		b := book.MustNewVoucherBook("book1", "2026年3月号", "monthly", 3, 2026, 24)
		require.NoError(t, b.AddPage(book.MustNewVoucherBookPage("page1", "book1", 1, "standard")))
		repo.On("FindByID", mock.Anything, "book1").Return(b, nil)

		svc := newTestService(repo)
		_, err := svc.AddPage(context.Background(), &AddPageRequest{
			BookID:     "book1",
			PageNumber: 1,
			LayoutType: "standard",
		})

		assert.ErrorIs(t, err, book.ErrDuplicatePageNumber)
		repo.AssertNotCalled(t, "CreatePage", mock.Anything, mock.Anything)
	})
}

func TestBookApplicationService_CanPublish(t *testing.T) {
	t.Run("正常系: 全ページ充填済みなら公開可能", func(t *testing.T) {
		repo := new(MockBookRepository)
		b := book.MustNewVoucherBook("book1", "2026年3月号", "monthly", 3, 2026, 2)
		b.SetPages([]*book.VoucherBookPage{fullPage("page1", 1), fullPage("page2", 2)})
		repo.On("FindByID", mock.Anything, "book1").Return(b, nil)

		svc := newTestService(repo)
		resp, err := svc.CanPublish(context.Background(), &CanPublishRequest{BookID: "book1"})

		require.NoError(t, err)
		assert.True(t, resp.Allowed)
		assert.Empty(t, resp.UnfilledPages)
	})

	t.Run("正常系: 未充填ページがある場合はページ番号を返す", func(t *testing.T) {
		repo := new(MockBookRepository)
		b := book.MustNewVoucherBook("book1", "2026年3月号", "monthly", 3, 2026, 3)
		b.SetPages([]*book.VoucherBookPage{fullPage("page1", 1), partialPage("page2", 2), partialPage("page3", 3)})
		repo.On("FindByID", mock.Anything, "book1").Return(b, nil)

		svc := newTestService(repo)
		resp, err := svc.CanPublish(context.Background(), &CanPublishRequest{BookID: "book1"})

		require.NoError(t, err)
		assert.False(t, resp.Allowed)
		assert.Equal(t, []int{2, 3}, resp.UnfilledPages)
	})

	t.Run("正常系: 部分充填許可なら未充填でも公開可能", func(t *testing.T) {
		repo := new(MockBookRepository)
		b := book.MustNewVoucherBook("book1", "2026年3月号", "monthly", 3, 2026, 1)
		b.SetPages([]*book.VoucherBookPage{partialPage("page1", 1)})
		repo.On("FindByID", mock.Anything, "book1").Return(b, nil)

		svc := newTestService(repo)
		resp, err := svc.CanPublish(context.Background(), &CanPublishRequest{BookID: "book1", AllowPartialPages: true})

		require.NoError(t, err)
		assert.True(t, resp.Allowed)
	})

	t.Run("正常系: ready_for_printからは公開不可", func(t *testing.T) {
		repo := new(MockBookRepository)
		b := book.MustNewVoucherBook("book1", "2026年3月号", "monthly", 3, 2026, 1)
		b.SetStatus(book.BookStatusReadyForPrint)
		repo.On("FindByID", mock.Anything, "book1").Return(b, nil)

		svc := newTestService(repo)
		resp, err := svc.CanPublish(context.Background(), &CanPublishRequest{BookID: "book1"})

		require.NoError(t, err)
		assert.False(t, resp.Allowed)
		assert.NotEmpty(t, resp.Reason)
	})
}

func TestBookApplicationService_Publish(t *testing.T) {
	t.Run("正常系: 全ページ充填済みのブックを公開", func(t *testing.T) {
		repo := new(MockBookRepository)
		b := book.MustNewVoucherBook("book1", "2026年3月号", "monthly", 3, 2026, 1)
		b.SetPages([]*book.VoucherBookPage{fullPage("page1", 1)})
		repo.On("FindByID", mock.Anything, "book1").Return(b, nil)
		repo.On("UpdateStatus", mock.Anything, b).Return(nil)

		svc := newTestService(repo)
		resp, err := svc.Publish(context.Background(), &PublishBookRequest{BookID: "book1"})

		require.NoError(t, err)
		assert.Equal(t, "published", resp.Status)
	})

	t.Run("異常系: 未充填ページがあると公開拒否", func(t *testing.T) {
		repo := new(MockBookRepository)
		b := book.MustNewVoucherBook("book1", "2026年3月号", "monthly", 3, 2026, 2)
		b.SetPages([]*book.VoucherBookPage{fullPage("page1", 1), partialPage("page2", 2)})
		repo.On("FindByID", mock.Anything, "book1").Return(b, nil)

		svc := newTestService(repo)
		_, err := svc.Publish(context.Background(), &PublishBookRequest{BookID: "book1"})

		require.Error(t, err)
		var uerr *book.UnfilledPagesError
		require.ErrorAs(t, err, &uerr)
		assert.Equal(t, []int{2}, uerr.PageNumbers)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	})

	t.Run("正常系: 部分充填許可フラグで公開", func(t *testing.T) {
		repo := new(MockBookRepository)
		b := book.MustNewVoucherBook("book1", "2026年3月号", "monthly", 3, 2026, 1)
		b.SetPages([]*book.VoucherBookPage{partialPage("page1", 1)})
		repo.On("FindByID", mock.Anything, "book1").Return(b, nil)
		repo.On("UpdateStatus", mock.Anything, b).Return(nil)

		svc := newTestService(repo)
		resp, err := svc.Publish(context.Background(), &PublishBookRequest{BookID: "book1", AllowPartialPages: true})

		require.NoError(t, err)
		assert.Equal(t, "published", resp.Status)
	})
}

func TestBookApplicationService_MarkReadyForPrint(t *testing.T) {
	t.Run("正常系: 公開済みブックを印刷可能にする", func(t *testing.T) {
		repo := new(MockBookRepository)
		b := book.MustNewVoucherBook("book1", "2026年3月号", "monthly", 3, 2026, 1)
		b.SetStatus(book.BookStatusPublished)
		repo.On("FindByID", mock.Anything, "book1").Return(b, nil)
		repo.On("UpdateStatus", mock.Anything, b).Return(nil)

		svc := newTestService(repo)
		resp, err := svc.MarkReadyForPrint(context.Background(), &MarkReadyForPrintRequest{
			BookID: "book1",
			PDFURL: "https://example.com/book1.pdf",
		})

		require.NoError(t, err)
		assert.Equal(t, "ready_for_print", resp.Status)
		assert.Equal(t, "https://example.com/book1.pdf", resp.PDFURL)
		assert.NotNil(t, resp.PDFGeneratedAt)
	})

	t.Run("異常系: draftからは印刷可能にできない", func(t *testing.T) {
		repo := new(MockBookRepository)
		b := book.MustNewVoucherBook("book1", "2026年3月号", "monthly", 3, 2026, 1)
		repo.On("FindByID", mock.Anything, "book1").Return(b, nil)

		svc := newTestService(repo)
		_, err := svc.MarkReadyForPrint(context.Background(), &MarkReadyForPrintRequest{
			BookID: "book1",
			PDFURL: "https://example.com/book1.pdf",
		})

		require.Error(t, err)
		var serr *book.IllegalStatusTransitionError
		assert.ErrorAs(t, err, &serr)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	})
}

func TestBookApplicationService_Delete(t *testing.T) {
	t.Run("正常系: draftのブックを削除", func(t *testing.T) {
		repo := new(MockBookRepository)
		b := book.MustNewVoucherBook("book1", "2026年3月号", "monthly", 3, 2026, 1)
		repo.On("FindByID", mock.Anything, "book1").Return(b, nil)
		repo.On("Delete", mock.Anything, "book1").Return(nil)

		svc := newTestService(repo)
		err := svc.Delete(context.Background(), "book1")

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("異常系: 公開後のブックは削除不可", func(t *testing.T) {
		repo := new(MockBookRepository)
		b := book.MustNewVoucherBook("book1", "2026年3月号", "monthly", 3, 2026, 1)
		b.SetStatus(book.BookStatusPublished)
		repo.On("FindByID", mock.Anything, "book1").Return(b, nil)

		svc := newTestService(repo)
		err := svc.Delete(context.Background(), "book1")

		assert.ErrorIs(t, err, book.ErrBookNotDeletable)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestBookApplicationService_List(t *testing.T) {
	t.Run("正常系: デフォルトのリミットを適用", func(t *testing.T) {
		repo := new(MockBookRepository)
		books := []*book.VoucherBook{
			book.MustNewVoucherBook("book1", "2026年3月号", "monthly", 3, 2026, 24),
		}
		repo.On("FindAll", mock.Anything, 20, 0).Return(books, 1, nil)

		svc := newTestService(repo)
		resp, err := svc.List(context.Background(), &ListBooksRequest{})

		require.NoError(t, err)
		assert.Equal(t, 1, resp.Total)
		require.Len(t, resp.Books, 1)
		assert.Equal(t, "book1", resp.Books[0].ID)
	})
}

func TestBookApplicationService_Get(t *testing.T) {
	t.Run("正常系: ページ込みで取得", func(t *testing.T) {
		repo := new(MockBookRepository)
		b := book.MustNewVoucherBook("book1", "2026年3月号", "monthly", 3, 2026, 2)
		b.SetPages([]*book.VoucherBookPage{fullPage("page1", 1), partialPage("page2", 2)})
		repo.On("FindByID", mock.Anything, "book1").Return(b, nil)

		svc := newTestService(repo)
		resp, err := svc.Get(context.Background(), "book1")

		require.NoError(t, err)
		require.Len(t, resp.Pages, 2)
		assert.True(t, resp.Pages[0].IsComplete)
		assert.False(t, resp.Pages[1].IsComplete)
		assert.Equal(t, 4, resp.Pages[1].SpacesAvailable)
	})

	t.Run("異常系: ブックが見つからない", func(t *testing.T) {
		repo := new(MockBookRepository)
		repo.On("FindByID", mock.Anything, "missing").Return(nil, book.ErrBookNotFound)

		svc := newTestService(repo)
		_, err := svc.Get(context.Background(), "missing")

		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})
}
