package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"voucher-book-server/internal/domain/book"
	"voucher-book-server/internal/domain/service"
	otelinfra "voucher-book-server/internal/infrastructure/observability/otel"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// BookApplicationService クーポンブック構成アプリケーションサービス
type BookApplicationService struct {
	bookRepo    book.BookRepository
	composition *service.CompositionService
	logger      *otelinfra.Logger
	metrics     *otelinfra.Metrics
	tracer      trace.Tracer
}

// NewBookApplicationService 新しいBookApplicationServiceを作成
func NewBookApplicationService(
	bookRepo book.BookRepository,
	composition *service.CompositionService,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *BookApplicationService {
	return &BookApplicationService{
		bookRepo:    bookRepo,
		composition: composition,
		logger:      logger,
		metrics:     metrics,
		tracer:      otel.Tracer("book-service"),
	}
}

// Create クーポンブックを作成する（初期状態はdraft）
func (s *BookApplicationService) Create(ctx context.Context, req *CreateBookRequest) (*BookResponse, error) {
	ctx, span := s.tracer.Start(ctx, "BookApplicationService.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("title", req.Title),
		attribute.Int("year", req.Year),
		attribute.Int("month", req.Month),
		attribute.Int("total_pages", req.TotalPages),
	)

	b, err := book.NewVoucherBook(
		s.generateBookID(),
		req.Title,
		req.BookType,
		req.Month,
		req.Year,
		req.TotalPages,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	if err := s.bookRepo.Create(ctx, b); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to create book", err, map[string]interface{}{
			"title": req.Title,
		})
		s.metrics.RecordError(ctx, "book_create_failed")
		return nil, err
	}

	s.logger.Info(ctx, "Book created", map[string]interface{}{
		"book_id":     b.ID(),
		"total_pages": b.TotalPages(),
	})

	return toBookResponse(b), nil
}

// AddPage ブックにページを追加する（ページ番号はブック内で一意）
func (s *BookApplicationService) AddPage(ctx context.Context, req *AddPageRequest) (*PageResponse, error) {
	ctx, span := s.tracer.Start(ctx, "BookApplicationService.AddPage")
	defer span.End()

	span.SetAttributes(
		attribute.String("book_id", req.BookID),
		attribute.Int("page_number", req.PageNumber),
	)

	b, err := s.bookRepo.FindByID(ctx, req.BookID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	page, err := book.NewVoucherBookPage(
		s.generatePageID(),
		b.ID(),
		req.PageNumber,
		req.LayoutType,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	if err := b.AddPage(page); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	if err := s.bookRepo.CreatePage(ctx, page); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordError(ctx, "page_create_failed")
		return nil, err
	}

	s.logger.Info(ctx, "Page added", map[string]interface{}{
		"book_id":     b.ID(),
		"page_id":     page.ID(),
		"page_number": page.PageNumber(),
	})

	return toPageResponse(page), nil
}

// Get ブックを取得する（ページ・配置込み）
func (s *BookApplicationService) Get(ctx context.Context, bookID string) (*BookResponse, error) {
	ctx, span := s.tracer.Start(ctx, "BookApplicationService.Get")
	defer span.End()

	span.SetAttributes(attribute.String("book_id", bookID))

	b, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	return toBookResponse(b), nil
}

// List ブックの一覧を取得する
func (s *BookApplicationService) List(ctx context.Context, req *ListBooksRequest) (*ListBooksResponse, error) {
	ctx, span := s.tracer.Start(ctx, "BookApplicationService.List")
	defer span.End()

	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	span.SetAttributes(
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	books, total, err := s.bookRepo.FindAll(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	responses := make([]*BookResponse, 0, len(books))
	for _, b := range books {
		responses = append(responses, toBookResponse(b))
	}

	return &ListBooksResponse{
		Books:  responses,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// CanPublish ブックの公開可否を確認する（状態は変更しない）
func (s *BookApplicationService) CanPublish(ctx context.Context, req *CanPublishRequest) (*CanPublishResponse, error) {
	ctx, span := s.tracer.Start(ctx, "BookApplicationService.CanPublish")
	defer span.End()

	span.SetAttributes(
		attribute.String("book_id", req.BookID),
		attribute.Bool("allow_partial_pages", req.AllowPartialPages),
	)

	err := s.composition.CanPublish(ctx, req.BookID, req.AllowPartialPages)
	if err == nil {
		return &CanPublishResponse{
			BookID:  req.BookID,
			Allowed: true,
		}, nil
	}

	var uerr *book.UnfilledPagesError
	if errors.As(err, &uerr) {
		return &CanPublishResponse{
			BookID:        req.BookID,
			Allowed:       false,
			Reason:        err.Error(),
			UnfilledPages: uerr.PageNumbers,
		}, nil
	}

	var serr *book.IllegalStatusTransitionError
	if errors.As(err, &serr) {
		return &CanPublishResponse{
			BookID:  req.BookID,
			Allowed: false,
			Reason:  err.Error(),
		}, nil
	}

	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
	return nil, err
}

// Publish ブックを公開する
// allowPartialPagesがfalseの場合、未充填ページがあると公開は拒否される
func (s *BookApplicationService) Publish(ctx context.Context, req *PublishBookRequest) (*BookResponse, error) {
	ctx, span := s.tracer.Start(ctx, "BookApplicationService.Publish")
	defer span.End()

	span.SetAttributes(
		attribute.String("book_id", req.BookID),
		attribute.Bool("allow_partial_pages", req.AllowPartialPages),
	)

	b, err := s.bookRepo.FindByID(ctx, req.BookID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	from := b.Status()

	if err := b.Publish(req.AllowPartialPages, time.Now()); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Book publish rejected", err, map[string]interface{}{
			"book_id": req.BookID,
			"status":  from.String(),
		})
		return nil, err
	}

	if err := s.bookRepo.UpdateStatus(ctx, b); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordError(ctx, "book_publish_failed")
		return nil, err
	}

	if from != b.Status() {
		s.metrics.RecordStateTransition(ctx, "book", from.String(), b.Status().String())
	}

	s.logger.Info(ctx, "Book published", map[string]interface{}{
		"book_id":             req.BookID,
		"allow_partial_pages": req.AllowPartialPages,
	})

	return toBookResponse(b), nil
}

// MarkReadyForPrint ブックを印刷可能にする（PDF生成結果を記録）
func (s *BookApplicationService) MarkReadyForPrint(ctx context.Context, req *MarkReadyForPrintRequest) (*BookResponse, error) {
	ctx, span := s.tracer.Start(ctx, "BookApplicationService.MarkReadyForPrint")
	defer span.End()

	span.SetAttributes(
		attribute.String("book_id", req.BookID),
		attribute.String("pdf_url", req.PDFURL),
	)

	b, err := s.bookRepo.FindByID(ctx, req.BookID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	from := b.Status()

	if err := b.MarkReadyForPrint(req.PDFURL, time.Now()); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Book mark ready for print rejected", err, map[string]interface{}{
			"book_id": req.BookID,
			"status":  from.String(),
		})
		return nil, err
	}

	if err := s.bookRepo.UpdateStatus(ctx, b); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordError(ctx, "book_mark_ready_failed")
		return nil, err
	}

	s.metrics.RecordStateTransition(ctx, "book", from.String(), b.Status().String())

	s.logger.Info(ctx, "Book marked ready for print", map[string]interface{}{
		"book_id": req.BookID,
		"pdf_url": req.PDFURL,
	})

	return toBookResponse(b), nil
}

// Delete ブックを削除する（ページ・配置もカスケード削除）
// 公開後のブックは削除不可
func (s *BookApplicationService) Delete(ctx context.Context, bookID string) error {
	ctx, span := s.tracer.Start(ctx, "BookApplicationService.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("book_id", bookID))

	b, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	if err := b.CanDelete(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	if err := s.bookRepo.Delete(ctx, bookID); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordError(ctx, "book_delete_failed")
		return err
	}

	s.logger.Info(ctx, "Book deleted", map[string]interface{}{
		"book_id": bookID,
	})

	return nil
}

// generateBookID ブックIDを生成
func (s *BookApplicationService) generateBookID() string {
	return fmt.Sprintf("bk_%d", time.Now().UnixNano())
}

// generatePageID ページIDを生成
func (s *BookApplicationService) generatePageID() string {
	return fmt.Sprintf("pg_%d", time.Now().UnixNano())
}
