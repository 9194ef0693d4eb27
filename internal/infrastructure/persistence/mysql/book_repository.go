package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"voucher-book-server/internal/domain/book"
	"voucher-book-server/internal/domain/placement"
)

// BookRepository MySQL実装のBookRepository
type BookRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewBookRepository 新しいBookRepositoryを作成
func NewBookRepository(db *DB) *BookRepository {
	return &BookRepository{
		db:     db,
		tracer: otel.Tracer("book-repository"),
	}
}

const bookColumns = `
	id, title, book_type, month, year, status, total_pages,
	pdf_url, pdf_generated_at, created_at, updated_at
`

// scanBook 1行をVoucherBookエンティティに変換（ページは含まない）
func scanBook(scanner interface{ Scan(...interface{}) error }) (*book.VoucherBook, error) {
	var id, title, bookType, dbStatus string
	var month, year, totalPages int
	var pdfURL sql.NullString
	var pdfGeneratedAt sql.NullTime
	var createdAt, updatedAt time.Time

	err := scanner.Scan(
		&id,
		&title,
		&bookType,
		&month,
		&year,
		&dbStatus,
		&totalPages,
		&pdfURL,
		&pdfGeneratedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	status, err := book.NewBookStatus(dbStatus)
	if err != nil {
		return nil, fmt.Errorf("invalid book status: %w", err)
	}

	b, err := book.NewVoucherBook(id, title, bookType, month, year, totalPages)
	if err != nil {
		return nil, fmt.Errorf("failed to restore book: %w", err)
	}
	b.SetStatus(status)
	b.SetPDF(pdfURL.String, nullTimePtr(pdfGeneratedAt))
	b.SetTimestamps(createdAt, updatedAt)

	return b, nil
}

// FindByID IDでブックを取得（ページ・配置込み）
func (r *BookRepository) FindByID(ctx context.Context, id string) (*book.VoucherBook, error) {
	ctx, span := r.tracer.Start(ctx, "BookRepository.FindByID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.book_id", id),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "voucher_books"),
	)

	query := `SELECT ` + bookColumns + ` FROM voucher_books WHERE id = ?`

	b, err := scanBook(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "book not found")
		return nil, book.ErrBookNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find book: %w", err)
	}

	pages, err := r.findPagesByBookID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	b.SetPages(pages)

	span.SetAttributes(
		attribute.String("db.status", b.Status().String()),
		attribute.Int("db.page_count", len(pages)),
	)
	span.SetStatus(otelcodes.Ok, "book found")
	return b, nil
}

// findPagesByBookID ブックの全ページを配置込みで取得
func (r *BookRepository) findPagesByBookID(ctx context.Context, bookID string) ([]*book.VoucherBookPage, error) {
	query := `
		SELECT id, book_id, page_number, layout_type, created_at, updated_at
		FROM voucher_book_pages
		WHERE book_id = ?
		ORDER BY page_number ASC
	`

	rows, err := r.db.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to find pages: %w", err)
	}
	defer rows.Close()

	pages := make([]*book.VoucherBookPage, 0)
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pages: %w", err)
	}

	placementsByPage, err := r.findPlacementsByBookID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	for _, p := range pages {
		p.SetPlacements(placementsByPage[p.ID()])
	}

	return pages, nil
}

// scanPage 1行をVoucherBookPageエンティティに変換
func scanPage(scanner interface{ Scan(...interface{}) error }) (*book.VoucherBookPage, error) {
	var id, bookID, layoutType string
	var pageNumber int
	var createdAt, updatedAt time.Time

	err := scanner.Scan(
		&id,
		&bookID,
		&pageNumber,
		&layoutType,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p, err := book.NewVoucherBookPage(id, bookID, pageNumber, layoutType)
	if err != nil {
		return nil, fmt.Errorf("failed to restore page: %w", err)
	}
	p.SetTimestamps(createdAt, updatedAt)

	return p, nil
}

// findPlacementsByBookID ブック配下の全配置をページID別に取得
func (r *BookRepository) findPlacementsByBookID(ctx context.Context, bookID string) (map[string][]*placement.AdPlacement, error) {
	query := `
		SELECT ` + placementColumns + `
		FROM ad_placements
		WHERE page_id IN (SELECT id FROM voucher_book_pages WHERE book_id = ?)
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to find placements: %w", err)
	}
	defer rows.Close()

	placements, err := collectPlacements(rows)
	if err != nil {
		return nil, err
	}

	byPage := make(map[string][]*placement.AdPlacement)
	for _, p := range placements {
		byPage[p.PageID()] = append(byPage[p.PageID()], p)
	}
	return byPage, nil
}

// FindAll ブックの一覧を取得（年月の降順、ページは含まない）
func (r *BookRepository) FindAll(ctx context.Context, limit, offset int) ([]*book.VoucherBook, int, error) {
	ctx, span := r.tracer.Start(ctx, "BookRepository.FindAll")
	defer span.End()

	span.SetAttributes(
		attribute.Int("db.limit", limit),
		attribute.Int("db.offset", offset),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "voucher_books"),
	)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM voucher_books`).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	query := `SELECT ` + bookColumns + ` FROM voucher_books ORDER BY year DESC, month DESC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to find books: %w", err)
	}
	defer rows.Close()

	books := make([]*book.VoucherBook, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, 0, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to iterate books: %w", err)
	}

	span.SetAttributes(
		attribute.Int("db.count", len(books)),
		attribute.Int("db.total", total),
	)
	span.SetStatus(otelcodes.Ok, "books found")
	return books, total, nil
}

// FindPageByID ページIDでページを取得（配置込み）
func (r *BookRepository) FindPageByID(ctx context.Context, pageID string) (*book.VoucherBookPage, error) {
	ctx, span := r.tracer.Start(ctx, "BookRepository.FindPageByID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.page_id", pageID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "voucher_book_pages"),
	)

	query := `
		SELECT id, book_id, page_number, layout_type, created_at, updated_at
		FROM voucher_book_pages
		WHERE id = ?
	`

	p, err := scanPage(r.db.QueryRowContext(ctx, query, pageID))
	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "page not found")
		return nil, book.ErrPageNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find page: %w", err)
	}

	placementsQuery := `SELECT ` + placementColumns + ` FROM ad_placements WHERE page_id = ? ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, placementsQuery, pageID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find placements: %w", err)
	}
	defer rows.Close()

	placements, err := collectPlacements(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	p.SetPlacements(placements)

	span.SetAttributes(attribute.Int("db.placement_count", len(placements)))
	span.SetStatus(otelcodes.Ok, "page found")
	return p, nil
}

// Create ブックを作成
func (r *BookRepository) Create(ctx context.Context, b *book.VoucherBook) error {
	ctx, span := r.tracer.Start(ctx, "BookRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.book_id", b.ID()),
		attribute.String("db.status", b.Status().String()),
		attribute.Int("db.total_pages", b.TotalPages()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "voucher_books"),
	)

	query := `
		INSERT INTO voucher_books (
			id, title, book_type, month, year, status, total_pages,
			pdf_url, pdf_generated_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		b.ID(),
		b.Title(),
		b.BookType(),
		b.Month(),
		b.Year(),
		b.Status().String(),
		b.TotalPages(),
		b.PDFURL(),
		timePtrValue(b.PDFGeneratedAt()),
		b.CreatedAt(),
		b.UpdatedAt(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to create book: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "book created")
	return nil
}

// CreatePage ページを作成
func (r *BookRepository) CreatePage(ctx context.Context, p *book.VoucherBookPage) error {
	ctx, span := r.tracer.Start(ctx, "BookRepository.CreatePage")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.page_id", p.ID()),
		attribute.String("db.book_id", p.BookID()),
		attribute.Int("db.page_number", p.PageNumber()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "voucher_book_pages"),
	)

	query := `
		INSERT INTO voucher_book_pages (
			id, book_id, page_number, layout_type, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID(),
		p.BookID(),
		p.PageNumber(),
		p.LayoutType(),
		p.CreatedAt(),
		p.UpdatedAt(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to create page: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "page created")
	return nil
}

// UpdateStatus ブックの状態とPDF情報を更新
func (r *BookRepository) UpdateStatus(ctx context.Context, b *book.VoucherBook) error {
	ctx, span := r.tracer.Start(ctx, "BookRepository.UpdateStatus")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.book_id", b.ID()),
		attribute.String("db.status", b.Status().String()),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "voucher_books"),
	)

	query := `
		UPDATE voucher_books
		SET
			status = ?,
			pdf_url = ?,
			pdf_generated_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		b.Status().String(),
		b.PDFURL(),
		timePtrValue(b.PDFGeneratedAt()),
		b.ID(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to update book status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		span.SetStatus(otelcodes.Ok, "book not found")
		return book.ErrBookNotFound
	}

	span.SetStatus(otelcodes.Ok, "book status updated")
	return nil
}

// Delete ブックを削除（ページ・配置もカスケード削除）
func (r *BookRepository) Delete(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "BookRepository.Delete")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.book_id", id),
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.table", "voucher_books"),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM ad_placements WHERE page_id IN (SELECT id FROM voucher_book_pages WHERE book_id = ?)`, id,
	); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to delete placements: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM voucher_book_pages WHERE book_id = ?`, id); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to delete pages: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM voucher_books WHERE id = ?`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to delete book: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		span.SetStatus(otelcodes.Ok, "book not found")
		return book.ErrBookNotFound
	}

	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "book deleted")
	return nil
}
