package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"voucher-book-server/internal/domain/placement"
)

// PlacementRepository MySQL実装のPlacementRepository
type PlacementRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewPlacementRepository 新しいPlacementRepositoryを作成
func NewPlacementRepository(db *DB) *PlacementRepository {
	return &PlacementRepository{
		db:     db,
		tracer: otel.Tracer("placement-repository"),
	}
}

const placementColumns = `
	id, page_id, content_type, position, size, spaces_used,
	image_url, title, description, qr_code_payload, short_code,
	metadata, is_active, created_at, updated_at
`

// scanPlacement 1行をAdPlacementエンティティに変換
func scanPlacement(scanner interface{ Scan(...interface{}) error }) (*placement.AdPlacement, error) {
	var id, pageID, dbContentType, dbSize string
	var position, spacesUsed int
	var imageURL, title, description, qrCodePayload, shortCode sql.NullString
	var metadataJSON sql.NullString
	var active bool
	var createdAt, updatedAt time.Time

	err := scanner.Scan(
		&id,
		&pageID,
		&dbContentType,
		&position,
		&dbSize,
		&spacesUsed,
		&imageURL,
		&title,
		&description,
		&qrCodePayload,
		&shortCode,
		&metadataJSON,
		&active,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	contentType, err := placement.NewContentType(dbContentType)
	if err != nil {
		return nil, fmt.Errorf("invalid content type: %w", err)
	}

	size, err := placement.NewPlacementSize(dbSize)
	if err != nil {
		return nil, fmt.Errorf("invalid placement size: %w", err)
	}

	var metadata map[string]interface{}
	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	p, err := placement.NewAdPlacement(id, pageID, contentType, position, size, metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to restore placement: %w", err)
	}
	p.SetContent(imageURL.String, title.String, description.String)
	p.SetVoucherFields(qrCodePayload.String, shortCode.String)
	p.SetActive(active)
	p.SetTimestamps(createdAt, updatedAt)

	return p, nil
}

// FindByID IDで配置を取得
func (r *PlacementRepository) FindByID(ctx context.Context, id string) (*placement.AdPlacement, error) {
	ctx, span := r.tracer.Start(ctx, "PlacementRepository.FindByID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.placement_id", id),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "ad_placements"),
	)

	query := `SELECT ` + placementColumns + ` FROM ad_placements WHERE id = ?`

	p, err := scanPlacement(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "placement not found")
		return nil, placement.ErrPlacementNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find placement: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "placement found")
	return p, nil
}

// FindByPageID ページ上の全配置を位置昇順で取得
func (r *PlacementRepository) FindByPageID(ctx context.Context, pageID string) ([]*placement.AdPlacement, error) {
	ctx, span := r.tracer.Start(ctx, "PlacementRepository.FindByPageID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.page_id", pageID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "ad_placements"),
	)

	query := `SELECT ` + placementColumns + ` FROM ad_placements WHERE page_id = ? ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query, pageID)
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

	span.SetAttributes(attribute.Int("db.count", len(placements)))
	span.SetStatus(otelcodes.Ok, "placements found")
	return placements, nil
}

// FindByPageIDForUpdate ページ上の全配置を行ロック付きで取得
// アロケーターの判定と書き込みを同一トランザクション内で直列化するために使用
func (r *PlacementRepository) FindByPageIDForUpdate(ctx context.Context, tx *sql.Tx, pageID string) ([]*placement.AdPlacement, error) {
	ctx, span := r.tracer.Start(ctx, "PlacementRepository.FindByPageIDForUpdate")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.page_id", pageID),
		attribute.String("db.operation", "SELECT FOR UPDATE"),
		attribute.String("db.table", "ad_placements"),
	)

	query := `SELECT ` + placementColumns + ` FROM ad_placements WHERE page_id = ? ORDER BY position ASC FOR UPDATE`

	rows, err := tx.QueryContext(ctx, query, pageID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find placements for update: %w", err)
	}
	defer rows.Close()

	placements, err := collectPlacements(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("db.count", len(placements)))
	span.SetStatus(otelcodes.Ok, "placements locked")
	return placements, nil
}

// collectPlacements 結果セットをエンティティのスライスに変換
func collectPlacements(rows *sql.Rows) ([]*placement.AdPlacement, error) {
	placements := make([]*placement.AdPlacement, 0)
	for rows.Next() {
		p, err := scanPlacement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan placement: %w", err)
		}
		placements = append(placements, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate placements: %w", err)
	}
	return placements, nil
}

// Create 配置を作成
func (r *PlacementRepository) Create(ctx context.Context, tx *sql.Tx, p *placement.AdPlacement) error {
	ctx, span := r.tracer.Start(ctx, "PlacementRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.placement_id", p.ID()),
		attribute.String("db.page_id", p.PageID()),
		attribute.Int("db.position", p.Position()),
		attribute.String("db.size", p.Size().String()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "ad_placements"),
	)

	metadataJSON, err := marshalMetadata(p.Metadata())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	query := `
		INSERT INTO ad_placements (
			id, page_id, content_type, position, size, spaces_used,
			image_url, title, description, qr_code_payload, short_code,
			metadata, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		p.ID(),
		p.PageID(),
		p.ContentType().String(),
		p.Position(),
		p.Size().String(),
		p.SpacesUsed(),
		p.ImageURL(),
		p.Title(),
		p.Description(),
		p.QRCodePayload(),
		p.ShortCode(),
		metadataJSON,
		p.Active(),
		p.CreatedAt(),
		p.UpdatedAt(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to create placement: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "placement created")
	return nil
}

// Update 配置を更新
func (r *PlacementRepository) Update(ctx context.Context, tx *sql.Tx, p *placement.AdPlacement) error {
	ctx, span := r.tracer.Start(ctx, "PlacementRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.placement_id", p.ID()),
		attribute.Int("db.position", p.Position()),
		attribute.String("db.size", p.Size().String()),
		attribute.Bool("db.is_active", p.Active()),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "ad_placements"),
	)

	metadataJSON, err := marshalMetadata(p.Metadata())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	query := `
		UPDATE ad_placements
		SET
			position = ?,
			size = ?,
			spaces_used = ?,
			image_url = ?,
			title = ?,
			description = ?,
			qr_code_payload = ?,
			short_code = ?,
			metadata = ?,
			is_active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := tx.ExecContext(ctx, query,
		p.Position(),
		p.Size().String(),
		p.SpacesUsed(),
		p.ImageURL(),
		p.Title(),
		p.Description(),
		p.QRCodePayload(),
		p.ShortCode(),
		metadataJSON,
		p.Active(),
		p.ID(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to update placement: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		span.SetStatus(otelcodes.Ok, "placement not found")
		return placement.ErrPlacementNotFound
	}

	span.SetStatus(otelcodes.Ok, "placement updated")
	return nil
}

// Delete 配置を削除
func (r *PlacementRepository) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	ctx, span := r.tracer.Start(ctx, "PlacementRepository.Delete")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.placement_id", id),
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.table", "ad_placements"),
	)

	query := `DELETE FROM ad_placements WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to delete placement: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		span.SetStatus(otelcodes.Ok, "placement not found")
		return placement.ErrPlacementNotFound
	}

	span.SetStatus(otelcodes.Ok, "placement deleted")
	return nil
}

// marshalMetadata メタデータをJSON文字列に変換（nilの場合はNULL）
func marshalMetadata(metadata map[string]interface{}) (interface{}, error) {
	if metadata == nil {
		return nil, nil
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return string(b), nil
}
