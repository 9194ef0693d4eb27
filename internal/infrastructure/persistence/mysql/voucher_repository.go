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

	"voucher-book-server/internal/domain/voucher"
)

// VoucherRepository MySQL実装のVoucherRepository
type VoucherRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewVoucherRepository 新しいVoucherRepositoryを作成
func NewVoucherRepository(db *DB) *VoucherRepository {
	return &VoucherRepository{
		db:     db,
		tracer: otel.Tracer("voucher-repository"),
	}
}

const voucherColumns = `
	id, business_id, category_id, state,
	valid_from, valid_until, max_redemptions, current_redemptions,
	discount_type, discount_value, metadata, created_at, updated_at
`

// scanVoucher 1行をVoucherエンティティに変換
func scanVoucher(scanner interface{ Scan(...interface{}) error }) (*voucher.Voucher, error) {
	var id, businessID, dbState string
	var categoryID sql.NullString
	var validFrom, validUntil sql.NullTime
	var maxRedemptions, currentRedemptions int
	var discountType string
	var discountValue int64
	var metadataJSON sql.NullString
	var createdAt, updatedAt time.Time

	err := scanner.Scan(
		&id,
		&businessID,
		&categoryID,
		&dbState,
		&validFrom,
		&validUntil,
		&maxRedemptions,
		&currentRedemptions,
		&discountType,
		&discountValue,
		&metadataJSON,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	state, err := voucher.NewVoucherState(dbState)
	if err != nil {
		return nil, fmt.Errorf("invalid voucher state: %w", err)
	}

	var metadata map[string]interface{}
	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	v, err := voucher.NewVoucher(
		id,
		businessID,
		categoryID.String,
		nullTimePtr(validFrom),
		nullTimePtr(validUntil),
		maxRedemptions,
		discountType,
		discountValue,
		metadata,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to restore voucher: %w", err)
	}
	v.SetState(state)
	v.SetCurrentRedemptions(currentRedemptions)
	v.SetTimestamps(createdAt, updatedAt)

	return v, nil
}

// nullTimePtr sql.NullTimeを*time.Timeに変換
func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

// FindByID IDでクーポンを取得
func (r *VoucherRepository) FindByID(ctx context.Context, id string) (*voucher.Voucher, error) {
	ctx, span := r.tracer.Start(ctx, "VoucherRepository.FindByID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.voucher_id", id),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "vouchers"),
	)

	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE id = ?`

	v, err := scanVoucher(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "voucher not found")
		return nil, voucher.ErrVoucherNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find voucher: %w", err)
	}

	span.SetAttributes(attribute.String("db.state", v.State().String()))
	span.SetStatus(otelcodes.Ok, "voucher found")
	return v, nil
}

// FindAll クーポンの一覧を取得（作成日時の降順）
func (r *VoucherRepository) FindAll(ctx context.Context, limit, offset int) ([]*voucher.Voucher, int, error) {
	ctx, span := r.tracer.Start(ctx, "VoucherRepository.FindAll")
	defer span.End()

	span.SetAttributes(
		attribute.Int("db.limit", limit),
		attribute.Int("db.offset", offset),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "vouchers"),
	)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vouchers`).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count vouchers: %w", err)
	}

	query := `SELECT ` + voucherColumns + ` FROM vouchers ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to find vouchers: %w", err)
	}
	defer rows.Close()

	vouchers := make([]*voucher.Voucher, 0)
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, 0, fmt.Errorf("failed to scan voucher: %w", err)
		}
		vouchers = append(vouchers, v)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to iterate vouchers: %w", err)
	}

	span.SetAttributes(
		attribute.Int("db.count", len(vouchers)),
		attribute.Int("db.total", total),
	)
	span.SetStatus(otelcodes.Ok, "vouchers found")
	return vouchers, total, nil
}

// Create クーポンを作成
func (r *VoucherRepository) Create(ctx context.Context, v *voucher.Voucher) error {
	ctx, span := r.tracer.Start(ctx, "VoucherRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.voucher_id", v.ID()),
		attribute.String("db.business_id", v.BusinessID()),
		attribute.String("db.state", v.State().String()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "vouchers"),
	)

	metadataJSON, err := marshalMetadata(v.Metadata())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	query := `
		INSERT INTO vouchers (
			id, business_id, category_id, state,
			valid_from, valid_until, max_redemptions, current_redemptions,
			discount_type, discount_value, metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		v.ID(),
		v.BusinessID(),
		v.CategoryID(),
		v.State().String(),
		timePtrValue(v.ValidFrom()),
		timePtrValue(v.ValidUntil()),
		v.MaxRedemptions(),
		v.CurrentRedemptions(),
		v.DiscountType(),
		v.DiscountValue(),
		metadataJSON,
		v.CreatedAt(),
		v.UpdatedAt(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to create voucher: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "voucher created")
	return nil
}

// timePtrValue *time.Timeをプレースホルダ値に変換（nilの場合はNULL）
func timePtrValue(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

// Update クーポンを更新
func (r *VoucherRepository) Update(ctx context.Context, v *voucher.Voucher) error {
	ctx, span := r.tracer.Start(ctx, "VoucherRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.voucher_id", v.ID()),
		attribute.String("db.state", v.State().String()),
		attribute.Int("db.current_redemptions", v.CurrentRedemptions()),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "vouchers"),
	)

	metadataJSON, err := marshalMetadata(v.Metadata())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	query := `
		UPDATE vouchers
		SET
			category_id = ?,
			state = ?,
			valid_from = ?,
			valid_until = ?,
			max_redemptions = ?,
			current_redemptions = ?,
			discount_type = ?,
			discount_value = ?,
			metadata = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		v.CategoryID(),
		v.State().String(),
		timePtrValue(v.ValidFrom()),
		timePtrValue(v.ValidUntil()),
		v.MaxRedemptions(),
		v.CurrentRedemptions(),
		v.DiscountType(),
		v.DiscountValue(),
		metadataJSON,
		v.ID(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to update voucher: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		span.SetStatus(otelcodes.Ok, "voucher not found")
		return voucher.ErrVoucherNotFound
	}

	span.SetStatus(otelcodes.Ok, "voucher updated")
	return nil
}

// Delete クーポンを削除
func (r *VoucherRepository) Delete(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "VoucherRepository.Delete")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.voucher_id", id),
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.table", "vouchers"),
	)

	query := `DELETE FROM vouchers WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to delete voucher: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		span.SetStatus(otelcodes.Ok, "voucher not found")
		return voucher.ErrVoucherNotFound
	}

	span.SetStatus(otelcodes.Ok, "voucher deleted")
	return nil
}

// FindClaim クーポンとユーザーの取得記録を取得
func (r *VoucherRepository) FindClaim(ctx context.Context, voucherID, userID string) (*voucher.VoucherClaim, error) {
	ctx, span := r.tracer.Start(ctx, "VoucherRepository.FindClaim")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.voucher_id", voucherID),
		attribute.String("db.user_id", userID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "voucher_claims"),
	)

	query := `
		SELECT claim_id, voucher_id, user_id, claimed_at
		FROM voucher_claims
		WHERE voucher_id = ? AND user_id = ?
	`

	var claimID, dbVoucherID, dbUserID string
	var claimedAt time.Time

	err := r.db.QueryRowContext(ctx, query, voucherID, userID).Scan(
		&claimID,
		&dbVoucherID,
		&dbUserID,
		&claimedAt,
	)

	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "claim not found")
		return nil, voucher.ErrClaimNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find claim: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "claim found")
	return voucher.NewVoucherClaim(claimID, dbVoucherID, dbUserID, claimedAt), nil
}

// SaveClaim 取得記録を保存
func (r *VoucherRepository) SaveClaim(ctx context.Context, claim *voucher.VoucherClaim) error {
	ctx, span := r.tracer.Start(ctx, "VoucherRepository.SaveClaim")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.claim_id", claim.ClaimID()),
		attribute.String("db.voucher_id", claim.VoucherID()),
		attribute.String("db.user_id", claim.UserID()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "voucher_claims"),
	)

	query := `
		INSERT INTO voucher_claims (
			claim_id, voucher_id, user_id, claimed_at
		) VALUES (?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		claim.ClaimID(),
		claim.VoucherID(),
		claim.UserID(),
		claim.ClaimedAt(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save claim: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "claim saved")
	return nil
}
