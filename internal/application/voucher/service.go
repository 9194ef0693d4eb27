package voucher

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"voucher-book-server/internal/domain/voucher"
	otelinfra "voucher-book-server/internal/infrastructure/observability/otel"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// VoucherApplicationService クーポンライフサイクルアプリケーションサービス
type VoucherApplicationService struct {
	voucherRepo voucher.VoucherRepository
	logger      *otelinfra.Logger
	metrics     *otelinfra.Metrics
	tracer      trace.Tracer
}

// NewVoucherApplicationService 新しいVoucherApplicationServiceを作成
func NewVoucherApplicationService(
	voucherRepo voucher.VoucherRepository,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *VoucherApplicationService {
	return &VoucherApplicationService{
		voucherRepo: voucherRepo,
		logger:      logger,
		metrics:     metrics,
		tracer:      otel.Tracer("voucher-service"),
	}
}

// Create クーポンを作成する（初期状態はdraft）
func (s *VoucherApplicationService) Create(ctx context.Context, req *CreateVoucherRequest) (*VoucherResponse, error) {
	ctx, span := s.tracer.Start(ctx, "VoucherApplicationService.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("business_id", req.BusinessID),
		attribute.String("discount_type", req.DiscountType),
	)

	v, err := voucher.NewVoucher(
		s.generateVoucherID(),
		req.BusinessID,
		req.CategoryID,
		req.ValidFrom,
		req.ValidUntil,
		req.MaxRedemptions,
		req.DiscountType,
		req.DiscountValue,
		req.Metadata,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	if err := s.voucherRepo.Create(ctx, v); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to create voucher", err, map[string]interface{}{
			"business_id": req.BusinessID,
		})
		s.metrics.RecordError(ctx, "voucher_create_failed")
		return nil, err
	}

	s.logger.Info(ctx, "Voucher created", map[string]interface{}{
		"voucher_id":  v.ID(),
		"business_id": v.BusinessID(),
	})

	return toVoucherResponse(v), nil
}

// Get クーポンを取得する
func (s *VoucherApplicationService) Get(ctx context.Context, voucherID string) (*VoucherResponse, error) {
	ctx, span := s.tracer.Start(ctx, "VoucherApplicationService.Get")
	defer span.End()

	span.SetAttributes(attribute.String("voucher_id", voucherID))

	v, err := s.voucherRepo.FindByID(ctx, voucherID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	return toVoucherResponse(v), nil
}

// List クーポンの一覧を取得する
func (s *VoucherApplicationService) List(ctx context.Context, req *ListVouchersRequest) (*ListVouchersResponse, error) {
	ctx, span := s.tracer.Start(ctx, "VoucherApplicationService.List")
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

	vouchers, total, err := s.voucherRepo.FindAll(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	responses := make([]*VoucherResponse, 0, len(vouchers))
	for _, v := range vouchers {
		responses = append(responses, toVoucherResponse(v))
	}

	return &ListVouchersResponse{
		Vouchers: responses,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

// Update クーポンを更新する
// expired/redeemedのクーポンは編集不可
func (s *VoucherApplicationService) Update(ctx context.Context, req *UpdateVoucherRequest) (*VoucherResponse, error) {
	ctx, span := s.tracer.Start(ctx, "VoucherApplicationService.Update")
	defer span.End()

	span.SetAttributes(attribute.String("voucher_id", req.VoucherID))

	v, err := s.voucherRepo.FindByID(ctx, req.VoucherID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	if err := v.CanUpdate(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	// 状態と使用回数を保持したまま属性を差し替える
	updated, err := voucher.NewVoucher(
		v.ID(),
		v.BusinessID(),
		req.CategoryID,
		req.ValidFrom,
		req.ValidUntil,
		req.MaxRedemptions,
		req.DiscountType,
		req.DiscountValue,
		req.Metadata,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	updated.SetState(v.State())
	updated.SetCurrentRedemptions(v.CurrentRedemptions())
	updated.SetTimestamps(v.CreatedAt(), time.Now())

	if err := s.voucherRepo.Update(ctx, updated); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordError(ctx, "voucher_update_failed")
		return nil, err
	}

	s.logger.Info(ctx, "Voucher updated", map[string]interface{}{
		"voucher_id": updated.ID(),
	})

	return toVoucherResponse(updated), nil
}

// Delete クーポンを削除する
// 公開中のクーポンは削除不可（先に期限切れにする必要がある）
func (s *VoucherApplicationService) Delete(ctx context.Context, voucherID string) error {
	ctx, span := s.tracer.Start(ctx, "VoucherApplicationService.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("voucher_id", voucherID))

	v, err := s.voucherRepo.FindByID(ctx, voucherID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	if err := v.CanDelete(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	if err := s.voucherRepo.Delete(ctx, voucherID); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordError(ctx, "voucher_delete_failed")
		return err
	}

	s.logger.Info(ctx, "Voucher deleted", map[string]interface{}{
		"voucher_id": voucherID,
	})

	return nil
}

// Publish クーポンを公開する
func (s *VoucherApplicationService) Publish(ctx context.Context, voucherID string) (*VoucherResponse, error) {
	return s.transition(ctx, "Publish", voucherID, func(v *voucher.Voucher, now time.Time) error {
		return v.Publish(now)
	})
}

// Expire クーポンを期限切れにする
func (s *VoucherApplicationService) Expire(ctx context.Context, voucherID string) (*VoucherResponse, error) {
	return s.transition(ctx, "Expire", voucherID, func(v *voucher.Voucher, now time.Time) error {
		return v.Expire(now)
	})
}

// Suspend クーポンを停止する
func (s *VoucherApplicationService) Suspend(ctx context.Context, voucherID string) (*VoucherResponse, error) {
	return s.transition(ctx, "Suspend", voucherID, func(v *voucher.Voucher, now time.Time) error {
		return v.Suspend(now)
	})
}

// transition 状態遷移操作の共通処理
func (s *VoucherApplicationService) transition(
	ctx context.Context,
	operation string,
	voucherID string,
	fn func(*voucher.Voucher, time.Time) error,
) (*VoucherResponse, error) {
	ctx, span := s.tracer.Start(ctx, "VoucherApplicationService."+operation)
	defer span.End()

	span.SetAttributes(attribute.String("voucher_id", voucherID))

	v, err := s.voucherRepo.FindByID(ctx, voucherID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	from := v.State()
	now := time.Now()

	if err := fn(v, now); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Voucher transition rejected", err, map[string]interface{}{
			"voucher_id": voucherID,
			"operation":  operation,
			"state":      from.String(),
		})
		return nil, err
	}

	if err := s.voucherRepo.Update(ctx, v); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordError(ctx, "voucher_transition_failed")
		return nil, err
	}

	if from != v.State() {
		s.metrics.RecordStateTransition(ctx, "voucher", from.String(), v.State().String())
	}

	span.SetAttributes(
		attribute.String("from", from.String()),
		attribute.String("to", v.State().String()),
	)

	s.logger.Info(ctx, "Voucher transitioned", map[string]interface{}{
		"voucher_id": voucherID,
		"from":       from.String(),
		"to":         v.State().String(),
	})

	return toVoucherResponse(v), nil
}

// Claim クーポンを取得する
// 同一ユーザーによる再取得は既存の取得記録を返す（冪等）
func (s *VoucherApplicationService) Claim(ctx context.Context, req *ClaimVoucherRequest) (*ClaimVoucherResponse, error) {
	ctx, span := s.tracer.Start(ctx, "VoucherApplicationService.Claim")
	defer span.End()

	span.SetAttributes(
		attribute.String("voucher_id", req.VoucherID),
		attribute.String("user_id", req.UserID),
	)

	v, err := s.voucherRepo.FindByID(ctx, req.VoucherID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	existing, err := s.voucherRepo.FindClaim(ctx, req.VoucherID, req.UserID)
	if err != nil && err != voucher.ErrClaimNotFound {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to check claim: %w", err)
	}
	if existing != nil {
		span.SetStatus(otelcodes.Ok, "already claimed")
		return &ClaimVoucherResponse{
			ClaimID:   existing.ClaimID(),
			VoucherID: existing.VoucherID(),
			UserID:    existing.UserID(),
			State:     v.State().String(),
			ClaimedAt: existing.ClaimedAt(),
		}, nil
	}

	from := v.State()
	now := time.Now()

	if err := v.Claim(now); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Voucher claim rejected", err, map[string]interface{}{
			"voucher_id": req.VoucherID,
			"user_id":    req.UserID,
		})
		return nil, err
	}

	claim := voucher.NewVoucherClaim(s.generateClaimID(), req.VoucherID, req.UserID, now)
	if err := s.voucherRepo.SaveClaim(ctx, claim); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordError(ctx, "voucher_claim_failed")
		return nil, err
	}

	if err := s.voucherRepo.Update(ctx, v); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordError(ctx, "voucher_claim_failed")
		return nil, err
	}

	s.metrics.RecordStateTransition(ctx, "voucher", from.String(), v.State().String())

	s.logger.Info(ctx, "Voucher claimed", map[string]interface{}{
		"voucher_id": req.VoucherID,
		"user_id":    req.UserID,
		"claim_id":   claim.ClaimID(),
	})

	return &ClaimVoucherResponse{
		ClaimID:   claim.ClaimID(),
		VoucherID: claim.VoucherID(),
		UserID:    claim.UserID(),
		State:     v.State().String(),
		ClaimedAt: claim.ClaimedAt(),
	}, nil
}

// Redeem クーポンを使用する
// 取得記録がある場合は取得日時から30日の猶予期間内であることを要求する
func (s *VoucherApplicationService) Redeem(ctx context.Context, req *RedeemVoucherRequest) (*RedeemVoucherResponse, error) {
	ctx, span := s.tracer.Start(ctx, "VoucherApplicationService.Redeem")
	defer span.End()

	span.SetAttributes(
		attribute.String("voucher_id", req.VoucherID),
		attribute.String("user_id", req.UserID),
	)

	v, err := s.voucherRepo.FindByID(ctx, req.VoucherID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	var claimedAt *time.Time
	claim, err := s.voucherRepo.FindClaim(ctx, req.VoucherID, req.UserID)
	if err != nil && err != voucher.ErrClaimNotFound {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to check claim: %w", err)
	}
	if claim != nil {
		at := claim.ClaimedAt()
		claimedAt = &at
	}

	from := v.State()
	now := time.Now()

	if err := v.Redeem(now, claimedAt); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Voucher redeem rejected", err, map[string]interface{}{
			"voucher_id": req.VoucherID,
			"user_id":    req.UserID,
			"state":      from.String(),
		})
		return nil, err
	}

	if err := s.voucherRepo.Update(ctx, v); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordError(ctx, "voucher_redeem_failed")
		return nil, err
	}

	s.metrics.RecordStateTransition(ctx, "voucher", from.String(), v.State().String())

	s.logger.Info(ctx, "Voucher redeemed", map[string]interface{}{
		"voucher_id":          req.VoucherID,
		"user_id":             req.UserID,
		"current_redemptions": v.CurrentRedemptions(),
	})

	return &RedeemVoucherResponse{
		VoucherID:          v.ID(),
		UserID:             req.UserID,
		State:              v.State().String(),
		CurrentRedemptions: v.CurrentRedemptions(),
		RedeemedAt:         now,
	}, nil
}

// CanTransition 遷移可否を確認する（状態は変更しない）
func (s *VoucherApplicationService) CanTransition(ctx context.Context, req *CanTransitionRequest) (*CanTransitionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "VoucherApplicationService.CanTransition")
	defer span.End()

	span.SetAttributes(
		attribute.String("voucher_id", req.VoucherID),
		attribute.String("target", req.Target),
	)

	target, err := voucher.NewVoucherState(req.Target)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	v, err := s.voucherRepo.FindByID(ctx, req.VoucherID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	allowed := v.State().AllowedTransitions()
	allowedStrs := make([]string, 0, len(allowed))
	for _, st := range allowed {
		allowedStrs = append(allowedStrs, st.String())
	}

	resp := &CanTransitionResponse{
		VoucherID:          v.ID(),
		CurrentState:       v.State().String(),
		Target:             target.String(),
		AllowedTransitions: allowedStrs,
	}

	if err := v.CanTransitionTo(target, time.Now()); err != nil {
		resp.Allowed = false
		resp.Reason = err.Error()
		return resp, nil
	}

	resp.Allowed = true
	return resp, nil
}

// generateVoucherID クーポンIDを生成
func (s *VoucherApplicationService) generateVoucherID() string {
	return fmt.Sprintf("vch_%d", time.Now().UnixNano())
}

// generateClaimID 取得記録IDを生成
func (s *VoucherApplicationService) generateClaimID() string {
	return fmt.Sprintf("clm_%d", time.Now().UnixNano())
}
