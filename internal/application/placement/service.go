package placement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"voucher-book-server/internal/domain/book"
	"voucher-book-server/internal/domain/placement"
	"voucher-book-server/internal/domain/transaction"
	otelinfra "voucher-book-server/internal/infrastructure/observability/otel"
)

// PlacementApplicationService 配置アプリケーションサービス
// ページ上のスペース割り当てはSerializableトランザクション内で
// 行ロック付き読み取り→検証→書き込みの順に行い、同時提案を直列化する
type PlacementApplicationService struct {
	placementRepo placement.PlacementRepository
	bookRepo      book.BookRepository
	txManager     transaction.TransactionManager
	logger        *otelinfra.Logger
	metrics       *otelinfra.Metrics
	tracer        trace.Tracer
}

// NewPlacementApplicationService 新しいPlacementApplicationServiceを作成
func NewPlacementApplicationService(
	placementRepo placement.PlacementRepository,
	bookRepo book.BookRepository,
	txManager transaction.TransactionManager,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *PlacementApplicationService {
	return &PlacementApplicationService{
		placementRepo: placementRepo,
		bookRepo:      bookRepo,
		txManager:     txManager,
		logger:        logger,
		metrics:       metrics,
		tracer:        otel.Tracer("placement-service"),
	}
}

// Propose 配置を提案する
// ページ上の既存配置と照合し、全ての違反を収集して返す
func (s *PlacementApplicationService) Propose(ctx context.Context, req *ProposePlacementRequest) (*PlacementResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PlacementApplicationService.Propose")
	defer span.End()

	span.SetAttributes(
		attribute.String("page_id", req.PageID),
		attribute.String("content_type", req.ContentType),
		attribute.Int("position", req.Position),
		attribute.String("size", req.Size),
	)

	s.logger.Info(ctx, "Proposing placement", map[string]interface{}{
		"page_id":  req.PageID,
		"position": req.Position,
		"size":     req.Size,
	})

	contentType, err := placement.NewContentType(req.ContentType)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	size, err := placement.NewPlacementSize(req.Size)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	// ページの存在確認
	page, err := s.bookRepo.FindPageByID(ctx, req.PageID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	candidate, err := placement.NewAdPlacement(
		s.generatePlacementID(),
		page.ID(),
		contentType,
		req.Position,
		size,
		req.Metadata,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	candidate.SetContent(req.ImageURL, req.Title, req.Description)
	candidate.SetVoucherFields(req.QRCodePayload, req.ShortCode)

	var spacesUsed int

	err = s.txManager.WithSerializableTransaction(ctx, func(tx *sql.Tx) error {
		existing, err := s.placementRepo.FindByPageIDForUpdate(ctx, tx, page.ID())
		if err != nil {
			return err
		}

		if err := placement.ValidatePlacement(existing, candidate); err != nil {
			return err
		}

		if err := s.placementRepo.Create(ctx, tx, candidate); err != nil {
			return err
		}

		spacesUsed = placement.PageSpaceUsage(existing) + candidate.SpacesUsed()
		return nil
	})

	if err != nil {
		var verr *placement.ValidationError
		if errors.As(err, &verr) && verr.HasKind(placement.ViolationPlacementConflict) {
			s.metrics.RecordPlacementConflict(ctx, page.ID())
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to propose placement", err, map[string]interface{}{
			"page_id":  req.PageID,
			"position": req.Position,
		})
		s.metrics.RecordError(ctx, "placement_proposal_failed")
		return nil, err
	}

	s.metrics.RecordPlacement(ctx, "propose", contentType.String())
	s.metrics.RecordPageUtilization(ctx, page.ID(), int64(spacesUsed))

	s.logger.Info(ctx, "Placement proposed successfully", map[string]interface{}{
		"placement_id": candidate.ID(),
		"page_id":      page.ID(),
		"spaces_used":  spacesUsed,
	})

	return toPlacementResponse(candidate), nil
}

// Move 配置の位置・サイズを変更する
// 衝突判定は自分自身を除いた同一ページ上の配置に対して再実行する
func (s *PlacementApplicationService) Move(ctx context.Context, req *MovePlacementRequest) (*PlacementResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PlacementApplicationService.Move")
	defer span.End()

	span.SetAttributes(
		attribute.String("placement_id", req.PlacementID),
		attribute.Int("position", req.Position),
		attribute.String("size", req.Size),
	)

	size, err := placement.NewPlacementSize(req.Size)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	var moved *placement.AdPlacement

	err = s.txManager.WithSerializableTransaction(ctx, func(tx *sql.Tx) error {
		p, err := s.placementRepo.FindByID(ctx, req.PlacementID)
		if err != nil {
			return err
		}

		existing, err := s.placementRepo.FindByPageIDForUpdate(ctx, tx, p.PageID())
		if err != nil {
			return err
		}

		if err := placement.ValidateMove(existing, p, req.Position, size); err != nil {
			return err
		}

		p.MoveTo(req.Position, size)
		if err := s.placementRepo.Update(ctx, tx, p); err != nil {
			return err
		}

		moved = p
		return nil
	})

	if err != nil {
		var verr *placement.ValidationError
		if errors.As(err, &verr) && verr.HasKind(placement.ViolationPlacementConflict) {
			s.metrics.RecordPlacementConflict(ctx, req.PlacementID)
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to move placement", err, map[string]interface{}{
			"placement_id": req.PlacementID,
		})
		s.metrics.RecordError(ctx, "placement_move_failed")
		return nil, err
	}

	s.metrics.RecordPlacement(ctx, "move", moved.ContentType().String())

	return toPlacementResponse(moved), nil
}

// UpdateContent 配置の表示コンテンツを更新する
// クーポン配置の必須フィールドを空にする更新は拒否する
func (s *PlacementApplicationService) UpdateContent(ctx context.Context, req *UpdatePlacementContentRequest) (*PlacementResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PlacementApplicationService.UpdateContent")
	defer span.End()

	span.SetAttributes(attribute.String("placement_id", req.PlacementID))

	var updated *placement.AdPlacement

	err := s.txManager.WithTransaction(ctx, func(tx *sql.Tx) error {
		p, err := s.placementRepo.FindByID(ctx, req.PlacementID)
		if err != nil {
			return err
		}

		if p.ContentType().IsVoucher() {
			violations := make([]placement.Violation, 0)
			if req.QRCodePayload == "" {
				violations = append(violations, placement.Violation{
					Kind:    placement.ViolationMissingRequiredField,
					Field:   "qr_code_payload",
					Message: "voucher placement requires qr_code_payload",
				})
			}
			if req.ShortCode == "" {
				violations = append(violations, placement.Violation{
					Kind:    placement.ViolationMissingRequiredField,
					Field:   "short_code",
					Message: "voucher placement requires short_code",
				})
			}
			if err := placement.NewValidationError(violations); err != nil {
				return err
			}
		}

		p.SetContent(req.ImageURL, req.Title, req.Description)
		p.SetVoucherFields(req.QRCodePayload, req.ShortCode)

		if err := s.placementRepo.Update(ctx, tx, p); err != nil {
			return err
		}

		updated = p
		return nil
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to update placement content", err, map[string]interface{}{
			"placement_id": req.PlacementID,
		})
		s.metrics.RecordError(ctx, "placement_update_failed")
		return nil, err
	}

	s.metrics.RecordPlacement(ctx, "update_content", updated.ContentType().String())

	return toPlacementResponse(updated), nil
}

// Delete 配置を削除する
func (s *PlacementApplicationService) Delete(ctx context.Context, req *DeletePlacementRequest) error {
	ctx, span := s.tracer.Start(ctx, "PlacementApplicationService.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("placement_id", req.PlacementID))

	err := s.txManager.WithTransaction(ctx, func(tx *sql.Tx) error {
		return s.placementRepo.Delete(ctx, tx, req.PlacementID)
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to delete placement", err, map[string]interface{}{
			"placement_id": req.PlacementID,
		})
		s.metrics.RecordError(ctx, "placement_delete_failed")
		return err
	}

	s.logger.Info(ctx, "Placement deleted", map[string]interface{}{
		"placement_id": req.PlacementID,
	})

	return nil
}

// Get 配置を取得する
func (s *PlacementApplicationService) Get(ctx context.Context, placementID string) (*PlacementResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PlacementApplicationService.Get")
	defer span.End()

	span.SetAttributes(attribute.String("placement_id", placementID))

	p, err := s.placementRepo.FindByID(ctx, placementID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	return toPlacementResponse(p), nil
}

// GetPageUtilization ページの使用状況を取得する
// スペース使用量・空き・充填状態は配置集合から都度導出する
func (s *PlacementApplicationService) GetPageUtilization(ctx context.Context, pageID string) (*PageUtilizationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PlacementApplicationService.GetPageUtilization")
	defer span.End()

	span.SetAttributes(attribute.String("page_id", pageID))

	page, err := s.bookRepo.FindPageByID(ctx, pageID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	placements := page.Placements()
	responses := make([]*PlacementResponse, 0, len(placements))
	for _, p := range placements {
		responses = append(responses, toPlacementResponse(p))
	}

	span.SetAttributes(
		attribute.Int("spaces_used", page.SpacesUsed()),
		attribute.Bool("is_complete", page.IsComplete()),
	)

	return &PageUtilizationResponse{
		PageID:          page.ID(),
		BookID:          page.BookID(),
		PageNumber:      page.PageNumber(),
		LayoutType:      page.LayoutType(),
		SpacesUsed:      page.SpacesUsed(),
		SpacesAvailable: page.SpacesAvailable(),
		IsComplete:      page.IsComplete(),
		Placements:      responses,
	}, nil
}

// BulkOperation 配置の一括操作を実行する
// 各項目は独立したトランザクションで処理し、1項目の失敗は他の項目を妨げない
func (s *PlacementApplicationService) BulkOperation(ctx context.Context, req *BulkOperationRequest) (*BulkOperationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PlacementApplicationService.BulkOperation")
	defer span.End()

	span.SetAttributes(attribute.Int("operation_count", len(req.Operations)))

	result := &BulkOperationResponse{
		Successful: make([]string, 0, len(req.Operations)),
		Failed:     make([]BulkOperationFailure, 0),
	}

	for _, op := range req.Operations {
		if err := s.applyBulkItem(ctx, op); err != nil {
			result.Failed = append(result.Failed, BulkOperationFailure{
				PlacementID: op.PlacementID,
				Action:      op.Action,
				Error:       err.Error(),
			})
			continue
		}
		result.Successful = append(result.Successful, op.PlacementID)
	}

	span.SetAttributes(
		attribute.Int("successful_count", len(result.Successful)),
		attribute.Int("failed_count", len(result.Failed)),
	)

	s.logger.Info(ctx, "Bulk operation completed", map[string]interface{}{
		"successful": len(result.Successful),
		"failed":     len(result.Failed),
	})

	return result, nil
}

// applyBulkItem 一括操作の1項目を実行する
func (s *PlacementApplicationService) applyBulkItem(ctx context.Context, op BulkOperationItem) error {
	switch op.Action {
	case "activate", "deactivate":
		return s.txManager.WithTransaction(ctx, func(tx *sql.Tx) error {
			p, err := s.placementRepo.FindByID(ctx, op.PlacementID)
			if err != nil {
				return err
			}
			if op.Action == "activate" {
				p.Activate()
			} else {
				p.Deactivate()
			}
			return s.placementRepo.Update(ctx, tx, p)
		})
	case "delete":
		return s.txManager.WithTransaction(ctx, func(tx *sql.Tx) error {
			return s.placementRepo.Delete(ctx, tx, op.PlacementID)
		})
	case "move":
		_, err := s.Move(ctx, &MovePlacementRequest{
			PlacementID: op.PlacementID,
			Position:    op.Position,
			Size:        op.Size,
		})
		return err
	default:
		return fmt.Errorf("unsupported bulk action: %s", op.Action)
	}
}

// generatePlacementID 配置IDを生成
func (s *PlacementApplicationService) generatePlacementID() string {
	return fmt.Sprintf("plc_%d", time.Now().UnixNano())
}

// toPlacementResponse エンティティをレスポンスDTOに変換
func toPlacementResponse(p *placement.AdPlacement) *PlacementResponse {
	return &PlacementResponse{
		ID:            p.ID(),
		PageID:        p.PageID(),
		ContentType:   p.ContentType().String(),
		Position:      p.Position(),
		EndPosition:   p.EndPosition(),
		Size:          p.Size().String(),
		SpacesUsed:    p.SpacesUsed(),
		ImageURL:      p.ImageURL(),
		Title:         p.Title(),
		Description:   p.Description(),
		QRCodePayload: p.QRCodePayload(),
		ShortCode:     p.ShortCode(),
		Metadata:      p.Metadata(),
		Active:        p.Active(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}
