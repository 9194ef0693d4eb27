package handler

import (
	"net/http"

	placementapp "voucher-book-server/internal/application/placement"

	"github.com/labstack/echo/v4"
)

// PlacementHandler 配置関連ハンドラー
type PlacementHandler struct {
	placementService *placementapp.PlacementApplicationService
}

// NewPlacementHandler 新しいPlacementHandlerを作成
func NewPlacementHandler(placementService *placementapp.PlacementApplicationService) *PlacementHandler {
	return &PlacementHandler{
		placementService: placementService,
	}
}

// ProposePlacement 配置提案ハンドラー
// @Summary 配置を提案
// @Description 指定されたページに広告またはクーポンの配置を提案します。検証違反は網羅的に収集して返します
// @Tags placement
// @Accept json
// @Produce json
// @Security Bearer
// @Param page_id path string true "ページID" example(pg_123)
// @Param request body ProposePlacementRequest true "配置提案リクエスト"
// @Success 201 {object} PlacementResponse "配置作成成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 404 {object} ErrorResponse "ページが見つからない"
// @Failure 409 {object} ErrorResponse "既存配置との競合"
// @Failure 422 {object} ErrorResponse "検証違反"
// @Router /pages/{page_id}/placements [post]
func (h *PlacementHandler) ProposePlacement(c echo.Context) error {
	pageID := c.Param("page_id")
	if pageID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "page_id is required")
	}

	var reqBody ProposePlacementRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req := &placementapp.ProposePlacementRequest{
		PageID:        pageID,
		ContentType:   reqBody.ContentType,
		Position:      reqBody.Position,
		Size:          reqBody.Size,
		ImageURL:      reqBody.ImageURL,
		Title:         reqBody.Title,
		Description:   reqBody.Description,
		QRCodePayload: reqBody.QRCodePayload,
		ShortCode:     reqBody.ShortCode,
		Metadata:      reqBody.Metadata,
	}

	resp, err := h.placementService.Propose(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toPlacementResponseModel(resp))
}

// GetPlacement 配置取得ハンドラー
// @Summary 配置を取得
// @Description 指定された配置の詳細を取得します
// @Tags placement
// @Accept json
// @Produce json
// @Security Bearer
// @Param placement_id path string true "配置ID" example(plc_123)
// @Success 200 {object} PlacementResponse "配置取得成功"
// @Failure 404 {object} ErrorResponse "配置が見つからない"
// @Router /placements/{placement_id} [get]
func (h *PlacementHandler) GetPlacement(c echo.Context) error {
	placementID := c.Param("placement_id")
	if placementID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "placement_id is required")
	}

	resp, err := h.placementService.Get(c.Request().Context(), placementID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toPlacementResponseModel(resp))
}

// MovePlacement 配置移動ハンドラー
// @Summary 配置を移動
// @Description 既存の配置を新しい位置・サイズに移動します。自身の現在位置は競合とみなしません
// @Tags placement
// @Accept json
// @Produce json
// @Security Bearer
// @Param placement_id path string true "配置ID" example(plc_123)
// @Param request body MovePlacementRequest true "配置移動リクエスト"
// @Success 200 {object} PlacementResponse "配置移動成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 404 {object} ErrorResponse "配置が見つからない"
// @Failure 409 {object} ErrorResponse "既存配置との競合"
// @Router /placements/{placement_id}/move [post]
func (h *PlacementHandler) MovePlacement(c echo.Context) error {
	placementID := c.Param("placement_id")
	if placementID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "placement_id is required")
	}

	var reqBody MovePlacementRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req := &placementapp.MovePlacementRequest{
		PlacementID: placementID,
		Position:    reqBody.Position,
		Size:        reqBody.Size,
	}

	resp, err := h.placementService.Move(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toPlacementResponseModel(resp))
}

// UpdatePlacementContent 配置コンテンツ更新ハンドラー
// @Summary 配置コンテンツを更新
// @Description 配置の位置・サイズを変えずにコンテンツのみを更新します
// @Tags placement
// @Accept json
// @Produce json
// @Security Bearer
// @Param placement_id path string true "配置ID" example(plc_123)
// @Param request body UpdatePlacementContentRequest true "コンテンツ更新リクエスト"
// @Success 200 {object} PlacementResponse "更新成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 404 {object} ErrorResponse "配置が見つからない"
// @Failure 422 {object} ErrorResponse "必須フィールド欠落"
// @Router /placements/{placement_id} [put]
func (h *PlacementHandler) UpdatePlacementContent(c echo.Context) error {
	placementID := c.Param("placement_id")
	if placementID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "placement_id is required")
	}

	var reqBody UpdatePlacementContentRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req := &placementapp.UpdatePlacementContentRequest{
		PlacementID:   placementID,
		ImageURL:      reqBody.ImageURL,
		Title:         reqBody.Title,
		Description:   reqBody.Description,
		QRCodePayload: reqBody.QRCodePayload,
		ShortCode:     reqBody.ShortCode,
	}

	resp, err := h.placementService.UpdateContent(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toPlacementResponseModel(resp))
}

// DeletePlacement 配置削除ハンドラー
// @Summary 配置を削除
// @Description 指定された配置を削除します
// @Tags placement
// @Accept json
// @Produce json
// @Security Bearer
// @Param placement_id path string true "配置ID" example(plc_123)
// @Success 204 "削除成功"
// @Failure 404 {object} ErrorResponse "配置が見つからない"
// @Router /placements/{placement_id} [delete]
func (h *PlacementHandler) DeletePlacement(c echo.Context) error {
	placementID := c.Param("placement_id")
	if placementID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "placement_id is required")
	}

	req := &placementapp.DeletePlacementRequest{
		PlacementID: placementID,
	}

	if err := h.placementService.Delete(c.Request().Context(), req); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// GetPageUtilization ページ使用状況取得ハンドラー
// @Summary ページの使用状況を取得
// @Description ページの使用済みスペース・空きスペース・配置一覧を取得します
// @Tags placement
// @Accept json
// @Produce json
// @Security Bearer
// @Param page_id path string true "ページID" example(pg_123)
// @Success 200 {object} PageUtilizationResponse "使用状況取得成功"
// @Failure 404 {object} ErrorResponse "ページが見つからない"
// @Router /pages/{page_id}/utilization [get]
func (h *PlacementHandler) GetPageUtilization(c echo.Context) error {
	pageID := c.Param("page_id")
	if pageID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "page_id is required")
	}

	resp, err := h.placementService.GetPageUtilization(c.Request().Context(), pageID)
	if err != nil {
		return err
	}

	placements := make([]PlacementResponse, len(resp.Placements))
	for i, p := range resp.Placements {
		placements[i] = toPlacementResponseModel(p)
	}

	return c.JSON(http.StatusOK, PageUtilizationResponse{
		PageID:          resp.PageID,
		BookID:          resp.BookID,
		PageNumber:      resp.PageNumber,
		LayoutType:      resp.LayoutType,
		SpacesUsed:      resp.SpacesUsed,
		SpacesAvailable: resp.SpacesAvailable,
		IsComplete:      resp.IsComplete,
		Placements:      placements,
	})
}

// BulkOperation 一括操作ハンドラー
// @Summary 配置の一括操作
// @Description 複数の配置に対する操作をまとめて実行します。失敗した項目があっても他の項目の処理は継続されます
// @Tags placement
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body BulkOperationRequest true "一括操作リクエスト"
// @Success 200 {object} BulkOperationResponse "一括操作結果"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Router /placements/bulk [post]
func (h *PlacementHandler) BulkOperation(c echo.Context) error {
	var reqBody BulkOperationRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	operations := make([]placementapp.BulkOperationItem, len(reqBody.Operations))
	for i, op := range reqBody.Operations {
		operations[i] = placementapp.BulkOperationItem{
			PlacementID: op.PlacementID,
			Action:      op.Action,
			Position:    op.Position,
			Size:        op.Size,
		}
	}

	resp, err := h.placementService.BulkOperation(c.Request().Context(), &placementapp.BulkOperationRequest{
		Operations: operations,
	})
	if err != nil {
		return err
	}

	failed := make([]BulkOperationFailure, len(resp.Failed))
	for i, f := range resp.Failed {
		failed[i] = BulkOperationFailure{
			PlacementID: f.PlacementID,
			Action:      f.Action,
			Error:       f.Error,
		}
	}

	return c.JSON(http.StatusOK, BulkOperationResponse{
		Successful: resp.Successful,
		Failed:     failed,
	})
}

// toPlacementResponseModel アプリケーション層のレスポンスをAPIモデルに変換
func toPlacementResponseModel(resp *placementapp.PlacementResponse) PlacementResponse {
	return PlacementResponse{
		ID:            resp.ID,
		PageID:        resp.PageID,
		ContentType:   resp.ContentType,
		Position:      resp.Position,
		EndPosition:   resp.EndPosition,
		Size:          resp.Size,
		SpacesUsed:    resp.SpacesUsed,
		ImageURL:      resp.ImageURL,
		Title:         resp.Title,
		Description:   resp.Description,
		QRCodePayload: resp.QRCodePayload,
		ShortCode:     resp.ShortCode,
		Metadata:      resp.Metadata,
		Active:        resp.Active,
	}
}
