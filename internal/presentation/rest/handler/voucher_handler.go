package handler

import (
	"net/http"
	"strconv"

	voucherapp "voucher-book-server/internal/application/voucher"

	"github.com/labstack/echo/v4"
)

// VoucherHandler クーポン関連ハンドラー
type VoucherHandler struct {
	voucherService *voucherapp.VoucherApplicationService
}

// NewVoucherHandler 新しいVoucherHandlerを作成
func NewVoucherHandler(voucherService *voucherapp.VoucherApplicationService) *VoucherHandler {
	return &VoucherHandler{
		voucherService: voucherService,
	}
}

// CreateVoucher クーポン作成ハンドラー
// @Summary クーポンを作成
// @Description 新しいクーポンをdraft状態で作成します
// @Tags voucher
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body CreateVoucherRequest true "クーポン作成リクエスト"
// @Success 201 {object} VoucherResponse "クーポン作成成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Router /vouchers [post]
func (h *VoucherHandler) CreateVoucher(c echo.Context) error {
	var reqBody CreateVoucherRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req := &voucherapp.CreateVoucherRequest{
		BusinessID:     reqBody.BusinessID,
		CategoryID:     reqBody.CategoryID,
		ValidFrom:      reqBody.ValidFrom,
		ValidUntil:     reqBody.ValidUntil,
		MaxRedemptions: reqBody.MaxRedemptions,
		DiscountType:   reqBody.DiscountType,
		DiscountValue:  reqBody.DiscountValue,
		Metadata:       reqBody.Metadata,
	}

	resp, err := h.voucherService.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toVoucherResponseModel(resp))
}

// GetVoucher クーポン取得ハンドラー
// @Summary クーポンを取得
// @Description 指定されたクーポンの詳細を取得します
// @Tags voucher
// @Accept json
// @Produce json
// @Security Bearer
// @Param voucher_id path string true "クーポンID" example(vch_123)
// @Success 200 {object} VoucherResponse "クーポン取得成功"
// @Failure 404 {object} ErrorResponse "クーポンが見つからない"
// @Router /vouchers/{voucher_id} [get]
func (h *VoucherHandler) GetVoucher(c echo.Context) error {
	voucherID := c.Param("voucher_id")
	if voucherID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "voucher_id is required")
	}

	resp, err := h.voucherService.Get(c.Request().Context(), voucherID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toVoucherResponseModel(resp))
}

// ListVouchers クーポン一覧取得ハンドラー
// @Summary クーポン一覧を取得
// @Description クーポンの一覧をページネーション付きで取得します
// @Tags voucher
// @Accept json
// @Produce json
// @Security Bearer
// @Param limit query int false "取得件数（デフォルト20、最大100）" example(20)
// @Param offset query int false "オフセット" example(0)
// @Success 200 {object} ListVouchersResponse "一覧取得成功"
// @Router /vouchers [get]
func (h *VoucherHandler) ListVouchers(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	resp, err := h.voucherService.List(c.Request().Context(), &voucherapp.ListVouchersRequest{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return err
	}

	vouchers := make([]VoucherResponse, len(resp.Vouchers))
	for i, v := range resp.Vouchers {
		vouchers[i] = toVoucherResponseModel(v)
	}

	return c.JSON(http.StatusOK, ListVouchersResponse{
		Vouchers: vouchers,
		Total:    resp.Total,
		Limit:    resp.Limit,
		Offset:   resp.Offset,
	})
}

// UpdateVoucher クーポン更新ハンドラー
// @Summary クーポンを更新
// @Description クーポンの内容を更新します。draft以外の状態では更新できません
// @Tags voucher
// @Accept json
// @Produce json
// @Security Bearer
// @Param voucher_id path string true "クーポンID" example(vch_123)
// @Param request body UpdateVoucherRequest true "クーポン更新リクエスト"
// @Success 200 {object} VoucherResponse "更新成功"
// @Failure 404 {object} ErrorResponse "クーポンが見つからない"
// @Failure 409 {object} ErrorResponse "更新不可の状態"
// @Router /vouchers/{voucher_id} [put]
func (h *VoucherHandler) UpdateVoucher(c echo.Context) error {
	voucherID := c.Param("voucher_id")
	if voucherID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "voucher_id is required")
	}

	var reqBody UpdateVoucherRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req := &voucherapp.UpdateVoucherRequest{
		VoucherID:      voucherID,
		CategoryID:     reqBody.CategoryID,
		ValidFrom:      reqBody.ValidFrom,
		ValidUntil:     reqBody.ValidUntil,
		MaxRedemptions: reqBody.MaxRedemptions,
		DiscountType:   reqBody.DiscountType,
		DiscountValue:  reqBody.DiscountValue,
		Metadata:       reqBody.Metadata,
	}

	resp, err := h.voucherService.Update(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toVoucherResponseModel(resp))
}

// DeleteVoucher クーポン削除ハンドラー
// @Summary クーポンを削除
// @Description クーポンを削除します。draft以外の状態では削除できません
// @Tags voucher
// @Accept json
// @Produce json
// @Security Bearer
// @Param voucher_id path string true "クーポンID" example(vch_123)
// @Success 204 "削除成功"
// @Failure 404 {object} ErrorResponse "クーポンが見つからない"
// @Failure 409 {object} ErrorResponse "削除不可の状態"
// @Router /vouchers/{voucher_id} [delete]
func (h *VoucherHandler) DeleteVoucher(c echo.Context) error {
	voucherID := c.Param("voucher_id")
	if voucherID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "voucher_id is required")
	}

	if err := h.voucherService.Delete(c.Request().Context(), voucherID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// PublishVoucher クーポン公開ハンドラー
// @Summary クーポンを公開
// @Description draft状態のクーポンを公開します。有効期間が過ぎている場合は公開できません
// @Tags voucher
// @Accept json
// @Produce json
// @Security Bearer
// @Param voucher_id path string true "クーポンID" example(vch_123)
// @Success 200 {object} VoucherResponse "公開成功"
// @Failure 404 {object} ErrorResponse "クーポンが見つからない"
// @Failure 409 {object} ErrorResponse "遷移不可の状態"
// @Failure 422 {object} ErrorResponse "ガード条件違反"
// @Router /vouchers/{voucher_id}/publish [post]
func (h *VoucherHandler) PublishVoucher(c echo.Context) error {
	voucherID := c.Param("voucher_id")
	if voucherID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "voucher_id is required")
	}

	resp, err := h.voucherService.Publish(c.Request().Context(), voucherID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toVoucherResponseModel(resp))
}

// ClaimVoucher クーポン取得ハンドラー
// @Summary クーポンを取得（クレーム）
// @Description 公開中のクーポンをユーザーが取得します。同一ユーザーによる再取得は既存の取得記録を返します
// @Tags voucher
// @Accept json
// @Produce json
// @Security Bearer
// @Param voucher_id path string true "クーポンID" example(vch_123)
// @Success 200 {object} ClaimVoucherResponse "取得成功"
// @Failure 404 {object} ErrorResponse "クーポンが見つからない"
// @Failure 409 {object} ErrorResponse "遷移不可の状態"
// @Failure 422 {object} ErrorResponse "ガード条件違反"
// @Router /vouchers/{voucher_id}/claim [post]
func (h *VoucherHandler) ClaimVoucher(c echo.Context) error {
	voucherID := c.Param("voucher_id")
	if voucherID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "voucher_id is required")
	}

	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "user_id not found in token")
	}

	resp, err := h.voucherService.Claim(c.Request().Context(), &voucherapp.ClaimVoucherRequest{
		VoucherID: voucherID,
		UserID:    userID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ClaimVoucherResponse{
		ClaimID:   resp.ClaimID,
		VoucherID: resp.VoucherID,
		UserID:    resp.UserID,
		State:     resp.State,
		ClaimedAt: resp.ClaimedAt,
	})
}

// RedeemVoucher クーポン使用ハンドラー
// @Summary クーポンを使用
// @Description 取得済みのクーポンを使用します。取得から30日間の猶予期間を過ぎると使用できません
// @Tags voucher
// @Accept json
// @Produce json
// @Security Bearer
// @Param voucher_id path string true "クーポンID" example(vch_123)
// @Success 200 {object} RedeemVoucherResponse "使用成功"
// @Failure 404 {object} ErrorResponse "クーポンが見つからない"
// @Failure 409 {object} ErrorResponse "遷移不可の状態"
// @Failure 422 {object} ErrorResponse "ガード条件違反"
// @Router /vouchers/{voucher_id}/redeem [post]
func (h *VoucherHandler) RedeemVoucher(c echo.Context) error {
	voucherID := c.Param("voucher_id")
	if voucherID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "voucher_id is required")
	}

	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "user_id not found in token")
	}

	resp, err := h.voucherService.Redeem(c.Request().Context(), &voucherapp.RedeemVoucherRequest{
		VoucherID: voucherID,
		UserID:    userID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, RedeemVoucherResponse{
		VoucherID:          resp.VoucherID,
		UserID:             resp.UserID,
		State:              resp.State,
		CurrentRedemptions: resp.CurrentRedemptions,
		RedeemedAt:         resp.RedeemedAt,
	})
}

// ExpireVoucher クーポン失効ハンドラー（管理API用）
// @Summary クーポンを失効させる（管理API）
// @Description クーポンを失効状態に遷移させます。失効は終端状態です
// @Tags admin
// @Accept json
// @Produce json
// @Param voucher_id path string true "クーポンID" example(vch_123)
// @Param X-API-Key header string true "APIキー"
// @Success 200 {object} VoucherResponse "失効成功"
// @Failure 404 {object} ErrorResponse "クーポンが見つからない"
// @Failure 409 {object} ErrorResponse "遷移不可の状態"
// @Router /admin/vouchers/{voucher_id}/expire [post]
func (h *VoucherHandler) ExpireVoucher(c echo.Context) error {
	voucherID := c.Param("voucher_id")
	if voucherID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "voucher_id is required")
	}

	resp, err := h.voucherService.Expire(c.Request().Context(), voucherID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toVoucherResponseModel(resp))
}

// SuspendVoucher クーポン停止ハンドラー（管理API用）
// @Summary クーポンを停止する（管理API）
// @Description クーポンを一時停止状態に遷移させます。停止中のクーポンは再公開できます
// @Tags admin
// @Accept json
// @Produce json
// @Param voucher_id path string true "クーポンID" example(vch_123)
// @Param X-API-Key header string true "APIキー"
// @Success 200 {object} VoucherResponse "停止成功"
// @Failure 404 {object} ErrorResponse "クーポンが見つからない"
// @Failure 409 {object} ErrorResponse "遷移不可の状態"
// @Router /admin/vouchers/{voucher_id}/suspend [post]
func (h *VoucherHandler) SuspendVoucher(c echo.Context) error {
	voucherID := c.Param("voucher_id")
	if voucherID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "voucher_id is required")
	}

	resp, err := h.voucherService.Suspend(c.Request().Context(), voucherID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toVoucherResponseModel(resp))
}

// CanTransitionVoucher 遷移可否確認ハンドラー
// @Summary 状態遷移の可否を確認
// @Description クーポンの状態を変更せずに、指定された状態への遷移可否を確認します
// @Tags voucher
// @Accept json
// @Produce json
// @Security Bearer
// @Param voucher_id path string true "クーポンID" example(vch_123)
// @Param target query string true "遷移先の状態" example(published)
// @Success 200 {object} CanTransitionResponse "遷移可否確認成功"
// @Failure 400 {object} ErrorResponse "不正な状態名"
// @Failure 404 {object} ErrorResponse "クーポンが見つからない"
// @Router /vouchers/{voucher_id}/can-transition [get]
func (h *VoucherHandler) CanTransitionVoucher(c echo.Context) error {
	voucherID := c.Param("voucher_id")
	if voucherID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "voucher_id is required")
	}

	target := c.QueryParam("target")
	if target == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "target is required")
	}

	resp, err := h.voucherService.CanTransition(c.Request().Context(), &voucherapp.CanTransitionRequest{
		VoucherID: voucherID,
		Target:    target,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, CanTransitionResponse{
		VoucherID:          resp.VoucherID,
		CurrentState:       resp.CurrentState,
		Target:             resp.Target,
		Allowed:            resp.Allowed,
		Reason:             resp.Reason,
		AllowedTransitions: resp.AllowedTransitions,
	})
}

// toVoucherResponseModel アプリケーション層のレスポンスをAPIモデルに変換
func toVoucherResponseModel(resp *voucherapp.VoucherResponse) VoucherResponse {
	return VoucherResponse{
		ID:                 resp.ID,
		BusinessID:         resp.BusinessID,
		CategoryID:         resp.CategoryID,
		State:              resp.State,
		ValidFrom:          resp.ValidFrom,
		ValidUntil:         resp.ValidUntil,
		MaxRedemptions:     resp.MaxRedemptions,
		CurrentRedemptions: resp.CurrentRedemptions,
		DiscountType:       resp.DiscountType,
		DiscountValue:      resp.DiscountValue,
		Metadata:           resp.Metadata,
	}
}
