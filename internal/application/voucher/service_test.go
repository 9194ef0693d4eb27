package voucher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"voucher-book-server/internal/domain/voucher"
	otelinfra "voucher-book-server/internal/infrastructure/observability/otel"
)

// MockVoucherRepository モッククーポンリポジトリ
type MockVoucherRepository struct {
	mock.Mock
}

func (m *MockVoucherRepository) FindByID(ctx context.Context, id string) (*voucher.Voucher, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*voucher.Voucher), args.Error(1)
}

func (m *MockVoucherRepository) FindAll(ctx context.Context, limit, offset int) ([]*voucher.Voucher, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*voucher.Voucher), args.Int(1), args.Error(2)
}

func (m *MockVoucherRepository) Create(ctx context.Context, v *voucher.Voucher) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVoucherRepository) Update(ctx context.Context, v *voucher.Voucher) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVoucherRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVoucherRepository) FindClaim(ctx context.Context, voucherID, userID string) (*voucher.VoucherClaim, error) {
	args := m.Called(ctx, voucherID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*voucher.VoucherClaim), args.Error(1)
}

func (m *MockVoucherRepository) SaveClaim(ctx context.Context, claim *voucher.VoucherClaim) error {
	args := m.Called(ctx, claim)
	return args.Error(0)
}

func newTestService(repo *MockVoucherRepository) *VoucherApplicationService {
	tracer := otel.Tracer("test")
	logger := otelinfra.NewLogger(tracer)
	metrics, _ := otelinfra.NewMetrics("test")
	return NewVoucherApplicationService(repo, logger, metrics)
}

func publishedVoucher(id string, maxRedemptions int) *voucher.Voucher {
	v := voucher.MustNewVoucher(id, "business1", "category1", nil, nil, maxRedemptions, "percentage", 20, nil)
	if err := v.Publish(time.Now()); err != nil {
		panic(err)
	}
	return v
}

func TestVoucherApplicationService_Create(t *testing.T) {
	t.Run("正常系: クーポンを作成", func(t *testing.T) {
		repo := new(MockVoucherRepository)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*voucher.Voucher")).Return(nil)

		svc := newTestService(repo)
		resp, err := svc.Create(context.Background(), &CreateVoucherRequest{
			BusinessID:     "business1",
			CategoryID:     "category1",
			MaxRedemptions: 100,
			DiscountType:   "percentage",
			DiscountValue:  20,
		})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, "draft", resp.State)
		assert.Equal(t, 0, resp.CurrentRedemptions)
		repo.AssertExpectations(t)
	})

	t.Run("異常系: 事業者ID未指定", func(t *testing.T) {
		repo := new(MockVoucherRepository)

		svc := newTestService(repo)
		_, err := svc.Create(context.Background(), &CreateVoucherRequest{
			DiscountType:  "fixed",
			DiscountValue: 500,
		})

		assert.Error(t, err)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestVoucherApplicationService_Publish(t *testing.T) {
	t.Run("正常系: draftからpublishedへ", func(t *testing.T) {
		repo := new(MockVoucherRepository)
		v := voucher.MustNewVoucher("voucher1", "business1", "", nil, nil, 0, "fixed", 500, nil)
		repo.On("FindByID", mock.Anything, "voucher1").Return(v, nil)
		repo.On("Update", mock.Anything, v).Return(nil)

		svc := newTestService(repo)
		resp, err := svc.Publish(context.Background(), "voucher1")

		require.NoError(t, err)
		assert.Equal(t, "published", resp.State)
	})

	t.Run("異常系: expiredからは公開できない", func(t *testing.T) {
		repo := new(MockVoucherRepository)
		v := voucher.MustNewVoucher("voucher1", "business1", "", nil, nil, 0, "fixed", 500, nil)
		v.SetState(voucher.VoucherStateExpired)
		repo.On("FindByID", mock.Anything, "voucher1").Return(v, nil)

		svc := newTestService(repo)
		_, err := svc.Publish(context.Background(), "voucher1")

		require.Error(t, err)
		var terr *voucher.IllegalTransitionError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, voucher.VoucherStateExpired, terr.From)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("異常系: 有効期限切れのクーポンは公開できない", func(t *testing.T) {
		repo := new(MockVoucherRepository)
		past := time.Now().Add(-time.Hour)
		v := voucher.MustNewVoucher("voucher1", "business1", "", nil, &past, 0, "fixed", 500, nil)
		repo.On("FindByID", mock.Anything, "voucher1").Return(v, nil)

		svc := newTestService(repo)
		_, err := svc.Publish(context.Background(), "voucher1")

		require.Error(t, err)
		var gerr *voucher.GuardViolationError
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, "publish_window", gerr.Guard)
	})
}

func TestVoucherApplicationService_Claim(t *testing.T) {
	t.Run("正常系: 公開中のクーポンを取得", func(t *testing.T) {
		repo := new(MockVoucherRepository)
		v := publishedVoucher("voucher1", 10)
		repo.On("FindByID", mock.Anything, "voucher1").Return(v, nil)
		repo.On("FindClaim", mock.Anything, "voucher1", "user1").Return(nil, voucher.ErrClaimNotFound)
		repo.On("SaveClaim", mock.Anything, mock.AnythingOfType("*voucher.VoucherClaim")).Return(nil)
		repo.On("Update", mock.Anything, v).Return(nil)

		svc := newTestService(repo)
		resp, err := svc.Claim(context.Background(), &ClaimVoucherRequest{
			VoucherID: "voucher1",
			UserID:    "user1",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.ClaimID)
		assert.Equal(t, "claimed", resp.State)
		repo.AssertExpectations(t)
	})

	t.Run("正常系: 取得済みの場合は既存の記録を返す", func(t *testing.T) {
		repo := new(MockVoucherRepository)
		v := publishedVoucher("voucher1", 10)
		claimedAt := time.Now().Add(-time.Hour)
		existing := voucher.NewVoucherClaim("claim1", "voucher1", "user1", claimedAt)
		repo.On("FindByID", mock.Anything, "voucher1").Return(v, nil)
		repo.On("FindClaim", mock.Anything, "voucher1", "user1").Return(existing, nil)

		svc := newTestService(repo)
		resp, err := svc.Claim(context.Background(), &ClaimVoucherRequest{
			VoucherID: "voucher1",
			UserID:    "user1",
		})

		require.NoError(t, err)
		assert.Equal(t, "claim1", resp.ClaimID)
		assert.WithinDuration(t, claimedAt, resp.ClaimedAt, time.Second)
		repo.AssertNotCalled(t, "SaveClaim", mock.Anything, mock.Anything)
	})

	t.Run("異常系: 使用上限到達", func(t *testing.T) {
		repo := new(MockVoucherRepository)
		v := publishedVoucher("voucher1", 1)
		v.SetCurrentRedemptions(1)
		repo.On("FindByID", mock.Anything, "voucher1").Return(v, nil)
		repo.On("FindClaim", mock.Anything, "voucher1", "user1").Return(nil, voucher.ErrClaimNotFound)

		svc := newTestService(repo)
		_, err := svc.Claim(context.Background(), &ClaimVoucherRequest{
			VoucherID: "voucher1",
			UserID:    "user1",
		})

		require.Error(t, err)
		var gerr *voucher.GuardViolationError
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, "redemption_limit", gerr.Guard)
		repo.AssertNotCalled(t, "SaveClaim", mock.Anything, mock.Anything)
	})

	t.Run("異常系: draftのクーポンは取得できない", func(t *testing.T) {
		repo := new(MockVoucherRepository)
		v := voucher.MustNewVoucher("voucher1", "business1", "", nil, nil, 0, "fixed", 500, nil)
		repo.On("FindByID", mock.Anything, "voucher1").Return(v, nil)
		repo.On("FindClaim", mock.Anything, "voucher1", "user1").Return(nil, voucher.ErrClaimNotFound)

		svc := newTestService(repo)
		_, err := svc.Claim(context.Background(), &ClaimVoucherRequest{
			VoucherID: "voucher1",
			UserID:    "user1",
		})

		require.Error(t, err)
		var terr *voucher.IllegalTransitionError
		assert.ErrorAs(t, err, &terr)
	})
}

func TestVoucherApplicationService_Redeem(t *testing.T) {
	t.Run("正常系: 猶予期間内の使用", func(t *testing.T) {
		repo := new(MockVoucherRepository)
		v := publishedVoucher("voucher1", 10)
		require.NoError(t, v.Claim(time.Now()))
		claim := voucher.NewVoucherClaim("claim1", "voucher1", "user1", time.Now().Add(-29*24*time.Hour))
		repo.On("FindByID", mock.Anything, "voucher1").Return(v, nil)
		repo.On("FindClaim", mock.Anything, "voucher1", "user1").Return(claim, nil)
		repo.On("Update", mock.Anything, v).Return(nil)

		svc := newTestService(repo)
		resp, err := svc.Redeem(context.Background(), &RedeemVoucherRequest{
			VoucherID: "voucher1",
			UserID:    "user1",
		})

		require.NoError(t, err)
		assert.Equal(t, "redeemed", resp.State)
		assert.Equal(t, 1, resp.CurrentRedemptions)
	})

	t.Run("異常系: 取得から30日を超過", func(t *testing.T) {
		repo := new(MockVoucherRepository)
		v := publishedVoucher("voucher1", 10)
		require.NoError(t, v.Claim(time.Now()))
		claim := voucher.NewVoucherClaim("claim1", "voucher1", "user1", time.Now().Add(-31*24*time.Hour))
		repo.On("FindByID", mock.Anything, "voucher1").Return(v, nil)
		repo.On("FindClaim", mock.Anything, "voucher1", "user1").Return(claim, nil)

		svc := newTestService(repo)
		_, err := svc.Redeem(context.Background(), &RedeemVoucherRequest{
			VoucherID: "voucher1",
			UserID:    "user1",
		})

		require.Error(t, err)
		var gerr *voucher.GuardViolationError
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, "grace_period", gerr.Guard)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("正常系: 取得記録なしでも公開中なら使用可能", func(t *testing.T) {
		repo := new(MockVoucherRepository)
		v := publishedVoucher("voucher1", 10)
		repo.On("FindByID", mock.Anything, "voucher1").Return(v, nil)
		repo.On("FindClaim", mock.Anything, "voucher1", "user1").Return(nil, voucher.ErrClaimNotFound)
		repo.On("Update", mock.Anything, v).Return(nil)

		svc := newTestService(repo)
		resp, err := svc.Redeem(context.Background(), &RedeemVoucherRequest{
			VoucherID: "voucher1",
			UserID:    "user1",
		})

		require.NoError(t, err)
		assert.Equal(t, "redeemed", resp.State)
	})
}

func TestVoucherApplicationService_Update(t *testing.T) {
	t.Run("正常系: draftのクーポンを更新", func(t *testing.T) {
		repo := new(MockVoucherRepository)
		v := voucher.MustNewVoucher("voucher1", "business1", "category1", nil, nil, 10, "percentage", 20, nil)
		repo.On("FindByID", mock.Anything, "voucher1").Return(v, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(u *voucher.Voucher) bool {
			return u.ID() == "voucher1" && u.DiscountValue() == 30 && u.State() == voucher.VoucherStateDraft
		})).Return(nil)

		svc := newTestService(repo)
		resp, err := svc.Update(context.Background(), &UpdateVoucherRequest{
			VoucherID:      "voucher1",
			CategoryID:     "category2",
			MaxRedemptions: 20,
			DiscountType:   "percentage",
			DiscountValue:  30,
		})

		require.NoError(t, err)
		assert.Equal(t, "category2", resp.CategoryID)
		assert.Equal(t, int64(30), resp.DiscountValue)
	})

	t.Run("異常系: expiredのクーポンは更新不可", func(t *testing.T) {
		repo := new(MockVoucherRepository)
		v := voucher.MustNewVoucher("voucher1", "business1", "", nil, nil, 0, "fixed", 500, nil)
		v.SetState(voucher.VoucherStateExpired)
		repo.On("FindByID", mock.Anything, "voucher1").Return(v, nil)

		svc := newTestService(repo)
		_, err := svc.Update(context.Background(), &UpdateVoucherRequest{
			VoucherID:    "voucher1",
			DiscountType: "fixed",
		})

		assert.ErrorIs(t, err, voucher.ErrVoucherNotEditable)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestVoucherApplicationService_Delete(t *testing.T) {
	t.Run("正常系: draftのクーポンを削除", func(t *testing.T) {
		repo := new(MockVoucherRepository)
		v := voucher.MustNewVoucher("voucher1", "business1", "", nil, nil, 0, "fixed", 500, nil)
		repo.On("FindByID", mock.Anything, "voucher1").Return(v, nil)
		repo.On("Delete", mock.Anything, "voucher1").Return(nil)

		svc := newTestService(repo)
		err := svc.Delete(context.Background(), "voucher1")

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("異常系: 公開中のクーポンは削除不可", func(t *testing.T) {
		repo := new(MockVoucherRepository)
		v := publishedVoucher("voucher1", 0)
		repo.On("FindByID", mock.Anything, "voucher1").Return(v, nil)

		svc := newTestService(repo)
		err := svc.Delete(context.Background(), "voucher1")

		assert.ErrorIs(t, err, voucher.ErrVoucherNotDeletable)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestVoucherApplicationService_CanTransition(t *testing.T) {
	t.Run("正常系: 許可される遷移", func(t *testing.T) {
		repo := new(MockVoucherRepository)
		v := voucher.MustNewVoucher("voucher1", "business1", "", nil, nil, 0, "fixed", 500, nil)
		repo.On("FindByID", mock.Anything, "voucher1").Return(v, nil)

		svc := newTestService(repo)
		resp, err := svc.CanTransition(context.Background(), &CanTransitionRequest{
			VoucherID: "voucher1",
			Target:    "published",
		})

		require.NoError(t, err)
		assert.True(t, resp.Allowed)
		assert.Empty(t, resp.Reason)
		assert.Equal(t, []string{"published"}, resp.AllowedTransitions)
	})

	t.Run("正常系: 拒否される遷移は理由付きで返す", func(t *testing.T) {
		repo := new(MockVoucherRepository)
		v := voucher.MustNewVoucher("voucher1", "business1", "", nil, nil, 0, "fixed", 500, nil)
		v.SetState(voucher.VoucherStateExpired)
		repo.On("FindByID", mock.Anything, "voucher1").Return(v, nil)

		svc := newTestService(repo)
		resp, err := svc.CanTransition(context.Background(), &CanTransitionRequest{
			VoucherID: "voucher1",
			Target:    "published",
		})

		require.NoError(t, err)
		assert.False(t, resp.Allowed)
		assert.NotEmpty(t, resp.Reason)
		assert.Empty(t, resp.AllowedTransitions)
	})

	t.Run("異常系: 不正な状態名", func(t *testing.T) {
		repo := new(MockVoucherRepository)

		svc := newTestService(repo)
		_, err := svc.CanTransition(context.Background(), &CanTransitionRequest{
			VoucherID: "voucher1",
			Target:    "vaporized",
		})

		assert.Error(t, err)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func TestVoucherApplicationService_List(t *testing.T) {
	t.Run("正常系: デフォルトのリミットを適用", func(t *testing.T) {
		repo := new(MockVoucherRepository)
		vouchers := []*voucher.Voucher{
			voucher.MustNewVoucher("voucher1", "business1", "", nil, nil, 0, "fixed", 500, nil),
		}
		repo.On("FindAll", mock.Anything, 20, 0).Return(vouchers, 1, nil)

		svc := newTestService(repo)
		resp, err := svc.List(context.Background(), &ListVouchersRequest{})

		require.NoError(t, err)
		assert.Equal(t, 20, resp.Limit)
		assert.Equal(t, 1, resp.Total)
		require.Len(t, resp.Vouchers, 1)
	})

	t.Run("正常系: リミットの上限を適用", func(t *testing.T) {
		repo := new(MockVoucherRepository)
		repo.On("FindAll", mock.Anything, 100, 0).Return([]*voucher.Voucher{}, 0, nil)

		svc := newTestService(repo)
		resp, err := svc.List(context.Background(), &ListVouchersRequest{Limit: 500})

		require.NoError(t, err)
		assert.Equal(t, 100, resp.Limit)
	})
}
