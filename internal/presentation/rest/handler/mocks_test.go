package handler

import (
	"context"
	"database/sql"

	"voucher-book-server/internal/domain/book"
	"voucher-book-server/internal/domain/placement"
	"voucher-book-server/internal/domain/voucher"

	"github.com/stretchr/testify/mock"
)

// MockPlacementRepository モック配置リポジトリ
type MockPlacementRepository struct {
	mock.Mock
}

func (m *MockPlacementRepository) FindByID(ctx context.Context, id string) (*placement.AdPlacement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*placement.AdPlacement), args.Error(1)
}

func (m *MockPlacementRepository) FindByPageID(ctx context.Context, pageID string) ([]*placement.AdPlacement, error) {
	args := m.Called(ctx, pageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*placement.AdPlacement), args.Error(1)
}

func (m *MockPlacementRepository) FindByPageIDForUpdate(ctx context.Context, tx *sql.Tx, pageID string) ([]*placement.AdPlacement, error) {
	args := m.Called(ctx, tx, pageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*placement.AdPlacement), args.Error(1)
}

func (m *MockPlacementRepository) Create(ctx context.Context, tx *sql.Tx, p *placement.AdPlacement) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockPlacementRepository) Update(ctx context.Context, tx *sql.Tx, p *placement.AdPlacement) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockPlacementRepository) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

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

// MockTransactionManager モックトランザクションマネージャー
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	args := m.Called(ctx, fn)
	if fn != nil {
		return fn(nil)
	}
	return args.Error(0)
}

func (m *MockTransactionManager) WithSerializableTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	args := m.Called(ctx, fn)
	if fn != nil {
		return fn(nil)
	}
	return args.Error(0)
}
