package service

import (
	"context"
	"database/sql"

	"github.com/phrazzld/customer-data/internal/domain"
	"github.com/phrazzld/customer-data/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockCustomerStore mocks the store.CustomerStore interface
type MockCustomerStore struct {
	mock.Mock
	db *sql.DB
}

var _ store.CustomerStore = (*MockCustomerStore)(nil)

func (m *MockCustomerStore) FindByExternalID(ctx context.Context, externalID string) (*domain.Customer, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerStore) FindByMasterExternalID(
	ctx context.Context,
	masterExternalID string,
) (*domain.Customer, error) {
	args := m.Called(ctx, masterExternalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerStore) FindDuplicateByMasterExternalID(
	ctx context.Context,
	masterExternalID string,
	excludeInternalID int64,
) (*domain.Customer, error) {
	args := m.Called(ctx, masterExternalID, excludeInternalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerStore) FindByCompanyNumber(ctx context.Context, companyNumber string) (*domain.Customer, error) {
	args := m.Called(ctx, companyNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerStore) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	args := m.Called(ctx, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerStore) Update(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerStore) UpdateShoppingList(ctx context.Context, list domain.ShoppingList) error {
	args := m.Called(ctx, list)
	return args.Error(0)
}

func (m *MockCustomerStore) NextID(ctx context.Context, table string) (int64, error) {
	args := m.Called(ctx, table)
	return args.Get(0).(int64), args.Error(1)
}

// WithTx returns the same mock so expectations span the transaction.
func (m *MockCustomerStore) WithTx(tx *sql.Tx) store.CustomerStore {
	return m
}

// DB returns the sqlmock pool the test installed, or nil to run without a
// transaction.
func (m *MockCustomerStore) DB() *sql.DB {
	return m.db
}
