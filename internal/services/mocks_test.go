package services_test

import (
	"context"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockCartRepository is a mock implementation of repositories.CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetByUser(ctx context.Context, sess models.Session) (models.Cart, error) {
	args := m.Called(ctx, sess)
	return args.Get(0).(models.Cart), args.Error(1)
}

func (m *MockCartRepository) AddItem(ctx context.Context, sess models.Session, productID string, quantity int) error {
	args := m.Called(ctx, sess, productID, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) UpdateQuantity(ctx context.Context, sess models.Session, cartItemID string, quantity int) error {
	args := m.Called(ctx, sess, cartItemID, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) RemoveItem(ctx context.Context, sess models.Session, cartItemID string) error {
	args := m.Called(ctx, sess, cartItemID)
	return args.Error(0)
}

func (m *MockCartRepository) Clear(ctx context.Context, sess models.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateCOD(ctx context.Context, sess models.Session, payload models.CheckoutPayload) (models.OrderSummary, error) {
	args := m.Called(ctx, sess, payload)
	return args.Get(0).(models.OrderSummary), args.Error(1)
}

func (m *MockOrderRepository) CreatePaymentSession(ctx context.Context, sess models.Session, payload models.CheckoutPayload) (string, error) {
	args := m.Called(ctx, sess, payload)
	return args.String(0), args.Error(1)
}

func (m *MockOrderRepository) ConfirmPayment(ctx context.Context, sess models.Session, confirmation models.PaymentConfirmation) (models.ConfirmationResult, error) {
	args := m.Called(ctx, sess, confirmation)
	return args.Get(0).(models.ConfirmationResult), args.Error(1)
}

func (m *MockOrderRepository) GetByUser(ctx context.Context, sess models.Session) ([]models.Order, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByUserAndStatus(ctx context.Context, sess models.Session, status models.OrderStatus) ([]models.Order, error) {
	args := m.Called(ctx, sess, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetBySerial(ctx context.Context, sess models.Session, serialNumber string) (*models.Order, error) {
	args := m.Called(ctx, sess, serialNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) Cancel(ctx context.Context, sess models.Session, orderID string) error {
	args := m.Called(ctx, sess, orderID)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

var shopper = models.Session{UserID: "u1", Username: "alice", Token: "token-u1"}

// twoLineCart is 1000 x 2 + 2000 x 1.
func twoLineCart() models.Cart {
	return models.NewCart(shopper.UserID, []models.CartItem{
		{ID: "ci-1", ProductID: "p-1", ProductName: "Lamp", UnitPrice: decimal.NewFromInt(1000), Quantity: 2},
		{ID: "ci-2", ProductID: "p-2", ProductName: "Rug", UnitPrice: decimal.NewFromInt(2000), Quantity: 1},
	})
}
