package services_test

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/services"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderService_History(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	service := services.NewOrderService(mockRepo, nil, zerolog.Nop())

	all := []models.Order{
		{ID: "o-1", SerialNumber: "SN-1", Status: models.OrderWaiting},
		{ID: "o-2", SerialNumber: "SN-2", Status: models.OrderSuccess},
	}
	mockRepo.On("GetByUser", mock.Anything, shopper).Return(all, nil).Twice()
	mockRepo.On("GetByUserAndStatus", mock.Anything, shopper, models.OrderSuccess).Return(all[1:], nil).Once()

	orders, err := service.History(context.Background(), shopper, "")
	assert.NoError(t, err)
	assert.Len(t, orders, 2)

	orders, err = service.History(context.Background(), shopper, "all")
	assert.NoError(t, err)
	assert.Len(t, orders, 2)

	orders, err = service.History(context.Background(), shopper, "success")
	assert.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "o-2", orders[0].ID)

	_, err = service.History(context.Background(), shopper, "LOST")
	assert.ErrorIs(t, err, services.ErrValidation)
	mockRepo.AssertExpectations(t)
}

func TestOrderService_HistoryServerError(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	rec := notify.NewRecorder()
	service := services.NewOrderService(mockRepo, rec, zerolog.Nop())

	mockRepo.On("GetByUser", mock.Anything, shopper).Return(nil, errors.New("connection refused")).Once()

	_, err := service.History(context.Background(), shopper, "")
	assert.ErrorIs(t, err, services.ErrNetworkOrServer)
	assert.Len(t, rec.Drain(shopper.UserID), 1)
}

func TestOrderService_Details(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	service := services.NewOrderService(mockRepo, nil, zerolog.Nop())

	expected := &models.Order{ID: "o-1", SerialNumber: "SN-1", Status: models.OrderDelivery}
	mockRepo.On("GetBySerial", mock.Anything, shopper, "SN-1").Return(expected, nil).Once()

	order, err := service.Details(context.Background(), shopper, " SN-1 ")
	assert.NoError(t, err)
	assert.Equal(t, expected, order)

	_, err = service.Details(context.Background(), shopper, "")
	assert.ErrorIs(t, err, services.ErrValidation)
	mockRepo.AssertExpectations(t)
}

func TestOrderService_Cancel(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	rec := notify.NewRecorder()
	service := services.NewOrderService(mockRepo, rec, zerolog.Nop())

	mockRepo.On("GetByUser", mock.Anything, shopper).Return([]models.Order{
		{ID: "o-1", Status: models.OrderWaiting},
		{ID: "o-2", Status: models.OrderConfirm},
	}, nil)
	mockRepo.On("Cancel", mock.Anything, shopper, "o-1").Return(nil).Once()

	order, err := service.Cancel(context.Background(), shopper, "o-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancel, order.Status)
	notices := rec.Drain(shopper.UserID)
	require.Len(t, notices, 1)
	assert.Equal(t, notify.LevelSuccess, notices[0].Level)

	_, err = service.Cancel(context.Background(), shopper, "o-2")
	assert.ErrorIs(t, err, services.ErrValidation)
	assert.ErrorIs(t, err, services.ErrOrderNotCancellable)

	_, err = service.Cancel(context.Background(), shopper, "o-404")
	assert.ErrorIs(t, err, services.ErrValidation)
	assert.False(t, errors.Is(err, services.ErrOrderNotCancellable))

	mockRepo.AssertNumberOfCalls(t, "Cancel", 1)
}

func TestOrderService_RequiresAuthentication(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	service := services.NewOrderService(mockRepo, nil, zerolog.Nop())

	_, err := service.History(context.Background(), models.Session{}, "")
	assert.ErrorIs(t, err, services.ErrAuthenticationRequired)
	_, err = service.Cancel(context.Background(), models.Session{}, "o-1")
	assert.ErrorIs(t, err, services.ErrAuthenticationRequired)
	mockRepo.AssertNotCalled(t, "GetByUser", mock.Anything, mock.Anything)
}
