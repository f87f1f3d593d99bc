package models_test

import (
	"testing"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestParseOrderStatus(t *testing.T) {
	status, err := models.ParseOrderStatus(" delivery ")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderDelivery, status)

	_, err = models.ParseOrderStatus("SHIPPED")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid order status")
}

func TestOrderStatus_Lifecycle(t *testing.T) {
	assert.True(t, models.OrderWaiting.CanTransitionTo(models.OrderConfirm))
	assert.True(t, models.OrderWaiting.CanTransitionTo(models.OrderCancel))
	assert.True(t, models.OrderConfirm.CanTransitionTo(models.OrderDelivery))
	assert.True(t, models.OrderDelivery.CanTransitionTo(models.OrderSuccess))

	assert.False(t, models.OrderConfirm.CanTransitionTo(models.OrderCancel))
	assert.False(t, models.OrderWaiting.CanTransitionTo(models.OrderSuccess))
	assert.False(t, models.OrderSuccess.CanTransitionTo(models.OrderCancel))
	assert.False(t, models.OrderCancel.CanTransitionTo(models.OrderWaiting))

	assert.True(t, models.OrderSuccess.IsTerminal())
	assert.True(t, models.OrderCancel.IsTerminal())
	assert.False(t, models.OrderWaiting.IsTerminal())
	assert.False(t, models.OrderStatus("UNKNOWN").IsTerminal())
}

func TestOrderStatus_CanCancel(t *testing.T) {
	for _, status := range []models.OrderStatus{models.OrderConfirm, models.OrderDelivery, models.OrderSuccess, models.OrderCancel} {
		assert.False(t, status.CanCancel(), string(status))
	}
	assert.True(t, models.OrderWaiting.CanCancel())
}
