package models_test

import (
	"testing"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewCart_Totals(t *testing.T) {
	cart := models.NewCart("u-1", []models.CartItem{
		{ID: "c1", ProductID: "p1", UnitPrice: decimal.NewFromInt(1000), Quantity: 2},
		{ID: "c2", ProductID: "p2", UnitPrice: decimal.NewFromInt(2000), Quantity: 1},
	})

	assert.Equal(t, 3, cart.TotalItems)
	assert.True(t, decimal.NewFromInt(4000).Equal(cart.TotalPrice))
	assert.False(t, cart.IsEmpty())
}

func TestNewCart_DropsNonPositiveQuantities(t *testing.T) {
	cart := models.NewCart("u-1", []models.CartItem{
		{ID: "c1", UnitPrice: decimal.NewFromInt(10), Quantity: 0},
		{ID: "c2", UnitPrice: decimal.NewFromInt(10), Quantity: -3},
		{ID: "c3", UnitPrice: decimal.NewFromInt(10), Quantity: 1},
	})

	assert.Len(t, cart.Items, 1)
	assert.Equal(t, "c3", cart.Items[0].ID)
	assert.Equal(t, 1, cart.TotalItems)
}

func TestCart_CloneIsIndependent(t *testing.T) {
	cart := models.NewCart("u-1", []models.CartItem{{ID: "c1", Quantity: 1}})
	clone := cart.Clone()
	clone.Items[0].Quantity = 9

	assert.Equal(t, 1, cart.Items[0].Quantity)
}
