package repositories_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockBackend(t *testing.T) (*repositories.MockCartRepository, *repositories.MockOrderRepository) {
	t.Helper()
	products := repositories.NewMockProductRepository()
	require.NoError(t, products.Create(&models.Product{ID: "p-1", Name: "Lamp", Price: decimal.NewFromInt(10)}))
	require.NoError(t, products.Create(&models.Product{ID: "p-2", Name: "Desk", Price: decimal.NewFromInt(100)}))
	carts := repositories.NewMockCartRepository(products)
	return carts, repositories.NewMockOrderRepository(carts, "/approve")
}

func TestMockCartRepository_MergesLines(t *testing.T) {
	carts, _ := newMockBackend(t)
	ctx := context.Background()

	require.NoError(t, carts.AddItem(ctx, sess, "p-1", 1))
	require.NoError(t, carts.AddItem(ctx, sess, "p-1", 2))
	require.NoError(t, carts.AddItem(ctx, sess, "p-2", 1))

	cart, err := carts.GetByUser(ctx, sess)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 4, cart.TotalItems)
	assert.True(t, decimal.NewFromInt(130).Equal(cart.TotalPrice))

	require.NoError(t, carts.UpdateQuantity(ctx, sess, cart.Items[0].ID, 5))
	require.NoError(t, carts.RemoveItem(ctx, sess, cart.Items[1].ID))
	cart, err = carts.GetByUser(ctx, sess)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.TotalItems)

	assert.ErrorIs(t, carts.RemoveItem(ctx, sess, "missing"), repositories.ErrNotFound)
}

func TestMockCartRepository_RejectsUnknownProduct(t *testing.T) {
	carts, _ := newMockBackend(t)

	err := carts.AddItem(context.Background(), sess, "p-404", 1)
	var apiErr *repositories.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.Status)
}

func TestMockOrderRepository_CODClearsCart(t *testing.T) {
	carts, orders := newMockBackend(t)
	ctx := context.Background()
	require.NoError(t, carts.AddItem(ctx, sess, "p-2", 2))
	cart, err := carts.GetByUser(ctx, sess)
	require.NoError(t, err)

	summary, err := orders.CreateCOD(ctx, sess, models.CheckoutPayload{UserID: sess.UserID, Items: cart.Items})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(summary.TotalPrice))

	cart, err = carts.GetByUser(ctx, sess)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	list, err := orders.GetByUser(ctx, sess)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.OrderWaiting, list[0].Status)

	found, err := orders.GetBySerial(ctx, sess, list[0].SerialNumber)
	require.NoError(t, err)
	assert.Equal(t, summary.OrderID, found.ID)
}

func TestMockOrderRepository_CancelOnlyWaiting(t *testing.T) {
	carts, orders := newMockBackend(t)
	ctx := context.Background()
	require.NoError(t, carts.AddItem(ctx, sess, "p-1", 1))
	cart, _ := carts.GetByUser(ctx, sess)

	first, err := orders.CreateCOD(ctx, sess, models.CheckoutPayload{UserID: sess.UserID, Items: cart.Items})
	require.NoError(t, err)
	require.NoError(t, orders.Cancel(ctx, sess, first.OrderID))

	err = orders.Cancel(ctx, sess, first.OrderID)
	var apiErr *repositories.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 409, apiErr.Status)

	cancelled, err := orders.GetByUserAndStatus(ctx, sess, models.OrderCancel)
	require.NoError(t, err)
	assert.Len(t, cancelled, 1)
}

func TestMockOrderRepository_RedirectPayment(t *testing.T) {
	carts, orders := newMockBackend(t)
	ctx := context.Background()
	require.NoError(t, carts.AddItem(ctx, sess, "p-1", 3))
	cart, _ := carts.GetByUser(ctx, sess)

	redirectURL, err := orders.CreatePaymentSession(ctx, sess, models.CheckoutPayload{
		UserID:       sess.UserID,
		ReceivePhone: "0912345678",
		Note:         models.DefaultNote,
		Items:        cart.Items,
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(redirectURL, "/approve?paymentId="))
	paymentID := strings.TrimPrefix(redirectURL, "/approve?paymentId=")

	confirmation, err := orders.Approve(paymentID, "PAYER-1")
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, confirmation.UserID)
	assert.Equal(t, "0912345678", confirmation.ReceivePhone)

	result, err := orders.ConfirmPayment(ctx, sess, confirmation)
	require.NoError(t, err)
	assert.Contains(t, result.Message, "Mã đơn hàng: ")

	_, err = orders.ConfirmPayment(ctx, sess, confirmation)
	var apiErr *repositories.APIError
	assert.True(t, errors.As(err, &apiErr))

	_, err = orders.Approve(paymentID, "PAYER-1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestMockCredentialRepository(t *testing.T) {
	creds := repositories.NewMockCredentialRepository()
	ctx := context.Background()

	require.NoError(t, creds.Create(ctx, &models.Credential{UserID: "7", Username: "Alice", PasswordHash: "x"}))
	assert.Error(t, creds.Create(ctx, &models.Credential{UserID: "8", Username: "alice"}))

	cred, err := creds.GetByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "7", cred.UserID)

	_, err = creds.GetByUsername(ctx, "bob")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestMockOrderRepository_OrdersAreScopedToOwner(t *testing.T) {
	carts, orders := newMockBackend(t)
	ctx := context.Background()
	require.NoError(t, carts.AddItem(ctx, sess, "p-1", 1))
	cart, _ := carts.GetByUser(ctx, sess)

	summary, err := orders.CreateCOD(ctx, sess, models.CheckoutPayload{UserID: sess.UserID, Items: cart.Items})
	require.NoError(t, err)
	list, err := orders.GetByUser(ctx, sess)
	require.NoError(t, err)
	require.Len(t, list, 1)

	other := models.Session{UserID: "8", Username: "bob", Token: "tok-8"}

	_, err = orders.GetBySerial(ctx, other, list[0].SerialNumber)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, orders.Cancel(ctx, other, summary.OrderID), repositories.ErrNotFound)

	found, err := orders.GetBySerial(ctx, sess, list[0].SerialNumber)
	require.NoError(t, err)
	assert.Equal(t, models.OrderWaiting, found.Status)
}
