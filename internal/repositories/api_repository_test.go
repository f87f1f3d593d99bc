package repositories_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sess = models.Session{UserID: "7", Username: "alice", Token: "tok-7"}

func newAPI(t *testing.T, mux *http.ServeMux) *repositories.APIClient {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return repositories.NewAPIClient(srv.URL+"/", 2*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestAPICartRepository_GetByUser(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"envelope", `{"userId":"7","items":[{"cartItemId":"1","productId":"p-1","unitPrice":1000,"orderQuantity":2},{"cartItemId":"2","productId":"p-2","unitPrice":"2000","orderQuantity":1}]}`},
		{"bare array", `[{"cartItemId":"1","productId":"p-1","unitPrice":1000,"orderQuantity":2},{"cartItemId":"2","productId":"p-2","unitPrice":2000,"orderQuantity":1}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /cart/{userId}", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "7", r.PathValue("userId"))
				assert.Equal(t, "Bearer tok-7", r.Header.Get("Authorization"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			})
			repo := repositories.NewAPICartRepository(newAPI(t, mux))

			cart, err := repo.GetByUser(context.Background(), sess)
			require.NoError(t, err)
			assert.Len(t, cart.Items, 2)
			assert.Equal(t, 3, cart.TotalItems)
			assert.True(t, decimal.NewFromInt(4000).Equal(cart.TotalPrice))
		})
	}
}

func TestAPICartRepository_Mutations(t *testing.T) {
	var seen []string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /cart/add", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "7", body["userId"])
		assert.Equal(t, "p-1", body["productId"])
		assert.Equal(t, float64(3), body["quantity"])
		seen = append(seen, "add")
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("PUT /cart/update/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ci-1", r.PathValue("id"))
		seen = append(seen, "update")
	})
	mux.HandleFunc("DELETE /cart/{userId}/item/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.PathValue("userId"))
		assert.Equal(t, "ci-1", r.PathValue("id"))
		seen = append(seen, "remove")
	})
	mux.HandleFunc("DELETE /cart/clear/{userId}", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, "clear")
	})
	repo := repositories.NewAPICartRepository(newAPI(t, mux))
	ctx := context.Background()

	require.NoError(t, repo.AddItem(ctx, sess, "p-1", 3))
	require.NoError(t, repo.UpdateQuantity(ctx, sess, "ci-1", 4))
	require.NoError(t, repo.RemoveItem(ctx, sess, "ci-1"))
	require.NoError(t, repo.Clear(ctx, sess))
	assert.Equal(t, []string{"add", "update", "remove", "clear"}, seen)
}

func TestAPIClient_Errors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /cart/add", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Sản phẩm đã hết hàng"})
	})
	mux.HandleFunc("PUT /cart/update/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("DELETE /cart/clear/{userId}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database unavailable", http.StatusInternalServerError)
	})
	repo := repositories.NewAPICartRepository(newAPI(t, mux))
	ctx := context.Background()

	err := repo.AddItem(ctx, sess, "p-1", 1)
	var apiErr *repositories.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Sản phẩm đã hết hàng", apiErr.Message)

	err = repo.UpdateQuantity(ctx, sess, "ci-404", 1)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	err = repo.Clear(ctx, sess)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "database unavailable", apiErr.Message)
}

func TestAPIClient_TransportAndContextErrors(t *testing.T) {
	srv := httptest.NewServer(http.NewServeMux())
	api := repositories.NewAPIClient(srv.URL, time.Second)
	srv.Close()
	repo := repositories.NewAPICartRepository(api)

	_, err := repo.GetByUser(context.Background(), sess)
	var transportErr *repositories.TransportError
	assert.True(t, errors.As(err, &transportErr))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = repo.GetByUser(ctx, sess)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAPIOrderRepository_Checkout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders/checkout/cod", func(w http.ResponseWriter, r *http.Request) {
		var payload models.CheckoutPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "7", payload.UserID)
		assert.Len(t, payload.Items, 1)
		writeJSON(w, http.StatusOK, map[string]interface{}{"orderId": "ORD-1"})
	})
	mux.HandleFunc("POST /orders/checkout/paypal", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"redirectUrl": "https://provider.example/approve"})
	})
	mux.HandleFunc("GET /orders/checkout/success", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "PAY-1", q.Get("paymentId"))
		assert.Equal(t, "PAYER-1", q.Get("PayerID"))
		assert.Equal(t, "7", q.Get("userId"))
		assert.Equal(t, "0912345678", q.Get("receivePhone"))
		assert.Equal(t, models.DefaultNote, q.Get("note"))
		writeJSON(w, http.StatusOK, map[string]string{"message": "Thanh toán thành công! Mã đơn hàng: ORD-2"})
	})
	repo := repositories.NewAPIOrderRepository(newAPI(t, mux))
	ctx := context.Background()
	payload := models.CheckoutPayload{
		UserID: "7",
		Items:  []models.CartItem{{ID: "ci-1", ProductID: "p-1", UnitPrice: decimal.NewFromInt(5), Quantity: 1}},
	}

	summary, err := repo.CreateCOD(ctx, sess, payload)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", summary.OrderID)
	assert.True(t, summary.TotalPrice.IsZero())

	redirectURL, err := repo.CreatePaymentSession(ctx, sess, payload)
	require.NoError(t, err)
	assert.Equal(t, "https://provider.example/approve", redirectURL)

	result, err := repo.ConfirmPayment(ctx, sess, models.PaymentConfirmation{
		PaymentID:    "PAY-1",
		PayerID:      "PAYER-1",
		UserID:       "7",
		ReceivePhone: "0912345678",
		Note:         models.DefaultNote,
	})
	require.NoError(t, err)
	assert.Contains(t, result.Message, "ORD-2")
}

func TestAPIOrderRepository_History(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /orders/user/{userId}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"orderId":"o-1","serialNumber":"SN-1","status":"WAITING","totalPrice":10}],"totalElements":1}`))
	})
	mux.HandleFunc("GET /orders/user/{userId}/status/{status}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SUCCESS", r.PathValue("status"))
		_, _ = w.Write([]byte(`[{"orderId":"o-2","status":"SUCCESS"}]`))
	})
	mux.HandleFunc("GET /orders/serial/{serial}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"orderId":"o-3","status":"DELIVERY"}`))
	})
	mux.HandleFunc("PUT /orders/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "order already confirmed"})
	})
	repo := repositories.NewAPIOrderRepository(newAPI(t, mux))
	ctx := context.Background()

	orders, err := repo.GetByUser(ctx, sess)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderWaiting, orders[0].Status)
	assert.Equal(t, "SN-1", orders[0].SerialNumber)

	orders, err = repo.GetByUserAndStatus(ctx, sess, models.OrderSuccess)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "o-2", orders[0].ID)

	order, err := repo.GetBySerial(ctx, sess, "o-3")
	require.NoError(t, err)
	assert.Equal(t, "o-3", order.SerialNumber)
	assert.NotNil(t, order.Items)

	err = repo.Cancel(ctx, sess, "o-1")
	var apiErr *repositories.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "order already confirmed", apiErr.Message)
}

func TestAPIProductRepository_GetByID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "p-1" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"productId":"p-1","productName":"Lamp","productImage":"/lamp.jpg","price":99.5}`))
	})
	repo := repositories.NewAPIProductRepository(newAPI(t, mux))

	product, err := repo.GetByID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Lamp", product.Name)
	assert.True(t, decimal.RequireFromString("99.5").Equal(product.Price))

	_, err = repo.GetByID(context.Background(), "p-2")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
