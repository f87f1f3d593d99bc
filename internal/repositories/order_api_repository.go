package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"storefront/internal/models"

	"github.com/gofiber/fiber/v2"
)

// APIOrderRepository is an OrderRepository backed by the REST API.
type APIOrderRepository struct {
	api *APIClient
}

// NewAPIOrderRepository creates a new APIOrderRepository.
func NewAPIOrderRepository(api *APIClient) *APIOrderRepository {
	return &APIOrderRepository{api: api}
}

// CreateCOD places a pay-on-delivery order.
func (r *APIOrderRepository) CreateCOD(ctx context.Context, sess models.Session, payload models.CheckoutPayload) (models.OrderSummary, error) {
	var raw []byte
	if err := r.api.do(ctx, fiber.MethodPost, "/orders/checkout/cod", sess.Token, nil, payload, &raw); err != nil {
		return models.OrderSummary{}, fmt.Errorf("create cod order: %w", err)
	}
	var summary models.OrderSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return models.OrderSummary{}, fmt.Errorf("create cod order: decode: %w", err)
	}
	return summary, nil
}

// CreatePaymentSession starts a redirect payment and returns the provider URL.
func (r *APIOrderRepository) CreatePaymentSession(ctx context.Context, sess models.Session, payload models.CheckoutPayload) (string, error) {
	var raw []byte
	if err := r.api.do(ctx, fiber.MethodPost, "/orders/checkout/paypal", sess.Token, nil, payload, &raw); err != nil {
		return "", fmt.Errorf("create payment session: %w", err)
	}
	var resp struct {
		RedirectURL string `json:"redirectUrl"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("create payment session: decode: %w", err)
	}
	return resp.RedirectURL, nil
}

// ConfirmPayment forwards the provider's correlation parameters.
func (r *APIOrderRepository) ConfirmPayment(ctx context.Context, sess models.Session, c models.PaymentConfirmation) (models.ConfirmationResult, error) {
	query := url.Values{}
	query.Set("paymentId", c.PaymentID)
	query.Set("PayerID", c.PayerID)
	query.Set("userId", c.UserID)
	query.Set("receiveAddress", c.ReceiveAddress)
	query.Set("receiveName", c.ReceiveName)
	query.Set("receivePhone", c.ReceivePhone)
	query.Set("note", c.Note)

	var result models.ConfirmationResult
	if err := r.api.getJSON(ctx, "/orders/checkout/success", sess.Token, query, &result); err != nil {
		return models.ConfirmationResult{}, fmt.Errorf("confirm payment %s: %w", c.PaymentID, err)
	}
	return result, nil
}

// GetByUser lists every order of the session user.
func (r *APIOrderRepository) GetByUser(ctx context.Context, sess models.Session) ([]models.Order, error) {
	return r.list(ctx, sess, "/orders/user/"+url.PathEscape(sess.UserID))
}

// GetByUserAndStatus lists the session user's orders in status.
func (r *APIOrderRepository) GetByUserAndStatus(ctx context.Context, sess models.Session, status models.OrderStatus) ([]models.Order, error) {
	path := fmt.Sprintf("/orders/user/%s/status/%s", url.PathEscape(sess.UserID), url.PathEscape(string(status)))
	return r.list(ctx, sess, path)
}

// GetBySerial returns the order with the given serial number.
func (r *APIOrderRepository) GetBySerial(ctx context.Context, sess models.Session, serialNumber string) (*models.Order, error) {
	var order models.Order
	if err := r.api.getJSON(ctx, "/orders/serial/"+url.PathEscape(serialNumber), sess.Token, nil, &order); err != nil {
		return nil, fmt.Errorf("order %s: %w", serialNumber, err)
	}
	if order.SerialNumber == "" {
		order.SerialNumber = order.ID
	}
	if order.Items == nil {
		order.Items = []models.OrderItem{}
	}
	return &order, nil
}

// Cancel asks the API to cancel an order.
func (r *APIOrderRepository) Cancel(ctx context.Context, sess models.Session, orderID string) error {
	path := fmt.Sprintf("/orders/%s/cancel", url.PathEscape(orderID))
	if err := r.api.do(ctx, fiber.MethodPut, path, sess.Token, nil, nil, nil); err != nil {
		return fmt.Errorf("cancel order %s: %w", orderID, err)
	}
	return nil
}

func (r *APIOrderRepository) list(ctx context.Context, sess models.Session, path string) ([]models.Order, error) {
	var raw []byte
	if err := r.api.do(ctx, fiber.MethodGet, path, sess.Token, nil, nil, &raw); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	orders, err := decodeList[models.Order](raw, "content", "orders")
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}
