package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is a state of the order lifecycle.
type OrderStatus string

const (
	OrderWaiting  OrderStatus = "WAITING"
	OrderConfirm  OrderStatus = "CONFIRM"
	OrderDelivery OrderStatus = "DELIVERY"
	OrderSuccess  OrderStatus = "SUCCESS"
	OrderCancel   OrderStatus = "CANCEL"
)

// orderTransitions lists the states each state may move to.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderWaiting:  {OrderConfirm, OrderCancel},
	OrderConfirm:  {OrderDelivery},
	OrderDelivery: {OrderSuccess},
	OrderSuccess:  nil,
	OrderCancel:   nil,
}

// ParseOrderStatus converts a raw status (case-insensitive) into an OrderStatus.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", fmt.Errorf("invalid order status: %s", raw)
	}
	return status, nil
}

// Valid reports whether s is a known lifecycle state.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

// CanCancel reports whether a shopper may still cancel the order.
func (s OrderStatus) CanCancel() bool {
	return s == OrderWaiting
}

// CanTransitionTo reports whether next directly follows s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, candidate := range orderTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// OrderItem is a purchased line, frozen at order creation.
type OrderItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"orderQuantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Order represents an order created by the order-management API.
type Order struct {
	ID             string          `json:"orderId"`
	SerialNumber   string          `json:"serialNumber"`
	Status         OrderStatus     `json:"status"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	Items          []OrderItem     `json:"items"`
	ReceiveName    string          `json:"receiveName"`
	ReceiveAddress string          `json:"receiveAddress"`
	ReceivePhone   string          `json:"receivePhone"`
	Note           string          `json:"note"`
	CreatedAt      time.Time       `json:"createdAt"`
	ReceivedAt     *time.Time      `json:"receivedAt,omitempty"`
}

// OrderSummary is what a checkout path surfaces once an order exists.
type OrderSummary struct {
	OrderID    string          `json:"orderId"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}
