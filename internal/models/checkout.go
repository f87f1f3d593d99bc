package models

// PaymentMethod selects the checkout path.
type PaymentMethod string

const (
	// PaymentCOD is pay-on-delivery, resolved in one request.
	PaymentCOD PaymentMethod = "COD"
	// PaymentRedirect sends the shopper to an external provider (PayPal).
	PaymentRedirect PaymentMethod = "PAYPAL"
)

// DefaultNote is used when the shopper leaves the note empty.
const DefaultNote = "Không có ghi chú"

// CheckoutRequest carries the shipping form of one checkout attempt.
type CheckoutRequest struct {
	ReceiveName    string        `json:"receiveName" validate:"required,max=100"`
	ReceiveAddress string        `json:"receiveAddress" validate:"required,max=255"`
	ReceivePhone   string        `json:"receivePhone" validate:"required,phone"`
	Note           string        `json:"note" validate:"max=500"`
	PaymentMethod  PaymentMethod `json:"paymentMethod" validate:"required,oneof=COD PAYPAL"`
}

// CheckoutPayload is sent to the order API for both checkout paths.
type CheckoutPayload struct {
	UserID         string     `json:"userId"`
	ReceiveName    string     `json:"receiveName"`
	ReceiveAddress string     `json:"receiveAddress"`
	ReceivePhone   string     `json:"receivePhone"`
	Note           string     `json:"note"`
	Items          []CartItem `json:"items"`
}

// PendingPayment is the result of starting a redirect payment.
type PendingPayment struct {
	RedirectURL string `json:"redirectUrl"`
	UserID      string `json:"userId"`
	TicketID    string `json:"ticketId,omitempty"`
}

// PaymentConfirmation holds the correlation parameters echoed back by the
// provider redirect together with the shipping fields.
type PaymentConfirmation struct {
	PaymentID      string `json:"paymentId"`
	PayerID        string `json:"PayerID"`
	UserID         string `json:"userId"`
	ReceiveAddress string `json:"receiveAddress"`
	ReceiveName    string `json:"receiveName"`
	ReceivePhone   string `json:"receivePhone"`
	Note           string `json:"note"`
}

// ConfirmationResult is the order API's answer to a payment confirmation.
type ConfirmationResult struct {
	Message string `json:"message"`
	OrderID string `json:"orderId,omitempty"`
}
