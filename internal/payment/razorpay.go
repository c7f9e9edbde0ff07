package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

type Order struct {
	ID       string
	Amount   float64
	Currency string
}

// Provider wraps the Razorpay client. Order amounts are rupees on our side
// and paise on the wire.
type Provider struct {
	client    *razorpay.Client
	keyID     string
	keySecret string
}

func New(keyID, keySecret string) *Provider {
	return &Provider{
		client:    razorpay.NewClient(keyID, keySecret),
		keyID:     keyID,
		keySecret: keySecret,
	}
}

func (p *Provider) KeyID() string {
	return p.keyID
}

func (p *Provider) CreateOrder(amount float64, currency, receipt string) (*Order, error) {
	const op = "payment.Provider.CreateOrder"

	data := map[string]interface{}{
		"amount":   int64(amount * 100),
		"currency": currency,
		"receipt":  receipt,
	}

	body, err := p.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, ok := body["id"].(string)
	if !ok {
		return nil, fmt.Errorf("%s: order id missing in response", op)
	}

	order := &Order{
		ID:       id,
		Amount:   amount,
		Currency: currency,
	}
	if c, ok := body["currency"].(string); ok {
		order.Currency = c
	}
	if a, ok := body["amount"].(float64); ok {
		order.Amount = a / 100
	}

	return order, nil
}

// VerifySignature checks the HMAC-SHA256 of "orderID|paymentID" against the
// key secret, the scheme Razorpay signs checkout callbacks with.
func (p *Provider) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(orderID, paymentID, signature, p.keySecret)
}

func VerifySignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
