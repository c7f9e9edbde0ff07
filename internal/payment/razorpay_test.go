package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func signPayload(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	const secret = "test_secret_key"

	orderID := "order_MkAb12Cd34Ef56"
	paymentID := "pay_NkAb12Cd34Ef56"
	good := signPayload(orderID, paymentID, secret)

	if !VerifySignature(orderID, paymentID, good, secret) {
		t.Fatal("valid signature rejected")
	}

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		secret    string
	}{
		{"tampered signature", orderID, paymentID, good[:len(good)-2] + "00", secret},
		{"different order", "order_other", paymentID, good, secret},
		{"different payment", orderID, "pay_other", good, secret},
		{"wrong secret", orderID, paymentID, good, "another_secret"},
		{"empty signature", orderID, paymentID, "", secret},
		{"swapped ids", paymentID, orderID, good, secret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifySignature(tt.orderID, tt.paymentID, tt.signature, tt.secret) {
				t.Error("signature accepted, want rejected")
			}
		})
	}
}

func TestProviderVerifySignature(t *testing.T) {
	p := New("rzp_test_key", "test_secret_key")

	orderID := "order_MkAb12Cd34Ef56"
	paymentID := "pay_NkAb12Cd34Ef56"
	good := signPayload(orderID, paymentID, "test_secret_key")

	if !p.VerifySignature(orderID, paymentID, good) {
		t.Error("valid signature rejected")
	}
	if p.VerifySignature(orderID, paymentID, signPayload(orderID, paymentID, "other_secret")) {
		t.Error("signature from another secret accepted")
	}
}
