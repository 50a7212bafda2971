package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signPayment(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func signWebhook(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	const secret = "test-key-secret"
	sig := signPayment("order_abc", "pay_xyz", secret)

	assert.True(t, VerifyPaymentSignature("order_abc", "pay_xyz", sig, secret))
	assert.True(t, VerifyPaymentSignature(" order_abc ", "pay_xyz", sig, secret))
}

func TestVerifyPaymentSignature_Rejections(t *testing.T) {
	const secret = "test-key-secret"
	sig := signPayment("order_abc", "pay_xyz", secret)
	require.NotEmpty(t, sig)

	// Flip a single hex character.
	mutated := []byte(sig)
	if mutated[0] == 'a' {
		mutated[0] = 'b'
	} else {
		mutated[0] = 'a'
	}

	assert.False(t, VerifyPaymentSignature("order_abc", "pay_xyz", string(mutated), secret))
	assert.False(t, VerifyPaymentSignature("order_abc", "pay_other", sig, secret))
	assert.False(t, VerifyPaymentSignature("order_abc", "pay_xyz", sig, "wrong-secret"))
	assert.False(t, VerifyPaymentSignature("", "pay_xyz", sig, secret))
	assert.False(t, VerifyPaymentSignature("order_abc", "", sig, secret))
	assert.False(t, VerifyPaymentSignature("order_abc", "pay_xyz", "", secret))
	assert.False(t, VerifyPaymentSignature("order_abc", "pay_xyz", sig, ""))
}

func TestVerifyWebhookSignature(t *testing.T) {
	const secret = "webhook-secret"
	payload := []byte(`{"event":"payment.captured"}`)
	sig := signWebhook(payload, secret)

	assert.True(t, VerifyWebhookSignature(payload, sig, secret))
	assert.True(t, VerifyWebhookSignature(payload, " "+sig+" ", secret))
}

func TestVerifyWebhookSignature_Rejections(t *testing.T) {
	const secret = "webhook-secret"
	payload := []byte(`{"event":"payment.captured"}`)
	sig := signWebhook(payload, secret)

	assert.False(t, VerifyWebhookSignature([]byte(`{"event":"tampered"}`), sig, secret))
	assert.False(t, VerifyWebhookSignature(payload, sig, "other-secret"))
	assert.False(t, VerifyWebhookSignature(payload, "not-hex!", secret))
	assert.False(t, VerifyWebhookSignature(payload, "", secret))
	assert.False(t, VerifyWebhookSignature(payload, sig, ""))
}
