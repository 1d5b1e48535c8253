package payments

import "testing"

func TestSignAndVerify(t *testing.T) {
	secret := "test_secret_key"
	orderID := "order_N9y1KgXaB2c3d4"
	paymentID := "pay_M8x0JfWzA1b2c3"

	sig := Sign(secret, orderID, paymentID)
	if len(sig) != 64 {
		t.Fatalf("signature length = %d, want 64 hex chars", len(sig))
	}
	if !VerifySignature(secret, orderID, paymentID, sig) {
		t.Fatal("signature did not verify against its own inputs")
	}
}

func TestVerifySignatureRejectsMutations(t *testing.T) {
	secret := "test_secret_key"
	orderID := "order_N9y1KgXaB2c3d4"
	paymentID := "pay_M8x0JfWzA1b2c3"
	sig := Sign(secret, orderID, paymentID)

	tests := []struct {
		name                              string
		secret, orderID, paymentID, given string
	}{
		{"wrong secret", "other_secret", orderID, paymentID, sig},
		{"wrong order id", secret, "order_tampered00000", paymentID, sig},
		{"wrong payment id", secret, orderID, "pay_tampered000000", sig},
		{"flipped signature char", secret, orderID, paymentID, flipFirst(sig)},
		{"truncated signature", secret, orderID, paymentID, sig[:63]},
		{"empty signature", secret, orderID, paymentID, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifySignature(tt.secret, tt.orderID, tt.paymentID, tt.given) {
				t.Fatal("tampered input verified")
			}
		})
	}
}

func flipFirst(s string) string {
	b := []byte(s)
	if b[0] == 'a' {
		b[0] = 'b'
	} else {
		b[0] = 'a'
	}
	return string(b)
}
