package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	c := New("http://unused", "key", "segredo")

	good := sign("segredo", "order_1", "pay_1")
	assert.True(t, c.VerifySignature("order_1", "pay_1", good))

	// payload adulterado: outro paymentId com a mesma assinatura
	assert.False(t, c.VerifySignature("order_1", "pay_2", good))
	// assinatura de outro segredo
	assert.False(t, c.VerifySignature("order_1", "pay_1", sign("outro", "order_1", "pay_1")))
	assert.False(t, c.VerifySignature("order_1", "pay_1", ""))
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders", r.URL.Path)
		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "key", user)
		w.Write([]byte(`{"id":"order_abc"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "key", "segredo")
	id, err := c.CreateOrder(context.Background(), 10_000, "dep_u1")
	require.NoError(t, err)
	assert.Equal(t, "order_abc", id)
}

func TestCreateOrderProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "key", "segredo")
	_, err := c.CreateOrder(context.Background(), 10_000, "dep_u1")
	assert.Error(t, err)
}
