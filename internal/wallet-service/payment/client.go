package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client fala com o provedor de pagamento externo (API estilo Razorpay).
// O core só confia no orderId criado aqui e no valor amarrado a ele; nada
// que o cliente mande no caminho de verificação é usado como valor.
type Client struct {
	BaseURL string
	KeyID   string
	Secret  string
	HTTP    *http.Client
}

func New(baseURL, keyID, secret string) *Client {
	return &Client{
		BaseURL: baseURL,
		KeyID:   keyID,
		Secret:  secret,
		HTTP:    &http.Client{Timeout: 3 * time.Second},
	}
}

type orderRequest struct {
	Amount   int64  `json:"amount"` // em centavos/paise
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID string `json:"id"`
}

// CreateOrder cria a ordem de pagamento no provedor e retorna o orderId.
func (c *Client) CreateOrder(ctx context.Context, amountCents int64, receipt string) (string, error) {
	body, _ := json.Marshal(orderRequest{Amount: amountCents, Currency: "INR", Receipt: receipt})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.KeyID, c.Secret)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return "", fmt.Errorf("payment create order http %d", res.StatusCode)
	}

	var out orderResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("payment create order: empty order id")
	}
	return out.ID, nil
}

// VerifySignature confere a assinatura HMAC-SHA256 do provedor sobre
// "orderId|paymentId". Comparação em tempo constante.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.Secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
