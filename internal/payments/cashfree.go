package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const cashfreeAPIVersion = "2023-08-01"

// CashfreeClient talks to the Cashfree payment gateway's order API.
type CashfreeClient struct {
	appID      string
	secretKey  string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func NewCashfreeClient(appID, secretKey, baseURL string, log *slog.Logger) *CashfreeClient {
	return &CashfreeClient{
		appID:     appID,
		secretKey: secretKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// Configured reports whether the gateway credentials are usable. Callers
// degrade to a demo session when they are not.
func (c *CashfreeClient) Configured() bool {
	return c.appID != "" && c.secretKey != ""
}

type gatewayOrderRequest struct {
	OrderID         string           `json:"order_id"`
	OrderAmount     int              `json:"order_amount"`
	OrderCurrency   string           `json:"order_currency"`
	CustomerDetails gatewayCustomer  `json:"customer_details"`
	OrderMeta       gatewayOrderMeta `json:"order_meta"`
	OrderNote       string           `json:"order_note,omitempty"`
}

type gatewayCustomer struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type gatewayOrderMeta struct {
	ReturnURL      string `json:"return_url"`
	NotifyURL      string `json:"notify_url"`
	PaymentMethods string `json:"payment_methods,omitempty"`
}

type gatewayOrderResponse struct {
	PaymentSessionID string `json:"payment_session_id"`
	CfOrderID        any    `json:"cf_order_id"`
	OrderStatus      string `json:"order_status"`
}

// CreateOrder opens a payment session with the gateway and returns its
// session identifier.
func (c *CashfreeClient) CreateOrder(ctx context.Context, orderID string, amountRupees int, userID, email, returnURL, notifyURL, note string) (string, error) {
	name := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		name = email[:at]
	}
	payload := gatewayOrderRequest{
		OrderID:       orderID,
		OrderAmount:   amountRupees,
		OrderCurrency: "INR",
		CustomerDetails: gatewayCustomer{
			CustomerID:    userID,
			CustomerName:  name,
			CustomerEmail: email,
			CustomerPhone: "9999999999",
		},
		OrderMeta: gatewayOrderMeta{
			ReturnURL:      returnURL,
			NotifyURL:      notifyURL,
			PaymentMethods: "cc,dc,upi,nb",
		},
		OrderNote: note,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pg/orders", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-version", cashfreeAPIVersion)
	req.Header.Set("x-client-id", c.appID)
	req.Header.Set("x-client-secret", c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post cashfree order: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode >= 300 {
		c.log.Error("cashfree returned error", "status", resp.StatusCode, "order", orderID)
		return "", fmt.Errorf("cashfree error: status=%d", resp.StatusCode)
	}

	var parsed gatewayOrderResponse
	if err := json.Unmarshal(rawBody, &parsed); err != nil {
		return "", fmt.Errorf("decode cashfree response: %w", err)
	}
	if parsed.PaymentSessionID == "" {
		return "", fmt.Errorf("cashfree response missing payment_session_id")
	}
	return parsed.PaymentSessionID, nil
}
